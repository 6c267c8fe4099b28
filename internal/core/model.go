package core

import (
	"strings"
	"time"
)

// BillingCycle is the canonical recurrence of a subscription. Free-text
// cycle mentions ("annual plan", "per month") are normalized to one of the
// four canonical values; the zero value means the cycle is unknown.
type BillingCycle string

const (
	CycleUnknown   BillingCycle = ""
	CycleWeekly    BillingCycle = "weekly"
	CycleMonthly   BillingCycle = "monthly"
	CycleQuarterly BillingCycle = "quarterly"
	CycleYearly    BillingCycle = "yearly"
)

// NormalizeBillingCycle maps a free-text cycle token to its canonical value.
// Returns CycleUnknown for tokens outside the known vocabulary.
func NormalizeBillingCycle(token string) BillingCycle {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "weekly", "week":
		return CycleWeekly
	case "monthly", "month":
		return CycleMonthly
	case "quarterly", "quarter":
		return CycleQuarterly
	case "yearly", "annual", "year":
		return CycleYearly
	default:
		return CycleUnknown
	}
}

// Next returns the billing date that follows from on this cycle. Unknown
// cycles advance by one month, matching how imported subscriptions are
// defaulted.
func (c BillingCycle) Next(from time.Time) time.Time {
	switch c {
	case CycleWeekly:
		return from.AddDate(0, 0, 7)
	case CycleQuarterly:
		return from.AddDate(0, 3, 0)
	case CycleYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

// SubscriptionStatus is the lifecycle state of a tracked subscription.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"
	StatusTrial     SubscriptionStatus = "trial"
)

// MessagePart is one typed part of a multipart message body. Data carries
// the transport-encoded (base64url) content.
type MessagePart struct {
	MimeType string
	Data     string
}

// MessageBody is a message body as returned by the message source: either a
// single encoded blob or a list of typed parts.
type MessageBody struct {
	Data  string
	Parts []MessagePart
}

// CandidateMessage is a mail item retrieved by keyword search, not yet known
// to represent a subscription. Ephemeral: fetched per scan, never persisted.
type CandidateMessage struct {
	ID      string
	Subject string
	Sender  string
	Body    MessageBody
}

// Sentinel names used when no provider can be derived from a message.
const (
	UnknownSubscriptionName = "Unknown Subscription"
	UnknownProviderName     = "Unknown Provider"
)

// ExtractedSubscription is the extraction engine's output for one candidate
// message. Name and Provider always carry a value (falling back to the
// sentinels above); Price, BillingCycle and RenewalDate are absent when the
// corresponding pattern did not match.
type ExtractedSubscription struct {
	Name         string
	Price        *float64
	BillingCycle BillingCycle
	RenewalDate  *time.Time
	Provider     string
	Confidence   float64
}

// Subscription is a persistent subscription record.
type Subscription struct {
	ID              string
	Name            string
	Price           float64
	Currency        string
	BillingCycle    BillingCycle
	StartDate       time.Time
	NextBillingDate time.Time
	Category        string
	Status          SubscriptionStatus
	Description     string
	Website         string
	AutoRenew       bool
	ReminderDays    int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReminderType classifies what a reminder is about.
type ReminderType string

const (
	ReminderRenewal         ReminderType = "renewal"
	ReminderTrialExpiration ReminderType = "trial_expiration"
	ReminderPriceChange     ReminderType = "price_change"
)

// ReminderStatus is the delivery state of a reminder.
type ReminderStatus string

const (
	ReminderPending ReminderStatus = "pending"
	ReminderSent    ReminderStatus = "sent"
	ReminderFailed  ReminderStatus = "failed"
)

// Reminder is a scheduled notification tied to a subscription.
type Reminder struct {
	ID             string
	SubscriptionID string
	Type           ReminderType
	Date           time.Time
	Status         ReminderStatus
	Message        string
	SentAt         *time.Time
	CreatedAt      time.Time
}

// ScanResult summarizes one scan invocation.
type ScanResult struct {
	ScanID    string
	Query     string
	Searched  int                     // message IDs returned by the source
	Attempted int                     // messages that reached the extraction engine
	Skipped   int                     // messages dropped before extraction
	Extracted []ExtractedSubscription // every extraction attempt, in source order
	Accepted  []ExtractedSubscription // extractions that passed the result filter
	Imported  int                     // subscriptions persisted by this scan
}
