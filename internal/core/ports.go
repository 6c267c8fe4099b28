package core

import (
	"context"
	"time"
)

// MessageSource provides keyword search over an external mail store. The
// adapter owns authentication, result capping and transport errors; search
// failures surface as *SourceError or *AuthError.
type MessageSource interface {
	// Search returns the IDs of candidate messages for a query, capped at max.
	Search(ctx context.Context, query string, max int64) ([]string, error)

	// Fetch retrieves one candidate message by ID. A message whose shape
	// cannot be mapped returns ErrMalformedMessage.
	Fetch(ctx context.Context, id string) (*CandidateMessage, error)
}

// Extractor turns a message's subject, body and sender into a candidate
// subscription record. Implementations must be pure: no I/O, deterministic
// for a given input triple.
type Extractor interface {
	Extract(subject, body, sender string) ExtractedSubscription
}

// SubscriptionStore persists subscriptions and their reminders.
type SubscriptionStore interface {
	CreateSubscription(ctx context.Context, sub *Subscription) error
	GetSubscription(ctx context.Context, id string) (*Subscription, error)
	FindSubscriptionByName(ctx context.Context, name string) (*Subscription, error)
	ListSubscriptions(ctx context.Context) ([]*Subscription, error)
	UpdateSubscription(ctx context.Context, sub *Subscription) error
	DeleteSubscription(ctx context.Context, id string) error

	CreateReminder(ctx context.Context, rem *Reminder) error
	DueReminders(ctx context.Context, now time.Time) ([]*Reminder, error)
	UpdateReminderStatus(ctx context.Context, id string, status ReminderStatus, sentAt *time.Time) error
}

// ReminderNotifier delivers a due reminder to the account owner.
type ReminderNotifier interface {
	Notify(ctx context.Context, rem *Reminder, sub *Subscription) error
}
