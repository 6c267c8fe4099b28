package extract

import (
	"strings"

	"github.com/subtrack/subtrack/internal/core"
)

// Weights is the additive confidence table. Each weight is applied once
// when its field matches; the defaults sum to 1.0 so the score stays in
// [0,1] by construction.
type Weights struct {
	Price        float64
	BillingCycle float64
	RenewalDate  float64
	Provider     float64
	KeywordBonus float64
}

// DefaultWeights is the shipped revision of the confidence table.
var DefaultWeights = Weights{
	Price:        0.3,
	BillingCycle: 0.2,
	RenewalDate:  0.2,
	Provider:     0.2,
	KeywordBonus: 0.1,
}

// Engine applies the pattern library to a message and scores the result.
// It holds no mutable state: Extract is a pure function of its inputs.
type Engine struct {
	weights Weights
}

// NewEngine creates an extraction engine with the given weight table.
func NewEngine(weights Weights) *Engine {
	return &Engine{weights: weights}
}

// Extract runs every recognizer against the subject, body and sender of a
// candidate message and assembles a scored subscription record. Missing
// fields never produce an error: price, cycle and date stay absent, while
// name and provider fall back to their sentinels.
func (e *Engine) Extract(subject, body, sender string) core.ExtractedSubscription {
	sub := core.ExtractedSubscription{
		Name:     core.UnknownSubscriptionName,
		Provider: core.UnknownProviderName,
	}

	if raw, ok := matchField(priceRe, subject, body); ok {
		if price, ok := parsePrice(raw); ok {
			sub.Price = &price
			sub.Confidence += e.weights.Price
		}
	}

	if raw, ok := matchField(cycleRe, subject, body); ok {
		if cycle := core.NormalizeBillingCycle(raw); cycle != core.CycleUnknown {
			sub.BillingCycle = cycle
			sub.Confidence += e.weights.BillingCycle
		}
	}

	if raw, ok := matchField(dateRe, subject, body); ok {
		if date, ok := parseDate(raw); ok {
			sub.RenewalDate = &date
			sub.Confidence += e.weights.RenewalDate
		}
	}

	if provider, derived := resolveProvider(subject, body, sender); derived {
		sub.Provider = provider
		sub.Name = provider
		sub.Confidence += e.weights.Provider
	}

	if strings.Contains(strings.ToLower(subject+" "+body), "subscription") {
		sub.Confidence += e.weights.KeywordBonus
	}

	return sub
}
