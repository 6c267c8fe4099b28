package extract

import (
	"github.com/subtrack/subtrack/internal/core"
)

// Filter keeps extractions whose confidence strictly exceeds threshold and
// that carry a price. The input order is preserved, so filtering an
// already-filtered list returns it unchanged.
func Filter(subs []core.ExtractedSubscription, threshold float64) []core.ExtractedSubscription {
	kept := make([]core.ExtractedSubscription, 0, len(subs))
	for _, sub := range subs {
		if sub.Confidence > threshold && sub.Price != nil {
			kept = append(kept, sub)
		}
	}
	return kept
}
