package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBillingCycle(t *testing.T) {
	tests := []struct {
		token string
		want  BillingCycle
	}{
		{"monthly", CycleMonthly},
		{"month", CycleMonthly},
		{"Monthly", CycleMonthly},
		{" yearly ", CycleYearly},
		{"annual", CycleYearly},
		{"year", CycleYearly},
		{"quarterly", CycleQuarterly},
		{"quarter", CycleQuarterly},
		{"weekly", CycleWeekly},
		{"week", CycleWeekly},
		{"fortnightly", CycleUnknown},
		{"", CycleUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeBillingCycle(tt.token), tt.token)
	}
}

func TestBillingCycleNext(t *testing.T) {
	from := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 1, 22, 0, 0, 0, 0, time.UTC), CycleWeekly.Next(from))
	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), CycleMonthly.Next(from))
	assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), CycleQuarterly.Next(from))
	assert.Equal(t, time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC), CycleYearly.Next(from))

	// Unknown cycles behave like monthly.
	assert.Equal(t, CycleMonthly.Next(from), CycleUnknown.Next(from))
}
