package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceRecognizer(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"dollar sign", "charged $15.99 today", 15.99},
		{"dollar with space", "charged $ 12.50 today", 12.50},
		{"usd prefix", "total USD 99.00", 99.00},
		{"euro sign", "billed €9.99 monthly", 9.99},
		{"whole amount", "costs $15 per month", 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := matchField(priceRe, "", tt.text)
			require.True(t, ok)
			price, ok := parsePrice(raw)
			require.True(t, ok)
			assert.Equal(t, tt.want, price)
		})
	}
}

func TestPriceRecognizerNoBareNumbers(t *testing.T) {
	// Amounts without a currency marker must not match.
	_, ok := matchField(priceRe, "", "order 12345 confirmed on 15.99 street")
	assert.False(t, ok)
}

func TestCycleRecognizer(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"your monthly plan", "monthly"},
		{"billed per month", "month"},
		{"annual plan renewal", "annual"},
		{"yearly membership", "yearly"},
		{"every quarter", "quarter"},
		{"weekly digest subscription", "weekly"},
	}
	for _, tt := range tests {
		raw, ok := matchField(cycleRe, "", tt.text)
		require.True(t, ok, tt.text)
		assert.Equal(t, tt.want, raw)
	}
}

func TestDateRecognizerRequiresKeyword(t *testing.T) {
	// A date with no billing keyword nearby is not a renewal date.
	_, ok := matchField(dateRe, "", "your order from 12/31/2025 has shipped")
	assert.False(t, ok)

	raw, ok := matchField(dateRe, "", "next billing date: 12/31/2025")
	require.True(t, ok)
	assert.Equal(t, "12/31/2025", raw)
}

func TestDateRecognizerKeywords(t *testing.T) {
	for _, text := range []string{
		"renewal on 1/15/2026",
		"next payment 1/15/2026",
		"expiration: 1/15/2026",
		"due by 1/15/2026",
	} {
		_, ok := matchField(dateRe, "", text)
		assert.True(t, ok, text)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{"slash four digit year", "12/31/2025", time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), true},
		{"dash separator", "1-15-2026", time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"two digit year 2000s", "3/1/26", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"two digit year 1900s", "3/1/99", time.Date(1999, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"month out of range", "13/1/2026", time.Time{}, false},
		{"day out of range", "12/32/2026", time.Time{}, false},
		{"not a date", "12/2026", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolveProviderFromSender(t *testing.T) {
	name, derived := resolveProvider("Payment received", "thanks for your payment", "Netflix <info@netflix.com>")
	assert.True(t, derived)
	assert.Equal(t, "Netflix", name)
}

func TestResolveProviderFromText(t *testing.T) {
	name, derived := resolveProvider("Your Spotify receipt", "", "billing@pay-processor.example")
	assert.True(t, derived)
	assert.Equal(t, "Spotify", name)
}

func TestResolveProviderBrandCasing(t *testing.T) {
	name, _ := resolveProvider("youtube premium receipt", "", "")
	assert.Equal(t, "YouTube", name)

	name, _ = resolveProvider("github billing", "", "")
	assert.Equal(t, "GitHub", name)
}

func TestResolveProviderDomainFallback(t *testing.T) {
	name, derived := resolveProvider("Receipt", "your receipt", "noreply@unknown.io")
	assert.True(t, derived)
	assert.Equal(t, "Unknown", name)

	name, derived = resolveProvider("Receipt", "", "Acme Billing <billing@acme-corp.co.uk>")
	assert.True(t, derived)
	assert.Equal(t, "Acme-Corp", name)
}

func TestResolveProviderNoSignal(t *testing.T) {
	name, derived := resolveProvider("hello", "just checking in", "not-an-address")
	assert.False(t, derived)
	assert.Equal(t, "Unknown Provider", name)
}
