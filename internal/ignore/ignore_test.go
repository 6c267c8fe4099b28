package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIsIgnored(t *testing.T) {
	checker := NewChecker([]string{"Spam.Example", " newsletters.example "}, zap.NewNop())

	tests := []struct {
		name   string
		sender string
		want   bool
	}{
		{"bare address match", "promo@spam.example", true},
		{"case insensitive", "promo@SPAM.EXAMPLE", true},
		{"angle bracket form", "Promotions <deals@newsletters.example>", true},
		{"different domain", "billing@netflix.com", false},
		{"subdomain is distinct", "promo@mail.spam.example", false},
		{"not an address", "not-an-address", false},
		{"empty sender", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checker.IsIgnored(tt.sender))
		})
	}
}

func TestIsIgnoredEmptyList(t *testing.T) {
	checker := NewChecker(nil, zap.NewNop())
	assert.False(t, checker.IsIgnored("anyone@anywhere.example"))
}
