package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "short", tp.TruncateText("short", 100))
	assert.Equal(t, "abcde", tp.TruncateText("abcdefgh", 5))
	assert.Equal(t, "unbounded", tp.TruncateText("unbounded", 0))
}

func TestTruncateTextKeepsValidUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// Cutting inside the euro sign must drop the partial sequence.
	text := "ab€cd"
	got := tp.TruncateText(text, 3)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "ab", got)
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "clean", tp.SanitizeUTF8("clean"))

	dirty := "bad" + string([]byte{0xff}) + "byte"
	got := tp.SanitizeUTF8(dirty)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "badbyte", got)
}

func TestProcessText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	long := strings.Repeat("a", 100) + string([]byte{0xfe})
	got := tp.ProcessText(long, 50)
	assert.Len(t, got, 50)
	assert.True(t, utf8.ValidString(got))
}
