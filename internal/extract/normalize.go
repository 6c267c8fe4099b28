// Package extract implements the subscription extraction engine: body
// normalization, the fixed pattern library, confidence scoring and the
// result filter.
package extract

import (
	"encoding/base64"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/subtrack/subtrack/internal/core"
)

// BodyText decodes a message body into plain text suitable for matching.
// Multipart bodies prefer a text/plain part over text/html; the first text
// part is the fallback. Malformed encoding yields "" rather than an error.
func BodyText(body core.MessageBody) string {
	if body.Data != "" {
		return decodeBase64URL(body.Data)
	}

	var textParts []core.MessagePart
	for _, part := range body.Parts {
		mt := strings.ToLower(part.MimeType)
		if mt == "text/plain" || mt == "text/html" {
			textParts = append(textParts, part)
		}
	}
	if len(textParts) == 0 {
		return ""
	}

	chosen := textParts[0]
	for _, part := range textParts {
		if strings.EqualFold(part.MimeType, "text/plain") {
			chosen = part
			break
		}
	}

	decoded := decodeBase64URL(chosen.Data)
	if strings.EqualFold(chosen.MimeType, "text/html") {
		decoded = htmlToText(decoded)
	}
	return decoded
}

// decodeBase64URL converts the base64url alphabet to standard base64, pads
// to a multiple of four and decodes. Any failure returns "".
func decodeBase64URL(encoded string) string {
	std := strings.NewReplacer("-", "+", "_", "/").Replace(encoded)
	if n := len(std) % 4; n != 0 {
		std += strings.Repeat("=", 4-n)
	}
	raw, err := base64.StdEncoding.DecodeString(std)
	if err != nil {
		return ""
	}
	return string(raw)
}

// htmlToText reduces an HTML document to its visible text. On parse failure
// the raw markup is returned so matching still sees the content.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script,style").Remove()
	return strings.TrimSpace(doc.Text())
}
