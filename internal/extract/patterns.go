package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/subtrack/subtrack/internal/core"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// The pattern library: each recognizer is a fixed regular expression paired
// with a normalizer below. Subject and body are searched as one string
// (subject first) before falling back to the subject alone, so context that
// spans both fields is preferred.
var (
	priceRe = regexp.MustCompile(`(?i)(?:USD|EUR|\$|€)\s*(\d+(?:\.\d{2})?)`)

	dateRe = regexp.MustCompile(`(?i)(?:renewal|next payment|next billing|expiration|due).*?(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`)

	cycleRe = regexp.MustCompile(`(?i)\b(monthly|yearly|annual|quarterly|weekly|month|year|quarter|week)\b`)

	serviceRe = regexp.MustCompile(`(?i)\b(netflix|spotify|amazon|apple|google|microsoft|adobe|hulu|disney|youtube|dropbox|slack|zoom|notion|github|audible|patreon|canva|figma)\b`)
)

// canonicalServices maps a lowercased service match to its brand casing.
// Names absent from this map are title-cased.
var canonicalServices = map[string]string{
	"youtube": "YouTube",
	"github":  "GitHub",
}

var titleCaser = cases.Title(language.English)

// matchField applies a recognizer to the combined subject+body text first,
// retrying against the subject alone, and returns the first capture group.
func matchField(re *regexp.Regexp, subject, body string) (string, bool) {
	combined := subject + " " + body
	if m := re.FindStringSubmatch(combined); m != nil {
		return m[1], true
	}
	if m := re.FindStringSubmatch(subject); m != nil {
		return m[1], true
	}
	return "", false
}

// parsePrice parses the captured digits as a decimal magnitude. The currency
// marker is matched but deliberately not captured.
func parsePrice(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseDate parses a D[-/]D[-/]YY[YY] token as a month/day/year calendar
// date. Two-digit years below 69 land in the 2000s.
func parseDate(s string) (time.Time, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '/'
	})
	if len(fields) != 3 {
		return time.Time{}, false
	}
	month, err1 := strconv.Atoi(fields[0])
	day, err2 := strconv.Atoi(fields[1])
	year, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if year < 100 {
		if year < 69 {
			year += 2000
		} else {
			year += 1900
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// canonicalService returns the proper-cased name for a matched service token.
func canonicalService(token string) string {
	lower := strings.ToLower(token)
	if name, ok := canonicalServices[lower]; ok {
		return name
	}
	return titleCaser.String(lower)
}

// providerFromSender derives a provider name from the sender address domain:
// the domain's first label, title-cased. Returns false when the sender does
// not look like an email address.
func providerFromSender(sender string) (string, bool) {
	addr := sender
	if start := strings.LastIndex(sender, "<"); start >= 0 {
		if end := strings.Index(sender[start:], ">"); end > 0 {
			addr = sender[start+1 : start+end]
		}
	}
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return "", false
	}
	domain := addr[at+1:]
	label, _, _ := strings.Cut(domain, ".")
	if label == "" {
		return "", false
	}
	return titleCaser.String(strings.ToLower(label)), true
}

// resolveProvider finds the provider name for a message: curated service
// list against the sender, then the combined subject+body, then the sender
// domain. The second return reports whether anything was derived (the
// sentinel does not count toward confidence).
func resolveProvider(subject, body, sender string) (string, bool) {
	if m := serviceRe.FindStringSubmatch(sender); m != nil {
		return canonicalService(m[1]), true
	}
	if name, ok := matchField(serviceRe, subject, body); ok {
		return canonicalService(name), true
	}
	if name, ok := providerFromSender(sender); ok {
		return name, true
	}
	return core.UnknownProviderName, false
}
