// Package ignore filters out sender domains that should never be treated as
// subscription candidates (internal senders, newsletters the user opted to
// skip).
package ignore

import (
	"strings"

	"go.uber.org/zap"
)

// Checker decides whether a sender's domain is on the ignore list.
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new ignore checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, len(domains))
	for i, domain := range domains {
		normalized[i] = strings.ToLower(strings.TrimSpace(domain))
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized ignore checker", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsIgnored checks if the sender's domain is on the ignore list. Senders
// that do not parse as an email address are never ignored.
func (c *Checker) IsIgnored(sender string) bool {
	if len(c.domains) == 0 {
		return false
	}

	addr := sender
	if start := strings.LastIndex(sender, "<"); start >= 0 {
		if end := strings.Index(sender[start:], ">"); end > 0 {
			addr = sender[start+1 : start+end]
		}
	}
	parts := strings.Split(addr, "@")
	if len(parts) != 2 {
		return false
	}
	domain := strings.ToLower(parts[1])

	for _, ignored := range c.domains {
		if ignored == domain {
			if c.logger != nil {
				c.logger.Debug("Sender domain is ignored",
					zap.String("domain", domain),
					zap.String("sender", sender))
			}
			return true
		}
	}

	return false
}
