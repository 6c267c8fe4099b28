package notify

import (
	"context"

	"github.com/subtrack/subtrack/internal/core"
	"go.uber.org/zap"
)

// LogNotifier records reminders in the application log instead of sending
// email. Used when SMTP delivery is disabled.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new log-only notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the due reminder
func (n *LogNotifier) Notify(_ context.Context, rem *core.Reminder, sub *core.Subscription) error {
	n.logger.Info("Subscription reminder due",
		zap.String("reminder_id", rem.ID),
		zap.String("type", string(rem.Type)),
		zap.String("subscription", sub.Name),
		zap.Float64("price", sub.Price),
		zap.String("billing_cycle", string(sub.BillingCycle)),
		zap.Time("next_billing_date", sub.NextBillingDate))
	return nil
}
