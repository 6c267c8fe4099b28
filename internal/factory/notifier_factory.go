package factory

import (
	"github.com/subtrack/subtrack/internal/adapters/notify"
	"github.com/subtrack/subtrack/internal/config"
	"github.com/subtrack/subtrack/internal/core"
	"go.uber.org/zap"
)

// NotifierFactory creates reminder notifiers based on configuration
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateNotifier creates an SMTP notifier when delivery is enabled, otherwise
// a log-only notifier
func (f *NotifierFactory) CreateNotifier() (core.ReminderNotifier, error) {
	if !f.cfg.GetBool("smtp.enabled") {
		return notify.NewLogNotifier(f.logger), nil
	}
	return notify.NewSMTPNotifier(
		f.cfg.GetString("smtp.host"),
		f.cfg.GetInt("smtp.port"),
		f.cfg.GetString("smtp.username"),
		f.cfg.GetString("smtp.password"),
		f.cfg.GetString("smtp.from"),
		f.cfg.GetString("reminders.recipient"),
		f.logger,
	)
}
