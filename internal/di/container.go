package di

import (
	"time"

	"go.uber.org/dig"

	"github.com/subtrack/subtrack/internal/config"
	"github.com/subtrack/subtrack/internal/core"
	"github.com/subtrack/subtrack/internal/factory"
	"github.com/subtrack/subtrack/internal/logging"
)

// BuildContainer creates and configures a dependency injection container for
// the reminder daemon
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewNotifierFactory); err != nil {
		return nil, err
	}

	// Register subscription store
	if err := container.Provide(func(f *factory.StoreFactory) (core.SubscriptionStore, error) {
		return f.CreateSubscriptionStore()
	}); err != nil {
		return nil, err
	}

	// Register reminder notifier
	if err := container.Provide(func(f *factory.NotifierFactory) (core.ReminderNotifier, error) {
		return f.CreateNotifier()
	}); err != nil {
		return nil, err
	}

	// Register dispatch frequency
	if err := container.Provide(func(cfg *config.Config) (time.Duration, error) {
		return cfg.GetDuration("reminders.check_frequency")
	}); err != nil {
		return nil, err
	}

	// Register reminder service
	if err := container.Provide(core.NewReminderService); err != nil {
		return nil, err
	}

	return container, nil
}
