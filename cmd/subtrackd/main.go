package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subtrack/subtrack/internal/config"
	"github.com/subtrack/subtrack/internal/core"
	"github.com/subtrack/subtrack/internal/di"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	reminders *core.ReminderService,
	store core.SubscriptionStore,
) error {
	defer logger.Sync()

	if cfg.GetBool("reminders.enabled") {
		if err := reminders.Start(); err != nil {
			logger.Fatal("Failed to start reminder dispatcher", zap.Error(err))
			return err
		}
	} else {
		logger.Warn("Reminder dispatch is disabled in configuration")
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	reminders.Stop()

	// Close any resources that need closing
	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close subscription store", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
