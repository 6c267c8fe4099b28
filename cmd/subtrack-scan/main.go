package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/subtrack/subtrack/internal/config"
	"github.com/subtrack/subtrack/internal/core"
	"github.com/subtrack/subtrack/internal/di"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the scan
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Scan error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	scanner *core.ScanService,
	store core.SubscriptionStore,
) error {
	defer logger.Sync()

	query := cfg.GetString("scan.query")

	fmt.Printf("\n=== Scan ===\n")
	fmt.Printf("Query: %s\n", query)
	fmt.Printf("Max results: %d\n", cfg.GetInt64("scan.max_results"))
	fmt.Printf("Threshold: %.2f\n", cfg.GetFloat64("scan.threshold"))
	fmt.Printf("Dry run: %t\n", cfg.GetBool("scan.dry_run"))

	startTime := time.Now()
	result, err := scanner.Scan(context.Background(), query)
	if err != nil {
		if core.IsAuthError(err) {
			logger.Fatal("Gmail authentication failed; supply a valid access token", zap.Error(err))
		}
		logger.Fatal("Scan failed", zap.Error(err))
	}
	duration := time.Since(startTime)

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Messages searched: %d\n", result.Searched)
	fmt.Printf("Messages parsed: %d\n", result.Attempted)
	fmt.Printf("Messages skipped: %d\n", result.Skipped)
	fmt.Printf("Subscriptions accepted: %d\n", len(result.Accepted))
	fmt.Printf("Subscriptions imported: %d\n", result.Imported)
	fmt.Printf("Processing time: %v\n", duration)

	if len(result.Accepted) > 0 {
		fmt.Printf("\n=== Accepted Subscriptions ===\n")
		for _, sub := range result.Accepted {
			line := fmt.Sprintf("%-24s confidence=%.2f", sub.Name, sub.Confidence)
			if sub.Price != nil {
				line += fmt.Sprintf("  price=%.2f", *sub.Price)
			}
			if sub.BillingCycle != core.CycleUnknown {
				line += fmt.Sprintf("  cycle=%s", sub.BillingCycle)
			}
			if sub.RenewalDate != nil {
				line += fmt.Sprintf("  renews=%s", sub.RenewalDate.Format("2006-01-02"))
			}
			fmt.Printf("%s\n", line)
		}
	}

	// Close any resources that need closing
	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close subscription store", zap.Error(err))
		}
	}
	return nil
}
