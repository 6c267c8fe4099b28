package di

import (
	"context"
	"flag"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/subtrack/subtrack/internal/config"
	"github.com/subtrack/subtrack/internal/core"
	"github.com/subtrack/subtrack/internal/extract"
	"github.com/subtrack/subtrack/internal/factory"
	"github.com/subtrack/subtrack/internal/ignore"
	"github.com/subtrack/subtrack/internal/logging"
	"github.com/subtrack/subtrack/internal/utils"
)

// CLIFlags contains all command line flags for the scan CLI
type CLIFlags struct {
	// Gmail flags
	AccessToken string

	// Scan flags
	Query          string
	MaxResults     int64
	Threshold      float64
	Concurrency    int
	MaxBodySize    int
	IgnoredDomains string
	DryRun         bool

	// Store flags
	StoreType  string
	SQLitePath string

	// Input flags
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Gmail flags
	flag.StringVar(&flags.AccessToken, "token", "", "Gmail API access token (or SUBTRACK_GMAIL_ACCESS_TOKEN)")

	// Scan flags
	flag.StringVar(&flags.Query, "query", "subject:(subscription OR trial OR renewal)", "Gmail search query")
	flag.Int64Var(&flags.MaxResults, "max-results", 25, "Maximum number of messages to scan")
	flag.Float64Var(&flags.Threshold, "threshold", 0.7, "Confidence threshold for accepting extractions")
	flag.IntVar(&flags.Concurrency, "concurrency", 4, "Number of concurrent message fetches")
	flag.IntVar(&flags.MaxBodySize, "max-body-size", 16384, "Maximum message body size to parse")
	flag.StringVar(&flags.IgnoredDomains, "ignore", "", "Comma-separated sender domains to skip")
	flag.BoolVar(&flags.DryRun, "dry-run", false, "Report accepted subscriptions without storing them")

	// Store flags
	flag.StringVar(&flags.StoreType, "store", "memory", "Subscription store (memory, sqlite, mysql)")
	flag.StringVar(&flags.SQLitePath, "sqlite-path", "subtrack.db", "SQLite database path")

	// Input flags
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the scan CLI
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewSourceFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewExtractorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register message source
	if err := container.Provide(func(f *factory.SourceFactory) (core.MessageSource, error) {
		return f.CreateMessageSource(context.Background())
	}); err != nil {
		return nil, err
	}

	// Register subscription store
	if err := container.Provide(func(f *factory.StoreFactory) (core.SubscriptionStore, error) {
		return f.CreateSubscriptionStore()
	}); err != nil {
		return nil, err
	}

	// Register extraction engine
	if err := container.Provide(func(f *factory.ExtractorFactory) *extract.Engine {
		return f.CreateEngine()
	}); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register ignored sender domains
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *ignore.Checker {
		domains := cfg.GetStringSlice("scan.ignored_domains")
		if len(domains) > 0 {
			logger.Info("Loaded ignored domains", zap.Strings("domains", domains))
		}
		return ignore.NewChecker(domains, logger)
	}); err != nil {
		return nil, err
	}

	// Register scan service
	if err := container.Provide(func(
		source core.MessageSource,
		store core.SubscriptionStore,
		engine *extract.Engine,
		processor *utils.TextProcessor,
		ignored *ignore.Checker,
		logger *zap.Logger,
		cfg *config.Config,
	) *core.ScanService {
		return core.NewScanService(
			source,
			store,
			engine,
			extract.Filter,
			extract.BodyText,
			processor,
			ignored,
			logger,
			cfg.GetFloat64("scan.threshold"),
			cfg.GetInt64("scan.max_results"),
			cfg.GetInt("scan.fetch_concurrency"),
			cfg.GetInt("scan.max_body_size"),
			cfg.GetInt("reminders.days_before"),
			cfg.GetBool("scan.dry_run"),
		)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	v.AutomaticEnv()
	v.SetEnvPrefix("SUBTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if flags.AccessToken != "" {
		v.Set("gmail.access_token", flags.AccessToken)
	}

	v.Set("scan.query", flags.Query)
	v.Set("scan.max_results", flags.MaxResults)
	v.Set("scan.threshold", flags.Threshold)
	v.Set("scan.fetch_concurrency", flags.Concurrency)
	v.Set("scan.max_body_size", flags.MaxBodySize)
	v.Set("scan.dry_run", flags.DryRun)
	if flags.IgnoredDomains != "" {
		v.Set("scan.ignored_domains", strings.Split(flags.IgnoredDomains, ","))
	}

	v.Set("store.type", flags.StoreType)
	v.Set("store.sqlite_path", flags.SQLitePath)

	return config.NewFromViper(v)
}
