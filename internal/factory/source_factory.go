package factory

import (
	"context"

	"github.com/subtrack/subtrack/internal/adapters/gmailsource"
	"github.com/subtrack/subtrack/internal/config"
	"github.com/subtrack/subtrack/internal/core"
	"go.uber.org/zap"
)

// SourceFactory creates message sources based on configuration
type SourceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSourceFactory creates a new source factory
func NewSourceFactory(cfg *config.Config, logger *zap.Logger) *SourceFactory {
	return &SourceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMessageSource creates a Gmail message source from the configured token
func (f *SourceFactory) CreateMessageSource(ctx context.Context) (core.MessageSource, error) {
	token := f.cfg.GetString("gmail.access_token")
	return gmailsource.New(ctx, token, f.logger)
}
