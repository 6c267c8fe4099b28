package factory

import (
	"github.com/subtrack/subtrack/internal/config"
	"github.com/subtrack/subtrack/internal/extract"
)

// ExtractorFactory creates extraction engines from the configured weight table
type ExtractorFactory struct {
	cfg *config.Config
}

// NewExtractorFactory creates a new extractor factory
func NewExtractorFactory(cfg *config.Config) *ExtractorFactory {
	return &ExtractorFactory{cfg: cfg}
}

// CreateEngine creates an extraction engine with the configured weights
func (f *ExtractorFactory) CreateEngine() *extract.Engine {
	return extract.NewEngine(extract.Weights{
		Price:        f.cfg.GetFloat64("scan.weights.price"),
		BillingCycle: f.cfg.GetFloat64("scan.weights.billing_cycle"),
		RenewalDate:  f.cfg.GetFloat64("scan.weights.renewal_date"),
		Provider:     f.cfg.GetFloat64("scan.weights.provider"),
		KeywordBonus: f.cfg.GetFloat64("scan.weights.keyword_bonus"),
	})
}
