package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/subtrack/subtrack/internal/ignore"
	"github.com/subtrack/subtrack/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FilterFunc discards extractions below the acceptance threshold. It must
// preserve input order.
type FilterFunc func(subs []ExtractedSubscription, threshold float64) []ExtractedSubscription

// BodyTextFunc decodes a message body to plain text.
type BodyTextFunc func(body MessageBody) string

// ScanService runs the scan pipeline: search the message source, fetch
// candidate bodies concurrently, extract in source order, filter, and hand
// accepted records to subscription creation.
type ScanService struct {
	source      MessageSource
	store       SubscriptionStore
	extractor   Extractor
	filter      FilterFunc
	normalize   BodyTextFunc
	processor   *utils.TextProcessor
	ignored     *ignore.Checker
	logger      *zap.Logger
	threshold    float64
	maxResults   int64
	concurrency  int
	maxBodySize  int
	reminderDays int
	dryRun       bool
}

// NewScanService creates a new scan service
func NewScanService(
	source MessageSource,
	store SubscriptionStore,
	extractor Extractor,
	filter FilterFunc,
	normalize BodyTextFunc,
	processor *utils.TextProcessor,
	ignored *ignore.Checker,
	logger *zap.Logger,
	threshold float64,
	maxResults int64,
	concurrency int,
	maxBodySize int,
	reminderDays int,
	dryRun bool,
) *ScanService {
	if concurrency < 1 {
		concurrency = 1
	}
	if reminderDays < 1 {
		reminderDays = 7
	}
	return &ScanService{
		source:       source,
		store:        store,
		extractor:    extractor,
		filter:       filter,
		normalize:    normalize,
		processor:    processor,
		ignored:      ignored,
		logger:       logger,
		threshold:    threshold,
		maxResults:   maxResults,
		concurrency:  concurrency,
		maxBodySize:  maxBodySize,
		reminderDays: reminderDays,
		dryRun:       dryRun,
	}
}

// Scan performs one scan invocation. A search failure aborts the scan with
// a typed error; individual messages that cannot be fetched or parsed are
// skipped and the batch continues.
func (s *ScanService) Scan(ctx context.Context, query string) (*ScanResult, error) {
	scanID := uuid.NewString()
	s.logger.Info("Starting scan",
		zap.String("scan_id", scanID),
		zap.String("query", query))

	ids, err := s.source.Search(ctx, query, s.maxResults)
	if err != nil {
		return nil, err
	}

	msgs, skipped, err := s.fetchAll(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{
		ScanID:   scanID,
		Query:    query,
		Searched: len(ids),
		Skipped:  skipped,
	}

	// Extraction is sequential and order-preserving; each call is a pure
	// transformation of (subject, body, sender).
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		if s.ignored.IsIgnored(msg.Sender) {
			result.Skipped++
			s.logger.Debug("Skipping ignored sender",
				zap.String("scan_id", scanID),
				zap.String("message_id", msg.ID))
			continue
		}
		body := s.processor.ProcessText(s.normalize(msg.Body), s.maxBodySize)
		sub := s.extractor.Extract(msg.Subject, body, msg.Sender)
		result.Attempted++
		result.Extracted = append(result.Extracted, sub)
	}

	result.Accepted = s.filter(result.Extracted, s.threshold)

	if !s.dryRun {
		for i := range result.Accepted {
			imported, err := s.importSubscription(ctx, &result.Accepted[i])
			if err != nil {
				s.logger.Error("Failed to import subscription",
					zap.String("scan_id", scanID),
					zap.String("name", result.Accepted[i].Name),
					zap.Error(err))
				continue
			}
			if imported {
				result.Imported++
			}
		}
	}

	s.logger.Info("Scan complete",
		zap.String("scan_id", scanID),
		zap.Int("searched", result.Searched),
		zap.Int("attempted", result.Attempted),
		zap.Int("skipped", result.Skipped),
		zap.Int("accepted", len(result.Accepted)),
		zap.Int("imported", result.Imported))
	return result, nil
}

// fetchAll fans out per-message fetches and joins before parsing begins.
// Slots for messages that failed to fetch or parse stay nil; only context
// cancellation aborts the fan-out.
func (s *ScanService) fetchAll(ctx context.Context, ids []string) ([]*CandidateMessage, int, error) {
	msgs := make([]*CandidateMessage, len(ids))
	failed := make([]bool, len(ids))

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(s.concurrency)
	for i, id := range ids {
		grp.Go(func() error {
			msg, err := s.source.Fetch(gctx, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed[i] = true
				s.logger.Warn("Skipping unfetchable message",
					zap.String("message_id", id),
					zap.Error(err))
				return nil
			}
			msgs[i] = msg
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, 0, err
	}

	skipped := 0
	for _, f := range failed {
		if f {
			skipped++
		}
	}
	return msgs, skipped, nil
}

// importSubscription turns one accepted extraction into a persistent
// subscription plus its renewal reminder. Returns false when a subscription
// with the same name already exists (scans never duplicate).
func (s *ScanService) importSubscription(ctx context.Context, sub *ExtractedSubscription) (bool, error) {
	existing, err := s.store.FindSubscriptionByName(ctx, sub.Name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if existing != nil {
		s.logger.Debug("Subscription already tracked", zap.String("name", sub.Name))
		return false, nil
	}

	now := time.Now().UTC()
	cycle := sub.BillingCycle
	if cycle == CycleUnknown {
		cycle = CycleMonthly
	}
	next := cycle.Next(now)
	if sub.RenewalDate != nil && sub.RenewalDate.After(now) {
		next = *sub.RenewalDate
	}

	record := &Subscription{
		ID:              uuid.NewString(),
		Name:            sub.Name,
		Price:           *sub.Price,
		Currency:        "USD",
		BillingCycle:    cycle,
		StartDate:       now,
		NextBillingDate: next,
		Category:        "Imported",
		Status:          StatusActive,
		Description:     "Imported from Gmail - " + sub.Provider,
		AutoRenew:       true,
		ReminderDays:    s.reminderDays,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateSubscription(ctx, record); err != nil {
		return false, err
	}

	reminder := &Reminder{
		ID:             uuid.NewString(),
		SubscriptionID: record.ID,
		Type:           ReminderRenewal,
		Date:           next.AddDate(0, 0, -record.ReminderDays),
		Status:         ReminderPending,
		Message:        record.Name + " renews soon",
		CreatedAt:      now,
	}
	if err := s.store.CreateReminder(ctx, reminder); err != nil {
		s.logger.Error("Failed to schedule reminder",
			zap.String("subscription_id", record.ID),
			zap.Error(err))
	}
	return true, nil
}
