package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ReminderService dispatches due reminders on a fixed interval.
type ReminderService struct {
	store     SubscriptionStore
	notifier  ReminderNotifier
	logger    *zap.Logger
	frequency time.Duration
	stopCh    chan struct{}
}

// NewReminderService creates a new reminder service
func NewReminderService(
	store SubscriptionStore,
	notifier ReminderNotifier,
	logger *zap.Logger,
	frequency time.Duration,
) *ReminderService {
	return &ReminderService{
		store:     store,
		notifier:  notifier,
		logger:    logger,
		frequency: frequency,
		stopCh:    make(chan struct{}),
	}
}

// Start launches the dispatch loop in the background.
func (s *ReminderService) Start() error {
	s.logger.Info("Reminder dispatcher starting",
		zap.Duration("frequency", s.frequency))
	go s.run()
	return nil
}

// Stop terminates the dispatch loop.
func (s *ReminderService) Stop() error {
	close(s.stopCh)
	return nil
}

func (s *ReminderService) run() {
	ticker := time.NewTicker(s.frequency)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Dispatch(context.Background()); err != nil {
				s.logger.Error("Failed to dispatch reminders", zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Dispatch sends every pending reminder whose date has passed. A delivery
// failure marks that reminder failed and continues with the rest.
func (s *ReminderService) Dispatch(ctx context.Context) error {
	due, err := s.store.DueReminders(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}
	s.logger.Info("Dispatching due reminders", zap.Int("count", len(due)))

	for _, rem := range due {
		sub, err := s.store.GetSubscription(ctx, rem.SubscriptionID)
		if err != nil {
			s.logger.Error("Reminder references unknown subscription",
				zap.String("reminder_id", rem.ID),
				zap.String("subscription_id", rem.SubscriptionID),
				zap.Error(err))
			if err := s.store.UpdateReminderStatus(ctx, rem.ID, ReminderFailed, nil); err != nil {
				s.logger.Error("Failed to mark reminder failed", zap.Error(err))
			}
			continue
		}

		if err := s.notifier.Notify(ctx, rem, sub); err != nil {
			s.logger.Error("Failed to deliver reminder",
				zap.String("reminder_id", rem.ID),
				zap.String("subscription", sub.Name),
				zap.Error(err))
			if err := s.store.UpdateReminderStatus(ctx, rem.ID, ReminderFailed, nil); err != nil {
				s.logger.Error("Failed to mark reminder failed", zap.Error(err))
			}
			continue
		}

		now := time.Now().UTC()
		if err := s.store.UpdateReminderStatus(ctx, rem.ID, ReminderSent, &now); err != nil {
			s.logger.Error("Failed to mark reminder sent",
				zap.String("reminder_id", rem.ID),
				zap.Error(err))
		}
	}
	return nil
}
