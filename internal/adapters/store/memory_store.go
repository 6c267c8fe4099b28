// Package store provides SubscriptionStore implementations backed by an
// in-process map, SQLite, or MySQL.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/subtrack/subtrack/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the SubscriptionStore
// interface, used by default and in tests.
type MemoryStore struct {
	subs      map[string]*core.Subscription
	reminders map[string]*core.Reminder
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		subs:      make(map[string]*core.Subscription),
		reminders: make(map[string]*core.Reminder),
		logger:    logger,
	}
}

// CreateSubscription stores a new subscription
func (s *MemoryStore) CreateSubscription(_ context.Context, sub *core.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sub
	s.subs[sub.ID] = &cp
	return nil
}

// GetSubscription retrieves a subscription by ID
func (s *MemoryStore) GetSubscription(_ context.Context, id string) (*core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

// FindSubscriptionByName retrieves a subscription by its (case-insensitive) name
func (s *MemoryStore) FindSubscriptionByName(_ context.Context, name string) (*core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subs {
		if strings.EqualFold(sub.Name, name) {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

// ListSubscriptions returns all subscriptions ordered by creation time
func (s *MemoryStore) ListSubscriptions(_ context.Context) ([]*core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*core.Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		cp := *sub
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateSubscription replaces a stored subscription
func (s *MemoryStore) UpdateSubscription(_ context.Context, sub *core.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[sub.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *sub
	cp.UpdatedAt = time.Now().UTC()
	s.subs[sub.ID] = &cp
	return nil
}

// DeleteSubscription removes a subscription and its reminders
func (s *MemoryStore) DeleteSubscription(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.subs, id)
	for rid, rem := range s.reminders {
		if rem.SubscriptionID == id {
			delete(s.reminders, rid)
		}
	}
	return nil
}

// CreateReminder stores a new reminder
func (s *MemoryStore) CreateReminder(_ context.Context, rem *core.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rem
	s.reminders[rem.ID] = &cp
	return nil
}

// DueReminders returns pending reminders whose date is not after now,
// oldest first.
func (s *MemoryStore) DueReminders(_ context.Context, now time.Time) ([]*core.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*core.Reminder
	for _, rem := range s.reminders {
		if rem.Status == core.ReminderPending && !rem.Date.After(now) {
			cp := *rem
			due = append(due, &cp)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].Date.Before(due[j].Date)
	})
	return due, nil
}

// UpdateReminderStatus updates the delivery state of a reminder
func (s *MemoryStore) UpdateReminderStatus(_ context.Context, id string, status core.ReminderStatus, sentAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rem, ok := s.reminders[id]
	if !ok {
		return core.ErrNotFound
	}
	rem.Status = status
	rem.SentAt = sentAt
	return nil
}
