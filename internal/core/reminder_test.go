package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subtrack/subtrack/internal/adapters/store"
	"github.com/subtrack/subtrack/internal/core"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	delivered []string
	err       error
}

func (n *recordingNotifier) Notify(_ context.Context, rem *core.Reminder, _ *core.Subscription) error {
	if n.err != nil {
		return n.err
	}
	n.delivered = append(n.delivered, rem.ID)
	return nil
}

func seedSubscription(t *testing.T, st core.SubscriptionStore) *core.Subscription {
	t.Helper()
	now := time.Now().UTC()
	sub := &core.Subscription{
		ID:              uuid.NewString(),
		Name:            "Netflix",
		Price:           15.99,
		Currency:        "USD",
		BillingCycle:    core.CycleMonthly,
		StartDate:       now,
		NextBillingDate: now.AddDate(0, 1, 0),
		Status:          core.StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, st.CreateSubscription(context.Background(), sub))
	return sub
}

func seedReminder(t *testing.T, st core.SubscriptionStore, subID string, date time.Time) *core.Reminder {
	t.Helper()
	rem := &core.Reminder{
		ID:             uuid.NewString(),
		SubscriptionID: subID,
		Type:           core.ReminderRenewal,
		Date:           date,
		Status:         core.ReminderPending,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, st.CreateReminder(context.Background(), rem))
	return rem
}

func TestDispatchSendsDueReminders(t *testing.T) {
	st := store.NewMemoryStore(zap.NewNop())
	sub := seedSubscription(t, st)
	due := seedReminder(t, st, sub.ID, time.Now().UTC().Add(-time.Hour))
	seedReminder(t, st, sub.ID, time.Now().UTC().AddDate(0, 0, 30))

	notifier := &recordingNotifier{}
	svc := core.NewReminderService(st, notifier, zap.NewNop(), time.Hour)

	require.NoError(t, svc.Dispatch(context.Background()))
	assert.Equal(t, []string{due.ID}, notifier.delivered)

	// The delivered reminder is no longer due.
	remaining, err := st.DueReminders(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDispatchMarksDeliveryFailures(t *testing.T) {
	st := store.NewMemoryStore(zap.NewNop())
	sub := seedSubscription(t, st)
	seedReminder(t, st, sub.ID, time.Now().UTC().Add(-time.Hour))

	notifier := &recordingNotifier{err: errors.New("smtp down")}
	svc := core.NewReminderService(st, notifier, zap.NewNop(), time.Hour)

	require.NoError(t, svc.Dispatch(context.Background()))
	assert.Empty(t, notifier.delivered)

	// Failed reminders do not stay pending.
	remaining, err := st.DueReminders(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDispatchOrphanedReminder(t *testing.T) {
	st := store.NewMemoryStore(zap.NewNop())
	seedReminder(t, st, "no-such-subscription", time.Now().UTC().Add(-time.Hour))

	notifier := &recordingNotifier{}
	svc := core.NewReminderService(st, notifier, zap.NewNop(), time.Hour)

	require.NoError(t, svc.Dispatch(context.Background()))
	assert.Empty(t, notifier.delivered)
}

func TestDispatchNothingDue(t *testing.T) {
	st := store.NewMemoryStore(zap.NewNop())
	notifier := &recordingNotifier{}
	svc := core.NewReminderService(st, notifier, zap.NewNop(), time.Hour)

	require.NoError(t, svc.Dispatch(context.Background()))
	assert.Empty(t, notifier.delivered)
}
