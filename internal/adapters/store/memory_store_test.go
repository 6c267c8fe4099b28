package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subtrack/subtrack/internal/core"
	"go.uber.org/zap"
)

func newSubscription(id, name string, createdAt time.Time) *core.Subscription {
	return &core.Subscription{
		ID:              id,
		Name:            name,
		Price:           9.99,
		Currency:        "USD",
		BillingCycle:    core.CycleMonthly,
		StartDate:       createdAt,
		NextBillingDate: createdAt.AddDate(0, 1, 0),
		Status:          core.StatusActive,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func TestMemoryStoreSubscriptionLifecycle(t *testing.T) {
	st := NewMemoryStore(zap.NewNop())
	ctx := context.Background()
	now := time.Now().UTC()

	sub := newSubscription("sub-1", "Netflix", now)
	require.NoError(t, st.CreateSubscription(ctx, sub))

	got, err := st.GetSubscription(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Netflix", got.Name)

	got.Price = 17.99
	require.NoError(t, st.UpdateSubscription(ctx, got))

	updated, err := st.GetSubscription(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, 17.99, updated.Price)
	assert.True(t, updated.UpdatedAt.After(now) || updated.UpdatedAt.Equal(now))

	require.NoError(t, st.DeleteSubscription(ctx, "sub-1"))
	_, err = st.GetSubscription(ctx, "sub-1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryStoreNotFound(t *testing.T) {
	st := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	_, err := st.GetSubscription(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = st.FindSubscriptionByName(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.ErrorIs(t, st.UpdateSubscription(ctx, newSubscription("missing", "x", time.Now())), core.ErrNotFound)
	assert.ErrorIs(t, st.DeleteSubscription(ctx, "missing"), core.ErrNotFound)
	assert.ErrorIs(t, st.UpdateReminderStatus(ctx, "missing", core.ReminderSent, nil), core.ErrNotFound)
}

func TestMemoryStoreFindByNameCaseInsensitive(t *testing.T) {
	st := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, st.CreateSubscription(ctx, newSubscription("sub-1", "Netflix", time.Now().UTC())))

	got, err := st.FindSubscriptionByName(ctx, "netflix")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", got.ID)

	got, err = st.FindSubscriptionByName(ctx, "NETFLIX")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", got.ID)
}

func TestMemoryStoreListOrderedByCreation(t *testing.T) {
	st := NewMemoryStore(zap.NewNop())
	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, st.CreateSubscription(ctx, newSubscription("c", "Third", base.Add(2*time.Hour))))
	require.NoError(t, st.CreateSubscription(ctx, newSubscription("a", "First", base)))
	require.NoError(t, st.CreateSubscription(ctx, newSubscription("b", "Second", base.Add(time.Hour))))

	subs, err := st.ListSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, "First", subs[0].Name)
	assert.Equal(t, "Second", subs[1].Name)
	assert.Equal(t, "Third", subs[2].Name)
}

func TestMemoryStoreCopiesOnReadAndWrite(t *testing.T) {
	st := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	sub := newSubscription("sub-1", "Netflix", time.Now().UTC())
	require.NoError(t, st.CreateSubscription(ctx, sub))

	// Mutating the caller's struct after Create must not leak in.
	sub.Name = "mutated"
	got, err := st.GetSubscription(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Netflix", got.Name)

	// Mutating a read result must not leak back.
	got.Name = "also mutated"
	again, err := st.GetSubscription(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Netflix", again.Name)
}

func TestMemoryStoreDueReminders(t *testing.T) {
	st := NewMemoryStore(zap.NewNop())
	ctx := context.Background()
	now := time.Now().UTC()

	overdue := &core.Reminder{ID: "r1", SubscriptionID: "s", Type: core.ReminderRenewal,
		Date: now.Add(-2 * time.Hour), Status: core.ReminderPending, CreatedAt: now}
	dueNow := &core.Reminder{ID: "r2", SubscriptionID: "s", Type: core.ReminderRenewal,
		Date: now.Add(-time.Hour), Status: core.ReminderPending, CreatedAt: now}
	future := &core.Reminder{ID: "r3", SubscriptionID: "s", Type: core.ReminderRenewal,
		Date: now.Add(time.Hour), Status: core.ReminderPending, CreatedAt: now}
	sent := &core.Reminder{ID: "r4", SubscriptionID: "s", Type: core.ReminderRenewal,
		Date: now.Add(-time.Hour), Status: core.ReminderSent, CreatedAt: now}

	for _, rem := range []*core.Reminder{overdue, dueNow, future, sent} {
		require.NoError(t, st.CreateReminder(ctx, rem))
	}

	due, err := st.DueReminders(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "r1", due[0].ID)
	assert.Equal(t, "r2", due[1].ID)
}

func TestMemoryStoreUpdateReminderStatus(t *testing.T) {
	st := NewMemoryStore(zap.NewNop())
	ctx := context.Background()
	now := time.Now().UTC()

	rem := &core.Reminder{ID: "r1", SubscriptionID: "s", Type: core.ReminderRenewal,
		Date: now.Add(-time.Hour), Status: core.ReminderPending, CreatedAt: now}
	require.NoError(t, st.CreateReminder(ctx, rem))

	sentAt := now
	require.NoError(t, st.UpdateReminderStatus(ctx, "r1", core.ReminderSent, &sentAt))

	due, err := st.DueReminders(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestMemoryStoreDeleteCascadesReminders(t *testing.T) {
	st := NewMemoryStore(zap.NewNop())
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, st.CreateSubscription(ctx, newSubscription("sub-1", "Netflix", now)))
	require.NoError(t, st.CreateReminder(ctx, &core.Reminder{ID: "r1", SubscriptionID: "sub-1",
		Type: core.ReminderRenewal, Date: now.Add(-time.Hour), Status: core.ReminderPending, CreatedAt: now}))

	require.NoError(t, st.DeleteSubscription(ctx, "sub-1"))

	due, err := st.DueReminders(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, due)
}
