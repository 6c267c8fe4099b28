package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/subtrack/subtrack/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the SubscriptionStore interface
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if _, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS subscriptions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			price REAL NOT NULL,
			currency TEXT NOT NULL DEFAULT 'USD',
			billing_cycle TEXT NOT NULL,
			start_date TIMESTAMP,
			next_billing_date TIMESTAMP,
			category TEXT,
			status TEXT NOT NULL,
			description TEXT,
			website TEXT,
			auto_renew BOOLEAN,
			reminder_days INTEGER,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create subscriptions table: %w", err)
	}

	if _, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id TEXT PRIMARY KEY,
			subscription_id TEXT NOT NULL,
			type TEXT NOT NULL,
			date TIMESTAMP NOT NULL,
			status TEXT NOT NULL,
			message TEXT,
			sent_at TIMESTAMP,
			created_at TIMESTAMP
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create reminders table: %w", err)
	}

	// Index for the dispatcher's due-reminder poll
	if _, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reminders_status_date ON reminders(status, date)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// CreateSubscription stores a new subscription
func (s *SQLiteStore) CreateSubscription(ctx context.Context, sub *core.Subscription) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions
			(id, name, price, currency, billing_cycle, start_date, next_billing_date,
			 category, status, description, website, auto_renew, reminder_days,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sub.ID, sub.Name, sub.Price, sub.Currency, string(sub.BillingCycle),
		sub.StartDate.Format(time.RFC3339), sub.NextBillingDate.Format(time.RFC3339),
		sub.Category, string(sub.Status), sub.Description, sub.Website,
		sub.AutoRenew, sub.ReminderDays,
		sub.CreatedAt.Format(time.RFC3339), sub.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

const subscriptionColumns = `id, name, price, currency, billing_cycle, start_date,
	next_billing_date, category, status, description, website, auto_renew,
	reminder_days, created_at, updated_at`

func scanSubscription(row interface{ Scan(...any) error }) (*core.Subscription, error) {
	var sub core.Subscription
	var cycle, status string
	var start, next, created, updated string

	err := row.Scan(&sub.ID, &sub.Name, &sub.Price, &sub.Currency, &cycle,
		&start, &next, &sub.Category, &status, &sub.Description, &sub.Website,
		&sub.AutoRenew, &sub.ReminderDays, &created, &updated)
	if err != nil {
		return nil, err
	}

	sub.BillingCycle = core.BillingCycle(cycle)
	sub.Status = core.SubscriptionStatus(status)
	if sub.StartDate, err = time.Parse(time.RFC3339, start); err != nil {
		return nil, fmt.Errorf("failed to parse start_date: %w", err)
	}
	if sub.NextBillingDate, err = time.Parse(time.RFC3339, next); err != nil {
		return nil, fmt.Errorf("failed to parse next_billing_date: %w", err)
	}
	if sub.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if sub.UpdatedAt, err = time.Parse(time.RFC3339, updated); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &sub, nil
}

// GetSubscription retrieves a subscription by ID
func (s *SQLiteStore) GetSubscription(ctx context.Context, id string) (*core.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription: %w", err)
	}
	return sub, nil
}

// FindSubscriptionByName retrieves a subscription by its name, case-insensitively
func (s *SQLiteStore) FindSubscriptionByName(ctx context.Context, name string) (*core.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE name = ? COLLATE NOCASE`, name)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription by name: %w", err)
	}
	return sub, nil
}

// ListSubscriptions returns all subscriptions ordered by creation time
func (s *SQLiteStore) ListSubscriptions(ctx context.Context) ([]*core.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*core.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// UpdateSubscription replaces a stored subscription
func (s *SQLiteStore) UpdateSubscription(ctx context.Context, sub *core.Subscription) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions SET
			name = ?, price = ?, currency = ?, billing_cycle = ?, start_date = ?,
			next_billing_date = ?, category = ?, status = ?, description = ?,
			website = ?, auto_renew = ?, reminder_days = ?, updated_at = ?
		WHERE id = ?
	`, sub.Name, sub.Price, sub.Currency, string(sub.BillingCycle),
		sub.StartDate.Format(time.RFC3339), sub.NextBillingDate.Format(time.RFC3339),
		sub.Category, string(sub.Status), sub.Description, sub.Website,
		sub.AutoRenew, sub.ReminderDays, time.Now().UTC().Format(time.RFC3339), sub.ID)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteSubscription removes a subscription and its reminders
func (s *SQLiteStore) DeleteSubscription(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return core.ErrNotFound
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE subscription_id = ?`, id); err != nil {
		s.logger.Warn("Failed to delete reminders for subscription",
			zap.String("subscription_id", id), zap.Error(err))
	}
	return nil
}

// CreateReminder stores a new reminder
func (s *SQLiteStore) CreateReminder(ctx context.Context, rem *core.Reminder) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (id, subscription_id, type, date, status, message, sent_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?)
	`, rem.ID, rem.SubscriptionID, string(rem.Type), rem.Date.Format(time.RFC3339),
		string(rem.Status), rem.Message, rem.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

// DueReminders returns pending reminders whose date is not after now
func (s *SQLiteStore) DueReminders(ctx context.Context, now time.Time) ([]*core.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subscription_id, type, date, status, message, created_at
		FROM reminders
		WHERE status = ? AND date <= ?
		ORDER BY date
	`, string(core.ReminderPending), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	defer rows.Close()

	var due []*core.Reminder
	for rows.Next() {
		var rem core.Reminder
		var remType, status, date, created string
		if err := rows.Scan(&rem.ID, &rem.SubscriptionID, &remType, &date,
			&status, &rem.Message, &created); err != nil {
			return nil, err
		}
		rem.Type = core.ReminderType(remType)
		rem.Status = core.ReminderStatus(status)
		if rem.Date, err = time.Parse(time.RFC3339, date); err != nil {
			return nil, fmt.Errorf("failed to parse reminder date: %w", err)
		}
		if rem.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("failed to parse reminder created_at: %w", err)
		}
		due = append(due, &rem)
	}
	return due, rows.Err()
}

// UpdateReminderStatus updates the delivery state of a reminder
func (s *SQLiteStore) UpdateReminderStatus(ctx context.Context, id string, status core.ReminderStatus, sentAt *time.Time) error {
	var sent any
	if sentAt != nil {
		sent = sentAt.Format(time.RFC3339)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE reminders SET status = ?, sent_at = ? WHERE id = ?
	`, string(status), sent, id)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
