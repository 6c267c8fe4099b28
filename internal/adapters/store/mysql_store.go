package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/subtrack/subtrack/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the SubscriptionStore interface
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL store
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if _, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS subscriptions (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price DOUBLE NOT NULL,
			currency VARCHAR(8) NOT NULL DEFAULT 'USD',
			billing_cycle VARCHAR(16) NOT NULL,
			start_date DATETIME,
			next_billing_date DATETIME,
			category VARCHAR(64),
			status VARCHAR(16) NOT NULL,
			description TEXT,
			website VARCHAR(255),
			auto_renew BOOLEAN,
			reminder_days INT,
			created_at DATETIME,
			updated_at DATETIME
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create subscriptions table: %w", err)
	}

	if _, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id VARCHAR(36) PRIMARY KEY,
			subscription_id VARCHAR(36) NOT NULL,
			type VARCHAR(24) NOT NULL,
			date DATETIME NOT NULL,
			status VARCHAR(16) NOT NULL,
			message TEXT,
			sent_at DATETIME NULL,
			created_at DATETIME,
			INDEX idx_reminders_status_date (status, date)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create reminders table: %w", err)
	}

	return &MySQLStore{db: db, logger: logger}, nil
}

const mysqlTimeFormat = "2006-01-02 15:04:05"

// CreateSubscription stores a new subscription
func (s *MySQLStore) CreateSubscription(ctx context.Context, sub *core.Subscription) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions
			(id, name, price, currency, billing_cycle, start_date, next_billing_date,
			 category, status, description, website, auto_renew, reminder_days,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sub.ID, sub.Name, sub.Price, sub.Currency, string(sub.BillingCycle),
		sub.StartDate.UTC().Format(mysqlTimeFormat), sub.NextBillingDate.UTC().Format(mysqlTimeFormat),
		sub.Category, string(sub.Status), sub.Description, sub.Website,
		sub.AutoRenew, sub.ReminderDays,
		sub.CreatedAt.UTC().Format(mysqlTimeFormat), sub.UpdatedAt.UTC().Format(mysqlTimeFormat))
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

func (s *MySQLStore) scanSubscriptionRow(row interface{ Scan(...any) error }) (*core.Subscription, error) {
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
	if sub.StartDate, err = time.Parse(mysqlTimeFormat, start); err != nil {
		return nil, fmt.Errorf("failed to parse start_date: %w", err)
	}
	if sub.NextBillingDate, err = time.Parse(mysqlTimeFormat, next); err != nil {
		return nil, fmt.Errorf("failed to parse next_billing_date: %w", err)
	}
	if sub.CreatedAt, err = time.Parse(mysqlTimeFormat, created); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if sub.UpdatedAt, err = time.Parse(mysqlTimeFormat, updated); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &sub, nil
}

// GetSubscription retrieves a subscription by ID
func (s *MySQLStore) GetSubscription(ctx context.Context, id string) (*core.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, price, currency, billing_cycle, start_date, next_billing_date,
		       category, status, description, website, auto_renew, reminder_days,
		       created_at, updated_at
		FROM subscriptions WHERE id = ?`, id)
	sub, err := s.scanSubscriptionRow(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription: %w", err)
	}
	return sub, nil
}

// FindSubscriptionByName retrieves a subscription by its name
func (s *MySQLStore) FindSubscriptionByName(ctx context.Context, name string) (*core.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, price, currency, billing_cycle, start_date, next_billing_date,
		       category, status, description, website, auto_renew, reminder_days,
		       created_at, updated_at
		FROM subscriptions WHERE LOWER(name) = LOWER(?)`, name)
	sub, err := s.scanSubscriptionRow(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription by name: %w", err)
	}
	return sub, nil
}

// ListSubscriptions returns all subscriptions ordered by creation time
func (s *MySQLStore) ListSubscriptions(ctx context.Context) ([]*core.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price, currency, billing_cycle, start_date, next_billing_date,
		       category, status, description, website, auto_renew, reminder_days,
		       created_at, updated_at
		FROM subscriptions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*core.Subscription
	for rows.Next() {
		sub, err := s.scanSubscriptionRow(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// UpdateSubscription replaces a stored subscription
func (s *MySQLStore) UpdateSubscription(ctx context.Context, sub *core.Subscription) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions SET
			name = ?, price = ?, currency = ?, billing_cycle = ?, start_date = ?,
			next_billing_date = ?, category = ?, status = ?, description = ?,
			website = ?, auto_renew = ?, reminder_days = ?, updated_at = ?
		WHERE id = ?
	`, sub.Name, sub.Price, sub.Currency, string(sub.BillingCycle),
		sub.StartDate.UTC().Format(mysqlTimeFormat), sub.NextBillingDate.UTC().Format(mysqlTimeFormat),
		sub.Category, string(sub.Status), sub.Description, sub.Website,
		sub.AutoRenew, sub.ReminderDays, time.Now().UTC().Format(mysqlTimeFormat), sub.ID)
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
func (s *MySQLStore) DeleteSubscription(ctx context.Context, id string) error {
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
func (s *MySQLStore) CreateReminder(ctx context.Context, rem *core.Reminder) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (id, subscription_id, type, date, status, message, sent_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?)
	`, rem.ID, rem.SubscriptionID, string(rem.Type), rem.Date.UTC().Format(mysqlTimeFormat),
		string(rem.Status), rem.Message, rem.CreatedAt.UTC().Format(mysqlTimeFormat))
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

// DueReminders returns pending reminders whose date is not after now
func (s *MySQLStore) DueReminders(ctx context.Context, now time.Time) ([]*core.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subscription_id, type, date, status, message, created_at
		FROM reminders
		WHERE status = ? AND date <= ?
		ORDER BY date
	`, string(core.ReminderPending), now.UTC().Format(mysqlTimeFormat))
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
		if rem.Date, err = time.Parse(mysqlTimeFormat, date); err != nil {
			return nil, fmt.Errorf("failed to parse reminder date: %w", err)
		}
		if rem.CreatedAt, err = time.Parse(mysqlTimeFormat, created); err != nil {
			return nil, fmt.Errorf("failed to parse reminder created_at: %w", err)
		}
		due = append(due, &rem)
	}
	return due, rows.Err()
}

// UpdateReminderStatus updates the delivery state of a reminder
func (s *MySQLStore) UpdateReminderStatus(ctx context.Context, id string, status core.ReminderStatus, sentAt *time.Time) error {
	var sent any
	if sentAt != nil {
		sent = sentAt.UTC().Format(mysqlTimeFormat)
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
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
