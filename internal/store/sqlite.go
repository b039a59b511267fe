// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides principal/subscription/delivery persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS principals (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_principals_username ON principals(username);

		CREATE TABLE IF NOT EXISTS subscriptions (
			id         TEXT PRIMARY KEY,
			url        TEXT NOT NULL,
			source     TEXT NOT NULL,
			secret     TEXT NOT NULL,
			owner      TEXT NOT NULL,
			created_at TEXT NOT NULL,

			CHECK (url <> ''),
			CHECK (source <> '')
		);

		CREATE INDEX IF NOT EXISTS idx_subscriptions_source ON subscriptions(source);
		CREATE INDEX IF NOT EXISTS idx_subscriptions_owner ON subscriptions(owner);

		CREATE TABLE IF NOT EXISTS deliveries (
			id              TEXT PRIMARY KEY,
			subscription_id TEXT NOT NULL,
			event_type      TEXT NOT NULL,
			payload         TEXT,
			timestamp       TEXT NOT NULL,
			status          TEXT NOT NULL,

			CHECK (status IN ('Pending', 'Delivered', 'Failed'))
		);

		CREATE INDEX IF NOT EXISTS idx_deliveries_status ON deliveries(status);
		CREATE INDEX IF NOT EXISTS idx_deliveries_subscription ON deliveries(subscription_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// CreatePrincipal creates a new principal.
// Returns ErrDuplicateUsername if the username is already taken.
func (s *SQLiteStore) CreatePrincipal(ctx context.Context, p *Principal) error {
	query := `
		INSERT INTO principals (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID,
		p.Username,
		p.PasswordHash,
		p.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("inserting principal: %w", err)
	}

	s.logger.Debug("created principal", "id", p.ID, "username", p.Username)
	return nil
}

// GetPrincipalByUsername retrieves a principal by username.
// Returns ErrNotFound if no principal with that username exists.
func (s *SQLiteStore) GetPrincipalByUsername(ctx context.Context, username string) (*Principal, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM principals
		WHERE username = ?
	`

	var p Principal
	var createdAtStr string

	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&p.ID,
		&p.Username,
		&p.PasswordHash,
		&createdAtStr,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying principal: %w", err)
	}

	p.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &p, nil
}

// CreateSubscription creates a new subscription
func (s *SQLiteStore) CreateSubscription(ctx context.Context, sub *Subscription) error {
	query := `
		INSERT INTO subscriptions (id, url, source, secret, owner, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		sub.ID,
		sub.URL,
		sub.Source,
		sub.Secret,
		sub.Owner,
		sub.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting subscription: %w", err)
	}

	s.logger.Debug("created subscription", "id", sub.ID, "source", sub.Source, "owner", sub.Owner)
	return nil
}

// GetSubscription retrieves a subscription by ID.
// Returns ErrNotFound if the subscription doesn't exist.
func (s *SQLiteStore) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	query := `
		SELECT id, url, source, secret, owner, created_at
		FROM subscriptions
		WHERE id = ?
	`

	row := s.db.QueryRowContext(ctx, query, id)
	return scanSubscription(row.Scan)
}

// scanSubscription scans one subscription row via the given scan function
func scanSubscription(scan func(dest ...any) error) (*Subscription, error) {
	var sub Subscription
	var createdAtStr string

	err := scan(
		&sub.ID,
		&sub.URL,
		&sub.Source,
		&sub.Secret,
		&sub.Owner,
		&createdAtStr,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning subscription: %w", err)
	}

	sub.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &sub, nil
}

// ListSubscriptionsByOwner returns all subscriptions created by the given owner.
// Order is unspecified.
func (s *SQLiteStore) ListSubscriptionsByOwner(ctx context.Context, owner string) ([]*Subscription, error) {
	query := `
		SELECT id, url, source, secret, owner, created_at
		FROM subscriptions
		WHERE owner = ?
	`
	return s.listSubscriptions(ctx, query, owner)
}

// ListSubscriptionsBySource returns all subscriptions registered for the given source.
// Returns an empty slice if none exist.
func (s *SQLiteStore) ListSubscriptionsBySource(ctx context.Context, source string) ([]*Subscription, error) {
	query := `
		SELECT id, url, source, secret, owner, created_at
		FROM subscriptions
		WHERE source = ?
	`
	return s.listSubscriptions(ctx, query, source)
}

// listSubscriptions runs a subscription query with a single argument and scans all rows
func (s *SQLiteStore) listSubscriptions(ctx context.Context, query string, arg string) ([]*Subscription, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("querying subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []*Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows.Scan)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subscription rows: %w", err)
	}

	return subs, nil
}

// DeleteSubscription removes a subscription by ID.
// Returns ErrNotFound if the subscription doesn't exist.
func (s *SQLiteStore) DeleteSubscription(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted subscription", "id", id)
	return nil
}

// CreateDelivery creates a new delivery record
func (s *SQLiteStore) CreateDelivery(ctx context.Context, d *Delivery) error {
	query := `
		INSERT INTO deliveries (id, subscription_id, event_type, payload, timestamp, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		d.ID,
		d.SubscriptionID,
		d.EventType,
		string(d.Payload),
		d.Timestamp.UTC().Format(time.RFC3339Nano),
		d.Status,
	)
	if err != nil {
		return fmt.Errorf("inserting delivery: %w", err)
	}

	s.logger.Debug("created delivery", "id", d.ID, "subscription_id", d.SubscriptionID, "status", d.Status)
	return nil
}

// GetDelivery retrieves a delivery record by ID.
// Returns ErrNotFound if the record doesn't exist.
func (s *SQLiteStore) GetDelivery(ctx context.Context, id string) (*Delivery, error) {
	query := `
		SELECT id, subscription_id, event_type, payload, timestamp, status
		FROM deliveries
		WHERE id = ?
	`

	row := s.db.QueryRowContext(ctx, query, id)
	return scanDelivery(row.Scan)
}

// scanDelivery scans one delivery row via the given scan function
func scanDelivery(scan func(dest ...any) error) (*Delivery, error) {
	var d Delivery
	var payload sql.NullString
	var timestampStr string

	err := scan(
		&d.ID,
		&d.SubscriptionID,
		&d.EventType,
		&payload,
		&timestampStr,
		&d.Status,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning delivery: %w", err)
	}

	if payload.Valid && payload.String != "" {
		d.Payload = []byte(payload.String)
	}

	d.Timestamp, err = time.Parse(time.RFC3339Nano, timestampStr)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp: %w", err)
	}

	return &d, nil
}

// ListDeliveriesByStatus returns all delivery records with the given status.
// Order is unspecified.
func (s *SQLiteStore) ListDeliveriesByStatus(ctx context.Context, status string) ([]*Delivery, error) {
	query := `
		SELECT id, subscription_id, event_type, payload, timestamp, status
		FROM deliveries
		WHERE status = ?
	`

	rows, err := s.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("querying deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := []*Delivery{}
	for rows.Next() {
		d, err := scanDelivery(rows.Scan)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating delivery rows: %w", err)
	}

	return deliveries, nil
}

// UpdateDeliveryStatus persists a delivery status transition.
// Returns ErrNotFound if the record doesn't exist.
func (s *SQLiteStore) UpdateDeliveryStatus(ctx context.Context, id string, status string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE deliveries SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("updating delivery status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated delivery status", "id", id, "status", status)
	return nil
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
