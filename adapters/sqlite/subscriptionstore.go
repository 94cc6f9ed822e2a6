package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/airosofts/licensor/domain/billing"
	"github.com/airosofts/licensor/ports"
)

// SubscriptionStore implements ports.SubscriptionStore using SQLite.
type SubscriptionStore struct {
	db *DB
}

// NewSubscriptionStore creates a new SQLite subscription store.
func NewSubscriptionStore(db *DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

const subscriptionColumns = `id, customer_id, product_id, product_name, product_price,
		       status, start_date, current_period_end, updated_at`

// Upsert inserts a subscription or overwrites the row with the same id.
func (s *SubscriptionStore) Upsert(ctx context.Context, sub billing.Subscription) error {
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (
			id, customer_id, product_id, product_name, product_price,
			status, start_date, current_period_end, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			customer_id = excluded.customer_id,
			product_id = excluded.product_id,
			product_name = excluded.product_name,
			product_price = excluded.product_price,
			status = excluded.status,
			start_date = excluded.start_date,
			current_period_end = excluded.current_period_end,
			updated_at = excluded.updated_at
	`, sub.ID, sub.CustomerID, sub.ProductID, sub.ProductName, sub.Price.String(),
		string(sub.Status), nullTime(sub.StartDate), nullTime(sub.CurrentPeriodEnd), sub.UpdatedAt)
	return err
}

// Get retrieves a subscription by ID.
func (s *SubscriptionStore) Get(ctx context.Context, id string) (billing.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE id = ?
	`, id)
	return scanSubscription(row)
}

// ListByIDs returns the subscriptions with the given IDs.
// IDs with no row are skipped.
func (s *SubscriptionStore) ListByIDs(ctx context.Context, ids []string) ([]billing.Subscription, error) {
	if len(ids) == 0 {
		return []billing.Subscription{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE id IN (`+placeholders(len(ids))+`)
		ORDER BY id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSubscriptions(rows)
}

// ListByCustomer returns all subscriptions owned by a customer.
func (s *SubscriptionStore) ListByCustomer(ctx context.Context, customerID string) ([]billing.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE customer_id = ?
		ORDER BY id
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSubscriptions(rows)
}

// UpdateStatus changes the status of an existing subscription.
// A nil periodEnd keeps the stored value.
func (s *SubscriptionStore) UpdateStatus(ctx context.Context, id string, status billing.SubscriptionStatus, periodEnd *time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = ?, current_period_end = COALESCE(?, current_period_end), updated_at = ?
		WHERE id = ?
	`, string(status), nullTime(periodEnd), time.Now().UTC(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscriptionFrom(sc scanner) (billing.Subscription, error) {
	var sub billing.Subscription
	var status string
	var start, periodEnd sql.NullTime

	err := sc.Scan(
		&sub.ID, &sub.CustomerID, &sub.ProductID, &sub.ProductName, &sub.Price,
		&status, &start, &periodEnd, &sub.UpdatedAt,
	)
	if err != nil {
		return billing.Subscription{}, err
	}

	sub.Status = billing.SubscriptionStatus(status)
	sub.StartDate = timePtr(start)
	sub.CurrentPeriodEnd = timePtr(periodEnd)
	return sub, nil
}

func scanSubscription(row *sql.Row) (billing.Subscription, error) {
	sub, err := scanSubscriptionFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return billing.Subscription{}, ErrNotFound
	}
	return sub, err
}

func collectSubscriptions(rows *sql.Rows) ([]billing.Subscription, error) {
	subs := []billing.Subscription{}
	for rows.Next() {
		sub, err := scanSubscriptionFrom(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Ensure interface compliance.
var _ ports.SubscriptionStore = (*SubscriptionStore)(nil)
