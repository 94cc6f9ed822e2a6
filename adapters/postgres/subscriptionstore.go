package postgres

import (
	"context"
	"time"

	"github.com/airosofts/licensor/domain/billing"
	"github.com/airosofts/licensor/ports"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// SubscriptionStore implements ports.SubscriptionStore using PostgreSQL.
type SubscriptionStore struct {
	db *DB
}

// NewSubscriptionStore creates a new PostgreSQL subscription store.
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

	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO subscriptions (
			id, customer_id, product_id, product_name, product_price,
			status, start_date, current_period_end, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id,
			product_id = EXCLUDED.product_id,
			product_name = EXCLUDED.product_name,
			product_price = EXCLUDED.product_price,
			status = EXCLUDED.status,
			start_date = EXCLUDED.start_date,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = EXCLUDED.updated_at
	`, sub.ID, sub.CustomerID, sub.ProductID, sub.ProductName, sub.Price.String(),
		string(sub.Status), sub.StartDate, sub.CurrentPeriodEnd, sub.UpdatedAt)
	return translate(err)
}

// Get retrieves a subscription by ID.
func (s *SubscriptionStore) Get(ctx context.Context, id string) (billing.Subscription, error) {
	row := s.db.Pool.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
	sub, err := scanSubscription(row)
	if err != nil {
		return billing.Subscription{}, translate(err)
	}
	return sub, nil
}

// ListByIDs returns the subscriptions with the given IDs.
func (s *SubscriptionStore) ListByIDs(ctx context.Context, ids []string) ([]billing.Subscription, error) {
	if len(ids) == 0 {
		return []billing.Subscription{}, nil
	}
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE id = ANY($1)
		ORDER BY id
	`, ids)
	if err != nil {
		return nil, translate(err)
	}
	return collectSubscriptions(rows)
}

// ListByCustomer returns all subscriptions owned by a customer.
func (s *SubscriptionStore) ListByCustomer(ctx context.Context, customerID string) ([]billing.Subscription, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE customer_id = $1
		ORDER BY id
	`, customerID)
	if err != nil {
		return nil, translate(err)
	}
	return collectSubscriptions(rows)
}

// UpdateStatus changes the status of an existing subscription.
// A nil periodEnd keeps the stored value.
func (s *SubscriptionStore) UpdateStatus(ctx context.Context, id string, status billing.SubscriptionStatus, periodEnd *time.Time) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE subscriptions
		SET status = $1, current_period_end = COALESCE($2, current_period_end), updated_at = $3
		WHERE id = $4
	`, string(status), periodEnd, time.Now().UTC(), id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSubscription(row pgx.Row) (billing.Subscription, error) {
	var sub billing.Subscription
	var price, status string

	err := row.Scan(
		&sub.ID, &sub.CustomerID, &sub.ProductID, &sub.ProductName, &price,
		&status, &sub.StartDate, &sub.CurrentPeriodEnd, &sub.UpdatedAt,
	)
	if err != nil {
		return billing.Subscription{}, err
	}

	sub.Price, err = decimal.NewFromString(price)
	if err != nil {
		return billing.Subscription{}, err
	}
	sub.Status = billing.SubscriptionStatus(status)
	return sub, nil
}

func collectSubscriptions(rows pgx.Rows) ([]billing.Subscription, error) {
	defer rows.Close()

	subs := []billing.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, translate(err)
		}
		subs = append(subs, sub)
	}
	return subs, translate(rows.Err())
}

// Ensure interface compliance.
var _ ports.SubscriptionStore = (*SubscriptionStore)(nil)
