package postgres

import (
	"context"
	"time"

	"github.com/airosofts/licensor/domain/billing"
	"github.com/airosofts/licensor/ports"
)

// CustomerStore implements ports.CustomerStore using PostgreSQL.
type CustomerStore struct {
	db *DB
}

// NewCustomerStore creates a new PostgreSQL customer store.
func NewCustomerStore(db *DB) *CustomerStore {
	return &CustomerStore{db: db}
}

// FindByEmail returns customers registered under email, oldest first.
func (s *CustomerStore) FindByEmail(ctx context.Context, email string) ([]billing.Customer, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, name, email, COALESCE(phone, ''), country, created_at
		FROM customers
		WHERE email = $1
		ORDER BY created_at, id
	`, email)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	customers := []billing.Customer{}
	for rows.Next() {
		var c billing.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Country, &c.CreatedAt); err != nil {
			return nil, translate(err)
		}
		c.CreatedAt = c.CreatedAt.UTC()
		customers = append(customers, c)
	}
	return customers, translate(rows.Err())
}

// Create stores a new customer.
func (s *CustomerStore) Create(ctx context.Context, c billing.Customer) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO customers (id, name, email, phone, country, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
	`, c.ID, c.Name, c.Email, c.Phone, c.Country, c.CreatedAt)
	return translate(err)
}

// Ensure interface compliance.
var _ ports.CustomerStore = (*CustomerStore)(nil)
