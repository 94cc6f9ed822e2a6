package postgres

import (
	"context"

	"github.com/airosofts/licensor/domain/auth"
	"github.com/airosofts/licensor/ports"
)

// AccountStore implements ports.AccountStore using PostgreSQL.
type AccountStore struct {
	db *DB
}

// NewAccountStore creates a new PostgreSQL account store.
func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

// Upsert inserts an account or overwrites the one with the same email.
func (s *AccountStore) Upsert(ctx context.Context, a auth.Account) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO accounts (email, password_hash, registration_date, customer_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			registration_date = EXCLUDED.registration_date,
			customer_id = EXCLUDED.customer_id
	`, a.Email, a.PasswordHash, a.RegistrationDate, a.CustomerID)
	return translate(err)
}

// Get retrieves an account by email.
func (s *AccountStore) Get(ctx context.Context, email string) (auth.Account, error) {
	var a auth.Account
	err := s.db.Pool.QueryRow(ctx, `
		SELECT email, password_hash, registration_date, customer_id
		FROM accounts
		WHERE email = $1
	`, email).Scan(&a.Email, &a.PasswordHash, &a.RegistrationDate, &a.CustomerID)
	if err != nil {
		return auth.Account{}, translate(err)
	}
	a.RegistrationDate = a.RegistrationDate.UTC()
	return a, nil
}

// UpdatePassword replaces the password hash of an existing account.
func (s *AccountStore) UpdatePassword(ctx context.Context, email string, hash []byte) error {
	tag, err := s.db.Pool.Exec(ctx, `UPDATE accounts SET password_hash = $1 WHERE email = $2`, hash, email)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Ensure interface compliance.
var _ ports.AccountStore = (*AccountStore)(nil)
