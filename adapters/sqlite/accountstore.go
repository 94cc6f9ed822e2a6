package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/airosofts/licensor/domain/auth"
	"github.com/airosofts/licensor/ports"
)

// AccountStore implements ports.AccountStore using SQLite.
type AccountStore struct {
	db *DB
}

// NewAccountStore creates a new SQLite account store.
func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

// Upsert inserts an account or overwrites the one with the same email.
func (s *AccountStore) Upsert(ctx context.Context, a auth.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (email, password_hash, registration_date, customer_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			password_hash = excluded.password_hash,
			registration_date = excluded.registration_date,
			customer_id = excluded.customer_id
	`, a.Email, a.PasswordHash, a.RegistrationDate, a.CustomerID)
	return err
}

// Get retrieves an account by email.
func (s *AccountStore) Get(ctx context.Context, email string) (auth.Account, error) {
	var a auth.Account
	err := s.db.QueryRowContext(ctx, `
		SELECT email, password_hash, registration_date, customer_id
		FROM accounts
		WHERE email = ?
	`, email).Scan(&a.Email, &a.PasswordHash, &a.RegistrationDate, &a.CustomerID)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Account{}, ErrNotFound
	}
	if err != nil {
		return auth.Account{}, err
	}
	a.RegistrationDate = a.RegistrationDate.UTC()
	return a, nil
}

// UpdatePassword replaces the password hash of an existing account.
func (s *AccountStore) UpdatePassword(ctx context.Context, email string, hash []byte) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET password_hash = ? WHERE email = ?
	`, hash, email)
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

// Ensure interface compliance.
var _ ports.AccountStore = (*AccountStore)(nil)
