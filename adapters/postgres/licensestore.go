package postgres

import (
	"context"

	"github.com/airosofts/licensor/domain/license"
	"github.com/airosofts/licensor/ports"
	"github.com/jackc/pgx/v5"
)

// LicenseStore implements ports.LicenseStore using PostgreSQL.
type LicenseStore struct {
	db *DB
}

// NewLicenseStore creates a new PostgreSQL license store.
func NewLicenseStore(db *DB) *LicenseStore {
	return &LicenseStore{db: db}
}

const licenseColumns = `id, subscription_id, customer_id, username, email, country, license_key,
		       registration_date, expiry_date, product_id, payment_plan, quota, quota_remaining`

// Upsert inserts a license or overwrites the row granted for the same subscription.
func (s *LicenseStore) Upsert(ctx context.Context, l license.LicensedUser) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO licenses (
			id, subscription_id, customer_id, username, email, country, license_key,
			registration_date, expiry_date, product_id, payment_plan, quota, quota_remaining
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (subscription_id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id,
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			country = EXCLUDED.country,
			license_key = EXCLUDED.license_key,
			registration_date = EXCLUDED.registration_date,
			expiry_date = EXCLUDED.expiry_date,
			product_id = EXCLUDED.product_id,
			payment_plan = EXCLUDED.payment_plan,
			quota = EXCLUDED.quota,
			quota_remaining = EXCLUDED.quota_remaining
	`, l.ID, l.SubscriptionID, l.CustomerID, l.Username, l.Email, l.Country, l.LicenseKey,
		l.RegistrationDate, l.ExpiryDate, l.ProductID, l.PaymentPlan, l.Quota, l.QuotaRemaining)
	return translate(err)
}

// ListByEmail returns every license granted to email, oldest first.
func (s *LicenseStore) ListByEmail(ctx context.Context, email string) ([]license.LicensedUser, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+licenseColumns+`
		FROM licenses
		WHERE email = $1
		ORDER BY registration_date, id
	`, email)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	licenses := []license.LicensedUser{}
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, translate(err)
		}
		licenses = append(licenses, l)
	}
	return licenses, translate(rows.Err())
}

func scanLicense(row pgx.Row) (license.LicensedUser, error) {
	var l license.LicensedUser
	err := row.Scan(
		&l.ID, &l.SubscriptionID, &l.CustomerID, &l.Username, &l.Email, &l.Country, &l.LicenseKey,
		&l.RegistrationDate, &l.ExpiryDate, &l.ProductID, &l.PaymentPlan, &l.Quota, &l.QuotaRemaining,
	)
	if err != nil {
		return license.LicensedUser{}, err
	}
	l.RegistrationDate = l.RegistrationDate.UTC()
	l.ExpiryDate = l.ExpiryDate.UTC()
	return l, nil
}

// Ensure interface compliance.
var _ ports.LicenseStore = (*LicenseStore)(nil)
