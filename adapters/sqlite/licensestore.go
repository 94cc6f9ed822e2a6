package sqlite

import (
	"context"

	"github.com/airosofts/licensor/domain/license"
	"github.com/airosofts/licensor/ports"
)

// LicenseStore implements ports.LicenseStore using SQLite.
type LicenseStore struct {
	db *DB
}

// NewLicenseStore creates a new SQLite license store.
func NewLicenseStore(db *DB) *LicenseStore {
	return &LicenseStore{db: db}
}

const licenseColumns = `id, subscription_id, customer_id, username, email, country, license_key,
		       registration_date, expiry_date, product_id, payment_plan, quota, quota_remaining`

// Upsert inserts a license or overwrites the row granted for the same subscription.
// The row keeps the ID it was first stored with.
func (s *LicenseStore) Upsert(ctx context.Context, l license.LicensedUser) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO licenses (
			id, subscription_id, customer_id, username, email, country, license_key,
			registration_date, expiry_date, product_id, payment_plan, quota, quota_remaining
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(subscription_id) DO UPDATE SET
			customer_id = excluded.customer_id,
			username = excluded.username,
			email = excluded.email,
			country = excluded.country,
			license_key = excluded.license_key,
			registration_date = excluded.registration_date,
			expiry_date = excluded.expiry_date,
			product_id = excluded.product_id,
			payment_plan = excluded.payment_plan,
			quota = excluded.quota,
			quota_remaining = excluded.quota_remaining
	`, l.ID, l.SubscriptionID, l.CustomerID, l.Username, l.Email, l.Country, l.LicenseKey,
		l.RegistrationDate, l.ExpiryDate, l.ProductID, l.PaymentPlan, l.Quota, l.QuotaRemaining)

	if err != nil && isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

// ListByEmail returns every license granted to email, oldest first.
func (s *LicenseStore) ListByEmail(ctx context.Context, email string) ([]license.LicensedUser, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+licenseColumns+`
		FROM licenses
		WHERE email = ?
		ORDER BY registration_date, id
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	licenses := []license.LicensedUser{}
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, l)
	}
	return licenses, rows.Err()
}

func scanLicense(sc scanner) (license.LicensedUser, error) {
	var l license.LicensedUser
	err := sc.Scan(
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
