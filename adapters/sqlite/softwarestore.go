package sqlite

import (
	"context"
	"fmt"

	"github.com/airosofts/licensor/domain/entitlement"
	"github.com/airosofts/licensor/ports"
)

// SoftwareStore implements ports.SoftwareStore using SQLite.
type SoftwareStore struct {
	db *DB
}

// NewSoftwareStore creates a new SQLite software catalog store.
func NewSoftwareStore(db *DB) *SoftwareStore {
	return &SoftwareStore{db: db}
}

// ListByProductIDs returns catalog entries for the given products.
func (s *SoftwareStore) ListByProductIDs(ctx context.Context, productIDs []string) ([]entitlement.Software, error) {
	if len(productIDs) == 0 {
		return []entitlement.Software{}, nil
	}

	args := make([]any, len(productIDs))
	for i, id := range productIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, description, icon, download_url
		FROM softwares
		WHERE product_id IN (`+placeholders(len(productIDs))+`)
		ORDER BY product_id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []entitlement.Software{}
	for rows.Next() {
		var sw entitlement.Software
		if err := rows.Scan(&sw.ProductID, &sw.Name, &sw.Description, &sw.Icon, &sw.DownloadURL); err != nil {
			return nil, err
		}
		entries = append(entries, sw)
	}
	return entries, rows.Err()
}

// Replace makes the catalog exactly the given entries in one transaction.
func (s *SoftwareStore) Replace(ctx context.Context, entries []entitlement.Software) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM softwares`); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}

	for _, sw := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO softwares (product_id, name, description, icon, download_url)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(product_id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				icon = excluded.icon,
				download_url = excluded.download_url
		`, sw.ProductID, sw.Name, sw.Description, sw.Icon, sw.DownloadURL)
		if err != nil {
			return fmt.Errorf("insert %s: %w", sw.ProductID, err)
		}
	}

	return tx.Commit()
}

// Ensure interface compliance.
var _ ports.SoftwareStore = (*SoftwareStore)(nil)
