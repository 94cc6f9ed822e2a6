package postgres

import (
	"context"
	"fmt"

	"github.com/airosofts/licensor/domain/entitlement"
	"github.com/airosofts/licensor/ports"
	"github.com/jackc/pgx/v5"
)

// SoftwareStore implements ports.SoftwareStore using PostgreSQL.
type SoftwareStore struct {
	db *DB
}

// NewSoftwareStore creates a new PostgreSQL software catalog store.
func NewSoftwareStore(db *DB) *SoftwareStore {
	return &SoftwareStore{db: db}
}

// ListByProductIDs returns catalog entries for the given products.
func (s *SoftwareStore) ListByProductIDs(ctx context.Context, productIDs []string) ([]entitlement.Software, error) {
	if len(productIDs) == 0 {
		return []entitlement.Software{}, nil
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT product_id, name, description, icon, download_url
		FROM softwares
		WHERE product_id = ANY($1)
		ORDER BY product_id
	`, productIDs)
	if err != nil {
		return nil, translate(err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entitlement.Software, error) {
		var sw entitlement.Software
		err := row.Scan(&sw.ProductID, &sw.Name, &sw.Description, &sw.Icon, &sw.DownloadURL)
		return sw, err
	})
	if err != nil {
		return nil, translate(err)
	}
	return entries, nil
}

// Replace makes the catalog exactly the given entries in one transaction.
func (s *SoftwareStore) Replace(ctx context.Context, entries []entitlement.Software) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM softwares`); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}

	batch := &pgx.Batch{}
	for _, sw := range entries {
		batch.Queue(`
			INSERT INTO softwares (product_id, name, description, icon, download_url)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (product_id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				icon = EXCLUDED.icon,
				download_url = EXCLUDED.download_url
		`, sw.ProductID, sw.Name, sw.Description, sw.Icon, sw.DownloadURL)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert catalog: %w", err)
	}

	return tx.Commit(ctx)
}

// Ensure interface compliance.
var _ ports.SoftwareStore = (*SoftwareStore)(nil)
