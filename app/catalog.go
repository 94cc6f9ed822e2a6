package app

import (
	"context"
	"fmt"

	"github.com/airosofts/licensor/domain/entitlement"
	"github.com/airosofts/licensor/ports"
	"github.com/rs/zerolog"
)

// CatalogService keeps the software table in step with configuration.
type CatalogService struct {
	software ports.SoftwareStore
	metrics  ports.MetricsRecorder
	logger   zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(software ports.SoftwareStore, metrics ports.MetricsRecorder, logger zerolog.Logger) *CatalogService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &CatalogService{software: software, metrics: metrics, logger: logger}
}

// Sync makes the stored catalog exactly entries.
// An empty list is skipped so a config without a software section keeps the table.
func (s *CatalogService) Sync(ctx context.Context, entries []entitlement.Software) error {
	if len(entries) == 0 {
		s.logger.Debug().Msg("no software configured, catalog left unchanged")
		return nil
	}

	if err := s.software.Replace(ctx, entries); err != nil {
		s.metrics.RecordCatalogSync(0, err)
		s.logger.Error().Err(err).Msg("failed to sync software catalog")
		return fmt.Errorf("sync software catalog: %w", err)
	}

	s.metrics.RecordCatalogSync(len(entries), nil)
	s.logger.Info().Int("entries", len(entries)).Msg("software catalog synced")
	return nil
}
