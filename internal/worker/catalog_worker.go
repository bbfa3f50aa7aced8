package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// CatalogRefreshPayload is the job body sent to QueueCatalogRefresh.
type CatalogRefreshPayload struct {
	TenantID uint `json:"tenant_id"`
}

// CatalogWarmer rebuilds a tenant's cached catalog snapshot.
type CatalogWarmer interface {
	Warm(ctx context.Context, tenantID uint) error
}

// CatalogRefreshWorker rebuilds catalog snapshots after catalog writes so the
// next autocomplete setup sees the new items.
type CatalogRefreshWorker struct {
	catalog CatalogWarmer
}

func NewCatalogRefreshWorker(catalog CatalogWarmer) *CatalogRefreshWorker {
	return &CatalogRefreshWorker{catalog: catalog}
}

func (w *CatalogRefreshWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var p CatalogRefreshPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("%w: catalog_refresh: invalid payload: %w", ErrPermanent, err)
	}
	if p.TenantID == 0 {
		return fmt.Errorf("%w: catalog_refresh: tenant_id missing", ErrPermanent)
	}
	if err := w.catalog.Warm(ctx, p.TenantID); err != nil {
		return fmt.Errorf("catalog_refresh: tenant %d: %w", p.TenantID, err)
	}
	log.Info().Uint("tenant_id", p.TenantID).Msg("catalog snapshot refreshed")
	return nil
}
