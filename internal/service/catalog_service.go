package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/tinks231/bizbooks/internal/autocomplete"
	"github.com/tinks231/bizbooks/internal/infra"
	"github.com/tinks231/bizbooks/internal/model"
	"github.com/tinks231/bizbooks/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const defaultCatalogTTL = time.Hour

// CatalogService hands out the immutable item list a tenant's autocomplete
// widgets are set up with. Snapshots are cached in Redis; Postgres is the
// source of truth and is read whenever the cache is cold or unavailable.
type CatalogService interface {
	Items(ctx context.Context, tenantID uint) ([]autocomplete.Item, error)
	Invalidate(ctx context.Context, tenantID uint) error
	Warm(ctx context.Context, tenantID uint) error
}

type catalogService struct {
	repo    repository.ItemRepository
	rdb     *redis.Client // nil disables caching
	breaker *infra.Breaker
	ttl     time.Duration
}

func NewCatalogService(repo repository.ItemRepository, rdb *redis.Client, breaker *infra.Breaker, ttl time.Duration) CatalogService {
	if breaker == nil {
		breaker = infra.NewBreaker(infra.CacheBreakerConfig())
	}
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}
	return &catalogService{repo: repo, rdb: rdb, breaker: breaker, ttl: ttl}
}

func catalogKey(tenantID uint) string {
	return "catalog:" + strconv.FormatUint(uint64(tenantID), 10)
}

// toCatalogItem converts a stored item into the autocomplete's view of it.
func toCatalogItem(it model.Item) autocomplete.Item {
	return autocomplete.Item{
		ID:            it.IDString(),
		Name:          it.Name,
		ItemCode:      model.Deref(it.ItemCode),
		SKU:           it.SKU,
		HSNCode:       model.Deref(it.HSNCode),
		SellingPrice:  it.SellingPrice,
		CostPrice:     it.CostPrice,
		Unit:          model.Deref(it.Unit),
		TaxPreference: model.Deref(it.TaxPreference),
	}
}

func (s *catalogService) Items(ctx context.Context, tenantID uint) ([]autocomplete.Item, error) {
	if items, ok := s.cached(ctx, tenantID); ok {
		return items, nil
	}
	items, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, tenantID, items)
	return items, nil
}

func (s *catalogService) Invalidate(ctx context.Context, tenantID uint) error {
	if s.rdb == nil {
		return nil
	}
	return s.breaker.Do(ctx, func(ctx context.Context) error {
		return s.rdb.Del(ctx, catalogKey(tenantID)).Err()
	})
}

// Warm reloads the tenant's catalog from the database and replaces the snapshot.
func (s *catalogService) Warm(ctx context.Context, tenantID uint) error {
	items, err := s.load(ctx, tenantID)
	if err != nil {
		return err
	}
	s.store(ctx, tenantID, items)
	return nil
}

func (s *catalogService) load(ctx context.Context, tenantID uint) ([]autocomplete.Item, error) {
	rows, err := s.repo.ListActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	items := make([]autocomplete.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, toCatalogItem(r))
	}
	return items, nil
}

// cached reads the snapshot. Any cache failure is a miss.
func (s *catalogService) cached(ctx context.Context, tenantID uint) ([]autocomplete.Item, bool) {
	if s.rdb == nil {
		return nil, false
	}
	var raw []byte
	err := s.breaker.Do(ctx, func(ctx context.Context) error {
		b, err := s.rdb.Get(ctx, catalogKey(tenantID)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		raw = b
		return err
	})
	if err != nil {
		log.Warn().Err(err).Uint("tenant_id", tenantID).Msg("catalog cache read failed, using database")
		return nil, false
	}
	if raw == nil {
		return nil, false
	}
	var items []autocomplete.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn().Err(err).Uint("tenant_id", tenantID).Msg("discarding corrupt catalog snapshot")
		return nil, false
	}
	return items, true
}

// store writes the snapshot, best effort.
func (s *catalogService) store(ctx context.Context, tenantID uint, items []autocomplete.Item) {
	if s.rdb == nil {
		return
	}
	b, err := json.Marshal(items)
	if err != nil {
		return
	}
	err = s.breaker.Do(ctx, func(ctx context.Context) error {
		return s.rdb.Set(ctx, catalogKey(tenantID), b, s.ttl).Err()
	})
	if err != nil {
		log.Warn().Err(err).Uint("tenant_id", tenantID).Msg("catalog cache write failed")
	}
}
