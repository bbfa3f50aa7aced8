package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/tinks231/bizbooks/internal/autocomplete"
	"github.com/tinks231/bizbooks/internal/dto"
	"github.com/tinks231/bizbooks/internal/model"
	"github.com/tinks231/bizbooks/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// SearchMinQueryLen is the shortest query the item search answers.
	SearchMinQueryLen = 2
	// SearchLimit caps the item search result set.
	SearchLimit = 20

	autoSKUAttempts = 3
)

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrDuplicateItem = errors.New("an item with this SKU or item code already exists")
	defaultGSTRate   = decimal.NewFromInt(18)
	defaultUnitLabel = autocomplete.DefaultUnitLabel
)

// CatalogRefresher schedules an asynchronous rebuild of a tenant's catalog
// snapshot. Implemented by the worker dispatcher.
type CatalogRefresher interface {
	EnqueueCatalogRefresh(ctx context.Context, tenantID uint) error
}

// WidgetDefaults are the autocomplete options used when a request leaves them unset.
type WidgetDefaults struct {
	PriceField autocomplete.PriceField
	MaxResults int
}

// options merges request overrides over the defaults.
func (d WidgetDefaults) options(priceField string, maxResults int) autocomplete.Options {
	o := autocomplete.Options{PriceField: d.PriceField, MaxResults: d.MaxResults}
	if pf := autocomplete.PriceField(priceField); pf.Valid() {
		o.PriceField = pf
	}
	if maxResults > 0 {
		o.MaxResults = maxResults
	}
	if !o.PriceField.Valid() {
		o.PriceField = autocomplete.PriceSelling
	}
	if o.MaxResults <= 0 {
		o.MaxResults = autocomplete.DefaultMaxResults
	}
	return o
}

// ItemService covers the catalog endpoints.
type ItemService interface {
	Create(ctx context.Context, tenantID uint, req dto.CreateItemRequest) (*dto.ItemResponse, error)
	Get(ctx context.Context, tenantID, id uint) (*dto.ItemResponse, error)
	List(ctx context.Context, tenantID uint, filter dto.ItemFilter) (*dto.ItemListResponse, error)
	Search(ctx context.Context, tenantID uint, q string) ([]dto.ItemSearchResult, error)
	Dropdown(ctx context.Context, tenantID uint, q dto.DropdownQuery) (dto.DropdownResponse, error)
}

type itemService struct {
	repo      repository.ItemRepository
	catalog   CatalogService
	refresher CatalogRefresher // may be nil
	defaults  WidgetDefaults
}

func NewItemService(repo repository.ItemRepository, catalog CatalogService, refresher CatalogRefresher, defaults WidgetDefaults) ItemService {
	return &itemService{repo: repo, catalog: catalog, refresher: refresher, defaults: defaults}
}

func itemToResponse(it *model.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:            it.ID,
		Name:          it.Name,
		SKU:           it.SKU,
		ItemCode:      it.ItemCode,
		Type:          it.Type,
		HSNCode:       it.HSNCode,
		Unit:          it.Unit,
		SellingPrice:  it.SellingPrice,
		CostPrice:     it.CostPrice,
		TaxPreference: it.TaxPreference,
		IsActive:      it.IsActive,
	}
}

// blankToNil trims s and maps the empty string to nil.
func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// ── Create ────────────────────────────────────────────────────────────────────
// Items without a SKU get the number after the tenant's highest ITEM-nnnn
// SKU. A generated SKU that loses a race to a concurrent create is retried.

func (s *itemService) Create(ctx context.Context, tenantID uint, req dto.CreateItemRequest) (*dto.ItemResponse, error) {
	sku := strings.TrimSpace(req.SKU)
	typ := req.Type
	if typ == "" {
		typ = "goods"
	}

	it := &model.Item{
		TenantID:      tenantID,
		Name:          strings.TrimSpace(req.Name),
		ItemCode:      blankToNil(req.ItemCode),
		Type:          typ,
		HSNCode:       blankToNil(req.HSNCode),
		Unit:          blankToNil(req.Unit),
		SellingPrice:  req.SellingPrice,
		CostPrice:     req.CostPrice,
		TaxPreference: blankToNil(req.TaxPreference),
		IsActive:      true,
	}
	if err := s.insert(ctx, it, sku); err != nil {
		return nil, err
	}

	s.refresh(ctx, tenantID)
	return itemToResponse(it), nil
}

func (s *itemService) insert(ctx context.Context, it *model.Item, sku string) error {
	for attempt := 1; ; attempt++ {
		it.SKU = sku
		if sku == "" {
			n, err := s.repo.LastAutoSKU(ctx, it.TenantID)
			if err != nil {
				return fmt.Errorf("generate sku: %w", err)
			}
			it.SKU = fmt.Sprintf("ITEM-%04d", n+1)
		}

		err := s.repo.Create(ctx, it)
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if sku != "" || attempt == autoSKUAttempts {
			return ErrDuplicateItem
		}
		log.Debug().Uint("tenant_id", it.TenantID).Str("sku", it.SKU).Msg("generated sku taken, retrying")
		it.ID = 0
	}
}

// refresh drops the tenant's snapshot so the next read goes to the database,
// then schedules a rebuild.
func (s *itemService) refresh(ctx context.Context, tenantID uint) {
	if err := s.catalog.Invalidate(ctx, tenantID); err != nil {
		log.Warn().Err(err).Uint("tenant_id", tenantID).Msg("catalog invalidate failed")
	}
	if s.refresher == nil {
		return
	}
	if err := s.refresher.EnqueueCatalogRefresh(ctx, tenantID); err != nil {
		log.Warn().Err(err).Uint("tenant_id", tenantID).Msg("catalog refresh enqueue failed")
	}
}

func (s *itemService) Get(ctx context.Context, tenantID, id uint) (*dto.ItemResponse, error) {
	it, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return itemToResponse(it), nil
}

func (s *itemService) List(ctx context.Context, tenantID uint, filter dto.ItemFilter) (*dto.ItemListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	rows, total, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ItemResponse, 0, len(rows))
	for i := range rows {
		data = append(data, *itemToResponse(&rows[i]))
	}
	return &dto.ItemListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// ── Search ────────────────────────────────────────────────────────────────────
// Purchase-bill lookup: short queries return nothing, GST falls back to 18%.

func (s *itemService) Search(ctx context.Context, tenantID uint, q string) ([]dto.ItemSearchResult, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < SearchMinQueryLen {
		return []dto.ItemSearchResult{}, nil
	}
	rows, err := s.repo.Search(ctx, tenantID, q, SearchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemSearchResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, searchResult(r))
	}
	return out, nil
}

func searchResult(it model.Item) dto.ItemSearchResult {
	unit := model.Deref(it.Unit)
	if unit == "" {
		unit = defaultUnitLabel
	}
	return dto.ItemSearchResult{
		ID:            it.ID,
		Name:          it.Name,
		ItemCode:      model.Deref(it.ItemCode),
		Unit:          unit,
		PurchasePrice: it.CostPrice,
		SalePrice:     it.SellingPrice,
		HSNCode:       model.Deref(it.HSNCode),
		GSTRate:       gstRate(model.Deref(it.TaxPreference)),
	}
}

// gstRate reads the rate from a "GST@n%" label. Any other label, or one that
// does not parse, yields the default rate.
func gstRate(taxPreference string) decimal.Decimal {
	if !strings.Contains(taxPreference, "GST@") {
		return defaultGSTRate
	}
	rate := strings.Split(taxPreference, "@")[1]
	d, err := decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(rate, "%", "")))
	if err != nil {
		return defaultGSTRate
	}
	return d
}

// Dropdown renders the dropdown fragment for a query without a form session.
func (s *itemService) Dropdown(ctx context.Context, tenantID uint, q dto.DropdownQuery) (dto.DropdownResponse, error) {
	items, err := s.catalog.Items(ctx, tenantID)
	if err != nil {
		return dto.DropdownResponse{}, err
	}
	html, visible := autocomplete.Render(q.RowID, items, q.Q, s.defaults.options(q.PriceField, q.MaxResults))
	return dto.DropdownResponse{RowID: q.RowID, Visible: visible, HTML: html}, nil
}
