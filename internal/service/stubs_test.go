package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tinks231/bizbooks/internal/dto"
	"github.com/tinks231/bizbooks/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory ItemRepository ──────────────────────────────────────────────────

type memItemRepo struct {
	mu        sync.Mutex
	items     []model.Item
	nextID    uint
	listCalls int
	failList  error
	// collide makes that many Create calls fail as if a concurrent insert
	// had taken the SKU first.
	collide int
}

func newMemItemRepo(items ...model.Item) *memItemRepo {
	r := &memItemRepo{}
	for i := range items {
		_ = r.Create(context.Background(), &items[i])
	}
	return r
}

func (r *memItemRepo) Create(_ context.Context, it *model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.collide > 0 {
		r.collide--
		return gorm.ErrDuplicatedKey
	}
	for _, e := range r.items {
		if e.TenantID == it.TenantID && e.SKU == it.SKU {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	it.ID = r.nextID
	r.items = append(r.items, *it)
	return nil
}

func (r *memItemRepo) FindByID(_ context.Context, tenantID, id uint) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.ID == id && it.TenantID == tenantID {
			cp := it
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memItemRepo) ListActive(_ context.Context, tenantID uint) ([]model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.failList != nil {
		return nil, r.failList
	}
	var out []model.Item
	for _, it := range r.items {
		if it.TenantID == tenantID && it.IsActive {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memItemRepo) List(_ context.Context, tenantID uint, filter dto.ItemFilter) ([]model.Item, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []model.Item
	for _, it := range r.items {
		if it.TenantID != tenantID {
			continue
		}
		s := strings.ToLower(filter.Search)
		if s == "" || strings.Contains(strings.ToLower(it.Name), s) || strings.Contains(strings.ToLower(it.SKU), s) {
			all = append(all, it)
		}
	}
	start := (filter.Page - 1) * filter.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *memItemRepo) Search(_ context.Context, tenantID uint, q string, limit int) ([]model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q = strings.ToLower(q)
	var out []model.Item
	for _, it := range r.items {
		if it.TenantID != tenantID {
			continue
		}
		if strings.Contains(strings.ToLower(it.Name), q) || strings.Contains(strings.ToLower(model.Deref(it.ItemCode)), q) {
			out = append(out, it)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memItemRepo) LastAutoSKU(_ context.Context, tenantID uint) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	last := 0
	for _, it := range r.items {
		if it.TenantID != tenantID {
			continue
		}
		digits, ok := strings.CutPrefix(it.SKU, "ITEM-")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(digits); err == nil && n > last {
			last = n
		}
	}
	return last, nil
}

// ── Catalog fixtures ──────────────────────────────────────────────────────────

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

const testTenant uint = 1

func catalogFixture() []model.Item {
	return []model.Item{
		{
			TenantID: testTenant, Name: "Basmati Rice 5kg", SKU: "ITEM-0001", ItemCode: strPtr("RICE5"),
			HSNCode: strPtr("1006"), Unit: strPtr("bag"), SellingPrice: dec("650"), CostPrice: dec("540.50"),
			TaxPreference: strPtr("GST@5%"), IsActive: true,
		},
		{
			TenantID: testTenant, Name: "Steel Bolt M8", SKU: "ITEM-0002",
			HSNCode: strPtr("7318"), Unit: strPtr("pcs"), SellingPrice: dec("12.50"), CostPrice: dec("8"),
			TaxPreference: strPtr("GST@18%"), IsActive: true,
		},
		{
			TenantID: testTenant, Name: "Installation Service", SKU: "ITEM-0003", Type: "service",
			SellingPrice: dec("1500"), TaxPreference: strPtr("Exempt"), IsActive: true,
		},
		{
			TenantID: testTenant, Name: "Retired Rice Bran", SKU: "ITEM-0004",
			SellingPrice: dec("90"), IsActive: false,
		},
		{
			TenantID: 2, Name: "Other Tenant Rice", SKU: "T2-0001",
			SellingPrice: dec("10"), IsActive: true,
		},
	}
}

// ── Refresher stub ────────────────────────────────────────────────────────────

type stubRefresher struct {
	tenants []uint
	err     error
}

func (s *stubRefresher) EnqueueCatalogRefresh(_ context.Context, tenantID uint) error {
	s.tenants = append(s.tenants, tenantID)
	return s.err
}
