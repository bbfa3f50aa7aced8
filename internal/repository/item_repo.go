package repository

import (
	"context"
	"strings"

	"github.com/tinks231/bizbooks/internal/dto"
	"github.com/tinks231/bizbooks/internal/model"

	"gorm.io/gorm"
)

// ItemRepository defines the data access contract for catalog items.
// Every query is scoped to one tenant.
type ItemRepository interface {
	Create(ctx context.Context, it *model.Item) error
	FindByID(ctx context.Context, tenantID, id uint) (*model.Item, error)
	// ListActive returns the tenant's active items ordered by name, the order
	// the autocomplete offers them in.
	ListActive(ctx context.Context, tenantID uint) ([]model.Item, error)
	List(ctx context.Context, tenantID uint, filter dto.ItemFilter) ([]model.Item, int64, error)
	// Search matches name or item code, active or not, capped at limit rows.
	Search(ctx context.Context, tenantID uint, q string, limit int) ([]model.Item, error)
	// LastAutoSKU returns the highest number among the tenant's ITEM-nnnn
	// SKUs, or 0 when there are none.
	LastAutoSKU(ctx context.Context, tenantID uint) (int, error)
}

type itemRepo struct{ db *gorm.DB }

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere.
// Backslash is the default LIKE escape in Postgres.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func NewItemRepository(db *gorm.DB) ItemRepository { return &itemRepo{db: db} }

func (r *itemRepo) Create(ctx context.Context, it *model.Item) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *itemRepo) FindByID(ctx context.Context, tenantID, id uint) (*model.Item, error) {
	var it model.Item
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&it, id).Error
	return &it, err
}

func (r *itemRepo) ListActive(ctx context.Context, tenantID uint) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = true", tenantID).
		Order("name ASC").Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *itemRepo) List(ctx context.Context, tenantID uint, filter dto.ItemFilter) ([]model.Item, int64, error) {
	var items []model.Item
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Item{}).Where("tenant_id = ?", tenantID)
	if filter.Search != "" {
		like := containsPattern(filter.Search)
		q = q.Where("name ILIKE ? OR sku ILIKE ?", like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&items).Error
	return items, total, err
}

func (r *itemRepo) Search(ctx context.Context, tenantID uint, q string, limit int) ([]model.Item, error) {
	var items []model.Item
	like := containsPattern(q)
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("name ILIKE ? OR item_code ILIKE ?", like, like).
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *itemRepo) LastAutoSKU(ctx context.Context, tenantID uint) (int, error) {
	var n int
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Select("COALESCE(MAX(CAST(SUBSTRING(sku FROM 6) AS INTEGER)), 0)").
		Where("tenant_id = ? AND sku ~ ?", tenantID, `^ITEM-[0-9]{1,9}$`).
		Scan(&n).Error
	return n, err
}
