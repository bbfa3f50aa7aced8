package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a tenant's catalog entry: a good or a service that can be billed.
// ItemCode, HSNCode, Unit and TaxPreference are optional.
type Item struct {
	ID            uint            `gorm:"primaryKey"`
	TenantID      uint            `gorm:"not null;index:idx_item_tenant,priority:1;uniqueIndex:uni_items_tenant_sku,priority:1"`
	Name          string          `gorm:"size:200;not null"`
	SKU           string          `gorm:"size:100;not null;uniqueIndex:uni_items_tenant_sku,priority:2"`
	ItemCode      *string         `gorm:"size:100"`
	Type          string          `gorm:"size:20;not null;default:'goods'"` // goods | service
	HSNCode       *string         `gorm:"size:20"`
	Unit          *string         `gorm:"size:50"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TaxPreference *string         `gorm:"size:50"` // e.g. "GST@18%"
	IsActive      bool            `gorm:"not null;default:true;index:idx_item_tenant,priority:2"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IDString is the item id as it appears in forms.
func (i *Item) IDString() string { return strconv.FormatUint(uint64(i.ID), 10) }

// Deref returns *s or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
