package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateItemRequest struct {
	Name          string          `json:"name"           validate:"required,min=1,max=200"`
	SKU           string          `json:"sku"            validate:"omitempty,max=100"`
	ItemCode      *string         `json:"item_code"      validate:"omitempty,max=100"`
	Type          string          `json:"type"           validate:"omitempty,oneof=goods service"`
	HSNCode       *string         `json:"hsn_code"       validate:"omitempty,max=20"`
	Unit          *string         `json:"unit"           validate:"omitempty,max=50"`
	SellingPrice  decimal.Decimal `json:"selling_price"  validate:"min=0"`
	CostPrice     decimal.Decimal `json:"cost_price"     validate:"min=0"`
	TaxPreference *string         `json:"tax_preference" validate:"omitempty,max=50"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ItemFilter struct {
	Search string `form:"search"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemResponse struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	ItemCode      *string         `json:"item_code"`
	Type          string          `json:"type"`
	HSNCode       *string         `json:"hsn_code"`
	Unit          *string         `json:"unit"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	TaxPreference *string         `json:"tax_preference"`
	IsActive      bool            `json:"is_active"`
}

type ItemListResponse struct {
	Data       []ItemResponse `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// ItemSearchResult is one row of the purchase-bill item search.
type ItemSearchResult struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	ItemCode      string          `json:"item_code"`
	Unit          string          `json:"unit"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	HSNCode       string          `json:"hsn_code"`
	GSTRate       decimal.Decimal `json:"gst_rate"`
}
