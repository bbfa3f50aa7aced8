package dto

import "github.com/shopspring/decimal"

// ─── Form session requests ───────────────────────────────────────────────────

type CreateFormRequest struct {
	PriceField string `json:"price_field" validate:"omitempty,oneof=selling_price cost_price"`
	MaxResults int    `json:"max_results" validate:"min=0,max=50"`
}

type AddRowRequest struct {
	RowID    string           `json:"row_id"   validate:"required,max=40"`
	Quantity *decimal.Decimal `json:"quantity" validate:"omitempty,min=0"`
}

type RowInputRequest struct {
	Value string `json:"value" validate:"max=200"`
}

type RowSelectRequest struct {
	Index int `json:"index" validate:"min=0"`
}

type UpdateRowRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"min=0"`
}

type ClickRequest struct {
	Target string `json:"target" validate:"max=120"`
}

// DropdownQuery is the stateless dropdown render request.
type DropdownQuery struct {
	Q          string `form:"q"`
	RowID      string `form:"row_id"      validate:"required,max=40"`
	PriceField string `form:"price_field" validate:"omitempty,oneof=selling_price cost_price"`
	MaxResults int    `form:"max_results" validate:"min=0,max=50"`
}

// ─── Form session responses ──────────────────────────────────────────────────

type CreateFormResponse struct {
	FormID string `json:"form_id"`
}

type DropdownResponse struct {
	RowID   string `json:"row_id"`
	Visible bool   `json:"visible"`
	HTML    string `json:"html"`
}

// RowStateResponse mirrors the fields of one invoice row.
type RowStateResponse struct {
	RowID           string          `json:"row_id"`
	Search          string          `json:"search"`
	ItemID          string          `json:"item_id"`
	ItemName        string          `json:"item_name"`
	HSNCode         string          `json:"hsn_code"`
	Rate            string          `json:"rate"`
	Unit            string          `json:"unit"`
	GSTRate         string          `json:"gst_rate"`
	Quantity        decimal.Decimal `json:"quantity"`
	TaxableValue    decimal.Decimal `json:"taxable_value"`
	GSTAmount       decimal.Decimal `json:"gst_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DropdownVisible bool            `json:"dropdown_visible"`
}

type FormStateResponse struct {
	FormID     string             `json:"form_id"`
	PriceField string             `json:"price_field"`
	MaxResults int                `json:"max_results"`
	Rows       []RowStateResponse `json:"rows"`
}
