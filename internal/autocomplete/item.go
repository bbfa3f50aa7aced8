package autocomplete

import "github.com/shopspring/decimal"

// PriceField selects which item price feeds the dropdown and the rate field.
type PriceField string

const (
	PriceSelling PriceField = "selling_price"
	PriceCost    PriceField = "cost_price"
)

// Valid reports whether f names a known price column.
func (f PriceField) Valid() bool {
	return f == PriceSelling || f == PriceCost
}

// Item is a read-only catalog entry offered by the autocomplete.
// Optional text fields are empty when the catalog has no value for them.
type Item struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	ItemCode      string          `json:"item_code,omitempty"`
	SKU           string          `json:"sku,omitempty"`
	HSNCode       string          `json:"hsn_code,omitempty"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	Unit          string          `json:"unit,omitempty"`
	TaxPreference string          `json:"tax_preference,omitempty"`
}

// Price returns the price named by f. Unknown fields fall back to the selling price.
func (it Item) Price(f PriceField) decimal.Decimal {
	if f == PriceCost {
		return it.CostPrice
	}
	return it.SellingPrice
}

// Code is the badge code shown in the dropdown: the item code, else the SKU.
func (it Item) Code() string {
	if it.ItemCode != "" {
		return it.ItemCode
	}
	return it.SKU
}
