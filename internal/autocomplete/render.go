package autocomplete

import "github.com/shopspring/decimal"

const (
	NoResultsMessage = "No items found. You can type manually or add items to inventory first."

	// HoverStyleID identifies the stylesheet injected the first time matches are rendered.
	HoverStyleID = "autocomplete-hover-style"

	hoverCSS = `.autocomplete-item:hover {
    background-color: #e3f2fd !important;
    border-left: 3px solid #007bff !important;
}`

	// Display fallbacks for the option attributes. Selection does not use them.
	DefaultUnitLabel = "pcs"
	DefaultTaxLabel  = "GST@18%"

	currencyGlyph = "₹"
)

const (
	styleNoResults = "padding: 12px; color: #666; text-align: center; font-size: 14px;"
	styleItem      = "padding: 10px 12px; cursor: pointer; border-bottom: 1px solid #e9ecef; transition: all 0.2s ease;"
	styleItemName  = "font-weight: 600; color: #333; margin-bottom: 4px;"
	styleItemMeta  = "display: flex; gap: 15px; font-size: 12px; color: #666;"
)

// Option is one rendered match, carrying everything selection needs.
type Option struct {
	RowID string
	Item  Item
	Price decimal.Decimal
}

func newOption(rowID string, it Item, pf PriceField) Option {
	return Option{RowID: rowID, Item: it, Price: it.Price(pf)}
}

// UnitLabel is the unit shown for the option.
func (o Option) UnitLabel() string {
	if o.Item.Unit == "" {
		return DefaultUnitLabel
	}
	return o.Item.Unit
}

// TaxLabel is the tax preference shown for the option.
func (o Option) TaxLabel() string {
	if o.Item.TaxPreference == "" {
		return DefaultTaxLabel
	}
	return o.Item.TaxPreference
}

// FormatPrice renders an amount with the currency glyph.
func FormatPrice(p decimal.Decimal) string {
	return currencyGlyph + p.String()
}

// Render filters items by query and returns the dropdown markup and whether
// the dropdown should be visible. It is the stateless form of a widget search.
func Render(rowID string, items []Item, query string, opts Options) (string, bool) {
	opts = opts.withDefaults()
	q := NormalizeQuery(query)
	if q == "" {
		return "", false
	}
	matches := Filter(items, q, opts.MaxResults)
	if len(matches) == 0 {
		return RenderNoResults(), true
	}
	return RenderOptions(optionsFor(rowID, matches, opts.PriceField)), true
}

func optionsFor(rowID string, items []Item, pf PriceField) []Option {
	out := make([]Option, len(items))
	for i, it := range items {
		out[i] = newOption(rowID, it, pf)
	}
	return out
}
