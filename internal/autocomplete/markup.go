package autocomplete

import (
	"strconv"

	"github.com/rohanthewiz/element"
)

// escapedAttrs escapes the values of alternating attribute names and values.
// The builder writes attributes and text as given, so every value that reaches
// it goes through EscapeHTML first.
func escapedAttrs(kv ...string) []string {
	out := make([]string, len(kv))
	for i, s := range kv {
		if i%2 == 1 {
			s = EscapeHTML(s)
		}
		out[i] = s
	}
	return out
}

// render writes the option row for the index-th match.
func (o Option) render(b *element.Builder, index int) {
	b.DivClass("autocomplete-item", escapedAttrs(
		"data-index", strconv.Itoa(index),
		"data-row-id", o.RowID,
		"data-item-id", o.Item.ID,
		"data-item-name", o.Item.Name,
		"data-item-code", o.Item.Code(),
		"data-item-price", o.Price.String(),
		"data-item-hsn", o.Item.HSNCode,
		"data-item-unit", o.UnitLabel(),
		"data-item-tax", o.TaxLabel(),
		"style", styleItem,
	)...).R(
		b.DivClass("autocomplete-item-name", "style", styleItemName).T(EscapeHTML(o.Item.Name)),
		b.DivClass("autocomplete-item-meta", "style", styleItemMeta).R(
			b.Span().T(EscapeHTML(FormatPrice(o.Price))),
			o.badges(b),
		),
	)
}

// badges writes the optional code and HSN badges.
func (o Option) badges(b *element.Builder) (x any) {
	if code := o.Item.Code(); code != "" {
		b.SpanClass("autocomplete-badge-code").T(EscapeHTML(code))
	}
	if o.Item.HSNCode != "" {
		b.SpanClass("autocomplete-badge-hsn").T(EscapeHTML("HSN: " + o.Item.HSNCode))
	}
	return
}

// RenderOptions returns the dropdown markup for a list of options.
func RenderOptions(opts []Option) string {
	b := element.NewBuilder()
	for i, o := range opts {
		o.render(b, i)
	}
	return b.String()
}

// RenderNoResults returns the dropdown markup shown when nothing matches.
func RenderNoResults() string {
	b := element.NewBuilder()
	b.DivClass("autocomplete-no-results", "style", styleNoResults).T(EscapeHTML(NoResultsMessage))
	return b.String()
}
