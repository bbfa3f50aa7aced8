package autocomplete

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// ── Fixtures ──────────────────────────────────────────────────────────────────

func catalog() []Item {
	return []Item{
		{ID: "1", Name: "Cotton Shirt", ItemCode: "SH-001", HSNCode: "6205", SellingPrice: decimal.NewFromInt(799), CostPrice: decimal.NewFromInt(450), Unit: "pcs", TaxPreference: "GST@5%"},
		{ID: "2", Name: "Denim Jeans", SKU: "ITEM-0002", HSNCode: "6203", SellingPrice: decimal.RequireFromString("1299.50"), Unit: "pcs", TaxPreference: "GST@12%"},
		{ID: "3", Name: "Leather Belt", ItemCode: "BL-77", SellingPrice: decimal.NewFromInt(499)},
		{ID: "4", Name: "Silk Scarf", SKU: "shirt-accessory", TaxPreference: "Exempt"},
		{ID: "5", Name: "Consulting Hour", HSNCode: "998311", SellingPrice: decimal.NewFromInt(1500), Unit: "hrs", TaxPreference: "GST@18%"},
	}
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

// ── Filter ───────────────────────────────────────────────────────────────────

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "shirt", NormalizeQuery("  ShIrT \t"))
	assert.Equal(t, "", NormalizeQuery("   "))
	assert.Equal(t, "two  words", NormalizeQuery(" Two  Words "))
}

func TestFilter_MatchesAcrossFields(t *testing.T) {
	items := catalog()

	assert.Equal(t, []string{"1", "4"}, ids(Filter(items, "shirt", 10)), "name and sku")
	assert.Equal(t, []string{"3"}, ids(Filter(items, "bl-7", 10)), "item code")
	assert.Equal(t, []string{"2"}, ids(Filter(items, "item-0002", 10)), "sku")
	assert.Equal(t, []string{"1", "2"}, ids(Filter(items, "620", 10)), "hsn")
	assert.Equal(t, []string{"5"}, ids(Filter(items, "9983", 10)))
}

func TestFilter_CaseInsensitive(t *testing.T) {
	assert.Equal(t, []string{"2"}, ids(Filter(catalog(), "DENIM", 10)))
	assert.Equal(t, []string{"1"}, ids(Filter(catalog(), "sh-001", 10)))
}

func TestFilter_EmptyQuery(t *testing.T) {
	assert.Empty(t, Filter(catalog(), "", 10))
	assert.Empty(t, Filter(catalog(), "   ", 10))
}

func TestFilter_NoMatch(t *testing.T) {
	assert.Empty(t, Filter(catalog(), "xyz", 10))
}

func TestFilter_NotFuzzyNotAnchored(t *testing.T) {
	assert.Equal(t, []string{"3"}, ids(Filter(catalog(), "ther be", 10)))
	assert.Empty(t, Filter(catalog(), "ctn shirt", 10))
}

func TestFilter_TruncatesInOriginalOrder(t *testing.T) {
	var items []Item
	for i := 0; i < 25; i++ {
		items = append(items, Item{ID: fmt.Sprint(i), Name: fmt.Sprintf("Widget %02d", i)})
	}

	got := Filter(items, "widget", 10)
	assert.Len(t, got, 10)
	for i, it := range got {
		assert.Equal(t, fmt.Sprint(i), it.ID)
	}

	assert.Len(t, Filter(items, "widget", 0), 25, "limit <= 0 returns every match")
}

func TestFilter_EqualsReferenceScan(t *testing.T) {
	items := catalog()
	for _, q := range []string{"s", "e", "6", "gst", "pcs", "0", "-"} {
		var want []string
		for _, it := range items {
			if it.Matches(q) {
				want = append(want, it.ID)
			}
		}
		if len(want) > 3 {
			want = want[:3]
		}
		got := ids(Filter(items, q, 3))
		if len(want) == 0 {
			assert.Empty(t, got, q)
			continue
		}
		assert.Equal(t, want, got, q)
	}
}

func TestRender_Stateless(t *testing.T) {
	html, visible := Render("9", catalog(), "  ", Options{})
	assert.False(t, visible)
	assert.Empty(t, html)

	html, visible = Render("9", catalog(), "nothing-here", Options{})
	assert.True(t, visible)
	assert.Equal(t, RenderNoResults(), html)

	html, visible = Render("9", catalog(), "shirt", Options{PriceField: PriceCost, MaxResults: 1})
	assert.True(t, visible)
	assert.Contains(t, html, `data-row-id="9"`)
	assert.Contains(t, html, `data-item-price="450"`)
	assert.NotContains(t, html, "Silk Scarf")
}
