package autocomplete

import (
	"errors"
	"regexp"

	"github.com/rs/zerolog/log"
)

var ErrNoRow = errors.New("autocomplete: row container not found")

var gstRatePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// ParseGSTRate extracts the first number embedded in a tax preference label,
// e.g. "GST@18%" yields "18". It reports false when the label has no digits.
func ParseGSTRate(taxPreference string) (string, bool) {
	m := gstRatePattern.FindStringSubmatch(taxPreference)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Selection is handed to Options.OnSelect after a match has been applied.
type Selection struct {
	RowID    string `json:"row_id"`
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	ItemCode string `json:"item_code"`
	Price    string `json:"price"`
	HSNCode  string `json:"hsn_code"`
	Unit     string `json:"unit"`
	Tax      string `json:"tax"`
}

func setValue(f Field, v string) bool {
	if f == nil {
		return false
	}
	f.SetValue(v)
	return true
}

// apply writes the option into the bound row. Optional item values that are
// empty leave their fields as they were.
func (w *Widget) apply(o Option) (Selection, error) {
	b := w.binding
	sel := Selection{
		RowID:    b.RowID,
		ItemID:   o.Item.ID,
		ItemName: o.Item.Name,
		ItemCode: o.Item.Code(),
		Price:    o.Price.String(),
		HSNCode:  o.Item.HSNCode,
		Unit:     o.Item.Unit,
		Tax:      o.Item.TaxPreference,
	}
	log.Debug().Str("row_id", sel.RowID).Str("item_id", sel.ItemID).Str("item_name", sel.ItemName).Msg("selecting item")

	if b.Row == nil {
		log.Error().Str("row_id", b.RowID).Msg("row container not found")
		return sel, ErrNoRow
	}

	setValue(b.Search, sel.ItemName)
	setValue(b.ItemID, sel.ItemID)
	setValue(b.Row.ItemName, sel.ItemName)
	if sel.HSNCode != "" {
		setValue(b.Row.HSNCode, sel.HSNCode)
	}

	rate := "0"
	if !o.Price.IsZero() {
		rate = o.Price.String()
	}
	if !setValue(b.rateField(), rate) {
		log.Debug().Str("row_id", b.RowID).Msg("rate field not found")
	}

	if sel.Unit != "" {
		setValue(b.Row.Unit, sel.Unit)
	}
	if gst, ok := ParseGSTRate(sel.Tax); ok {
		setValue(b.Row.GSTRate, gst)
	}

	w.hide()

	if w.opts.OnSelect != nil {
		w.opts.OnSelect(sel)
	}
	if w.opts.Recalculate != nil {
		w.opts.Recalculate(b.RowID)
	}
	return sel, nil
}
