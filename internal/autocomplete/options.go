package autocomplete

// DefaultMaxResults caps the number of rendered matches when Options.MaxResults is unset.
const DefaultMaxResults = 10

// Options configures a widget. The zero value is usable.
type Options struct {
	PriceField PriceField
	MaxResults int

	// OnSelect runs after the row fields have been written.
	OnSelect func(Selection)

	// Recalculate is the host's row-total routine, run last on every selection.
	Recalculate func(rowID string)
}

func (o Options) withDefaults() Options {
	if !o.PriceField.Valid() {
		o.PriceField = PriceSelling
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	return o
}
