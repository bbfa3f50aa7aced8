package autocomplete

import "errors"

var (
	ErrNoRowID       = errors.New("autocomplete: row id is empty")
	ErrNoSearchInput = errors.New("autocomplete: search input not found")
	ErrNoDropdown    = errors.New("autocomplete: dropdown not found")
)

// Element is a handle on a node of the host document.
type Element interface {
	// Contains reports whether target is the element itself or one of its descendants.
	Contains(target Element) bool
}

// Field is a form control holding a string value.
type Field interface {
	Element
	Value() string
	SetValue(v string)
}

// Dropdown is the container that lists matches below a search field.
type Dropdown interface {
	Element
	SetContent(html string)
	Show()
	Hide()
	Visible() bool
}

// OptionLocator is implemented by dropdowns that can map a click target back
// to the index of the rendered option it falls in.
type OptionLocator interface {
	OptionAt(target Element) (int, bool)
}

// Head receives page-wide stylesheets.
type Head interface {
	HasStyle(id string) bool
	AddStyle(id, css string)
}

// RowFields are the named inputs inside one invoice row.
// Any of them may be nil; writes to a nil field are skipped.
type RowFields struct {
	ItemName Field // item_name[]
	HSNCode  Field // hsn_code[]
	Rate     Field // rate[]
	Unit     Field // unit[]
	GSTRate  Field // gst_rate[]
}

// Binding ties a widget to the elements of one row.
type Binding struct {
	RowID    string
	Search   Field
	ItemID   Field
	Dropdown Dropdown

	// Rate is the id-addressed rate input; when nil Row.Rate is used.
	Rate Field

	// Row scopes the named inputs. A nil Row aborts selection.
	Row *RowFields
}

// Validate checks the elements a widget cannot run without.
func (b Binding) Validate() error {
	switch {
	case b.RowID == "":
		return ErrNoRowID
	case b.Search == nil:
		return ErrNoSearchInput
	case b.Dropdown == nil:
		return ErrNoDropdown
	}
	return nil
}

func (b Binding) rateField() Field {
	if b.Rate != nil {
		return b.Rate
	}
	if b.Row != nil {
		return b.Row.Rate
	}
	return nil
}

// Conventional element ids and input names used by invoice forms.
const (
	FieldItemName = "item_name[]"
	FieldHSNCode  = "hsn_code[]"
	FieldRate     = "rate[]"
	FieldUnit     = "unit[]"
	FieldGSTRate  = "gst_rate[]"
)

func SearchInputID(rowID string) string  { return "item_search_" + rowID }
func ItemIDFieldID(rowID string) string  { return "item_id_" + rowID }
func DropdownID(rowID string) string     { return "dropdown_" + rowID }
func RowContainerID(rowID string) string { return "row_" + rowID }
func RateFieldID(rowID string) string    { return "rate_" + rowID }
