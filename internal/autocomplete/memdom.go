package autocomplete

import (
	"strconv"
	"strings"
)

// optionSep joins a dropdown id and an option index into an option element id,
// e.g. "dropdown_3/option/0".
const optionSep = "/option/"

// Document is an in-memory host document. It keeps elements by id, serves as
// the page Head, and is what server-side form sessions bind widgets to.
// It is not safe for concurrent use.
type Document struct {
	elements map[string]Element
	styles   map[string]string
}

func NewDocument() *Document {
	return &Document{
		elements: make(map[string]Element),
		styles:   make(map[string]string),
	}
}

// NewField creates and registers an input element.
func (d *Document) NewField(id, value string) *MemField {
	f := &MemField{id: id, value: value}
	d.elements[id] = f
	return f
}

// NewDropdown creates and registers a hidden, empty dropdown.
func (d *Document) NewDropdown(id string) *MemDropdown {
	dd := &MemDropdown{id: id}
	d.elements[id] = dd
	return dd
}

// Field returns the input registered under id, or nil.
func (d *Document) Field(id string) Field {
	if f, ok := d.elements[id].(*MemField); ok {
		return f
	}
	return nil
}

// Lookup resolves an element id. Option ids ("<dropdown>/option/<n>") resolve
// to the n-th option of that dropdown.
func (d *Document) Lookup(id string) (Element, bool) {
	if e, ok := d.elements[id]; ok {
		return e, true
	}
	parent, idx, found := strings.Cut(id, optionSep)
	if !found {
		return nil, false
	}
	dd, ok := d.elements[parent].(*MemDropdown)
	if !ok {
		return nil, false
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 {
		return nil, false
	}
	return &MemOption{parent: dd, index: n}, true
}

// Remove drops the elements with the given ids.
func (d *Document) Remove(ids ...string) {
	for _, id := range ids {
		delete(d.elements, id)
	}
}

func (d *Document) HasStyle(id string) bool {
	_, ok := d.styles[id]
	return ok
}

func (d *Document) AddStyle(id, css string) { d.styles[id] = css }

// StyleCount is the number of stylesheets in the head.
func (d *Document) StyleCount() int { return len(d.styles) }

// MemField is an in-memory input.
type MemField struct {
	id     string
	value  string
	writes int
}

func (f *MemField) ID() string    { return f.id }
func (f *MemField) Value() string { return f.value }

func (f *MemField) SetValue(v string) {
	f.value = v
	f.writes++
}

// Writes counts SetValue calls.
func (f *MemField) Writes() int { return f.writes }

func (f *MemField) Contains(target Element) bool {
	t, ok := target.(*MemField)
	return ok && t == f
}

// MemDropdown is an in-memory dropdown container.
type MemDropdown struct {
	id      string
	content string
	visible bool
	hides   int
	renders int
}

func (d *MemDropdown) ID() string { return d.id }

func (d *MemDropdown) Content() string { return d.content }
func (d *MemDropdown) Show()           { d.visible = true }
func (d *MemDropdown) Visible() bool   { return d.visible }

func (d *MemDropdown) SetContent(html string) {
	d.content = html
	d.renders++
}

func (d *MemDropdown) Hide() {
	d.visible = false
	d.hides++
}

// Hides counts Hide calls.
func (d *MemDropdown) Hides() int { return d.hides }

// Renders counts SetContent calls.
func (d *MemDropdown) Renders() int { return d.renders }

// OptionID is the element id of the index-th option.
func (d *MemDropdown) OptionID(index int) string {
	return d.id + optionSep + strconv.Itoa(index)
}

func (d *MemDropdown) Contains(target Element) bool {
	switch t := target.(type) {
	case *MemDropdown:
		return t == d
	case *MemOption:
		return t.parent == d
	}
	return false
}

func (d *MemDropdown) OptionAt(target Element) (int, bool) {
	o, ok := target.(*MemOption)
	if !ok || o.parent != d {
		return 0, false
	}
	return o.index, true
}

// MemOption is a rendered option inside a MemDropdown.
type MemOption struct {
	parent *MemDropdown
	index  int
}

func (o *MemOption) Contains(target Element) bool {
	t, ok := target.(*MemOption)
	return ok && t.parent == o.parent && t.index == o.index
}
