// Package autocomplete filters a preloaded item catalog as the user types into
// an invoice row, renders the matches as a dropdown and writes the chosen item
// into the row's fields.
//
// A Page stands in for the host document. It owns one Widget per row and
// routes input and click events to them one at a time, so widget state never
// needs its own locking.
package autocomplete

import (
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownRow   = errors.New("autocomplete: row is not bound")
	ErrNoSuchOption = errors.New("autocomplete: no such option")
)

// Page is the host document of a set of row widgets.
type Page struct {
	mu      sync.Mutex
	head    Head
	widgets map[string]*Widget
	order   []string
}

// NewPage returns an empty page. head may be nil, in which case no
// stylesheet is injected.
func NewPage(head Head) *Page {
	return &Page{head: head, widgets: make(map[string]*Widget)}
}

// Widget is the autocomplete bound to a single row.
type Widget struct {
	page     *Page
	binding  Binding
	items    []Item
	opts     Options
	rendered []Option
	disposed bool
}

// Setup binds a widget to b. Binding the same row again disposes the previous
// widget first, so a row never carries more than one set of listeners.
func (p *Page) Setup(b Binding, items []Item, opts Options) (*Widget, error) {
	if err := b.Validate(); err != nil {
		log.Error().Err(err).Str("row_id", b.RowID).Msg("autocomplete setup failed")
		return nil, err
	}

	w := &Widget{
		page:    p,
		binding: b,
		items:   slices.Clip(items),
		opts:    opts.withDefaults(),
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if old, ok := p.widgets[b.RowID]; ok {
		old.disposed = true
		log.Debug().Str("row_id", b.RowID).Msg("replacing autocomplete widget")
	} else {
		p.order = append(p.order, b.RowID)
	}
	p.widgets[b.RowID] = w
	return w, nil
}

// Widget returns the widget bound to rowID.
func (p *Page) Widget(rowID string) (*Widget, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.widgets[rowID]
	return w, ok
}

// Rows lists the bound rows in binding order.
func (p *Page) Rows() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.order)
}

// Input delivers an input event: value becomes the search field's content
// and the dropdown is refreshed.
func (p *Page) Input(rowID, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.widgets[rowID]
	if !ok {
		return ErrUnknownRow
	}
	w.binding.Search.SetValue(value)
	w.search()
	return nil
}

// Select applies the index-th rendered option of rowID.
func (p *Page) Select(rowID string, index int) (Selection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.widgets[rowID]
	if !ok {
		return Selection{}, ErrUnknownRow
	}
	return w.selectIndex(index)
}

// Click delivers a document click. A click on a rendered option selects it;
// every widget whose search field and dropdown both lie outside target then
// hides its dropdown.
func (p *Page) Click(target Element) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, id := range p.order {
		w := p.widgets[id]
		loc, ok := w.binding.Dropdown.(OptionLocator)
		if !ok || !w.binding.Dropdown.Contains(target) {
			continue
		}
		if i, ok := loc.OptionAt(target); ok {
			_, _ = w.selectIndex(i)
		}
	}

	for _, id := range p.order {
		p.widgets[id].outsideClick(target)
	}
}

// Dispose unbinds rowID. It reports whether a widget was bound.
func (p *Page) Dispose(rowID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dispose(rowID, nil)
}

// dispose removes rowID's widget, optionally only if it is still w. Must be
// called with p.mu held.
func (p *Page) dispose(rowID string, w *Widget) bool {
	cur, ok := p.widgets[rowID]
	if !ok || (w != nil && cur != w) {
		return false
	}
	cur.disposed = true
	delete(p.widgets, rowID)
	p.order = slices.DeleteFunc(p.order, func(id string) bool { return id == rowID })
	return true
}

func (p *Page) ensureHoverStyle() {
	if p.head == nil || p.head.HasStyle(HoverStyleID) {
		return
	}
	p.head.AddStyle(HoverStyleID, hoverCSS)
}

// RowID returns the row the widget is bound to.
func (w *Widget) RowID() string { return w.binding.RowID }

// Search refreshes the dropdown from the search field's current value.
func (w *Widget) Search() {
	w.page.mu.Lock()
	defer w.page.mu.Unlock()
	if w.disposed {
		return
	}
	w.search()
}

// Select applies the index-th rendered option.
func (w *Widget) Select(index int) (Selection, error) {
	w.page.mu.Lock()
	defer w.page.mu.Unlock()
	if w.disposed {
		return Selection{}, ErrUnknownRow
	}
	return w.selectIndex(index)
}

// Options returns the options currently rendered in the dropdown.
func (w *Widget) Options() []Option {
	w.page.mu.Lock()
	defer w.page.mu.Unlock()
	return slices.Clone(w.rendered)
}

// Dispose removes the widget's input and click handlers. A widget that has
// been replaced by a later Setup is already disposed and this is a no-op.
func (w *Widget) Dispose() {
	w.page.mu.Lock()
	defer w.page.mu.Unlock()
	w.page.dispose(w.binding.RowID, w)
}

func (w *Widget) search() {
	d := w.binding.Dropdown
	q := NormalizeQuery(w.binding.Search.Value())
	if q == "" {
		w.hide()
		return
	}

	matches := Filter(w.items, q, w.opts.MaxResults)
	if len(matches) == 0 {
		w.rendered = nil
		d.SetContent(RenderNoResults())
		d.Show()
		return
	}

	w.rendered = optionsFor(w.binding.RowID, matches, w.opts.PriceField)
	d.SetContent(RenderOptions(w.rendered))
	w.page.ensureHoverStyle()
	d.Show()
}

func (w *Widget) selectIndex(i int) (Selection, error) {
	if i < 0 || i >= len(w.rendered) {
		return Selection{}, ErrNoSuchOption
	}
	return w.apply(w.rendered[i])
}

func (w *Widget) outsideClick(target Element) {
	b := w.binding
	if b.Search.Contains(target) || b.Dropdown.Contains(target) {
		return
	}
	w.hide()
}

// hide closes the dropdown. Options of a hidden dropdown are no longer
// selectable, so the rendered set is dropped with it.
func (w *Widget) hide() {
	w.rendered = nil
	w.binding.Dropdown.Hide()
}
