package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tinks231/bizbooks/internal/autocomplete"
	"github.com/tinks231/bizbooks/internal/dto"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrFormNotFound = errors.New("form not found")
	ErrRowNotFound  = errors.New("row not found")
	ErrNoSuchOption = errors.New("no such option")
)

const defaultFormTTL = 2 * time.Hour

var hundred = decimal.NewFromInt(100)

// FormService keeps the server side of open invoice forms. Each form owns an
// autocomplete page whose rows are driven by the client's input and click
// events; every selection recalculates the row's totals.
type FormService interface {
	Create(ctx context.Context, tenantID uint, req dto.CreateFormRequest) (dto.CreateFormResponse, error)
	Get(ctx context.Context, tenantID uint, formID string) (*dto.FormStateResponse, error)
	Close(ctx context.Context, tenantID uint, formID string) error

	AddRow(ctx context.Context, tenantID uint, formID string, req dto.AddRowRequest) (*dto.RowStateResponse, error)
	RemoveRow(ctx context.Context, tenantID uint, formID, rowID string) error
	UpdateRow(ctx context.Context, tenantID uint, formID, rowID string, req dto.UpdateRowRequest) (*dto.RowStateResponse, error)

	Input(ctx context.Context, tenantID uint, formID, rowID, value string) (dto.DropdownResponse, error)
	Select(ctx context.Context, tenantID uint, formID, rowID string, index int) (*dto.RowStateResponse, error)
	Click(ctx context.Context, tenantID uint, formID, target string) ([]dto.DropdownResponse, error)

	// PurgeExpired drops sessions idle for longer than the TTL.
	PurgeExpired() int
	// StartPurger runs PurgeExpired every interval until ctx is done.
	StartPurger(ctx context.Context, interval time.Duration)
}

// ── Session state ─────────────────────────────────────────────────────────────

type formRow struct {
	id       string
	search   *autocomplete.MemField
	itemID   *autocomplete.MemField
	rate     *autocomplete.MemField
	itemName *autocomplete.MemField
	hsnCode  *autocomplete.MemField
	unit     *autocomplete.MemField
	gstRate  *autocomplete.MemField
	dropdown *autocomplete.MemDropdown

	quantity  decimal.Decimal
	taxable   decimal.Decimal
	gstAmount decimal.Decimal
	total     decimal.Decimal
}

// elementIDs lists every document element owned by the row.
func (r *formRow) elementIDs() []string {
	return []string{
		r.search.ID(), r.itemID.ID(), r.rate.ID(), r.itemName.ID(),
		r.hsnCode.ID(), r.unit.ID(), r.gstRate.ID(), r.dropdown.ID(),
	}
}

type formSession struct {
	mu       sync.Mutex
	id       string
	tenantID uint
	opts     autocomplete.Options
	doc      *autocomplete.Document
	page     *autocomplete.Page
	rows     map[string]*formRow
	lastUsed time.Time
}

// rowFieldID addresses a named input inside a row container, e.g. "row_2/rate[]".
func rowFieldID(rowID, name string) string {
	return autocomplete.RowContainerID(rowID) + "/" + name
}

func (f *formSession) newRow(rowID string) *formRow {
	d := f.doc
	return &formRow{
		id:       rowID,
		search:   d.NewField(autocomplete.SearchInputID(rowID), ""),
		itemID:   d.NewField(autocomplete.ItemIDFieldID(rowID), ""),
		rate:     d.NewField(autocomplete.RateFieldID(rowID), ""),
		itemName: d.NewField(rowFieldID(rowID, autocomplete.FieldItemName), ""),
		hsnCode:  d.NewField(rowFieldID(rowID, autocomplete.FieldHSNCode), ""),
		unit:     d.NewField(rowFieldID(rowID, autocomplete.FieldUnit), ""),
		gstRate:  d.NewField(rowFieldID(rowID, autocomplete.FieldGSTRate), ""),
		dropdown: d.NewDropdown(autocomplete.DropdownID(rowID)),
		quantity: decimal.NewFromInt(1),
	}
}

func (r *formRow) binding() autocomplete.Binding {
	return autocomplete.Binding{
		RowID:    r.id,
		Search:   r.search,
		ItemID:   r.itemID,
		Dropdown: r.dropdown,
		Rate:     r.rate,
		Row: &autocomplete.RowFields{
			ItemName: r.itemName,
			HSNCode:  r.hsnCode,
			Rate:     r.rate,
			Unit:     r.unit,
			GSTRate:  r.gstRate,
		},
	}
}

// parseAmount reads a numeric field; blank or malformed input counts as zero.
func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// calculateRow recomputes taxable value = qty × rate, GST = taxable × rate% and
// the row total, rounded to paise.
func (r *formRow) calculateRow() {
	rate := parseAmount(r.rate.Value())
	gst := parseAmount(r.gstRate.Value())
	r.taxable = r.quantity.Mul(rate).Round(2)
	r.gstAmount = r.taxable.Mul(gst).Div(hundred).Round(2)
	r.total = r.taxable.Add(r.gstAmount)
}

func (r *formRow) state() dto.RowStateResponse {
	return dto.RowStateResponse{
		RowID:           r.id,
		Search:          r.search.Value(),
		ItemID:          r.itemID.Value(),
		ItemName:        r.itemName.Value(),
		HSNCode:         r.hsnCode.Value(),
		Rate:            r.rate.Value(),
		Unit:            r.unit.Value(),
		GSTRate:         r.gstRate.Value(),
		Quantity:        r.quantity,
		TaxableValue:    r.taxable,
		GSTAmount:       r.gstAmount,
		TotalAmount:     r.total,
		DropdownVisible: r.dropdown.Visible(),
	}
}

func (r *formRow) dropdownState() dto.DropdownResponse {
	return dto.DropdownResponse{RowID: r.id, Visible: r.dropdown.Visible(), HTML: r.dropdown.Content()}
}

// ── Service ───────────────────────────────────────────────────────────────────

type formService struct {
	catalog  CatalogService
	defaults WidgetDefaults
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	forms map[string]*formSession
}

func NewFormService(catalog CatalogService, defaults WidgetDefaults, ttl time.Duration) FormService {
	if ttl <= 0 {
		ttl = defaultFormTTL
	}
	return &formService{
		catalog:  catalog,
		defaults: defaults,
		ttl:      ttl,
		now:      time.Now,
		forms:    make(map[string]*formSession),
	}
}

func (s *formService) Create(_ context.Context, tenantID uint, req dto.CreateFormRequest) (dto.CreateFormResponse, error) {
	doc := autocomplete.NewDocument()
	f := &formSession{
		id:       uuid.NewString(),
		tenantID: tenantID,
		opts:     s.defaults.options(req.PriceField, req.MaxResults),
		doc:      doc,
		page:     autocomplete.NewPage(doc),
		rows:     make(map[string]*formRow),
		lastUsed: s.now(),
	}

	s.mu.Lock()
	s.forms[f.id] = f
	s.mu.Unlock()

	log.Debug().Str("form_id", f.id).Uint("tenant_id", tenantID).Msg("form session opened")
	return dto.CreateFormResponse{FormID: f.id}, nil
}

// acquire returns the tenant's session locked. The caller must unlock it.
func (s *formService) acquire(tenantID uint, formID string) (*formSession, error) {
	s.mu.Lock()
	f, ok := s.forms[formID]
	s.mu.Unlock()
	if !ok || f.tenantID != tenantID {
		return nil, ErrFormNotFound
	}
	f.mu.Lock()
	f.lastUsed = s.now()
	return f, nil
}

func (f *formSession) row(rowID string) (*formRow, error) {
	r, ok := f.rows[rowID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRowNotFound, rowID)
	}
	return r, nil
}

func (s *formService) Get(_ context.Context, tenantID uint, formID string) (*dto.FormStateResponse, error) {
	f, err := s.acquire(tenantID, formID)
	if err != nil {
		return nil, err
	}
	defer f.mu.Unlock()

	resp := &dto.FormStateResponse{
		FormID:     f.id,
		PriceField: string(f.opts.PriceField),
		MaxResults: f.opts.MaxResults,
		Rows:       make([]dto.RowStateResponse, 0, len(f.rows)),
	}
	for _, id := range f.page.Rows() {
		resp.Rows = append(resp.Rows, f.rows[id].state())
	}
	return resp, nil
}

func (s *formService) Close(_ context.Context, tenantID uint, formID string) error {
	f, err := s.acquire(tenantID, formID)
	if err != nil {
		return err
	}
	for _, id := range f.page.Rows() {
		f.page.Dispose(id)
	}
	f.mu.Unlock()

	s.mu.Lock()
	delete(s.forms, formID)
	s.mu.Unlock()
	return nil
}

// AddRow binds an autocomplete to rowID. Adding an existing row rebinds it
// against a fresh catalog snapshot and keeps its field values.
func (s *formService) AddRow(ctx context.Context, tenantID uint, formID string, req dto.AddRowRequest) (*dto.RowStateResponse, error) {
	items, err := s.catalog.Items(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	f, err := s.acquire(tenantID, formID)
	if err != nil {
		return nil, err
	}
	defer f.mu.Unlock()

	r, ok := f.rows[req.RowID]
	if !ok {
		r = f.newRow(req.RowID)
		f.rows[req.RowID] = r
	}
	if req.Quantity != nil {
		r.quantity = *req.Quantity
	}

	opts := f.opts
	opts.OnSelect = func(sel autocomplete.Selection) {
		log.Debug().
			Str("form_id", f.id).
			Str("row_id", sel.RowID).
			Str("item_id", sel.ItemID).
			Msg("item selected")
	}
	opts.Recalculate = func(string) { r.calculateRow() }

	if _, err := f.page.Setup(r.binding(), items, opts); err != nil {
		return nil, err
	}
	r.calculateRow()
	st := r.state()
	return &st, nil
}

func (s *formService) RemoveRow(_ context.Context, tenantID uint, formID, rowID string) error {
	f, err := s.acquire(tenantID, formID)
	if err != nil {
		return err
	}
	defer f.mu.Unlock()

	r, err := f.row(rowID)
	if err != nil {
		return err
	}
	f.page.Dispose(rowID)
	f.doc.Remove(r.elementIDs()...)
	delete(f.rows, rowID)
	return nil
}

func (s *formService) UpdateRow(_ context.Context, tenantID uint, formID, rowID string, req dto.UpdateRowRequest) (*dto.RowStateResponse, error) {
	f, err := s.acquire(tenantID, formID)
	if err != nil {
		return nil, err
	}
	defer f.mu.Unlock()

	r, err := f.row(rowID)
	if err != nil {
		return nil, err
	}
	r.quantity = req.Quantity
	r.calculateRow()
	st := r.state()
	return &st, nil
}

func (s *formService) Input(_ context.Context, tenantID uint, formID, rowID, value string) (dto.DropdownResponse, error) {
	f, err := s.acquire(tenantID, formID)
	if err != nil {
		return dto.DropdownResponse{}, err
	}
	defer f.mu.Unlock()

	r, err := f.row(rowID)
	if err != nil {
		return dto.DropdownResponse{}, err
	}
	if err := f.page.Input(rowID, value); err != nil {
		return dto.DropdownResponse{}, err
	}
	return r.dropdownState(), nil
}

func (s *formService) Select(_ context.Context, tenantID uint, formID, rowID string, index int) (*dto.RowStateResponse, error) {
	f, err := s.acquire(tenantID, formID)
	if err != nil {
		return nil, err
	}
	defer f.mu.Unlock()

	r, err := f.row(rowID)
	if err != nil {
		return nil, err
	}
	if _, err := f.page.Select(rowID, index); err != nil {
		if errors.Is(err, autocomplete.ErrNoSuchOption) {
			return nil, fmt.Errorf("%w: %d", ErrNoSuchOption, index)
		}
		return nil, err
	}
	st := r.state()
	return &st, nil
}

// Click forwards a document click. target is an element id; unknown ids are
// treated as a click on the page background.
func (s *formService) Click(_ context.Context, tenantID uint, formID, target string) ([]dto.DropdownResponse, error) {
	f, err := s.acquire(tenantID, formID)
	if err != nil {
		return nil, err
	}
	defer f.mu.Unlock()

	el, _ := f.doc.Lookup(target)
	f.page.Click(el)

	rows := f.page.Rows()
	out := make([]dto.DropdownResponse, 0, len(rows))
	for _, id := range rows {
		out = append(out, f.rows[id].dropdownState())
	}
	return out, nil
}

// ── Purge ─────────────────────────────────────────────────────────────────────

func (s *formService) PurgeExpired() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, f := range s.forms {
		f.mu.Lock()
		expired := f.lastUsed.Before(cutoff)
		f.mu.Unlock()
		if expired {
			delete(s.forms, id)
			purged++
		}
	}
	return purged
}

func (s *formService) StartPurger(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.PurgeExpired(); n > 0 {
					s.mu.Lock()
					remaining := len(s.forms)
					s.mu.Unlock()
					log.Debug().Int("purged", n).Int("remaining", remaining).Msg("form sessions purged")
				}
			}
		}
	}()
}
