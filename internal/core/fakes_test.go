package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// fakeStore implements every persistence collaborator in memory.
// The fail* fields inject errors.
type fakeStore struct {
	mu sync.Mutex

	categories []Category
	locations  []string
	items      map[string]InventoryItem // keyed by lower-cased SKU
	movements  []StockMovement

	createCategoryCalls []string
	updateCalls         int

	failListCategories error
	failCreateCategory map[string]error // keyed by lower-cased name
	conflictCategory   map[string]bool  // create returns ErrConflict after inserting as another writer
	failAddLocations   error
	failListSKUs       error
	failCreateItem     map[string]error // keyed by lower-cased SKU
	failUpdateItem     error
	failAppend         error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:              make(map[string]InventoryItem),
		failCreateCategory: make(map[string]error),
		conflictCategory:   make(map[string]bool),
		failCreateItem:     make(map[string]error),
	}
}

func (f *fakeStore) ListCategories(ctx context.Context) ([]Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failListCategories != nil {
		return nil, f.failListCategories
	}
	return append([]Category(nil), f.categories...), nil
}

func (f *fakeStore) CreateCategory(ctx context.Context, name string) (Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(name)
	f.createCategoryCalls = append(f.createCategoryCalls, name)
	if err := f.failCreateCategory[key]; err != nil {
		return Category{}, err
	}
	if f.conflictCategory[key] {
		f.categories = append(f.categories, Category{ID: "other-" + key, Name: name})
		return Category{}, fmt.Errorf("insert category: %w", ErrConflict)
	}
	for _, c := range f.categories {
		if strings.EqualFold(c.Name, name) {
			return Category{}, ErrConflict
		}
	}
	c := Category{ID: fmt.Sprintf("cat-%d", len(f.categories)+1), Name: name}
	f.categories = append(f.categories, c)
	return c, nil
}

func (f *fakeStore) ListLocations(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.locations...), nil
}

func (f *fakeStore) AddLocations(ctx context.Context, names []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAddLocations != nil {
		return f.failAddLocations
	}
	f.locations = append(f.locations, names...)
	return nil
}

func (f *fakeStore) ListSKUs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failListSKUs != nil {
		return nil, f.failListSKUs
	}
	skus := make([]string, 0, len(f.items))
	for _, it := range f.items {
		skus = append(skus, it.SKU)
	}
	return skus, nil
}

func (f *fakeStore) ListItemLocations(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var locs []string
	for _, it := range f.items {
		locs = append(locs, it.Location, it.PickingBinLocation)
	}
	return locs, nil
}

func (f *fakeStore) FindBySKU(ctx context.Context, sku string) (InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[strings.ToLower(sku)]
	if !ok {
		return InventoryItem{}, ErrNotFound
	}
	return it, nil
}

func (f *fakeStore) CreateItem(ctx context.Context, item InventoryItem) (InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(item.SKU)
	if err := f.failCreateItem[key]; err != nil {
		return InventoryItem{}, err
	}
	if _, ok := f.items[key]; ok {
		return InventoryItem{}, fmt.Errorf("insert item: %w", ErrConflict)
	}
	f.items[key] = item
	return item, nil
}

func (f *fakeStore) UpdateItem(ctx context.Context, item InventoryItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.failUpdateItem != nil {
		return f.failUpdateItem
	}
	f.items[strings.ToLower(item.SKU)] = item
	return nil
}

func (f *fakeStore) AppendMovement(ctx context.Context, m StockMovement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAppend != nil {
		return f.failAppend
	}
	f.movements = append(f.movements, m)
	return nil
}

func (f *fakeStore) ListMovements(ctx context.Context, itemID string) ([]StockMovement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []StockMovement
	for _, m := range f.movements {
		if m.ItemID == itemID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) item(sku string) (InventoryItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[strings.ToLower(sku)]
	return it, ok
}

func (f *fakeStore) seedItem(sku, name string, pick, over int) {
	f.items[strings.ToLower(sku)] = InventoryItem{
		ID:                 "item-" + sku,
		SKU:                sku,
		Name:               name,
		Location:           "Aisle 1",
		PickingBinLocation: "Bin 1",
		PickingBinQuantity: pick,
		OverstockQuantity:  over,
		UnitCost:           decimal.NewFromInt(1),
		RetailPrice:        decimal.NewFromInt(2),
	}
}

// mergingStore adds the atomic StockMerger capability to fakeStore.
type mergingStore struct {
	*fakeStore
	mergeCalls int
	failMerge  error
}

func (m *mergingStore) MergeStock(ctx context.Context, item InventoryItem, movement StockMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mergeCalls++
	if m.failMerge != nil {
		return m.failMerge
	}
	m.items[strings.ToLower(item.SKU)] = item
	m.movements = append(m.movements, movement)
	return nil
}

type fakeDiagnostics struct {
	mu      sync.Mutex
	records map[string][]string
}

func (d *fakeDiagnostics) Record(ctx context.Context, importID string, messages []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.records == nil {
		d.records = make(map[string][]string)
	}
	d.records[importID] = append([]string(nil), messages...)
}

// fakeHost answers gates and records the order it was asked in.
type fakeHost struct {
	policy    DuplicatePolicy
	policyErr error
	accept    bool
	acceptErr error
	asked     []DecisionKind
}

func (h *fakeHost) RequestDuplicatePolicy(ctx context.Context, dups []Duplicate) (DuplicatePolicy, error) {
	h.asked = append(h.asked, DecisionDuplicatePolicy)
	return h.policy, h.policyErr
}

func (h *fakeHost) RequestLocationConfirmation(ctx context.Context, locations []string) (bool, error) {
	h.asked = append(h.asked, DecisionLocationConfirmation)
	return h.accept, h.acceptErr
}

// fakeStates round-trips states through JSON like a real store would.
type fakeStates struct {
	mu     sync.Mutex
	states map[string][]byte
}

func (s *fakeStates) Save(ctx context.Context, state *ImportState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.states == nil {
		s.states = make(map[string][]byte)
	}
	s.states[state.ID] = data
	return nil
}

func (s *fakeStates) Load(ctx context.Context, id string) (*ImportState, error) {
	s.mu.Lock()
	data, ok := s.states[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrImportNotFound
	}
	var state ImportState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *fakeStates) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, id)
	return nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []ImportCompleted
	err    error
}

func (e *fakeEvents) PublishImportCompleted(ctx context.Context, event ImportCompleted) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.err
}

// newTestPipeline wires a pipeline to store with a fixed clock and ids.
func newTestPipeline(store InventoryStore, base *fakeStore, diag DiagnosticLog) *Pipeline {
	p := NewPipeline(Deps{
		Categories:  base,
		Locations:   base,
		Inventory:   store,
		Audit:       base,
		Diagnostics: diag,
	})
	p.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	n := 0
	p.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return p
}

// row builds a valid raw record; overrides replace or add keys.
func row(overrides map[string]any) map[string]any {
	r := map[string]any{
		"name":               "Widget",
		"sku":                "W-1",
		"category":           "Widgets",
		"location":           "Aisle 1",
		"pickingBinLocation": "Bin 1",
		"pickingBinQuantity": "3",
		"overstockQuantity":  "2",
		"unitCost":           "1.50",
		"retailPrice":        "3.00",
	}
	for k, v := range overrides {
		r[k] = v
	}
	return r
}

func tenantCtx() context.Context {
	return ContextWithTenant(context.Background(), "tenant-1")
}

func mustStart(t *testing.T, p *Pipeline, raw []map[string]any) *ImportState {
	t.Helper()
	state, err := p.Start(tenantCtx(), raw)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return state
}
