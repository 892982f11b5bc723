// Package memory keeps inventory in process memory. It backs
// STORE_BACKEND=memory and the handler tests; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/google/uuid"
)

type tenantData struct {
	categories []core.Category
	locations  map[string]bool
	items      map[string]core.InventoryItem // keyed by lower-cased SKU
	movements  []core.StockMovement
}

// Store is a mutex-guarded, tenant-scoped implementation of every import
// collaborator.
type Store struct {
	mu      sync.RWMutex
	tenants map[string]*tenantData
}

var (
	_ core.CategoryStore  = (*Store)(nil)
	_ core.LocationSet    = (*Store)(nil)
	_ core.InventoryStore = (*Store)(nil)
	_ core.StockMerger    = (*Store)(nil)
	_ core.AuditLog       = (*Store)(nil)
)

func New() *Store {
	return &Store{tenants: make(map[string]*tenantData)}
}

// data returns the tenant's bucket, creating it when create is set.
// Callers hold s.mu.
func (s *Store) data(ctx context.Context, create bool) (*tenantData, error) {
	tenant, err := core.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	d, ok := s.tenants[tenant]
	if !ok {
		if !create {
			return &tenantData{}, nil
		}
		d = &tenantData{
			locations: make(map[string]bool),
			items:     make(map[string]core.InventoryItem),
		}
		s.tenants[tenant] = d
	}
	return d, nil
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.data(ctx, false)
	if err != nil {
		return nil, err
	}
	return append([]core.Category(nil), d.categories...), nil
}

func (s *Store) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.data(ctx, true)
	if err != nil {
		return core.Category{}, err
	}
	for _, c := range d.categories {
		if key(c.Name) == key(name) {
			return core.Category{}, fmt.Errorf("category %q: %w", name, core.ErrConflict)
		}
	}
	c := core.Category{ID: uuid.NewString(), Name: name}
	d.categories = append(d.categories, c)
	return c, nil
}

func (s *Store) ListLocations(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.data(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(d.locations))
	for name := range d.locations {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) AddLocations(ctx context.Context, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.data(ctx, true)
	if err != nil {
		return err
	}
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			d.locations[name] = true
		}
	}
	return nil
}

func (s *Store) ListSKUs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.data(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(d.items))
	for _, it := range d.items {
		out = append(out, it.SKU)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) ListItemLocations(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.data(ctx, false)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, it := range d.items {
		for _, loc := range []string{it.Location, it.PickingBinLocation} {
			if loc != "" && !seen[loc] {
				seen[loc] = true
				out = append(out, loc)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) FindBySKU(ctx context.Context, sku string) (core.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.data(ctx, false)
	if err != nil {
		return core.InventoryItem{}, err
	}
	it, ok := d.items[key(sku)]
	if !ok {
		return core.InventoryItem{}, fmt.Errorf("sku %q: %w", sku, core.ErrNotFound)
	}
	return it, nil
}

func (s *Store) CreateItem(ctx context.Context, item core.InventoryItem) (core.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.data(ctx, true)
	if err != nil {
		return core.InventoryItem{}, err
	}
	k := key(item.SKU)
	if _, exists := d.items[k]; exists {
		return core.InventoryItem{}, fmt.Errorf("sku %q: %w", item.SKU, core.ErrConflict)
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	d.items[k] = item
	return item, nil
}

func (s *Store) UpdateItem(ctx context.Context, item core.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.data(ctx, true)
	if err != nil {
		return err
	}
	return d.update(item, nil)
}

// MergeStock applies the item update and the movement together, refusing
// if the stored quantity no longer equals the movement's OldQuantity.
func (s *Store) MergeStock(ctx context.Context, item core.InventoryItem, m core.StockMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.data(ctx, true)
	if err != nil {
		return err
	}
	if !m.Balanced() {
		return fmt.Errorf("movement for item %s is unbalanced", m.ItemID)
	}
	if err := d.update(item, &m.OldQuantity); err != nil {
		return err
	}
	d.movements = append(d.movements, m)
	return nil
}

func (s *Store) AppendMovement(ctx context.Context, m core.StockMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.data(ctx, true)
	if err != nil {
		return err
	}
	if !m.Balanced() {
		return fmt.Errorf("movement for item %s is unbalanced", m.ItemID)
	}
	d.movements = append(d.movements, m)
	return nil
}

// ListMovements returns an item's ledger in append order.
func (s *Store) ListMovements(ctx context.Context, itemID string) ([]core.StockMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.data(ctx, false)
	if err != nil {
		return nil, err
	}
	var out []core.StockMovement
	for _, m := range d.movements {
		if m.ItemID == itemID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (d *tenantData) update(item core.InventoryItem, expectQty *int) error {
	for k, existing := range d.items {
		if existing.ID != item.ID {
			continue
		}
		if expectQty != nil && existing.Quantity() != *expectQty {
			return fmt.Errorf("sku %q: stock changed during merge", item.SKU)
		}
		existing.PickingBinQuantity = item.PickingBinQuantity
		existing.OverstockQuantity = item.OverstockQuantity
		existing.UpdatedAt = item.UpdatedAt
		d.items[k] = existing
		return nil
	}
	return fmt.Errorf("item %s: %w", item.ID, core.ErrNotFound)
}
