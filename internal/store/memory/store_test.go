package memory

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/JonMunkholm/stockimport/internal/core"
)

func ctxFor(tenant string) context.Context {
	return core.ContextWithTenant(context.Background(), tenant)
}

func TestStore_RequiresTenant(t *testing.T) {
	s := New()
	if _, err := s.ListSKUs(context.Background()); !errors.Is(err, core.ErrMissingTenant) {
		t.Errorf("err = %v, want ErrMissingTenant", err)
	}
}

func TestStore_CategoriesCaseInsensitive(t *testing.T) {
	s := New()
	ctx := ctxFor("t1")

	if _, err := s.CreateCategory(ctx, "Tools"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateCategory(ctx, "tools"); !errors.Is(err, core.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
	if _, err := s.CreateCategory(ctxFor("t2"), "Tools"); err != nil {
		t.Errorf("other tenant create: %v", err)
	}

	cats, _ := s.ListCategories(ctx)
	if len(cats) != 1 {
		t.Errorf("len(categories) = %d, want 1", len(cats))
	}
}

func TestStore_ItemsAndLocations(t *testing.T) {
	s := New()
	ctx := ctxFor("t1")

	item := core.InventoryItem{SKU: "ABC-1", Name: "Widget", Location: "Aisle 1", PickingBinLocation: "Bin 1", PickingBinQuantity: 2}
	created, err := s.CreateItem(ctx, item)
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Error("CreateItem should assign an id")
	}
	if _, err := s.CreateItem(ctx, core.InventoryItem{SKU: "abc-1"}); !errors.Is(err, core.ErrConflict) {
		t.Errorf("duplicate sku err = %v, want ErrConflict", err)
	}

	found, err := s.FindBySKU(ctx, "abc-1")
	if err != nil || found.ID != created.ID {
		t.Errorf("FindBySKU = %+v, %v", found, err)
	}
	if _, err := s.FindBySKU(ctxFor("t2"), "ABC-1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("other tenant FindBySKU err = %v, want ErrNotFound", err)
	}

	locs, _ := s.ListItemLocations(ctx)
	if !reflect.DeepEqual(locs, []string{"Aisle 1", "Bin 1"}) {
		t.Errorf("ListItemLocations = %v", locs)
	}

	if err := s.AddLocations(ctx, []string{"Dock B", " ", "Dock B"}); err != nil {
		t.Fatal(err)
	}
	confirmed, _ := s.ListLocations(ctx)
	if !reflect.DeepEqual(confirmed, []string{"Dock B"}) {
		t.Errorf("ListLocations = %v", confirmed)
	}
}

func TestStore_MergeStock(t *testing.T) {
	s := New()
	ctx := ctxFor("t1")
	item, _ := s.CreateItem(ctx, core.InventoryItem{SKU: "ABC", PickingBinQuantity: 5})

	updated := item
	updated.OverstockQuantity = 3
	m := core.StockMovement{ID: "m1", ItemID: item.ID, Type: core.MovementAdd, Amount: 3, OldQuantity: 5, NewQuantity: 8}
	if err := s.MergeStock(ctx, updated, m); err != nil {
		t.Fatalf("MergeStock() error = %v", err)
	}

	got, _ := s.FindBySKU(ctx, "ABC")
	if got.Quantity() != 8 {
		t.Errorf("quantity = %d, want 8", got.Quantity())
	}
	ledger, _ := s.ListMovements(ctx, item.ID)
	if len(ledger) != 1 || !ledger[0].Balanced() {
		t.Errorf("ledger = %+v", ledger)
	}

	// Stale read: the stored quantity is now 8, not 5.
	if err := s.MergeStock(ctx, updated, m); err == nil {
		t.Error("stale MergeStock should fail")
	}
	if ledger, _ := s.ListMovements(ctx, item.ID); len(ledger) != 1 {
		t.Errorf("failed merge appended a movement: %d", len(ledger))
	}
}

func TestStore_RejectsUnbalancedMovement(t *testing.T) {
	s := New()
	m := core.StockMovement{ItemID: "x", Type: core.MovementAdd, Amount: 2, OldQuantity: 1, NewQuantity: 2}
	if err := s.AppendMovement(ctxFor("t1"), m); err == nil {
		t.Error("unbalanced movement should be rejected")
	}
}

func TestStore_UpdateMissing(t *testing.T) {
	s := New()
	if err := s.UpdateItem(ctxFor("t1"), core.InventoryItem{ID: "nope"}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_ConcurrentCreates(t *testing.T) {
	s := New()
	ctx := ctxFor("t1")

	var wg sync.WaitGroup
	var mu sync.Mutex
	conflicts := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.CreateItem(ctx, core.InventoryItem{SKU: "SAME"}); errors.Is(err, core.ErrConflict) {
				mu.Lock()
				conflicts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if conflicts != 19 {
		t.Errorf("conflicts = %d, want 19", conflicts)
	}
}
