package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type serviceFixture struct {
	store   *fakeStore
	states  *fakeStates
	events  *fakeEvents
	metrics *Metrics
	svc     *Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	store := newFakeStore()
	store.locations = []string{"Aisle 1", "Bin 1"}
	f := &serviceFixture{
		store:   store,
		states:  &fakeStates{},
		events:  &fakeEvents{},
		metrics: NewMetrics(prometheus.NewRegistry()),
	}
	f.svc = NewService(newTestPipeline(store, store, nil), f.states, ServiceOptions{
		Limiter: NewImportLimiter(2, time.Second),
		Metrics: f.metrics,
		Events:  f.events,
	})
	return f
}

func TestService_StartCommitsWhenNoDecisionNeeded(t *testing.T) {
	f := newServiceFixture(t)

	state, err := f.svc.StartImport(tenantCtx(), "items.csv", []map[string]any{row(nil)})
	if err != nil {
		t.Fatalf("StartImport() error = %v", err)
	}

	if state.Phase != PhaseCommitted || state.Result == nil {
		t.Fatalf("Phase = %s, want committed with result", state.Phase)
	}
	if state.Result.SuccessCount != 1 {
		t.Errorf("SuccessCount = %d, want 1", state.Result.SuccessCount)
	}
	if len(f.events.events) != 1 {
		t.Fatalf("events = %d, want 1", len(f.events.events))
	}
	ev := f.events.events[0]
	if ev.ImportID != state.ID || ev.TenantID != "tenant-1" || ev.Created != 1 || ev.Source != "items.csv" {
		t.Errorf("event = %+v", ev)
	}
	if got := testutil.ToFloat64(f.metrics.rows.WithLabelValues(string(OutcomeCreated))); got != 1 {
		t.Errorf("created rows metric = %v, want 1", got)
	}

	loaded, err := f.svc.GetImport(tenantCtx(), state.ID)
	if err != nil {
		t.Fatalf("GetImport() error = %v", err)
	}
	if loaded.Phase != PhaseCommitted {
		t.Errorf("stored Phase = %s, want committed", loaded.Phase)
	}
}

func TestService_GatesAcrossCalls(t *testing.T) {
	f := newServiceFixture(t)
	f.store.seedItem("ABC", "Existing", 5, 0)
	ctx := tenantCtx()

	state, err := f.svc.StartImport(ctx, "items.csv", []map[string]any{
		row(map[string]any{"sku": "ABC", "location": "Dock B"}),
	})
	if err != nil {
		t.Fatalf("StartImport() error = %v", err)
	}
	if state.Phase != PhaseAwaitingDuplicatePolicy {
		t.Fatalf("Phase = %s", state.Phase)
	}

	if _, err := f.svc.ConfirmLocations(ctx, state.ID, true); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("out of order ConfirmLocations: err = %v, want ErrWrongPhase", err)
	}

	state, err = f.svc.ResolveDuplicates(ctx, state.ID, PolicyMerge)
	if err != nil {
		t.Fatalf("ResolveDuplicates() error = %v", err)
	}
	if state.Phase != PhaseAwaitingLocationConfirmation {
		t.Fatalf("Phase = %s", state.Phase)
	}

	state, err = f.svc.ConfirmLocations(ctx, state.ID, true)
	if err != nil {
		t.Fatalf("ConfirmLocations() error = %v", err)
	}
	if state.Phase != PhaseCommitted || state.Result.Merged != 1 {
		t.Errorf("state = %s, result = %+v", state.Phase, state.Result)
	}
	if it, _ := f.store.item("ABC"); it.Quantity() != 10 {
		t.Errorf("quantity = %d, want 10", it.Quantity())
	}
}

func TestService_RejectLocations(t *testing.T) {
	f := newServiceFixture(t)
	ctx := tenantCtx()

	state, err := f.svc.StartImport(ctx, "items.csv", []map[string]any{row(map[string]any{"location": "Dock B"})})
	if err != nil {
		t.Fatal(err)
	}

	state, err = f.svc.ConfirmLocations(ctx, state.ID, false)
	if !errors.Is(err, ErrUserAborted) {
		t.Fatalf("err = %v, want ErrUserAborted", err)
	}
	if state.Phase != PhaseAborted {
		t.Errorf("Phase = %s, want aborted", state.Phase)
	}
	stored, _ := f.svc.GetImport(ctx, state.ID)
	if stored.Phase != PhaseAborted {
		t.Errorf("stored Phase = %s, want aborted", stored.Phase)
	}
	if len(f.store.items) != 0 {
		t.Error("aborted import wrote items")
	}
	if got := testutil.ToFloat64(f.metrics.imports.WithLabelValues(string(PhaseAborted))); got != 1 {
		t.Errorf("aborted metric = %v, want 1", got)
	}
}

func TestService_TenantIsolation(t *testing.T) {
	f := newServiceFixture(t)
	f.store.seedItem("ABC", "Existing", 5, 0)

	state, err := f.svc.StartImport(tenantCtx(), "items.csv", []map[string]any{row(map[string]any{"sku": "ABC"})})
	if err != nil {
		t.Fatal(err)
	}

	other := ContextWithTenant(context.Background(), "tenant-2")
	if _, err := f.svc.GetImport(other, state.ID); !errors.Is(err, ErrImportNotFound) {
		t.Errorf("GetImport from other tenant: err = %v, want ErrImportNotFound", err)
	}
	if _, err := f.svc.Abort(other, state.ID); !errors.Is(err, ErrImportNotFound) {
		t.Errorf("Abort from other tenant: err = %v, want ErrImportNotFound", err)
	}
	if _, err := f.svc.StartImport(context.Background(), "x.csv", []map[string]any{row(nil)}); !errors.Is(err, ErrMissingTenant) {
		t.Errorf("StartImport without tenant: err = %v, want ErrMissingTenant", err)
	}
}

func TestService_EmptyBatch(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.StartImport(tenantCtx(), "empty.csv", nil)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("err = %v, want ErrEmptyBatch", err)
	}
	if got := testutil.ToFloat64(f.metrics.imports.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed metric = %v, want 1", got)
	}
}

func TestService_PublishFailureDoesNotFailImport(t *testing.T) {
	f := newServiceFixture(t)
	f.events.err = errors.New("broker down")

	state, err := f.svc.StartImport(tenantCtx(), "items.csv", []map[string]any{row(nil)})
	if err != nil {
		t.Fatalf("StartImport() error = %v", err)
	}
	if state.Phase != PhaseCommitted {
		t.Errorf("Phase = %s, want committed", state.Phase)
	}
}

func TestService_CommitRetryAfterBusy(t *testing.T) {
	f := newServiceFixture(t)
	f.svc.limiter = NewImportLimiter(1, 20*time.Millisecond)
	ctx := tenantCtx()

	state, err := f.svc.StartImport(ctx, "items.csv", []map[string]any{row(map[string]any{"location": "Dock B"})})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.svc.limiter.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	state, err = f.svc.ConfirmLocations(ctx, state.ID, true)
	if !errors.Is(err, ErrTooManyImports) {
		t.Fatalf("err = %v, want ErrTooManyImports", err)
	}
	if state.Phase != PhaseReadyToCommit {
		t.Fatalf("Phase = %s, want ready to commit", state.Phase)
	}
	f.svc.limiter.Release()

	state, err = f.svc.Commit(ctx, state.ID)
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if state.Phase != PhaseCommitted {
		t.Errorf("Phase = %s, want committed", state.Phase)
	}
	if _, err := f.svc.Commit(ctx, state.ID); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("second Commit: err = %v, want ErrWrongPhase", err)
	}
}

func TestService_UnknownImport(t *testing.T) {
	f := newServiceFixture(t)
	if _, err := f.svc.ResolveDuplicates(tenantCtx(), "missing", PolicySkip); !errors.Is(err, ErrImportNotFound) {
		t.Errorf("err = %v, want ErrImportNotFound", err)
	}
}

func TestService_ItemMovements(t *testing.T) {
	f := newServiceFixture(t)
	f.store.seedItem("ABC", "Existing", 5, 0)
	f.svc.ledger = f.store

	state, err := f.svc.StartImport(tenantCtx(), "items.csv", []map[string]any{row(map[string]any{"sku": "ABC"})})
	if err != nil {
		t.Fatalf("StartImport() error = %v", err)
	}
	if _, err := f.svc.ResolveDuplicates(tenantCtx(), state.ID, PolicyMerge); err != nil {
		t.Fatalf("ResolveDuplicates() error = %v", err)
	}

	item, movements, err := f.svc.ItemMovements(tenantCtx(), " abc ")
	if err != nil {
		t.Fatalf("ItemMovements() error = %v", err)
	}
	if item.ID != "item-ABC" || len(movements) != 1 || movements[0].Reason != MergeReason {
		t.Errorf("item = %s, movements = %+v", item.ID, movements)
	}

	if _, _, err := f.svc.ItemMovements(tenantCtx(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown sku error = %v, want ErrNotFound", err)
	}
}

func TestService_ItemMovementsWithoutLedger(t *testing.T) {
	f := newServiceFixture(t)
	f.store.seedItem("ABC", "Existing", 5, 0)

	_, movements, err := f.svc.ItemMovements(tenantCtx(), "ABC")
	if !errors.Is(err, ErrLedgerUnavailable) {
		t.Errorf("error = %v, want ErrLedgerUnavailable", err)
	}
	if movements != nil {
		t.Errorf("movements = %v, want nil", movements)
	}
}
