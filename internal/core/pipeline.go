package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Deps holds the collaborators a Pipeline talks to.
// Diagnostics is optional.
type Deps struct {
	Categories  CategoryStore
	Locations   LocationSet
	Inventory   InventoryStore
	Audit       AuditLog
	Diagnostics DiagnosticLog
}

// Pipeline runs bulk imports. It holds no per-import state; everything about
// one import lives in its ImportState. A Pipeline is safe for concurrent use,
// but one ImportState must not be advanced concurrently.
type Pipeline struct {
	categories  CategoryStore
	locations   LocationSet
	inventory   InventoryStore
	audit       AuditLog
	diagnostics DiagnosticLog

	now   func() time.Time
	newID func() string
}

// NewPipeline creates a pipeline over the given collaborators.
func NewPipeline(deps Deps) *Pipeline {
	return &Pipeline{
		categories:  deps.Categories,
		locations:   deps.Locations,
		inventory:   deps.Inventory,
		audit:       deps.Audit,
		diagnostics: deps.Diagnostics,
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
}

// Start normalizes the batch, resolves references and detects duplicates.
// The returned state is either waiting on a decision (see ImportState.Pending)
// or ready to commit.
//
// Start returns ErrEmptyBatch before any write if no row has data.
func (p *Pipeline) Start(ctx context.Context, raw []map[string]any) (*ImportState, error) {
	rows := NormalizeBatch(raw)
	if len(rows) == 0 {
		return nil, ErrEmptyBatch
	}

	res, err := ResolveReferences(ctx, rows, p.categories, p.locations, p.inventory)
	if err != nil {
		return nil, fmt.Errorf("resolve references: %w", err)
	}

	skus, err := p.inventory.ListSKUs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list skus: %w", err)
	}
	dups := DetectDuplicates(rows, NewSKUIndex(skus))

	now := p.now()
	state := &ImportState{
		ID:                p.newID(),
		TenantID:          TenantFromContext(ctx),
		Created:           now,
		Updated:           now,
		Rows:              rows,
		Refs:              res.Refs,
		Duplicates:        dups,
		ReferenceFailures: res.Failures,
		CreatedCategories: res.Created,
	}
	p.advanceToDuplicates(state)

	slog.DebugContext(ctx, "import started",
		"import_id", state.ID,
		"rows", len(rows),
		"duplicates", len(dups),
		"unconfirmed_locations", len(res.Refs.UnconfirmedLocations),
		"categories_created", len(res.Created),
		"phase", state.Phase,
	)
	return state, nil
}

// Commit writes every row and returns the aggregated result.
// Valid only once both gates are passed. Row failures are reported in the
// result and never returned as an error.
func (p *Pipeline) Commit(ctx context.Context, state *ImportState) (Result, error) {
	if state.Phase != PhaseReadyToCommit {
		return Result{}, fmt.Errorf("%w: phase is %s", ErrWrongPhase, state.Phase)
	}

	outcomes := p.commitRows(ctx, state)
	result := Aggregate(outcomes, state.ReferenceFailures)
	result.ImportID = state.ID

	if result.ErrorCount > 1 && p.diagnostics != nil {
		p.diagnostics.Record(ctx, state.ID, result.ErrorMessages)
	}

	state.Result = &result
	p.setPhase(state, PhaseCommitted)
	return result, nil
}

// RunImport drives one import from start to finish, asking host for each
// decision in order: duplicate policy first, then unknown locations.
//
// A host error at either prompt aborts the import and is returned wrapped.
// Rejecting the locations returns a *UserAbortedError.
func (p *Pipeline) RunImport(ctx context.Context, raw []map[string]any, host Host) (Result, error) {
	state, err := p.Start(ctx, raw)
	if err != nil {
		return Result{}, err
	}

	for !state.Phase.Terminal() {
		switch state.Phase {
		case PhaseAwaitingDuplicatePolicy:
			policy, err := host.RequestDuplicatePolicy(ctx, state.Duplicates)
			if err != nil {
				p.setPhase(state, PhaseAborted)
				return Result{}, fmt.Errorf("duplicate policy: %w", err)
			}
			if err := p.ResolveDuplicates(state, policy); err != nil {
				p.setPhase(state, PhaseAborted)
				return Result{}, err
			}

		case PhaseAwaitingLocationConfirmation:
			accept, err := host.RequestLocationConfirmation(ctx, state.Refs.UnconfirmedLocations)
			if err != nil {
				p.setPhase(state, PhaseAborted)
				return Result{}, fmt.Errorf("location confirmation: %w", err)
			}
			if err := p.ConfirmLocations(ctx, state, accept); err != nil {
				var aborted *UserAbortedError
				if !errors.As(err, &aborted) {
					p.setPhase(state, PhaseAborted)
				}
				return Result{}, err
			}

		case PhaseReadyToCommit:
			return p.Commit(ctx, state)
		}
	}

	return Result{}, fmt.Errorf("%w: phase is %s", ErrWrongPhase, state.Phase)
}
