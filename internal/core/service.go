package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultCommitTimeout bounds one commit, detached from the request that
// triggered it so a dropped connection cannot fail the remaining rows.
const DefaultCommitTimeout = 10 * time.Minute

// ImportCompleted is published after every commit.
type ImportCompleted struct {
	ImportID     string    `json:"import_id"`
	TenantID     string    `json:"tenant_id"`
	Source       string    `json:"source,omitempty"`
	SuccessCount int       `json:"success_count"`
	ErrorCount   int       `json:"error_count"`
	Created      int       `json:"created"`
	Merged       int       `json:"merged"`
	Skipped      int       `json:"skipped"`
	Timestamp    time.Time `json:"timestamp"`
}

// ServiceOptions configures optional Service behaviour.
type ServiceOptions struct {
	Limiter       *ImportLimiter
	Metrics       *Metrics
	Events        EventPublisher
	Ledger        MovementLister
	CommitTimeout time.Duration
}

// Service runs imports for hosts that answer gate decisions across separate
// calls, such as the HTTP API. Suspended imports live in a StateStore, and
// decisions on one import are applied one at a time.
type Service struct {
	pipeline      *Pipeline
	states        StateStore
	limiter       *ImportLimiter
	metrics       *Metrics
	events        EventPublisher
	ledger        MovementLister
	commitTimeout time.Duration

	locksMu sync.Mutex
	locks   map[string]*importLock
}

type importLock struct {
	mu   sync.Mutex
	refs int
}

// NewService creates a Service.
func NewService(pipeline *Pipeline, states StateStore, opts ServiceOptions) *Service {
	if opts.Limiter == nil {
		opts.Limiter = NewImportLimiter(DefaultMaxConcurrentImports, DefaultMaxWaitTime)
	}
	if opts.CommitTimeout <= 0 {
		opts.CommitTimeout = DefaultCommitTimeout
	}
	return &Service{
		pipeline:      pipeline,
		states:        states,
		limiter:       opts.Limiter,
		metrics:       opts.Metrics,
		events:        opts.Events,
		ledger:        opts.Ledger,
		commitTimeout: opts.CommitTimeout,
		locks:         make(map[string]*importLock),
	}
}

// StartImport begins an import for the tenant in ctx. Imports that need no
// decision are committed before returning.
func (s *Service) StartImport(ctx context.Context, source string, raw []map[string]any) (*ImportState, error) {
	tenant, err := RequireTenant(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	state, err := s.pipeline.Start(ctx, raw)
	s.limiter.Release()
	if err != nil {
		s.metrics.ObserveFailure()
		return nil, err
	}
	state.Source = source

	logger := slog.With("import_id", state.ID, "tenant_id", tenant, "source", source)
	logger.InfoContext(ctx, "import started",
		"rows", len(state.Rows),
		"duplicates", len(state.Duplicates),
		"unconfirmed_locations", len(state.Refs.UnconfirmedLocations),
		"phase", state.Phase,
	)

	var commitErr error
	if state.Phase == PhaseReadyToCommit {
		commitErr = s.commit(ctx, state)
	}
	if err := s.states.Save(ctx, state); err != nil {
		return state, fmt.Errorf("save import: %w", err)
	}
	return state, commitErr
}

// GetImport returns an import owned by the tenant in ctx.
func (s *Service) GetImport(ctx context.Context, id string) (*ImportState, error) {
	return s.load(ctx, id)
}

// ResolveDuplicates applies the duplicate policy and commits if no other
// decision is pending.
func (s *Service) ResolveDuplicates(ctx context.Context, id string, policy DuplicatePolicy) (*ImportState, error) {
	return s.withImport(ctx, id, func(state *ImportState) error {
		if err := s.pipeline.ResolveDuplicates(state, policy); err != nil {
			return err
		}
		return s.commitIfReady(ctx, state)
	})
}

// ConfirmLocations answers the location prompt and commits on acceptance.
// Rejecting returns a *UserAbortedError along with the aborted state.
func (s *Service) ConfirmLocations(ctx context.Context, id string, accept bool) (*ImportState, error) {
	return s.withImport(ctx, id, func(state *ImportState) error {
		if err := s.pipeline.ConfirmLocations(ctx, state, accept); err != nil {
			if errors.Is(err, ErrUserAborted) {
				s.metrics.ObserveAbort()
			}
			return err
		}
		return s.commitIfReady(ctx, state)
	})
}

// Commit retries the commit of an import that is ready, for example after
// the limiter turned it away.
func (s *Service) Commit(ctx context.Context, id string) (*ImportState, error) {
	return s.withImport(ctx, id, func(state *ImportState) error {
		if state.Phase != PhaseReadyToCommit {
			return fmt.Errorf("%w: phase is %s", ErrWrongPhase, state.Phase)
		}
		return s.commit(ctx, state)
	})
}

// Abort cancels an import waiting at a gate.
func (s *Service) Abort(ctx context.Context, id string) (*ImportState, error) {
	return s.withImport(ctx, id, func(state *ImportState) error {
		err := s.pipeline.Abort(state)
		if errors.Is(err, ErrUserAborted) {
			s.metrics.ObserveAbort()
		}
		return err
	})
}

// ItemMovements returns the stock ledger of the item with the given SKU.
func (s *Service) ItemMovements(ctx context.Context, sku string) (InventoryItem, []StockMovement, error) {
	if _, err := RequireTenant(ctx); err != nil {
		return InventoryItem{}, nil, err
	}
	if s.ledger == nil {
		return InventoryItem{}, nil, ErrLedgerUnavailable
	}

	item, err := s.pipeline.inventory.FindBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		return InventoryItem{}, nil, fmt.Errorf("find item %q: %w", sku, err)
	}
	movements, err := s.ledger.ListMovements(ctx, item.ID)
	if err != nil {
		return item, nil, fmt.Errorf("list movements for %q: %w", sku, err)
	}
	if movements == nil {
		movements = []StockMovement{}
	}
	return item, movements, nil
}

// WaitForImports blocks until in-flight starts and commits finish.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// LimiterStatus reports limiter usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// withImport loads an import under its lock, applies fn and saves the state
// whatever fn returned, so aborts and partial progress are persisted.
func (s *Service) withImport(ctx context.Context, id string, fn func(*ImportState) error) (*ImportState, error) {
	unlock := s.lock(id)
	defer unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	fnErr := fn(state)
	if err := s.states.Save(ctx, state); err != nil {
		return state, fmt.Errorf("save import: %w", err)
	}
	return state, fnErr
}

func (s *Service) load(ctx context.Context, id string) (*ImportState, error) {
	tenant, err := RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	state, err := s.states.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if state.TenantID != tenant {
		return nil, ErrImportNotFound
	}
	return state, nil
}

func (s *Service) commitIfReady(ctx context.Context, state *ImportState) error {
	if state.Phase != PhaseReadyToCommit {
		return nil
	}
	return s.commit(ctx, state)
}

func (s *Service) commit(ctx context.Context, state *ImportState) error {
	if err := s.limiter.Acquire(ctx); err != nil {
		return err
	}
	defer s.limiter.Release()

	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.commitTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.pipeline.Commit(commitCtx, state)
	if err != nil {
		return err
	}
	took := time.Since(start)
	s.metrics.ObserveCommit(res, took)

	slog.InfoContext(commitCtx, "import committed",
		"import_id", state.ID,
		"tenant_id", state.TenantID,
		"success_count", res.SuccessCount,
		"error_count", res.ErrorCount,
		"created", res.Created,
		"merged", res.Merged,
		"skipped", res.Skipped,
		"duration_ms", took.Milliseconds(),
	)

	s.publish(commitCtx, state, res)
	return nil
}

// publish announces the commit. Failures are logged and otherwise ignored.
func (s *Service) publish(ctx context.Context, state *ImportState, res Result) {
	if s.events == nil {
		return
	}
	event := ImportCompleted{
		ImportID:     state.ID,
		TenantID:     state.TenantID,
		Source:       state.Source,
		SuccessCount: res.SuccessCount,
		ErrorCount:   res.ErrorCount,
		Created:      res.Created,
		Merged:       res.Merged,
		Skipped:      res.Skipped,
		Timestamp:    state.Updated,
	}
	if err := s.events.PublishImportCompleted(ctx, event); err != nil {
		slog.WarnContext(ctx, "publish import completed failed", "import_id", state.ID, "error", err)
	}
}

func (s *Service) lock(id string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &importLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}
}
