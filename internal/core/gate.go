package core

import (
	"context"
	"fmt"
)

// ResolveDuplicates records the batch-wide duplicate policy.
// Valid only while the import awaits the duplicate policy.
func (p *Pipeline) ResolveDuplicates(state *ImportState, policy DuplicatePolicy) error {
	if state.Phase != PhaseAwaitingDuplicatePolicy {
		return fmt.Errorf("%w: phase is %s", ErrWrongPhase, state.Phase)
	}
	if !policy.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPolicy, policy)
	}

	state.Policy = policy
	p.advanceToLocations(state)
	return nil
}

// ConfirmLocations answers the unknown-location prompt. Accepting adds every
// listed location to the tenant's location set. Rejecting aborts the import
// and returns a *UserAbortedError.
func (p *Pipeline) ConfirmLocations(ctx context.Context, state *ImportState, accept bool) error {
	if state.Phase != PhaseAwaitingLocationConfirmation {
		return fmt.Errorf("%w: phase is %s", ErrWrongPhase, state.Phase)
	}
	if !accept {
		return p.abort(state, DecisionLocationConfirmation)
	}

	locations := state.Refs.UnconfirmedLocations
	if err := p.locations.AddLocations(ctx, locations); err != nil {
		return fmt.Errorf("add locations: %w", err)
	}
	if state.Refs.KnownLocations == nil {
		state.Refs.KnownLocations = make(map[string]bool, len(locations))
	}
	for _, loc := range locations {
		state.Refs.KnownLocations[loc] = true
	}
	state.ConfirmedLocations = locations
	state.Refs.UnconfirmedLocations = nil
	p.setPhase(state, PhaseReadyToCommit)
	return nil
}

// Abort cancels an import waiting at either gate. No inventory or stock
// movement writes happen; categories already created are kept.
func (p *Pipeline) Abort(state *ImportState) error {
	req := state.Pending()
	if req == nil {
		return fmt.Errorf("%w: phase is %s", ErrWrongPhase, state.Phase)
	}
	return p.abort(state, req.Kind)
}

func (p *Pipeline) abort(state *ImportState, gate DecisionKind) error {
	p.setPhase(state, PhaseAborted)
	return &UserAbortedError{Gate: gate, CategoriesKept: len(state.CreatedCategories)}
}

// advanceToDuplicates is the first transition after Start. With no duplicates
// the policy defaults to skip and the question is never asked.
func (p *Pipeline) advanceToDuplicates(state *ImportState) {
	if len(state.Duplicates) > 0 {
		p.setPhase(state, PhaseAwaitingDuplicatePolicy)
		return
	}
	state.Policy = PolicySkip
	p.advanceToLocations(state)
}

func (p *Pipeline) advanceToLocations(state *ImportState) {
	if state.Policy == PolicySkip {
		state.Refs.UnconfirmedLocations, state.Refs.SkippedLocations =
			splitSkippedLocations(state.Rows, state.Refs.UnconfirmedLocations)
	}
	if len(state.Refs.UnconfirmedLocations) > 0 {
		p.setPhase(state, PhaseAwaitingLocationConfirmation)
		return
	}
	p.setPhase(state, PhaseReadyToCommit)
}

func (p *Pipeline) setPhase(state *ImportState, phase Phase) {
	state.Phase = phase
	state.Updated = p.now()
}
