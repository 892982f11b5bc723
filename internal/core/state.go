package core

import (
	"fmt"
	"time"
)

// Phase is the position of an import in the gate state machine.
//
//	AwaitingDuplicatePolicy -> AwaitingLocationConfirmation -> ReadyToCommit -> Committed
//	          \________________________\__________________________> Aborted
//
// Either awaiting phase is skipped when it has nothing to ask.
type Phase string

const (
	PhaseAwaitingDuplicatePolicy      Phase = "awaiting_duplicate_policy"
	PhaseAwaitingLocationConfirmation Phase = "awaiting_location_confirmation"
	PhaseReadyToCommit                Phase = "ready_to_commit"
	PhaseCommitted                    Phase = "committed"
	PhaseAborted                      Phase = "aborted"
)

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return p == PhaseCommitted || p == PhaseAborted
}

// DecisionKind names the question an import is waiting on.
type DecisionKind string

const (
	DecisionDuplicatePolicy      DecisionKind = "duplicate_policy"
	DecisionLocationConfirmation DecisionKind = "location_confirmation"
)

// DecisionRequest is what the host must answer before the import can continue.
type DecisionRequest struct {
	Kind       DecisionKind `json:"kind"`
	Duplicates []Duplicate  `json:"duplicates,omitempty"`
	Locations  []string     `json:"locations,omitempty"`
}

// ImportState is everything needed to resume a suspended import.
// It is plain data so it can be serialized between gate decisions.
type ImportState struct {
	ID       string    `json:"id"`
	TenantID string    `json:"tenantId"`
	Phase    Phase     `json:"phase"`
	Source   string    `json:"source,omitempty"` // file name, for logs
	Created  time.Time `json:"createdAt"`
	Updated  time.Time `json:"updatedAt"`

	Rows       []CandidateRow  `json:"rows"`
	Refs       ReferenceSet    `json:"refs"`
	Duplicates []Duplicate     `json:"duplicates,omitempty"`
	Policy     DuplicatePolicy `json:"policy,omitempty"`

	ConfirmedLocations []string     `json:"confirmedLocations,omitempty"`
	ReferenceFailures  []RowOutcome `json:"referenceFailures,omitempty"`
	CreatedCategories  []Category   `json:"createdCategories,omitempty"`

	Result *Result `json:"result,omitempty"`
}

// Summary is the one-line outcome of a finished import: the result headline
// once committed, or the cancellation notice with the categories that stayed
// behind. It is empty while the import is still open.
func (s *ImportState) Summary() string {
	switch {
	case s.Phase == PhaseAborted:
		msg := MapError(ErrUserAborted).Message
		if n := len(s.CreatedCategories); n > 0 {
			msg += fmt.Sprintf("; %d new %s kept", n, plural(n, "category was", "categories were"))
		}
		return msg
	case s.Result != nil:
		return s.Result.Headline()
	default:
		return ""
	}
}

// Pending returns the decision the import is waiting on, or nil.
func (s *ImportState) Pending() *DecisionRequest {
	switch s.Phase {
	case PhaseAwaitingDuplicatePolicy:
		return &DecisionRequest{Kind: DecisionDuplicatePolicy, Duplicates: s.Duplicates}
	case PhaseAwaitingLocationConfirmation:
		return &DecisionRequest{Kind: DecisionLocationConfirmation, Locations: s.Refs.UnconfirmedLocations}
	default:
		return nil
	}
}
