package core

import (
	"errors"
	"fmt"
)

// Pipeline-level errors. These stop an import; row-level errors never do.
var (
	ErrEmptyBatch     = errors.New("empty import: no data rows found")
	ErrUserAborted    = errors.New("import cancelled by user")
	ErrWrongPhase     = errors.New("import is not awaiting this decision")
	ErrInvalidPolicy  = errors.New("invalid duplicate policy")
	ErrImportNotFound = errors.New("import not found")
	ErrMissingTenant  = errors.New("missing tenant")
)

// ErrLedgerUnavailable is returned when no stock ledger reader is configured.
var ErrLedgerUnavailable = errors.New("stock ledger unavailable")

// ErrQuantityOverflow is a merge whose result would exceed MaxCount.
var ErrQuantityOverflow = errors.New("merged quantity exceeds the stock limit")

// Store errors returned by collaborators.
var (
	ErrConflict = errors.New("unique constraint conflict")
	ErrNotFound = errors.New("record not found")
)

// UserAbortedError is returned when the user rejects a gate.
// Categories created before the gate are kept.
type UserAbortedError struct {
	Gate           DecisionKind
	CategoriesKept int
}

func (e *UserAbortedError) Error() string {
	if e.CategoriesKept == 0 {
		return ErrUserAborted.Error()
	}
	return fmt.Sprintf("%s; %d new categories were kept", ErrUserAborted, e.CategoriesKept)
}

// Is makes errors.Is(err, ErrUserAborted) match.
func (e *UserAbortedError) Is(target error) bool {
	return target == ErrUserAborted
}

// RowValidationError reports a row that failed validation at commit time.
type RowValidationError struct {
	Line   int
	SKU    string
	Reason string
}

func (e *RowValidationError) Error() string {
	return fmt.Sprintf("Line %d: %s", e.Line, e.Reason)
}

// ReferenceCreationError reports a category that could not be created.
type ReferenceCreationError struct {
	Category string
	Err      error
}

func (e *ReferenceCreationError) Error() string {
	return fmt.Sprintf("Category %q could not be created: %v", e.Category, e.Err)
}

func (e *ReferenceCreationError) Unwrap() error { return e.Err }

// DuplicateSkipped reports a row left out because its SKU exists and the
// policy was skip.
type DuplicateSkipped struct {
	Line int
	SKU  string
}

func (e *DuplicateSkipped) Error() string {
	return fmt.Sprintf("Line %d: SKU %q already exists and was skipped (duplicate entry confirmation)", e.Line, e.SKU)
}

// DuplicateMergeWriteError reports a failed merge. LedgerBehind is set when
// the item was updated but its stock movement was not recorded.
type DuplicateMergeWriteError struct {
	Line         int
	SKU          string
	LedgerBehind bool
	Err          error
}

func (e *DuplicateMergeWriteError) Error() string {
	if e.LedgerBehind {
		return fmt.Sprintf("Line %d: stock for SKU %q was updated but the stock movement could not be recorded: %s",
			e.Line, e.SKU, userText(e.Err))
	}
	return fmt.Sprintf("Line %d: could not merge SKU %q: %s", e.Line, e.SKU, userText(e.Err))
}

func (e *DuplicateMergeWriteError) Unwrap() error { return e.Err }

// FreshInsertError reports a failed item creation. Concurrent is set when the
// SKU was taken after the duplicate snapshot, by another writer or by an
// earlier row in the same batch.
type FreshInsertError struct {
	Line       int
	SKU        string
	Concurrent bool
	Err        error
}

func (e *FreshInsertError) Error() string {
	if e.Concurrent {
		return fmt.Sprintf("Line %d: SKU %q was created elsewhere during this import", e.Line, e.SKU)
	}
	return fmt.Sprintf("Line %d: could not create SKU %q: %s", e.Line, e.SKU, userText(e.Err))
}

func (e *FreshInsertError) Unwrap() error { return e.Err }

// userText renders a store error for a row message without leaking internals.
func userText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return FormatUserError(err)
}
