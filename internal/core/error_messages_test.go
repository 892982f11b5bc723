package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name: "nil error returns empty",
			err:  nil,
		},
		{
			name:        "empty batch",
			err:         ErrEmptyBatch,
			wantCode:    "IMP001",
			wantMessage: "No valid data found in the import",
		},
		{
			name:        "user aborted with kept categories",
			err:         &UserAbortedError{CategoriesKept: 2},
			wantCode:    "IMP002",
			wantMessage: "Import was cancelled",
		},
		{
			name:        "wrong phase wrapped",
			err:         fmt.Errorf("%w: phase is committed", ErrWrongPhase),
			wantCode:    "IMP003",
			wantMessage: "This import is not waiting for that decision",
		},
		{
			name:        "store conflict",
			err:         fmt.Errorf("create item: %w", ErrConflict),
			wantCode:    "DB002",
			wantMessage: "This value must be unique but already exists",
		},
		{
			name:        "postgres duplicate key",
			err:         errors.New("ERROR: duplicate key value violates unique constraint"),
			wantCode:    "DB001",
			wantMessage: "A record with this key already exists",
		},
		{
			name:        "connection refused",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "row validation",
			err:         &RowValidationError{Line: 3, Reason: "missing required fields: sku"},
			wantCode:    "ROW001",
			wantMessage: "Required fields are empty",
		},
		{
			name:        "limiter busy",
			err:         ErrTooManyImports,
			wantCode:    "UPL002",
			wantMessage: "System is busy processing other imports",
		},
		{
			name:        "expired import",
			err:         ErrImportNotFound,
			wantCode:    "UPL001",
			wantMessage: "Import not found",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("DEADLOCK detected"),
			wantCode:    "DB007",
			wantMessage: "Database was busy with conflicting operations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrEmptyBatch)
	want := "No valid data found in the import (Code: IMP001). Add at least one row below the header and try again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrConflict, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRowWriteErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "create failure carries code and action",
			err:  &FreshInsertError{Line: 3, SKU: "A-1", Err: fmt.Errorf("insert item: %w", ErrConflict)},
			want: `Line 3: could not create SKU "A-1": This value must be unique but already exists (Code: DB002). Check for duplicate entries in your file`,
		},
		{
			name: "technical detail stays out of the row message",
			err:  &DuplicateMergeWriteError{Line: 7, SKU: "B-2", Err: errors.New("pq: relation items_x has oid 4411")},
			want: `Line 7: could not merge SKU "B-2": An unexpected error occurred (Code: ERR000). Please try again or contact support`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
