package postgres

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func TestToPgText(t *testing.T) {
	tests := []struct {
		in        string
		wantValid bool
		want      string
	}{
		{"", false, ""},
		{"   ", false, ""},
		{" vendor-9 ", true, "vendor-9"},
	}

	for _, tt := range tests {
		got := toPgText(tt.in)
		if got.Valid != tt.wantValid || got.String != tt.want {
			t.Errorf("toPgText(%q) = %+v, want valid=%v %q", tt.in, got, tt.wantValid, tt.want)
		}
		if back := fromPgText(got); back != tt.want {
			t.Errorf("fromPgText(toPgText(%q)) = %q, want %q", tt.in, back, tt.want)
		}
	}
}

func TestNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "12.5", "1234.5678", "-3.10", "99999999999999999999.01"} {
		d := decimal.RequireFromString(s)
		got, err := fromPgNumeric(toPgNumeric(d))
		if err != nil {
			t.Fatalf("fromPgNumeric(%s) error = %v", s, err)
		}
		if !got.Equal(d) {
			t.Errorf("round trip %s = %s", s, got)
		}
	}
}

func TestFromPgNumeric_Special(t *testing.T) {
	got, err := fromPgNumeric(pgtype.Numeric{})
	if err != nil || !got.IsZero() {
		t.Errorf("NULL numeric = %s, %v; want 0, nil", got, err)
	}
	if _, err := fromPgNumeric(pgtype.Numeric{NaN: true, Valid: true}); err == nil {
		t.Error("NaN numeric should fail")
	}
}

func TestMapError(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	other := &pgconn.PgError{Code: "23503", Message: "foreign key violation"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, core.ErrNotFound},
		{"unique violation", unique, core.ErrConflict},
		{"wrapped unique violation", fmt.Errorf("insert: %w", unique), core.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("mapError() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := mapError(other); errors.Is(got, core.ErrConflict) {
		t.Error("foreign key violation must not map to ErrConflict")
	}
	if mapError(nil) != nil {
		t.Error("mapError(nil) should be nil")
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no migrations embedded")
	}

	body, err := fs.ReadFile(migrations, files[0])
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"-- +goose Up", "-- +goose Down", "lower(sku)", "GENERATED ALWAYS AS"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("%s missing %q", files[0], want)
		}
	}
}
