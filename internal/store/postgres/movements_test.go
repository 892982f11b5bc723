package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB records statements and serves canned movement rows.
type fakeDB struct {
	sql      []string
	args     [][]any
	rows     [][]any
	queryErr error
	execErr  error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql = append(f.sql, sql)
	f.args = append(f.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), f.execErr
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.sql = append(f.sql, sql)
	f.args = append(f.args, args)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{rows: f.rows, idx: -1}, nil
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("QueryRow not expected")
}

type fakeRows struct {
	rows   [][]any
	idx    int
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.idx], nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx]
	if len(dest) != len(row) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *int:
			*p = row[i].(int)
		case *time.Time:
			*p = row[i].(time.Time)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}

func TestListMovements(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	db := &fakeDB{rows: [][]any{
		{"m-1", "item-1", "Widget", "add", 5, 5, 10, core.MergeReason, at},
		{"m-2", "item-1", "Widget", "add", 2, 10, 12, core.MergeReason, at.Add(time.Minute)},
	}}

	got, err := listMovements(context.Background(), db, "acme", "item-1")
	if err != nil {
		t.Fatalf("listMovements() error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("movements = %d, want 2", len(got))
	}
	if got[0].Type != core.MovementAdd || got[0].NewQuantity != 10 || !got[0].Timestamp.Equal(at) {
		t.Errorf("first movement = %+v", got[0])
	}
	if got[1].ID != "m-2" || got[1].OldQuantity != 10 || !got[1].Balanced() {
		t.Errorf("second movement = %+v", got[1])
	}
	if args := db.args[0]; args[0] != "acme" || args[1] != "item-1" {
		t.Errorf("query args = %v, want tenant and item", args)
	}
	if !strings.Contains(db.sql[0], "ORDER BY created_at") {
		t.Errorf("query is not ordered by time: %s", db.sql[0])
	}
}

func TestListMovements_Empty(t *testing.T) {
	got, err := listMovements(context.Background(), &fakeDB{}, "acme", "item-1")
	if err != nil {
		t.Fatalf("listMovements() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("movements = %#v, want empty slice", got)
	}
}

func TestListMovements_QueryError(t *testing.T) {
	db := &fakeDB{queryErr: errors.New("connection reset")}

	_, err := listMovements(context.Background(), db, "acme", "item-1")
	if err == nil || !strings.Contains(err.Error(), "list movements") {
		t.Errorf("error = %v, want wrapped query error", err)
	}
}

func TestInsertMovement(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	balanced := core.StockMovement{
		ID: "m-1", ItemID: "item-1", ItemName: "Widget", Type: core.MovementAdd,
		Amount: 5, OldQuantity: 5, NewQuantity: 10, Reason: core.MergeReason, Timestamp: at,
	}
	unbalanced := balanced
	unbalanced.NewQuantity = 11

	tests := []struct {
		name     string
		movement core.StockMovement
		execErr  error
		wantErr  string
		wantExec bool
	}{
		{name: "balanced", movement: balanced, wantExec: true},
		{name: "unbalanced", movement: unbalanced, wantErr: "unbalanced"},
		{name: "write failure", movement: balanced, execErr: errors.New("disk full"), wantErr: "append movement", wantExec: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{execErr: tt.execErr}
			err := insertMovement(context.Background(), db, "acme", tt.movement)

			if tt.wantErr == "" && err != nil {
				t.Fatalf("insertMovement() error = %v", err)
			}
			if tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
			if got := len(db.sql) > 0; got != tt.wantExec {
				t.Errorf("executed = %v, want %v", got, tt.wantExec)
			}
			if tt.wantExec && db.args[0][1] != "acme" {
				t.Errorf("tenant arg = %v, want acme", db.args[0][1])
			}
		})
	}
}
