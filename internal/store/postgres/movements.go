package postgres

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/stockimport/internal/core"
)

// AppendMovement writes one ledger entry. Movements are never updated.
func (s *Store) AppendMovement(ctx context.Context, m core.StockMovement) error {
	tenant, err := core.RequireTenant(ctx)
	if err != nil {
		return err
	}
	return insertMovement(ctx, s.pool, tenant, m)
}

// ListMovements returns an item's ledger, oldest first.
func (s *Store) ListMovements(ctx context.Context, itemID string) ([]core.StockMovement, error) {
	tenant, err := core.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return listMovements(ctx, s.pool, tenant, itemID)
}

func listMovements(ctx context.Context, db DBTX, tenant, itemID string) ([]core.StockMovement, error) {
	rows, err := db.Query(ctx, `
		SELECT id::text, item_id::text, item_name, type, amount,
		       old_quantity, new_quantity, reason, created_at
		FROM stock_movements
		WHERE tenant_id = $1 AND item_id = $2
		ORDER BY created_at, id
	`, tenant, itemID)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	out := []core.StockMovement{}
	for rows.Next() {
		var m core.StockMovement
		var typ string
		if err := rows.Scan(&m.ID, &m.ItemID, &m.ItemName, &typ, &m.Amount,
			&m.OldQuantity, &m.NewQuantity, &m.Reason, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Type = core.MovementType(typ)
		out = append(out, m)
	}
	return out, rows.Err()
}

func insertMovement(ctx context.Context, db DBTX, tenant string, m core.StockMovement) error {
	if !m.Balanced() {
		return fmt.Errorf("movement for item %s is unbalanced: %d -> %d by %s %d",
			m.ItemID, m.OldQuantity, m.NewQuantity, m.Type, m.Amount)
	}

	_, err := db.Exec(ctx, `
		INSERT INTO stock_movements (
			id, tenant_id, item_id, item_name, type, amount,
			old_quantity, new_quantity, reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, m.ID, tenant, m.ItemID, m.ItemName, string(m.Type), m.Amount,
		m.OldQuantity, m.NewQuantity, m.Reason, m.Timestamp)
	if err != nil {
		return fmt.Errorf("append movement: %w", mapError(err))
	}
	return nil
}
