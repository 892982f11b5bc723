package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/jackc/pgx/v5"
)

// ListLocations returns the tenant's confirmed locations.
func (s *Store) ListLocations(ctx context.Context) ([]string, error) {
	tenant, err := core.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT name FROM locations WHERE tenant_id = $1 ORDER BY name
	`, tenant)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	names, err := collectStrings(rows)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return names, nil
}

// AddLocations confirms locations. Names already present are left alone.
func (s *Store) AddLocations(ctx context.Context, names []string) error {
	tenant, err := core.RequireTenant(ctx)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, name := range names {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		batch.Queue(`
			INSERT INTO locations (tenant_id, name) VALUES ($1, $2)
			ON CONFLICT (tenant_id, name) DO NOTHING
		`, tenant, name)
	}
	if batch.Len() == 0 {
		return nil
	}

	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("add locations: %w", err)
		}
		return nil
	})
}
