package postgres

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ListCategories returns the tenant's categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	tenant, err := core.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id::text, name
		FROM categories
		WHERE tenant_id = $1
		ORDER BY name
	`, tenant)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	cats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Category, error) {
		var c core.Category
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// CreateCategory inserts a category. A case-insensitive name clash is
// reported as core.ErrConflict so the caller can adopt the existing row.
func (s *Store) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	tenant, err := core.RequireTenant(ctx)
	if err != nil {
		return core.Category{}, err
	}

	c := core.Category{ID: uuid.NewString(), Name: name}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO categories (id, tenant_id, name)
		VALUES ($1, $2, $3)
	`, c.ID, tenant, c.Name)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category %q: %w", name, mapError(err))
	}
	return c, nil
}
