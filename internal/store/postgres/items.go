package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrStockChanged is returned by MergeStock when the item's quantity moved
// after it was read, which would make the movement unbalanced.
var ErrStockChanged = errors.New("item stock changed during merge")

const itemColumns = `
	i.id::text, i.sku, i.name, i.category_id::text, c.name,
	i.location, i.picking_bin_location,
	i.picking_bin_quantity, i.overstock_quantity,
	i.reorder_level, i.picking_reorder_level,
	i.committed_stock, i.incoming_stock,
	i.auto_reorder_enabled, i.auto_reorder_quantity,
	i.unit_cost, i.retail_price,
	i.description, i.image_url, i.vendor_id, i.barcode_url,
	i.created_at, i.updated_at`

// ListSKUs returns every SKU the tenant stocks.
func (s *Store) ListSKUs(ctx context.Context) ([]string, error) {
	tenant, err := core.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `SELECT sku FROM inventory_items WHERE tenant_id = $1`, tenant)
	if err != nil {
		return nil, fmt.Errorf("list skus: %w", err)
	}
	skus, err := collectStrings(rows)
	if err != nil {
		return nil, fmt.Errorf("list skus: %w", err)
	}
	return skus, nil
}

// ListItemLocations returns the distinct locations and picking bin
// locations referenced by the tenant's items.
func (s *Store) ListItemLocations(ctx context.Context) ([]string, error) {
	tenant, err := core.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT location FROM inventory_items WHERE tenant_id = $1 AND location <> ''
		UNION
		SELECT picking_bin_location FROM inventory_items WHERE tenant_id = $1 AND picking_bin_location <> ''
	`, tenant)
	if err != nil {
		return nil, fmt.Errorf("list item locations: %w", err)
	}
	locs, err := collectStrings(rows)
	if err != nil {
		return nil, fmt.Errorf("list item locations: %w", err)
	}
	return locs, nil
}

// FindBySKU looks up an item case-insensitively.
func (s *Store) FindBySKU(ctx context.Context, sku string) (core.InventoryItem, error) {
	tenant, err := core.RequireTenant(ctx)
	if err != nil {
		return core.InventoryItem{}, err
	}

	row := s.pool.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items i
		JOIN categories c ON c.id = i.category_id
		WHERE i.tenant_id = $1 AND lower(i.sku) = lower($2)
	`, tenant, sku)

	item, err := scanItem(row)
	if err != nil {
		return core.InventoryItem{}, fmt.Errorf("find sku %q: %w", sku, mapError(err))
	}
	return item, nil
}

// CreateItem inserts a new item. A SKU clash is reported as core.ErrConflict.
func (s *Store) CreateItem(ctx context.Context, item core.InventoryItem) (core.InventoryItem, error) {
	tenant, err := core.RequireTenant(ctx)
	if err != nil {
		return core.InventoryItem{}, err
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO inventory_items (
			id, tenant_id, sku, name, category_id,
			location, picking_bin_location,
			picking_bin_quantity, overstock_quantity,
			reorder_level, picking_reorder_level,
			committed_stock, incoming_stock,
			auto_reorder_enabled, auto_reorder_quantity,
			unit_cost, retail_price,
			description, image_url, vendor_id, barcode_url,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
		RETURNING created_at, updated_at
	`,
		item.ID, tenant, item.SKU, item.Name, item.CategoryID,
		item.Location, item.PickingBinLocation,
		item.PickingBinQuantity, item.OverstockQuantity,
		item.ReorderLevel, item.PickingReorderLevel,
		item.CommittedStock, item.IncomingStock,
		item.AutoReorderEnabled, item.AutoReorderQuantity,
		toPgNumeric(item.UnitCost), toPgNumeric(item.RetailPrice),
		toPgText(item.Description), toPgText(item.ImageURL),
		toPgText(item.VendorID), toPgText(item.BarcodeURL),
		item.CreatedAt, item.UpdatedAt,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return core.InventoryItem{}, fmt.Errorf("create sku %q: %w", item.SKU, mapError(err))
	}
	return item, nil
}

// UpdateItem overwrites the item's stock fields.
func (s *Store) UpdateItem(ctx context.Context, item core.InventoryItem) error {
	tenant, err := core.RequireTenant(ctx)
	if err != nil {
		return err
	}
	return updateItem(ctx, s.pool, tenant, item, nil)
}

// MergeStock updates the item and appends its movement in one transaction.
// The update only applies if the stored quantity still equals the
// movement's OldQuantity.
func (s *Store) MergeStock(ctx context.Context, item core.InventoryItem, movement core.StockMovement) error {
	tenant, err := core.RequireTenant(ctx)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := updateItem(ctx, tx, tenant, item, &movement.OldQuantity); err != nil {
			return err
		}
		return insertMovement(ctx, tx, tenant, movement)
	})
}

func updateItem(ctx context.Context, db DBTX, tenant string, item core.InventoryItem, expectQty *int) error {
	sql := `
		UPDATE inventory_items SET
			picking_bin_quantity = $3,
			overstock_quantity = $4,
			updated_at = $5
		WHERE tenant_id = $1 AND id = $2`
	args := []any{tenant, item.ID, item.PickingBinQuantity, item.OverstockQuantity, item.UpdatedAt}
	if expectQty != nil {
		sql += ` AND quantity = $6`
		args = append(args, *expectQty)
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update sku %q: %w", item.SKU, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		if expectQty != nil {
			return fmt.Errorf("update sku %q: %w", item.SKU, ErrStockChanged)
		}
		return fmt.Errorf("update sku %q: %w", item.SKU, core.ErrNotFound)
	}
	return nil
}

func scanItem(row pgx.Row) (core.InventoryItem, error) {
	var (
		it                                   core.InventoryItem
		unitCost, retailPrice                pgtype.Numeric
		description, imageURL, vendor, barcd pgtype.Text
	)
	err := row.Scan(
		&it.ID, &it.SKU, &it.Name, &it.CategoryID, &it.Category,
		&it.Location, &it.PickingBinLocation,
		&it.PickingBinQuantity, &it.OverstockQuantity,
		&it.ReorderLevel, &it.PickingReorderLevel,
		&it.CommittedStock, &it.IncomingStock,
		&it.AutoReorderEnabled, &it.AutoReorderQuantity,
		&unitCost, &retailPrice,
		&description, &imageURL, &vendor, &barcd,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return core.InventoryItem{}, err
	}

	if it.UnitCost, err = fromPgNumeric(unitCost); err != nil {
		return core.InventoryItem{}, fmt.Errorf("unit_cost: %w", err)
	}
	if it.RetailPrice, err = fromPgNumeric(retailPrice); err != nil {
		return core.InventoryItem{}, fmt.Errorf("retail_price: %w", err)
	}
	it.Description = fromPgText(description)
	it.ImageURL = fromPgText(imageURL)
	it.VendorID = fromPgText(vendor)
	it.BarcodeURL = fromPgText(barcd)
	return it, nil
}
