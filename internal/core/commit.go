package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// commitRows processes every row in original order, one at a time.
// Each row produces exactly one outcome; no failure stops the loop.
func (p *Pipeline) commitRows(ctx context.Context, state *ImportState) []RowOutcome {
	outcomes := make([]RowOutcome, 0, len(state.Rows))
	for _, row := range state.Rows {
		outcomes = append(outcomes, p.commitRow(ctx, state, row))
	}
	return outcomes
}

func (p *Pipeline) commitRow(ctx context.Context, state *ImportState, row CandidateRow) RowOutcome {
	refs := state.Refs
	if row.IsDuplicate && state.Policy == PolicySkip && len(refs.SkippedLocations) > 0 {
		refs = refs.withLocations(refs.SkippedLocations)
	}
	if v := ValidateCandidate(row, refs); !v.Valid {
		return failed(row, OutcomeInvalid, "", &RowValidationError{Line: row.Line, SKU: row.SKU, Reason: v.Reason})
	}

	if row.IsDuplicate {
		if state.Policy == PolicyMerge {
			return p.mergeRow(ctx, row)
		}
		return failed(row, OutcomeSkippedDuplicate, "", &DuplicateSkipped{Line: row.Line, SKU: row.SKU})
	}

	category, _ := state.Refs.CategoryFor(row.Category)
	return p.createRow(ctx, row, category)
}

// mergeRow adds the row's quantities to the existing item and records one
// stock movement for the change.
func (p *Pipeline) mergeRow(ctx context.Context, row CandidateRow) RowOutcome {
	existing, err := p.inventory.FindBySKU(ctx, row.SKU)
	if err != nil {
		return p.writeFailed(ctx, row, "", &DuplicateMergeWriteError{
			Line: row.Line, SKU: row.SKU, Err: fmt.Errorf("find item: %w", err),
		})
	}

	updated := existing
	updated.PickingBinQuantity += row.PickingBinQuantity
	updated.OverstockQuantity += row.OverstockQuantity
	updated.UpdatedAt = p.now()
	if updated.PickingBinQuantity > MaxCount || updated.OverstockQuantity > MaxCount || updated.Quantity() > MaxCount {
		return p.writeFailed(ctx, row, "", &DuplicateMergeWriteError{
			Line: row.Line, SKU: row.SKU,
			Err: fmt.Errorf("%w: %d on hand plus %d", ErrQuantityOverflow, existing.Quantity(), row.Quantity()),
		})
	}

	movement := StockMovement{
		ID:          p.newID(),
		ItemID:      existing.ID,
		ItemName:    existing.Name,
		Type:        MovementAdd,
		Amount:      row.Quantity(),
		OldQuantity: existing.Quantity(),
		NewQuantity: updated.Quantity(),
		Reason:      MergeReason,
		Timestamp:   updated.UpdatedAt,
	}

	if merger, ok := p.inventory.(StockMerger); ok {
		if err := merger.MergeStock(ctx, updated, movement); err != nil {
			return p.writeFailed(ctx, row, "", &DuplicateMergeWriteError{Line: row.Line, SKU: row.SKU, Err: err})
		}
		return merged(row, movement)
	}

	if err := p.inventory.UpdateItem(ctx, updated); err != nil {
		return p.writeFailed(ctx, row, "", &DuplicateMergeWriteError{Line: row.Line, SKU: row.SKU, Err: err})
	}
	if err := p.audit.AppendMovement(ctx, movement); err != nil {
		return p.writeFailed(ctx, row, SubtypeLedgerBehind, &DuplicateMergeWriteError{
			Line: row.Line, SKU: row.SKU, LedgerBehind: true, Err: err,
		})
	}
	return merged(row, movement)
}

// createRow inserts a new item. Fresh creates write no stock movement.
func (p *Pipeline) createRow(ctx context.Context, row CandidateRow, category Category) RowOutcome {
	now := p.now()
	item := InventoryItem{
		ID:                  p.newID(),
		SKU:                 row.SKU,
		Name:                row.Name,
		CategoryID:          category.ID,
		Category:            category.Name,
		Location:            row.Location,
		PickingBinLocation:  row.PickingBinLocation,
		PickingBinQuantity:  row.PickingBinQuantity,
		OverstockQuantity:   row.OverstockQuantity,
		ReorderLevel:        row.ReorderLevel,
		PickingReorderLevel: row.PickingReorderLevel,
		CommittedStock:      row.CommittedStock,
		IncomingStock:       row.IncomingStock,
		AutoReorderEnabled:  row.AutoReorderEnabled,
		AutoReorderQuantity: row.AutoReorderQuantity,
		UnitCost:            row.UnitCost,
		RetailPrice:         row.RetailPrice,
		Description:         row.Description,
		ImageURL:            row.ImageURL,
		VendorID:            row.VendorID,
		BarcodeURL:          row.BarcodeURL,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if _, err := p.inventory.CreateItem(ctx, item); err != nil {
		if errors.Is(err, ErrConflict) {
			return p.writeFailed(ctx, row, SubtypeConcurrentDuplicate, &FreshInsertError{
				Line: row.Line, SKU: row.SKU, Concurrent: true, Err: err,
			})
		}
		return p.writeFailed(ctx, row, "", &FreshInsertError{Line: row.Line, SKU: row.SKU, Err: err})
	}

	return RowOutcome{
		Line:    row.Line,
		SKU:     row.SKU,
		Tag:     OutcomeCreated,
		Message: fmt.Sprintf("Line %d: created SKU %q", row.Line, row.SKU),
	}
}

func (p *Pipeline) writeFailed(ctx context.Context, row CandidateRow, subtype string, err error) RowOutcome {
	slog.WarnContext(ctx, "import row write failed",
		"line", row.Line,
		"sku", row.SKU,
		"subtype", subtype,
		"error", err,
	)
	return failed(row, OutcomeWriteFailure, subtype, err)
}

func failed(row CandidateRow, tag OutcomeTag, subtype string, err error) RowOutcome {
	return RowOutcome{
		Line:    row.Line,
		SKU:     row.SKU,
		Tag:     tag,
		Subtype: subtype,
		Message: err.Error(),
		Err:     err,
	}
}

func merged(row CandidateRow, m StockMovement) RowOutcome {
	return RowOutcome{
		Line: row.Line,
		SKU:  row.SKU,
		Tag:  OutcomeMerged,
		Message: fmt.Sprintf("Line %d: added %d to SKU %q (%d -> %d)",
			row.Line, m.Amount, row.SKU, m.OldQuantity, m.NewQuantity),
	}
}
