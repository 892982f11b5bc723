package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Resolution is the outcome of reference resolution for a batch.
type Resolution struct {
	Refs ReferenceSet
	// Failures holds one ReferenceFailure outcome per category that could
	// not be created. They are not tied to a row.
	Failures []RowOutcome
	// Created lists the categories this import created, in creation order.
	Created []Category
}

// ResolveReferences makes every category named by the rows exist and collects
// locations that are not yet known. Categories are created here, before any
// gate, so they survive an aborted import. Locations are never created here.
//
// A failure to list existing categories or locations is returned as an error.
// A failure to create one category is recorded in Resolution.Failures and
// the rows using it fail validation later.
func ResolveReferences(ctx context.Context, rows []CandidateRow, categories CategoryStore, locations LocationSet, inventory InventoryStore) (Resolution, error) {
	res := Resolution{
		Refs: ReferenceSet{
			ResolvedCategories: make(map[string]Category),
			KnownLocations:     make(map[string]bool),
		},
	}

	existing, err := categories.ListCategories(ctx)
	if err != nil {
		return res, fmt.Errorf("list categories: %w", err)
	}
	for _, c := range existing {
		res.Refs.ResolvedCategories[categoryKey(c.Name)] = c
	}

	for _, name := range distinctCategories(rows) {
		key := categoryKey(name)
		if _, ok := res.Refs.ResolvedCategories[key]; ok {
			continue
		}

		created, err := createCategory(ctx, categories, name)
		if err != nil {
			cerr := &ReferenceCreationError{Category: name, Err: err}
			res.Failures = append(res.Failures, RowOutcome{
				Tag:     OutcomeReferenceFailure,
				Message: cerr.Error(),
				Err:     cerr,
			})
			continue
		}
		res.Refs.ResolvedCategories[key] = created.Category
		if created.New {
			res.Created = append(res.Created, created.Category)
		}
	}

	known, err := locations.ListLocations(ctx)
	if err != nil {
		return res, fmt.Errorf("list locations: %w", err)
	}
	inUse, err := inventory.ListItemLocations(ctx)
	if err != nil {
		return res, fmt.Errorf("list item locations: %w", err)
	}
	for _, loc := range append(known, inUse...) {
		if loc = strings.TrimSpace(loc); loc != "" {
			res.Refs.KnownLocations[loc] = true
		}
	}

	seen := make(map[string]bool)
	for _, row := range rows {
		for _, loc := range []string{row.Location, row.PickingBinLocation} {
			if loc == "" || seen[loc] || res.Refs.KnownLocations[loc] {
				continue
			}
			seen[loc] = true
			res.Refs.UnconfirmedLocations = append(res.Refs.UnconfirmedLocations, loc)
		}
	}

	return res, nil
}

// splitSkippedLocations separates the unconfirmed locations that rows to be
// written still need from those only skipped duplicate rows use. Order is kept.
func splitSkippedLocations(rows []CandidateRow, unconfirmed []string) (needed, skipped []string) {
	used := make(map[string]bool)
	for _, row := range rows {
		if row.IsDuplicate {
			continue
		}
		used[row.Location] = true
		used[row.PickingBinLocation] = true
	}
	for _, loc := range unconfirmed {
		if used[loc] {
			needed = append(needed, loc)
		} else {
			skipped = append(skipped, loc)
		}
	}
	return needed, skipped
}

type createdCategory struct {
	Category
	New bool
}

// createCategory creates a category. When another writer created it first the
// existing record is adopted.
func createCategory(ctx context.Context, categories CategoryStore, name string) (createdCategory, error) {
	c, err := categories.CreateCategory(ctx, name)
	if err == nil {
		return createdCategory{Category: c, New: true}, nil
	}
	if !errors.Is(err, ErrConflict) {
		return createdCategory{}, err
	}

	all, lerr := categories.ListCategories(ctx)
	if lerr != nil {
		return createdCategory{}, fmt.Errorf("reload after conflict: %w", lerr)
	}
	key := categoryKey(name)
	for _, existing := range all {
		if categoryKey(existing.Name) == key {
			return createdCategory{Category: existing}, nil
		}
	}
	return createdCategory{}, err
}

// distinctCategories returns category names in first-seen order, compared
// case-insensitively. The first spelling wins.
func distinctCategories(rows []CandidateRow) []string {
	seen := make(map[string]bool)
	var names []string
	for _, row := range rows {
		key := categoryKey(row.Category)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, row.Category)
	}
	return names
}
