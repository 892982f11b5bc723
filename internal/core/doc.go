// Package core provides the business logic for bulk inventory imports.
//
// This package contains the import pipeline independent of any UI or
// transport layer. It can be used by web handlers, CLI tools, or tests
// without modification. Persistence is reached only through the
// collaborator interfaces in collaborators.go.
//
// # Pipeline
//
// An import runs through six stages in order:
//
//  1. Normalize: raw keyed rows become [CandidateRow] values ([NormalizeBatch]).
//  2. Resolve references: missing categories are created, unknown
//     locations are collected for confirmation ([ResolveReferences]).
//  3. Detect duplicates: rows whose SKU already exists are flagged
//     ([DetectDuplicates]).
//  4. Gate: the host decides the duplicate policy, then confirms unknown
//     locations. Either decision may abort the import.
//  5. Commit: each row is validated and written on its own ([Pipeline.Commit]).
//  6. Aggregate: per-row outcomes become a [Result] ([Aggregate]).
//
// # Gates
//
// Imports that need a decision are suspended as an [ImportState]. The state
// is plain data, so an HTTP host can persist it between requests:
//
//	state, err := pipeline.Start(ctx, rows)
//	if req := state.Pending(); req != nil {
//	    // ask the user, then:
//	    err = pipeline.ResolveDuplicates(state, core.PolicyMerge)
//	}
//
// Synchronous hosts can instead call [Pipeline.RunImport] with a [Host].
//
// Aborting an import never writes inventory or stock movements. Categories
// created during reference resolution are kept.
//
// # Error Handling
//
// Row-level failures become [RowOutcome] values and never stop the batch.
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - IMP001-IMP005: Import flow errors (empty batch, cancelled, wrong step)
//   - ROW001-ROW004: Row errors (invalid, skipped, write failures)
//   - DB001-DB007: Database errors (duplicates, constraints, connections)
//   - FILE001-FILE007: File errors (size, encoding, format)
//   - UPL001-UPL004: Upload errors (cancelled, timeout, busy)
package core
