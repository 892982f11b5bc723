package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CandidateRow is one normalized import record.
// Quantity is always derived from the two sub-counts and never stored.
type CandidateRow struct {
	Line int `json:"line"` // 1-based line in the source file (header is line 1)

	Name               string `json:"name"`
	SKU                string `json:"sku"`
	Category           string `json:"category"`
	Location           string `json:"location"`
	PickingBinLocation string `json:"pickingBinLocation"`

	PickingBinQuantity  int `json:"pickingBinQuantity"`
	OverstockQuantity   int `json:"overstockQuantity"`
	ReorderLevel        int `json:"reorderLevel"`
	PickingReorderLevel int `json:"pickingReorderLevel"`
	CommittedStock      int `json:"committedStock"`
	IncomingStock       int `json:"incomingStock"`
	AutoReorderQuantity int `json:"autoReorderQuantity"`

	UnitCost    decimal.Decimal `json:"unitCost"`
	RetailPrice decimal.Decimal `json:"retailPrice"`

	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	VendorID    string `json:"vendorId,omitempty"`
	BarcodeURL  string `json:"barcodeUrl,omitempty"`

	AutoReorderEnabled bool `json:"autoReorderEnabled"`

	// IsDuplicate is set by the duplicate detector against the SKU snapshot.
	IsDuplicate bool `json:"isDuplicate"`
}

// Quantity returns the total on-hand quantity of the row.
func (r CandidateRow) Quantity() int {
	return r.PickingBinQuantity + r.OverstockQuantity
}

// ValidationOutcome is the result of validating a candidate row.
// Reason combines every failing check into a single message.
type ValidationOutcome struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Category is a tenant's item category.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReferenceSet holds the category and location references an import may use.
// ResolvedCategories is keyed by lower-cased category name.
//
// SkippedLocations are new locations used only by duplicate rows that the
// skip policy drops. They are never asked about or persisted.
type ReferenceSet struct {
	ResolvedCategories   map[string]Category `json:"resolvedCategories"`
	KnownLocations       map[string]bool     `json:"knownLocations"`
	UnconfirmedLocations []string            `json:"unconfirmedLocations,omitempty"`
	SkippedLocations     []string            `json:"skippedLocations,omitempty"`
}

// CategoryFor returns the resolved category for a row's category name.
func (r ReferenceSet) CategoryFor(name string) (Category, bool) {
	c, ok := r.ResolvedCategories[categoryKey(name)]
	return c, ok
}

// HasLocation reports whether the location is known.
func (r ReferenceSet) HasLocation(name string) bool {
	return r.KnownLocations[strings.TrimSpace(name)]
}

// withLocations returns a copy whose known locations also include names.
func (r ReferenceSet) withLocations(names []string) ReferenceSet {
	known := make(map[string]bool, len(r.KnownLocations)+len(names))
	for loc := range r.KnownLocations {
		known[loc] = true
	}
	for _, loc := range names {
		known[loc] = true
	}
	r.KnownLocations = known
	return r
}

func categoryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func skuKey(sku string) string {
	return strings.ToLower(strings.TrimSpace(sku))
}

// DuplicatePolicy is the batch-wide decision for rows whose SKU already exists.
type DuplicatePolicy string

const (
	PolicySkip  DuplicatePolicy = "skip"
	PolicyMerge DuplicatePolicy = "merge"
)

// Valid reports whether p is a known policy.
func (p DuplicatePolicy) Valid() bool {
	return p == PolicySkip || p == PolicyMerge
}

// ParseDuplicatePolicy parses "skip" or "merge" (case-insensitive).
func ParseDuplicatePolicy(s string) (DuplicatePolicy, bool) {
	p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

// Duplicate describes a candidate row whose SKU already exists in inventory.
type Duplicate struct {
	Line        int    `json:"line"`
	SKU         string `json:"sku"`
	CSVQuantity int    `json:"csvQuantity"`
	ItemName    string `json:"itemName"`
}

// InventoryItem is a stocked item. SKU is unique per tenant, case-insensitively.
type InventoryItem struct {
	ID                 string `json:"id"`
	SKU                string `json:"sku"`
	Name               string `json:"name"`
	CategoryID         string `json:"categoryId"`
	Category           string `json:"category"`
	Location           string `json:"location"`
	PickingBinLocation string `json:"pickingBinLocation"`

	PickingBinQuantity  int  `json:"pickingBinQuantity"`
	OverstockQuantity   int  `json:"overstockQuantity"`
	ReorderLevel        int  `json:"reorderLevel"`
	PickingReorderLevel int  `json:"pickingReorderLevel"`
	CommittedStock      int  `json:"committedStock"`
	IncomingStock       int  `json:"incomingStock"`
	AutoReorderEnabled  bool `json:"autoReorderEnabled"`
	AutoReorderQuantity int  `json:"autoReorderQuantity"`

	UnitCost    decimal.Decimal `json:"unitCost"`
	RetailPrice decimal.Decimal `json:"retailPrice"`

	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	VendorID    string `json:"vendorId,omitempty"`
	BarcodeURL  string `json:"barcodeUrl,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Quantity returns the total on-hand quantity of the item.
func (i InventoryItem) Quantity() int {
	return i.PickingBinQuantity + i.OverstockQuantity
}

// MovementType is the direction of a stock movement.
type MovementType string

const (
	MovementAdd      MovementType = "add"
	MovementSubtract MovementType = "subtract"
)

// MergeReason is the ledger reason recorded for bulk import merges.
const MergeReason = "bulk import merge"

// StockMovement is an append-only ledger entry recording a quantity change.
type StockMovement struct {
	ID          string       `json:"id"`
	ItemID      string       `json:"itemId"`
	ItemName    string       `json:"itemName"`
	Type        MovementType `json:"type"`
	Amount      int          `json:"amount"`
	OldQuantity int          `json:"oldQuantity"`
	NewQuantity int          `json:"newQuantity"`
	Reason      string       `json:"reason"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Balanced reports whether NewQuantity-OldQuantity matches Amount for the movement type.
func (m StockMovement) Balanced() bool {
	delta := m.NewQuantity - m.OldQuantity
	if m.Type == MovementSubtract {
		return delta == -m.Amount
	}
	return delta == m.Amount
}

// OutcomeTag classifies what happened to one row (or one standalone reference).
type OutcomeTag string

const (
	OutcomeCreated          OutcomeTag = "created"
	OutcomeMerged           OutcomeTag = "merged"
	OutcomeSkippedDuplicate OutcomeTag = "skipped_duplicate"
	OutcomeInvalid          OutcomeTag = "invalid"
	OutcomeReferenceFailure OutcomeTag = "reference_failure"
	OutcomeWriteFailure     OutcomeTag = "write_failure"
)

// Write failure subtypes.
const (
	SubtypeConcurrentDuplicate = "concurrent_duplicate"
	SubtypeLedgerBehind        = "ledger_behind"
)

// RowOutcome is the per-row (or per-category) result of an import.
type RowOutcome struct {
	Line    int        `json:"line,omitempty"`
	SKU     string     `json:"sku,omitempty"`
	Tag     OutcomeTag `json:"tag"`
	Subtype string     `json:"subtype,omitempty"`
	Message string     `json:"message"`
	Err     error      `json:"-"`
}

// Succeeded reports whether the outcome counts toward the success total.
func (o RowOutcome) Succeeded() bool {
	return o.Tag == OutcomeCreated || o.Tag == OutcomeMerged
}
