package core

import "context"

// All collaborators are tenant-scoped: implementations read the tenant from
// the context (see TenantFromContext).

// CategoryStore persists item categories.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]Category, error)
	// CreateCategory returns ErrConflict if the name already exists.
	CreateCategory(ctx context.Context, name string) (Category, error)
}

// LocationSet is the tenant's set of confirmed storage locations.
type LocationSet interface {
	ListLocations(ctx context.Context) ([]string, error)
	AddLocations(ctx context.Context, names []string) error
}

// InventoryStore persists inventory items.
type InventoryStore interface {
	ListSKUs(ctx context.Context) ([]string, error)
	// ListItemLocations returns every location and picking bin location in use.
	ListItemLocations(ctx context.Context) ([]string, error)
	// FindBySKU matches case-insensitively and returns ErrNotFound if absent.
	FindBySKU(ctx context.Context, sku string) (InventoryItem, error)
	// CreateItem returns ErrConflict if the SKU already exists.
	CreateItem(ctx context.Context, item InventoryItem) (InventoryItem, error)
	UpdateItem(ctx context.Context, item InventoryItem) error
}

// StockMerger is implemented by inventory stores that can update an item and
// append its stock movement atomically.
type StockMerger interface {
	MergeStock(ctx context.Context, item InventoryItem, movement StockMovement) error
}

// AuditLog is the append-only stock movement ledger.
type AuditLog interface {
	AppendMovement(ctx context.Context, movement StockMovement) error
}

// MovementLister reads an item's stock movements, oldest first.
type MovementLister interface {
	ListMovements(ctx context.Context, itemID string) ([]StockMovement, error)
}

// DiagnosticLog receives the full error list of imports with several errors.
// Recording is fire-and-forget.
type DiagnosticLog interface {
	Record(ctx context.Context, importID string, messages []string)
}

// EventPublisher announces completed imports to other services.
type EventPublisher interface {
	PublishImportCompleted(ctx context.Context, event ImportCompleted) error
}

// StateStore keeps suspended imports between gate decisions.
type StateStore interface {
	Save(ctx context.Context, state *ImportState) error
	// Load returns ErrImportNotFound if the import is unknown or expired.
	Load(ctx context.Context, id string) (*ImportState, error)
	Delete(ctx context.Context, id string) error
}

// Host answers gate decisions for synchronous imports.
type Host interface {
	RequestDuplicatePolicy(ctx context.Context, duplicates []Duplicate) (DuplicatePolicy, error)
	RequestLocationConfirmation(ctx context.Context, locations []string) (bool, error)
}
