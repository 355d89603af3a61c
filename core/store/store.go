package store

import (
	"context"

	"stash-pricer/core/items"
)

// Filter selects stored items. Empty fields do not filter; StatIDs requires
// the item to carry every listed stat id.
type Filter struct {
	BaseType    string
	Category    items.Category
	Subcategory string
	Name        string
	StatIDs     []string
	Limit       int
}

// Searcher looks up stored items.
type Searcher interface {
	Search(ctx context.Context, f Filter) ([]items.StoredItem, error)
}

// Writer is the mutating half of the store, available inside InTx.
type Writer interface {
	// BulkInsertItems upserts items and records them as members of stashKey.
	// It returns the number of rows the database reports as written.
	BulkInsertItems(ctx context.Context, stashKey string, list []*items.StoredItem) (int, error)
	// ClearStash deletes every item recorded under stashKey and returns their ids.
	ClearStash(ctx context.Context, stashKey string) ([]string, error)
	// SetCursor replaces the ingest cursor.
	SetCursor(ctx context.Context, token string) error
}

// Store is the full primary store.
type Store interface {
	Writer
	Searcher
	// GetCursor returns the ingest cursor, empty when nothing was applied yet.
	GetCursor(ctx context.Context) (string, error)
	// InTx runs fn against a transaction-bound Writer. Returning an error rolls back.
	InTx(ctx context.Context, fn func(w Writer) error) error
	// GetItems loads items by id, ordered by id. Unknown ids are skipped.
	GetItems(ctx context.Context, ids []string) ([]items.StoredItem, error)
	// ScanMods streams every (item, stat) pair.
	ScanMods(ctx context.Context, fn func(itemID, statID string) error) error
	// CountItems returns the number of stored items.
	CountItems(ctx context.Context) (int64, error)
}

// Config selects the search backend.
type Config struct {
	// Backend is "sql" (structural search on the primary) or "setindex".
	Backend string `mapstructure:"backend" default:"sql"`
	// Threshold stops set intersection once this few candidates remain.
	Threshold int `mapstructure:"threshold" default:"32"`
	// SnapshotObject is the object name of the set-index snapshot, empty to disable.
	SnapshotObject string `mapstructure:"snapshot_object" default:"setindex/snapshot.json"`
}
