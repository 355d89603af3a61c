package reconcile

import (
	"context"
	"fmt"

	"stash-pricer/core/setindex"
	"stash-pricer/core/storage"
)

// Adapter loads one side of the comparison.
type Adapter interface {
	// Name identifies the side in errors and logs.
	Name() string

	// Load returns the side's item -> stat index.
	Load(ctx context.Context) (Index, error)
}

// ModScanner streams the primary store's (item, stat) pairs.
type ModScanner interface {
	ScanMods(ctx context.Context, fn func(itemID, statID string) error) error
}

// PrimaryAdapter reads the mod table of the primary store.
type PrimaryAdapter struct {
	Store ModScanner
}

// Name returns "primary".
func (PrimaryAdapter) Name() string { return "primary" }

// Load scans every mod row.
func (a PrimaryAdapter) Load(ctx context.Context) (Index, error) {
	idx := make(Index)
	err := a.Store.ScanMods(ctx, func(itemID, statID string) error {
		idx.Add(itemID, statID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan primary mods: %w", err)
	}
	return idx, nil
}

// SnapshotAdapter reads a set-index snapshot from the bucket.
type SnapshotAdapter struct {
	Client storage.Client
	Bucket string
	Object string
}

// Name returns "snapshot".
func (SnapshotAdapter) Name() string { return "snapshot" }

// Load downloads the snapshot and inverts it to item -> stats. A missing
// snapshot returns an error matching storage.IsNotFound.
func (a SnapshotAdapter) Load(ctx context.Context) (Index, error) {
	var snap setindex.Snapshot
	if err := storage.GetJSON(ctx, a.Client, a.Bucket, a.Object, &snap); err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", a.Object, err)
	}
	idx := make(Index)
	for statID, ids := range snap.Stats {
		for _, id := range ids {
			idx.Add(id, statID)
		}
	}
	return idx, nil
}
