package setindex

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stash-pricer/core/storage"

	"go.uber.org/zap"
)

// Snapshot is the persisted form of the index.
type Snapshot struct {
	Built time.Time           `json:"built"`
	Stats map[string][]string `json:"stats"`
}

// Save writes a snapshot of the index, building it first if needed.
func (i *Index) Save(ctx context.Context, client storage.Client, bucket, object string) error {
	if err := i.ensureBuilt(ctx); err != nil {
		return err
	}

	i.mu.RLock()
	snap := Snapshot{Built: i.built, Stats: make(map[string][]string, len(i.sets))}
	for statID, s := range i.sets {
		ids := make([]string, 0, len(s))
		for id := range s {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		snap.Stats[statID] = ids
	}
	i.mu.RUnlock()

	if err := storage.PutJSON(ctx, client, bucket, object, snap); err != nil {
		return fmt.Errorf("save set index: %w", err)
	}
	i.log.Info("Set index snapshot saved", zap.String("object", object), zap.Int("stats", len(snap.Stats)))
	return nil
}

// Restore replaces the index with a saved snapshot. A missing snapshot
// returns an error matching storage.IsNotFound and leaves the index as is.
func (i *Index) Restore(ctx context.Context, client storage.Client, bucket, object string) error {
	var snap Snapshot
	if err := storage.GetJSON(ctx, client, bucket, object, &snap); err != nil {
		return fmt.Errorf("restore set index: %w", err)
	}

	sets := make(map[string]set, len(snap.Stats))
	for statID, ids := range snap.Stats {
		s := make(set, len(ids))
		for _, id := range ids {
			s[id] = struct{}{}
		}
		sets[statID] = s
	}

	i.mu.Lock()
	i.sets = sets
	i.built = snap.Built
	i.mu.Unlock()

	i.log.Info("Set index snapshot restored", zap.String("object", object), zap.Time("built", snap.Built))
	return nil
}
