package setindex

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"stash-pricer/core/items"
	"stash-pricer/core/store"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Source is the primary store as seen by the index.
type Source interface {
	store.Searcher
	GetItems(ctx context.Context, ids []string) ([]items.StoredItem, error)
	ScanMods(ctx context.Context, fn func(itemID, statID string) error) error
}

type set map[string]struct{}

// Index is an in-memory stat_id -> item id set index.
type Index struct {
	source    Source
	threshold int
	log       *zap.Logger

	mu    sync.RWMutex
	sets  map[string]set // nil until built
	built time.Time
	sf    singleflight.Group
}

// New creates an empty index over source. The first lookup builds it.
func New(source Source, threshold int, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{source: source, threshold: threshold, log: log}
}

// Add records the item's stat ids. Before the first build it is a no-op
// because the build scan will see the item.
func (i *Index) Add(item *items.StoredItem) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.sets == nil {
		return
	}
	for _, statID := range item.StatIDs() {
		s, ok := i.sets[statID]
		if !ok {
			s = make(set)
			i.sets[statID] = s
		}
		s[item.ID] = struct{}{}
	}
}

// Invalidate drops the index; the next lookup rebuilds it.
func (i *Index) Invalidate() {
	i.mu.Lock()
	i.sets = nil
	i.mu.Unlock()
}

// Built reports when the index was last built, zero when it is not built.
func (i *Index) Built() time.Time {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.sets == nil {
		return time.Time{}
	}
	return i.built
}

// Rebuild rescans the primary store and replaces the index.
func (i *Index) Rebuild(ctx context.Context) error {
	start := time.Now()
	sets := make(map[string]set)
	pairs := 0
	err := i.source.ScanMods(ctx, func(itemID, statID string) error {
		s, ok := sets[statID]
		if !ok {
			s = make(set)
			sets[statID] = s
		}
		s[itemID] = struct{}{}
		pairs++
		return nil
	})
	if err != nil {
		return fmt.Errorf("rebuild set index: %w", err)
	}

	i.mu.Lock()
	i.sets = sets
	i.built = time.Now()
	i.mu.Unlock()

	i.log.Info("Set index rebuilt",
		zap.Int("stats", len(sets)),
		zap.Int("pairs", pairs),
		zap.Duration("took", time.Since(start)))
	return nil
}

// ensureBuilt builds the index once for all concurrent callers.
func (i *Index) ensureBuilt(ctx context.Context) error {
	i.mu.RLock()
	ready := i.sets != nil
	i.mu.RUnlock()
	if ready {
		return nil
	}

	_, err, _ := i.sf.Do("rebuild", func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		i.mu.RLock()
		ready := i.sets != nil
		i.mu.RUnlock()
		if ready {
			return nil, nil
		}
		return nil, i.Rebuild(ctx)
	})
	return err
}

// Lookup returns candidate item ids, sorted, that carry every stat id. When
// the threshold cuts intersection short the result may contain items missing
// some of the later stat ids.
func (i *Index) Lookup(ctx context.Context, statIDs []string) ([]string, error) {
	if err := i.ensureBuilt(ctx); err != nil {
		return nil, err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	type keyed struct {
		statID string
		ids    set
	}
	sets := make([]keyed, 0, len(statIDs))
	for _, statID := range statIDs {
		s := i.sets[statID]
		if len(s) == 0 {
			return []string{}, nil
		}
		sets = append(sets, keyed{statID, s})
	}
	if len(sets) == 0 {
		return []string{}, nil
	}
	// Smallest sets first, ties by stat id so results are deterministic.
	sort.Slice(sets, func(a, b int) bool {
		if len(sets[a].ids) != len(sets[b].ids) {
			return len(sets[a].ids) < len(sets[b].ids)
		}
		return sets[a].statID < sets[b].statID
	})

	candidates := make(set, len(sets[0].ids))
	for id := range sets[0].ids {
		candidates[id] = struct{}{}
	}
	for _, s := range sets[1:] {
		if len(candidates) <= i.threshold {
			break
		}
		for id := range candidates {
			if _, ok := s.ids[id]; !ok {
				delete(candidates, id)
			}
		}
	}

	out := make([]string, 0, len(candidates))
	for id := range candidates {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Search implements store.Searcher. Queries without stat ids go to the
// primary store directly.
func (i *Index) Search(ctx context.Context, f store.Filter) ([]items.StoredItem, error) {
	if len(f.StatIDs) == 0 {
		return i.source.Search(ctx, f)
	}
	ids, err := i.Lookup(ctx, f.StatIDs)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []items.StoredItem{}, nil
	}
	candidates, err := i.source.GetItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate candidates: %w", err)
	}

	out := make([]items.StoredItem, 0, len(candidates))
	for _, item := range candidates {
		if !matches(item, f) {
			continue
		}
		out = append(out, item)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func matches(item items.StoredItem, f store.Filter) bool {
	if f.BaseType != "" && item.BaseType != f.BaseType {
		return false
	}
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.Subcategory != "" && item.Subcategory != f.Subcategory {
		return false
	}
	if f.Name != "" && item.Name != f.Name {
		return false
	}
	have := make(map[string]struct{})
	for _, m := range item.Mods() {
		have[m.StatID] = struct{}{}
	}
	for _, statID := range f.StatIDs {
		if _, ok := have[statID]; !ok {
			return false
		}
	}
	return true
}
