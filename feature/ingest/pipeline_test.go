package ingest_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"stash-pricer/core/database"
	"stash-pricer/core/items"
	"stash-pricer/core/stats"
	"stash-pricer/core/store"
	"stash-pricer/feature/ingest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupStore(t *testing.T) *store.SQLStore {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: filepath.Join(t.TempDir(), "ingest.db")})
	require.NoError(t, err)
	s := store.NewSQLStore(db, 0)
	require.NoError(t, s.Migrate())
	return s
}

func newPipeline(st store.Store, cfg ingest.Config) *ingest.Pipeline {
	builder := items.NewBuilder(stats.Default(), items.DefaultClassifier())
	return ingest.NewPipeline(st, builder, cfg, zap.NewNop())
}

func explicit(mods ...string) map[items.Provenance][]string {
	return map[items.Provenance][]string{items.ProvenanceExplicit: mods}
}

func firstPage() *ingest.Page {
	return &ingest.Page{
		NextCursor: "2-2",
		Changes: []ingest.StashChange{
			{
				ID: "s1", Owner: "alice", StashName: "~price 2 chaos", League: "Standard",
				Items: []items.RawItem{
					{ID: "i1", BaseType: "Plate Vest", Mods: explicit("+20 to maximum Life")},
					{ID: "i2", BaseType: "Iron Ring", Note: "~b/o 5 chaos", Mods: explicit("+22 to Strength")},
					{ID: "junk", BaseType: "Chaos Orb"},
					{ID: "odd", BaseType: "Iron Ring", Mods: explicit("Grants the wearer a pony")},
				},
			},
			{
				ID: "s2", StashName: "no owner", League: "Standard",
				Items: []items.RawItem{{ID: "i3", BaseType: "Iron Ring"}},
			},
			{
				ID: "s3", Owner: "bob", StashName: "hc", League: "Hardcore",
				Items: []items.RawItem{{ID: "i4", BaseType: "Iron Ring"}},
			},
			{
				ID: "s4", Owner: "carol", StashName: "rings", League: "Standard",
				Items: []items.RawItem{{ID: "i5", BaseType: "Iron Ring", Mods: explicit("+40 to maximum Life")}},
			},
		},
	}
}

func allIDs(t *testing.T, st store.Searcher) []string {
	t.Helper()
	list, err := st.Search(context.Background(), store.Filter{})
	require.NoError(t, err)
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, item.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	p := newPipeline(st, ingest.Config{Leagues: []string{"Standard"}})

	res, err := p.Apply(ctx, firstPage())
	require.NoError(t, err)
	assert.Equal(t, ingest.Result{Cursor: "2-2", Changes: 4, Skipped: 2, Inserted: 3, Dropped: 2}, res)
	assert.Equal(t, []string{"i1", "i2", "i5"}, allIDs(t, st))

	cursor, err := st.GetCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2-2", cursor)

	got, err := st.GetItems(ctx, []string{"i1", "i2"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, items.Price{Kind: items.PriceChaos, Currency: "chaos", Amount: 2}, got[0].Price, "stash name price")
	assert.Equal(t, items.Price{Kind: items.PriceChaos, Currency: "chaos", Amount: 5}, got[1].Price, "note price wins")

	status := p.Status()
	assert.Equal(t, ingest.StateIdle, status.State)
	assert.Equal(t, int64(1), status.Pages)
	assert.Equal(t, int64(2), status.Dropped)
}

func TestApply_EndToEndModSearch(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	p := newPipeline(st, ingest.Config{})

	_, err := p.Apply(ctx, &ingest.Page{
		NextCursor: "1",
		Changes: []ingest.StashChange{{
			ID: "s1", Owner: "alice", StashName: "armour",
			Items: []items.RawItem{{ID: "vest", BaseType: "Plate Vest", Mods: explicit("+20 to maximum Life")}},
		}},
	})
	require.NoError(t, err)

	found, err := st.Search(ctx, store.Filter{StatIDs: []string{"maximum_life"}})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "vest", found[0].ID)
	assert.Equal(t, items.CategoryArmour, found[0].Category)
}

func TestApply_Idempotent(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	p := newPipeline(st, ingest.Config{Leagues: []string{"Standard"}})

	_, err := p.Apply(ctx, firstPage())
	require.NoError(t, err)
	once := allIDs(t, st)

	res, err := p.Apply(ctx, firstPage())
	require.NoError(t, err)
	assert.Zero(t, res.Removed)
	assert.Equal(t, once, allIDs(t, st))

	cursor, err := st.GetCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2-2", cursor)

	life, err := st.Search(ctx, store.Filter{StatIDs: []string{"maximum_life"}})
	require.NoError(t, err)
	assert.Len(t, life, 2)
}

func TestApply_EmptyStashRemovesOnlyItsItems(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	p := newPipeline(st, ingest.Config{Leagues: []string{"Standard"}})

	_, err := p.Apply(ctx, firstPage())
	require.NoError(t, err)

	res, err := p.Apply(ctx, &ingest.Page{
		NextCursor: "3-3",
		Changes:    []ingest.StashChange{{ID: "s1", Owner: "alice", StashName: "~price 2 chaos", League: "Standard"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Removed)
	assert.Equal(t, []string{"i5"}, allIDs(t, st))
}

func TestApply_StashContentIsReplaced(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	p := newPipeline(st, ingest.Config{Leagues: []string{"Standard"}})

	_, err := p.Apply(ctx, firstPage())
	require.NoError(t, err)

	res, err := p.Apply(ctx, &ingest.Page{
		NextCursor: "3-3",
		Changes: []ingest.StashChange{{
			ID: "s1", Owner: "alice", StashName: "sold out", League: "Standard",
			Items: []items.RawItem{{ID: "i2", BaseType: "Iron Ring", Mods: explicit("+22 to Strength")}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)
	assert.Equal(t, []string{"i2", "i5"}, allIDs(t, st))
}

// failingStore fails every bulk insert inside a transaction.
type failingStore struct {
	*store.SQLStore
}

type failingWriter struct {
	store.Writer
}

var errDiskFull = errors.New("disk full")

func (f failingWriter) BulkInsertItems(context.Context, string, []*items.StoredItem) (int, error) {
	return 0, errDiskFull
}

func (f failingStore) InTx(ctx context.Context, fn func(w store.Writer) error) error {
	return f.SQLStore.InTx(ctx, func(w store.Writer) error { return fn(failingWriter{w}) })
}

func TestApply_FailureKeepsCursor(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	_, err := newPipeline(st, ingest.Config{Leagues: []string{"Standard"}}).Apply(ctx, firstPage())
	require.NoError(t, err)

	p := newPipeline(failingStore{st}, ingest.Config{})
	_, err = p.Apply(ctx, &ingest.Page{
		NextCursor: "3-3",
		Changes: []ingest.StashChange{
			{ID: "s4", Owner: "carol", StashName: "rings"},
			{ID: "s1", Owner: "alice", StashName: "x", Items: []items.RawItem{{ID: "i9", BaseType: "Iron Ring"}}},
		},
	})
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, errDiskFull.Error(), p.Status().LastError)

	cursor, err := st.GetCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2-2", cursor)
	assert.Equal(t, []string{"i1", "i2", "i5"}, allIDs(t, st), "the s4 deletion was rolled back")
}

type recordingIndex struct {
	mu          sync.Mutex
	added       []string
	invalidated int
}

func (r *recordingIndex) Add(item *items.StoredItem) {
	r.mu.Lock()
	r.added = append(r.added, item.ID)
	r.mu.Unlock()
}

func (r *recordingIndex) Invalidate() {
	r.mu.Lock()
	r.invalidated++
	r.mu.Unlock()
}

func TestApply_IndexHooks(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	idx := &recordingIndex{}
	p := newPipeline(st, ingest.Config{Leagues: []string{"Standard"}}).WithIndex(idx)

	_, err := p.Apply(ctx, firstPage())
	require.NoError(t, err)
	assert.Equal(t, []string{"i1", "i2", "i5"}, idx.added)
	assert.Zero(t, idx.invalidated)

	_, err = p.Apply(ctx, &ingest.Page{
		NextCursor: "3-3",
		Changes:    []ingest.StashChange{{ID: "s4", Owner: "carol", StashName: "rings", League: "Standard"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, idx.invalidated)
}

// chainFeed serves pages keyed by the cursor they start at.
type chainFeed struct {
	pages   map[string]*ingest.Page
	drained chan struct{}
	once    sync.Once
}

func (f *chainFeed) Next(_ context.Context, cursor string) (*ingest.Page, error) {
	if page, ok := f.pages[cursor]; ok {
		return page, nil
	}
	f.once.Do(func() { close(f.drained) })
	return nil, ingest.ErrNoPage
}

func TestRun(t *testing.T) {
	st := setupStore(t)
	p := newPipeline(st, ingest.Config{StartCursor: "start", PollInterval: 5 * time.Millisecond})

	ring := func(id string) []items.RawItem {
		return []items.RawItem{{ID: id, BaseType: "Iron Ring", Mods: explicit("+22 to Strength")}}
	}
	feed := &chainFeed{
		drained: make(chan struct{}),
		pages: map[string]*ingest.Page{
			"start": {NextCursor: "p2", Changes: []ingest.StashChange{{ID: "s1", Owner: "a", StashName: "n", Items: ring("r1")}}},
			"p2":    {NextCursor: "p3", Changes: []ingest.StashChange{{ID: "s2", Owner: "b", StashName: "n", Items: ring("r2")}}},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, feed) }()

	select {
	case <-feed.drained:
	case <-time.After(5 * time.Second):
		t.Fatal("feed was never drained")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	cursor, err := st.GetCursor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p3", cursor)
	assert.Equal(t, []string{"r1", "r2"}, allIDs(t, st))
	assert.Equal(t, int64(2), p.Status().Pages)
}
