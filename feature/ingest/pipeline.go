package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"stash-pricer/core/items"
	"stash-pricer/core/store"

	"go.uber.org/zap"
)

// State of the pipeline.
type State string

const (
	StateIdle     State = "idle"
	StateApplying State = "applying"
)

// Indexer is notified of committed writes. The set-index implements it.
type Indexer interface {
	Add(item *items.StoredItem)
	Invalidate()
}

// Result counts what applying one page did.
type Result struct {
	Cursor   string `json:"cursor"`
	Changes  int    `json:"changes"`
	Skipped  int    `json:"skipped"`
	Inserted int    `json:"inserted"`
	Removed  int    `json:"removed"`
	Dropped  int    `json:"dropped"`
}

// Status is a snapshot of the pipeline for the status endpoint.
type Status struct {
	State       State     `json:"state"`
	Cursor      string    `json:"cursor"`
	Pages       int64     `json:"pages"`
	Inserted    int64     `json:"inserted"`
	Removed     int64     `json:"removed"`
	Dropped     int64     `json:"dropped"`
	Skipped     int64     `json:"skipped"`
	LastApplied time.Time `json:"last_applied,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

// Pipeline applies feed pages to the store. Only one pipeline may advance the
// cursor of a store at a time.
type Pipeline struct {
	store       store.Store
	builder     *items.Builder
	leagues     map[string]struct{}
	startCursor string
	interval    time.Duration
	index       Indexer
	logger      *zap.Logger

	mu     sync.Mutex
	status Status
}

// NewPipeline creates a pipeline. An empty league list accepts every league.
func NewPipeline(st store.Store, builder *items.Builder, cfg Config, logger *zap.Logger) *Pipeline {
	p := &Pipeline{
		store:       st,
		builder:     builder,
		startCursor: cfg.StartCursor,
		interval:    cfg.PollInterval,
		logger:      logger,
		status:      Status{State: StateIdle},
	}
	if p.interval <= 0 {
		p.interval = 10 * time.Second
	}
	if len(cfg.Leagues) > 0 {
		p.leagues = make(map[string]struct{}, len(cfg.Leagues))
		for _, l := range cfg.Leagues {
			p.leagues[l] = struct{}{}
		}
	}
	return p
}

// WithIndex registers a secondary index to keep up to date.
func (p *Pipeline) WithIndex(idx Indexer) *Pipeline {
	p.index = idx
	return p
}

// Status returns the current counters.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.status.State = s
	p.mu.Unlock()
}

// Apply writes one page and its cursor in a single transaction. On error
// nothing from the page is kept and the cursor is unchanged.
func (p *Pipeline) Apply(ctx context.Context, page *Page) (Result, error) {
	p.setState(StateApplying)
	defer p.setState(StateIdle)

	res := Result{Cursor: page.NextCursor, Changes: len(page.Changes)}
	var (
		written []*items.StoredItem
		deleted bool
	)

	err := p.store.InTx(ctx, func(w store.Writer) error {
		// reset in case the transaction body is retried
		res = Result{Cursor: page.NextCursor, Changes: len(page.Changes)}
		written, deleted = nil, false

		for _, change := range page.Changes {
			if !p.accepts(change) {
				res.Skipped++
				continue
			}

			removed, err := w.ClearStash(ctx, change.ID)
			if err != nil {
				return err
			}

			built := p.build(change)
			res.Dropped += len(change.Items) - len(built)
			if len(built) > 0 {
				n, err := w.BulkInsertItems(ctx, change.ID, built)
				if err != nil {
					return err
				}
				if n != len(built) {
					p.logger.Debug("Bulk insert row count differs",
						zap.String("stash", change.ID),
						zap.Int("items", len(built)),
						zap.Int("rows", n))
				}
				res.Inserted += len(built)
				written = append(written, built...)
			}

			gone := removedIDs(removed, built)
			res.Removed += gone
			deleted = deleted || gone > 0
		}
		return w.SetCursor(ctx, page.NextCursor)
	})
	if err != nil {
		p.mu.Lock()
		p.status.LastError = err.Error()
		p.mu.Unlock()
		return Result{}, err
	}

	if p.index != nil {
		if deleted {
			p.index.Invalidate()
		} else {
			for _, item := range written {
				p.index.Add(item)
			}
		}
	}

	p.mu.Lock()
	p.status.Cursor = page.NextCursor
	p.status.Pages++
	p.status.Inserted += int64(res.Inserted)
	p.status.Removed += int64(res.Removed)
	p.status.Dropped += int64(res.Dropped)
	p.status.Skipped += int64(res.Skipped)
	p.status.LastApplied = time.Now()
	p.status.LastError = ""
	p.mu.Unlock()

	p.logger.Info("Feed page applied",
		zap.String("cursor", res.Cursor),
		zap.Int("changes", res.Changes),
		zap.Int("inserted", res.Inserted),
		zap.Int("removed", res.Removed),
		zap.Int("dropped", res.Dropped),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

// accepts applies the league allow-list and drops changes that cannot be
// addressed for later deletion.
func (p *Pipeline) accepts(change StashChange) bool {
	if p.leagues != nil {
		if _, ok := p.leagues[change.League]; !ok {
			return false
		}
	}
	return change.Addressable()
}

// build converts a stash's items, dropping the ones that fail. Items without
// a note price inherit a price tag in the stash name.
func (p *Pipeline) build(change StashChange) []*items.StoredItem {
	stashPrice, hasStashPrice := items.ParsePrice(change.StashName)
	built := make([]*items.StoredItem, 0, len(change.Items))
	for _, raw := range change.Items {
		item, err := p.builder.BuildStored(raw)
		if err != nil {
			p.logger.Debug("Item dropped", zap.String("stash", change.ID), zap.Error(err))
			continue
		}
		if item.Price.Kind == items.PriceNone && hasStashPrice {
			item.Price = stashPrice
		}
		built = append(built, item)
	}
	return built
}

// removedIDs counts ids cleared from a stash that were not written back.
func removedIDs(removed []string, built []*items.StoredItem) int {
	if len(removed) == 0 {
		return 0
	}
	kept := make(map[string]struct{}, len(built))
	for _, item := range built {
		kept[item.ID] = struct{}{}
	}
	n := 0
	for _, id := range removed {
		if _, ok := kept[id]; !ok {
			n++
		}
	}
	return n
}

// Cursor returns the stored cursor, or the configured start cursor before
// the first page.
func (p *Pipeline) Cursor(ctx context.Context) (string, error) {
	cursor, err := p.store.GetCursor(ctx)
	if err != nil {
		return "", err
	}
	if cursor == "" {
		cursor = p.startCursor
	}
	return cursor, nil
}

// Once fetches and applies the next page. It reports false when the feed had
// nothing new.
func (p *Pipeline) Once(ctx context.Context, feed Feed) (bool, error) {
	cursor, err := p.Cursor(ctx)
	if err != nil {
		return false, err
	}
	page, err := feed.Next(ctx, cursor)
	if errors.Is(err, ErrNoPage) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	// Storage work outlives cancellation so a page is never cut mid-transaction.
	if _, err := p.Apply(context.WithoutCancel(ctx), page); err != nil {
		return false, err
	}
	return page.NextCursor != cursor, nil
}

// Run polls feed until ctx is cancelled. Cancellation is observed between
// pages. Failed pages are retried on the next tick from the unchanged cursor.
func (p *Pipeline) Run(ctx context.Context, feed Feed) error {
	p.logger.Info("Ingestion loop started", zap.Duration("interval", p.interval))
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Ingestion loop stopped")
			return nil
		case <-timer.C:
		}

		advanced, err := p.Once(ctx, feed)
		switch {
		case ctx.Err() != nil:
			continue
		case err != nil:
			p.logger.Warn("Feed page failed", zap.Error(err))
			p.mu.Lock()
			p.status.LastError = err.Error()
			p.mu.Unlock()
			timer.Reset(p.interval)
		case advanced:
			// catch up without waiting while the feed has more pages
			timer.Reset(0)
		default:
			timer.Reset(p.interval)
		}
	}
}
