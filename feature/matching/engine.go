package matching

import (
	"context"
	"fmt"

	"stash-pricer/core/items"
	"stash-pricer/core/store"

	"go.uber.org/zap"
)

// Engine finds stored items satisfying a required item.
type Engine struct {
	searcher store.Searcher
	logger   *zap.Logger
}

// NewEngine creates an engine reading through searcher.
func NewEngine(searcher store.Searcher, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{searcher: searcher, logger: logger}
}

// CandidateFilter is the storage query for req: same base type and class,
// the same name for uniques, and every stat id that is not ignored.
func CandidateFilter(req *items.RequiredItem) store.Filter {
	f := store.Filter{
		BaseType:    req.BaseType,
		Category:    req.Category,
		Subcategory: req.Subcategory,
	}
	if req.Rarity == items.RarityUnique {
		f.Name = req.Name
	}
	seen := make(map[string]struct{})
	for _, m := range req.Mods() {
		if req.ConstraintFor(m.StatID).Kind == items.ConstraintIgnore {
			continue
		}
		if _, ok := seen[m.StatID]; ok {
			continue
		}
		seen[m.StatID] = struct{}{}
		f.StatIDs = append(f.StatIDs, m.StatID)
	}
	return f
}

// FindMatch returns the first candidate, in storage order, that satisfies
// every constraint of req. It returns nil when nothing matches.
func (e *Engine) FindMatch(ctx context.Context, req *items.RequiredItem) (*items.StoredItem, error) {
	candidates, err := e.searcher.Search(ctx, CandidateFilter(req))
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}
	for i := range candidates {
		if Matches(req, candidates[i]) {
			e.logger.Debug("Match found",
				zap.String("basetype", req.BaseType),
				zap.String("item", candidates[i].ID),
				zap.Int("candidates", len(candidates)))
			return &candidates[i], nil
		}
	}
	e.logger.Debug("No match", zap.String("basetype", req.BaseType), zap.Int("candidates", len(candidates)))
	return nil, nil
}

// Matches reports whether candidate carries, for every non-ignored mod of
// req, a mod with the same stat id whose value the constraint accepts.
func Matches(req *items.RequiredItem, candidate items.StoredItem) bool {
	byStat := make(map[string][]items.Value)
	for _, m := range candidate.Mods() {
		byStat[m.StatID] = append(byStat[m.StatID], m.Value)
	}
	for _, m := range req.Mods() {
		c := req.ConstraintFor(m.StatID)
		if c.Kind == items.ConstraintIgnore {
			continue
		}
		if !acceptsAny(c, byStat[m.StatID]) {
			return false
		}
	}
	return true
}

func acceptsAny(c items.Constraint, values []items.Value) bool {
	for _, v := range values {
		if c.Accepts(v) {
			return true
		}
	}
	return false
}
