package matching

import (
	"context"

	"stash-pricer/core/items"
	"stash-pricer/core/store"

	"go.uber.org/zap"
)

// MatchRequest is the body of POST /match.
type MatchRequest struct {
	Item        items.RawItem               `json:"item"`
	Constraints map[string]items.Constraint `json:"constraints,omitempty"`
}

// Service serves searches and one-off matches.
type Service struct {
	engine   *Engine
	builder  *items.Builder
	searcher store.Searcher
	logger   *zap.Logger
}

// NewService creates a matching service.
func NewService(searcher store.Searcher, builder *items.Builder, logger *zap.Logger) *Service {
	return &Service{
		engine:   NewEngine(searcher, logger),
		builder:  builder,
		searcher: searcher,
		logger:   logger,
	}
}

// Engine returns the service's engine.
func (s *Service) Engine() *Engine {
	return s.engine
}

// Search lists stored items matching f.
func (s *Service) Search(ctx context.Context, f store.Filter) ([]items.StoredItem, error) {
	return s.searcher.Search(ctx, f)
}

// Match builds the required item described by req and finds its first fit.
// Build errors are returned as *BuildError.
func (s *Service) Match(ctx context.Context, req MatchRequest) (*items.StoredItem, error) {
	required, err := s.builder.BuildRequired(req.Item, req.Constraints)
	if err != nil {
		return nil, &BuildError{Err: err}
	}
	return s.engine.FindMatch(ctx, required)
}

// BuildError marks an unusable item description.
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string { return "invalid item: " + e.Err.Error() }

func (e *BuildError) Unwrap() error { return e.Err }
