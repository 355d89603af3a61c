package ingest

import (
	"context"
	"fmt"

	"stash-pricer/core/store"

	"go.uber.org/zap"
)

// Report is the body of GET /ingest/status.
type Report struct {
	Status
	StoredCursor string `json:"stored_cursor"`
	Items        int64  `json:"items"`
}

// Service exposes the pipeline to handlers and commands.
type Service struct {
	pipeline *Pipeline
	store    store.Store
	feed     Feed
	logger   *zap.Logger
}

// NewService creates a service. feed may be nil when pages are only pushed.
func NewService(pipeline *Pipeline, st store.Store, feed Feed, logger *zap.Logger) *Service {
	return &Service{pipeline: pipeline, store: st, feed: feed, logger: logger}
}

// Pipeline returns the underlying pipeline.
func (s *Service) Pipeline() *Pipeline {
	return s.pipeline
}

// Report combines the in-memory counters with the stored state.
func (s *Service) Report(ctx context.Context) (*Report, error) {
	cursor, err := s.store.GetCursor(ctx)
	if err != nil {
		return nil, err
	}
	count, err := s.store.CountItems(ctx)
	if err != nil {
		return nil, err
	}
	return &Report{Status: s.pipeline.Status(), StoredCursor: cursor, Items: count}, nil
}

// Push applies a page delivered by a client instead of the feed.
func (s *Service) Push(ctx context.Context, page *Page) (Result, error) {
	return s.pipeline.Apply(context.WithoutCancel(ctx), page)
}

// Run polls the configured feed until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.feed == nil {
		return fmt.Errorf("no feed source configured")
	}
	return s.pipeline.Run(ctx, s.feed)
}

// Once applies at most one page from the feed.
func (s *Service) Once(ctx context.Context) (bool, error) {
	if s.feed == nil {
		return false, fmt.Errorf("no feed source configured")
	}
	return s.pipeline.Once(ctx, s.feed)
}
