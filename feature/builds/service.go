package builds

import (
	"context"
	"fmt"

	"stash-pricer/core/items"
	"stash-pricer/feature/matching"

	"go.uber.org/zap"
)

// CreateRequest is the body of POST /builds: one item description with
// its constraints per slot.
type CreateRequest struct {
	Name  string                         `json:"name"`
	Slots Loadout[matching.MatchRequest] `json:"slots"`
}

// Service creates and reads builds.
type Service struct {
	queue   *Queue
	builder *items.Builder
	logger  *zap.Logger
}

// NewService creates a build service.
func NewService(queue *Queue, builder *items.Builder, logger *zap.Logger) *Service {
	return &Service{queue: queue, builder: builder, logger: logger}
}

// Queue returns the service's queue.
func (s *Service) Queue() *Queue {
	return s.queue
}

// Create normalizes every slot of req and enqueues the build. Any slot that
// fails to build makes the whole build invalid.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Build, error) {
	provided, err := MapLoadout(&req.Slots, func(slot Slot, m *matching.MatchRequest) (*items.RequiredItem, error) {
		r, err := s.builder.BuildRequired(m.Item, m.Constraints)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBuild, slot, err)
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	b := &Build{Name: req.Name, Provided: *provided}
	if err := s.queue.Enqueue(ctx, b); err != nil {
		return nil, err
	}
	s.logger.Info("Build queued", zap.String("build", b.ID), zap.Int("slots", b.Provided.Len()))
	return b, nil
}

// Get returns a build by id.
func (s *Service) Get(ctx context.Context, id string) (*Build, error) {
	return s.queue.Get(ctx, id)
}
