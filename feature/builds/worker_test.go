package builds

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"stash-pricer/core/items"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubMatcher matches by base type.
type stubMatcher struct {
	byBase map[string]*items.StoredItem
	err    error
	calls  atomic.Int32
}

func (m *stubMatcher) FindMatch(_ context.Context, req *items.RequiredItem) (*items.StoredItem, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.byBase[req.BaseType], nil
}

func required(base string) *items.RequiredItem {
	return &items.RequiredItem{BaseType: base}
}

func TestWorkerProcess(t *testing.T) {
	matcher := &stubMatcher{byBase: map[string]*items.StoredItem{
		"Iron Ring":      {ID: "r1"},
		"Sapphire Flask": {ID: "f1"},
	}}
	w := NewWorker(nil, matcher, Config{}, zap.NewNop())

	b := &Build{Provided: Loadout[items.RequiredItem]{
		Ring1:  required("Iron Ring"),
		Ring2:  required("Two-Stone Ring"),
		Flasks: []*items.RequiredItem{required("Granite Flask"), nil, required("Sapphire Flask")},
	}}
	require.NoError(t, w.Process(context.Background(), b))

	require.NotNil(t, b.Found)
	assert.Equal(t, "r1", b.Found.Ring1.ID)
	assert.Nil(t, b.Found.Ring2)
	assert.Nil(t, b.Found.Helmet)
	require.Len(t, b.Found.Flasks, 3)
	assert.Nil(t, b.Found.Flasks[0])
	assert.Nil(t, b.Found.Flasks[1])
	assert.Equal(t, "f1", b.Found.Flasks[2].ID)
	assert.Equal(t, 2, b.Found.Len())
	assert.Equal(t, int32(4), matcher.calls.Load())
}

func TestWorkerOnce(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()
	w := NewWorker(q, &stubMatcher{byBase: map[string]*items.StoredItem{"Iron Ring": {ID: "r1"}}}, Config{}, zap.NewNop())

	worked, err := w.Once(ctx)
	require.NoError(t, err)
	assert.False(t, worked)

	b := ringBuild("one")
	require.NoError(t, q.Enqueue(ctx, b))

	worked, err = w.Once(ctx)
	require.NoError(t, err)
	assert.True(t, worked)

	got, err := q.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StateDone, got.State)
	require.NotNil(t, got.Found)
	assert.Equal(t, "r1", got.Found.Ring1.ID)
}

func TestWorkerOnce_MatchFailureKeepsClaim(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()
	boom := errors.New("connection reset")
	w := NewWorker(q, &stubMatcher{err: boom}, Config{}, zap.NewNop())

	b := ringBuild("fails")
	require.NoError(t, q.Enqueue(ctx, b))

	worked, err := w.Once(ctx)
	assert.True(t, worked)
	assert.ErrorIs(t, err, boom)

	got, err := q.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StateClaimed, got.State)
}

func TestWorkerRun(t *testing.T) {
	q, _ := setupQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWorker(q, &stubMatcher{}, Config{IdleInterval: 10 * time.Millisecond}, zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	a, b := ringBuild("a"), ringBuild("b")
	require.NoError(t, q.Enqueue(context.Background(), a))
	require.NoError(t, q.Enqueue(context.Background(), b))

	require.Eventually(t, func() bool {
		for _, id := range []string{a.ID, b.ID} {
			got, err := q.Get(context.Background(), id)
			if err != nil || got.State != StateDone {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorkerRun_StorageFailureStops(t *testing.T) {
	q, _ := setupQueue(t)
	require.NoError(t, q.Enqueue(context.Background(), ringBuild("x")))

	boom := errors.New("disk full")
	w := NewWorker(q, &stubMatcher{err: boom}, Config{IdleInterval: time.Millisecond}, zap.NewNop())
	assert.ErrorIs(t, w.Run(context.Background()), boom)
}

func TestWatchdog(t *testing.T) {
	q, c := setupQueue(t)
	ctx := context.Background()

	b := ringBuild("stale")
	require.NoError(t, q.Enqueue(ctx, b))
	_, err := q.ClaimNext(ctx)
	require.NoError(t, err)

	d := NewWatchdog(q, Config{LeaseTimeout: time.Minute}, zap.NewNop())
	n, err := d.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	c.advance(2 * time.Minute)
	n, err = d.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := q.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StateQueued, got.State)
}

func TestWatchdogRun(t *testing.T) {
	q, c := setupQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := ringBuild("stale")
	require.NoError(t, q.Enqueue(context.Background(), b))
	_, err := q.ClaimNext(context.Background())
	require.NoError(t, err)
	c.advance(time.Hour)

	d := NewWatchdog(q, Config{WatchdogInterval: 10 * time.Millisecond, LeaseTimeout: time.Minute}, zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool {
		got, err := q.Get(context.Background(), b.ID)
		return err == nil && got.State == StateQueued
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
