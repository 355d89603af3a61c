package builds

import (
	"context"
	"fmt"
	"time"

	"stash-pricer/core/items"

	"go.uber.org/zap"
)

// Matcher finds the first stored item satisfying a required item.
type Matcher interface {
	FindMatch(ctx context.Context, req *items.RequiredItem) (*items.StoredItem, error)
}

// Worker claims queued builds and fills in their found slots.
type Worker struct {
	queue   *Queue
	matcher Matcher
	idle    time.Duration
	logger  *zap.Logger
}

// NewWorker creates a worker.
func NewWorker(queue *Queue, matcher Matcher, cfg Config, logger *zap.Logger) *Worker {
	idle := cfg.IdleInterval
	if idle <= 0 {
		idle = 5 * time.Second
	}
	return &Worker{queue: queue, matcher: matcher, idle: idle, logger: logger}
}

// Process runs a match for every provided slot and stores the results in
// b.Found. Slots without a match are left empty.
func (w *Worker) Process(ctx context.Context, b *Build) error {
	found, err := MapLoadout(&b.Provided, func(slot Slot, req *items.RequiredItem) (*items.StoredItem, error) {
		m, err := w.matcher.FindMatch(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", slot, err)
		}
		return m, nil
	})
	if err != nil {
		return err
	}
	b.Found = found
	return nil
}

// Once claims and processes one build. It reports whether a build was
// available. A build that fails processing keeps its claim until the
// watchdog releases it.
func (w *Worker) Once(ctx context.Context) (bool, error) {
	b, err := w.queue.ClaimNext(ctx)
	if err != nil {
		return false, err
	}
	if b == nil {
		return false, nil
	}

	start := time.Now()
	if err := w.Process(ctx, b); err != nil {
		return true, fmt.Errorf("process build %s: %w", b.ID, err)
	}
	if err := w.queue.Complete(ctx, b); err != nil {
		return true, err
	}
	w.logger.Info("Build processed",
		zap.String("build", b.ID),
		zap.Int("slots", b.Provided.Len()),
		zap.Int("found", b.Found.Len()),
		zap.Duration("took", time.Since(start)))
	return true, nil
}

// Run processes builds until ctx is cancelled, sleeping between polls when
// the queue is empty. Cancellation is checked between builds; a build in
// progress always completes. Storage failures end the loop.
func (w *Worker) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		worked, err := w.Once(context.WithoutCancel(ctx))
		if err != nil {
			w.logger.Error("Build worker stopped", zap.Error(err))
			return err
		}
		if worked {
			timer.Reset(0)
		} else {
			timer.Reset(w.idle)
		}
	}
}

// Watchdog returns expired claims to the queue.
type Watchdog struct {
	queue    *Queue
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

// NewWatchdog creates a watchdog.
func NewWatchdog(queue *Queue, cfg Config, logger *zap.Logger) *Watchdog {
	interval, timeout := cfg.WatchdogInterval, cfg.LeaseTimeout
	if interval <= 0 {
		interval = time.Minute
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Watchdog{queue: queue, interval: interval, timeout: timeout, logger: logger}
}

// Sweep releases stale claims once.
func (d *Watchdog) Sweep(ctx context.Context) (int64, error) {
	n, err := d.queue.UnlockStale(ctx, d.timeout)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		d.logger.Info("Released stale builds", zap.Int64("count", n), zap.Duration("timeout", d.timeout))
	}
	return n, nil
}

// Run sweeps every interval until ctx is cancelled. Failed sweeps are logged
// and retried on the next tick.
func (d *Watchdog) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := d.Sweep(context.WithoutCancel(ctx)); err != nil {
				d.logger.Warn("Watchdog sweep failed", zap.Error(err))
			}
		}
	}
}
