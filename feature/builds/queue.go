package builds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxClaimAttempts bounds retries when a concurrent worker wins the
// conditional update for the row this worker selected.
const maxClaimAttempts = 5

var errClaimLost = errors.New("claim lost")

// Queue is the build processing queue on the relational store. Claims are
// exclusive across processes through the row lock taken by ClaimNext.
type Queue struct {
	db  *gorm.DB
	now func() time.Time
}

// NewQueue creates a queue on db.
func NewQueue(db *gorm.DB) *Queue {
	return &Queue{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Migrate creates or updates the builds table.
func (q *Queue) Migrate() error {
	return q.db.AutoMigrate(&BuildRecord{})
}

// Enqueue validates b, assigns an id when it has none and stores it as Queued.
func (q *Queue) Enqueue(ctx context.Context, b *Build) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.Found = nil
	rec, err := toRecord(b)
	if err != nil {
		return err
	}
	rec.CreatedAt = q.now()
	if err := q.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("enqueue build: %w", err)
	}
	b.State = StateQueued
	b.CreatedAt = rec.CreatedAt
	b.UpdatedAt = rec.UpdatedAt
	return nil
}

// Get loads a build by id.
func (q *Queue) Get(ctx context.Context, id string) (*Build, error) {
	var rec BuildRecord
	err := q.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get build %s: %w", id, err)
	}
	return toBuild(&rec)
}

// ClaimNext leases the oldest queued build and returns it, or nil when the
// queue is empty. Rows locked by another transaction are skipped instead of
// waited on.
func (q *Queue) ClaimNext(ctx context.Context) (*Build, error) {
	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		rec, err := q.claim(ctx)
		if errors.Is(err, errClaimLost) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, nil
		}
		return toBuild(rec)
	}
	return nil, nil
}

func (q *Queue) claim(ctx context.Context) (*BuildRecord, error) {
	var claimed *BuildRecord
	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec BuildRecord
		res := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("processed = ? AND processing = ? AND started_at IS NULL", false, false).
			Order("created_at").Order("id").
			Limit(1).
			Find(&rec)
		if res.Error != nil {
			return fmt.Errorf("select queued build: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		now := q.now()
		upd := tx.Model(&BuildRecord{}).
			Where("id = ? AND processing = ?", rec.ID, false).
			Updates(map[string]any{"processing": true, "started_at": now})
		if upd.Error != nil {
			return fmt.Errorf("claim build %s: %w", rec.ID, upd.Error)
		}
		if upd.RowsAffected == 0 {
			return errClaimLost
		}
		rec.Processing = true
		rec.StartedAt = &now
		claimed = &rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// Complete stores the results of b and then releases its claim. The two
// writes are separate statements: a failure between them leaves the build
// Done but claimed until the watchdog releases it.
func (q *Queue) Complete(ctx context.Context, b *Build) error {
	rec, err := toRecord(b)
	if err != nil {
		return err
	}
	res := q.db.WithContext(ctx).Model(&BuildRecord{}).Where("id = ?", b.ID).
		Updates(map[string]any{"found": rec.Found, "processed": true})
	if res.Error != nil {
		return fmt.Errorf("store build %s results: %w", b.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	if _, err := q.release(ctx, "id = ?", b.ID); err != nil {
		return fmt.Errorf("release build %s: %w", b.ID, err)
	}
	b.State = StateDone
	b.StartedAt = nil
	return nil
}

// UnlockStale releases every claim older than timeout and returns how many
// builds were released. Unfinished builds go back to Queued.
func (q *Queue) UnlockStale(ctx context.Context, timeout time.Duration) (int64, error) {
	n, err := q.release(ctx, "processing = ? AND started_at < ?", true, q.now().Add(-timeout))
	if err != nil {
		return 0, fmt.Errorf("unlock stale builds: %w", err)
	}
	return n, nil
}

// release clears the claim on the rows matching the condition.
func (q *Queue) release(ctx context.Context, query string, args ...any) (int64, error) {
	res := q.db.WithContext(ctx).Model(&BuildRecord{}).
		Where(query, args...).
		Updates(map[string]any{"processing": false, "started_at": nil})
	return res.RowsAffected, res.Error
}
