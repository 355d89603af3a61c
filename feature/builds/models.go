package builds

import (
	"encoding/json"
	"fmt"
	"time"

	"stash-pricer/core/items"

	"gorm.io/datatypes"
)

// BuildRecord is the queue row. Processed marks Done, Processing marks a
// live claim whose lease started at StartedAt.
type BuildRecord struct {
	ID         string         `gorm:"primaryKey;type:varchar(36)"`
	Name       string         `gorm:"type:varchar(255)"`
	Provided   datatypes.JSON `gorm:"not null"`
	Found      datatypes.JSON
	Processed  bool       `gorm:"not null;default:false;index:idx_builds_claim,priority:1"`
	Processing bool       `gorm:"not null;default:false;index:idx_builds_claim,priority:2"`
	StartedAt  *time.Time `gorm:"index"`
	CreatedAt  time.Time  `gorm:"index"`
	UpdatedAt  time.Time
}

// TableName overrides the default table name.
func (BuildRecord) TableName() string { return "builds" }

func (r *BuildRecord) state() State {
	switch {
	case r.Processed:
		return StateDone
	case r.Processing:
		return StateClaimed
	default:
		return StateQueued
	}
}

func toRecord(b *Build) (*BuildRecord, error) {
	provided, err := json.Marshal(b.Provided)
	if err != nil {
		return nil, fmt.Errorf("encode provided slots: %w", err)
	}
	rec := &BuildRecord{ID: b.ID, Name: b.Name, Provided: provided}
	if b.Found != nil {
		if rec.Found, err = json.Marshal(b.Found); err != nil {
			return nil, fmt.Errorf("encode found slots: %w", err)
		}
	}
	return rec, nil
}

func toBuild(rec *BuildRecord) (*Build, error) {
	b := &Build{
		ID:        rec.ID,
		Name:      rec.Name,
		State:     rec.state(),
		StartedAt: rec.StartedAt,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if err := json.Unmarshal(rec.Provided, &b.Provided); err != nil {
		return nil, fmt.Errorf("decode build %s: %w", rec.ID, err)
	}
	if len(rec.Found) > 0 && string(rec.Found) != "null" {
		b.Found = &Loadout[items.StoredItem]{}
		if err := json.Unmarshal(rec.Found, b.Found); err != nil {
			return nil, fmt.Errorf("decode build %s results: %w", rec.ID, err)
		}
	}
	return b, nil
}
