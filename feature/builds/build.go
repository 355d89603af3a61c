package builds

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"stash-pricer/core/items"
)

var (
	// ErrInvalidBuild is returned for a build whose slots are unusable.
	ErrInvalidBuild = errors.New("invalid build")
	// ErrNotFound is returned for an unknown build id.
	ErrNotFound = errors.New("build not found")
)

// State is the queue position of a build.
type State string

const (
	StateQueued  State = "queued"
	StateClaimed State = "claimed"
	StateDone    State = "done"
)

// Build is a set of required items and, once processed, the first listed
// item found for each of them.
type Build struct {
	ID        string                      `json:"id"`
	Name      string                      `json:"name"`
	State     State                       `json:"state"`
	Provided  Loadout[items.RequiredItem] `json:"provided"`
	Found     *Loadout[items.StoredItem]  `json:"found,omitempty"`
	StartedAt *time.Time                  `json:"started_at,omitempty"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// Validate checks that the build has at least one slot and that every
// constraint names a stat carried by its own slot.
func (b *Build) Validate() error {
	if b.Provided.Len() == 0 {
		return fmt.Errorf("%w: no slots", ErrInvalidBuild)
	}
	return b.Provided.Each(func(slot Slot, req *items.RequiredItem) error {
		for statID, c := range req.Constraints {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("%w: %s: stat %s: %v", ErrInvalidBuild, slot, statID, err)
			}
		}
		if unknown := req.UnknownConstraints(); len(unknown) > 0 {
			return fmt.Errorf("%w: %s: constraints reference stats not on the item: %s",
				ErrInvalidBuild, slot, strings.Join(unknown, ", "))
		}
		return nil
	})
}
