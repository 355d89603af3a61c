package builds

import "fmt"

// Slot names one position of a loadout. Index is -1 for the fixed
// equipment slots and the list position for flasks, gems and jewels.
type Slot struct {
	Name  string
	Index int
}

func (s Slot) String() string {
	if s.Index < 0 {
		return s.Name
	}
	return fmt.Sprintf("%s[%d]", s.Name, s.Index)
}

// Loadout holds one value per equipment slot.
type Loadout[T any] struct {
	Helmet  *T   `json:"helmet,omitempty"`
	Body    *T   `json:"body,omitempty"`
	Boots   *T   `json:"boots,omitempty"`
	Gloves  *T   `json:"gloves,omitempty"`
	Weapon1 *T   `json:"weapon1,omitempty"`
	Weapon2 *T   `json:"weapon2,omitempty"`
	Ring1   *T   `json:"ring1,omitempty"`
	Ring2   *T   `json:"ring2,omitempty"`
	Belt    *T   `json:"belt,omitempty"`
	Amulet  *T   `json:"amulet,omitempty"`
	Flasks  []*T `json:"flasks,omitempty"`
	Gems    []*T `json:"gems,omitempty"`
	Jewels  []*T `json:"jewels,omitempty"`
}

var (
	fixedSlots = []string{"helmet", "body", "boots", "gloves", "weapon1", "weapon2", "ring1", "ring2", "belt", "amulet"}
	listSlots  = []string{"flasks", "gems", "jewels"}
)

func (l *Loadout[T]) fixed() []**T {
	return []**T{&l.Helmet, &l.Body, &l.Boots, &l.Gloves, &l.Weapon1, &l.Weapon2, &l.Ring1, &l.Ring2, &l.Belt, &l.Amulet}
}

func (l *Loadout[T]) lists() []*[]*T {
	return []*[]*T{&l.Flasks, &l.Gems, &l.Jewels}
}

// Each calls fn for every filled slot in a fixed order, stopping at the
// first error.
func (l *Loadout[T]) Each(fn func(slot Slot, v *T) error) error {
	for i, p := range l.fixed() {
		if *p == nil {
			continue
		}
		if err := fn(Slot{Name: fixedSlots[i], Index: -1}, *p); err != nil {
			return err
		}
	}
	for i, p := range l.lists() {
		for j, v := range *p {
			if v == nil {
				continue
			}
			if err := fn(Slot{Name: listSlots[i], Index: j}, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Len returns the number of filled slots.
func (l *Loadout[T]) Len() int {
	n := 0
	_ = l.Each(func(Slot, *T) error {
		n++
		return nil
	})
	return n
}

// MapLoadout converts every filled slot of in with fn. Empty slots stay
// empty and list lengths are preserved, so a nil result keeps its position.
func MapLoadout[A, B any](in *Loadout[A], fn func(slot Slot, v *A) (*B, error)) (*Loadout[B], error) {
	out := &Loadout[B]{}
	dst := out.fixed()
	for i, p := range in.fixed() {
		if *p == nil {
			continue
		}
		v, err := fn(Slot{Name: fixedSlots[i], Index: -1}, *p)
		if err != nil {
			return nil, err
		}
		*dst[i] = v
	}
	dstLists := out.lists()
	for i, p := range in.lists() {
		if len(*p) == 0 {
			continue
		}
		mapped := make([]*B, len(*p))
		for j, v := range *p {
			if v == nil {
				continue
			}
			r, err := fn(Slot{Name: listSlots[i], Index: j}, v)
			if err != nil {
				return nil, err
			}
			mapped[j] = r
		}
		*dstLists[i] = mapped
	}
	return out, nil
}
