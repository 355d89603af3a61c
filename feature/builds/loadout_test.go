package builds

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestLoadoutEach(t *testing.T) {
	l := Loadout[string]{
		Amulet: ptr("amulet"),
		Helmet: ptr("helmet"),
		Gems:   []*string{ptr("g0"), nil, ptr("g2")},
	}

	var seen []string
	require.NoError(t, l.Each(func(slot Slot, v *string) error {
		seen = append(seen, slot.String()+"="+*v)
		return nil
	}))
	assert.Equal(t, []string{"helmet=helmet", "amulet=amulet", "gems[0]=g0", "gems[2]=g2"}, seen)
	assert.Equal(t, 4, l.Len())

	stop := errors.New("stop")
	calls := 0
	err := l.Each(func(Slot, *string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestMapLoadout(t *testing.T) {
	in := &Loadout[string]{
		Belt:   ptr("belt"),
		Jewels: []*string{nil, ptr("j1")},
	}
	out, err := MapLoadout(in, func(slot Slot, v *string) (*int, error) {
		return ptr(len(*v)), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4, *out.Belt)
	assert.Nil(t, out.Boots)
	require.Len(t, out.Jewels, 2)
	assert.Nil(t, out.Jewels[0])
	assert.Equal(t, 2, *out.Jewels[1])
	assert.Nil(t, out.Flasks)

	_, err = MapLoadout(in, func(slot Slot, v *string) (*int, error) {
		return nil, errors.New(slot.String())
	})
	assert.EqualError(t, err, "belt")
}

func TestLoadoutJSON(t *testing.T) {
	l := Loadout[string]{Weapon1: ptr("axe"), Flasks: []*string{ptr("life")}}
	data, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `{"weapon1":"axe","flasks":["life"]}`, string(data))
}
