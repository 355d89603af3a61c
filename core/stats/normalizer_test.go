package stats_test

import (
	"errors"
	"strings"
	"testing"

	"stash-pricer/core/items"
	"stash-pricer/core/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"+22 to Strength", "+# to Strength"},
		{"+(8-12) to Strength", "+# to Strength"},
		{"Adds (3-5) to (6-8) Physical Damage", "Adds # to # Physical Damage"},
		{"  0.4% of Physical Attack Damage Leeched as Life ", "#% of Physical Attack Damage Leeched as Life"},
		{"Cannot be Frozen", "Cannot be Frozen"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, stats.Template(tt.text))
		})
	}
}

func TestResolve_Default(t *testing.T) {
	n := stats.Default()

	t.Run("Strength", func(t *testing.T) {
		mod, err := n.Resolve("+22 to Strength", items.ProvenanceExplicit)
		require.NoError(t, err)
		assert.Equal(t, "additional_strength", mod.StatID)
		assert.Equal(t, items.Exact(22), mod.Value)
		assert.Equal(t, items.ProvenanceExplicit, mod.Provenance)
		assert.Equal(t, "+22 to Strength", mod.Text)
	})

	t.Run("Life", func(t *testing.T) {
		mod, err := n.Resolve("+20 to maximum Life", items.ProvenanceImplicit)
		require.NoError(t, err)
		assert.Equal(t, "maximum_life", mod.StatID)
		assert.Equal(t, items.ProvenanceImplicit, mod.Provenance)
	})

	t.Run("TwoNumbers", func(t *testing.T) {
		mod, err := n.Resolve("Adds 5 to 11 Physical Damage", items.ProvenanceExplicit)
		require.NoError(t, err)
		assert.Equal(t, "local_added_physical_damage", mod.StatID)
		assert.Equal(t, items.Range(5, 11), mod.Value)
	})

	t.Run("NoNumber", func(t *testing.T) {
		mod, err := n.Resolve("Cannot be Frozen", items.ProvenanceExplicit)
		require.NoError(t, err)
		assert.Equal(t, "cannot_be_frozen", mod.StatID)
		assert.False(t, mod.Value.IsNumeric())
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := n.Resolve("+3 to Maximum Pizza", items.ProvenanceExplicit)
		assert.True(t, errors.Is(err, stats.ErrNotFound))
	})
}

func TestResolve_CandidateSelection(t *testing.T) {
	n, err := stats.New([]stats.Entry{
		{ID: "attack_speed_percent", Text: "(5-7)% increased Attack Speed"},
		{ID: "local_attack_speed_percent", Text: "(11-27)% increased Attack Speed"},
	})
	require.NoError(t, err)

	t.Run("FirstRangeContainingValue", func(t *testing.T) {
		mod, err := n.Resolve("6% increased Attack Speed", items.ProvenanceExplicit)
		require.NoError(t, err)
		assert.Equal(t, "attack_speed_percent", mod.StatID)

		mod, err = n.Resolve("20% increased Attack Speed", items.ProvenanceExplicit)
		require.NoError(t, err)
		assert.Equal(t, "local_attack_speed_percent", mod.StatID)
	})

	// A value no candidate range contains falls back to the first candidate.
	t.Run("FallbackToFirst", func(t *testing.T) {
		mod, err := n.Resolve("30% increased Attack Speed", items.ProvenanceExplicit)
		require.NoError(t, err)
		assert.Equal(t, "attack_speed_percent", mod.StatID)
		assert.Equal(t, items.Exact(30), mod.Value)

		mod, err = n.Resolve("9% increased Attack Speed", items.ProvenanceCrafted)
		require.NoError(t, err)
		assert.Equal(t, "attack_speed_percent", mod.StatID)
	})
}

func TestLoad(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		n, err := stats.Load(strings.NewReader(`[{"id":"a","text":"+(1-2) to A"},{"id":"a","text":"+(3-4) to A"}]`))
		require.NoError(t, err)
		assert.Equal(t, 1, n.Len())
	})

	t.Run("MissingID", func(t *testing.T) {
		_, err := stats.Load(strings.NewReader(`[{"text":"+(1-2) to A"}]`))
		assert.Error(t, err)
	})

	t.Run("BadJSON", func(t *testing.T) {
		_, err := stats.Load(strings.NewReader(`{`))
		assert.Error(t, err)
	})
}

func TestFromConfig_Default(t *testing.T) {
	n, err := stats.FromConfig(stats.Config{})
	require.NoError(t, err)
	assert.Same(t, stats.Default(), n)
	assert.Greater(t, n.Len(), 20)
}
