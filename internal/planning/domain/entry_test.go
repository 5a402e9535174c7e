package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taktline/taktline/internal/planning/domain"
)

func TestEntry_Overlaps(t *testing.T) {
	entry := domain.Entry{
		JobID:       1,
		ProcedureID: 1,
		Start:       june(10, 9, 0),
		End:         june(10, 11, 0),
	}

	t.Run("contained span overlaps", func(t *testing.T) {
		assert.True(t, entry.Overlaps(june(10, 9, 30), june(10, 10, 30)))
	})

	t.Run("partial overlap at either edge", func(t *testing.T) {
		assert.True(t, entry.Overlaps(june(10, 8, 0), june(10, 9, 30)))
		assert.True(t, entry.Overlaps(june(10, 10, 30), june(10, 12, 0)))
	})

	t.Run("touching spans do not overlap", func(t *testing.T) {
		assert.False(t, entry.Overlaps(june(10, 8, 0), june(10, 9, 0)))
		assert.False(t, entry.Overlaps(june(10, 11, 0), june(10, 12, 0)))
	})

	t.Run("disjoint spans do not overlap", func(t *testing.T) {
		assert.False(t, entry.Overlaps(june(10, 13, 30), june(10, 14, 0)))
	})

	t.Run("zero duration span overlaps only strictly inside", func(t *testing.T) {
		assert.True(t, entry.Overlaps(june(10, 10, 0), june(10, 10, 0)))
		assert.False(t, entry.Overlaps(june(10, 9, 0), june(10, 9, 0)))
		assert.False(t, entry.Overlaps(june(10, 11, 0), june(10, 11, 0)))
	})
}

func TestConflictSet(t *testing.T) {
	set := domain.NewConflictSet()
	set.Add(
		domain.Entry{JobID: 1, ProcedureID: 1, Start: june(10, 9, 0), End: june(10, 11, 0)},
		domain.Entry{JobID: 1, ProcedureID: 2, Start: june(10, 11, 0), End: june(10, 12, 0)},
		domain.Entry{JobID: 2, ProcedureID: 1, Start: june(10, 14, 0), End: june(10, 16, 0)},
	)

	t.Run("conflicts only within the same procedure", func(t *testing.T) {
		found := set.Conflicts(1, june(10, 10, 0), june(10, 15, 0))
		require.Len(t, found, 2)

		assert.Empty(t, set.Conflicts(2, june(10, 9, 0), june(10, 10, 0)))
		assert.True(t, set.HasConflict(2, june(10, 11, 30), june(10, 11, 45)))
	})

	t.Run("unknown procedure has no conflicts", func(t *testing.T) {
		assert.False(t, set.HasConflict(99, june(10, 0, 0), june(11, 0, 0)))
	})

	t.Run("latest end per procedure", func(t *testing.T) {
		latest, ok := set.LatestEnd(1)
		require.True(t, ok)
		assert.Equal(t, june(10, 16, 0), latest)

		_, ok = set.LatestEnd(99)
		assert.False(t, ok)
	})

	t.Run("len counts all entries", func(t *testing.T) {
		assert.Equal(t, 3, set.Len())
	})
}

func TestConflictSet_TouchingEntriesCoexist(t *testing.T) {
	set := domain.NewConflictSet()
	set.Add(domain.Entry{JobID: 1, ProcedureID: 1, Start: june(10, 9, 0), End: june(10, 11, 0)})

	assert.False(t, set.HasConflict(1, june(10, 11, 0), june(10, 13, 0)))
	assert.False(t, set.HasConflict(1, june(10, 8, 0), june(10, 9, 0)))

	set.Add(domain.Entry{JobID: 2, ProcedureID: 1, Start: june(10, 11, 0), End: june(10, 13, 0)})
	assert.Equal(t, 2, set.Len())

	latest, ok := set.LatestEnd(1)
	require.True(t, ok)
	assert.Equal(t, june(10, 13, 0), latest)
}
