package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taktline/taktline/internal/planning/application/services"
	"github.com/taktline/taktline/internal/planning/domain"
)

// June 2024: the 6th is a Thursday, the 8th a Saturday, the 9th a Sunday,
// the 10th a Monday.
func june(day, hour, min int) time.Time {
	return time.Date(2024, time.June, day, hour, min, 0, 0, time.UTC)
}

func newFinder() *services.SlotFinder {
	return services.NewSlotFinder(domain.DefaultCalendar())
}

func occupied(procedureID int64, start, end time.Time) *domain.ConflictSet {
	set := domain.NewConflictSet()
	set.Add(domain.Entry{JobID: 99, ProcedureID: procedureID, Start: start, End: end})
	return set
}

func TestSlotFinder_FindBackward(t *testing.T) {
	finder := newFinder()
	free := domain.NewConflictSet()

	t.Run("places at the end of the pivot block", func(t *testing.T) {
		slot, ok := finder.FindBackward(1, 2*time.Hour, june(6, 17, 0), free)
		require.True(t, ok)
		assert.Equal(t, june(6, 15, 0), slot.Start)
		assert.Equal(t, june(6, 17, 0), slot.End)
	})

	t.Run("mid-block pivot trims the block end", func(t *testing.T) {
		slot, ok := finder.FindBackward(1, 2*time.Hour, june(6, 16, 0), free)
		require.True(t, ok)
		assert.Equal(t, june(6, 14, 0), slot.Start)
		assert.Equal(t, june(6, 16, 0), slot.End)
	})

	t.Run("falls back to the previous block when the remainder is short", func(t *testing.T) {
		slot, ok := finder.FindBackward(1, 2*time.Hour, june(6, 14, 30), free)
		require.True(t, ok)
		assert.Equal(t, june(6, 11, 0), slot.Start)
		assert.Equal(t, june(6, 13, 0), slot.End)
	})

	t.Run("sunday pivot retreats to saturday", func(t *testing.T) {
		slot, ok := finder.FindBackward(1, time.Hour, june(9, 12, 0), free)
		require.True(t, ok)
		assert.Equal(t, june(8, 14, 30), slot.Start)
		assert.Equal(t, june(8, 15, 30), slot.End)
	})

	t.Run("conflict pushes the search before the conflicting entry", func(t *testing.T) {
		conflicts := occupied(1, june(6, 15, 0), june(6, 17, 0))
		slot, ok := finder.FindBackward(1, 2*time.Hour, june(6, 17, 0), conflicts)
		require.True(t, ok)
		assert.Equal(t, june(6, 11, 0), slot.Start)
		assert.Equal(t, june(6, 13, 0), slot.End)
	})

	t.Run("entries of other procedures do not block", func(t *testing.T) {
		conflicts := occupied(2, june(6, 15, 0), june(6, 17, 0))
		slot, ok := finder.FindBackward(1, 2*time.Hour, june(6, 17, 0), conflicts)
		require.True(t, ok)
		assert.Equal(t, june(6, 15, 0), slot.Start)
	})

	t.Run("zero duration lands at the pivot", func(t *testing.T) {
		slot, ok := finder.FindBackward(1, 0, june(6, 17, 0), free)
		require.True(t, ok)
		assert.Equal(t, june(6, 17, 0), slot.Start)
		assert.Equal(t, june(6, 17, 0), slot.End)
	})
}

func TestSlotFinder_FindForward(t *testing.T) {
	finder := newFinder()
	free := domain.NewConflictSet()

	t.Run("places at the start of the pivot block", func(t *testing.T) {
		slot, ok := finder.FindForward(1, 2*time.Hour, june(6, 8, 15), free)
		require.True(t, ok)
		assert.Equal(t, june(6, 8, 15), slot.Start)
		assert.Equal(t, june(6, 10, 15), slot.End)
	})

	t.Run("mid-block pivot starts there", func(t *testing.T) {
		slot, ok := finder.FindForward(1, 2*time.Hour, june(6, 9, 0), free)
		require.True(t, ok)
		assert.Equal(t, june(6, 9, 0), slot.Start)
		assert.Equal(t, june(6, 11, 0), slot.End)
	})

	t.Run("skips to the next block when the remainder is short", func(t *testing.T) {
		slot, ok := finder.FindForward(1, 2*time.Hour, june(6, 11, 30), free)
		require.True(t, ok)
		assert.Equal(t, june(6, 13, 30), slot.Start)
		assert.Equal(t, june(6, 15, 30), slot.End)
	})

	t.Run("end of saturday rolls over sunday to monday", func(t *testing.T) {
		slot, ok := finder.FindForward(1, 2*time.Hour, june(8, 14, 0), free)
		require.True(t, ok)
		assert.Equal(t, june(10, 8, 15), slot.Start)
		assert.Equal(t, june(10, 10, 15), slot.End)
	})

	t.Run("conflict pushes the search past the conflicting entry", func(t *testing.T) {
		conflicts := occupied(1, june(6, 8, 15), june(6, 10, 15))
		slot, ok := finder.FindForward(1, 2*time.Hour, june(6, 8, 15), conflicts)
		require.True(t, ok)
		assert.Equal(t, june(6, 10, 15), slot.Start)
		assert.Equal(t, june(6, 12, 15), slot.End)
	})
}

func TestSlotFinder_FindBackwardMultiday(t *testing.T) {
	finder := newFinder()
	calendar := domain.DefaultCalendar()
	free := domain.NewConflictSet()

	t.Run("straddles the lunch break in one span", func(t *testing.T) {
		slot, ok := finder.FindBackwardMultiday(1, 5*time.Hour, june(6, 17, 0), free)
		require.True(t, ok)
		assert.Equal(t, june(6, 11, 30), slot.Start)
		assert.Equal(t, june(6, 17, 0), slot.End)
		assert.Equal(t, 5*time.Hour, calendar.WorkingDuration(slot.Start, slot.End))
	})

	t.Run("trims segments at conflicts", func(t *testing.T) {
		conflicts := occupied(1, june(6, 15, 0), june(6, 16, 0))
		slot, ok := finder.FindBackwardMultiday(1, 5*time.Hour, june(6, 17, 0), conflicts)
		require.True(t, ok)
		assert.Equal(t, june(6, 9, 30), slot.Start)
		assert.Equal(t, june(6, 15, 0), slot.End)
		assert.Equal(t, 5*time.Hour, calendar.WorkingDuration(slot.Start, june(6, 15, 0)))
	})

	t.Run("spans the weekend skipping sunday", func(t *testing.T) {
		slot, ok := finder.FindBackwardMultiday(1, 8*time.Hour, june(10, 13, 0), free)
		require.True(t, ok)
		assert.Equal(t, june(8, 11, 45), slot.Start)
		assert.Equal(t, june(10, 13, 0), slot.End)
		assert.Equal(t, 8*time.Hour, calendar.WorkingDuration(slot.Start, slot.End))
	})
}

func TestSlotFinder_FindForwardMultiday(t *testing.T) {
	finder := newFinder()
	calendar := domain.DefaultCalendar()

	t.Run("straddles the lunch break in one span", func(t *testing.T) {
		slot, ok := finder.FindForwardMultiday(5*time.Hour, june(6, 8, 15))
		require.True(t, ok)
		assert.Equal(t, june(6, 8, 15), slot.Start)
		assert.Equal(t, june(6, 13, 45), slot.End)
		assert.Equal(t, 5*time.Hour, calendar.WorkingDuration(slot.Start, slot.End))
	})

	t.Run("spans the weekend skipping sunday", func(t *testing.T) {
		slot, ok := finder.FindForwardMultiday(4*time.Hour, june(8, 13, 30))
		require.True(t, ok)
		assert.Equal(t, june(8, 13, 30), slot.Start)
		assert.Equal(t, june(10, 10, 15), slot.End)
		assert.Equal(t, 4*time.Hour, calendar.WorkingDuration(slot.Start, slot.End))
	})
}

func TestSlotFinder_StartForDuration(t *testing.T) {
	finder := newFinder()
	calendar := domain.DefaultCalendar()

	t.Run("single block", func(t *testing.T) {
		start, ok := finder.StartForDuration(2*time.Hour, june(6, 17, 0))
		require.True(t, ok)
		assert.Equal(t, june(6, 15, 0), start)
	})

	t.Run("zero duration returns the target end", func(t *testing.T) {
		start, ok := finder.StartForDuration(0, june(6, 16, 0))
		require.True(t, ok)
		assert.Equal(t, june(6, 16, 0), start)
	})

	t.Run("crosses the lunch break", func(t *testing.T) {
		start, ok := finder.StartForDuration(5*time.Hour, june(6, 17, 0))
		require.True(t, ok)
		assert.Equal(t, june(6, 11, 30), start)
		assert.Equal(t, 5*time.Hour, calendar.WorkingDuration(start, june(6, 17, 0)))
	})

	t.Run("crosses the weekend skipping sunday", func(t *testing.T) {
		start, ok := finder.StartForDuration(2*time.Hour, june(10, 9, 15))
		require.True(t, ok)
		assert.Equal(t, june(8, 14, 30), start)
		assert.Equal(t, 2*time.Hour, calendar.WorkingDuration(start, june(10, 9, 15)))
	})

	t.Run("fails beyond the search horizon", func(t *testing.T) {
		_, ok := finder.StartForDuration(3000*time.Hour, june(6, 17, 0))
		assert.False(t, ok)
	})
}
