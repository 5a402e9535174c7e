package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taktline/taktline/internal/planning/application/services"
	"github.com/taktline/taktline/internal/planning/domain"
)

func newPlanner() *services.JobPlanner {
	return services.NewJobPlanner(newFinder())
}

func testJob(id int64, deadlineDay int, deadlineHour int) *domain.Job {
	return &domain.Job{
		ID:           id,
		Name:         fmt.Sprintf("Job %d", id),
		DeadlineDate: june(deadlineDay, 0, 0),
		DeadlineTime: time.Duration(deadlineHour) * time.Hour,
	}
}

func testProcedure(id int64, sequence, hours int) *domain.Procedure {
	return &domain.Procedure{
		ID:              id,
		Sequence:        sequence,
		Name:            fmt.Sprintf("P%d", sequence),
		PlannedTime:     hours,
		PlannedManpower: 1,
		IsProd:          true,
	}
}

func TestJobPlanner_PlanBackward(t *testing.T) {
	planner := newPlanner()
	job := testJob(1, 10, 9)

	t.Run("chains procedures with zero gaps back from the target", func(t *testing.T) {
		procedures := []*domain.Procedure{testProcedure(1, 1, 1), testProcedure(2, 2, 1)}

		entries := planner.PlanBackward(job, procedures, june(6, 17, 0))
		require.Len(t, entries, 2)

		assert.Equal(t, int64(1), entries[0].ProcedureID)
		assert.Equal(t, june(6, 15, 0), entries[0].Start)
		assert.Equal(t, june(6, 16, 0), entries[0].End)

		assert.Equal(t, int64(2), entries[1].ProcedureID)
		assert.Equal(t, june(6, 16, 0), entries[1].Start)
		assert.Equal(t, june(6, 17, 0), entries[1].End)

		assert.Equal(t, entries[0].End, entries[1].Start, "consecutive procedures share their boundary")
		assert.Equal(t, int64(1), entries[0].JobID)
		assert.Equal(t, 1, entries[0].PlannedTime)
	})

	t.Run("zero duration procedure yields a zero-width row at the pivot", func(t *testing.T) {
		procedures := []*domain.Procedure{
			testProcedure(1, 1, 1),
			testProcedure(2, 2, 0),
			testProcedure(3, 3, 1),
		}

		entries := planner.PlanBackward(job, procedures, june(6, 17, 0))
		require.Len(t, entries, 3)

		assert.Equal(t, june(6, 16, 0), entries[1].Start)
		assert.Equal(t, june(6, 16, 0), entries[1].End)
		assert.Equal(t, june(6, 15, 0), entries[0].Start)
		assert.Equal(t, june(6, 17, 0), entries[2].End)
	})

	t.Run("long procedure spans blocks in a single row", func(t *testing.T) {
		procedures := []*domain.Procedure{testProcedure(1, 1, 6)}

		entries := planner.PlanBackward(job, procedures, june(6, 17, 0))
		require.Len(t, entries, 1)

		assert.Equal(t, june(6, 10, 30), entries[0].Start)
		assert.Equal(t, june(6, 17, 0), entries[0].End)
		calendar := domain.DefaultCalendar()
		assert.Equal(t, 6*time.Hour, calendar.WorkingDuration(entries[0].Start, entries[0].End))
	})

	t.Run("unsatisfiable chain returns nil", func(t *testing.T) {
		procedures := []*domain.Procedure{testProcedure(1, 1, 3000)}
		assert.Nil(t, planner.PlanBackward(job, procedures, june(6, 17, 0)))
	})
}

func TestJobPlanner_PlanForward(t *testing.T) {
	planner := newPlanner()
	job := testJob(1, 10, 9)
	free := domain.NewConflictSet()

	t.Run("places procedures in sequence order allowing gaps", func(t *testing.T) {
		procedures := []*domain.Procedure{testProcedure(1, 1, 3), testProcedure(2, 2, 3)}

		entries := planner.PlanForward(job, procedures, june(6, 8, 15), free)
		require.Len(t, entries, 2)

		assert.Equal(t, june(6, 8, 15), entries[0].Start)
		assert.Equal(t, june(6, 11, 15), entries[0].End)

		// The morning remainder is too short for P2, so it moves to the
		// afternoon block leaving a gap.
		assert.Equal(t, june(6, 13, 30), entries[1].Start)
		assert.Equal(t, june(6, 16, 30), entries[1].End)
	})

	t.Run("long procedure takes the multi-day path", func(t *testing.T) {
		procedures := []*domain.Procedure{testProcedure(1, 1, 5)}

		entries := planner.PlanForward(job, procedures, june(6, 8, 15), free)
		require.Len(t, entries, 1)

		assert.Equal(t, june(6, 8, 15), entries[0].Start)
		assert.Equal(t, june(6, 13, 45), entries[0].End)
	})

	t.Run("avoids occupied time", func(t *testing.T) {
		conflicts := occupied(1, june(6, 8, 15), june(6, 10, 15))
		procedures := []*domain.Procedure{testProcedure(1, 1, 2)}

		entries := planner.PlanForward(job, procedures, june(6, 8, 15), conflicts)
		require.Len(t, entries, 1)
		assert.Equal(t, june(6, 10, 15), entries[0].Start)
		assert.Equal(t, june(6, 12, 15), entries[0].End)
	})
}

func TestJobPlanner_PlanBackwardWithConflicts(t *testing.T) {
	planner := newPlanner()
	job := testJob(2, 10, 9)
	procedures := []*domain.Procedure{testProcedure(1, 1, 2), testProcedure(2, 2, 2)}

	// A higher-priority job already holds the slots closest to the target.
	conflicts := domain.NewConflictSet()
	conflicts.Add(
		domain.Entry{JobID: 1, ProcedureID: 1, Start: june(6, 12, 30), End: june(6, 15, 0)},
		domain.Entry{JobID: 1, ProcedureID: 2, Start: june(6, 15, 0), End: june(6, 17, 0)},
	)

	entries := planner.PlanBackwardWithConflicts(job, procedures, june(6, 17, 0), conflicts)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(1), entries[0].ProcedureID)
	assert.Equal(t, june(6, 9, 0), entries[0].Start)
	assert.Equal(t, june(6, 11, 0), entries[0].End)

	assert.Equal(t, int64(2), entries[1].ProcedureID)
	assert.Equal(t, june(6, 11, 0), entries[1].Start)
	assert.Equal(t, june(6, 13, 0), entries[1].End)

	for _, e := range entries {
		assert.Empty(t, conflicts.Conflicts(e.ProcedureID, e.Start, e.End), "compressed plan must not overlap occupied time")
	}
}
