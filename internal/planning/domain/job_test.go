package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taktline/taktline/internal/planning/domain"
)

func TestNewJob(t *testing.T) {
	deadline := time.Date(2024, time.June, 10, 14, 30, 0, 0, time.UTC)

	job, err := domain.NewJob("Order 4711", "rush order", deadline, 10*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, "Order 4711", job.Name)
	assert.Equal(t, "rush order", job.Description)
	assert.Equal(t, june(10, 0, 0), job.DeadlineDate, "deadline date is normalized to midnight")
	assert.Equal(t, 10*time.Hour, job.DeadlineTime)
	assert.Equal(t, june(10, 10, 0), job.DeadlineAt())
	assert.False(t, job.CreatedAt.IsZero())
}

func TestNewJob_Validation(t *testing.T) {
	deadline := june(10, 0, 0)

	_, err := domain.NewJob("", "", deadline, time.Hour)
	assert.ErrorIs(t, err, domain.ErrJobNameRequired)

	_, err = domain.NewJob("Order", "", time.Time{}, time.Hour)
	assert.ErrorIs(t, err, domain.ErrDeadlineRequired)

	_, err = domain.NewJob("Order", "", deadline, -time.Minute)
	assert.ErrorIs(t, err, domain.ErrDeadlineTimeInvalid)

	_, err = domain.NewJob("Order", "", deadline, 24*time.Hour)
	assert.ErrorIs(t, err, domain.ErrDeadlineTimeInvalid)
}

func TestJob_Reschedule(t *testing.T) {
	job, err := domain.NewJob("Order", "", june(10, 0, 0), 9*time.Hour)
	require.NoError(t, err)

	require.NoError(t, job.Reschedule(june(11, 6, 0), 8*time.Hour))
	assert.Equal(t, june(11, 8, 0), job.DeadlineAt())

	assert.ErrorIs(t, job.Reschedule(time.Time{}, time.Hour), domain.ErrDeadlineRequired)
	assert.ErrorIs(t, job.Reschedule(june(11, 0, 0), 25*time.Hour), domain.ErrDeadlineTimeInvalid)
}

func TestNewProcedure(t *testing.T) {
	procedure, err := domain.NewProcedure(1, "Cutting", "saw station", 2, 3, true, false)
	require.NoError(t, err)

	assert.Equal(t, 1, procedure.Sequence)
	assert.Equal(t, "Cutting", procedure.Name)
	assert.Equal(t, 2, procedure.PlannedTime)
	assert.Equal(t, 2*time.Hour, procedure.PlannedDuration())
	assert.Equal(t, 3, procedure.PlannedManpower)
	assert.True(t, procedure.IsProd)
	assert.False(t, procedure.IsStore)
}

func TestNewProcedure_Validation(t *testing.T) {
	_, err := domain.NewProcedure(1, "", "", 1, 1, true, false)
	assert.ErrorIs(t, err, domain.ErrProcedureNameRequired)

	_, err = domain.NewProcedure(0, "Cutting", "", 1, 1, true, false)
	assert.ErrorIs(t, err, domain.ErrSequenceInvalid)

	_, err = domain.NewProcedure(1, "Cutting", "", -1, 1, true, false)
	assert.ErrorIs(t, err, domain.ErrPlannedTimeInvalid)

	_, err = domain.NewProcedure(1, "Cutting", "", 1, -1, true, false)
	assert.ErrorIs(t, err, domain.ErrPlannedManpowerInvalid)
}

func TestProcedure_Update(t *testing.T) {
	procedure, err := domain.NewProcedure(1, "Cutting", "", 2, 1, true, false)
	require.NoError(t, err)

	require.NoError(t, procedure.Update(2, "Welding", "torch station", 3, 2, true, true))
	assert.Equal(t, 2, procedure.Sequence)
	assert.Equal(t, "Welding", procedure.Name)
	assert.Equal(t, 3*time.Hour, procedure.PlannedDuration())
	assert.True(t, procedure.IsStore)

	assert.ErrorIs(t, procedure.Update(0, "Welding", "", 1, 1, true, false), domain.ErrSequenceInvalid)
}

func TestRegenerationRecord(t *testing.T) {
	record := domain.NewRegenerationRecord("job.create")
	require.NotEmpty(t, record.ID)
	assert.Equal(t, "job.create", record.TriggeredBy)
	assert.False(t, record.StartedAt.IsZero())
	assert.True(t, record.FinishedAt.IsZero())

	record.Finish(4, 12, []int64{7}, []int64{3})
	assert.False(t, record.FinishedAt.IsZero())
	assert.Equal(t, 4, record.JobsPlanned)
	assert.Equal(t, 12, record.EntriesWritten)
	assert.Equal(t, []int64{7}, record.UnschedulableJobIDs)
	assert.Equal(t, []int64{3}, record.LateJobIDs)
}

func TestJobEvents(t *testing.T) {
	job, err := domain.NewJob("Order 4711", "", june(10, 0, 0), 9*time.Hour)
	require.NoError(t, err)
	job.ID = 42

	created := domain.NewJobCreated(job)
	assert.Equal(t, "42", created.AggregateID())
	assert.Equal(t, domain.AggregateTypeJob, created.AggregateType())
	assert.Equal(t, domain.RoutingKeyJobCreated, created.RoutingKey())
	assert.Equal(t, int64(42), created.JobID)
	assert.Equal(t, june(10, 9, 0), created.DeadlineAt)

	deleted := domain.NewJobDeleted(42)
	assert.Equal(t, domain.RoutingKeyJobDeleted, deleted.RoutingKey())
}

func TestScheduleEvents(t *testing.T) {
	record := domain.NewRegenerationRecord("cli")
	record.Finish(2, 6, nil, []int64{5})

	regenerated := domain.NewScheduleRegenerated(record)
	assert.Equal(t, record.ID.String(), regenerated.AggregateID())
	assert.Equal(t, domain.AggregateTypeSchedule, regenerated.AggregateType())
	assert.Equal(t, domain.RoutingKeyScheduleRegenerated, regenerated.RoutingKey())
	assert.Equal(t, 2, regenerated.JobsPlanned)
	assert.Equal(t, []int64{5}, regenerated.LateJobIDs)

	job, err := domain.NewJob("Order", "", june(10, 0, 0), 9*time.Hour)
	require.NoError(t, err)
	job.ID = 7

	atRisk := domain.NewDeadlineAtRisk(job, june(6, 17, 0), june(7, 12, 0))
	assert.Equal(t, domain.RoutingKeyDeadlineAtRisk, atRisk.RoutingKey())
	assert.Equal(t, june(6, 17, 0), atRisk.CompletionTarget)
	assert.Equal(t, june(7, 12, 0), atRisk.ProjectedEnd)
}
