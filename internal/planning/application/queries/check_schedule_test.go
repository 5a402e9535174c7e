package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taktline/taktline/internal/planning/domain"
)

func newCheckHandler(scheduleRepo *mockScheduleRepo, jobRepo *mockJobRepo, procedureRepo *mockProcedureRepo) *CheckScheduleHandler {
	return NewCheckScheduleHandler(scheduleRepo, jobRepo, procedureRepo, domain.DefaultCalendar())
}

func TestCheckScheduleHandler_Handle(t *testing.T) {
	t.Run("clean schedule passes every invariant", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		jobRepo := new(mockJobRepo)
		procedureRepo := new(mockProcedureRepo)
		handler := newCheckHandler(scheduleRepo, jobRepo, procedureRepo)

		ctx := context.Background()
		jobRepo.On("ListByDeadline", ctx).Return([]*domain.Job{boardJob(1, "Turbine frame", 10)}, nil)
		procedureRepo.On("ListBySequence", ctx).Return([]*domain.Procedure{
			{ID: 10, Sequence: 1, Name: "Cutting", PlannedTime: 2},
			{ID: 20, Sequence: 2, Name: "Welding", PlannedTime: 1},
		}, nil)
		scheduleRepo.On("ListAll", ctx).Return([]domain.Entry{
			{ID: 1, JobID: 1, ProcedureID: 10, Start: june(6, 14, 0), End: june(6, 16, 0), PlannedTime: 2},
			{ID: 2, JobID: 1, ProcedureID: 20, Start: june(6, 16, 0), End: june(6, 17, 0), PlannedTime: 1},
		}, nil)

		result, err := handler.Handle(ctx, CheckScheduleQuery{})

		require.NoError(t, err)
		assert.True(t, result.Clean())
		assert.Equal(t, 1, result.JobsChecked)
		assert.Equal(t, 2, result.EntriesChecked)
		assert.Empty(t, result.AtRiskJobIDs)
		assert.Empty(t, result.UnplannedJobIDs)
	})

	t.Run("reports overlapping entries on the same procedure", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		jobRepo := new(mockJobRepo)
		procedureRepo := new(mockProcedureRepo)
		handler := newCheckHandler(scheduleRepo, jobRepo, procedureRepo)

		ctx := context.Background()
		jobRepo.On("ListByDeadline", ctx).Return([]*domain.Job{
			boardJob(1, "Turbine frame", 10),
			boardJob(2, "Pump casing", 10),
		}, nil)
		procedureRepo.On("ListBySequence", ctx).Return([]*domain.Procedure{
			{ID: 10, Sequence: 1, Name: "Cutting", PlannedTime: 2},
		}, nil)
		scheduleRepo.On("ListAll", ctx).Return([]domain.Entry{
			{ID: 1, JobID: 1, ProcedureID: 10, Start: june(6, 14, 0), End: june(6, 16, 0), PlannedTime: 2},
			{ID: 2, JobID: 2, ProcedureID: 10, Start: june(6, 15, 0), End: june(6, 17, 0), PlannedTime: 2},
		}, nil)

		result, err := handler.Handle(ctx, CheckScheduleQuery{})

		require.NoError(t, err)
		require.Len(t, result.Violations, 1)
		assert.Equal(t, ViolationOverlap, result.Violations[0].Kind)
		assert.Equal(t, int64(2), result.Violations[0].JobID)
		assert.Equal(t, int64(10), result.Violations[0].ProcedureID)
	})

	t.Run("touching entries do not overlap", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		jobRepo := new(mockJobRepo)
		procedureRepo := new(mockProcedureRepo)
		handler := newCheckHandler(scheduleRepo, jobRepo, procedureRepo)

		ctx := context.Background()
		jobRepo.On("ListByDeadline", ctx).Return([]*domain.Job{
			boardJob(1, "Turbine frame", 10),
			boardJob(2, "Pump casing", 10),
		}, nil)
		procedureRepo.On("ListBySequence", ctx).Return([]*domain.Procedure{
			{ID: 10, Sequence: 1, Name: "Cutting", PlannedTime: 2},
		}, nil)
		scheduleRepo.On("ListAll", ctx).Return([]domain.Entry{
			{ID: 1, JobID: 1, ProcedureID: 10, Start: june(6, 8, 15), End: june(6, 10, 15), PlannedTime: 2},
			{ID: 2, JobID: 2, ProcedureID: 10, Start: june(6, 10, 15), End: june(6, 12, 15), PlannedTime: 2},
		}, nil)

		result, err := handler.Handle(ctx, CheckScheduleQuery{})

		require.NoError(t, err)
		assert.True(t, result.Clean())
	})

	t.Run("reports a missing procedure entry as a coverage gap", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		jobRepo := new(mockJobRepo)
		procedureRepo := new(mockProcedureRepo)
		handler := newCheckHandler(scheduleRepo, jobRepo, procedureRepo)

		ctx := context.Background()
		jobRepo.On("ListByDeadline", ctx).Return([]*domain.Job{boardJob(1, "Turbine frame", 10)}, nil)
		procedureRepo.On("ListBySequence", ctx).Return([]*domain.Procedure{
			{ID: 10, Sequence: 1, Name: "Cutting", PlannedTime: 2},
			{ID: 20, Sequence: 2, Name: "Welding", PlannedTime: 1},
		}, nil)
		scheduleRepo.On("ListAll", ctx).Return([]domain.Entry{
			{ID: 1, JobID: 1, ProcedureID: 10, Start: june(6, 14, 0), End: june(6, 16, 0), PlannedTime: 2},
		}, nil)

		result, err := handler.Handle(ctx, CheckScheduleQuery{})

		require.NoError(t, err)
		require.Len(t, result.Violations, 1)
		assert.Equal(t, ViolationCoverage, result.Violations[0].Kind)
		assert.Equal(t, int64(20), result.Violations[0].ProcedureID)
		assert.Contains(t, result.Violations[0].Detail, "Welding")
	})

	t.Run("reports a span that does not hold its planned hours", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		jobRepo := new(mockJobRepo)
		procedureRepo := new(mockProcedureRepo)
		handler := newCheckHandler(scheduleRepo, jobRepo, procedureRepo)

		ctx := context.Background()
		jobRepo.On("ListByDeadline", ctx).Return([]*domain.Job{boardJob(1, "Turbine frame", 10)}, nil)
		procedureRepo.On("ListBySequence", ctx).Return([]*domain.Procedure{
			{ID: 10, Sequence: 1, Name: "Cutting", PlannedTime: 2},
		}, nil)
		// Only one working hour between 16:00 and 17:00.
		scheduleRepo.On("ListAll", ctx).Return([]domain.Entry{
			{ID: 1, JobID: 1, ProcedureID: 10, Start: june(6, 16, 0), End: june(6, 17, 0), PlannedTime: 2},
		}, nil)

		result, err := handler.Handle(ctx, CheckScheduleQuery{})

		require.NoError(t, err)
		require.Len(t, result.Violations, 1)
		assert.Equal(t, ViolationWorkingTime, result.Violations[0].Kind)
	})

	t.Run("spans crossing the lunch gap hold their planned hours", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		jobRepo := new(mockJobRepo)
		procedureRepo := new(mockProcedureRepo)
		handler := newCheckHandler(scheduleRepo, jobRepo, procedureRepo)

		ctx := context.Background()
		jobRepo.On("ListByDeadline", ctx).Return([]*domain.Job{boardJob(1, "Turbine frame", 10)}, nil)
		procedureRepo.On("ListBySequence", ctx).Return([]*domain.Procedure{
			{ID: 10, Sequence: 1, Name: "Pressing", PlannedTime: 5},
		}, nil)
		// 11:30-13:00 and 13:30-17:00 work out to exactly five hours.
		scheduleRepo.On("ListAll", ctx).Return([]domain.Entry{
			{ID: 1, JobID: 1, ProcedureID: 10, Start: june(6, 11, 30), End: june(6, 17, 0), PlannedTime: 5},
		}, nil)

		result, err := handler.Handle(ctx, CheckScheduleQuery{})

		require.NoError(t, err)
		assert.True(t, result.Clean())
	})

	t.Run("collects at-risk and unplanned jobs", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		jobRepo := new(mockJobRepo)
		procedureRepo := new(mockProcedureRepo)
		handler := newCheckHandler(scheduleRepo, jobRepo, procedureRepo)

		ctx := context.Background()
		jobRepo.On("ListByDeadline", ctx).Return([]*domain.Job{
			boardJob(1, "Turbine frame", 10),
			boardJob(2, "Pump casing", 10),
		}, nil)
		procedureRepo.On("ListBySequence", ctx).Return([]*domain.Procedure{
			{ID: 10, Sequence: 1, Name: "Cutting", PlannedTime: 2},
		}, nil)
		// Job 1 ends the Friday after its Thursday target; job 2 has no rows.
		scheduleRepo.On("ListAll", ctx).Return([]domain.Entry{
			{ID: 1, JobID: 1, ProcedureID: 10, Start: june(7, 8, 15), End: june(7, 10, 15), PlannedTime: 2},
		}, nil)

		result, err := handler.Handle(ctx, CheckScheduleQuery{})

		require.NoError(t, err)
		assert.Equal(t, []int64{1}, result.AtRiskJobIDs)
		assert.Equal(t, []int64{2}, result.UnplannedJobIDs)
	})
}

func TestCheckScheduleResult_Clean(t *testing.T) {
	clean := &CheckScheduleResult{AtRiskJobIDs: []int64{4}}
	assert.True(t, clean.Clean())

	dirty := &CheckScheduleResult{Violations: []ScheduleViolationDTO{{Kind: ViolationOverlap}}}
	assert.False(t, dirty.Clean())
}

// Zero-width rows sit at a block boundary without conflicting.
func TestCheckScheduleHandler_ZeroWidthRows(t *testing.T) {
	scheduleRepo := new(mockScheduleRepo)
	jobRepo := new(mockJobRepo)
	procedureRepo := new(mockProcedureRepo)
	handler := newCheckHandler(scheduleRepo, jobRepo, procedureRepo)

	ctx := context.Background()
	jobRepo.On("ListByDeadline", ctx).Return([]*domain.Job{
		boardJob(1, "Turbine frame", 10),
		boardJob(2, "Pump casing", 10),
	}, nil)
	procedureRepo.On("ListBySequence", ctx).Return([]*domain.Procedure{
		{ID: 10, Sequence: 1, Name: "Inspection", PlannedTime: 0},
	}, nil)
	scheduleRepo.On("ListAll", ctx).Return([]domain.Entry{
		{ID: 1, JobID: 1, ProcedureID: 10, Start: june(6, 17, 0), End: june(6, 17, 0), PlannedTime: 0},
		{ID: 2, JobID: 2, ProcedureID: 10, Start: june(6, 17, 0), End: june(6, 17, 0), PlannedTime: 0},
	}, nil)

	result, err := handler.Handle(ctx, CheckScheduleQuery{})

	require.NoError(t, err)
	assert.True(t, result.Clean())
}
