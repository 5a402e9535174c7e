package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taktline/taktline/internal/planning/domain"
	"github.com/taktline/taktline/internal/shared/infrastructure/outbox"
)

func TestCreateJobHandler_Handle(t *testing.T) {
	t.Run("creates the job and replans the schedule", func(t *testing.T) {
		mocks := newCommandMocks()
		handler := NewCreateJobHandler(mocks.jobRepo, mocks.outboxRepo, mocks.regenerator(), mocks.uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, txKey{}, "transaction")

		mocks.uow.On("Begin", ctx).Return(txCtx, nil)
		mocks.uow.On("Commit", txCtx).Return(nil)
		mocks.jobRepo.On("Create", txCtx, mock.AnythingOfType("*domain.Job")).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Job).ID = 7
		}).Return(nil)
		mocks.jobRepo.On("ListByDeadline", txCtx).Return([]*domain.Job{plannedJob(7, 10)}, nil)
		mocks.procedureRepo.On("ListBySequence", txCtx).Return([]*domain.Procedure{plannedProcedure(1, 1, 2)}, nil)
		mocks.scheduleRepo.On("Clear", txCtx).Return(nil)
		mocks.scheduleRepo.On("Insert", txCtx, mock.AnythingOfType("[]domain.Entry")).Return(nil)
		mocks.logRepo.On("Record", txCtx, mock.MatchedBy(func(record *domain.RegenerationRecord) bool {
			return record.TriggeredBy == TriggerJobCreated
		})).Return(nil)
		mocks.outboxRepo.On("SaveBatch", txCtx, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 1 && msgs[0].RoutingKey == domain.RoutingKeyJobCreated
		})).Return(nil)
		mocks.outboxRepo.On("SaveBatch", txCtx, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 1 && msgs[0].RoutingKey == domain.RoutingKeyScheduleRegenerated
		})).Return(nil)

		cmd := CreateJobCommand{
			Name:         "Turbine frame",
			DeadlineDate: june(10, 0, 0),
			DeadlineTime: 9 * time.Hour,
		}

		result, err := handler.Handle(ctx, cmd)

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, int64(7), result.JobID)
		require.NotNil(t, result.Regeneration)
		assert.Equal(t, 1, result.Regeneration.EntriesWritten)

		mocks.assertExpectations(t)
	})

	t.Run("rejects a job without a name", func(t *testing.T) {
		mocks := newCommandMocks()
		handler := NewCreateJobHandler(mocks.jobRepo, mocks.outboxRepo, mocks.regenerator(), mocks.uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, txKey{}, "transaction")

		mocks.uow.On("Begin", ctx).Return(txCtx, nil)
		mocks.uow.On("Rollback", txCtx).Return(nil)

		cmd := CreateJobCommand{
			DeadlineDate: june(10, 0, 0),
			DeadlineTime: 9 * time.Hour,
		}

		result, err := handler.Handle(ctx, cmd)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrJobNameRequired)

		mocks.assertExpectations(t)
	})

	t.Run("rejects an out-of-range deadline time", func(t *testing.T) {
		mocks := newCommandMocks()
		handler := NewCreateJobHandler(mocks.jobRepo, mocks.outboxRepo, mocks.regenerator(), mocks.uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, txKey{}, "transaction")

		mocks.uow.On("Begin", ctx).Return(txCtx, nil)
		mocks.uow.On("Rollback", txCtx).Return(nil)

		cmd := CreateJobCommand{
			Name:         "Turbine frame",
			DeadlineDate: june(10, 0, 0),
			DeadlineTime: 25 * time.Hour,
		}

		result, err := handler.Handle(ctx, cmd)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrDeadlineTimeInvalid)

		mocks.assertExpectations(t)
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		mocks := newCommandMocks()
		handler := NewCreateJobHandler(mocks.jobRepo, mocks.outboxRepo, mocks.regenerator(), mocks.uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, txKey{}, "transaction")

		mocks.uow.On("Begin", ctx).Return(txCtx, nil)
		mocks.uow.On("Rollback", txCtx).Return(nil)
		mocks.jobRepo.On("Create", txCtx, mock.AnythingOfType("*domain.Job")).Return(errors.New("insert failed"))

		cmd := CreateJobCommand{
			Name:         "Turbine frame",
			DeadlineDate: june(10, 0, 0),
			DeadlineTime: 9 * time.Hour,
		}

		result, err := handler.Handle(ctx, cmd)

		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "insert failed")

		mocks.assertExpectations(t)
	})
}
