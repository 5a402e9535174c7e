package commands

import (
	"context"

	"github.com/taktline/taktline/internal/planning/domain"
	sharedApplication "github.com/taktline/taktline/internal/shared/application"
	sharedDomain "github.com/taktline/taktline/internal/shared/domain"
	"github.com/taktline/taktline/internal/shared/infrastructure/outbox"
)

// DeleteJobCommand contains the data needed to delete a job.
type DeleteJobCommand struct {
	JobID int64
}

// DeleteJobResult contains the regeneration outcome.
type DeleteJobResult struct {
	Regeneration *RegenerateScheduleResult
}

// DeleteJobHandler handles the DeleteJobCommand.
type DeleteJobHandler struct {
	jobRepo     domain.JobRepository
	outboxRepo  outbox.Repository
	regenerator *Regenerator
	uow         sharedApplication.UnitOfWork
}

// NewDeleteJobHandler creates a new DeleteJobHandler.
func NewDeleteJobHandler(jobRepo domain.JobRepository, outboxRepo outbox.Repository, regenerator *Regenerator, uow sharedApplication.UnitOfWork) *DeleteJobHandler {
	return &DeleteJobHandler{
		jobRepo:     jobRepo,
		outboxRepo:  outboxRepo,
		regenerator: regenerator,
		uow:         uow,
	}
}

// Handle executes the DeleteJobCommand. Removing a job frees its slots, so
// the schedule is replanned in the same transaction.
func (h *DeleteJobHandler) Handle(ctx context.Context, cmd DeleteJobCommand) (*DeleteJobResult, error) {
	var result *DeleteJobResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		job, err := h.jobRepo.FindByID(txCtx, cmd.JobID)
		if err != nil {
			return err
		}

		if err := h.jobRepo.Delete(txCtx, job.ID); err != nil {
			return err
		}

		event := domain.NewJobDeleted(job.ID)
		if err := stageEvents(txCtx, h.outboxRepo, []sharedDomain.DomainEvent{&event}); err != nil {
			return err
		}

		record, err := h.regenerator.regenerate(txCtx, TriggerJobDeleted)
		if err != nil {
			return err
		}

		result = &DeleteJobResult{Regeneration: newRegenerateScheduleResult(record)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
