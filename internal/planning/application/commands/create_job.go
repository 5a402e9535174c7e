package commands

import (
	"context"
	"time"

	"github.com/taktline/taktline/internal/planning/domain"
	sharedApplication "github.com/taktline/taktline/internal/shared/application"
	sharedDomain "github.com/taktline/taktline/internal/shared/domain"
	"github.com/taktline/taktline/internal/shared/infrastructure/outbox"
)

// CreateJobCommand contains the data needed to register a job.
type CreateJobCommand struct {
	Name         string
	Description  string
	DeadlineDate time.Time
	DeadlineTime time.Duration
}

// CreateJobResult contains the created job ID and the regeneration outcome.
type CreateJobResult struct {
	JobID        int64
	Regeneration *RegenerateScheduleResult
}

// CreateJobHandler handles the CreateJobCommand.
type CreateJobHandler struct {
	jobRepo     domain.JobRepository
	outboxRepo  outbox.Repository
	regenerator *Regenerator
	uow         sharedApplication.UnitOfWork
}

// NewCreateJobHandler creates a new CreateJobHandler.
func NewCreateJobHandler(jobRepo domain.JobRepository, outboxRepo outbox.Repository, regenerator *Regenerator, uow sharedApplication.UnitOfWork) *CreateJobHandler {
	return &CreateJobHandler{
		jobRepo:     jobRepo,
		outboxRepo:  outboxRepo,
		regenerator: regenerator,
		uow:         uow,
	}
}

// Handle executes the CreateJobCommand. The new job is persisted and the
// whole schedule is replanned in the same transaction.
func (h *CreateJobHandler) Handle(ctx context.Context, cmd CreateJobCommand) (*CreateJobResult, error) {
	var result *CreateJobResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		job, err := domain.NewJob(cmd.Name, cmd.Description, cmd.DeadlineDate, cmd.DeadlineTime)
		if err != nil {
			return err
		}

		if err := h.jobRepo.Create(txCtx, job); err != nil {
			return err
		}

		event := domain.NewJobCreated(job)
		if err := stageEvents(txCtx, h.outboxRepo, []sharedDomain.DomainEvent{&event}); err != nil {
			return err
		}

		record, err := h.regenerator.regenerate(txCtx, TriggerJobCreated)
		if err != nil {
			return err
		}

		result = &CreateJobResult{
			JobID:        job.ID,
			Regeneration: newRegenerateScheduleResult(record),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
