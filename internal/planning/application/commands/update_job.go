package commands

import (
	"context"
	"time"

	"github.com/taktline/taktline/internal/planning/domain"
	sharedApplication "github.com/taktline/taktline/internal/shared/application"
	sharedDomain "github.com/taktline/taktline/internal/shared/domain"
	"github.com/taktline/taktline/internal/shared/infrastructure/outbox"
)

// UpdateJobCommand contains the data needed to update a job.
type UpdateJobCommand struct {
	JobID        int64
	Name         *string        // nil means no change
	Description  *string        // nil means no change
	DeadlineDate *time.Time     // nil means no change
	DeadlineTime *time.Duration // nil means no change
}

// UpdateJobResult contains the regeneration outcome, nil when nothing changed.
type UpdateJobResult struct {
	Regeneration *RegenerateScheduleResult
}

// UpdateJobHandler handles the UpdateJobCommand.
type UpdateJobHandler struct {
	jobRepo     domain.JobRepository
	outboxRepo  outbox.Repository
	regenerator *Regenerator
	uow         sharedApplication.UnitOfWork
}

// NewUpdateJobHandler creates a new UpdateJobHandler.
func NewUpdateJobHandler(jobRepo domain.JobRepository, outboxRepo outbox.Repository, regenerator *Regenerator, uow sharedApplication.UnitOfWork) *UpdateJobHandler {
	return &UpdateJobHandler{
		jobRepo:     jobRepo,
		outboxRepo:  outboxRepo,
		regenerator: regenerator,
		uow:         uow,
	}
}

// Handle executes the UpdateJobCommand. A deadline change moves the job's
// completion target, so the schedule is replanned in the same transaction.
func (h *UpdateJobHandler) Handle(ctx context.Context, cmd UpdateJobCommand) (*UpdateJobResult, error) {
	result := &UpdateJobResult{}

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		job, err := h.jobRepo.FindByID(txCtx, cmd.JobID)
		if err != nil {
			return err
		}

		changed := false

		if cmd.Name != nil || cmd.Description != nil {
			name := job.Name
			if cmd.Name != nil {
				name = *cmd.Name
			}
			description := job.Description
			if cmd.Description != nil {
				description = *cmd.Description
			}
			if err := job.Rename(name, description); err != nil {
				return err
			}
			changed = true
		}

		if cmd.DeadlineDate != nil || cmd.DeadlineTime != nil {
			deadlineDate := job.DeadlineDate
			if cmd.DeadlineDate != nil {
				deadlineDate = *cmd.DeadlineDate
			}
			deadlineTime := job.DeadlineTime
			if cmd.DeadlineTime != nil {
				deadlineTime = *cmd.DeadlineTime
			}
			if err := job.Reschedule(deadlineDate, deadlineTime); err != nil {
				return err
			}
			changed = true
		}

		if !changed {
			return nil
		}

		if err := h.jobRepo.Update(txCtx, job); err != nil {
			return err
		}

		event := domain.NewJobUpdated(job)
		if err := stageEvents(txCtx, h.outboxRepo, []sharedDomain.DomainEvent{&event}); err != nil {
			return err
		}

		record, err := h.regenerator.regenerate(txCtx, TriggerJobUpdated)
		if err != nil {
			return err
		}

		result.Regeneration = newRegenerateScheduleResult(record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
