package commands

import (
	"context"
	"errors"

	"github.com/taktline/taktline/internal/planning/domain"
	sharedApplication "github.com/taktline/taktline/internal/shared/application"
	sharedDomain "github.com/taktline/taktline/internal/shared/domain"
	"github.com/taktline/taktline/internal/shared/infrastructure/outbox"
)

// UpdateProcedureCommand contains the data needed to update a procedure.
type UpdateProcedureCommand struct {
	ProcedureID     int64
	Sequence        *int    // nil means no change
	Name            *string // nil means no change
	Description     *string // nil means no change
	PlannedTime     *int    // nil means no change
	PlannedManpower *int    // nil means no change
	IsProd          *bool   // nil means no change
	IsStore         *bool   // nil means no change
}

// UpdateProcedureResult contains the regeneration outcome, nil when nothing
// changed.
type UpdateProcedureResult struct {
	Regeneration *RegenerateScheduleResult
}

// UpdateProcedureHandler handles the UpdateProcedureCommand.
type UpdateProcedureHandler struct {
	procedureRepo domain.ProcedureRepository
	outboxRepo    outbox.Repository
	regenerator   *Regenerator
	uow           sharedApplication.UnitOfWork
}

// NewUpdateProcedureHandler creates a new UpdateProcedureHandler.
func NewUpdateProcedureHandler(procedureRepo domain.ProcedureRepository, outboxRepo outbox.Repository, regenerator *Regenerator, uow sharedApplication.UnitOfWork) *UpdateProcedureHandler {
	return &UpdateProcedureHandler{
		procedureRepo: procedureRepo,
		outboxRepo:    outboxRepo,
		regenerator:   regenerator,
		uow:           uow,
	}
}

// Handle executes the UpdateProcedureCommand. A planned-time or sequence
// change shifts every job's chain, so the schedule is replanned in the same
// transaction.
func (h *UpdateProcedureHandler) Handle(ctx context.Context, cmd UpdateProcedureCommand) (*UpdateProcedureResult, error) {
	result := &UpdateProcedureResult{}

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		procedure, err := h.procedureRepo.FindByID(txCtx, cmd.ProcedureID)
		if err != nil {
			return err
		}

		changed := cmd.Sequence != nil || cmd.Name != nil || cmd.Description != nil ||
			cmd.PlannedTime != nil || cmd.PlannedManpower != nil ||
			cmd.IsProd != nil || cmd.IsStore != nil
		if !changed {
			return nil
		}

		sequence := procedure.Sequence
		if cmd.Sequence != nil {
			sequence = *cmd.Sequence
		}
		name := procedure.Name
		if cmd.Name != nil {
			name = *cmd.Name
		}
		description := procedure.Description
		if cmd.Description != nil {
			description = *cmd.Description
		}
		plannedTime := procedure.PlannedTime
		if cmd.PlannedTime != nil {
			plannedTime = *cmd.PlannedTime
		}
		plannedManpower := procedure.PlannedManpower
		if cmd.PlannedManpower != nil {
			plannedManpower = *cmd.PlannedManpower
		}
		isProd := procedure.IsProd
		if cmd.IsProd != nil {
			isProd = *cmd.IsProd
		}
		isStore := procedure.IsStore
		if cmd.IsStore != nil {
			isStore = *cmd.IsStore
		}

		if sequence != procedure.Sequence {
			if other, err := h.procedureRepo.FindBySequence(txCtx, sequence); err == nil {
				if other.ID != procedure.ID {
					return domain.ErrSequenceTaken
				}
			} else if !errors.Is(err, domain.ErrProcedureNotFound) {
				return err
			}
		}

		if err := procedure.Update(sequence, name, description, plannedTime, plannedManpower, isProd, isStore); err != nil {
			return err
		}

		if err := h.procedureRepo.Update(txCtx, procedure); err != nil {
			return err
		}

		event := domain.NewProcedureUpdated(procedure)
		if err := stageEvents(txCtx, h.outboxRepo, []sharedDomain.DomainEvent{&event}); err != nil {
			return err
		}

		record, err := h.regenerator.regenerate(txCtx, TriggerProcedureUpdated)
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
