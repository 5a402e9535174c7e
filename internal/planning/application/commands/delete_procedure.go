package commands

import (
	"context"

	"github.com/taktline/taktline/internal/planning/domain"
	sharedApplication "github.com/taktline/taktline/internal/shared/application"
	sharedDomain "github.com/taktline/taktline/internal/shared/domain"
	"github.com/taktline/taktline/internal/shared/infrastructure/outbox"
)

// DeleteProcedureCommand contains the data needed to remove a procedure
// from the production flow.
type DeleteProcedureCommand struct {
	ProcedureID int64
}

// DeleteProcedureResult contains the regeneration outcome.
type DeleteProcedureResult struct {
	Regeneration *RegenerateScheduleResult
}

// DeleteProcedureHandler handles the DeleteProcedureCommand.
type DeleteProcedureHandler struct {
	procedureRepo domain.ProcedureRepository
	outboxRepo    outbox.Repository
	regenerator   *Regenerator
	uow           sharedApplication.UnitOfWork
}

// NewDeleteProcedureHandler creates a new DeleteProcedureHandler.
func NewDeleteProcedureHandler(procedureRepo domain.ProcedureRepository, outboxRepo outbox.Repository, regenerator *Regenerator, uow sharedApplication.UnitOfWork) *DeleteProcedureHandler {
	return &DeleteProcedureHandler{
		procedureRepo: procedureRepo,
		outboxRepo:    outboxRepo,
		regenerator:   regenerator,
		uow:           uow,
	}
}

// Handle executes the DeleteProcedureCommand and replans the schedule in the
// same transaction.
func (h *DeleteProcedureHandler) Handle(ctx context.Context, cmd DeleteProcedureCommand) (*DeleteProcedureResult, error) {
	var result *DeleteProcedureResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		procedure, err := h.procedureRepo.FindByID(txCtx, cmd.ProcedureID)
		if err != nil {
			return err
		}

		if err := h.procedureRepo.Delete(txCtx, procedure.ID); err != nil {
			return err
		}

		event := domain.NewProcedureDeleted(procedure.ID, procedure.Sequence)
		if err := stageEvents(txCtx, h.outboxRepo, []sharedDomain.DomainEvent{&event}); err != nil {
			return err
		}

		record, err := h.regenerator.regenerate(txCtx, TriggerProcedureDeleted)
		if err != nil {
			return err
		}

		result = &DeleteProcedureResult{Regeneration: newRegenerateScheduleResult(record)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
