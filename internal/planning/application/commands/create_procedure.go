package commands

import (
	"context"
	"errors"

	"github.com/taktline/taktline/internal/planning/domain"
	sharedApplication "github.com/taktline/taktline/internal/shared/application"
	sharedDomain "github.com/taktline/taktline/internal/shared/domain"
	"github.com/taktline/taktline/internal/shared/infrastructure/outbox"
)

// CreateProcedureCommand contains the data needed to add a procedure to the
// production flow.
type CreateProcedureCommand struct {
	Sequence        int
	Name            string
	Description     string
	PlannedTime     int
	PlannedManpower int
	IsProd          bool
	IsStore         bool
}

// CreateProcedureResult contains the created procedure ID and the
// regeneration outcome.
type CreateProcedureResult struct {
	ProcedureID  int64
	Regeneration *RegenerateScheduleResult
}

// CreateProcedureHandler handles the CreateProcedureCommand.
type CreateProcedureHandler struct {
	procedureRepo domain.ProcedureRepository
	outboxRepo    outbox.Repository
	regenerator   *Regenerator
	uow           sharedApplication.UnitOfWork
}

// NewCreateProcedureHandler creates a new CreateProcedureHandler.
func NewCreateProcedureHandler(procedureRepo domain.ProcedureRepository, outboxRepo outbox.Repository, regenerator *Regenerator, uow sharedApplication.UnitOfWork) *CreateProcedureHandler {
	return &CreateProcedureHandler{
		procedureRepo: procedureRepo,
		outboxRepo:    outboxRepo,
		regenerator:   regenerator,
		uow:           uow,
	}
}

// Handle executes the CreateProcedureCommand. Every job passes through every
// procedure, so adding one replans the whole schedule in the same
// transaction.
func (h *CreateProcedureHandler) Handle(ctx context.Context, cmd CreateProcedureCommand) (*CreateProcedureResult, error) {
	var result *CreateProcedureResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		procedure, err := domain.NewProcedure(cmd.Sequence, cmd.Name, cmd.Description, cmd.PlannedTime, cmd.PlannedManpower, cmd.IsProd, cmd.IsStore)
		if err != nil {
			return err
		}

		if _, err := h.procedureRepo.FindBySequence(txCtx, cmd.Sequence); err == nil {
			return domain.ErrSequenceTaken
		} else if !errors.Is(err, domain.ErrProcedureNotFound) {
			return err
		}

		if err := h.procedureRepo.Create(txCtx, procedure); err != nil {
			return err
		}

		event := domain.NewProcedureCreated(procedure)
		if err := stageEvents(txCtx, h.outboxRepo, []sharedDomain.DomainEvent{&event}); err != nil {
			return err
		}

		record, err := h.regenerator.regenerate(txCtx, TriggerProcedureCreated)
		if err != nil {
			return err
		}

		result = &CreateProcedureResult{
			ProcedureID:  procedure.ID,
			Regeneration: newRegenerateScheduleResult(record),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
