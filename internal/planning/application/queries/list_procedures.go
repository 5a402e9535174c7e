package queries

import (
	"context"
	"time"

	"github.com/taktline/taktline/internal/planning/domain"
)

// ProcedureDTO is a data transfer object for procedures.
type ProcedureDTO struct {
	ID              int64
	Sequence        int
	Name            string
	Description     string
	PlannedTime     int
	PlannedManpower int
	IsProd          bool
	IsStore         bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ListProceduresQuery contains the parameters for listing procedures.
type ListProceduresQuery struct{}

// ListProceduresResult carries the flow in sequence order plus the total
// planned hours a single job needs end to end.
type ListProceduresResult struct {
	Procedures       []ProcedureDTO
	TotalPlannedTime int
}

// ListProceduresHandler handles the ListProceduresQuery.
type ListProceduresHandler struct {
	procedureRepo domain.ProcedureRepository
}

// NewListProceduresHandler creates a new ListProceduresHandler.
func NewListProceduresHandler(procedureRepo domain.ProcedureRepository) *ListProceduresHandler {
	return &ListProceduresHandler{procedureRepo: procedureRepo}
}

// Handle executes the ListProceduresQuery.
func (h *ListProceduresHandler) Handle(ctx context.Context, query ListProceduresQuery) (*ListProceduresResult, error) {
	procedures, err := h.procedureRepo.ListBySequence(ctx)
	if err != nil {
		return nil, err
	}

	result := &ListProceduresResult{
		Procedures: make([]ProcedureDTO, 0, len(procedures)),
	}
	for _, procedure := range procedures {
		result.Procedures = append(result.Procedures, ProcedureDTO{
			ID:              procedure.ID,
			Sequence:        procedure.Sequence,
			Name:            procedure.Name,
			Description:     procedure.Description,
			PlannedTime:     procedure.PlannedTime,
			PlannedManpower: procedure.PlannedManpower,
			IsProd:          procedure.IsProd,
			IsStore:         procedure.IsStore,
			CreatedAt:       procedure.CreatedAt,
			UpdatedAt:       procedure.UpdatedAt,
		})
		result.TotalPlannedTime += procedure.PlannedTime
	}
	return result, nil
}
