package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taktline/taktline/internal/planning/domain"
)

func TestListProceduresHandler_Handle(t *testing.T) {
	procedureRepo := new(mockProcedureRepo)
	handler := NewListProceduresHandler(procedureRepo)

	ctx := context.Background()
	procedureRepo.On("ListBySequence", ctx).Return([]*domain.Procedure{
		{ID: 10, Sequence: 1, Name: "Cutting", PlannedTime: 2, PlannedManpower: 3, IsProd: true},
		{ID: 20, Sequence: 2, Name: "Welding", PlannedTime: 4, PlannedManpower: 2, IsProd: true},
		{ID: 30, Sequence: 3, Name: "Storage", PlannedTime: 1, IsStore: true},
	}, nil)

	result, err := handler.Handle(ctx, ListProceduresQuery{})

	require.NoError(t, err)
	require.Len(t, result.Procedures, 3)
	assert.Equal(t, "Cutting", result.Procedures[0].Name)
	assert.True(t, result.Procedures[2].IsStore)
	assert.Equal(t, 7, result.TotalPlannedTime)
}
