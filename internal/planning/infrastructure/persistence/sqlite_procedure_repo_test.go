package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taktline/taktline/internal/planning/domain"
)

func TestSQLiteProcedureRepository_CreateAndFind(t *testing.T) {
	db := setupPlanningDB(t)
	repo := NewSQLiteProcedureRepository(db)
	ctx := context.Background()

	procedure, err := domain.NewProcedure(3, "Welding", "hull seams", 6, 4, true, false)
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, procedure))
	assert.NotZero(t, procedure.ID)

	byID, err := repo.FindByID(ctx, procedure.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, byID.Sequence)
	assert.Equal(t, "Welding", byID.Name)
	assert.Equal(t, "hull seams", byID.Description)
	assert.Equal(t, 6, byID.PlannedTime)
	assert.Equal(t, 4, byID.PlannedManpower)
	assert.True(t, byID.IsProd)
	assert.False(t, byID.IsStore)

	bySequence, err := repo.FindBySequence(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, procedure.ID, bySequence.ID)
}

func TestSQLiteProcedureRepository_FindBySequence_NotFound(t *testing.T) {
	db := setupPlanningDB(t)
	repo := NewSQLiteProcedureRepository(db)

	_, err := repo.FindBySequence(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrProcedureNotFound)
}

func TestSQLiteProcedureRepository_Update(t *testing.T) {
	db := setupPlanningDB(t)
	repo := NewSQLiteProcedureRepository(db)
	ctx := context.Background()

	procedure, err := domain.NewProcedure(1, "Cutting", "", 2, 3, true, false)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, procedure))

	require.NoError(t, procedure.Update(2, "Paint", "two coats", 8, 2, false, true))
	require.NoError(t, repo.Update(ctx, procedure))

	retrieved, err := repo.FindByID(ctx, procedure.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, retrieved.Sequence)
	assert.Equal(t, "Paint", retrieved.Name)
	assert.Equal(t, 8, retrieved.PlannedTime)
	assert.False(t, retrieved.IsProd)
	assert.True(t, retrieved.IsStore)
}

func TestSQLiteProcedureRepository_Delete(t *testing.T) {
	db := setupPlanningDB(t)
	repo := NewSQLiteProcedureRepository(db)
	ctx := context.Background()

	procedure, err := domain.NewProcedure(1, "Cutting", "", 2, 3, true, false)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, procedure))

	require.NoError(t, repo.Delete(ctx, procedure.ID))

	_, err = repo.FindByID(ctx, procedure.ID)
	assert.ErrorIs(t, err, domain.ErrProcedureNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, procedure.ID), domain.ErrProcedureNotFound)
}

func TestSQLiteProcedureRepository_ListBySequence(t *testing.T) {
	db := setupPlanningDB(t)
	repo := NewSQLiteProcedureRepository(db)
	ctx := context.Background()

	for _, p := range []struct {
		sequence int
		name     string
	}{
		{sequence: 30, name: "Rigging"},
		{sequence: 10, name: "Cutting"},
		{sequence: 20, name: "Welding"},
	} {
		procedure, err := domain.NewProcedure(p.sequence, p.name, "", 2, 2, true, false)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, procedure))
	}

	procedures, err := repo.ListBySequence(ctx)
	require.NoError(t, err)
	require.Len(t, procedures, 3)
	assert.Equal(t, "Cutting", procedures[0].Name)
	assert.Equal(t, "Welding", procedures[1].Name)
	assert.Equal(t, "Rigging", procedures[2].Name)
}
