package schedule

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taktline/taktline/adapter/cli"
	internalApp "github.com/taktline/taktline/internal/app"
	"github.com/taktline/taktline/internal/planning/application/commands"
	"github.com/taktline/taktline/internal/planning/application/queries"
	"github.com/taktline/taktline/pkg/config"
)

// setupLocalModeTestApp creates a test application with SQLite for integration tests.
func setupLocalModeTestApp(t *testing.T) (*cli.App, func()) {
	t.Helper()

	// Create temp directory for SQLite DB
	tmpDir, err := os.MkdirTemp("", "schedule-cli-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := &config.Config{
		AppEnv:     "test",
		SQLitePath: dbPath,
		LogLevel:   "error",
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	ctx := context.Background()
	container, err := internalApp.NewLocalContainer(ctx, cfg, logger)
	require.NoError(t, err)

	cliApp := cli.NewApp(
		container.CreateJobHandler,
		container.UpdateJobHandler,
		container.DeleteJobHandler,
		container.CreateProcedureHandler,
		container.UpdateProcedureHandler,
		container.DeleteProcedureHandler,
		container.RegenerateScheduleHandler,
		container.GetScheduleBoardHandler,
		container.CheckScheduleHandler,
		container.ListJobsHandler,
		container.ListProceduresHandler,
		container.ListRegenerationsHandler,
	)

	cleanup := func() {
		container.Close()
		os.RemoveAll(tmpDir)
	}

	return cliApp, cleanup
}

// seedPlannedJob sets up one procedure and one job so the board has entries.
func seedPlannedJob(t *testing.T, app *cli.App) {
	t.Helper()
	ctx := context.Background()

	_, err := app.CreateProcedureHandler.Handle(ctx, commands.CreateProcedureCommand{
		Sequence:        1,
		Name:            "Assembly",
		PlannedTime:     8,
		PlannedManpower: 2,
		IsProd:          true,
	})
	require.NoError(t, err)

	_, err = app.CreateJobHandler.Handle(ctx, commands.CreateJobCommand{
		Name:         "Hull 14",
		DeadlineDate: time.Date(2026, time.June, 19, 0, 0, 0, 0, time.UTC),
		DeadlineTime: 17 * time.Hour,
	})
	require.NoError(t, err)
}

func TestRegenerateCmd_WritesManualRecord(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()
	seedPlannedJob(t, app)

	regenerateCmd.SetContext(ctx)

	err := regenerateCmd.RunE(regenerateCmd, nil)
	require.NoError(t, err)

	// Newest record first; the manual rebuild follows the two mutations.
	records, err := app.ListRegenerationsHandler.Handle(ctx, queries.ListRegenerationsQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, commands.TriggerManual, records[0].TriggeredBy)
	assert.Equal(t, 1, records[0].JobsPlanned)
	assert.Positive(t, records[0].EntriesWritten)
}

func TestShowCmd_FullAndWindowedBoard(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()
	seedPlannedJob(t, app)

	// Full board
	fromDate = ""
	toDate = ""
	showCmd.SetContext(ctx)
	require.NoError(t, showCmd.RunE(showCmd, nil))

	// Windowed board
	fromDate = "2026-06-01"
	toDate = "2026-06-19"
	require.NoError(t, showCmd.RunE(showCmd, nil))

	// Bad window date
	fromDate = "June 1st"
	err := showCmd.RunE(showCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid from date format")
}

func TestCheckCmd_AuditsSchedule(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()
	seedPlannedJob(t, app)

	// A freshly regenerated schedule passes every invariant.
	result, err := app.CheckScheduleHandler.Handle(ctx, queries.CheckScheduleQuery{})
	require.NoError(t, err)
	assert.True(t, result.Clean())
	assert.Equal(t, 1, result.JobsChecked)
	assert.Empty(t, result.UnplannedJobIDs)

	checkCmd.SetContext(ctx)
	require.NoError(t, checkCmd.RunE(checkCmd, nil))
}

func TestHistoryCmd_ListsRegenerations(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()
	seedPlannedJob(t, app)

	historyLimit = 5
	historyCmd.SetContext(ctx)
	require.NoError(t, historyCmd.RunE(historyCmd, nil))
}
