package job

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/spf13/cobra"
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
	tmpDir, err := os.MkdirTemp("", "job-cli-test-*")
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

// seedProcedure gives the flow one procedure so jobs have something to plan.
func seedProcedure(t *testing.T, app *cli.App) {
	t.Helper()

	_, err := app.CreateProcedureHandler.Handle(context.Background(), commands.CreateProcedureCommand{
		Sequence:        1,
		Name:            "Welding",
		PlannedTime:     12,
		PlannedManpower: 2,
		IsProd:          true,
	})
	require.NoError(t, err)
}

func TestCreateCmd_CreatesJob(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()
	seedProcedure(t, app)

	// Reset flags
	description = "first boat of the series"
	deadlineDate = "2026-06-14"
	deadlineTime = "17:00"

	createCmd.SetContext(ctx)

	err := createCmd.RunE(createCmd, []string{"Hull 14"})
	require.NoError(t, err)

	// Verify the job was created and planned
	jobs, err := app.ListJobsHandler.Handle(ctx, queries.ListJobsQuery{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	assert.Equal(t, "Hull 14", jobs[0].Name)
	assert.Equal(t, "first boat of the series", jobs[0].Description)
	assert.Equal(t, "2026-06-14 17:00", jobs[0].DeadlineAt.Format("2006-01-02 15:04"))

	board, err := app.GetScheduleBoardHandler.Handle(ctx, queries.GetScheduleBoardQuery{})
	require.NoError(t, err)
	require.Len(t, board.Jobs, 1)
	assert.NotEmpty(t, board.Jobs[0].Entries)
}

func TestCreateCmd_RejectsBadDeadline(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	description = ""
	deadlineDate = "14.06.2026"
	deadlineTime = "17:00"

	createCmd.SetContext(context.Background())

	err := createCmd.RunE(createCmd, []string{"Hull 14"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid deadline date format")
}

func TestUpdateCmd_MovesDeadline(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()
	seedProcedure(t, app)

	created, err := app.CreateJobHandler.Handle(ctx, commands.CreateJobCommand{
		Name:         "Hull 15",
		DeadlineDate: mustParseDate(t, "2026-06-20"),
		DeadlineTime: 9 * time.Hour,
	})
	require.NoError(t, err)

	updateCmd.SetContext(ctx)
	require.NoError(t, updateCmd.Flags().Set("deadline", "2026-06-28"))

	err = updateCmd.RunE(updateCmd, []string{formatID(created.JobID)})
	require.NoError(t, err)

	jobs, err := app.ListJobsHandler.Handle(ctx, queries.ListJobsQuery{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "2026-06-28", jobs[0].DeadlineDate.Format("2006-01-02"))
}

func TestUpdateCmd_RequiresFlags(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	cmd := newBareUpdateCmd()
	cmd.SetContext(context.Background())

	err := cmd.RunE(cmd, []string{"1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no updates provided")
}

func TestDeleteCmd_RemovesJob(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()
	seedProcedure(t, app)

	created, err := app.CreateJobHandler.Handle(ctx, commands.CreateJobCommand{
		Name:         "Hull 16",
		DeadlineDate: mustParseDate(t, "2026-07-01"),
	})
	require.NoError(t, err)

	deleteCmd.SetContext(ctx)

	err = deleteCmd.RunE(deleteCmd, []string{formatID(created.JobID)})
	require.NoError(t, err)

	jobs, err := app.ListJobsHandler.Handle(ctx, queries.ListJobsQuery{})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

// newBareUpdateCmd builds an update command with fresh flags. Flag change
// state sticks to the package-level command across tests.
func newBareUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{RunE: updateCmd.RunE}
	cmd.Flags().String("name", "", "")
	cmd.Flags().String("description", "", "")
	cmd.Flags().String("deadline", "", "")
	cmd.Flags().String("time", "", "")
	return cmd
}

func mustParseDate(t *testing.T, s string) time.Time {
	t.Helper()
	date, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return date
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
