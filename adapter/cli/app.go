package cli

import (
	"github.com/taktline/taktline/internal/planning/application/commands"
	"github.com/taktline/taktline/internal/planning/application/queries"
)

// App holds the CLI application dependencies.
type App struct {
	// Job Command Handlers
	CreateJobHandler *commands.CreateJobHandler
	UpdateJobHandler *commands.UpdateJobHandler
	DeleteJobHandler *commands.DeleteJobHandler

	// Procedure Command Handlers
	CreateProcedureHandler *commands.CreateProcedureHandler
	UpdateProcedureHandler *commands.UpdateProcedureHandler
	DeleteProcedureHandler *commands.DeleteProcedureHandler

	// Schedule Command Handlers
	RegenerateScheduleHandler *commands.RegenerateScheduleHandler

	// Query Handlers
	GetScheduleBoardHandler  *queries.GetScheduleBoardHandler
	CheckScheduleHandler     *queries.CheckScheduleHandler
	ListJobsHandler          *queries.ListJobsHandler
	ListProceduresHandler    *queries.ListProceduresHandler
	ListRegenerationsHandler *queries.ListRegenerationsHandler
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	createJobHandler *commands.CreateJobHandler,
	updateJobHandler *commands.UpdateJobHandler,
	deleteJobHandler *commands.DeleteJobHandler,
	createProcedureHandler *commands.CreateProcedureHandler,
	updateProcedureHandler *commands.UpdateProcedureHandler,
	deleteProcedureHandler *commands.DeleteProcedureHandler,
	regenerateScheduleHandler *commands.RegenerateScheduleHandler,
	getScheduleBoardHandler *queries.GetScheduleBoardHandler,
	checkScheduleHandler *queries.CheckScheduleHandler,
	listJobsHandler *queries.ListJobsHandler,
	listProceduresHandler *queries.ListProceduresHandler,
	listRegenerationsHandler *queries.ListRegenerationsHandler,
) *App {
	return &App{
		CreateJobHandler:          createJobHandler,
		UpdateJobHandler:          updateJobHandler,
		DeleteJobHandler:          deleteJobHandler,
		CreateProcedureHandler:    createProcedureHandler,
		UpdateProcedureHandler:    updateProcedureHandler,
		DeleteProcedureHandler:    deleteProcedureHandler,
		RegenerateScheduleHandler: regenerateScheduleHandler,
		GetScheduleBoardHandler:   getScheduleBoardHandler,
		CheckScheduleHandler:      checkScheduleHandler,
		ListJobsHandler:           listJobsHandler,
		ListProceduresHandler:     listProceduresHandler,
		ListRegenerationsHandler:  listRegenerationsHandler,
	}
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
