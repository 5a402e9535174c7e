package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/taktline/taktline/adapter/cli"
	"github.com/taktline/taktline/adapter/cli/job"
	"github.com/taktline/taktline/adapter/cli/procedure"
	"github.com/taktline/taktline/adapter/cli/schedule"
	"github.com/taktline/taktline/internal/app"
	"github.com/taktline/taktline/pkg/config"
	"github.com/taktline/taktline/pkg/observability"
)

func main() {
	// Setup logger
	logCfg := observability.DefaultLogConfig()
	logCfg.ServiceVersion = cli.Version
	logger := observability.NewLogger(logCfg)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// In development without .env, use defaults
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}

	// Update logger level based on config
	if cfg.LogLevel != "" {
		logCfg.Level = observability.LogLevel(cfg.LogLevel)
	} else if cfg.IsDevelopment() {
		logCfg.Level = observability.LogLevelDebug
	}
	logger = observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	// Without a database URL the CLI runs against local SQLite storage.
	var cliApp *cli.App
	var container *app.Container
	if cfg.DatabaseURL == "" {
		container, err = app.NewLocalContainer(ctx, cfg, logger)
	} else {
		container, err = app.NewContainer(ctx, cfg, logger)
	}
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
			container = nil
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()

		// Create CLI app with handlers
		cliApp = cli.NewApp(
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
	}

	// Set the CLI app
	cli.SetApp(cliApp)

	// Register commands
	cli.AddCommand(job.Cmd)
	cli.AddCommand(procedure.Cmd)
	cli.AddCommand(schedule.Cmd)

	// Execute CLI
	cli.Execute()

	// Drain events staged by this invocation. The worker owns continuous
	// draining; a short-lived CLI process flushes once on the way out so
	// the board cache and calendar stay current without it.
	if container != nil {
		if err := container.OutboxProcessor.ProcessOnce(ctx); err != nil {
			logger.Warn("failed to drain outbox", "error", err)
		}
	}
}
