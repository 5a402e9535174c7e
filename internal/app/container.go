// Package app wires configuration, storage, messaging and the planning
// handlers into a single container consumed by the CLI and the worker.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	planningApp "github.com/taktline/taktline/internal/planning/application"
	"github.com/taktline/taktline/internal/planning/application/commands"
	"github.com/taktline/taktline/internal/planning/application/queries"
	"github.com/taktline/taktline/internal/planning/application/services"
	"github.com/taktline/taktline/internal/planning/application/subscribers"
	"github.com/taktline/taktline/internal/planning/domain"
	"github.com/taktline/taktline/internal/planning/infrastructure/cache"
	"github.com/taktline/taktline/internal/planning/infrastructure/caldav"
	sharedApplication "github.com/taktline/taktline/internal/shared/application"
	"github.com/taktline/taktline/internal/shared/infrastructure/database"
	_ "github.com/taktline/taktline/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/taktline/taktline/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/taktline/taktline/internal/shared/infrastructure/eventbus"
	"github.com/taktline/taktline/internal/shared/infrastructure/migrations"
	"github.com/taktline/taktline/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/taktline/taktline/internal/shared/infrastructure/persistence"
	"github.com/taktline/taktline/pkg/config"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database connections
	DB          *pgxpool.Pool
	RedisClient *redis.Client
	DBConn      database.Connection
	DBDriver    database.Driver

	// Repositories
	JobRepo             domain.JobRepository
	ProcedureRepo       domain.ProcedureRepository
	ScheduleRepo        domain.ScheduleRepository
	RegenerationLogRepo domain.RegenerationLogRepository
	OutboxRepo          outbox.Repository

	// Shared infrastructure
	EventPublisher eventbus.Publisher
	UnitOfWork     sharedApplication.UnitOfWork

	// Planning services
	Calendar    *domain.Calendar
	Scheduler   *services.BatchScheduler
	Regenerator *commands.Regenerator

	// Command handlers
	CreateJobHandler          *commands.CreateJobHandler
	UpdateJobHandler          *commands.UpdateJobHandler
	DeleteJobHandler          *commands.DeleteJobHandler
	CreateProcedureHandler    *commands.CreateProcedureHandler
	UpdateProcedureHandler    *commands.UpdateProcedureHandler
	DeleteProcedureHandler    *commands.DeleteProcedureHandler
	RegenerateScheduleHandler *commands.RegenerateScheduleHandler

	// Query handlers
	GetScheduleBoardHandler  *queries.GetScheduleBoardHandler
	CheckScheduleHandler     *queries.CheckScheduleHandler
	ListJobsHandler          *queries.ListJobsHandler
	ListProceduresHandler    *queries.ListProceduresHandler
	ListRegenerationsHandler *queries.ListRegenerationsHandler

	// Board cache and calendar publishing
	BoardCache         queries.BoardCache
	SchedulePublisher  planningApp.SchedulePublisher
	ScheduleSubscriber *subscribers.ScheduleSubscriber

	// Event infrastructure
	InProcessEventBus *eventbus.InProcessEventBus
	OutboxProcessor   *outbox.Processor
}

// NewContainer creates and wires all dependencies for server mode
// (PostgreSQL, optionally Redis and RabbitMQ).
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	// Connect to PostgreSQL with auto-migration
	conn, err := initPostgresConnection(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	c.DB = conn.Pool()
	c.DBConn = conn
	c.DBDriver = database.DriverPostgres
	logger.Info("connected to database")

	// Connect to Redis (optional in development)
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				conn.Close()
				return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			logger.Warn("invalid Redis URL, board cache will use in-memory fallback", "error", err)
		} else {
			redisClient := redis.NewClient(opt)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				if !cfg.IsDevelopment() {
					conn.Close()
					return nil, fmt.Errorf("failed to connect to Redis: %w", err)
				}
				logger.Warn("Redis not available, board cache will use in-memory fallback", "error", err)
			} else {
				c.RedisClient = redisClient
				logger.Info("connected to Redis")
			}
		}
	}

	// Create repositories using factory
	if err := c.wireRepositories(NewRepositoryFactory(conn)); err != nil {
		conn.Close()
		return nil, err
	}
	c.UnitOfWork = sharedPersistence.NewPostgresUnitOfWork(c.DB)

	// In-process bus carries drained outbox events to subscribers in this
	// process; the broker feed exists for external consumers.
	c.InProcessEventBus = eventbus.NewInProcessEventBus(logger)

	// Create event publisher
	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		// Fall back to in-process delivery in development
		if cfg.IsDevelopment() {
			logger.Warn("RabbitMQ not available, events stay in-process")
			c.EventPublisher = c.InProcessEventBus
		} else {
			conn.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
	} else {
		c.EventPublisher = eventbus.NewCompositePublisher(publisher, c.InProcessEventBus)
	}

	// Create board cache
	if c.RedisClient != nil {
		c.BoardCache = cache.NewRedisBoardCache(c.RedisClient, cfg.BoardCacheTTL, logger)
	} else {
		c.BoardCache = cache.NewInMemoryBoardCache(cfg.BoardCacheTTL)
	}

	c.wirePlanning(cfg, logger)

	// Create outbox processor
	processorConfig := outbox.ProcessorConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxRetries:   cfg.OutboxMaxRetries,
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, logger)

	return c, nil
}

// NewLocalContainer creates a container for local mode with SQLite.
// This provides zero-config operation without requiring PostgreSQL, Redis,
// or RabbitMQ.
func NewLocalContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	// Initialize SQLite database
	conn, err := initSQLiteConnection(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
	}

	// Create repositories using factory
	if err := c.wireRepositories(NewRepositoryFactory(conn)); err != nil {
		conn.Close()
		return nil, err
	}

	// Create unit of work for SQLite
	c.UnitOfWork = sharedPersistence.NewSQLiteUnitOfWork(conn.DB())

	// Local mode has no broker; the outbox drains straight into the
	// in-process bus.
	c.InProcessEventBus = eventbus.NewInProcessEventBus(logger)
	c.EventPublisher = c.InProcessEventBus

	// Board cache lives in process memory for local mode
	c.BoardCache = cache.NewInMemoryBoardCache(cfg.BoardCacheTTL)

	c.wirePlanning(cfg, logger)

	// Create outbox processor so the CLI can drain staged events before exit
	processorConfig := outbox.ProcessorConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxRetries:   cfg.OutboxMaxRetries,
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, logger)

	// Store connection for Close
	c.DBConn = conn
	c.DBDriver = database.DriverSQLite

	dbPath := cfg.SQLitePath
	if dbPath == "" {
		dbPath = database.DefaultSQLitePath()
	}
	logger.Info("local mode container initialized",
		"database", dbPath,
		"driver", "sqlite",
	)

	return c, nil
}

// wireRepositories builds the driver-specific repositories from the factory.
func (c *Container) wireRepositories(factory *RepositoryFactory) error {
	jobRepo, err := factory.JobRepository()
	if err != nil {
		return fmt.Errorf("failed to create job repository: %w", err)
	}
	c.JobRepo = jobRepo

	procedureRepo, err := factory.ProcedureRepository()
	if err != nil {
		return fmt.Errorf("failed to create procedure repository: %w", err)
	}
	c.ProcedureRepo = procedureRepo

	scheduleRepo, err := factory.ScheduleRepository()
	if err != nil {
		return fmt.Errorf("failed to create schedule repository: %w", err)
	}
	c.ScheduleRepo = scheduleRepo

	logRepo, err := factory.RegenerationLogRepository()
	if err != nil {
		return fmt.Errorf("failed to create regeneration log repository: %w", err)
	}
	c.RegenerationLogRepo = logRepo

	outboxRepo, err := factory.OutboxRepository()
	if err != nil {
		return fmt.Errorf("failed to create outbox repository: %w", err)
	}
	c.OutboxRepo = outboxRepo

	return nil
}

// wirePlanning builds the scheduling services, handlers and the schedule
// subscriber on top of the repositories and cache the container already
// holds.
func (c *Container) wirePlanning(cfg *config.Config, logger *slog.Logger) {
	// Working calendar and the scheduling pipeline
	c.Calendar = domain.DefaultCalendar()
	finder := services.NewSlotFinder(c.Calendar)
	planner := services.NewJobPlanner(finder)
	c.Scheduler = services.NewBatchScheduler(planner, c.Calendar, logger)
	c.Regenerator = commands.NewRegenerator(
		c.JobRepo,
		c.ProcedureRepo,
		c.ScheduleRepo,
		c.RegenerationLogRepo,
		c.OutboxRepo,
		c.Scheduler,
		logger,
	)

	// Create job command handlers
	c.CreateJobHandler = commands.NewCreateJobHandler(c.JobRepo, c.OutboxRepo, c.Regenerator, c.UnitOfWork)
	c.UpdateJobHandler = commands.NewUpdateJobHandler(c.JobRepo, c.OutboxRepo, c.Regenerator, c.UnitOfWork)
	c.DeleteJobHandler = commands.NewDeleteJobHandler(c.JobRepo, c.OutboxRepo, c.Regenerator, c.UnitOfWork)

	// Create procedure command handlers
	c.CreateProcedureHandler = commands.NewCreateProcedureHandler(c.ProcedureRepo, c.OutboxRepo, c.Regenerator, c.UnitOfWork)
	c.UpdateProcedureHandler = commands.NewUpdateProcedureHandler(c.ProcedureRepo, c.OutboxRepo, c.Regenerator, c.UnitOfWork)
	c.DeleteProcedureHandler = commands.NewDeleteProcedureHandler(c.ProcedureRepo, c.OutboxRepo, c.Regenerator, c.UnitOfWork)

	// Create schedule command handlers
	c.RegenerateScheduleHandler = commands.NewRegenerateScheduleHandler(c.Regenerator, c.UnitOfWork)

	// Create query handlers
	c.GetScheduleBoardHandler = queries.NewGetScheduleBoardHandler(
		c.ScheduleRepo,
		c.JobRepo,
		c.ProcedureRepo,
		c.Calendar,
		c.BoardCache,
	)
	c.CheckScheduleHandler = queries.NewCheckScheduleHandler(
		c.ScheduleRepo,
		c.JobRepo,
		c.ProcedureRepo,
		c.Calendar,
	)
	c.ListJobsHandler = queries.NewListJobsHandler(c.JobRepo)
	c.ListProceduresHandler = queries.NewListProceduresHandler(c.ProcedureRepo)
	c.ListRegenerationsHandler = queries.NewListRegenerationsHandler(c.RegenerationLogRepo)

	// Create calendar publisher if CalDAV is configured
	if cfg.CalDAVEnabled() {
		publisher := caldav.NewPublisher(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, logger).
			WithDeleteMissing(cfg.CalDAVDeleteMissing)
		if cfg.CalDAVCalendarPath != "" {
			publisher = publisher.WithCalendarPath(cfg.CalDAVCalendarPath)
		}
		c.SchedulePublisher = publisher
		logger.Info("caldav publisher configured", "url", cfg.CalDAVURL)
	}

	// Create schedule subscriber (board cache refresh + calendar publishing)
	window := time.Duration(cfg.CalDAVWindowDays) * 24 * time.Hour
	c.ScheduleSubscriber = subscribers.NewScheduleSubscriber(
		c.GetScheduleBoardHandler,
		c.SchedulePublisher,
		window,
		logger,
	)
	c.InProcessEventBus.RegisterConsumer(c.ScheduleSubscriber)

	registry := c.InProcessEventBus.GetRegistry()
	logger.Debug("event consumers registered",
		"consumers", registry.ConsumerCount(),
		"event_types", registry.GetAllEventTypes(),
	)
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", string(c.DBDriver))
		}
	}
}

// postgresConnection is a type that implements database.Connection and exposes Pool()
type postgresConnection interface {
	database.Connection
	Pool() *pgxpool.Pool
}

// sqliteConnection is a type that implements database.Connection and exposes DB()
type sqliteConnection interface {
	database.Connection
	DB() *sql.DB
}

// initPostgresConnection initializes the PostgreSQL pool with auto-migration.
func initPostgresConnection(ctx context.Context, cfg *config.Config, logger *slog.Logger) (postgresConnection, error) {
	conn, err := database.NewConnection(ctx, database.Config{
		Driver:   database.DriverPostgres,
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DatabaseMaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Type assert to get PostgreSQL-specific connection with Pool() method
	pgConn, ok := conn.(postgresConnection)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("expected PostgreSQL connection with Pool() method, got %T", conn)
	}

	// Run auto-migrations for PostgreSQL
	if err := runPostgresMigrations(ctx, pgConn.Pool(), logger); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return pgConn, nil
}

// runPostgresMigrations applies PostgreSQL schema migrations.
func runPostgresMigrations(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	logger.Info("running PostgreSQL migrations")
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return err
	}
	logger.Info("PostgreSQL migrations completed successfully")
	return nil
}

// initSQLiteConnection initializes the SQLite database connection with auto-migration.
func initSQLiteConnection(ctx context.Context, cfg *config.Config, logger *slog.Logger) (sqliteConnection, error) {
	// Create SQLite connection
	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite connection: %w", err)
	}

	// Type assert to get SQLite-specific connection with DB() method
	sqliteConn, ok := conn.(sqliteConnection)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("expected SQLite connection with DB() method, got %T", conn)
	}

	// Run auto-migrations for SQLite
	if err := runSQLiteMigrations(ctx, sqliteConn.DB(), logger); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return sqliteConn, nil
}

// runSQLiteMigrations applies SQLite schema migrations.
func runSQLiteMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	logger.Info("running SQLite migrations")
	if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
		return err
	}
	logger.Info("SQLite migrations completed successfully")
	return nil
}
