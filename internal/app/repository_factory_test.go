package app

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taktline/taktline/internal/planning/domain"
	"github.com/taktline/taktline/internal/shared/infrastructure/database"
	"github.com/taktline/taktline/internal/shared/infrastructure/migrations"

	_ "modernc.org/sqlite"
)

// mockSQLiteConnection implements database.Connection for testing.
type mockSQLiteConnection struct {
	db *sql.DB
}

func (m *mockSQLiteConnection) Driver() database.Driver {
	return database.DriverSQLite
}

func (m *mockSQLiteConnection) DB() *sql.DB {
	return m.db
}

func (m *mockSQLiteConnection) Close() error {
	return m.db.Close()
}

func (m *mockSQLiteConnection) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *mockSQLiteConnection) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil // Not needed for this test
}

func (m *mockSQLiteConnection) Exec(ctx context.Context, query string, args ...any) (database.Result, error) {
	return nil, nil
}

func (m *mockSQLiteConnection) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return nil
}

func (m *mockSQLiteConnection) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return nil, nil
}

// setupTestDB creates an in-memory SQLite database with schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)

	// One connection so every query sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), sqlDB))

	return sqlDB
}

func TestRepositoryFactory_JobRepository_SQLite(t *testing.T) {
	sqlDB := setupTestDB(t)
	defer sqlDB.Close()

	conn := &mockSQLiteConnection{db: sqlDB}
	factory := NewRepositoryFactory(conn)

	jobRepo, err := factory.JobRepository()
	require.NoError(t, err)
	require.NotNil(t, jobRepo)

	// The repository works against the connection the factory was given
	ctx := context.Background()
	deadline := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	job, err := domain.NewJob("Factory Test Job", "", deadline, 9*time.Hour)
	require.NoError(t, err)

	err = jobRepo.Create(ctx, job)
	require.NoError(t, err)

	found, err := jobRepo.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Factory Test Job", found.Name)
}

func TestRepositoryFactory_ProcedureRepository_SQLite(t *testing.T) {
	sqlDB := setupTestDB(t)
	defer sqlDB.Close()

	conn := &mockSQLiteConnection{db: sqlDB}
	factory := NewRepositoryFactory(conn)

	procedureRepo, err := factory.ProcedureRepository()
	require.NoError(t, err)
	require.NotNil(t, procedureRepo)

	ctx := context.Background()
	procedure, err := domain.NewProcedure(1, "Welding", "", 12, 2, true, false)
	require.NoError(t, err)

	err = procedureRepo.Create(ctx, procedure)
	require.NoError(t, err)

	procedures, err := procedureRepo.ListBySequence(ctx)
	require.NoError(t, err)
	require.Len(t, procedures, 1)
	assert.Equal(t, "Welding", procedures[0].Name)
}

func TestRepositoryFactory_OutboxRepository_SQLite(t *testing.T) {
	sqlDB := setupTestDB(t)
	defer sqlDB.Close()

	conn := &mockSQLiteConnection{db: sqlDB}
	factory := NewRepositoryFactory(conn)

	outboxRepo, err := factory.OutboxRepository()
	require.NoError(t, err)
	require.NotNil(t, outboxRepo)

	messages, err := outboxRepo.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRepositoryFactory_Driver(t *testing.T) {
	sqlDB := setupTestDB(t)
	defer sqlDB.Close()

	conn := &mockSQLiteConnection{db: sqlDB}
	factory := NewRepositoryFactory(conn)

	assert.Equal(t, database.DriverSQLite, factory.Driver())
}

func TestRepositoryFactory_Connection(t *testing.T) {
	sqlDB := setupTestDB(t)
	defer sqlDB.Close()

	conn := &mockSQLiteConnection{db: sqlDB}
	factory := NewRepositoryFactory(conn)

	assert.Equal(t, conn, factory.Connection())
}
