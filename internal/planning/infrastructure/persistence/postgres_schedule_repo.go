package persistence

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taktline/taktline/internal/planning/domain"
	sharedPersistence "github.com/taktline/taktline/internal/shared/infrastructure/persistence"
)

// PostgresScheduleRepository implements domain.ScheduleRepository using PostgreSQL.
type PostgresScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresScheduleRepository creates a new PostgreSQL schedule repository.
func NewPostgresScheduleRepository(pool *pgxpool.Pool) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{pool: pool}
}

const postgresEntryColumns = `
	SELECT id, job_id, procedure_id, start_at, end_at, planned_time, planned_manpower
	FROM schedule_entries
`

// Clear removes every schedule entry.
func (r *PostgresScheduleRepository) Clear(ctx context.Context) error {
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, `DELETE FROM schedule_entries`)
	return err
}

// Insert writes a batch of entries, assigning their generated IDs.
func (r *PostgresScheduleRepository) Insert(ctx context.Context, entries []domain.Entry) error {
	query := `
		INSERT INTO schedule_entries (job_id, procedure_id, start_at, end_at, planned_time, planned_manpower)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	execer := sharedPersistence.Executor(ctx, r.pool)
	for i := range entries {
		err := execer.QueryRow(ctx, query,
			entries[i].JobID,
			entries[i].ProcedureID,
			entries[i].Start,
			entries[i].End,
			entries[i].PlannedTime,
			entries[i].PlannedManpower,
		).Scan(&entries[i].ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListAll returns every entry ordered by start time, then ID.
func (r *PostgresScheduleRepository) ListAll(ctx context.Context) ([]domain.Entry, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, postgresEntryColumns+`ORDER BY start_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPostgresEntries(rows)
}

// ListBetween returns entries overlapping [from, to) ordered by start time, then ID.
func (r *PostgresScheduleRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Entry, error) {
	query := postgresEntryColumns + `
		WHERE start_at < $2 AND end_at > $1
		ORDER BY start_at, id
	`

	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPostgresEntries(rows)
}

// Conflicts returns the entries of one procedure that strictly overlap
// [start, end). Touching endpoints do not conflict.
func (r *PostgresScheduleRepository) Conflicts(ctx context.Context, procedureID int64, start, end time.Time) ([]domain.Entry, error) {
	query := postgresEntryColumns + `
		WHERE procedure_id = $1 AND start_at < $2 AND end_at > $3
		ORDER BY start_at, id
	`

	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, procedureID, end, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPostgresEntries(rows)
}

func scanPostgresEntries(rows pgx.Rows) ([]domain.Entry, error) {
	entries := make([]domain.Entry, 0)
	for rows.Next() {
		var entry domain.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.JobID,
			&entry.ProcedureID,
			&entry.Start,
			&entry.End,
			&entry.PlannedTime,
			&entry.PlannedManpower,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
