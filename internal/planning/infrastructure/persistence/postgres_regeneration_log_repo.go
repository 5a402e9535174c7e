package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/taktline/taktline/internal/planning/domain"
	sharedPersistence "github.com/taktline/taktline/internal/shared/infrastructure/persistence"
)

// PostgresRegenerationLogRepository implements domain.RegenerationLogRepository
// using PostgreSQL.
type PostgresRegenerationLogRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRegenerationLogRepository creates a new PostgreSQL regeneration log repository.
func NewPostgresRegenerationLogRepository(pool *pgxpool.Pool) *PostgresRegenerationLogRepository {
	return &PostgresRegenerationLogRepository{pool: pool}
}

// Record writes a finished regeneration record.
func (r *PostgresRegenerationLogRepository) Record(ctx context.Context, record *domain.RegenerationRecord) error {
	query := `
		INSERT INTO regeneration_log (
			id, triggered_by, started_at, finished_at, jobs_planned,
			entries_written, unschedulable_job_ids, late_job_ids
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		record.ID,
		record.TriggeredBy,
		record.StartedAt,
		record.FinishedAt,
		record.JobsPlanned,
		record.EntriesWritten,
		pq.Array(nonNilIDs(record.UnschedulableJobIDs)),
		pq.Array(nonNilIDs(record.LateJobIDs)),
	)
	return err
}

// nonNilIDs keeps the NOT NULL array columns satisfied when a run has no
// unschedulable or late jobs.
func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

// List returns the most recent records, newest first.
func (r *PostgresRegenerationLogRepository) List(ctx context.Context, limit int) ([]domain.RegenerationRecord, error) {
	query := `
		SELECT id, triggered_by, started_at, finished_at, jobs_planned,
		       entries_written, unschedulable_job_ids, late_job_ids
		FROM regeneration_log
		ORDER BY started_at DESC
		LIMIT $1
	`

	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.RegenerationRecord, 0)
	for rows.Next() {
		var record domain.RegenerationRecord
		err := rows.Scan(
			&record.ID,
			&record.TriggeredBy,
			&record.StartedAt,
			&record.FinishedAt,
			&record.JobsPlanned,
			&record.EntriesWritten,
			pq.Array(&record.UnschedulableJobIDs),
			pq.Array(&record.LateJobIDs),
		)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
