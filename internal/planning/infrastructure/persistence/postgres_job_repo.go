// Package persistence provides PostgreSQL and SQLite implementations of the
// planning repositories.
package persistence

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taktline/taktline/internal/planning/domain"
	"github.com/taktline/taktline/internal/shared/infrastructure/database"
	sharedPersistence "github.com/taktline/taktline/internal/shared/infrastructure/persistence"
)

// PostgresJobRepository implements domain.JobRepository using PostgreSQL.
type PostgresJobRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresJobRepository creates a new PostgreSQL job repository.
func NewPostgresJobRepository(pool *pgxpool.Pool) *PostgresJobRepository {
	return &PostgresJobRepository{pool: pool}
}

const postgresJobColumns = `
	SELECT id, name, description, deadline_date, deadline_time, created_at, updated_at
	FROM jobs
`

// Create inserts a new job and assigns its generated ID.
func (r *PostgresJobRepository) Create(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (name, description, deadline_date, deadline_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	execer := sharedPersistence.Executor(ctx, r.pool)
	return execer.QueryRow(ctx, query,
		job.Name,
		job.Description,
		job.DeadlineDate,
		timeOfDay(job.DeadlineTime),
		job.CreatedAt,
		job.UpdatedAt,
	).Scan(&job.ID)
}

// Update persists changes to an existing job.
func (r *PostgresJobRepository) Update(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE jobs
		SET name = $2, description = $3, deadline_date = $4, deadline_time = $5, updated_at = $6
		WHERE id = $1
	`

	execer := sharedPersistence.Executor(ctx, r.pool)
	result, err := execer.Exec(ctx, query,
		job.ID,
		job.Name,
		job.Description,
		job.DeadlineDate,
		timeOfDay(job.DeadlineTime),
		job.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// Delete removes a job. Its schedule entries are removed via CASCADE.
func (r *PostgresJobRepository) Delete(ctx context.Context, id int64) error {
	execer := sharedPersistence.Executor(ctx, r.pool)
	result, err := execer.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// FindByID retrieves a job by its ID.
func (r *PostgresJobRepository) FindByID(ctx context.Context, id int64) (*domain.Job, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	row := execer.QueryRow(ctx, postgresJobColumns+`WHERE id = $1`, id)

	job, err := scanPostgresJob(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// ListByDeadline returns all jobs in planning priority order.
func (r *PostgresJobRepository) ListByDeadline(ctx context.Context) ([]*domain.Job, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, postgresJobColumns+`ORDER BY deadline_date, deadline_time, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]*domain.Job, 0)
	for rows.Next() {
		job, err := scanPostgresJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

func scanPostgresJob(row pgx.Row) (*domain.Job, error) {
	var (
		job          domain.Job
		deadlineTime pgtype.Time
	)
	err := row.Scan(
		&job.ID,
		&job.Name,
		&job.Description,
		&job.DeadlineDate,
		&deadlineTime,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	job.DeadlineTime = time.Duration(deadlineTime.Microseconds) * time.Microsecond
	return &job, nil
}

// timeOfDay converts a day offset into the TIME column representation.
func timeOfDay(d time.Duration) pgtype.Time {
	return pgtype.Time{Microseconds: d.Microseconds(), Valid: true}
}
