package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/taktline/taktline/internal/planning/domain"
	"github.com/taktline/taktline/internal/shared/infrastructure/database"
	sharedPersistence "github.com/taktline/taktline/internal/shared/infrastructure/persistence"
)

// dateLayout stores deadline dates as plain calendar days. The format sorts
// lexicographically in chronological order, as does RFC3339 for instants.
const dateLayout = "2006-01-02"

type sqliteExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqliteExecerFromContext returns the transaction from context when present,
// otherwise the connection.
func sqliteExecerFromContext(ctx context.Context, db *sql.DB) sqliteExecer {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return db
}

type rowScanner interface {
	Scan(dest ...any) error
}

// SQLiteJobRepository implements domain.JobRepository using SQLite.
type SQLiteJobRepository struct {
	db *sql.DB
}

// NewSQLiteJobRepository creates a new SQLite job repository.
func NewSQLiteJobRepository(db *sql.DB) *SQLiteJobRepository {
	return &SQLiteJobRepository{db: db}
}

const sqliteJobColumns = `
	SELECT id, name, description, deadline_date, deadline_minutes, created_at, updated_at
	FROM jobs
`

// Create inserts a new job and assigns its generated ID.
func (r *SQLiteJobRepository) Create(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (name, description, deadline_date, deadline_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := sqliteExecerFromContext(ctx, r.db).ExecContext(ctx, query,
		job.Name,
		job.Description,
		job.DeadlineDate.Format(dateLayout),
		int64(job.DeadlineTime/time.Minute),
		job.CreatedAt.UTC().Format(time.RFC3339),
		job.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	job.ID = id
	return nil
}

// Update persists changes to an existing job.
func (r *SQLiteJobRepository) Update(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE jobs
		SET name = ?, description = ?, deadline_date = ?, deadline_minutes = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := sqliteExecerFromContext(ctx, r.db).ExecContext(ctx, query,
		job.Name,
		job.Description,
		job.DeadlineDate.Format(dateLayout),
		int64(job.DeadlineTime/time.Minute),
		job.UpdatedAt.UTC().Format(time.RFC3339),
		job.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// Delete removes a job. Its schedule entries are removed via CASCADE.
func (r *SQLiteJobRepository) Delete(ctx context.Context, id int64) error {
	result, err := sqliteExecerFromContext(ctx, r.db).ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// FindByID retrieves a job by its ID.
func (r *SQLiteJobRepository) FindByID(ctx context.Context, id int64) (*domain.Job, error) {
	row := sqliteExecerFromContext(ctx, r.db).QueryRowContext(ctx, sqliteJobColumns+`WHERE id = ?`, id)

	job, err := scanSQLiteJob(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// ListByDeadline returns all jobs in planning priority order.
func (r *SQLiteJobRepository) ListByDeadline(ctx context.Context) ([]*domain.Job, error) {
	query := sqliteJobColumns + `ORDER BY deadline_date, deadline_minutes, id`

	rows, err := sqliteExecerFromContext(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]*domain.Job, 0)
	for rows.Next() {
		job, err := scanSQLiteJob(rows)
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

func scanSQLiteJob(row rowScanner) (*domain.Job, error) {
	var (
		job             domain.Job
		deadlineDate    string
		deadlineMinutes int64
		createdAt       string
		updatedAt       string
	)
	err := row.Scan(
		&job.ID,
		&job.Name,
		&job.Description,
		&deadlineDate,
		&deadlineMinutes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse(dateLayout, deadlineDate)
	if err != nil {
		return nil, err
	}
	job.DeadlineDate = date
	job.DeadlineTime = time.Duration(deadlineMinutes) * time.Minute
	job.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	job.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &job, nil
}
