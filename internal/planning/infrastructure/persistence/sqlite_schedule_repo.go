package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/taktline/taktline/internal/planning/domain"
)

// SQLiteScheduleRepository implements domain.ScheduleRepository using SQLite.
type SQLiteScheduleRepository struct {
	db *sql.DB
}

// NewSQLiteScheduleRepository creates a new SQLite schedule repository.
func NewSQLiteScheduleRepository(db *sql.DB) *SQLiteScheduleRepository {
	return &SQLiteScheduleRepository{db: db}
}

const sqliteEntryColumns = `
	SELECT id, job_id, procedure_id, start_at, end_at, planned_time, planned_manpower
	FROM schedule_entries
`

// Clear removes every schedule entry.
func (r *SQLiteScheduleRepository) Clear(ctx context.Context) error {
	_, err := sqliteExecerFromContext(ctx, r.db).ExecContext(ctx, `DELETE FROM schedule_entries`)
	return err
}

// Insert writes a batch of entries, assigning their generated IDs.
func (r *SQLiteScheduleRepository) Insert(ctx context.Context, entries []domain.Entry) error {
	query := `
		INSERT INTO schedule_entries (job_id, procedure_id, start_at, end_at, planned_time, planned_manpower)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	execer := sqliteExecerFromContext(ctx, r.db)
	for i := range entries {
		result, err := execer.ExecContext(ctx, query,
			entries[i].JobID,
			entries[i].ProcedureID,
			entries[i].Start.UTC().Format(time.RFC3339),
			entries[i].End.UTC().Format(time.RFC3339),
			entries[i].PlannedTime,
			entries[i].PlannedManpower,
		)
		if err != nil {
			return err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		entries[i].ID = id
	}
	return nil
}

// ListAll returns every entry ordered by start time, then ID.
func (r *SQLiteScheduleRepository) ListAll(ctx context.Context) ([]domain.Entry, error) {
	query := sqliteEntryColumns + `ORDER BY start_at, id`

	rows, err := sqliteExecerFromContext(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLiteEntries(rows)
}

// ListBetween returns entries overlapping [from, to) ordered by start time, then ID.
func (r *SQLiteScheduleRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Entry, error) {
	query := sqliteEntryColumns + `
		WHERE start_at < ? AND end_at > ?
		ORDER BY start_at, id
	`

	rows, err := sqliteExecerFromContext(ctx, r.db).QueryContext(ctx, query,
		to.UTC().Format(time.RFC3339),
		from.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLiteEntries(rows)
}

// Conflicts returns the entries of one procedure that strictly overlap
// [start, end). Touching endpoints do not conflict. RFC3339 UTC text sorts
// lexicographically in chronological order, so the comparison runs on the
// raw column.
func (r *SQLiteScheduleRepository) Conflicts(ctx context.Context, procedureID int64, start, end time.Time) ([]domain.Entry, error) {
	query := sqliteEntryColumns + `
		WHERE procedure_id = ? AND start_at < ? AND end_at > ?
		ORDER BY start_at, id
	`

	rows, err := sqliteExecerFromContext(ctx, r.db).QueryContext(
		ctx,
		query,
		procedureID,
		end.UTC().Format(time.RFC3339),
		start.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLiteEntries(rows)
}

func scanSQLiteEntries(rows *sql.Rows) ([]domain.Entry, error) {
	entries := make([]domain.Entry, 0)
	for rows.Next() {
		var (
			entry   domain.Entry
			startAt string
			endAt   string
		)
		err := rows.Scan(
			&entry.ID,
			&entry.JobID,
			&entry.ProcedureID,
			&startAt,
			&endAt,
			&entry.PlannedTime,
			&entry.PlannedManpower,
		)
		if err != nil {
			return nil, err
		}

		entry.Start, err = time.Parse(time.RFC3339, startAt)
		if err != nil {
			return nil, err
		}
		entry.End, err = time.Parse(time.RFC3339, endAt)
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
