package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/taktline/taktline/internal/planning/domain"
)

// SQLiteRegenerationLogRepository implements domain.RegenerationLogRepository
// using SQLite. The ID arrays are stored as JSON text.
type SQLiteRegenerationLogRepository struct {
	db *sql.DB
}

// NewSQLiteRegenerationLogRepository creates a new SQLite regeneration log repository.
func NewSQLiteRegenerationLogRepository(db *sql.DB) *SQLiteRegenerationLogRepository {
	return &SQLiteRegenerationLogRepository{db: db}
}

// Record writes a finished regeneration record.
func (r *SQLiteRegenerationLogRepository) Record(ctx context.Context, record *domain.RegenerationRecord) error {
	query := `
		INSERT INTO regeneration_log (
			id, triggered_by, started_at, finished_at, jobs_planned,
			entries_written, unschedulable_job_ids, late_job_ids
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	unschedulable, err := marshalJobIDs(record.UnschedulableJobIDs)
	if err != nil {
		return err
	}
	late, err := marshalJobIDs(record.LateJobIDs)
	if err != nil {
		return err
	}

	_, err = sqliteExecerFromContext(ctx, r.db).ExecContext(ctx, query,
		record.ID.String(),
		record.TriggeredBy,
		record.StartedAt.UTC().Format(time.RFC3339),
		record.FinishedAt.UTC().Format(time.RFC3339),
		record.JobsPlanned,
		record.EntriesWritten,
		unschedulable,
		late,
	)
	return err
}

// List returns the most recent records, newest first.
func (r *SQLiteRegenerationLogRepository) List(ctx context.Context, limit int) ([]domain.RegenerationRecord, error) {
	query := `
		SELECT id, triggered_by, started_at, finished_at, jobs_planned,
		       entries_written, unschedulable_job_ids, late_job_ids
		FROM regeneration_log
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := sqliteExecerFromContext(ctx, r.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.RegenerationRecord, 0)
	for rows.Next() {
		var (
			record        domain.RegenerationRecord
			id            string
			startedAt     string
			finishedAt    string
			unschedulable string
			late          string
		)
		err := rows.Scan(
			&id,
			&record.TriggeredBy,
			&startedAt,
			&finishedAt,
			&record.JobsPlanned,
			&record.EntriesWritten,
			&unschedulable,
			&late,
		)
		if err != nil {
			return nil, err
		}

		record.ID, _ = uuid.Parse(id)
		record.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		record.FinishedAt, _ = time.Parse(time.RFC3339, finishedAt)
		if err := json.Unmarshal([]byte(unschedulable), &record.UnschedulableJobIDs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(late), &record.LateJobIDs); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// marshalJobIDs serializes an ID list, writing nil as an empty array.
func marshalJobIDs(ids []int64) (string, error) {
	if ids == nil {
		ids = []int64{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
