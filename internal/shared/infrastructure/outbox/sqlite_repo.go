package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	sharedPersistence "github.com/taktline/taktline/internal/shared/infrastructure/persistence"
)

const sqliteInsertMessage = `
	INSERT INTO outbox (
		event_id, aggregate_type, aggregate_id, event_type, routing_key,
		payload, metadata, created_at, next_retry_at, dead_lettered_at, dead_letter_reason
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const sqliteSelectColumns = `
	SELECT id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
	       payload, metadata, created_at, published_at, next_retry_at, retry_count,
	       last_error, dead_lettered_at, dead_letter_reason
	FROM outbox
`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite outbox repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type sqliteExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// execer returns the transaction from context when present, otherwise the connection.
func (r *SQLiteRepository) execer(ctx context.Context) sqliteExecer {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.db
}

func (r *SQLiteRepository) insert(ctx context.Context, execer sqliteExecer, msg *Message) error {
	result, err := execer.ExecContext(ctx, sqliteInsertMessage,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateID,
		msg.EventType,
		msg.RoutingKey,
		string(msg.Payload),
		nullableString(string(msg.Metadata)),
		msg.CreatedAt.UTC().Format(time.RFC3339),
		nullableTime(msg.NextRetryAt),
		nullableTime(msg.DeadLetteredAt),
		nullablePtr(msg.DeadLetterReason),
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	msg.ID = id
	return nil
}

// Save stores a new outbox message.
func (r *SQLiteRepository) Save(ctx context.Context, msg *Message) error {
	return r.insert(ctx, r.execer(ctx), msg)
}

// SaveBatch stores multiple outbox messages atomically.
func (r *SQLiteRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	// Reuse the transaction from UnitOfWork when present.
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		for _, msg := range msgs {
			if err := r.insert(ctx, info.Tx, msg); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, msg := range msgs {
		if err := r.insert(ctx, tx, msg); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetUnpublished retrieves unpublished messages ordered by creation time.
func (r *SQLiteRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	query := sqliteSelectColumns + `
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at
		LIMIT ?
	`

	now := time.Now().UTC().Format(time.RFC3339)
	rows, err := r.execer(ctx).QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLiteMessages(rows)
}

// MarkPublished marks a message as successfully published.
func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64) error {
	query := `UPDATE outbox SET published_at = ?, dead_lettered_at = NULL WHERE id = ?`
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.execer(ctx).ExecContext(ctx, query, now, id)
	return err
}

// MarkFailed records a publish failure with error message.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	query := `
		UPDATE outbox
		SET retry_count = retry_count + 1,
			last_error = ?,
			next_retry_at = ?
		WHERE id = ?
	`
	_, err := r.execer(ctx).ExecContext(ctx, query, errMsg, nextRetryAt.UTC().Format(time.RFC3339), id)
	return err
}

// MarkDead marks a message as dead-lettered.
func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	query := `
		UPDATE outbox
		SET dead_lettered_at = ?,
			dead_letter_reason = ?
		WHERE id = ?
	`
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.execer(ctx).ExecContext(ctx, query, now, reason, id)
	return err
}

// GetFailed retrieves failed messages eligible for retry.
func (r *SQLiteRepository) GetFailed(ctx context.Context, maxRetries, limit int) ([]*Message, error) {
	query := sqliteSelectColumns + `
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND retry_count > 0
		  AND retry_count < ?
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at
		LIMIT ?
	`

	now := time.Now().UTC().Format(time.RFC3339)
	rows, err := r.execer(ctx).QueryContext(ctx, query, maxRetries, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLiteMessages(rows)
}

// DeleteOld removes successfully published messages older than the retention period.
func (r *SQLiteRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	query := `
		DELETE FROM outbox
		WHERE published_at IS NOT NULL
		  AND published_at < ?
	`
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(time.RFC3339)
	result, err := r.execer(ctx).ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanSQLiteMessages(rows *sql.Rows) ([]*Message, error) {
	var messages []*Message

	for rows.Next() {
		var (
			msg              Message
			eventID          string
			payload          string
			metadata         sql.NullString
			createdAt        string
			publishedAt      sql.NullString
			nextRetryAt      sql.NullString
			lastError        sql.NullString
			deadLetteredAt   sql.NullString
			deadLetterReason sql.NullString
		)

		err := rows.Scan(
			&msg.ID,
			&eventID,
			&msg.AggregateType,
			&msg.AggregateID,
			&msg.EventType,
			&msg.RoutingKey,
			&payload,
			&metadata,
			&createdAt,
			&publishedAt,
			&nextRetryAt,
			&msg.RetryCount,
			&lastError,
			&deadLetteredAt,
			&deadLetterReason,
		)
		if err != nil {
			return nil, err
		}

		msg.EventID, _ = uuid.Parse(eventID)
		msg.Payload = json.RawMessage(payload)
		if metadata.Valid {
			msg.Metadata = json.RawMessage(metadata.String)
		}
		msg.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		msg.PublishedAt = parseNullTime(publishedAt)
		msg.NextRetryAt = parseNullTime(nextRetryAt)
		if lastError.Valid {
			msg.LastError = &lastError.String
		}
		msg.DeadLetteredAt = parseNullTime(deadLetteredAt)
		if deadLetterReason.Valid {
			msg.DeadLetterReason = &deadLetterReason.String
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nullablePtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}
