package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/taktline/taktline/internal/planning/domain"
	"github.com/taktline/taktline/internal/shared/infrastructure/database"
)

// SQLiteProcedureRepository implements domain.ProcedureRepository using SQLite.
type SQLiteProcedureRepository struct {
	db *sql.DB
}

// NewSQLiteProcedureRepository creates a new SQLite procedure repository.
func NewSQLiteProcedureRepository(db *sql.DB) *SQLiteProcedureRepository {
	return &SQLiteProcedureRepository{db: db}
}

const sqliteProcedureColumns = `
	SELECT id, sequence, name, description, planned_time, planned_manpower, is_prod, is_store, created_at, updated_at
	FROM procedures
`

// Create inserts a new procedure and assigns its generated ID.
func (r *SQLiteProcedureRepository) Create(ctx context.Context, procedure *domain.Procedure) error {
	query := `
		INSERT INTO procedures (sequence, name, description, planned_time, planned_manpower, is_prod, is_store, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqliteExecerFromContext(ctx, r.db).ExecContext(ctx, query,
		procedure.Sequence,
		procedure.Name,
		procedure.Description,
		procedure.PlannedTime,
		procedure.PlannedManpower,
		boolToInt(procedure.IsProd),
		boolToInt(procedure.IsStore),
		procedure.CreatedAt.UTC().Format(time.RFC3339),
		procedure.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	procedure.ID = id
	return nil
}

// Update persists changes to an existing procedure.
func (r *SQLiteProcedureRepository) Update(ctx context.Context, procedure *domain.Procedure) error {
	query := `
		UPDATE procedures
		SET sequence = ?, name = ?, description = ?, planned_time = ?,
			planned_manpower = ?, is_prod = ?, is_store = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := sqliteExecerFromContext(ctx, r.db).ExecContext(ctx, query,
		procedure.Sequence,
		procedure.Name,
		procedure.Description,
		procedure.PlannedTime,
		procedure.PlannedManpower,
		boolToInt(procedure.IsProd),
		boolToInt(procedure.IsStore),
		procedure.UpdatedAt.UTC().Format(time.RFC3339),
		procedure.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrProcedureNotFound
	}
	return nil
}

// Delete removes a procedure. Its schedule entries are removed via CASCADE.
func (r *SQLiteProcedureRepository) Delete(ctx context.Context, id int64) error {
	result, err := sqliteExecerFromContext(ctx, r.db).ExecContext(ctx, `DELETE FROM procedures WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrProcedureNotFound
	}
	return nil
}

// FindByID retrieves a procedure by its ID.
func (r *SQLiteProcedureRepository) FindByID(ctx context.Context, id int64) (*domain.Procedure, error) {
	row := sqliteExecerFromContext(ctx, r.db).QueryRowContext(ctx, sqliteProcedureColumns+`WHERE id = ?`, id)
	return scanSQLiteProcedureRow(row)
}

// FindBySequence retrieves a procedure by its sequence number.
func (r *SQLiteProcedureRepository) FindBySequence(ctx context.Context, sequence int) (*domain.Procedure, error) {
	row := sqliteExecerFromContext(ctx, r.db).QueryRowContext(ctx, sqliteProcedureColumns+`WHERE sequence = ?`, sequence)
	return scanSQLiteProcedureRow(row)
}

// ListBySequence returns all procedures in flow order.
func (r *SQLiteProcedureRepository) ListBySequence(ctx context.Context) ([]*domain.Procedure, error) {
	rows, err := sqliteExecerFromContext(ctx, r.db).QueryContext(ctx, sqliteProcedureColumns+`ORDER BY sequence`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	procedures := make([]*domain.Procedure, 0)
	for rows.Next() {
		procedure, err := scanSQLiteProcedure(rows)
		if err != nil {
			return nil, err
		}
		procedures = append(procedures, procedure)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return procedures, nil
}

func scanSQLiteProcedureRow(row rowScanner) (*domain.Procedure, error) {
	procedure, err := scanSQLiteProcedure(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrProcedureNotFound
		}
		return nil, err
	}
	return procedure, nil
}

func scanSQLiteProcedure(row rowScanner) (*domain.Procedure, error) {
	var (
		procedure domain.Procedure
		isProd    int64
		isStore   int64
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&procedure.ID,
		&procedure.Sequence,
		&procedure.Name,
		&procedure.Description,
		&procedure.PlannedTime,
		&procedure.PlannedManpower,
		&isProd,
		&isStore,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	procedure.IsProd = isProd != 0
	procedure.IsStore = isStore != 0
	procedure.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	procedure.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &procedure, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
