package persistence

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taktline/taktline/internal/planning/domain"
	"github.com/taktline/taktline/internal/shared/infrastructure/database"
	sharedPersistence "github.com/taktline/taktline/internal/shared/infrastructure/persistence"
)

// PostgresProcedureRepository implements domain.ProcedureRepository using PostgreSQL.
type PostgresProcedureRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresProcedureRepository creates a new PostgreSQL procedure repository.
func NewPostgresProcedureRepository(pool *pgxpool.Pool) *PostgresProcedureRepository {
	return &PostgresProcedureRepository{pool: pool}
}

const postgresProcedureColumns = `
	SELECT id, sequence, name, description, planned_time, planned_manpower, is_prod, is_store, created_at, updated_at
	FROM procedures
`

// Create inserts a new procedure and assigns its generated ID.
func (r *PostgresProcedureRepository) Create(ctx context.Context, procedure *domain.Procedure) error {
	query := `
		INSERT INTO procedures (sequence, name, description, planned_time, planned_manpower, is_prod, is_store, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	execer := sharedPersistence.Executor(ctx, r.pool)
	return execer.QueryRow(ctx, query,
		procedure.Sequence,
		procedure.Name,
		procedure.Description,
		procedure.PlannedTime,
		procedure.PlannedManpower,
		procedure.IsProd,
		procedure.IsStore,
		procedure.CreatedAt,
		procedure.UpdatedAt,
	).Scan(&procedure.ID)
}

// Update persists changes to an existing procedure.
func (r *PostgresProcedureRepository) Update(ctx context.Context, procedure *domain.Procedure) error {
	query := `
		UPDATE procedures
		SET sequence = $2, name = $3, description = $4, planned_time = $5,
			planned_manpower = $6, is_prod = $7, is_store = $8, updated_at = $9
		WHERE id = $1
	`

	execer := sharedPersistence.Executor(ctx, r.pool)
	result, err := execer.Exec(ctx, query,
		procedure.ID,
		procedure.Sequence,
		procedure.Name,
		procedure.Description,
		procedure.PlannedTime,
		procedure.PlannedManpower,
		procedure.IsProd,
		procedure.IsStore,
		procedure.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrProcedureNotFound
	}
	return nil
}

// Delete removes a procedure. Its schedule entries are removed via CASCADE.
func (r *PostgresProcedureRepository) Delete(ctx context.Context, id int64) error {
	execer := sharedPersistence.Executor(ctx, r.pool)
	result, err := execer.Exec(ctx, `DELETE FROM procedures WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrProcedureNotFound
	}
	return nil
}

// FindByID retrieves a procedure by its ID.
func (r *PostgresProcedureRepository) FindByID(ctx context.Context, id int64) (*domain.Procedure, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	row := execer.QueryRow(ctx, postgresProcedureColumns+`WHERE id = $1`, id)
	return scanPostgresProcedureRow(row)
}

// FindBySequence retrieves a procedure by its sequence number.
func (r *PostgresProcedureRepository) FindBySequence(ctx context.Context, sequence int) (*domain.Procedure, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	row := execer.QueryRow(ctx, postgresProcedureColumns+`WHERE sequence = $1`, sequence)
	return scanPostgresProcedureRow(row)
}

// ListBySequence returns all procedures in flow order.
func (r *PostgresProcedureRepository) ListBySequence(ctx context.Context) ([]*domain.Procedure, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, postgresProcedureColumns+`ORDER BY sequence`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	procedures := make([]*domain.Procedure, 0)
	for rows.Next() {
		procedure, err := scanPostgresProcedure(rows)
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

func scanPostgresProcedureRow(row pgx.Row) (*domain.Procedure, error) {
	procedure, err := scanPostgresProcedure(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrProcedureNotFound
		}
		return nil, err
	}
	return procedure, nil
}

func scanPostgresProcedure(row pgx.Row) (*domain.Procedure, error) {
	var procedure domain.Procedure
	err := row.Scan(
		&procedure.ID,
		&procedure.Sequence,
		&procedure.Name,
		&procedure.Description,
		&procedure.PlannedTime,
		&procedure.PlannedManpower,
		&procedure.IsProd,
		&procedure.IsStore,
		&procedure.CreatedAt,
		&procedure.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &procedure, nil
}
