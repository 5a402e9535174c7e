package domain

import (
	"context"
	"time"
)

// JobRepository persists jobs.
type JobRepository interface {
	// Create inserts a new job and assigns its ID.
	Create(ctx context.Context, job *Job) error
	// Update persists changes to an existing job.
	Update(ctx context.Context, job *Job) error
	// Delete removes a job and its schedule entries.
	Delete(ctx context.Context, id int64) error
	// FindByID loads a job, returning ErrJobNotFound when absent.
	FindByID(ctx context.Context, id int64) (*Job, error)
	// ListByDeadline returns all jobs ordered by deadline date, deadline
	// time, then ID. This is the planning priority order.
	ListByDeadline(ctx context.Context) ([]*Job, error)
}

// ProcedureRepository persists the global procedure list.
type ProcedureRepository interface {
	// Create inserts a new procedure and assigns its ID.
	Create(ctx context.Context, procedure *Procedure) error
	// Update persists changes to an existing procedure.
	Update(ctx context.Context, procedure *Procedure) error
	// Delete removes a procedure and its schedule entries.
	Delete(ctx context.Context, id int64) error
	// FindByID loads a procedure, returning ErrProcedureNotFound when absent.
	FindByID(ctx context.Context, id int64) (*Procedure, error)
	// FindBySequence loads a procedure by its sequence number.
	FindBySequence(ctx context.Context, sequence int) (*Procedure, error)
	// ListBySequence returns all procedures in flow order.
	ListBySequence(ctx context.Context) ([]*Procedure, error)
}

// ScheduleRepository persists generated schedule entries. The schedule is
// always written as a whole: a regeneration clears the table and inserts
// the new plan inside one transaction.
type ScheduleRepository interface {
	// Clear removes every schedule entry.
	Clear(ctx context.Context) error
	// Insert writes a batch of entries.
	Insert(ctx context.Context, entries []Entry) error
	// ListAll returns every entry ordered by start time, then ID.
	ListAll(ctx context.Context) ([]Entry, error)
	// ListBetween returns entries overlapping [from, to) ordered by start
	// time, then ID.
	ListBetween(ctx context.Context, from, to time.Time) ([]Entry, error)
	// Conflicts returns the entries of one procedure that strictly overlap
	// [start, end). Touching endpoints do not conflict.
	Conflicts(ctx context.Context, procedureID int64, start, end time.Time) ([]Entry, error)
}

// RegenerationLogRepository persists regeneration audit records.
type RegenerationLogRepository interface {
	// Record writes a finished regeneration record.
	Record(ctx context.Context, record *RegenerationRecord) error
	// List returns the most recent records, newest first.
	List(ctx context.Context, limit int) ([]RegenerationRecord, error)
}
