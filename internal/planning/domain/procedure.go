package domain

import (
	"errors"
	"time"
)

var (
	// ErrProcedureNotFound is returned when a procedure does not exist.
	ErrProcedureNotFound = errors.New("procedure not found")
	// ErrProcedureNameRequired is returned when a procedure is created without a name.
	ErrProcedureNameRequired = errors.New("procedure name is required")
	// ErrSequenceInvalid is returned for a non-positive sequence number.
	ErrSequenceInvalid = errors.New("procedure sequence must be positive")
	// ErrSequenceTaken is returned when another procedure already holds the sequence.
	ErrSequenceTaken = errors.New("procedure sequence already in use")
	// ErrPlannedTimeInvalid is returned for a negative planned time.
	ErrPlannedTimeInvalid = errors.New("planned time cannot be negative")
	// ErrPlannedManpowerInvalid is returned for a negative planned manpower.
	ErrPlannedManpowerInvalid = errors.New("planned manpower cannot be negative")
)

// Procedure is one station of the production flow. The procedure list is
// global: every job passes through every procedure in sequence order, and
// each procedure is worked by a single team, so two jobs can never occupy
// the same procedure at the same time.
type Procedure struct {
	ID              int64
	Sequence        int
	Name            string
	Description     string
	PlannedTime     int // whole hours of working time
	PlannedManpower int
	IsProd          bool
	IsStore         bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewProcedure validates and builds a procedure.
func NewProcedure(sequence int, name, description string, plannedTime, plannedManpower int, isProd, isStore bool) (*Procedure, error) {
	if name == "" {
		return nil, ErrProcedureNameRequired
	}
	if sequence <= 0 {
		return nil, ErrSequenceInvalid
	}
	if plannedTime < 0 {
		return nil, ErrPlannedTimeInvalid
	}
	if plannedManpower < 0 {
		return nil, ErrPlannedManpowerInvalid
	}
	now := time.Now()
	return &Procedure{
		Sequence:        sequence,
		Name:            name,
		Description:     description,
		PlannedTime:     plannedTime,
		PlannedManpower: plannedManpower,
		IsProd:          isProd,
		IsStore:         isStore,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// PlannedDuration returns the planned working time as a duration.
func (p *Procedure) PlannedDuration() time.Duration {
	return time.Duration(p.PlannedTime) * time.Hour
}

// Update replaces the mutable fields of the procedure.
func (p *Procedure) Update(sequence int, name, description string, plannedTime, plannedManpower int, isProd, isStore bool) error {
	if name == "" {
		return ErrProcedureNameRequired
	}
	if sequence <= 0 {
		return ErrSequenceInvalid
	}
	if plannedTime < 0 {
		return ErrPlannedTimeInvalid
	}
	if plannedManpower < 0 {
		return ErrPlannedManpowerInvalid
	}
	p.Sequence = sequence
	p.Name = name
	p.Description = description
	p.PlannedTime = plannedTime
	p.PlannedManpower = plannedManpower
	p.IsProd = isProd
	p.IsStore = isStore
	p.UpdatedAt = time.Now()
	return nil
}
