package domain

import (
	"errors"
	"time"
)

var (
	// ErrJobNotFound is returned when a job does not exist.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobNameRequired is returned when a job is created without a name.
	ErrJobNameRequired = errors.New("job name is required")
	// ErrDeadlineRequired is returned when a job is created without a deadline date.
	ErrDeadlineRequired = errors.New("job deadline date is required")
	// ErrDeadlineTimeInvalid is returned when the deadline time of day is out of range.
	ErrDeadlineTimeInvalid = errors.New("job deadline time must be within the day")
)

// Job is a production order that must complete every procedure before its
// deadline. Lower IDs carry higher priority when jobs share a deadline.
//
// DeadlineDate holds the calendar day at local midnight and DeadlineTime
// the offset into that day. They are kept separate because jobs are grouped
// by the exact pair during planning.
type Job struct {
	ID           int64
	Name         string
	Description  string
	DeadlineDate time.Time
	DeadlineTime time.Duration
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewJob validates and builds a job. The deadline date is normalized to
// local midnight.
func NewJob(name, description string, deadlineDate time.Time, deadlineTime time.Duration) (*Job, error) {
	if name == "" {
		return nil, ErrJobNameRequired
	}
	if deadlineDate.IsZero() {
		return nil, ErrDeadlineRequired
	}
	if deadlineTime < 0 || deadlineTime >= 24*time.Hour {
		return nil, ErrDeadlineTimeInvalid
	}
	now := time.Now()
	return &Job{
		Name:         name,
		Description:  description,
		DeadlineDate: startOfDay(deadlineDate),
		DeadlineTime: deadlineTime,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// DeadlineAt returns the full deadline instant.
func (j *Job) DeadlineAt() time.Time {
	return j.DeadlineDate.Add(j.DeadlineTime)
}

// Rename updates the job name and description.
func (j *Job) Rename(name, description string) error {
	if name == "" {
		return ErrJobNameRequired
	}
	j.Name = name
	j.Description = description
	j.UpdatedAt = time.Now()
	return nil
}

// Reschedule moves the job deadline.
func (j *Job) Reschedule(deadlineDate time.Time, deadlineTime time.Duration) error {
	if deadlineDate.IsZero() {
		return ErrDeadlineRequired
	}
	if deadlineTime < 0 || deadlineTime >= 24*time.Hour {
		return ErrDeadlineTimeInvalid
	}
	j.DeadlineDate = startOfDay(deadlineDate)
	j.DeadlineTime = deadlineTime
	j.UpdatedAt = time.Now()
	return nil
}
