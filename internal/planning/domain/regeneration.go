package domain

import (
	"time"

	"github.com/google/uuid"
)

// RegenerationRecord captures the outcome of one full schedule
// regeneration for auditing.
type RegenerationRecord struct {
	ID                  uuid.UUID
	TriggeredBy         string
	StartedAt           time.Time
	FinishedAt          time.Time
	JobsPlanned         int
	EntriesWritten      int
	UnschedulableJobIDs []int64
	LateJobIDs          []int64
}

// NewRegenerationRecord starts an audit record for a regeneration run.
func NewRegenerationRecord(triggeredBy string) *RegenerationRecord {
	return &RegenerationRecord{
		ID:          uuid.New(),
		TriggeredBy: triggeredBy,
		StartedAt:   time.Now(),
	}
}

// Finish stamps the record with the run outcome.
func (r *RegenerationRecord) Finish(jobsPlanned, entriesWritten int, unschedulable, late []int64) {
	r.FinishedAt = time.Now()
	r.JobsPlanned = jobsPlanned
	r.EntriesWritten = entriesWritten
	r.UnschedulableJobIDs = unschedulable
	r.LateJobIDs = late
}
