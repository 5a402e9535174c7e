package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/taktline/taktline/internal/shared/domain"
)

const (
	AggregateTypeJob       = "Job"
	AggregateTypeProcedure = "Procedure"
	AggregateTypeSchedule  = "Schedule"

	RoutingKeyJobCreated       = "planning.job.created"
	RoutingKeyJobUpdated       = "planning.job.updated"
	RoutingKeyJobDeleted       = "planning.job.deleted"
	RoutingKeyProcedureCreated = "planning.procedure.created"
	RoutingKeyProcedureUpdated = "planning.procedure.updated"
	RoutingKeyProcedureDeleted = "planning.procedure.deleted"

	RoutingKeyScheduleRegenerated = "planning.schedule.regenerated"
	RoutingKeyJobUnschedulable    = "planning.schedule.job_unschedulable"
	RoutingKeyDeadlineAtRisk      = "planning.schedule.deadline_at_risk"
)

// JobCreated is emitted when a new job is registered.
type JobCreated struct {
	sharedDomain.BaseEvent
	JobID      int64     `json:"job_id"`
	Name       string    `json:"name"`
	DeadlineAt time.Time `json:"deadline_at"`
}

// NewJobCreated creates a JobCreated event.
func NewJobCreated(job *Job) JobCreated {
	return JobCreated{
		BaseEvent:  sharedDomain.NewBaseEvent(formatID(job.ID), AggregateTypeJob, RoutingKeyJobCreated),
		JobID:      job.ID,
		Name:       job.Name,
		DeadlineAt: job.DeadlineAt(),
	}
}

// JobUpdated is emitted when a job's name or deadline changes.
type JobUpdated struct {
	sharedDomain.BaseEvent
	JobID      int64     `json:"job_id"`
	Name       string    `json:"name"`
	DeadlineAt time.Time `json:"deadline_at"`
}

// NewJobUpdated creates a JobUpdated event.
func NewJobUpdated(job *Job) JobUpdated {
	return JobUpdated{
		BaseEvent:  sharedDomain.NewBaseEvent(formatID(job.ID), AggregateTypeJob, RoutingKeyJobUpdated),
		JobID:      job.ID,
		Name:       job.Name,
		DeadlineAt: job.DeadlineAt(),
	}
}

// JobDeleted is emitted when a job is removed.
type JobDeleted struct {
	sharedDomain.BaseEvent
	JobID int64 `json:"job_id"`
}

// NewJobDeleted creates a JobDeleted event.
func NewJobDeleted(jobID int64) JobDeleted {
	return JobDeleted{
		BaseEvent: sharedDomain.NewBaseEvent(formatID(jobID), AggregateTypeJob, RoutingKeyJobDeleted),
		JobID:     jobID,
	}
}

// ProcedureCreated is emitted when a procedure is added to the flow.
type ProcedureCreated struct {
	sharedDomain.BaseEvent
	ProcedureID int64  `json:"procedure_id"`
	Sequence    int    `json:"sequence"`
	Name        string `json:"name"`
	PlannedTime int    `json:"planned_time"`
}

// NewProcedureCreated creates a ProcedureCreated event.
func NewProcedureCreated(procedure *Procedure) ProcedureCreated {
	return ProcedureCreated{
		BaseEvent:   sharedDomain.NewBaseEvent(formatID(procedure.ID), AggregateTypeProcedure, RoutingKeyProcedureCreated),
		ProcedureID: procedure.ID,
		Sequence:    procedure.Sequence,
		Name:        procedure.Name,
		PlannedTime: procedure.PlannedTime,
	}
}

// ProcedureUpdated is emitted when a procedure changes.
type ProcedureUpdated struct {
	sharedDomain.BaseEvent
	ProcedureID int64  `json:"procedure_id"`
	Sequence    int    `json:"sequence"`
	Name        string `json:"name"`
	PlannedTime int    `json:"planned_time"`
}

// NewProcedureUpdated creates a ProcedureUpdated event.
func NewProcedureUpdated(procedure *Procedure) ProcedureUpdated {
	return ProcedureUpdated{
		BaseEvent:   sharedDomain.NewBaseEvent(formatID(procedure.ID), AggregateTypeProcedure, RoutingKeyProcedureUpdated),
		ProcedureID: procedure.ID,
		Sequence:    procedure.Sequence,
		Name:        procedure.Name,
		PlannedTime: procedure.PlannedTime,
	}
}

// ProcedureDeleted is emitted when a procedure is removed from the flow.
type ProcedureDeleted struct {
	sharedDomain.BaseEvent
	ProcedureID int64 `json:"procedure_id"`
	Sequence    int   `json:"sequence"`
}

// NewProcedureDeleted creates a ProcedureDeleted event.
func NewProcedureDeleted(procedureID int64, sequence int) ProcedureDeleted {
	return ProcedureDeleted{
		BaseEvent:   sharedDomain.NewBaseEvent(formatID(procedureID), AggregateTypeProcedure, RoutingKeyProcedureDeleted),
		ProcedureID: procedureID,
		Sequence:    sequence,
	}
}

// ScheduleRegenerated is emitted after a full schedule regeneration.
type ScheduleRegenerated struct {
	sharedDomain.BaseEvent
	RegenerationID      uuid.UUID `json:"regeneration_id"`
	TriggeredBy         string    `json:"triggered_by"`
	JobsPlanned         int       `json:"jobs_planned"`
	EntriesWritten      int       `json:"entries_written"`
	UnschedulableJobIDs []int64   `json:"unschedulable_job_ids"`
	LateJobIDs          []int64   `json:"late_job_ids"`
}

// NewScheduleRegenerated creates a ScheduleRegenerated event.
func NewScheduleRegenerated(record *RegenerationRecord) ScheduleRegenerated {
	return ScheduleRegenerated{
		BaseEvent:           sharedDomain.NewBaseEvent(record.ID.String(), AggregateTypeSchedule, RoutingKeyScheduleRegenerated),
		RegenerationID:      record.ID,
		TriggeredBy:         record.TriggeredBy,
		JobsPlanned:         record.JobsPlanned,
		EntriesWritten:      record.EntriesWritten,
		UnschedulableJobIDs: record.UnschedulableJobIDs,
		LateJobIDs:          record.LateJobIDs,
	}
}

// JobUnschedulable is emitted when a regeneration cannot place a job at all.
type JobUnschedulable struct {
	sharedDomain.BaseEvent
	JobID      int64     `json:"job_id"`
	JobName    string    `json:"job_name"`
	DeadlineAt time.Time `json:"deadline_at"`
}

// NewJobUnschedulable creates a JobUnschedulable event.
func NewJobUnschedulable(job *Job) JobUnschedulable {
	return JobUnschedulable{
		BaseEvent:  sharedDomain.NewBaseEvent(formatID(job.ID), AggregateTypeSchedule, RoutingKeyJobUnschedulable),
		JobID:      job.ID,
		JobName:    job.Name,
		DeadlineAt: job.DeadlineAt(),
	}
}

// DeadlineAtRisk is emitted when a job is placed but finishes after its
// completion target.
type DeadlineAtRisk struct {
	sharedDomain.BaseEvent
	JobID            int64     `json:"job_id"`
	JobName          string    `json:"job_name"`
	DeadlineAt       time.Time `json:"deadline_at"`
	CompletionTarget time.Time `json:"completion_target"`
	ProjectedEnd     time.Time `json:"projected_end"`
}

// NewDeadlineAtRisk creates a DeadlineAtRisk event.
func NewDeadlineAtRisk(job *Job, completionTarget, projectedEnd time.Time) DeadlineAtRisk {
	return DeadlineAtRisk{
		BaseEvent:        sharedDomain.NewBaseEvent(formatID(job.ID), AggregateTypeSchedule, RoutingKeyDeadlineAtRisk),
		JobID:            job.ID,
		JobName:          job.Name,
		DeadlineAt:       job.DeadlineAt(),
		CompletionTarget: completionTarget,
		ProjectedEnd:     projectedEnd,
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
