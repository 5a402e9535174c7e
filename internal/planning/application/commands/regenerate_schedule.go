package commands

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/taktline/taktline/internal/planning/application/services"
	"github.com/taktline/taktline/internal/planning/domain"
	sharedApplication "github.com/taktline/taktline/internal/shared/application"
	sharedDomain "github.com/taktline/taktline/internal/shared/domain"
	"github.com/taktline/taktline/internal/shared/infrastructure/outbox"
)

// Trigger sources recorded on regeneration audit records.
const (
	TriggerManual           = "manual"
	TriggerJobCreated       = "job.created"
	TriggerJobUpdated       = "job.updated"
	TriggerJobDeleted       = "job.deleted"
	TriggerProcedureCreated = "procedure.created"
	TriggerProcedureUpdated = "procedure.updated"
	TriggerProcedureDeleted = "procedure.deleted"
)

// Regenerator rebuilds the full schedule inside the caller's transaction.
// Every job and procedure mutation runs it before committing, so the stored
// schedule never drifts from the stored jobs and procedures.
type Regenerator struct {
	mu sync.Mutex

	jobRepo       domain.JobRepository
	procedureRepo domain.ProcedureRepository
	scheduleRepo  domain.ScheduleRepository
	logRepo       domain.RegenerationLogRepository
	outboxRepo    outbox.Repository
	scheduler     *services.BatchScheduler
	logger        *slog.Logger
}

// NewRegenerator creates a new Regenerator.
func NewRegenerator(
	jobRepo domain.JobRepository,
	procedureRepo domain.ProcedureRepository,
	scheduleRepo domain.ScheduleRepository,
	logRepo domain.RegenerationLogRepository,
	outboxRepo outbox.Repository,
	scheduler *services.BatchScheduler,
	logger *slog.Logger,
) *Regenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Regenerator{
		jobRepo:       jobRepo,
		procedureRepo: procedureRepo,
		scheduleRepo:  scheduleRepo,
		logRepo:       logRepo,
		outboxRepo:    outboxRepo,
		scheduler:     scheduler,
		logger:        logger,
	}
}

// regenerate replans every job and replaces the stored schedule. It must run
// inside an open unit of work; the mutex serializes regenerations so two
// concurrent mutations cannot interleave their clear and insert phases.
func (r *Regenerator) regenerate(ctx context.Context, triggeredBy string) (*domain.RegenerationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := domain.NewRegenerationRecord(triggeredBy)

	jobs, err := r.jobRepo.ListByDeadline(ctx)
	if err != nil {
		return nil, err
	}
	procedures, err := r.procedureRepo.ListBySequence(ctx)
	if err != nil {
		return nil, err
	}

	result := r.scheduler.Regenerate(jobs, procedures)

	if err := r.scheduleRepo.Clear(ctx); err != nil {
		return nil, err
	}
	if len(result.Entries) > 0 {
		if err := r.scheduleRepo.Insert(ctx, result.Entries); err != nil {
			return nil, err
		}
	}

	lateIDs := make([]int64, 0, len(result.LateJobs))
	for _, late := range result.LateJobs {
		lateIDs = append(lateIDs, late.JobID)
	}
	record.Finish(len(jobs)-len(result.UnschedulableJobIDs), len(result.Entries), result.UnschedulableJobIDs, lateIDs)

	if err := r.logRepo.Record(ctx, record); err != nil {
		return nil, err
	}

	jobsByID := make(map[int64]*domain.Job, len(jobs))
	for _, job := range jobs {
		jobsByID[job.ID] = job
	}

	events := make([]sharedDomain.DomainEvent, 0, 1+len(result.UnschedulableJobIDs)+len(result.LateJobs))
	regenerated := domain.NewScheduleRegenerated(record)
	events = append(events, &regenerated)
	for _, id := range result.UnschedulableJobIDs {
		if job, ok := jobsByID[id]; ok {
			event := domain.NewJobUnschedulable(job)
			events = append(events, &event)
		}
	}
	for _, late := range result.LateJobs {
		if job, ok := jobsByID[late.JobID]; ok {
			event := domain.NewDeadlineAtRisk(job, late.CompletionTarget, late.ProjectedEnd)
			events = append(events, &event)
		}
	}
	if err := stageEvents(ctx, r.outboxRepo, events); err != nil {
		return nil, err
	}

	r.logger.Info("schedule regenerated",
		"regeneration_id", record.ID,
		"triggered_by", triggeredBy,
		"jobs_planned", record.JobsPlanned,
		"entries_written", record.EntriesWritten,
		"unschedulable_jobs", len(record.UnschedulableJobIDs),
		"late_jobs", len(record.LateJobIDs))

	return record, nil
}

// stageEvents converts domain events to outbox messages within the current
// transaction.
func stageEvents(ctx context.Context, repo outbox.Repository, events []sharedDomain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx))

	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return repo.SaveBatch(ctx, msgs)
}

// RegenerateScheduleCommand requests a full schedule rebuild.
type RegenerateScheduleCommand struct {
	TriggeredBy string
}

// RegenerateScheduleResult reports the outcome of a schedule rebuild.
type RegenerateScheduleResult struct {
	RegenerationID      uuid.UUID
	JobsPlanned         int
	EntriesWritten      int
	UnschedulableJobIDs []int64
	LateJobIDs          []int64
}

// RegenerateScheduleHandler handles the RegenerateScheduleCommand.
type RegenerateScheduleHandler struct {
	regenerator *Regenerator
	uow         sharedApplication.UnitOfWork
}

// NewRegenerateScheduleHandler creates a new RegenerateScheduleHandler.
func NewRegenerateScheduleHandler(regenerator *Regenerator, uow sharedApplication.UnitOfWork) *RegenerateScheduleHandler {
	return &RegenerateScheduleHandler{
		regenerator: regenerator,
		uow:         uow,
	}
}

// Handle executes the RegenerateScheduleCommand.
func (h *RegenerateScheduleHandler) Handle(ctx context.Context, cmd RegenerateScheduleCommand) (*RegenerateScheduleResult, error) {
	triggeredBy := cmd.TriggeredBy
	if triggeredBy == "" {
		triggeredBy = TriggerManual
	}

	var result *RegenerateScheduleResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		record, err := h.regenerator.regenerate(txCtx, triggeredBy)
		if err != nil {
			return err
		}
		result = newRegenerateScheduleResult(record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func newRegenerateScheduleResult(record *domain.RegenerationRecord) *RegenerateScheduleResult {
	return &RegenerateScheduleResult{
		RegenerationID:      record.ID,
		JobsPlanned:         record.JobsPlanned,
		EntriesWritten:      record.EntriesWritten,
		UnschedulableJobIDs: record.UnschedulableJobIDs,
		LateJobIDs:          record.LateJobIDs,
	}
}
