package services

import (
	"log/slog"
	"sort"
	"time"

	"github.com/taktline/taktline/internal/planning/domain"
)

// Result is the outcome of one regeneration pass. Entries are ordered by
// deadline, then job ID, then sequence. Unschedulable jobs contribute no
// entries at all; late jobs are placed but finish after their completion
// target.
type Result struct {
	Entries             []domain.Entry
	UnschedulableJobIDs []int64
	LateJobs            []LateJob
}

// LateJob identifies a job whose plan ends after its completion target.
type LateJob struct {
	JobID            int64
	CompletionTarget time.Time
	ProjectedEnd     time.Time
}

// BatchScheduler rebuilds the whole schedule from scratch. It is pure over
// the job and procedure snapshots it receives: no I/O, no clock reads, and
// the same inputs always produce the same result. Callers own persistence
// and locking around a run.
type BatchScheduler struct {
	planner  *JobPlanner
	calendar *domain.Calendar
	logger   *slog.Logger
}

// NewBatchScheduler creates a batch scheduler.
func NewBatchScheduler(planner *JobPlanner, calendar *domain.Calendar, logger *slog.Logger) *BatchScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchScheduler{
		planner:  planner,
		calendar: calendar,
		logger:   logger,
	}
}

// Regenerate plans every job against every procedure. Jobs are processed
// in deadline order and, within a deadline, in ascending ID order: lower
// IDs carry higher priority and claim their slots first. Later jobs whose
// ideal placement collides with occupied time escalate to forward planning
// past the conflicts, then to a conflict-aware backward pass when the
// forward plan would overshoot the completion target.
func (s *BatchScheduler) Regenerate(jobs []*domain.Job, procedures []*domain.Procedure) *Result {
	result := &Result{}
	if len(jobs) == 0 || len(procedures) == 0 {
		return result
	}

	ordered := sortedByPriority(jobs)
	flow := sortedBySequenceAsc(procedures)
	conflicts := domain.NewConflictSet()

	for _, group := range groupByDeadline(ordered) {
		target := s.calendar.CompletionTarget(group.deadline)

		for _, job := range group.jobs {
			entries := s.planJob(job, flow, target, conflicts)
			if len(entries) == 0 {
				s.logger.Warn("job cannot be scheduled",
					"job_id", job.ID,
					"job_name", job.Name,
					"deadline", job.DeadlineAt())
				result.UnschedulableJobIDs = append(result.UnschedulableJobIDs, job.ID)
				continue
			}

			if last := entries[len(entries)-1].End; last.After(target) {
				s.logger.Warn("job finishes after its completion target",
					"job_id", job.ID,
					"completion_target", target,
					"projected_end", last)
				result.LateJobs = append(result.LateJobs, LateJob{
					JobID:            job.ID,
					CompletionTarget: target,
					ProjectedEnd:     last,
				})
			}

			conflicts.Add(entries...)
			result.Entries = append(result.Entries, entries...)
		}
	}

	return result
}

// planJob runs the placement pipeline for one job: ideal backward chain,
// fallback to a packed forward plan, conflict check against everything
// placed so far, and escalation when occupied time is in the way.
func (s *BatchScheduler) planJob(job *domain.Job, procedures []*domain.Procedure, target time.Time, conflicts *domain.ConflictSet) []domain.Entry {
	entries := s.planner.PlanBackward(job, procedures, target)

	if entries == nil {
		// The per-procedure chain does not fit the horizon. Pack the job's
		// total working time instead and lay it out forwards from there.
		var total time.Duration
		for _, procedure := range procedures {
			total += procedure.PlannedDuration()
		}
		if start, ok := s.planner.finder.StartForDuration(total, target); ok {
			entries = s.planner.PlanForward(job, procedures, start, conflicts)
		}
	}
	if entries == nil {
		return nil
	}

	if !s.hasConflicts(entries, conflicts) {
		return entries
	}

	// Escalate: plan forward past everything occupying the job's chain.
	latest := latestOccupiedEnd(entries, conflicts)
	escalated := s.planner.PlanForward(job, procedures, latest, conflicts)
	if escalated == nil {
		return nil
	}
	if escalated[len(escalated)-1].End.After(target) {
		// The forward plan overshoots the target; try to slip the job into
		// gaps before the higher-priority work instead. When that fails too,
		// the late forward plan stands and the job is reported at risk.
		if compressed := s.planner.PlanBackwardWithConflicts(job, procedures, target, conflicts); compressed != nil {
			return compressed
		}
	}
	return escalated
}

func (s *BatchScheduler) hasConflicts(entries []domain.Entry, conflicts *domain.ConflictSet) bool {
	for _, e := range entries {
		if conflicts.HasConflict(e.ProcedureID, e.Start, e.End) {
			return true
		}
	}
	return false
}

// latestOccupiedEnd returns the latest end over all occupied time for any
// procedure the entries touch.
func latestOccupiedEnd(entries []domain.Entry, conflicts *domain.ConflictSet) time.Time {
	var latest time.Time
	for _, e := range entries {
		if end, ok := conflicts.LatestEnd(e.ProcedureID); ok && end.After(latest) {
			latest = end
		}
	}
	return latest
}

type deadlineGroup struct {
	deadline time.Time
	jobs     []*domain.Job
}

// groupByDeadline partitions jobs sharing the exact same deadline instant.
// The input must already be sorted by deadline, then ID.
func groupByDeadline(jobs []*domain.Job) []deadlineGroup {
	var groups []deadlineGroup
	for _, job := range jobs {
		deadline := job.DeadlineAt()
		if n := len(groups); n > 0 && groups[n-1].deadline.Equal(deadline) {
			groups[n-1].jobs = append(groups[n-1].jobs, job)
			continue
		}
		groups = append(groups, deadlineGroup{deadline: deadline, jobs: []*domain.Job{job}})
	}
	return groups
}

// sortedByPriority returns a copy ordered by deadline ascending, then ID
// ascending.
func sortedByPriority(jobs []*domain.Job) []*domain.Job {
	sorted := make([]*domain.Job, len(jobs))
	copy(sorted, jobs)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := sorted[i].DeadlineAt(), sorted[j].DeadlineAt()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
