package queries

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/taktline/taktline/internal/planning/domain"
)

// Violation kinds reported by CheckScheduleHandler.
const (
	ViolationOverlap     = "overlap"
	ViolationCoverage    = "coverage"
	ViolationWorkingTime = "working_time"
)

// ScheduleViolationDTO describes one broken schedule invariant.
type ScheduleViolationDTO struct {
	Kind        string
	JobID       int64
	ProcedureID int64
	Detail      string
}

// CheckScheduleResult is the outcome of a stored-schedule audit.
type CheckScheduleResult struct {
	JobsChecked     int
	EntriesChecked  int
	AtRiskJobIDs    []int64
	UnplannedJobIDs []int64
	Violations      []ScheduleViolationDTO
}

// Clean reports whether the stored schedule holds every invariant.
func (r *CheckScheduleResult) Clean() bool {
	return len(r.Violations) == 0
}

// CheckScheduleQuery contains the parameters for auditing the schedule.
type CheckScheduleQuery struct{}

// CheckScheduleHandler audits the stored schedule against the planning
// invariants: each planned job covers the whole flow exactly once, no two
// entries share a procedure at overlapping times, and every entry's working
// time matches its planned hours.
type CheckScheduleHandler struct {
	scheduleRepo  domain.ScheduleRepository
	jobRepo       domain.JobRepository
	procedureRepo domain.ProcedureRepository
	calendar      *domain.Calendar
}

// NewCheckScheduleHandler creates a new CheckScheduleHandler.
func NewCheckScheduleHandler(
	scheduleRepo domain.ScheduleRepository,
	jobRepo domain.JobRepository,
	procedureRepo domain.ProcedureRepository,
	calendar *domain.Calendar,
) *CheckScheduleHandler {
	return &CheckScheduleHandler{
		scheduleRepo:  scheduleRepo,
		jobRepo:       jobRepo,
		procedureRepo: procedureRepo,
		calendar:      calendar,
	}
}

// Handle executes the CheckScheduleQuery.
func (h *CheckScheduleHandler) Handle(ctx context.Context, query CheckScheduleQuery) (*CheckScheduleResult, error) {
	jobs, err := h.jobRepo.ListByDeadline(ctx)
	if err != nil {
		return nil, err
	}
	procedures, err := h.procedureRepo.ListBySequence(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := h.scheduleRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &CheckScheduleResult{
		JobsChecked:    len(jobs),
		EntriesChecked: len(entries),
	}

	entriesByJob := make(map[int64][]domain.Entry, len(jobs))
	for _, entry := range entries {
		entriesByJob[entry.JobID] = append(entriesByJob[entry.JobID], entry)
	}

	for _, job := range jobs {
		jobEntries := entriesByJob[job.ID]
		if len(jobEntries) == 0 {
			result.UnplannedJobIDs = append(result.UnplannedJobIDs, job.ID)
			continue
		}

		h.checkCoverage(result, job.ID, jobEntries, procedures)

		projectedEnd := jobEntries[0].End
		for _, entry := range jobEntries[1:] {
			if entry.End.After(projectedEnd) {
				projectedEnd = entry.End
			}
		}
		if projectedEnd.After(h.calendar.CompletionTarget(job.DeadlineAt())) {
			result.AtRiskJobIDs = append(result.AtRiskJobIDs, job.ID)
		}
	}

	h.checkWorkingTime(result, entries)
	h.checkExclusivity(result, entries)

	return result, nil
}

// checkCoverage verifies the job holds exactly one entry per procedure.
func (h *CheckScheduleHandler) checkCoverage(result *CheckScheduleResult, jobID int64, entries []domain.Entry, procedures []*domain.Procedure) {
	count := make(map[int64]int, len(procedures))
	for _, entry := range entries {
		count[entry.ProcedureID]++
	}
	for _, procedure := range procedures {
		switch n := count[procedure.ID]; {
		case n == 0:
			result.Violations = append(result.Violations, ScheduleViolationDTO{
				Kind:        ViolationCoverage,
				JobID:       jobID,
				ProcedureID: procedure.ID,
				Detail:      fmt.Sprintf("no entry for procedure %q", procedure.Name),
			})
		case n > 1:
			result.Violations = append(result.Violations, ScheduleViolationDTO{
				Kind:        ViolationCoverage,
				JobID:       jobID,
				ProcedureID: procedure.ID,
				Detail:      fmt.Sprintf("%d entries for procedure %q", n, procedure.Name),
			})
		}
	}
}

// checkWorkingTime verifies each entry's span holds exactly its planned
// working hours once lunch gaps and Sundays are subtracted.
func (h *CheckScheduleHandler) checkWorkingTime(result *CheckScheduleResult, entries []domain.Entry) {
	for _, entry := range entries {
		worked := h.calendar.WorkingDuration(entry.Start, entry.End)
		planned := time.Duration(entry.PlannedTime) * time.Hour
		if worked != planned {
			result.Violations = append(result.Violations, ScheduleViolationDTO{
				Kind:        ViolationWorkingTime,
				JobID:       entry.JobID,
				ProcedureID: entry.ProcedureID,
				Detail:      fmt.Sprintf("span holds %s of working time, planned %s", worked, planned),
			})
		}
	}
}

// checkExclusivity verifies no two entries occupy the same procedure team
// at strictly overlapping times. Touching endpoints do not overlap.
func (h *CheckScheduleHandler) checkExclusivity(result *CheckScheduleResult, entries []domain.Entry) {
	byProcedure := make(map[int64][]domain.Entry)
	for _, entry := range entries {
		byProcedure[entry.ProcedureID] = append(byProcedure[entry.ProcedureID], entry)
	}

	for procedureID, group := range byProcedure {
		sort.Slice(group, func(i, j int) bool {
			if group[i].Start.Equal(group[j].Start) {
				return group[i].ID < group[j].ID
			}
			return group[i].Start.Before(group[j].Start)
		})
		// Sweep against the furthest-reaching earlier entry; with entries
		// sorted by start, any overlap shows up against that entry.
		furthest := group[0]
		for _, curr := range group[1:] {
			if curr.Start.Before(furthest.End) && curr.End.After(furthest.Start) {
				result.Violations = append(result.Violations, ScheduleViolationDTO{
					Kind:        ViolationOverlap,
					JobID:       curr.JobID,
					ProcedureID: procedureID,
					Detail: fmt.Sprintf("entry %d overlaps entry %d of job %d",
						curr.ID, furthest.ID, furthest.JobID),
				})
			}
			if curr.End.After(furthest.End) {
				furthest = curr
			}
		}
	}
}
