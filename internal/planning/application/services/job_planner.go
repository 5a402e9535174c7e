package services

import (
	"sort"
	"time"

	"github.com/taktline/taktline/internal/planning/domain"
)

// maxCompressAttempts bounds the backward retries when compressing a job
// between occupied slots. Each failed attempt moves the search end four
// hours earlier.
const maxCompressAttempts = 30

// compressRetreat is how far the search end moves back per failed attempt.
const compressRetreat = 4 * time.Hour

// JobPlanner lays out all procedures of a single job. Procedures whose
// planned time exceeds the longest working block cannot fit in one block
// and take the multi-day finders.
type JobPlanner struct {
	finder *SlotFinder
}

// NewJobPlanner creates a planner over the given slot finder.
func NewJobPlanner(finder *SlotFinder) *JobPlanner {
	return &JobPlanner{finder: finder}
}

// PlanBackward chains the job's procedures backwards from targetCompletion
// with zero gaps: each procedure ends exactly where its successor starts,
// and the last one ends at targetCompletion. The placement ignores
// occupied time; callers check the result against their conflict set. A
// nil result means the chain does not fit the search horizon.
func (p *JobPlanner) PlanBackward(job *domain.Job, procedures []*domain.Procedure, targetCompletion time.Time) []domain.Entry {
	ordered := sortedBySequenceDesc(procedures)

	entries := make([]domain.Entry, 0, len(ordered))
	currentEnd := targetCompletion
	for _, procedure := range ordered {
		start, ok := p.finder.StartForDuration(procedure.PlannedDuration(), currentEnd)
		if !ok {
			return nil
		}
		entries = append(entries, domain.Entry{
			JobID:           job.ID,
			ProcedureID:     procedure.ID,
			Start:           start,
			End:             currentEnd,
			PlannedTime:     procedure.PlannedTime,
			PlannedManpower: procedure.PlannedManpower,
		})
		currentEnd = start
	}

	reverseEntries(entries)
	return entries
}

// PlanForward places the job's procedures in sequence order starting at or
// after earliestStart, avoiding occupied time in the conflict set. Unlike
// the backward chain, gaps between consecutive procedures are allowed:
// each procedure starts at the first free slot after its predecessor ends.
func (p *JobPlanner) PlanForward(job *domain.Job, procedures []*domain.Procedure, earliestStart time.Time, conflicts *domain.ConflictSet) []domain.Entry {
	ordered := sortedBySequenceAsc(procedures)
	maxBlock := p.finder.calendar.MaxBlockDuration()

	entries := make([]domain.Entry, 0, len(ordered))
	currentStart := earliestStart
	for _, procedure := range ordered {
		duration := procedure.PlannedDuration()

		var slot Slot
		var ok bool
		if duration > maxBlock {
			slot, ok = p.finder.FindForwardMultiday(duration, currentStart)
		} else {
			slot, ok = p.finder.FindForward(procedure.ID, duration, currentStart, conflicts)
		}
		if !ok {
			return nil
		}

		entries = append(entries, domain.Entry{
			JobID:           job.ID,
			ProcedureID:     procedure.ID,
			Start:           slot.Start,
			End:             slot.End,
			PlannedTime:     procedure.PlannedTime,
			PlannedManpower: procedure.PlannedManpower,
		})
		currentStart = slot.End
	}

	return entries
}

// PlanBackwardWithConflicts chains the job backwards from targetCompletion
// while steering around occupied time, letting a lower-priority job slip
// into gaps left by higher-priority work. When a procedure cannot be
// placed before the current end target, the search end retreats and the
// placement is retried a bounded number of times.
func (p *JobPlanner) PlanBackwardWithConflicts(job *domain.Job, procedures []*domain.Procedure, targetCompletion time.Time, conflicts *domain.ConflictSet) []domain.Entry {
	ordered := sortedBySequenceDesc(procedures)
	maxBlock := p.finder.calendar.MaxBlockDuration()

	entries := make([]domain.Entry, 0, len(ordered))
	currentEndTarget := targetCompletion
	for _, procedure := range ordered {
		duration := procedure.PlannedDuration()

		var slot Slot
		var ok bool
		searchEnd := currentEndTarget
		for attempt := 0; attempt < maxCompressAttempts; attempt++ {
			if duration > maxBlock {
				slot, ok = p.finder.FindBackwardMultiday(procedure.ID, duration, searchEnd, conflicts)
			} else {
				slot, ok = p.finder.FindBackward(procedure.ID, duration, searchEnd, conflicts)
			}
			if ok {
				break
			}
			searchEnd = searchEnd.Add(-compressRetreat)
		}
		if !ok {
			return nil
		}

		entries = append(entries, domain.Entry{
			JobID:           job.ID,
			ProcedureID:     procedure.ID,
			Start:           slot.Start,
			End:             slot.End,
			PlannedTime:     procedure.PlannedTime,
			PlannedManpower: procedure.PlannedManpower,
		})
		currentEndTarget = slot.Start
	}

	reverseEntries(entries)
	return entries
}

// sortedBySequenceAsc returns a copy in flow order; the input is never
// reordered.
func sortedBySequenceAsc(procedures []*domain.Procedure) []*domain.Procedure {
	sorted := make([]*domain.Procedure, len(procedures))
	copy(sorted, procedures)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })
	return sorted
}

// sortedBySequenceDesc returns a copy in reverse flow order.
func sortedBySequenceDesc(procedures []*domain.Procedure) []*domain.Procedure {
	sorted := make([]*domain.Procedure, len(procedures))
	copy(sorted, procedures)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Sequence > sorted[j].Sequence })
	return sorted
}

func reverseEntries(entries []domain.Entry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}
