package domain

import "time"

// Entry is one scheduled slot: a job occupying a procedure over a
// wall-clock span. Spans of multi-day placements include non-working time
// such as lunch breaks and nights; the working-time content of the span
// always equals the procedure's planned time.
type Entry struct {
	ID              int64
	JobID           int64
	ProcedureID     int64
	Start           time.Time
	End             time.Time
	PlannedTime     int
	PlannedManpower int
}

// Overlaps reports whether the span [start, end) strictly overlaps the
// entry. Touching intervals do not overlap.
func (e Entry) Overlaps(start, end time.Time) bool {
	return start.Before(e.End) && end.After(e.Start)
}

// ConflictSet indexes schedule entries by procedure for exclusivity
// checks. Each procedure is worked by a single team, so any two entries
// of the same procedure must not overlap in time. Entries of different
// procedures never conflict.
type ConflictSet struct {
	byProcedure map[int64][]Entry
}

// NewConflictSet returns an empty conflict set.
func NewConflictSet() *ConflictSet {
	return &ConflictSet{byProcedure: make(map[int64][]Entry)}
}

// Add records entries as occupied time.
func (s *ConflictSet) Add(entries ...Entry) {
	for _, e := range entries {
		s.byProcedure[e.ProcedureID] = append(s.byProcedure[e.ProcedureID], e)
	}
}

// Conflicts returns the entries of the given procedure that strictly
// overlap [start, end).
func (s *ConflictSet) Conflicts(procedureID int64, start, end time.Time) []Entry {
	var found []Entry
	for _, e := range s.byProcedure[procedureID] {
		if e.Overlaps(start, end) {
			found = append(found, e)
		}
	}
	return found
}

// HasConflict reports whether any entry of the procedure overlaps [start, end).
func (s *ConflictSet) HasConflict(procedureID int64, start, end time.Time) bool {
	for _, e := range s.byProcedure[procedureID] {
		if e.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// LatestEnd returns the latest end time over all entries of the procedure,
// or false when the procedure has none.
func (s *ConflictSet) LatestEnd(procedureID int64) (time.Time, bool) {
	entries := s.byProcedure[procedureID]
	if len(entries) == 0 {
		return time.Time{}, false
	}
	latest := entries[0].End
	for _, e := range entries[1:] {
		if e.End.After(latest) {
			latest = e.End
		}
	}
	return latest, true
}

// Len returns the number of entries in the set.
func (s *ConflictSet) Len() int {
	var n int
	for _, entries := range s.byProcedure {
		n += len(entries)
	}
	return n
}
