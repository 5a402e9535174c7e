package services

import (
	"time"

	"github.com/taktline/taktline/internal/planning/domain"
)

const (
	// singleDayHorizonDays bounds the single-block searches.
	singleDayHorizonDays = 365
	// multidayHorizonDays bounds the multi-day searches, which retry from a
	// shifted pivot on every failed assembly.
	multidayHorizonDays = 30
	// compositeHorizonDays bounds StartForDuration.
	compositeHorizonDays = 60
)

// Slot is a proposed placement: a wall-clock span for one procedure of one
// job. Multi-day slots include non-working time between their segments.
type Slot struct {
	Start time.Time
	End   time.Time
}

// SlotFinder searches the working calendar for free placements. All
// searches honor single-team exclusivity through the conflict set passed
// in; entries of other procedures never block a placement.
type SlotFinder struct {
	calendar *domain.Calendar
}

// NewSlotFinder creates a slot finder over the given calendar.
func NewSlotFinder(calendar *domain.Calendar) *SlotFinder {
	return &SlotFinder{calendar: calendar}
}

// FindBackward returns the latest slot of the given duration that ends at
// or before the pivot and fits inside a single working block. On a
// conflict the pivot retreats to the earliest conflicting start.
func (f *SlotFinder) FindBackward(procedureID int64, duration time.Duration, pivot time.Time, conflicts *domain.ConflictSet) (Slot, bool) {
	cur := pivot
	limitDay := dayOf(pivot).AddDate(0, 0, -singleDayHorizonDays)

	for !dayOf(cur).Before(limitDay) {
		if !f.calendar.IsWorkingDay(cur) {
			cur = f.endOfPrevWorkingDay(cur)
			continue
		}

		blocks := f.calendar.WorkingBlocks(cur)
		moved := false
		for i := len(blocks) - 1; i >= 0; i-- {
			b := blocks[i]
			if !b.Start.Before(cur) {
				continue // block lies at or after the pivot
			}
			effectiveEnd := earlierOf(b.End, cur)
			if effectiveEnd.Sub(b.Start) >= duration {
				end := effectiveEnd
				start := end.Add(-duration)
				found := conflicts.Conflicts(procedureID, start, end)
				if len(found) == 0 {
					return Slot{Start: start, End: end}, true
				}
				cur = earliestStart(found)
			} else if i == 0 {
				cur = f.endOfPrevWorkingDay(cur)
			} else {
				cur = blocks[i-1].End
			}
			moved = true
			break
		}
		if !moved {
			cur = f.endOfPrevWorkingDay(cur)
		}
	}
	return Slot{}, false
}

// FindForward returns the earliest slot of the given duration that starts
// at or after the pivot and fits inside a single working block. On a
// conflict the pivot advances to the latest conflicting end.
func (f *SlotFinder) FindForward(procedureID int64, duration time.Duration, pivot time.Time, conflicts *domain.ConflictSet) (Slot, bool) {
	cur := pivot
	limitDay := dayOf(pivot).AddDate(0, 0, singleDayHorizonDays)

	for !dayOf(cur).After(limitDay) {
		if !f.calendar.IsWorkingDay(cur) {
			cur = f.startOfNextWorkingDay(cur)
			continue
		}

		blocks := f.calendar.WorkingBlocks(cur)
		moved := false
		for i, b := range blocks {
			if !b.End.After(cur) {
				continue // block already behind the pivot
			}
			effectiveStart := laterOf(b.Start, cur)
			if b.End.Sub(effectiveStart) >= duration {
				start := effectiveStart
				end := start.Add(duration)
				found := conflicts.Conflicts(procedureID, start, end)
				if len(found) == 0 {
					return Slot{Start: start, End: end}, true
				}
				cur = latestEnd(found)
			} else if i == len(blocks)-1 {
				cur = f.startOfNextWorkingDay(cur)
			} else {
				cur = blocks[i+1].Start
			}
			moved = true
			break
		}
		if !moved {
			cur = f.startOfNextWorkingDay(cur)
		}
	}
	return Slot{}, false
}

// FindBackwardMultiday returns the latest placement ending at or before
// the pivot whose working-time content equals the duration, assembled from
// whole and partial blocks across days. The returned slot spans from the
// earliest consumed segment to the latest one; nights, lunches and Sundays
// inside the span carry no working time. Every failed assembly retreats
// the pivot by one hour.
func (f *SlotFinder) FindBackwardMultiday(procedureID int64, duration time.Duration, pivot time.Time, conflicts *domain.ConflictSet) (Slot, bool) {
	limitDay := dayOf(pivot).AddDate(0, 0, -multidayHorizonDays)

	for attempt := pivot; !dayOf(attempt).Before(limitDay); attempt = attempt.Add(-time.Hour) {
		if slot, ok := f.assembleBackward(procedureID, duration, attempt, limitDay, conflicts); ok {
			return slot, true
		}
	}
	return Slot{}, false
}

// assembleBackward consumes blocks latest to earliest until the duration
// is covered or the horizon day is reached.
func (f *SlotFinder) assembleBackward(procedureID int64, duration time.Duration, attemptEnd, limitDay time.Time, conflicts *domain.ConflictSet) (Slot, bool) {
	remaining := duration
	var segments []Slot
	checkEnd := attemptEnd

	for remaining > 0 {
		if !f.calendar.IsWorkingDay(checkEnd) {
			checkEnd = f.endOfPrevWorkingDay(checkEnd)
			continue
		}

		blocks := f.calendar.WorkingBlocks(checkEnd)
		for i := len(blocks) - 1; i >= 0 && remaining > 0; i-- {
			b := blocks[i]
			if b.End.After(checkEnd) {
				continue
			}
			effectiveEnd := earlierOf(b.End, checkEnd)
			available := effectiveEnd.Sub(b.Start)
			if available <= 0 {
				continue
			}
			use := minDuration(available, remaining)
			segStart := effectiveEnd.Add(-use)

			if found := conflicts.Conflicts(procedureID, segStart, effectiveEnd); len(found) > 0 {
				earliest := earliestStart(found)
				if !earliest.After(b.Start) {
					continue // whole block occupied
				}
				effectiveEnd = earliest
				available = effectiveEnd.Sub(b.Start)
				if available <= 0 {
					continue
				}
				use = minDuration(available, remaining)
				segStart = effectiveEnd.Add(-use)
			}

			segments = append(segments, Slot{Start: segStart, End: segStart.Add(use)})
			remaining -= use
			checkEnd = segStart
		}

		if remaining > 0 {
			if !dayOf(checkEnd).After(limitDay) {
				break
			}
			checkEnd = f.endOfPrevWorkingDay(checkEnd)
		}
	}

	if remaining > 0 || len(segments) == 0 {
		return Slot{}, false
	}
	// segments were collected latest first
	return Slot{Start: segments[len(segments)-1].Start, End: segments[0].End}, true
}

// FindForwardMultiday returns the earliest placement starting at or after
// the pivot whose working-time content equals the duration. It performs no
// conflict checks: callers use it only after advancing the pivot past all
// occupied time for the job's chain.
func (f *SlotFinder) FindForwardMultiday(duration time.Duration, pivot time.Time) (Slot, bool) {
	limitDay := dayOf(pivot).AddDate(0, 0, multidayHorizonDays)

	for attempt := pivot; !dayOf(attempt).After(limitDay); attempt = attempt.Add(time.Hour) {
		remaining := duration
		var segments []Slot
		checkStart := attempt

		for remaining > 0 {
			if !f.calendar.IsWorkingDay(checkStart) {
				checkStart = f.startOfNextWorkingDay(checkStart)
				continue
			}

			blocks := f.calendar.WorkingBlocks(checkStart)
			for _, b := range blocks {
				if remaining <= 0 {
					break
				}
				effectiveStart := laterOf(b.Start, checkStart)
				if !effectiveStart.Before(b.End) {
					continue
				}
				use := minDuration(b.End.Sub(effectiveStart), remaining)
				segments = append(segments, Slot{Start: effectiveStart, End: effectiveStart.Add(use)})
				remaining -= use
				checkStart = b.End
			}

			if remaining > 0 {
				if !dayOf(checkStart).Before(limitDay) {
					break
				}
				checkStart = f.startOfNextWorkingDay(checkStart)
			}
		}

		if remaining <= 0 && len(segments) > 0 {
			return Slot{Start: segments[0].Start, End: segments[len(segments)-1].End}, true
		}
	}
	return Slot{}, false
}

// StartForDuration returns the start instant such that the working time
// between it and targetEnd equals exactly the given duration. The search
// is conflict-free; callers verify exclusivity afterwards. A zero duration
// yields targetEnd itself.
func (f *SlotFinder) StartForDuration(duration time.Duration, targetEnd time.Time) (time.Time, bool) {
	if duration <= 0 {
		return targetEnd, true
	}

	remaining := duration
	currentEnd := targetEnd
	limitDay := dayOf(targetEnd).AddDate(0, 0, -compositeHorizonDays)
	var start time.Time

	for remaining > 0 && !dayOf(currentEnd).Before(limitDay) {
		if !f.calendar.IsWorkingDay(currentEnd) {
			currentEnd = f.endOfPrevWorkingDay(currentEnd)
			continue
		}

		blocks := f.calendar.WorkingBlocks(currentEnd)
		for i := len(blocks) - 1; i >= 0 && remaining > 0; i-- {
			b := blocks[i]
			if !b.Start.Before(currentEnd) {
				continue
			}
			effectiveEnd := earlierOf(b.End, currentEnd)
			available := effectiveEnd.Sub(b.Start)
			if available <= 0 {
				continue
			}
			use := minDuration(available, remaining)
			start = effectiveEnd.Add(-use)
			remaining -= use
			currentEnd = start
		}

		if remaining > 0 {
			currentEnd = f.endOfPrevWorkingDay(currentEnd)
		}
	}

	if remaining > 0 {
		return time.Time{}, false
	}
	return start, true
}

// endOfPrevWorkingDay returns the end of the last block of the working day
// before t.
func (f *SlotFinder) endOfPrevWorkingDay(t time.Time) time.Time {
	blocks := f.calendar.WorkingBlocks(f.calendar.PrevWorkingDay(t))
	return blocks[len(blocks)-1].End
}

// startOfNextWorkingDay returns the start of the first block of the
// working day after t.
func (f *SlotFinder) startOfNextWorkingDay(t time.Time) time.Time {
	blocks := f.calendar.WorkingBlocks(f.calendar.NextWorkingDay(t))
	return blocks[0].Start
}

func dayOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func earliestStart(entries []domain.Entry) time.Time {
	earliest := entries[0].Start
	for _, e := range entries[1:] {
		if e.Start.Before(earliest) {
			earliest = e.Start
		}
	}
	return earliest
}

func latestEnd(entries []domain.Entry) time.Time {
	latest := entries[0].End
	for _, e := range entries[1:] {
		if e.End.After(latest) {
			latest = e.End
		}
	}
	return latest
}
