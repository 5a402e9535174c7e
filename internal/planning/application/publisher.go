package application

import (
	"context"
	"time"
)

// CalendarEntry is a simplified schedule entry for calendar publication.
type CalendarEntry struct {
	EntryID       int64
	JobID         int64
	JobName       string
	ProcedureName string
	Sequence      int
	Start         time.Time
	End           time.Time
	Manpower      int
}

// PublishResult describes the outcome of a publication run.
type PublishResult struct {
	Created int
	Updated int
	Deleted int
	Failed  int
}

// SchedulePublisher pushes schedule entries into an external calendar.
type SchedulePublisher interface {
	Publish(ctx context.Context, entries []CalendarEntry) (*PublishResult, error)
}
