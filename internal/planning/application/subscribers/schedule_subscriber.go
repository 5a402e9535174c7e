package subscribers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taktline/taktline/internal/planning/application"
	"github.com/taktline/taktline/internal/planning/application/queries"
	"github.com/taktline/taktline/internal/planning/domain"
	"github.com/taktline/taktline/internal/shared/infrastructure/eventbus"
)

// BoardRefresher rebuilds the schedule board and re-primes its cache.
type BoardRefresher interface {
	Refresh(ctx context.Context) (*queries.ScheduleBoardDTO, error)
}

// ScheduleSubscriber listens for regeneration events, refreshes the board
// cache and pushes the upcoming schedule window to the external calendar.
type ScheduleSubscriber struct {
	board     BoardRefresher
	publisher application.SchedulePublisher
	window    time.Duration
	logger    *slog.Logger
	enabled   bool
}

// NewScheduleSubscriber creates a new schedule subscriber. The publisher may
// be nil when calendar publishing is not configured; window limits how far
// ahead entries are pushed (zero means no limit).
func NewScheduleSubscriber(
	board BoardRefresher,
	publisher application.SchedulePublisher,
	window time.Duration,
	logger *slog.Logger,
) *ScheduleSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleSubscriber{
		board:     board,
		publisher: publisher,
		window:    window,
		logger:    logger,
		enabled:   true,
	}
}

// SetEnabled enables or disables the subscriber.
func (s *ScheduleSubscriber) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// EventTypes returns the event types this subscriber handles.
func (s *ScheduleSubscriber) EventTypes() []string {
	return []string{
		domain.RoutingKeyScheduleRegenerated,
	}
}

// Handle processes a planning event.
func (s *ScheduleSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	if !s.enabled {
		s.logger.Debug("schedule subscriber disabled, skipping event",
			"routing_key", event.RoutingKey,
		)
		return nil
	}

	switch event.RoutingKey {
	case domain.RoutingKeyScheduleRegenerated:
		return s.handleScheduleRegenerated(ctx, event)
	default:
		s.logger.Warn("unknown event type",
			"routing_key", event.RoutingKey,
		)
		return nil
	}
}

// ScheduleRegeneratedPayload is the payload for schedule.regenerated events.
type ScheduleRegeneratedPayload struct {
	RegenerationID      uuid.UUID `json:"regeneration_id"`
	TriggeredBy         string    `json:"triggered_by"`
	JobsPlanned         int       `json:"jobs_planned"`
	EntriesWritten      int       `json:"entries_written"`
	UnschedulableJobIDs []int64   `json:"unschedulable_job_ids"`
	LateJobIDs          []int64   `json:"late_job_ids"`
}

func (s *ScheduleSubscriber) handleScheduleRegenerated(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload ScheduleRegeneratedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		s.logger.Error("failed to unmarshal schedule regenerated payload",
			"error", err,
		)
		return nil // Don't fail the event
	}

	board, err := s.board.Refresh(ctx)
	if err != nil {
		s.logger.Error("failed to refresh schedule board",
			"regeneration_id", payload.RegenerationID,
			"error", err,
		)
		return nil // Don't fail the event
	}

	s.logger.Info("refreshed schedule board",
		"regeneration_id", payload.RegenerationID,
		"triggered_by", payload.TriggeredBy,
		"jobs", len(board.Jobs),
	)

	if s.publisher == nil {
		s.logger.Debug("calendar publisher not configured, skipping push",
			"regeneration_id", payload.RegenerationID,
		)
		return nil
	}

	entries := s.upcomingEntries(board)
	result, err := s.publisher.Publish(ctx, entries)
	if err != nil {
		s.logger.Error("failed to publish schedule to calendar",
			"regeneration_id", payload.RegenerationID,
			"error", err,
		)
		return nil // Don't fail the event
	}

	s.logger.Info("published schedule to calendar",
		"regeneration_id", payload.RegenerationID,
		"entries", len(entries),
		"created", result.Created,
		"updated", result.Updated,
		"deleted", result.Deleted,
	)

	return nil
}

// upcomingEntries flattens the board into calendar entries, keeping only
// those that end after now and start inside the window.
func (s *ScheduleSubscriber) upcomingEntries(board *queries.ScheduleBoardDTO) []application.CalendarEntry {
	now := time.Now()
	var cutoff time.Time
	if s.window > 0 {
		cutoff = now.Add(s.window)
	}

	var entries []application.CalendarEntry
	for _, job := range board.Jobs {
		for _, entry := range job.Entries {
			if !entry.End.After(now) {
				continue
			}
			if !cutoff.IsZero() && entry.Start.After(cutoff) {
				continue
			}
			entries = append(entries, application.CalendarEntry{
				EntryID:       entry.EntryID,
				JobID:         entry.JobID,
				JobName:       entry.JobName,
				ProcedureName: entry.ProcedureName,
				Sequence:      entry.Sequence,
				Start:         entry.Start,
				End:           entry.End,
				Manpower:      entry.PlannedManpower,
			})
		}
	}
	return entries
}
