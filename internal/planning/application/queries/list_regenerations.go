package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taktline/taktline/internal/planning/domain"
)

const defaultRegenerationLimit = 20

// RegenerationDTO is a data transfer object for regeneration audit records.
type RegenerationDTO struct {
	ID                  uuid.UUID
	TriggeredBy         string
	StartedAt           time.Time
	FinishedAt          time.Time
	Duration            time.Duration
	JobsPlanned         int
	EntriesWritten      int
	UnschedulableJobIDs []int64
	LateJobIDs          []int64
}

// ListRegenerationsQuery contains the parameters for listing regeneration
// history.
type ListRegenerationsQuery struct {
	Limit int
}

// ListRegenerationsHandler handles the ListRegenerationsQuery.
type ListRegenerationsHandler struct {
	logRepo domain.RegenerationLogRepository
}

// NewListRegenerationsHandler creates a new ListRegenerationsHandler.
func NewListRegenerationsHandler(logRepo domain.RegenerationLogRepository) *ListRegenerationsHandler {
	return &ListRegenerationsHandler{logRepo: logRepo}
}

// Handle executes the ListRegenerationsQuery, newest runs first.
func (h *ListRegenerationsHandler) Handle(ctx context.Context, query ListRegenerationsQuery) ([]RegenerationDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultRegenerationLimit
	}

	records, err := h.logRepo.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]RegenerationDTO, 0, len(records))
	for _, record := range records {
		dtos = append(dtos, RegenerationDTO{
			ID:                  record.ID,
			TriggeredBy:         record.TriggeredBy,
			StartedAt:           record.StartedAt,
			FinishedAt:          record.FinishedAt,
			Duration:            record.FinishedAt.Sub(record.StartedAt),
			JobsPlanned:         record.JobsPlanned,
			EntriesWritten:      record.EntriesWritten,
			UnschedulableJobIDs: record.UnschedulableJobIDs,
			LateJobIDs:          record.LateJobIDs,
		})
	}
	return dtos, nil
}
