package queries

import (
	"context"
	"time"

	"github.com/taktline/taktline/internal/planning/domain"
)

// JobDTO is a data transfer object for jobs.
type JobDTO struct {
	ID           int64
	Name         string
	Description  string
	DeadlineDate time.Time
	DeadlineTime time.Duration
	DeadlineAt   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListJobsQuery contains the parameters for listing jobs.
type ListJobsQuery struct{}

// ListJobsHandler handles the ListJobsQuery.
type ListJobsHandler struct {
	jobRepo domain.JobRepository
}

// NewListJobsHandler creates a new ListJobsHandler.
func NewListJobsHandler(jobRepo domain.JobRepository) *ListJobsHandler {
	return &ListJobsHandler{jobRepo: jobRepo}
}

// Handle executes the ListJobsQuery. Jobs come back in planning priority
// order, earliest deadline first.
func (h *ListJobsHandler) Handle(ctx context.Context, query ListJobsQuery) ([]JobDTO, error) {
	jobs, err := h.jobRepo.ListByDeadline(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]JobDTO, 0, len(jobs))
	for _, job := range jobs {
		dtos = append(dtos, JobDTO{
			ID:           job.ID,
			Name:         job.Name,
			Description:  job.Description,
			DeadlineDate: job.DeadlineDate,
			DeadlineTime: job.DeadlineTime,
			DeadlineAt:   job.DeadlineAt(),
			CreatedAt:    job.CreatedAt,
			UpdatedAt:    job.UpdatedAt,
		})
	}
	return dtos, nil
}
