package queries

import (
	"context"
	"time"

	"github.com/taktline/taktline/internal/planning/domain"
)

// BoardEntryDTO is one scheduled slot with its job and procedure names
// joined in.
type BoardEntryDTO struct {
	EntryID         int64
	JobID           int64
	JobName         string
	ProcedureID     int64
	ProcedureName   string
	Sequence        int
	Start           time.Time
	End             time.Time
	PlannedTime     int
	PlannedManpower int
}

// JobBoardDTO groups one job's entries with its deadline outlook.
type JobBoardDTO struct {
	JobID            int64
	JobName          string
	DeadlineAt       time.Time
	CompletionTarget time.Time
	ProjectedEnd     time.Time
	AtRisk           bool
	Unplanned        bool
	Entries          []BoardEntryDTO
}

// ScheduleBoardDTO is the full planning board.
type ScheduleBoardDTO struct {
	GeneratedAt time.Time
	Jobs        []JobBoardDTO
}

// BoardCache caches the rendered full board between regenerations. Lookups
// and stores must never fail the query; implementations swallow their own
// errors.
type BoardCache interface {
	Get(ctx context.Context) (*ScheduleBoardDTO, bool)
	Set(ctx context.Context, board *ScheduleBoardDTO)
}

// GetScheduleBoardQuery contains the parameters for reading the board. A
// zero From and To means the whole schedule.
type GetScheduleBoardQuery struct {
	From time.Time
	To   time.Time
}

// GetScheduleBoardHandler handles the GetScheduleBoardQuery.
type GetScheduleBoardHandler struct {
	scheduleRepo  domain.ScheduleRepository
	jobRepo       domain.JobRepository
	procedureRepo domain.ProcedureRepository
	calendar      *domain.Calendar
	cache         BoardCache
}

// NewGetScheduleBoardHandler creates a new GetScheduleBoardHandler. The
// cache may be nil.
func NewGetScheduleBoardHandler(
	scheduleRepo domain.ScheduleRepository,
	jobRepo domain.JobRepository,
	procedureRepo domain.ProcedureRepository,
	calendar *domain.Calendar,
	cache BoardCache,
) *GetScheduleBoardHandler {
	return &GetScheduleBoardHandler{
		scheduleRepo:  scheduleRepo,
		jobRepo:       jobRepo,
		procedureRepo: procedureRepo,
		calendar:      calendar,
		cache:         cache,
	}
}

// Handle executes the GetScheduleBoardQuery. Only the full board is served
// from cache; windowed reads always hit the database.
func (h *GetScheduleBoardHandler) Handle(ctx context.Context, query GetScheduleBoardQuery) (*ScheduleBoardDTO, error) {
	full := query.From.IsZero() && query.To.IsZero()

	if full && h.cache != nil {
		if board, ok := h.cache.Get(ctx); ok {
			return board, nil
		}
	}

	board, err := h.build(ctx, query.From, query.To)
	if err != nil {
		return nil, err
	}

	if full && h.cache != nil {
		h.cache.Set(ctx, board)
	}
	return board, nil
}

// Refresh rebuilds the full board and primes the cache. Subscribers call it
// after a regeneration so the next read is warm.
func (h *GetScheduleBoardHandler) Refresh(ctx context.Context) (*ScheduleBoardDTO, error) {
	board, err := h.build(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	if h.cache != nil {
		h.cache.Set(ctx, board)
	}
	return board, nil
}

func (h *GetScheduleBoardHandler) build(ctx context.Context, from, to time.Time) (*ScheduleBoardDTO, error) {
	jobs, err := h.jobRepo.ListByDeadline(ctx)
	if err != nil {
		return nil, err
	}
	procedures, err := h.procedureRepo.ListBySequence(ctx)
	if err != nil {
		return nil, err
	}

	var entries []domain.Entry
	if from.IsZero() && to.IsZero() {
		entries, err = h.scheduleRepo.ListAll(ctx)
	} else {
		entries, err = h.scheduleRepo.ListBetween(ctx, from, to)
	}
	if err != nil {
		return nil, err
	}

	proceduresByID := make(map[int64]*domain.Procedure, len(procedures))
	for _, procedure := range procedures {
		proceduresByID[procedure.ID] = procedure
	}

	entriesByJob := make(map[int64][]domain.Entry, len(jobs))
	for _, entry := range entries {
		entriesByJob[entry.JobID] = append(entriesByJob[entry.JobID], entry)
	}

	board := &ScheduleBoardDTO{
		GeneratedAt: time.Now(),
		Jobs:        make([]JobBoardDTO, 0, len(jobs)),
	}
	for _, job := range jobs {
		board.Jobs = append(board.Jobs, h.toJobBoard(job, entriesByJob[job.ID], proceduresByID))
	}
	return board, nil
}

func (h *GetScheduleBoardHandler) toJobBoard(job *domain.Job, entries []domain.Entry, proceduresByID map[int64]*domain.Procedure) JobBoardDTO {
	dto := JobBoardDTO{
		JobID:            job.ID,
		JobName:          job.Name,
		DeadlineAt:       job.DeadlineAt(),
		CompletionTarget: h.calendar.CompletionTarget(job.DeadlineAt()),
		Unplanned:        len(entries) == 0,
		Entries:          make([]BoardEntryDTO, 0, len(entries)),
	}

	for _, entry := range entries {
		entryDTO := BoardEntryDTO{
			EntryID:         entry.ID,
			JobID:           entry.JobID,
			JobName:         job.Name,
			ProcedureID:     entry.ProcedureID,
			Start:           entry.Start,
			End:             entry.End,
			PlannedTime:     entry.PlannedTime,
			PlannedManpower: entry.PlannedManpower,
		}
		if procedure, ok := proceduresByID[entry.ProcedureID]; ok {
			entryDTO.ProcedureName = procedure.Name
			entryDTO.Sequence = procedure.Sequence
		}
		dto.Entries = append(dto.Entries, entryDTO)

		if entry.End.After(dto.ProjectedEnd) {
			dto.ProjectedEnd = entry.End
		}
	}

	dto.AtRisk = !dto.Unplanned && dto.ProjectedEnd.After(dto.CompletionTarget)
	return dto
}
