package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"synergy/internal/calendar"
	"synergy/internal/entries"
	"synergy/internal/store"
)

type Service struct {
	repo *store.Repo[Task]
	loc  *time.Location
}

// NewService buckets tasks into days as seen in loc.
func NewService(repo *store.Repo[Task], loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, loc: loc}
}

// NewRepo wraps a collection of tasks.
func NewRepo(coll store.Collection[Task], ids *store.IDGen) *store.Repo[Task] {
	return store.NewRepo(coll, ids, func(t *Task, id int64) { t.ID = id })
}

func (s *Service) List(ctx context.Context) ([]Task, error) {
	return s.repo.List(ctx)
}

// ListOn returns the tasks dated on day.
func (s *Service) ListOn(ctx context.Context, day calendar.DayKey) ([]Task, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return entries.OnDay(all, day, s.loc), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Task, error) {
	return s.repo.Get(ctx, id)
}

// Create creates a new task
func (s *Service) Create(ctx context.Context, input CreateTaskInput) (Task, error) {
	if strings.TrimSpace(input.Text) == "" {
		return Task{}, fmt.Errorf("%w: text is required", store.ErrValidation)
	}
	if err := s.checkDate(input.Date); err != nil {
		return Task{}, err
	}
	if input.Type == "" {
		input.Type = TypeTask
	}
	if !input.Type.valid() {
		return Task{}, fmt.Errorf("%w: unknown task type %q", store.ErrValidation, input.Type)
	}
	if input.Time == "" {
		input.Time = DefaultTime
	}

	return s.repo.Create(ctx, Task{
		Text:        input.Text,
		Completed:   input.Completed,
		Description: input.Description,
		Date:        input.Date,
		Time:        input.Time,
		Type:        input.Type,
	})
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (Task, error) {
	if err := p.validate(s.checkDate); err != nil {
		return Task{}, err
	}
	return s.repo.Update(ctx, id, p.Fields())
}

// Toggle flips the completion flag.
func (s *Service) Toggle(ctx context.Context, id int64) (Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	done := !t.Completed
	return s.repo.Update(ctx, id, Patch{Completed: &done}.Fields())
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Stats returns the completion rate of the tasks dated on day. A day
// without tasks has rate 0.
func (s *Service) Stats(ctx context.Context, day calendar.DayKey) (DayStats, error) {
	todays, err := s.ListOn(ctx, day)
	if err != nil {
		return DayStats{}, err
	}
	st := DayStats{Date: day.String(), Total: len(todays)}
	for _, t := range todays {
		if t.Completed {
			st.Completed++
		}
	}
	if st.Total > 0 {
		st.Rate = float64(st.Completed) / float64(st.Total)
	}
	return st, nil
}

func (s *Service) checkDate(date string) error {
	if _, err := entries.KeyOfDate(date, s.loc); err != nil {
		return fmt.Errorf("%w: date: %v", store.ErrValidation, err)
	}
	return nil
}
