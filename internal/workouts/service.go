package workouts

import (
	"context"
	"fmt"
	"strings"

	"synergy/internal/calendar"
	"synergy/internal/entries"
	"synergy/internal/oracle"
	"synergy/internal/store"
)

type Service struct {
	repo   *store.Repo[Exercise]
	oracle *oracle.Adapter
}

func NewService(repo *store.Repo[Exercise], o *oracle.Adapter) *Service {
	return &Service{repo: repo, oracle: o}
}

// NewRepo wraps a collection of exercises.
func NewRepo(coll store.Collection[Exercise], ids *store.IDGen) *store.Repo[Exercise] {
	return store.NewRepo(coll, ids, func(e *Exercise, id int64) { e.ID = id })
}

func (s *Service) List(ctx context.Context) ([]Exercise, error) {
	return s.repo.List(ctx)
}

// ListOn returns the exercises planned on day.
func (s *Service) ListOn(ctx context.Context, day calendar.DayKey) ([]Exercise, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	// Exercise dates are day keys already; no location applies.
	return entries.OnDay(all, day, nil), nil
}

// ListWeek returns the exercises of the Sunday-start week containing day.
func (s *Service) ListWeek(ctx context.Context, day calendar.DayKey) ([]Exercise, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return entries.InWeek(all, day, nil), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Exercise, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input CreateExerciseInput) (Exercise, error) {
	ex, err := build(input)
	if err != nil {
		return Exercise{}, err
	}
	return s.repo.Create(ctx, ex)
}

// BulkCreate stores all inputs or, when any is invalid, none of them.
func (s *Service) BulkCreate(ctx context.Context, inputs []CreateExerciseInput) ([]Exercise, error) {
	docs := make([]Exercise, len(inputs))
	for i, in := range inputs {
		ex, err := build(in)
		if err != nil {
			return nil, fmt.Errorf("exercise %d: %w", i, err)
		}
		docs[i] = ex
	}
	return s.repo.BulkCreate(ctx, docs)
}

func (s *Service) Update(ctx context.Context, id int64, p Patch) (Exercise, error) {
	if err := p.validate(); err != nil {
		return Exercise{}, err
	}
	return s.repo.Update(ctx, id, p.Fields())
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Propose asks the oracle for a plan. Nothing is stored.
func (s *Service) Propose(ctx context.Context, input ProposeInput) (oracle.WorkoutScheduleProposal, error) {
	anchor, err := calendar.ParseKey(input.Date)
	if err != nil {
		return oracle.WorkoutScheduleProposal{}, fmt.Errorf("%w: date must be YYYY-MM-DD", store.ErrValidation)
	}
	if strings.TrimSpace(input.Goal) == "" {
		return oracle.WorkoutScheduleProposal{}, fmt.Errorf("%w: goal is required", store.ErrValidation)
	}
	span := oracle.SpanAuto
	switch {
	case input.Weekly && input.SingleDay:
		return oracle.WorkoutScheduleProposal{}, fmt.Errorf("%w: weekly and singleDay are exclusive", store.ErrValidation)
	case input.Weekly:
		span = oracle.SpanWeek
	case input.SingleDay:
		span = oracle.SpanDay
	}
	return s.oracle.ProposeSchedule(ctx, input.Goal, anchor, span)
}

// Accept stores every exercise of a proposal, each on its own date, in a
// single bulk create.
func (s *Service) Accept(ctx context.Context, p oracle.WorkoutScheduleProposal) ([]Exercise, error) {
	planned, err := p.Expand()
	if err != nil {
		return nil, fmt.Errorf("%w: proposal: %v", store.ErrValidation, err)
	}
	inputs := make([]CreateExerciseInput, len(planned))
	for i, pe := range planned {
		inputs[i] = CreateExerciseInput{
			Name:          pe.Name,
			Details:       pe.Details,
			Time:          pe.Time,
			IsAIGenerated: true,
			Date:          pe.Date,
		}
	}
	return s.BulkCreate(ctx, inputs)
}

// Generate proposes a plan and stores it.
func (s *Service) Generate(ctx context.Context, input ProposeInput) ([]Exercise, error) {
	p, err := s.Propose(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.Accept(ctx, p)
}

func build(in CreateExerciseInput) (Exercise, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Exercise{}, fmt.Errorf("%w: name is required", store.ErrValidation)
	}
	if err := checkDate(in.Date); err != nil {
		return Exercise{}, err
	}
	ex := Exercise{
		Name:          name,
		Details:       in.Details,
		Time:          in.Time,
		Completed:     in.Completed,
		IsAIGenerated: in.IsAIGenerated,
		Date:          in.Date,
	}
	if ex.Details == "" && !ex.IsAIGenerated {
		ex.Details = DefaultDetails
	}
	if ex.Time == "" {
		ex.Time = oracle.DefaultExerciseTime
	}
	return ex, nil
}
