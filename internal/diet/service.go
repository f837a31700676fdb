package diet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"synergy/internal/calendar"
	"synergy/internal/entries"
	"synergy/internal/oracle"
	"synergy/internal/store"
)

type Service struct {
	repo   *store.Repo[Item]
	oracle *oracle.Adapter
	loc    *time.Location
}

func NewService(repo *store.Repo[Item], o *oracle.Adapter, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, oracle: o, loc: loc}
}

// NewRepo wraps a collection of diet items.
func NewRepo(coll store.Collection[Item], ids *store.IDGen) *store.Repo[Item] {
	return store.NewRepo(coll, ids, func(it *Item, id int64) { it.ID = id })
}

func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.repo.List(ctx)
}

// ListOn returns the items logged on day.
func (s *Service) ListOn(ctx context.Context, day calendar.DayKey) ([]Item, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return entries.OnDay(all, day, s.loc), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	return s.repo.Get(ctx, id)
}

// Create logs a food entered by hand.
func (s *Service) Create(ctx context.Context, input CreateItemInput) (Item, error) {
	item := Item{
		Name:     strings.TrimSpace(input.Name),
		Calories: input.Calories,
		Protein:  input.Protein,
		Carbs:    input.Carbs,
		Fat:      input.Fat,
		Time:     input.Time,
		Date:     input.Date,
	}
	if item.Time == "" {
		item.Time = oracle.SourceManual.TimeLabel()
	}
	if err := s.validate(item); err != nil {
		return Item{}, err
	}
	return s.repo.Create(ctx, item)
}

func (s *Service) Update(ctx context.Context, id int64, p Patch) (Item, error) {
	if err := p.validate(s.checkDate); err != nil {
		return Item{}, err
	}
	return s.repo.Update(ctx, id, p.Fields())
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Summary totals the items logged on day.
func (s *Service) Summary(ctx context.Context, day calendar.DayKey) (Totals, error) {
	items, err := s.ListOn(ctx, day)
	if err != nil {
		return Totals{}, err
	}
	t := Totals{Date: day.String(), Items: len(items)}
	for _, it := range items {
		t.Calories += it.Calories
		t.Protein += it.Protein
		t.Carbs += it.Carbs
		t.Fat += it.Fat
	}
	return t, nil
}

// Estimate asks the oracle about a described food. Nothing is stored.
func (s *Service) Estimate(ctx context.Context, query string) (oracle.NutritionEstimate, error) {
	return s.oracle.EstimateFromText(ctx, query)
}

// Scan asks the oracle about a food photo. Nothing is stored.
func (s *Service) Scan(ctx context.Context, image []byte) (oracle.NutritionEstimate, error) {
	return s.oracle.EstimateFromImage(ctx, image)
}

// LogEstimate stores a confirmed estimate, labelled by how it was made.
func (s *Service) LogEstimate(ctx context.Context, input LogEstimateInput) (Item, error) {
	est := input.Estimate
	if est.Source == "" {
		est.Source = oracle.SourceManual
	}
	if !est.Source.Valid() {
		return Item{}, fmt.Errorf("%w: unknown estimate source %q", store.ErrValidation, est.Source)
	}
	name := strings.TrimSpace(est.Name)
	if name == "" && est.Source == oracle.SourceImage {
		name = oracle.ScannedFoodName
	}
	item := Item{
		Name:     name,
		Calories: est.Calories,
		Protein:  est.Protein,
		Carbs:    est.Carbs,
		Fat:      est.Fat,
		Time:     est.Source.TimeLabel(),
		Date:     input.Date,
	}
	if err := s.validate(item); err != nil {
		return Item{}, err
	}
	return s.repo.Create(ctx, item)
}

func (s *Service) validate(it Item) error {
	if it.Name == "" {
		return fmt.Errorf("%w: name is required", store.ErrValidation)
	}
	if it.Calories < 0 || it.Protein < 0 || it.Carbs < 0 || it.Fat < 0 {
		return fmt.Errorf("%w: nutrition values must not be negative", store.ErrValidation)
	}
	return s.checkDate(it.Date)
}

func (s *Service) checkDate(date string) error {
	if _, err := entries.KeyOfDate(date, s.loc); err != nil {
		return fmt.Errorf("%w: date: %v", store.ErrValidation, err)
	}
	return nil
}
