package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synergy/internal/calendar"
	"synergy/internal/oracle"
	"synergy/internal/store"
	"synergy/internal/store/memstore"
)

type fakeModel struct {
	reply string
	err   error
}

func (f *fakeModel) GenerateJSON(context.Context, oracle.Request) ([]byte, error) {
	return []byte(f.reply), f.err
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newService(m oracle.Model) *Service {
	repo := NewRepo(memstore.New[Exercise](store.Exercises), store.NewIDGen())
	return NewService(repo, oracle.New(m, oracle.Options{}, discard))
}

func weeklyReply() string {
	days := make([]string, 7)
	for i := range days {
		days[i] = fmt.Sprintf(`{"dayOffset":%d,"exercises":[{"name":"Day %d","details":"30 min"}]}`, i, i)
	}
	return `{"schedule":[` + strings.Join(days, ",") + `]}`
}

func TestCreateDefaults(t *testing.T) {
	svc := newService(&fakeModel{})
	ex, err := svc.Create(context.Background(), CreateExerciseInput{Name: "Yoga", Date: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, DefaultDetails, ex.Details)
	assert.Equal(t, "Anytime", ex.Time)
	assert.False(t, ex.Completed)
	assert.False(t, ex.IsAIGenerated)
}

func TestCreateRequiresDayOnlyDate(t *testing.T) {
	svc := newService(&fakeModel{})
	_, err := svc.Create(context.Background(), CreateExerciseInput{Name: "Yoga", Date: "2024-03-01T10:00:00Z"})
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestBulkCreateWeek(t *testing.T) {
	svc := newService(&fakeModel{})
	ctx := context.Background()
	anchor := calendar.DayKey{Year: 2024, Month: time.March, Day: 1}

	inputs := make([]CreateExerciseInput, 7)
	for i := range inputs {
		inputs[i] = CreateExerciseInput{Name: "Run", Date: anchor.AddDays(i).String(), IsAIGenerated: true}
	}
	created, err := svc.BulkCreate(ctx, inputs)
	require.NoError(t, err)
	require.Len(t, created, 7)

	ids := map[int64]bool{}
	dates := []string{}
	for _, ex := range created {
		ids[ex.ID] = true
		dates = append(dates, ex.Date)
	}
	assert.Len(t, ids, 7)
	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-03-05", "2024-03-06", "2024-03-07"}, dates)
}

func TestBulkCreateIsAllOrNothing(t *testing.T) {
	svc := newService(&fakeModel{})
	ctx := context.Background()

	_, err := svc.BulkCreate(ctx, []CreateExerciseInput{
		{Name: "Run", Date: "2024-03-01"},
		{Name: "", Date: "2024-03-02"},
	})
	assert.ErrorIs(t, err, store.ErrValidation)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGenerateWeeklyPlan(t *testing.T) {
	svc := newService(&fakeModel{reply: weeklyReply()})
	ctx := context.Background()

	created, err := svc.Generate(ctx, ProposeInput{Goal: "weekly split", Date: "2024-03-01", Weekly: true})
	require.NoError(t, err)
	require.Len(t, created, 7)
	for i, ex := range created {
		assert.Equal(t, calendar.DayKey{Year: 2024, Month: time.March, Day: 1 + i}.String(), ex.Date)
		assert.True(t, ex.IsAIGenerated)
		assert.Equal(t, "Anytime", ex.Time)
		assert.Equal(t, "30 min", ex.Details)
	}

	// 2024-03-03 is a Sunday, so the week of 03-04 holds offsets 2..6.
	week, err := svc.ListWeek(ctx, calendar.DayKey{Year: 2024, Month: time.March, Day: 4})
	require.NoError(t, err)
	assert.Len(t, week, 5)

	day, err := svc.ListOn(ctx, calendar.DayKey{Year: 2024, Month: time.March, Day: 7})
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, "Day 6", day[0].Name)
}

func TestGenerateRejectsOutOfSpanProposal(t *testing.T) {
	svc := newService(&fakeModel{reply: weeklyReply()})
	ctx := context.Background()

	_, err := svc.Generate(ctx, ProposeInput{Goal: "one workout", Date: "2024-03-01", SingleDay: true})
	assert.ErrorIs(t, err, oracle.ErrOracle)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "a failed proposal commits nothing")
}

func TestProposeValidates(t *testing.T) {
	svc := newService(&fakeModel{reply: weeklyReply()})
	ctx := context.Background()

	_, err := svc.Propose(ctx, ProposeInput{Goal: "x", Date: "03/01/2024"})
	assert.ErrorIs(t, err, store.ErrValidation)
	_, err = svc.Propose(ctx, ProposeInput{Goal: " ", Date: "2024-03-01"})
	assert.ErrorIs(t, err, store.ErrValidation)
	_, err = svc.Propose(ctx, ProposeInput{Goal: "x", Date: "2024-03-01", Weekly: true, SingleDay: true})
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestAcceptRejectsOffsetsOutsideWeek(t *testing.T) {
	svc := newService(&fakeModel{})
	ctx := context.Background()

	for _, offset := range []int{-1, 7, 1000000} {
		_, err := svc.Accept(ctx, oracle.WorkoutScheduleProposal{
			Anchor: "2024-03-01",
			Schedule: []oracle.WorkoutDay{
				{DayOffset: 0, Exercises: []oracle.ProposedExercise{{Name: "Run"}}},
				{DayOffset: offset, Exercises: []oracle.ProposedExercise{{Name: "Swim"}}},
			},
		})
		assert.ErrorIs(t, err, store.ErrValidation, "offset %d", offset)
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "a rejected proposal stores nothing")
}

func TestHandlers(t *testing.T) {
	h := NewHandler(newService(&fakeModel{reply: weeklyReply()}), discard)
	mux := http.NewServeMux()
	h.Register(mux)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	rec := do(http.MethodPost, "/api/exercises/propose", `{"goal":"push pull legs","date":"2024-03-01"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p oracle.WorkoutScheduleProposal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "2024-03-01", p.Anchor)
	assert.Len(t, p.Schedule, 7)

	rec = do(http.MethodPost, "/api/exercises/accept", rec.Body.String())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created []Exercise
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Len(t, created, 7)

	rec = do(http.MethodPost, "/api/exercises/accept", `{"anchor":"2024-03-01","schedule":[{"dayOffset":-3,"exercises":[{"name":"Row"}]}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodGet, "/api/exercises?date=2024-03-02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var onDay []Exercise
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &onDay))
	require.Len(t, onDay, 1)

	rec = do(http.MethodPut, fmt.Sprintf("/api/exercises/%d", onDay[0].ID), `{"completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"completed":true`)

	rec = do(http.MethodPost, "/api/exercises/bulk", `[{"name":"Swim","date":"2024-03-09"},{"name":"Bike","date":"2024-03-10"}]`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(http.MethodPost, "/api/exercises/bulk", `{"name":"Swim"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodDelete, fmt.Sprintf("/api/exercises/%d", onDay[0].ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGenerateOracleDown(t *testing.T) {
	h := NewHandler(newService(&fakeModel{err: errors.New("503 from upstream")}), discard)
	mux := http.NewServeMux()
	h.Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/exercises/generate", strings.NewReader(`{"goal":"run","date":"2024-03-01"}`)))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
