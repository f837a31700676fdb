package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synergy/internal/calendar"
	"synergy/internal/diet"
	"synergy/internal/notes"
	"synergy/internal/oracle"
	"synergy/internal/store"
	"synergy/internal/store/memstore"
	"synergy/internal/tasks"
	"synergy/internal/workouts"
)

func newServices(t *testing.T) Services {
	t.Helper()
	ids := store.NewIDGen()
	adapter := oracle.New(oracle.Unconfigured{}, oracle.Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	clock := calendar.ClockFunc(func() time.Time { return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC) })

	return Services{
		Tasks:    tasks.NewService(tasks.NewRepo(memstore.New[tasks.Task](store.Todos), ids), time.UTC),
		Workouts: workouts.NewService(workouts.NewRepo(memstore.New[workouts.Exercise](store.Exercises), ids), adapter),
		Diet:     diet.NewService(diet.NewRepo(memstore.New[diet.Item](store.DietItems), ids), adapter, time.UTC),
		Notes:    notes.NewService(notes.NewRepo(memstore.New[notes.Note](store.Notes), ids), clock),
		Clock:    clock,
		Location: time.UTC,
	}
}

func call(t *testing.T, h server.ToolHandlerFunc, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestListTasksDefaultsToToday(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	_, err := svc.Tasks.Create(ctx, tasks.CreateTaskInput{Text: "Standup", Date: "2024-03-01T09:00:00Z", Completed: true})
	require.NoError(t, err)
	_, err = svc.Tasks.Create(ctx, tasks.CreateTaskInput{Text: "Review", Date: "2024-03-01T15:00:00Z"})
	require.NoError(t, err)
	_, err = svc.Tasks.Create(ctx, tasks.CreateTaskInput{Text: "Later", Date: "2024-03-02T09:00:00Z"})
	require.NoError(t, err)

	res := call(t, handleListTasks(svc), nil)
	require.False(t, res.IsError)

	var got taskDay
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.Len(t, got.Tasks, 2)
	assert.Equal(t, 2, got.Stats.Total)
	assert.Equal(t, 1, got.Stats.Completed)

	res = call(t, handleListTasks(svc), map[string]any{"date": "March 2"})
	assert.True(t, res.IsError)
}

func TestListExercisesWeek(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	for _, d := range []string{"2024-02-25", "2024-03-01", "2024-03-02", "2024-03-03"} {
		_, err := svc.Workouts.Create(ctx, workouts.CreateExerciseInput{Name: "Run", Date: d})
		require.NoError(t, err)
	}

	var day, week []workouts.Exercise
	require.NoError(t, json.Unmarshal([]byte(text(t, call(t, handleListExercises(svc), map[string]any{"date": "2024-03-01"}))), &day))
	require.NoError(t, json.Unmarshal([]byte(text(t, call(t, handleListExercises(svc), map[string]any{"date": "2024-03-01", "week": true}))), &week))
	assert.Len(t, day, 1)
	assert.Len(t, week, 3)
}

func TestDietSummary(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	_, err := svc.Diet.Create(ctx, diet.CreateItemInput{Name: "Oats", Calories: 300, Protein: 10, Date: "2024-03-01T08:00:00Z"})
	require.NoError(t, err)
	_, err = svc.Diet.Create(ctx, diet.CreateItemInput{Name: "Soup", Calories: 200, Protein: 5, Date: "2024-03-01T19:00:00Z"})
	require.NoError(t, err)

	var got dietDay
	require.NoError(t, json.Unmarshal([]byte(text(t, call(t, handleDietSummary(svc), nil))), &got))
	assert.Equal(t, 500, got.Totals.Calories)
	assert.Equal(t, 15, got.Totals.Protein)
	assert.Len(t, got.Items, 2)
}

func TestNotesTools(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	_, err := svc.Notes.Create(ctx, notes.CreateNoteInput{Title: "First", Content: "alpha"})
	require.NoError(t, err)
	n, err := svc.Notes.Create(ctx, notes.CreateNoteInput{
		Title:   "Budget",
		Content: `[{"id":"a","type":"text","content":"hello"},{"id":"b","type":"table","content":[["a","b"]]}]`,
	})
	require.NoError(t, err)

	var list []NoteResult
	require.NoError(t, json.Unmarshal([]byte(text(t, call(t, handleListNotes(svc), map[string]any{"limit": 1}))), &list))
	require.Len(t, list, 1)
	assert.Equal(t, n.ID, list[0].ID)
	assert.Equal(t, "hello [Rich Media]", list[0].Preview)

	var got NoteResult
	require.NoError(t, json.Unmarshal([]byte(text(t, call(t, handleGetNote(svc), map[string]any{"id": float64(n.ID)}))), &got))
	assert.Equal(t, "Budget", got.Title)
	assert.Equal(t, "hello\n[table]\na | b", got.Text)

	res := call(t, handleGetNote(svc), map[string]any{"id": float64(123)})
	assert.True(t, res.IsError)

	res = call(t, handleGetNote(svc), nil)
	assert.True(t, res.IsError)
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer(newServices(t), "test")
	resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"list_tasks", "list_exercises", "diet_summary", "list_notes", "get_note"} {
		assert.Contains(t, string(raw), `"name":"`+name+`"`)
	}
}
