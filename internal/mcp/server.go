package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"synergy/internal/calendar"
	"synergy/internal/diet"
	"synergy/internal/notes"
	"synergy/internal/tasks"
	"synergy/internal/workouts"
)

// Services are the planner services the tools read from.
type Services struct {
	Tasks    *tasks.Service
	Workouts *workouts.Service
	Diet     *diet.Service
	Notes    *notes.Service

	// Clock and Location decide what "today" is when a tool gets no date.
	Clock    calendar.Clock
	Location *time.Location
}

// NewServer creates an MCP server with read-only tools over the planner
func NewServer(svc Services, version string) *server.MCPServer {
	if svc.Clock == nil {
		svc.Clock = calendar.SystemClock
	}
	if svc.Location == nil {
		svc.Location = time.Local
	}

	s := server.NewMCPServer(
		"Synergy",
		version,
		server.WithToolCapabilities(true),
	)

	// Tool: list_tasks - planner entries of one day
	s.AddTool(
		mcp.NewTool("list_tasks",
			mcp.WithDescription("List the planner tasks, meetings and cards of one day together with the day's completion rate."),
			mcp.WithString("date",
				mcp.Description("Day as YYYY-MM-DD (default: today)"),
			),
		),
		handleListTasks(svc),
	)

	// Tool: list_exercises - exercises of a day or a week
	s.AddTool(
		mcp.NewTool("list_exercises",
			mcp.WithDescription("List planned exercises for one day, or for the Sunday-start week containing a day."),
			mcp.WithString("date",
				mcp.Description("Day as YYYY-MM-DD (default: today)"),
			),
			mcp.WithBoolean("week",
				mcp.Description("Return the whole week containing the date instead of the single day"),
			),
		),
		handleListExercises(svc),
	)

	// Tool: diet_summary - daily nutrition totals
	s.AddTool(
		mcp.NewTool("diet_summary",
			mcp.WithDescription("Summarize the food logged on one day: calories, protein, carbs and fat, plus the items."),
			mcp.WithString("date",
				mcp.Description("Day as YYYY-MM-DD (default: today)"),
			),
		),
		handleDietSummary(svc),
	)

	// Tool: list_notes - note previews, newest first
	s.AddTool(
		mcp.NewTool("list_notes",
			mcp.WithDescription("List notes, newest first, each with a short preview. Use get_note for the full text."),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of notes to return (default: 20, max: 100)"),
			),
			mcp.WithString("category",
				mcp.Description("Optional: Filter by category name"),
			),
			mcp.WithString("query",
				mcp.Description("Optional: Only notes whose title or text contains this string"),
			),
		),
		handleListNotes(svc),
	)

	// Tool: get_note - Get a specific note by ID
	s.AddTool(
		mcp.NewTool("get_note",
			mcp.WithDescription("Get a specific note by its ID, rendered as plain text with one line per block."),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("The numeric note ID"),
			),
		),
		handleGetNote(svc),
	)

	return s
}

// NoteResult represents a note in tool responses
type NoteResult struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
	Date     string `json:"date"`
	Preview  string `json:"preview,omitempty"`
	Text     string `json:"text,omitempty"`
}

type taskDay struct {
	Stats tasks.DayStats `json:"stats"`
	Tasks []tasks.Task   `json:"tasks"`
}

type dietDay struct {
	Totals diet.Totals `json:"totals"`
	Items  []diet.Item `json:"items"`
}

func handleListTasks(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		day, err := dayArg(req, svc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		list, err := svc.Tasks.ListOn(ctx, day)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list tasks: %v", err)), nil
		}
		stats, err := svc.Tasks.Stats(ctx, day)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to compute task stats: %v", err)), nil
		}
		return jsonResult(taskDay{Stats: stats, Tasks: list})
	}
}

func handleListExercises(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		day, err := dayArg(req, svc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var list []workouts.Exercise
		if req.GetBool("week", false) {
			list, err = svc.Workouts.ListWeek(ctx, day)
		} else {
			list, err = svc.Workouts.ListOn(ctx, day)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list exercises: %v", err)), nil
		}
		return jsonResult(list)
	}
}

func handleDietSummary(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		day, err := dayArg(req, svc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		totals, err := svc.Diet.Summary(ctx, day)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to summarize diet: %v", err)), nil
		}
		items, err := svc.Diet.ListOn(ctx, day)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list diet items: %v", err)), nil
		}
		return jsonResult(dietDay{Totals: totals, Items: items})
	}
}

func handleListNotes(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 20)
		if limit <= 0 || limit > 100 {
			limit = 100
		}
		list, err := svc.Notes.List(ctx, notes.ListQuery{
			Category: req.GetString("category", ""),
			Query:    req.GetString("query", ""),
			Limit:    limit,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list notes: %v", err)), nil
		}

		results := make([]NoteResult, len(list))
		for i, n := range list {
			results[i] = NoteResult{
				ID:       n.ID,
				Title:    n.DisplayTitle(),
				Category: n.Category,
				Date:     n.Date,
				Preview:  n.Preview,
			}
		}
		return jsonResult(results)
	}
}

func handleGetNote(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireFloat("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		note, text, err := svc.Notes.PlainText(ctx, int64(id))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get note: %v", err)), nil
		}

		return jsonResult(NoteResult{
			ID:       note.ID,
			Title:    note.DisplayTitle(),
			Category: note.Category,
			Date:     note.Date,
			Text:     text,
		})
	}
}

// Helper functions

// dayArg reads the optional "date" argument, defaulting to today.
func dayArg(req mcp.CallToolRequest, svc Services) (calendar.DayKey, error) {
	raw := req.GetString("date", "")
	if raw == "" {
		return calendar.KeyOf(svc.Clock.Now().In(svc.Location)), nil
	}
	day, err := calendar.ParseKey(raw)
	if err != nil {
		return calendar.DayKey{}, fmt.Errorf("invalid 'date': expected YYYY-MM-DD")
	}
	return day, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
