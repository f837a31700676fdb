package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"

	"synergy/internal/calendar"
)

// Span bounds the day offsets a proposal may use.
type Span int

const (
	// SpanAuto lets the model pick a single workout or a weekly plan from
	// the wording of the goal.
	SpanAuto Span = iota
	// SpanDay asks for one workout on the anchor date (offset 0).
	SpanDay
	// SpanWeek asks for a seven day plan (offsets 0 to 6).
	SpanWeek
)

// MaxDayOffset is the last offset of a weekly plan.
const MaxDayOffset = 6

// DefaultExerciseTime labels exercises without a time slot.
const DefaultExerciseTime = "Anytime"

type ProposedExercise struct {
	Name    string `json:"name"`
	Details string `json:"details"`
	Time    string `json:"time"`
}

// WorkoutDay lists the exercises planned DayOffset days after the anchor.
type WorkoutDay struct {
	DayOffset int                `json:"dayOffset"`
	Exercises []ProposedExercise `json:"exercises"`
}

// WorkoutScheduleProposal is a plan anchored at a calendar day. Offsets
// need not be sorted or contiguous.
type WorkoutScheduleProposal struct {
	Anchor   string       `json:"anchor"`
	Schedule []WorkoutDay `json:"schedule"`
}

// PlannedExercise is one exercise of a proposal placed on its date.
type PlannedExercise struct {
	Date    string
	Name    string
	Details string
	Time    string
}

// Expand places every proposed exercise on anchor + its day offset, in
// proposal order. The anchor must be a "YYYY-MM-DD" day key and every
// offset must lie in 0..MaxDayOffset.
func (p WorkoutScheduleProposal) Expand() ([]PlannedExercise, error) {
	anchor, err := calendar.ParseKey(p.Anchor)
	if err != nil {
		return nil, fmt.Errorf("anchor: %w", err)
	}
	for _, day := range p.Schedule {
		if day.DayOffset < 0 || day.DayOffset > MaxDayOffset {
			return nil, fmt.Errorf("day offset %d outside 0..%d", day.DayOffset, MaxDayOffset)
		}
	}
	var out []PlannedExercise
	for _, day := range p.Schedule {
		date := anchor.AddDays(day.DayOffset).String()
		for _, ex := range day.Exercises {
			t := ex.Time
			if strings.TrimSpace(t) == "" {
				t = DefaultExerciseTime
			}
			out = append(out, PlannedExercise{Date: date, Name: ex.Name, Details: ex.Details, Time: t})
		}
	}
	return out, nil
}

var scheduleSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"schedule": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"dayOffset": {Type: genai.TypeNumber},
					"exercises": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"name":    {Type: genai.TypeString},
								"details": {Type: genai.TypeString},
								"time":    {Type: genai.TypeString},
							},
						},
					},
				},
			},
		},
	},
	Required: []string{"schedule"},
}

type rawSchedule struct {
	Schedule []struct {
		DayOffset *float64 `json:"dayOffset"`
		Exercises []struct {
			Name    string `json:"name"`
			Details string `json:"details"`
			Time    string `json:"time"`
		} `json:"exercises"`
	} `json:"schedule"`
}

// ProposeSchedule asks for a workout plan towards goal starting at anchor.
func (a *Adapter) ProposeSchedule(ctx context.Context, goal string, anchor calendar.DayKey, span Span) (WorkoutScheduleProposal, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return WorkoutScheduleProposal{}, fmt.Errorf("%w: empty goal", ErrOracle)
	}
	weekday := anchor.Time(nil).Weekday()

	var scope string
	switch span {
	case SpanDay:
		scope = `- Generate a single workout for dayOffset 0 only.`
	case SpanWeek:
		scope = `- Generate a schedule for 7 days (dayOffset 0 to 6).`
	default:
		scope = `- If the user asks for a "7 day plan", "weekly split", or implies multiple days (e.g. "push pull legs"), generate a schedule for 7 days (dayOffset 0 to 6).
- If the user asks for a single workout, generate only for dayOffset 0.`
	}
	prompt := fmt.Sprintf(`Generate a workout routine based on the user's goal: %q.
Context: The plan should start from %s.

IMPORTANT:
%s
- "dayOffset" 0 is the starting day, 1 is the day after, etc.

Return a JSON object with this structure:
{"schedule": [{"dayOffset": number, "exercises": [{"name": "string", "details": "string", "time": "string"}]}]}`,
		goal, weekday, scope)

	raw, err := a.generate(ctx, "propose schedule", Request{Prompt: prompt, Schema: scheduleSchema})
	if err != nil {
		return WorkoutScheduleProposal{}, err
	}
	return NormalizeSchedule(raw, anchor, span)
}

// NormalizeSchedule parses a model answer into a proposal. Offsets are
// rounded to whole days; a missing offset means 0. The whole answer is
// rejected with ErrOracle when it is unreadable, holds no exercise, names
// an exercise with a blank name or uses an offset outside the span.
func NormalizeSchedule(raw []byte, anchor calendar.DayKey, span Span) (WorkoutScheduleProposal, error) {
	if !isObject(raw) {
		return WorkoutScheduleProposal{}, fmt.Errorf("%w: schedule is not an object", ErrOracle)
	}
	var r rawSchedule
	if err := json.Unmarshal(raw, &r); err != nil {
		return WorkoutScheduleProposal{}, fmt.Errorf("%w: unreadable schedule: %v", ErrOracle, err)
	}

	maxOffset := MaxDayOffset
	if span == SpanDay {
		maxOffset = 0
	}

	p := WorkoutScheduleProposal{Anchor: anchor.String(), Schedule: []WorkoutDay{}}
	total := 0
	for _, d := range r.Schedule {
		offset := 0
		if d.DayOffset != nil {
			if math.IsNaN(*d.DayOffset) {
				return WorkoutScheduleProposal{}, fmt.Errorf("%w: invalid day offset", ErrOracle)
			}
			offset = int(math.Round(*d.DayOffset))
		}
		if offset < 0 || offset > maxOffset {
			return WorkoutScheduleProposal{}, fmt.Errorf("%w: day offset %d outside 0..%d", ErrOracle, offset, maxOffset)
		}

		day := WorkoutDay{DayOffset: offset, Exercises: []ProposedExercise{}}
		for _, ex := range d.Exercises {
			name := strings.TrimSpace(ex.Name)
			if name == "" {
				return WorkoutScheduleProposal{}, fmt.Errorf("%w: exercise without a name on day %d", ErrOracle, offset)
			}
			day.Exercises = append(day.Exercises, ProposedExercise{
				Name:    name,
				Details: strings.TrimSpace(ex.Details),
				Time:    strings.TrimSpace(ex.Time),
			})
		}
		total += len(day.Exercises)
		p.Schedule = append(p.Schedule, day)
	}
	if total == 0 {
		return WorkoutScheduleProposal{}, fmt.Errorf("%w: schedule has no exercises", ErrOracle)
	}
	return p, nil
}
