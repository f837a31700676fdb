package tasks

import (
	"fmt"
	"strings"

	"synergy/internal/store"
)

// Type tags how a planner entry is displayed.
type Type string

const (
	TypeTask    Type = "task"
	TypeMeeting Type = "meeting"
	TypeCard    Type = "card"
)

func (t Type) valid() bool {
	return t == TypeTask || t == TypeMeeting || t == TypeCard
}

// DefaultTime is the time label of entries without a fixed slot.
const DefaultTime = "Anytime"

// Task is a planner entry. Date is an ISO-8601 timestamp.
type Task struct {
	ID          int64  `bson:"id" json:"id"`
	Text        string `bson:"text" json:"text"`
	Completed   bool   `bson:"completed" json:"completed"`
	Description string `bson:"description" json:"description"`
	Date        string `bson:"date" json:"date"`
	Time        string `bson:"time" json:"time"`
	Type        Type   `bson:"type,omitempty" json:"type,omitempty"`
}

func (t Task) EntryID() int64    { return t.ID }
func (t Task) EntryDate() string { return t.Date }

// CreateTaskInput is the input for creating a task
type CreateTaskInput struct {
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Type        Type   `json:"type"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Text        *string `json:"text"`
	Completed   *bool   `json:"completed"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Type        *Type   `json:"type"`
}

// Fields returns the set fields keyed by their stored names.
func (p Patch) Fields() map[string]any {
	f := map[string]any{}
	if p.Text != nil {
		f["text"] = *p.Text
	}
	if p.Completed != nil {
		f["completed"] = *p.Completed
	}
	if p.Description != nil {
		f["description"] = *p.Description
	}
	if p.Date != nil {
		f["date"] = *p.Date
	}
	if p.Time != nil {
		f["time"] = *p.Time
	}
	if p.Type != nil {
		f["type"] = *p.Type
	}
	return f
}

func (p Patch) validate(checkDate func(string) error) error {
	if p.Text != nil && strings.TrimSpace(*p.Text) == "" {
		return fmt.Errorf("%w: text must not be empty", store.ErrValidation)
	}
	if p.Type != nil && !p.Type.valid() {
		return fmt.Errorf("%w: unknown task type %q", store.ErrValidation, *p.Type)
	}
	if p.Date != nil {
		if err := checkDate(*p.Date); err != nil {
			return err
		}
	}
	return nil
}

// DayStats summarises the tasks of one day.
type DayStats struct {
	Date      string  `json:"date"`
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Rate      float64 `json:"rate"`
}
