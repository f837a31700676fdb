package workouts

import (
	"fmt"
	"strings"

	"synergy/internal/calendar"
	"synergy/internal/store"
)

// DefaultDetails describes exercises added by hand without details.
const DefaultDetails = "Custom"

// Exercise is one planned exercise. Unlike other entries its Date is a
// day-only "YYYY-MM-DD" string.
type Exercise struct {
	ID            int64  `bson:"id" json:"id"`
	Name          string `bson:"name" json:"name"`
	Details       string `bson:"details" json:"details"`
	Time          string `bson:"time" json:"time"`
	Completed     bool   `bson:"completed" json:"completed"`
	IsAIGenerated bool   `bson:"isAiGenerated" json:"isAiGenerated"`
	Date          string `bson:"date" json:"date"`
}

func (e Exercise) EntryID() int64    { return e.ID }
func (e Exercise) EntryDate() string { return e.Date }

// CreateExerciseInput is the input for creating an exercise
type CreateExerciseInput struct {
	Name          string `json:"name"`
	Details       string `json:"details"`
	Time          string `json:"time"`
	Completed     bool   `json:"completed"`
	IsAIGenerated bool   `json:"isAiGenerated"`
	Date          string `json:"date"`
}

// ProposeInput asks for a workout plan. Weekly forces a seven day plan,
// SingleDay a single workout; with neither the goal's wording decides.
type ProposeInput struct {
	Goal      string `json:"goal"`
	Date      string `json:"date"`
	Weekly    bool   `json:"weekly"`
	SingleDay bool   `json:"singleDay"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name          *string `json:"name"`
	Details       *string `json:"details"`
	Time          *string `json:"time"`
	Completed     *bool   `json:"completed"`
	IsAIGenerated *bool   `json:"isAiGenerated"`
	Date          *string `json:"date"`
}

func (p Patch) Fields() map[string]any {
	f := map[string]any{}
	if p.Name != nil {
		f["name"] = *p.Name
	}
	if p.Details != nil {
		f["details"] = *p.Details
	}
	if p.Time != nil {
		f["time"] = *p.Time
	}
	if p.Completed != nil {
		f["completed"] = *p.Completed
	}
	if p.IsAIGenerated != nil {
		f["isAiGenerated"] = *p.IsAIGenerated
	}
	if p.Date != nil {
		f["date"] = *p.Date
	}
	return f
}

func (p Patch) validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", store.ErrValidation)
	}
	if p.Date != nil {
		return checkDate(*p.Date)
	}
	return nil
}

func checkDate(date string) error {
	if _, err := calendar.ParseKey(date); err != nil {
		return fmt.Errorf("%w: exercise date must be YYYY-MM-DD", store.ErrValidation)
	}
	return nil
}
