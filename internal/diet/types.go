package diet

import (
	"fmt"
	"strings"

	"synergy/internal/oracle"
	"synergy/internal/store"
)

// Item is one logged food. Date is an ISO-8601 timestamp; Time is a
// display label such as "Breakfast" or "AI Scan".
type Item struct {
	ID       int64  `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Calories int    `bson:"calories" json:"calories"`
	Protein  int    `bson:"protein" json:"protein"`
	Carbs    int    `bson:"carbs" json:"carbs"`
	Fat      int    `bson:"fat" json:"fat"`
	Time     string `bson:"time" json:"time"`
	Date     string `bson:"date" json:"date"`
}

func (i Item) EntryID() int64    { return i.ID }
func (i Item) EntryDate() string { return i.Date }

// CreateItemInput is the input for logging a food by hand.
type CreateItemInput struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	Protein  int    `json:"protein"`
	Carbs    int    `json:"carbs"`
	Fat      int    `json:"fat"`
	Time     string `json:"time"`
	Date     string `json:"date"`
}

// LogEstimateInput confirms an estimate into the diary.
type LogEstimateInput struct {
	Estimate oracle.NutritionEstimate `json:"estimate"`
	Date     string                   `json:"date"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name     *string `json:"name"`
	Calories *int    `json:"calories"`
	Protein  *int    `json:"protein"`
	Carbs    *int    `json:"carbs"`
	Fat      *int    `json:"fat"`
	Time     *string `json:"time"`
	Date     *string `json:"date"`
}

func (p Patch) Fields() map[string]any {
	f := map[string]any{}
	if p.Name != nil {
		f["name"] = *p.Name
	}
	if p.Calories != nil {
		f["calories"] = *p.Calories
	}
	if p.Protein != nil {
		f["protein"] = *p.Protein
	}
	if p.Carbs != nil {
		f["carbs"] = *p.Carbs
	}
	if p.Fat != nil {
		f["fat"] = *p.Fat
	}
	if p.Time != nil {
		f["time"] = *p.Time
	}
	if p.Date != nil {
		f["date"] = *p.Date
	}
	return f
}

func (p Patch) validate(checkDate func(string) error) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", store.ErrValidation)
	}
	for field, v := range map[string]*int{"calories": p.Calories, "protein": p.Protein, "carbs": p.Carbs, "fat": p.Fat} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: %s must not be negative", store.ErrValidation, field)
		}
	}
	if p.Date != nil {
		return checkDate(*p.Date)
	}
	return nil
}

// Totals sums the macros of one day.
type Totals struct {
	Date     string `json:"date"`
	Items    int    `json:"items"`
	Calories int    `json:"calories"`
	Protein  int    `json:"protein"`
	Carbs    int    `json:"carbs"`
	Fat      int    `json:"fat"`
}
