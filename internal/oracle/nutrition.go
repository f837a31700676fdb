package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"
)

// Source records how a nutrition estimate was obtained.
type Source string

const (
	SourceManual Source = "manual"
	SourceText   Source = "text"
	SourceImage  Source = "image"
)

// TimeLabel is the label diet items logged from this source carry.
func (s Source) TimeLabel() string {
	switch s {
	case SourceText:
		return "AI Calc"
	case SourceImage:
		return "AI Scan"
	}
	return "Manual"
}

func (s Source) Valid() bool {
	return s == SourceManual || s == SourceText || s == SourceImage
}

// ScannedFoodName names image estimates the model left unnamed.
const ScannedFoodName = "Scanned Food"

// NutritionEstimate holds non-negative whole-number macro values.
type NutritionEstimate struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	Protein  int    `json:"protein"`
	Carbs    int    `json:"carbs"`
	Fat      int    `json:"fat"`
	Source   Source `json:"source"`
}

var nutritionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":     {Type: genai.TypeString},
		"calories": {Type: genai.TypeInteger},
		"protein":  {Type: genai.TypeInteger},
		"carbs":    {Type: genai.TypeInteger},
		"fat":      {Type: genai.TypeInteger},
	},
	Required: []string{"name", "calories", "protein", "carbs", "fat"},
}

// rawNutrition is the model's answer before normalization. Pointers tell a
// missing field from a zero.
type rawNutrition struct {
	Name     *string  `json:"name"`
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
}

// EstimateFromText asks for the nutrition of a described food.
func (a *Adapter) EstimateFromText(ctx context.Context, query string) (NutritionEstimate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return NutritionEstimate{}, fmt.Errorf("%w: empty query", ErrOracle)
	}
	prompt := fmt.Sprintf(`Identify nutritional info for: %q.
Return a JSON object with keys: name, calories, protein, carbs, fat.
Rules:
1. Estimate values for a standard serving size if not specified.
2. Use integer values.
3. Ensure values are not 0 unless the food actually has 0 (like water).`, query)

	raw, err := a.generate(ctx, "estimate from text", Request{Prompt: prompt, Schema: nutritionSchema})
	if err != nil {
		return NutritionEstimate{}, err
	}
	return NormalizeNutrition(raw, query, SourceText)
}

// EstimateFromImage downscales the picture and asks for the nutrition of
// the food on it.
func (a *Adapter) EstimateFromImage(ctx context.Context, image []byte) (NutritionEstimate, error) {
	jpeg, err := PrepareImage(image, a.maxDim)
	if err != nil {
		return NutritionEstimate{}, err
	}
	prompt := `Identify the main food in this image.
Return a JSON object with keys: name, calories, protein, carbs, fat.
Rules: Estimate exact values for the visible portion. Use rounded integers.`

	raw, err := a.generate(ctx, "estimate from image", Request{
		Prompt: prompt,
		Image:  &InlineImage{MIMEType: "image/jpeg", Data: jpeg},
		Schema: nutritionSchema,
	})
	if err != nil {
		return NutritionEstimate{}, err
	}
	return NormalizeNutrition(raw, ScannedFoodName, SourceImage)
}

// NormalizeNutrition parses a model answer. Numbers are rounded and floored
// at zero, missing numbers become zero and a missing or blank name becomes
// defaultName. Output that is not a JSON object fails with ErrOracle.
func NormalizeNutrition(raw []byte, defaultName string, src Source) (NutritionEstimate, error) {
	if !isObject(raw) {
		return NutritionEstimate{}, fmt.Errorf("%w: nutrition estimate is not an object", ErrOracle)
	}
	var r rawNutrition
	if err := json.Unmarshal(raw, &r); err != nil {
		return NutritionEstimate{}, fmt.Errorf("%w: unreadable nutrition estimate: %v", ErrOracle, err)
	}
	est := NutritionEstimate{
		Name:     defaultName,
		Calories: wholeNonNegative(r.Calories),
		Protein:  wholeNonNegative(r.Protein),
		Carbs:    wholeNonNegative(r.Carbs),
		Fat:      wholeNonNegative(r.Fat),
		Source:   src,
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) != "" {
		est.Name = strings.TrimSpace(*r.Name)
	}
	return est, nil
}

func wholeNonNegative(v *float64) int {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	return int(min(max(math.Round(*v), 0), math.MaxInt32))
}

func isObject(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
