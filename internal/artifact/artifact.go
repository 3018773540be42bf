package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrStore indicates a persistence read or write failure. It is fatal for
// the request it occurs in and must not be confused with a generation
// failure.
var ErrStore = errors.New("artifact store failure")

// Type identifies the kind of generated artifact cached for a user.
type Type string

const (
	TypeFullPlan           Type = "full_plan"
	TypeSuggestionMeals    Type = "suggestion_meals"
	TypeSuggestionWorkouts Type = "suggestion_workouts"
	TypeSuggestionProgress Type = "suggestion_progress"
	TypeSuggestionOverview Type = "suggestion_overview"
)

// SuggestionTypes lists every suggestion artifact type, in the order the
// dashboard tabs present them.
var SuggestionTypes = []Type{
	TypeSuggestionMeals,
	TypeSuggestionWorkouts,
	TypeSuggestionProgress,
	TypeSuggestionOverview,
}

// Valid reports whether t is a known artifact type.
func (t Type) Valid() bool {
	switch t {
	case TypeFullPlan, TypeSuggestionMeals, TypeSuggestionWorkouts, TypeSuggestionProgress, TypeSuggestionOverview:
		return true
	}
	return false
}

// IsSuggestion reports whether t is one of the suggestion types.
func (t Type) IsSuggestion() bool {
	return t.Valid() && t != TypeFullPlan
}

// Category returns the human-readable suggestion category used in prompts
// and the fallback library.
func (t Type) Category() string {
	switch t {
	case TypeSuggestionMeals:
		return "meal and nutrition"
	case TypeSuggestionWorkouts:
		return "workout and exercise"
	case TypeSuggestionProgress:
		return "progress tracking and weight management"
	case TypeSuggestionOverview:
		return "overview and motivation"
	}
	return string(t)
}

// Generated is a cached artifact: one row per (user, type) pair, replaced
// in place on every successful regeneration.
type Generated struct {
	UserID      string
	Type        Type
	Payload     json.RawMessage
	GeneratedAt time.Time
}

// MealEntry is a single meal in a full plan.
type MealEntry struct {
	Name        string `json:"name"`
	Calories    int    `json:"calories"`
	Description string `json:"description"`
}

// WorkoutEntry is a single exercise in a full plan.
type WorkoutEntry struct {
	Name        string `json:"name"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
}

// FullPlanPayload is the structured content of a full plan artifact. Both
// sequences are non-empty on a validated artifact.
type FullPlanPayload struct {
	MealPlan    []MealEntry    `json:"mealPlan"`
	WorkoutPlan []WorkoutEntry `json:"workoutPlan"`
}

// SuggestionPayload is the structured content of a suggestion artifact:
// 1-3 short non-empty strings after validation.
type SuggestionPayload struct {
	Suggestions []string `json:"suggestions"`
}

// FullPlan decodes the payload of a full plan artifact.
func (g *Generated) FullPlan() (FullPlanPayload, error) {
	var p FullPlanPayload
	if err := json.Unmarshal(g.Payload, &p); err != nil {
		return FullPlanPayload{}, fmt.Errorf("failed to decode full plan payload: %w", err)
	}
	return p, nil
}

// Suggestions decodes the payload of a suggestion artifact.
func (g *Generated) Suggestions() (SuggestionPayload, error) {
	var p SuggestionPayload
	if err := json.Unmarshal(g.Payload, &p); err != nil {
		return SuggestionPayload{}, fmt.Errorf("failed to decode suggestion payload: %w", err)
	}
	return p, nil
}

// Store is the persistence contract the engine depends on. Get returns
// (nil, nil) when no artifact exists for the pair.
type Store interface {
	Get(ctx context.Context, userID string, typ Type) (*Generated, error)
	Upsert(ctx context.Context, g Generated) error
}
