package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bodygoal/internal/artifact"
)

// ErrParse indicates the model's raw output was not parseable as JSON.
var ErrParse = errors.New("response not parseable")

// ErrShape indicates parseable output that does not match the expected
// shape for the artifact type.
var ErrShape = errors.New("response shape invalid")

const maxSuggestions = 3

// validate parses untrusted raw model output into a normalized payload for
// the given artifact type. It never panics and never returns partial
// content alongside an error: on failure the orchestrator substitutes
// fallback content instead.
func validate(raw string, typ artifact.Type) (json.RawMessage, error) {
	raw = stripCodeFence(raw)

	if typ == artifact.TypeFullPlan {
		return validateFullPlan(raw)
	}
	return validateSuggestions(raw)
}

// stripCodeFence removes an incidental Markdown code fence wrapping the
// structured text. Models are not contractually forbidden from adding one.
func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}

	raw = strings.TrimPrefix(raw, "```")
	// A language tag may follow the opening fence ("```json").
	if idx := strings.Index(raw, "\n"); idx >= 0 {
		raw = raw[idx+1:]
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}

type looseMealEntry struct {
	Name        string   `json:"name"`
	Calories    *float64 `json:"calories"`
	Description string   `json:"description"`
}

type looseWorkoutEntry struct {
	Name        string   `json:"name"`
	Duration    *float64 `json:"duration"`
	Description string   `json:"description"`
}

func validateFullPlan(raw string) (json.RawMessage, error) {
	var loose struct {
		MealPlan    []looseMealEntry    `json:"mealPlan"`
		WorkoutPlan []looseWorkoutEntry `json:"workoutPlan"`
	}
	if err := json.Unmarshal([]byte(raw), &loose); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	if len(loose.MealPlan) == 0 || len(loose.WorkoutPlan) == 0 {
		return nil, fmt.Errorf("%w: full plan requires non-empty mealPlan and workoutPlan", ErrShape)
	}

	// Malformed elements are dropped individually. A missing required
	// numeric field is never fabricated; a missing description is coerced
	// to the empty string by decoding.
	payload := artifact.FullPlanPayload{}
	for _, m := range loose.MealPlan {
		if m.Name == "" || m.Calories == nil || *m.Calories < 0 {
			continue
		}
		payload.MealPlan = append(payload.MealPlan, artifact.MealEntry{
			Name:        m.Name,
			Calories:    int(*m.Calories),
			Description: m.Description,
		})
	}
	for _, w := range loose.WorkoutPlan {
		if w.Name == "" || w.Duration == nil || *w.Duration < 0 {
			continue
		}
		payload.WorkoutPlan = append(payload.WorkoutPlan, artifact.WorkoutEntry{
			Name:        w.Name,
			Duration:    int(*w.Duration),
			Description: w.Description,
		})
	}

	if len(payload.MealPlan) == 0 {
		return nil, fmt.Errorf("%w: no well-formed meal entries", ErrShape)
	}
	if len(payload.WorkoutPlan) == 0 {
		return nil, fmt.Errorf("%w: no well-formed workout entries", ErrShape)
	}

	out, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode validated payload: %w", err)
	}
	return out, nil
}

func validateSuggestions(raw string) (json.RawMessage, error) {
	var elements []any
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		// Models routinely wrap the array in an object; tolerate the
		// documented key before giving up.
		var wrapped struct {
			Suggestions []any `json:"suggestions"`
		}
		if err2 := json.Unmarshal([]byte(raw), &wrapped); err2 != nil || wrapped.Suggestions == nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		elements = wrapped.Suggestions
	}

	payload := artifact.SuggestionPayload{}
	for _, el := range elements {
		s, ok := el.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		payload.Suggestions = append(payload.Suggestions, s)
		if len(payload.Suggestions) == maxSuggestions {
			break
		}
	}

	if len(payload.Suggestions) == 0 {
		return nil, fmt.Errorf("%w: no usable suggestion strings", ErrShape)
	}

	out, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode validated payload: %w", err)
	}
	return out, nil
}
