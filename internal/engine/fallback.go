package engine

import (
	"encoding/json"

	"bodygoal/internal/artifact"
)

// fallbackLibrary maps each suggestion category to hand-authored content
// served when generation or validation fails. Full plans have no static
// fallback: a plan without personalized numbers is not useful, so the
// orchestrator surfaces an unavailable state instead.
var fallbackLibrary = map[artifact.Type][]string{
	artifact.TypeSuggestionMeals: {
		"Plan your meals ahead so you are not deciding while hungry.",
		"Build each meal around a protein source and add vegetables.",
		"Keep water nearby; thirst is easy to mistake for hunger.",
	},
	artifact.TypeSuggestionWorkouts: {
		"Schedule workouts like appointments so they actually happen.",
		"Start with 20-30 minutes of movement you enjoy and build from there.",
		"Alternate harder days with lighter ones to recover properly.",
	},
	artifact.TypeSuggestionProgress: {
		"Weigh yourself at the same time of day for comparable numbers.",
		"Look at the weekly trend rather than any single day.",
		"Log your meals and workouts; what gets measured gets managed.",
	},
	artifact.TypeSuggestionOverview: {
		"Consistency beats intensity: a small daily effort adds up.",
		"Review yesterday briefly and pick one thing to do better today.",
	},
}

var genericFallback = []string{
	"Stay consistent with your plan today.",
	"Small daily habits add up to big results.",
}

// fallbackFor returns the static suggestion content for a category, or the
// generic set for an unrecognized one.
func fallbackFor(typ artifact.Type) []string {
	if content, ok := fallbackLibrary[typ]; ok {
		return content
	}
	return genericFallback
}

// fallbackPayload encodes the static content in the same shape a validated
// suggestion artifact carries, so presentation code handles both alike.
func fallbackPayload(typ artifact.Type) json.RawMessage {
	out, err := json.Marshal(artifact.SuggestionPayload{Suggestions: fallbackFor(typ)})
	if err != nil {
		// The library is static; this cannot fail at runtime.
		panic(err)
	}
	return out
}
