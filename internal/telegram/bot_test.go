package telegram

import (
	"strings"
	"testing"
	"time"

	"bodygoal/internal/artifact"
	"bodygoal/internal/engine"
)

func TestFormatPlanMarkdown(t *testing.T) {
	plan := artifact.FullPlanPayload{
		MealPlan: []artifact.MealEntry{
			{Name: "Oatmeal", Calories: 400, Description: "With berries"},
			{Name: "Chicken bowl", Calories: 700},
		},
		WorkoutPlan: []artifact.WorkoutEntry{
			{Name: "Jogging", Duration: 30, Description: "Easy pace"},
		},
	}

	t.Run("FreshPlan", func(t *testing.T) {
		out := formatPlanMarkdown(plan, false, time.Time{})
		for _, want := range []string{"Oatmeal", "400 kcal", "Chicken bowl", "Jogging", "30 min", "Easy pace"} {
			if !strings.Contains(out, want) {
				t.Errorf("Expected output to contain %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "generated") {
			t.Errorf("Fresh plan should not carry a generation timestamp:\n%s", out)
		}
	})

	t.Run("CachedPlanShowsAge", func(t *testing.T) {
		at := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
		out := formatPlanMarkdown(plan, true, at)
		if !strings.Contains(out, "2025-06-01 08:30") {
			t.Errorf("Expected cached plan to show generation time:\n%s", out)
		}
	})
}

func TestAppendSuggestions(t *testing.T) {
	t.Run("GeneratedResult", func(t *testing.T) {
		var sb strings.Builder
		appendSuggestions(&sb, artifact.TypeSuggestionMeals, engine.Result{
			Status: engine.StatusGenerated,
			Artifact: &artifact.Generated{
				Payload: []byte(`{"suggestions":["Prep lunches on Sunday"]}`),
			},
		})
		out := sb.String()
		if !strings.Contains(out, "Prep lunches on Sunday") {
			t.Errorf("Expected suggestion content:\n%s", out)
		}
		if strings.Contains(out, "general tips") {
			t.Errorf("Generated result should not carry the fallback note:\n%s", out)
		}
	})

	t.Run("FallbackResultIsMarked", func(t *testing.T) {
		var sb strings.Builder
		appendSuggestions(&sb, artifact.TypeSuggestionWorkouts, engine.Result{
			Status: engine.StatusFallback,
			Artifact: &artifact.Generated{
				Payload: []byte(`{"suggestions":["Move every day"]}`),
			},
		})
		out := sb.String()
		if !strings.Contains(out, "general tips") {
			t.Errorf("Expected fallback note:\n%s", out)
		}
	})

	t.Run("MissingArtifact", func(t *testing.T) {
		var sb strings.Builder
		appendSuggestions(&sb, artifact.TypeSuggestionOverview, engine.Result{Status: engine.StatusUnavailable})
		if !strings.Contains(sb.String(), "Unavailable") {
			t.Errorf("Expected unavailable marker:\n%s", sb.String())
		}
	})
}

func TestSuggestionTypeFromArg(t *testing.T) {
	tests := []struct {
		arg  string
		want artifact.Type
		ok   bool
	}{
		{"meals", artifact.TypeSuggestionMeals, true},
		{"Workouts", artifact.TypeSuggestionWorkouts, true},
		{"progress", artifact.TypeSuggestionProgress, true},
		{"overview", artifact.TypeSuggestionOverview, true},
		{"horoscope", "", false},
	}

	for _, tt := range tests {
		got, ok := suggestionTypeFromArg(tt.arg)
		if got != tt.want || ok != tt.ok {
			t.Errorf("suggestionTypeFromArg(%q) = (%q, %v), want (%q, %v)", tt.arg, got, ok, tt.want, tt.ok)
		}
	}
}
