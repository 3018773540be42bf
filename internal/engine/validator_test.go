package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"bodygoal/internal/artifact"
)

func decodeFullPlan(t *testing.T, raw json.RawMessage) artifact.FullPlanPayload {
	t.Helper()
	var p artifact.FullPlanPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("Failed to decode validated payload: %v", err)
	}
	return p
}

func decodeSuggestions(t *testing.T, raw json.RawMessage) artifact.SuggestionPayload {
	t.Helper()
	var p artifact.SuggestionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("Failed to decode validated payload: %v", err)
	}
	return p
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"NoFence", `{"a": 1}`, `{"a": 1}`},
		{"PlainFence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"JSONFence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"LeadingWhitespace", "  \n```json\n{\"a\": 1}\n```\n  ", `{"a": 1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripCodeFence(tc.in); got != tc.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestValidateFullPlan(t *testing.T) {
	t.Run("WellFormed", func(t *testing.T) {
		raw := `{
			"mealPlan": [
				{"name": "Oatmeal", "calories": 350, "description": "With berries"},
				{"name": "Chicken salad", "calories": 550, "description": "Grilled"}
			],
			"workoutPlan": [
				{"name": "Jogging", "duration": 30, "description": "Easy pace"}
			]
		}`
		out, err := validate(raw, artifact.TypeFullPlan)
		if err != nil {
			t.Fatalf("Expected valid plan, got %v", err)
		}
		p := decodeFullPlan(t, out)
		if len(p.MealPlan) != 2 || len(p.WorkoutPlan) != 1 {
			t.Errorf("Unexpected entry counts: %+v", p)
		}
	})

	t.Run("FencedOutput", func(t *testing.T) {
		raw := "```json\n{\"mealPlan\": [{\"name\": \"Eggs\", \"calories\": 300, \"description\": \"\"}], \"workoutPlan\": [{\"name\": \"Squats\", \"duration\": 15, \"description\": \"\"}]}\n```"
		if _, err := validate(raw, artifact.TypeFullPlan); err != nil {
			t.Fatalf("Expected fenced output to validate, got %v", err)
		}
	})

	t.Run("NotJSON", func(t *testing.T) {
		_, err := validate("not json at all", artifact.TypeFullPlan)
		if !errors.Is(err, ErrParse) {
			t.Errorf("Expected ErrParse, got %v", err)
		}
	})

	t.Run("MissingWorkoutPlan", func(t *testing.T) {
		raw := `{"mealPlan": [{"name": "Eggs", "calories": 300, "description": ""}]}`
		_, err := validate(raw, artifact.TypeFullPlan)
		if !errors.Is(err, ErrShape) {
			t.Errorf("Expected ErrShape, got %v", err)
		}
	})

	t.Run("MalformedElementDropped", func(t *testing.T) {
		// One workout entry lacks duration; it is dropped, the rest survive.
		raw := `{
			"mealPlan": [{"name": "Eggs", "calories": 300, "description": ""}],
			"workoutPlan": [
				{"name": "Mystery exercise", "description": "no duration"},
				{"name": "Jogging", "duration": 30, "description": "Easy pace"}
			]
		}`
		out, err := validate(raw, artifact.TypeFullPlan)
		if err != nil {
			t.Fatalf("Expected plan to survive a single malformed entry, got %v", err)
		}
		p := decodeFullPlan(t, out)
		if len(p.WorkoutPlan) != 1 || p.WorkoutPlan[0].Name != "Jogging" {
			t.Errorf("Expected only the well-formed workout entry, got %+v", p.WorkoutPlan)
		}
	})

	t.Run("AllElementsMalformed", func(t *testing.T) {
		raw := `{
			"mealPlan": [{"name": "Eggs", "calories": 300, "description": ""}],
			"workoutPlan": [
				{"name": "Mystery exercise", "description": "no duration"},
				{"name": "", "duration": 30, "description": "no name"}
			]
		}`
		_, err := validate(raw, artifact.TypeFullPlan)
		if !errors.Is(err, ErrShape) {
			t.Errorf("Expected ErrShape when an array ends up empty, got %v", err)
		}
	})

	t.Run("NegativeCaloriesDropped", func(t *testing.T) {
		raw := `{
			"mealPlan": [
				{"name": "Antifood", "calories": -100, "description": ""},
				{"name": "Eggs", "calories": 300, "description": ""}
			],
			"workoutPlan": [{"name": "Jogging", "duration": 30, "description": ""}]
		}`
		out, err := validate(raw, artifact.TypeFullPlan)
		if err != nil {
			t.Fatalf("Expected valid plan, got %v", err)
		}
		p := decodeFullPlan(t, out)
		if len(p.MealPlan) != 1 || p.MealPlan[0].Name != "Eggs" {
			t.Errorf("Expected negative-calorie entry to be dropped, got %+v", p.MealPlan)
		}
	})

	t.Run("MissingDescriptionCoerced", func(t *testing.T) {
		raw := `{
			"mealPlan": [{"name": "Eggs", "calories": 300}],
			"workoutPlan": [{"name": "Jogging", "duration": 30}]
		}`
		out, err := validate(raw, artifact.TypeFullPlan)
		if err != nil {
			t.Fatalf("Expected valid plan, got %v", err)
		}
		p := decodeFullPlan(t, out)
		if p.MealPlan[0].Description != "" {
			t.Errorf("Expected missing description to become empty string, got %q", p.MealPlan[0].Description)
		}
	})
}

func TestValidateSuggestions(t *testing.T) {
	typ := artifact.TypeSuggestionMeals

	t.Run("BareArray", func(t *testing.T) {
		out, err := validate(`["Drink more water", "Add a protein source to lunch"]`, typ)
		if err != nil {
			t.Fatalf("Expected valid suggestions, got %v", err)
		}
		p := decodeSuggestions(t, out)
		if len(p.Suggestions) != 2 {
			t.Errorf("Expected 2 suggestions, got %+v", p.Suggestions)
		}
	})

	t.Run("WrappedObject", func(t *testing.T) {
		out, err := validate(`{"suggestions": ["Take a short walk after dinner"]}`, typ)
		if err != nil {
			t.Fatalf("Expected wrapped array to validate, got %v", err)
		}
		p := decodeSuggestions(t, out)
		if len(p.Suggestions) != 1 {
			t.Errorf("Expected 1 suggestion, got %+v", p.Suggestions)
		}
	})

	t.Run("NotJSON", func(t *testing.T) {
		_, err := validate("not json at all", typ)
		if !errors.Is(err, ErrParse) {
			t.Errorf("Expected ErrParse, got %v", err)
		}
	})

	t.Run("NonStringElementsFiltered", func(t *testing.T) {
		out, err := validate(`["Eat more fiber", 42, {"tip": "nope"}, "Plan meals ahead"]`, typ)
		if err != nil {
			t.Fatalf("Expected valid suggestions, got %v", err)
		}
		p := decodeSuggestions(t, out)
		if len(p.Suggestions) != 2 {
			t.Errorf("Expected non-string elements filtered, got %+v", p.Suggestions)
		}
	})

	t.Run("TruncatedToThree", func(t *testing.T) {
		out, err := validate(`["one", "two", "three", "four", "five"]`, typ)
		if err != nil {
			t.Fatalf("Expected valid suggestions, got %v", err)
		}
		p := decodeSuggestions(t, out)
		if len(p.Suggestions) != 3 {
			t.Errorf("Expected truncation to 3 entries, got %d", len(p.Suggestions))
		}
	})

	t.Run("EmptyAfterFiltering", func(t *testing.T) {
		_, err := validate(`[1, 2, "", "   "]`, typ)
		if !errors.Is(err, ErrShape) {
			t.Errorf("Expected ErrShape for no usable entries, got %v", err)
		}
	})
}
