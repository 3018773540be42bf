package engine

import (
	"encoding/json"
	"testing"

	"bodygoal/internal/artifact"
)

func TestFallbackFor(t *testing.T) {
	t.Run("EveryCategoryCovered", func(t *testing.T) {
		for _, typ := range artifact.SuggestionTypes {
			content := fallbackFor(typ)
			if len(content) < 2 || len(content) > 3 {
				t.Errorf("Expected 2-3 fallback entries for %s, got %d", typ, len(content))
			}
			for i, s := range content {
				if s == "" {
					t.Errorf("Empty fallback entry %d for %s", i, typ)
				}
			}
		}
	})

	t.Run("UnknownCategoryGetsGeneric", func(t *testing.T) {
		content := fallbackFor(artifact.Type("suggestion_sleep"))
		if len(content) == 0 {
			t.Fatal("Expected generic fallback content for unknown category")
		}
		if content[0] != genericFallback[0] {
			t.Errorf("Expected generic fallback, got %v", content)
		}
	})

	t.Run("PayloadMatchesValidatedShape", func(t *testing.T) {
		raw := fallbackPayload(artifact.TypeSuggestionMeals)
		var p artifact.SuggestionPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			t.Fatalf("Fallback payload does not decode: %v", err)
		}
		if len(p.Suggestions) == 0 {
			t.Error("Expected non-empty fallback payload")
		}
	})
}
