package artifact_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"bodygoal/internal/artifact"
	"bodygoal/internal/database"
)

func newTestRepository(t *testing.T) *artifact.Repository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.NewDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return artifact.NewRepository(db.SQL)
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	t.Run("GetMissing", func(t *testing.T) {
		got, err := repo.Get(ctx, "user-1", artifact.TypeFullPlan)
		if err != nil {
			t.Fatalf("Expected no error for missing artifact, got %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for missing artifact, got %+v", got)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		payload := artifact.FullPlanPayload{
			MealPlan: []artifact.MealEntry{
				{Name: "Oatmeal", Calories: 350, Description: "With berries"},
				{Name: "Chicken salad", Calories: 550, Description: "Grilled"},
			},
			WorkoutPlan: []artifact.WorkoutEntry{
				{Name: "Jogging", Duration: 30, Description: "Easy pace"},
			},
		}
		raw, _ := json.Marshal(payload)

		stored := artifact.Generated{
			UserID:      "user-1",
			Type:        artifact.TypeFullPlan,
			Payload:     raw,
			GeneratedAt: time.Now().UTC().Truncate(time.Second),
		}
		if err := repo.Upsert(ctx, stored); err != nil {
			t.Fatalf("Failed to upsert artifact: %v", err)
		}

		loaded, err := repo.Get(ctx, "user-1", artifact.TypeFullPlan)
		if err != nil {
			t.Fatalf("Failed to load artifact: %v", err)
		}
		if loaded == nil {
			t.Fatal("Expected artifact, got nil")
		}

		gotPayload, err := loaded.FullPlan()
		if err != nil {
			t.Fatalf("Failed to decode payload: %v", err)
		}
		if !reflect.DeepEqual(gotPayload, payload) {
			t.Errorf("Round-tripped payload differs:\n got %+v\nwant %+v", gotPayload, payload)
		}
		if !loaded.GeneratedAt.Equal(stored.GeneratedAt) {
			t.Errorf("Expected generatedAt %v, got %v", stored.GeneratedAt, loaded.GeneratedAt)
		}
	})

	t.Run("UpsertReplaces", func(t *testing.T) {
		first := artifact.Generated{
			UserID:      "user-2",
			Type:        artifact.TypeSuggestionMeals,
			Payload:     json.RawMessage(`{"suggestions":["old"]}`),
			GeneratedAt: time.Now().UTC().Add(-time.Hour),
		}
		second := artifact.Generated{
			UserID:      "user-2",
			Type:        artifact.TypeSuggestionMeals,
			Payload:     json.RawMessage(`{"suggestions":["new"]}`),
			GeneratedAt: time.Now().UTC(),
		}

		if err := repo.Upsert(ctx, first); err != nil {
			t.Fatalf("Failed first upsert: %v", err)
		}
		if err := repo.Upsert(ctx, second); err != nil {
			t.Fatalf("Failed second upsert: %v", err)
		}

		loaded, err := repo.Get(ctx, "user-2", artifact.TypeSuggestionMeals)
		if err != nil {
			t.Fatalf("Failed to load artifact: %v", err)
		}
		sugg, err := loaded.Suggestions()
		if err != nil {
			t.Fatalf("Failed to decode payload: %v", err)
		}
		if len(sugg.Suggestions) != 1 || sugg.Suggestions[0] != "new" {
			t.Errorf("Expected replaced payload, got %+v", sugg)
		}
	})

	t.Run("ConcurrentReadsAndWrites", func(t *testing.T) {
		// The engine fans out suggestion requests over one shared pool, so
		// parallel gets and upserts on the same connection must queue on
		// the database lock rather than fail.
		var g errgroup.Group
		for _, typ := range artifact.SuggestionTypes {
			g.Go(func() error {
				if _, err := repo.Get(ctx, "user-4", typ); err != nil {
					return err
				}
				return repo.Upsert(ctx, artifact.Generated{
					UserID:      "user-4",
					Type:        typ,
					Payload:     json.RawMessage(`{"suggestions":["tip"]}`),
					GeneratedAt: time.Now().UTC(),
				})
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("Concurrent access failed: %v", err)
		}

		for _, typ := range artifact.SuggestionTypes {
			got, err := repo.Get(ctx, "user-4", typ)
			if err != nil {
				t.Fatalf("Failed to load %s: %v", typ, err)
			}
			if got == nil {
				t.Errorf("Expected %s to be persisted", typ)
			}
		}
	})

	t.Run("TypesAreIndependent", func(t *testing.T) {
		plan := artifact.Generated{
			UserID:      "user-3",
			Type:        artifact.TypeFullPlan,
			Payload:     json.RawMessage(`{"mealPlan":[],"workoutPlan":[]}`),
			GeneratedAt: time.Now().UTC(),
		}
		if err := repo.Upsert(ctx, plan); err != nil {
			t.Fatalf("Failed to upsert: %v", err)
		}

		got, err := repo.Get(ctx, "user-3", artifact.TypeSuggestionOverview)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for a different artifact type, got %+v", got)
		}
	})
}
