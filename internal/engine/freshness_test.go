package engine

import (
	"testing"
	"time"

	"bodygoal/internal/artifact"
)

func TestIsFresh(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 24 * time.Hour

	t.Run("NoArtifact", func(t *testing.T) {
		if isFresh(nil, now, ttl) {
			t.Error("Expected nil artifact to never be fresh")
		}
	})

	t.Run("JustGenerated", func(t *testing.T) {
		g := &artifact.Generated{GeneratedAt: now}
		if !isFresh(g, now, ttl) {
			t.Error("Expected just-generated artifact to be fresh")
		}
	})

	t.Run("WithinTTL", func(t *testing.T) {
		g := &artifact.Generated{GeneratedAt: now.Add(-23 * time.Hour)}
		if !isFresh(g, now, ttl) {
			t.Error("Expected artifact within TTL to be fresh")
		}
	})

	t.Run("ExactlyTTL", func(t *testing.T) {
		g := &artifact.Generated{GeneratedAt: now.Add(-ttl)}
		if isFresh(g, now, ttl) {
			t.Error("Expected artifact exactly at TTL to be stale")
		}
	})

	t.Run("BeyondTTL", func(t *testing.T) {
		g := &artifact.Generated{GeneratedAt: now.Add(-48 * time.Hour)}
		if isFresh(g, now, ttl) {
			t.Error("Expected artifact beyond TTL to be stale")
		}
	})

	t.Run("MonotonicInElapsedTime", func(t *testing.T) {
		// If fresh at some age, it must be fresh at every smaller age.
		for age := time.Duration(0); age < ttl*2; age += time.Hour {
			g := &artifact.Generated{GeneratedAt: now.Add(-age)}
			if isFresh(g, now, ttl) {
				younger := &artifact.Generated{GeneratedAt: now.Add(-age / 2)}
				if !isFresh(younger, now, ttl) {
					t.Fatalf("Freshness not monotonic: fresh at age %v but stale at %v", age, age/2)
				}
			}
		}
	})
}
