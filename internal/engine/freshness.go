package engine

import (
	"time"

	"bodygoal/internal/artifact"
)

// isFresh reports whether a cached artifact can be reused instead of
// regenerated: it must exist and have been generated less than ttl ago.
// The caller supplies the artifact already loaded; no I/O happens here.
func isFresh(g *artifact.Generated, now time.Time, ttl time.Duration) bool {
	if g == nil {
		return false
	}
	return now.Sub(g.GeneratedAt) < ttl
}
