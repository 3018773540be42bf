// Package badge awards a daily progress badge from weight check-ins.
package badge

// Badge is the short motivational label shown next to a weight check-in.
type Badge string

const (
	Progress  Badge = "🔥 Progress!"
	Stable    Badge = "📊 Stable, keep it consistent!"
	Regressed Badge = "⚠️ Weight up, review your meals and workouts."
)

// Evaluate compares today's weight against the previous check-in.
func Evaluate(todayWeight, prevWeight float64) Badge {
	switch {
	case todayWeight < prevWeight:
		return Progress
	case todayWeight == prevWeight:
		return Stable
	default:
		return Regressed
	}
}
