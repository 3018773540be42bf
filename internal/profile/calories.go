package profile

import (
	"math"
	"strings"
)

// activityMultipliers scale BMR to total daily energy expenditure.
var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

const (
	loseAdjustment = -500
	gainAdjustment = 300
)

// CalorieTarget derives the daily calorie target (kcal) from a biometric
// profile: Mifflin-St Jeor BMR, scaled by the activity multiplier, then
// adjusted for the stated goal. An activity level absent from the table
// uses the sedentary multiplier. Precondition: all numeric fields are
// strictly positive (see Biometrics.Validate).
func CalorieTarget(b Biometrics) int {
	bmr := 10*b.Weight + 6.25*b.Height - 5*float64(b.Age)
	if b.Sex == SexFemale {
		bmr -= 161
	} else {
		bmr += 5
	}

	multiplier, ok := activityMultipliers[b.ActivityLevel]
	if !ok {
		multiplier = activityMultipliers[ActivitySedentary]
	}
	tdee := bmr * multiplier

	goal := strings.ToLower(b.Goal)
	switch {
	case strings.Contains(goal, "lose"):
		tdee += loseAdjustment
	case strings.Contains(goal, "gain"):
		tdee += gainAdjustment
	}

	return int(math.Round(tdee))
}
