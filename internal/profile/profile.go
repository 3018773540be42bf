package profile

import (
	"errors"
	"fmt"
	"math"
)

// ErrIncomplete indicates a biometric profile with missing or non-positive
// required fields. Requests carrying such a profile are rejected before any
// calorie computation or generation happens.
var ErrIncomplete = errors.New("biometric profile incomplete")

// Sex is the biological sex used by the BMR formula.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ActivityLevel describes habitual physical activity.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// Biometrics is an immutable per-request snapshot of a user's biometric
// data. The engine never mutates it.
type Biometrics struct {
	Sex           Sex           `json:"sex"`
	Age           int           `json:"age"`
	Height        float64       `json:"height_cm"`
	Weight        float64       `json:"weight_kg"`
	TargetWeight  float64       `json:"target_weight_kg,omitempty"`
	ActivityLevel ActivityLevel `json:"activity_level"`
	Goal          string        `json:"goal"`
}

// Validate checks the required fields. All numeric fields must be strictly
// positive and sex must be a recognized value. Activity level is not
// checked here: an unrecognized level falls back to the sedentary
// multiplier instead of blocking plan generation.
func (b Biometrics) Validate() error {
	if b.Sex != SexMale && b.Sex != SexFemale {
		return fmt.Errorf("%w: sex must be %q or %q, got %q", ErrIncomplete, SexMale, SexFemale, b.Sex)
	}
	if b.Age <= 0 {
		return fmt.Errorf("%w: age must be positive, got %d", ErrIncomplete, b.Age)
	}
	if b.Height <= 0 || math.IsNaN(b.Height) {
		return fmt.Errorf("%w: height must be positive, got %v", ErrIncomplete, b.Height)
	}
	if b.Weight <= 0 || math.IsNaN(b.Weight) {
		return fmt.Errorf("%w: weight must be positive, got %v", ErrIncomplete, b.Weight)
	}
	if b.TargetWeight < 0 || math.IsNaN(b.TargetWeight) {
		return fmt.Errorf("%w: target weight must not be negative, got %v", ErrIncomplete, b.TargetWeight)
	}
	return nil
}
