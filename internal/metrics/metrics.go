// Package metrics derives BMI, BMR and TDEE from a user profile.
package metrics

import (
	"math"

	"nutrivision/internal/models"
)

// activityMultipliers maps each activity level to its TDEE multiplier.
var activityMultipliers = map[models.ActivityLevel]float64{
	models.ActivitySedentary:        1.2,
	models.ActivityLightlyActive:    1.375,
	models.ActivityModeratelyActive: 1.55,
	models.ActivityVeryActive:       1.725,
	models.ActivitySuperActive:      1.9,
}

// goalAdjustments is the daily kcal offset applied on top of the base TDEE.
var goalAdjustments = map[models.Goal]float64{
	models.GoalLose:     -500,
	models.GoalMaintain: 0,
	models.GoalGain:     500,
}

// Multiplier returns the TDEE multiplier of a level, or 0 when unknown.
func Multiplier(level models.ActivityLevel) float64 {
	return activityMultipliers[level]
}

// GoalAdjustment returns the kcal offset of a goal, or 0 when unknown.
func GoalAdjustment(goal models.Goal) float64 {
	return goalAdjustments[goal]
}

// Compute returns the calculations for p, or nil when age, weight or height
// is missing. BMI, BMR and the base TDEE are rounded to two decimals; the
// goal offset is added after rounding.
func Compute(p *models.UserProfile) *models.UserCalculations {
	if p == nil || p.Weight <= 0 || p.Height <= 0 || p.Age <= 0 {
		return nil
	}

	heightM := p.Height / 100
	bmi := round2(p.Weight / (heightM * heightM))

	// Mifflin-St Jeor
	bmr := 10*p.Weight + 6.25*p.Height - 5*float64(p.Age)
	if p.Gender == models.GenderMale {
		bmr += 5
	} else {
		bmr -= 161
	}
	bmr = round2(bmr)

	base := round2(bmr * Multiplier(p.ActivityLevel))

	return &models.UserCalculations{
		BMI:      bmi,
		BMR:      bmr,
		TDEE:     base + GoalAdjustment(p.Goal),
		BaseTDEE: base,
	}
}

// BMICategory buckets a BMI the way the profile card labels it.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 24.9:
		return "Normal"
	case bmi < 29.9:
		return "Overweight"
	default:
		return "Obese"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
