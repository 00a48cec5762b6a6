// internal/models/profile.go
package models

import (
	"errors"
	"fmt"
	"strings"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// ActivityLevel values are ordered from least to most active.
type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "Sedentary (little or no exercise)"
	ActivityLightlyActive    ActivityLevel = "Lightly Active (light exercise/sports 1-3 days/week)"
	ActivityModeratelyActive ActivityLevel = "Moderately Active (moderate exercise/sports 3-5 days/week)"
	ActivityVeryActive       ActivityLevel = "Very Active (hard exercise/sports 6-7 days a week)"
	ActivitySuperActive      ActivityLevel = "Super Active (very hard exercise/physical job & exercise)"
)

// ActivityLevels lists every level in ascending order.
var ActivityLevels = []ActivityLevel{
	ActivitySedentary,
	ActivityLightlyActive,
	ActivityModeratelyActive,
	ActivityVeryActive,
	ActivitySuperActive,
}

type Goal string

const (
	GoalLose     Goal = "Lose Weight"
	GoalMaintain Goal = "Maintain Weight"
	GoalGain     Goal = "Gain Weight"
)

var Goals = []Goal{GoalLose, GoalMaintain, GoalGain}

var ErrInvalidProfile = errors.New("invalid profile")

// UserProfile is replaced wholesale on every edit.
type UserProfile struct {
	Age           int           `json:"age"`
	Gender        Gender        `json:"gender"`
	Weight        float64       `json:"weight"`
	Height        float64       `json:"height"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
	Goal          Goal          `json:"goal"`
}

// DefaultProfile is the starting point offered to a new user.
func DefaultProfile() UserProfile {
	return UserProfile{
		Age:           25,
		Gender:        GenderFemale,
		Weight:        60,
		Height:        165,
		ActivityLevel: ActivityLightlyActive,
		Goal:          GoalMaintain,
	}
}

// Validate checks a profile submitted for saving. Numeric fields may be zero
// (the metrics are then unavailable) but never negative.
func (p UserProfile) Validate() error {
	_, err := p.Normalize()
	return err
}

// Normalize validates p and returns a copy with every alias replaced by its
// stored value, which is what the metrics compare against.
func (p UserProfile) Normalize() (UserProfile, error) {
	switch {
	case p.Age < 0:
		return p, fmt.Errorf("%w: age must not be negative", ErrInvalidProfile)
	case p.Weight < 0:
		return p, fmt.Errorf("%w: weight must not be negative", ErrInvalidProfile)
	case p.Height < 0:
		return p, fmt.Errorf("%w: height must not be negative", ErrInvalidProfile)
	}
	g, err := ParseGender(string(p.Gender))
	if err != nil {
		return p, err
	}
	a, err := ParseActivityLevel(string(p.ActivityLevel))
	if err != nil {
		return p, err
	}
	goal, err := ParseGoal(string(p.Goal))
	if err != nil {
		return p, err
	}
	p.Gender, p.ActivityLevel, p.Goal = g, a, goal
	return p, nil
}

var genderAliases = map[string]Gender{
	"male":   GenderMale,
	"m":      GenderMale,
	"female": GenderFemale,
	"f":      GenderFemale,
}

// ParseGender accepts the stored value or a short alias.
func ParseGender(s string) (Gender, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if g, ok := genderAliases[key]; ok {
		return g, nil
	}
	return "", fmt.Errorf("%w: unknown gender %q", ErrInvalidProfile, s)
}

var activityAliases = map[string]ActivityLevel{
	"sedentary":   ActivitySedentary,
	"light":       ActivityLightlyActive,
	"moderate":    ActivityModeratelyActive,
	"active":      ActivityVeryActive,
	"very_active": ActivitySuperActive,
}

// ActivityKey returns the short alias of a level.
func ActivityKey(a ActivityLevel) string {
	for k, v := range activityAliases {
		if v == a {
			return k
		}
	}
	return ""
}

// ParseActivityLevel accepts the stored description, a short alias, or the
// leading word of the description ("Sedentary", "Very Active", ...).
func ParseActivityLevel(s string) (ActivityLevel, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if a, ok := activityAliases[key]; ok {
		return a, nil
	}
	for _, a := range ActivityLevels {
		full := strings.ToLower(string(a))
		if key == full || key == strings.ToLower(a.Short()) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: unknown activity level %q", ErrInvalidProfile, s)
}

// Short drops the parenthesised explanation.
func (a ActivityLevel) Short() string {
	name, _, _ := strings.Cut(string(a), " (")
	return name
}

var goalAliases = map[string]Goal{
	"lose":     GoalLose,
	"maintain": GoalMaintain,
	"gain":     GoalGain,
}

// ParseGoal accepts the stored value or a short alias.
func ParseGoal(s string) (Goal, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if g, ok := goalAliases[key]; ok {
		return g, nil
	}
	for _, g := range Goals {
		if key == strings.ToLower(string(g)) {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: unknown goal %q", ErrInvalidProfile, s)
}

// UserCalculations is derived from a UserProfile and never stored.
type UserCalculations struct {
	BMI      float64 `json:"bmi"`
	BMR      float64 `json:"bmr"`
	TDEE     float64 `json:"tdee"`
	BaseTDEE float64 `json:"baseTdee"`
}
