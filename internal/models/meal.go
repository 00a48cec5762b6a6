// internal/models/meal.go
package models

import (
	"fmt"
	"strings"
	"time"
)

type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
	MealSnack     MealType = "Snack"
)

var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// DefaultMealType is preselected until the user picks another one.
const DefaultMealType = MealLunch

func ParseMealType(s string) (MealType, error) {
	key := strings.TrimSpace(s)
	for _, t := range MealTypes {
		if strings.EqualFold(key, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown meal type %q", s)
}

// Meal is immutable once created. ImageURL points into the running process
// and is never persisted.
type Meal struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	ImageURL    string        `json:"-"`
	Nutrition   NutritionInfo `json:"nutrition"`
	Type        MealType      `json:"type"`
	Date        time.Time     `json:"date"`
}
