// internal/models/nutrition.go
package models

type Nutrient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

type Carbohydrates struct {
	Total float64 `json:"total"`
	Fiber float64 `json:"fiber"`
	Sugar float64 `json:"sugar"`
}

type Fat struct {
	Total     float64 `json:"total"`
	Saturated float64 `json:"saturated"`
}

// NutritionInfo is taken from the AI service as-is. Calories and the macro
// grams are not cross-checked.
type NutritionInfo struct {
	Calories      float64       `json:"calories"`
	Protein       float64       `json:"protein"`
	Carbohydrates Carbohydrates `json:"carbohydrates"`
	Fat           Fat           `json:"fat"`
	Vitamins      []Nutrient    `json:"vitamins"`
	Minerals      []Nutrient    `json:"minerals"`
}

// MacroSplit returns the share of carbs, fat and protein in the macro grams,
// each in [0,1]. ok is false when there are no macros at all.
func (n NutritionInfo) MacroSplit() (carbs, fat, protein float64, ok bool) {
	total := n.Protein + n.Carbohydrates.Total + n.Fat.Total
	if total <= 0 {
		return 0, 0, 0, false
	}
	return n.Carbohydrates.Total / total, n.Fat.Total / total, n.Protein / total, true
}

// Totals is the aggregate intake over a set of meals.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// SumMeals adds up every meal given, regardless of date.
func SumMeals(meals []Meal) Totals {
	var t Totals
	for _, m := range meals {
		t.Calories += m.Nutrition.Calories
		t.Protein += m.Nutrition.Protein
		t.Carbs += m.Nutrition.Carbohydrates.Total
		t.Fat += m.Nutrition.Fat.Total
	}
	return t
}
