package models

import (
	"math"
	"testing"
)

func TestSumMeals(t *testing.T) {
	meals := []Meal{
		{Nutrition: NutritionInfo{Calories: 300, Protein: 10, Carbohydrates: Carbohydrates{Total: 40}, Fat: Fat{Total: 8}}},
		{Nutrition: NutritionInfo{Calories: 550.5, Protein: 32.25, Carbohydrates: Carbohydrates{Total: 12}, Fat: Fat{Total: 30}}},
	}
	got := SumMeals(meals)
	want := Totals{Calories: 850.5, Protein: 42.25, Carbs: 52, Fat: 38}
	if got != want {
		t.Errorf("SumMeals = %+v, want %+v", got, want)
	}
	if (SumMeals(nil) != Totals{}) {
		t.Error("expected zero totals for no meals")
	}
}

func TestMacroSplit(t *testing.T) {
	n := NutritionInfo{Protein: 25, Carbohydrates: Carbohydrates{Total: 50}, Fat: Fat{Total: 25}}
	carbs, fat, protein, ok := n.MacroSplit()
	if !ok {
		t.Fatal("expected a split")
	}
	if carbs != 0.5 || fat != 0.25 || protein != 0.25 {
		t.Errorf("unexpected split %v/%v/%v", carbs, fat, protein)
	}
	if math.Abs(carbs+fat+protein-1) > 1e-9 {
		t.Error("shares should sum to 1")
	}

	if _, _, _, ok := (NutritionInfo{Calories: 100}).MacroSplit(); ok {
		t.Error("expected no split without macros")
	}
}

func TestParseMealType(t *testing.T) {
	for _, in := range []string{"breakfast", "LUNCH", " Dinner ", "snack"} {
		if _, err := ParseMealType(in); err != nil {
			t.Errorf("ParseMealType(%q): %v", in, err)
		}
	}
	if _, err := ParseMealType("brunch"); err == nil {
		t.Error("expected error for unknown meal type")
	}
}

func TestClassifyIdentification(t *testing.T) {
	cases := []struct {
		title string
		want  Confidence
	}{
		{"Uncertain Food", Uncertain},
		{"uncertain dish", Uncertain},
		{"Somewhat UNCERTAIN curry", Uncertain},
		{"Chicken Biryani", Confident},
		{"Certain Food", Confident},
	}
	for _, tc := range cases {
		id := ClassifyIdentification(tc.title, "desc")
		if id.Confidence != tc.want {
			t.Errorf("%q classified %s, want %s", tc.title, id.Confidence, tc.want)
		}
		if id.Title != tc.title || id.Description != "desc" {
			t.Errorf("fields not carried: %+v", id)
		}
	}
}
