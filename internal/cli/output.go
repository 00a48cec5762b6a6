package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"nutrivision/internal/metrics"
	"nutrivision/internal/models"
)

func printJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

type profileView struct {
	Profile      *models.UserProfile      `json:"profile"`
	Calculations *models.UserCalculations `json:"calculations"`
	BMICategory  string                   `json:"bmiCategory,omitempty"`
}

func newProfileView(p *models.UserProfile, calc *models.UserCalculations) profileView {
	v := profileView{Profile: p, Calculations: calc}
	if calc != nil {
		v.BMICategory = metrics.BMICategory(calc.BMI)
	}
	return v
}

func writeProfile(w io.Writer, v profileView) {
	if v.Profile == nil {
		fmt.Fprintln(w, "No profile set. Create one with: nutrivision profile set")
		return
	}
	p := v.Profile
	fmt.Fprintf(w, "Gender:    %s\n", p.Gender)
	fmt.Fprintf(w, "Age:       %d\n", p.Age)
	fmt.Fprintf(w, "Height:    %g cm\n", p.Height)
	fmt.Fprintf(w, "Weight:    %g kg\n", p.Weight)
	fmt.Fprintf(w, "Activity:  %s\n", p.ActivityLevel)
	fmt.Fprintf(w, "Goal:      %s\n", p.Goal)
	if v.Calculations == nil {
		fmt.Fprintln(w, "\nAge, height and weight are needed for calorie targets.")
		return
	}
	c := v.Calculations
	fmt.Fprintf(w, "\nBMI:         %.2f (%s)\n", c.BMI, v.BMICategory)
	fmt.Fprintf(w, "BMR:         %.0f kcal\n", c.BMR)
	fmt.Fprintf(w, "Maintenance: %.0f kcal\n", c.BaseTDEE)
	fmt.Fprintf(w, "Target:      %.0f kcal\n", c.TDEE)
}

func writeMeal(w io.Writer, m models.Meal) {
	n := m.Nutrition
	fmt.Fprintf(w, "%s (%s)\n", m.Name, m.Type)
	if d := strings.TrimSpace(m.Description); d != "" {
		fmt.Fprintf(w, "  %s\n", d)
	}
	fmt.Fprintf(w, "  %.0f kcal · protein %.1f g · carbs %.1f g · fat %.1f g\n",
		n.Calories, n.Protein, n.Carbohydrates.Total, n.Fat.Total)
	fmt.Fprintf(w, "  fiber %.1f g · sugar %.1f g · saturated fat %.1f g\n",
		n.Carbohydrates.Fiber, n.Carbohydrates.Sugar, n.Fat.Saturated)
	if s := joinNutrients(n.Vitamins); s != "" {
		fmt.Fprintf(w, "  vitamins: %s\n", s)
	}
	if s := joinNutrients(n.Minerals); s != "" {
		fmt.Fprintf(w, "  minerals: %s\n", s)
	}
}

func joinNutrients(list []models.Nutrient) string {
	parts := make([]string, 0, len(list))
	for _, n := range list {
		parts = append(parts, fmt.Sprintf("%s %g %s", n.Name, n.Amount, n.Unit))
	}
	return strings.Join(parts, ", ")
}

func writeHistory(w io.Writer, groups []models.DayGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No meals logged.")
		return
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		total := models.SumMeals(g.Meals)
		fmt.Fprintf(w, "%s  (%.0f kcal)\n", g.Label, total.Calories)
		for _, m := range g.Meals {
			fmt.Fprintf(w, "  %s  %-9s  %-30s %6.0f kcal\n",
				m.Date.UTC().Format("15:04"), m.Type, m.Name, m.Nutrition.Calories)
		}
	}
}
