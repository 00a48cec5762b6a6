package bot

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"nutrivision/internal/metrics"
	"nutrivision/internal/models"
	"nutrivision/internal/tracker"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	bulletPattern = regexp.MustCompile(`(?:^|\s)\*\s+`)
)

// toHTML escapes model text for Telegram's HTML mode and turns **bold**
// into <b> tags.
func toHTML(s string) string {
	return boldPattern.ReplaceAllString(html.EscapeString(s), "<b>$1</b>")
}

// descriptionLines splits a "* item * item" description into bullet lines.
func descriptionLines(desc string) []string {
	var out []string
	for _, part := range bulletPattern.Split(desc, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, "• "+toHTML(part))
		}
	}
	return out
}

func profileSummary(p models.UserProfile) string {
	return fmt.Sprintf("Gender: %s\nAge: %d\nHeight: %g cm\nWeight: %g kg\nActivity: %s\nGoal: %s",
		p.Gender, p.Age, p.Height, p.Weight, p.ActivityLevel.Short(), p.Goal)
}

func formatProfile(p *models.UserProfile, calc *models.UserCalculations) string {
	if p == nil {
		return "You have no profile yet. Use /profile to create one."
	}
	var sb strings.Builder
	sb.WriteString("<b>Your profile</b>\n")
	sb.WriteString(html.EscapeString(profileSummary(*p)))
	if calc == nil {
		sb.WriteString("\n\nFill in age, height and weight to see your targets.")
		return sb.String()
	}
	fmt.Fprintf(&sb, "\n\nBMI: <b>%.2f</b> (%s)", calc.BMI, metrics.BMICategory(calc.BMI))
	fmt.Fprintf(&sb, "\nBMR: %.0f kcal", calc.BMR)
	fmt.Fprintf(&sb, "\nMaintenance: %.0f kcal", calc.BaseTDEE)
	fmt.Fprintf(&sb, "\nDaily target: <b>%.0f kcal</b>", calc.TDEE)
	return sb.String()
}

func formatMeal(m models.Meal) string {
	n := m.Nutrition
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b> (%s)\n", html.EscapeString(m.Name), m.Type)
	for _, line := range descriptionLines(m.Description) {
		sb.WriteString(line + "\n")
	}
	fmt.Fprintf(&sb, "\n🔥 %.0f kcal\n", n.Calories)
	fmt.Fprintf(&sb, "Protein %.1f g · Carbs %.1f g · Fat %.1f g\n", n.Protein, n.Carbohydrates.Total, n.Fat.Total)
	fmt.Fprintf(&sb, "Fiber %.1f g · Sugar %.1f g · Saturated fat %.1f g", n.Carbohydrates.Fiber, n.Carbohydrates.Sugar, n.Fat.Saturated)
	if carbs, fat, protein, ok := n.MacroSplit(); ok {
		fmt.Fprintf(&sb, "\nSplit: carbs %.0f%% · fat %.0f%% · protein %.0f%%", carbs*100, fat*100, protein*100)
	}
	if s := formatNutrients(n.Vitamins); s != "" {
		sb.WriteString("\nVitamins: " + s)
	}
	if s := formatNutrients(n.Minerals); s != "" {
		sb.WriteString("\nMinerals: " + s)
	}
	return sb.String()
}

func formatNutrients(list []models.Nutrient) string {
	parts := make([]string, 0, len(list))
	for _, n := range list {
		parts = append(parts, fmt.Sprintf("%s %g %s", html.EscapeString(n.Name), n.Amount, html.EscapeString(n.Unit)))
	}
	return strings.Join(parts, ", ")
}

func formatPending(p tracker.Pending) string {
	var sb strings.Builder
	sb.WriteString("🤔 I'm not sure what this is.\n\n")
	sb.WriteString(toHTML(p.Description))
	if p.Guess != "" {
		fmt.Fprintf(&sb, "\n\nMy best guess: <b>%s</b>", html.EscapeString(p.Guess))
		sb.WriteString("\nReply with the food name, or tap the button to use my guess.")
	} else {
		sb.WriteString("\n\nPlease reply with the name of the food.")
	}
	return sb.String()
}

func formatHistory(groups []models.DayGroup) string {
	if len(groups) == 0 {
		return "No meals logged yet. Send me a photo of your meal."
	}
	var sb strings.Builder
	for i, g := range groups {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		total := models.SumMeals(g.Meals)
		fmt.Fprintf(&sb, "<b>%s</b> · %.0f kcal", html.EscapeString(g.Label), total.Calories)
		for _, m := range g.Meals {
			fmt.Fprintf(&sb, "\n%s  %s (%s) · %.0f kcal",
				m.Date.UTC().Format("15:04"), html.EscapeString(m.Name), m.Type, m.Nutrition.Calories)
		}
	}
	return sb.String()
}
