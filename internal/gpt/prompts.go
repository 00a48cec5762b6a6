package gpt

import (
	"fmt"
	"strings"

	"nutrivision/internal/models"
)

const identificationPrompt = `
Analyze the food in this image with high accuracy, being specific about regional dishes like Indian curries.
Your response MUST be a JSON object that conforms to the provided schema.

The JSON object should have two keys: "title" and "description".
- "title": A short, descriptive name for the meal.
- "description": A markdown formatted string listing each identified component. Each item should start with an asterisk (*).

Example of a confident response:
{
  "title": "Indian Thali with Roti, Dal, and Bhindi Sabzi",
  "description": "* **Roti/Chapati:** Flat Indian bread. * **Dal:** A yellow lentil curry. * **Bhindi Sabzi:** A stir-fry made with okra. * **Dahi:** A side of plain yogurt."
}

If you are NOT confident about the main dish, the title MUST be "` + models.UncertainTitle + `". The description should then explain what you can see and why you are uncertain.
Example of an uncertain response:
{
   "title": "` + models.UncertainTitle + `",
   "description": "I can identify rice and what appears to be a form of flatbread, but I am not sure about the specific type of curry. It seems to be a thick, orange-colored gravy but its main ingredients are not visually clear."
}
`

func nutritionPrompt(foodName string) string {
	return fmt.Sprintf("Provide a detailed nutritional analysis for a standard serving size of the following meal: %q. "+
		"This name may represent a meal with multiple components; provide an aggregate nutritional breakdown.", foodName)
}

const adviceSystemPrompt = "You are an encouraging nutrition coach. Keep answers short and practical."

func advicePrompt(profile models.UserProfile, meals []models.Meal, calc *models.UserCalculations) string {
	total := models.SumMeals(meals)

	names := make([]string, 0, len(meals))
	for _, m := range meals {
		names = append(names, fmt.Sprintf("%s (%s)", m.Name, m.Type))
	}

	var sb strings.Builder
	sb.WriteString("Based on the following user profile and their daily food intake, provide actionable, encouraging, and concise advice.\n\n")

	sb.WriteString("**User Profile:**\n")
	fmt.Fprintf(&sb, "- Age: %d\n", profile.Age)
	fmt.Fprintf(&sb, "- Gender: %s\n", profile.Gender)
	fmt.Fprintf(&sb, "- Goal: %s\n", profile.Goal)
	fmt.Fprintf(&sb, "- Daily Calorie Target: %.0f kcal\n\n", calc.TDEE)

	sb.WriteString("**Today's Food Intake:**\n")
	fmt.Fprintf(&sb, "- Meals: %s\n", strings.Join(names, ", "))
	fmt.Fprintf(&sb, "- Total Calories Consumed: %.0f kcal\n", total.Calories)
	fmt.Fprintf(&sb, "- Total Protein: %.1f g\n", total.Protein)
	fmt.Fprintf(&sb, "- Total Carbohydrates: %.1f g\n", total.Carbs)
	fmt.Fprintf(&sb, "- Total Fat: %.1f g\n\n", total.Fat)

	sb.WriteString("**Task:**\n")
	sb.WriteString("1. Briefly comment on the user's progress towards their daily calorie goal.\n")
	sb.WriteString("2. Analyze the macronutrient balance. Is it aligned with their goal (e.g., higher protein for muscle gain, balanced for maintenance)?\n")
	sb.WriteString("3. Provide 1-2 simple, actionable suggestions for their next meal or for tomorrow. For example, if protein is low, suggest a protein source. If they are over their calorie limit, suggest a lighter meal option.\n")
	sb.WriteString("4. Keep the tone positive and motivational. Address the user directly. Use markdown for formatting, for example **bold** for emphasis.\n")

	return sb.String()
}
