package gpt

import (
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"nutrivision/internal/models"
)

var foodIdentificationSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"title": {
			Type:        jsonschema.String,
			Description: "A short, concise title for the entire meal (e.g., 'Indian Thali with Dal and Okra').",
		},
		"description": {
			Type:        jsonschema.String,
			Description: "A detailed breakdown of the identified food items, formatted as a markdown list starting with asterisks. (e.g., '* **Dahi (Yogurt):** A small bowl of plain yogurt.')",
		},
	},
	Required:             []string{"title", "description"},
	AdditionalProperties: false,
}

var nutrientSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"name":   {Type: jsonschema.String},
		"amount": {Type: jsonschema.Number},
		"unit":   {Type: jsonschema.String},
	},
	Required:             []string{"name", "amount", "unit"},
	AdditionalProperties: false,
}

var nutritionSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"calories": {Type: jsonschema.Number, Description: "Total calories in kcal."},
		"protein":  {Type: jsonschema.Number, Description: "Total protein in grams."},
		"carbohydrates": {
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"total": {Type: jsonschema.Number, Description: "Total carbohydrates in grams."},
				"fiber": {Type: jsonschema.Number, Description: "Dietary fiber in grams."},
				"sugar": {Type: jsonschema.Number, Description: "Total sugar in grams."},
			},
			Required:             []string{"total", "fiber", "sugar"},
			AdditionalProperties: false,
		},
		"fat": {
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"total":     {Type: jsonschema.Number, Description: "Total fat in grams."},
				"saturated": {Type: jsonschema.Number, Description: "Saturated fat in grams."},
			},
			Required:             []string{"total", "saturated"},
			AdditionalProperties: false,
		},
		"vitamins": {Type: jsonschema.Array, Items: &nutrientSchema},
		"minerals": {Type: jsonschema.Array, Items: &nutrientSchema},
	},
	Required:             []string{"calories", "protein", "carbohydrates", "fat", "vitamins", "minerals"},
	AdditionalProperties: false,
}

func jsonSchemaFormat(name string, schema *jsonschema.Definition) *openai.ChatCompletionResponseFormat {
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   name,
			Schema: schema,
			Strict: true,
		},
	}
}

// The wire types use pointers so that a missing required field can be told
// apart from a zero value.
type nutrientWire struct {
	Name   *string  `json:"name"`
	Amount *float64 `json:"amount"`
	Unit   *string  `json:"unit"`
}

type nutritionWire struct {
	Calories      *float64 `json:"calories"`
	Protein       *float64 `json:"protein"`
	Carbohydrates *struct {
		Total *float64 `json:"total"`
		Fiber *float64 `json:"fiber"`
		Sugar *float64 `json:"sugar"`
	} `json:"carbohydrates"`
	Fat *struct {
		Total     *float64 `json:"total"`
		Saturated *float64 `json:"saturated"`
	} `json:"fat"`
	Vitamins *[]nutrientWire `json:"vitamins"`
	Minerals *[]nutrientWire `json:"minerals"`
}

func parseNutrition(text string) (*models.NutritionInfo, error) {
	var w nutritionWire
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedAIResponse, err)
	}

	missing := func(field string) error {
		return fmt.Errorf("%w: missing %s", models.ErrMalformedAIResponse, field)
	}
	switch {
	case w.Calories == nil:
		return nil, missing("calories")
	case w.Protein == nil:
		return nil, missing("protein")
	case w.Carbohydrates == nil || w.Carbohydrates.Total == nil || w.Carbohydrates.Fiber == nil || w.Carbohydrates.Sugar == nil:
		return nil, missing("carbohydrates")
	case w.Fat == nil || w.Fat.Total == nil || w.Fat.Saturated == nil:
		return nil, missing("fat")
	case w.Vitamins == nil:
		return nil, missing("vitamins")
	case w.Minerals == nil:
		return nil, missing("minerals")
	}

	vitamins, err := convertNutrients(*w.Vitamins, "vitamins")
	if err != nil {
		return nil, err
	}
	minerals, err := convertNutrients(*w.Minerals, "minerals")
	if err != nil {
		return nil, err
	}

	return &models.NutritionInfo{
		Calories: *w.Calories,
		Protein:  *w.Protein,
		Carbohydrates: models.Carbohydrates{
			Total: *w.Carbohydrates.Total,
			Fiber: *w.Carbohydrates.Fiber,
			Sugar: *w.Carbohydrates.Sugar,
		},
		Fat: models.Fat{
			Total:     *w.Fat.Total,
			Saturated: *w.Fat.Saturated,
		},
		Vitamins: vitamins,
		Minerals: minerals,
	}, nil
}

func convertNutrients(in []nutrientWire, field string) ([]models.Nutrient, error) {
	out := make([]models.Nutrient, 0, len(in))
	for i, n := range in {
		if n.Name == nil || n.Amount == nil || n.Unit == nil {
			return nil, fmt.Errorf("%w: incomplete %s[%d]", models.ErrMalformedAIResponse, field, i)
		}
		out = append(out, models.Nutrient{Name: *n.Name, Amount: *n.Amount, Unit: *n.Unit})
	}
	return out, nil
}
