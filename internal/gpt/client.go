// internal/gpt/client.go
package gpt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"nutrivision/internal/models"
	"nutrivision/pkg/logger"
)

// ErrEmptyResponse is returned when the service answers without any choice.
var ErrEmptyResponse = errors.New("no response from GPT API")

// NoCalculationsAdvice is returned instead of calling the model when the
// profile is too incomplete to compute a calorie target.
const NoCalculationsAdvice = "Cannot generate advice without user profile calculations."

type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	logger    *logger.Logger
}

// NewClientWithBaseURL targets an OpenAI-compatible endpoint other than the
// default one. An empty baseURL keeps the default.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		client:    openai.NewClientWithConfig(cfg),
		model:     "gpt-4o-mini",
		maxTokens: 1500,
		logger:    logger.NewNop(),
	}
}

func (c *Client) WithModel(model string) *Client {
	if model != "" {
		c.model = model
	}
	return c
}

func (c *Client) WithMaxTokens(n int) *Client {
	if n > 0 {
		c.maxTokens = n
	}
	return c
}

// WithTimeout bounds every call. Zero means no bound beyond the caller's
// context.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.timeout = d
	return c
}

func (c *Client) WithLogger(l *logger.Logger) *Client {
	c.logger = l.Named("gpt")
	return c
}

// IdentifyFood asks the vision model what is on the plate.
func (c *Client) IdentifyFood(ctx context.Context, img models.Image) (*models.Identification, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data))

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: identificationPrompt,
					},
				},
			},
		},
		MaxTokens:      c.maxTokens,
		Temperature:    0,
		ResponseFormat: jsonSchemaFormat("food_identification", &foodIdentificationSchema),
	}

	text, err := c.complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("identify food: %w", err)
	}

	var raw struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		c.logger.Warnw("failed to parse food identification JSON", "raw", text, "error", err)
		return nil, fmt.Errorf("identify food: %w: %v", models.ErrMalformedAIResponse, err)
	}
	if strings.TrimSpace(raw.Title) == "" {
		c.logger.Warnw("food identification without title", "raw", text)
		return nil, fmt.Errorf("identify food: %w: missing title", models.ErrMalformedAIResponse)
	}

	id := models.ClassifyIdentification(raw.Title, raw.Description)
	c.logger.Infow("food identified", "title", id.Title, "confidence", id.Confidence.String())
	return &id, nil
}

// LookupNutrition estimates a standard serving of the named meal.
func (c *Client) LookupNutrition(ctx context.Context, foodName string) (*models.NutritionInfo, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: nutritionPrompt(foodName),
			},
		},
		MaxTokens:      c.maxTokens,
		Temperature:    0,
		ResponseFormat: jsonSchemaFormat("nutrition_info", &nutritionSchema),
	}

	text, err := c.complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("lookup nutrition: %w", err)
	}

	info, err := parseNutrition(text)
	if err != nil {
		c.logger.Warnw("failed to parse nutrition JSON", "raw", text, "error", err)
		return nil, fmt.Errorf("lookup nutrition: %w", err)
	}
	return info, nil
}

// GenerateAdvice writes a short coaching message over the whole meal log.
func (c *Client) GenerateAdvice(ctx context.Context, profile models.UserProfile, meals []models.Meal, calc *models.UserCalculations) (string, error) {
	if calc == nil {
		return NoCalculationsAdvice, nil
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: adviceSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: advicePrompt(profile, meals, calc),
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
	}

	text, err := c.complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generate advice: %w", err)
	}
	return text, nil
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
