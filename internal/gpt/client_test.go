package gpt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"nutrivision/internal/models"
)

// mockOpenAI serves canned chat completion responses and records the last
// request body it received.
type mockOpenAI struct {
	server *httptest.Server

	mu       sync.Mutex
	status   int
	body     interface{}
	lastReq  map[string]interface{}
	requests int
}

func newMockOpenAI(t *testing.T) *mockOpenAI {
	t.Helper()
	m := &mockOpenAI{status: http.StatusOK}
	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		m.mu.Lock()
		m.requests++
		m.lastReq = nil
		_ = json.Unmarshal(raw, &m.lastReq)
		status, body := m.status, m.body
		m.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(m.server.Close)
	return m
}

func (m *mockOpenAI) set(status int, body interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	m.body = body
}

func (m *mockOpenAI) client() *Client {
	return NewClientWithBaseURL("test-key", m.server.URL+"/v1").WithModel("test-model")
}

// chatResponse wraps a content string in the chat completions response shape.
func chatResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func testImage(t *testing.T) models.Image {
	t.Helper()
	img, err := models.NewImage(pngHeader)
	if err != nil {
		t.Fatalf("build test image: %v", err)
	}
	return img
}

const validNutrition = `{
	"calories": 650,
	"protein": 24.5,
	"carbohydrates": {"total": 80, "fiber": 9, "sugar": 6},
	"fat": {"total": 22, "saturated": 7.5},
	"vitamins": [{"name": "Vitamin C", "amount": 18, "unit": "mg"}],
	"minerals": [{"name": "Iron", "amount": 4.2, "unit": "mg"}, {"name": "Calcium", "amount": 120, "unit": "mg"}]
}`

/* ─── Identification ─────────────────────────────────────────────────── */

func TestIdentifyFood_Confident(t *testing.T) {
	m := newMockOpenAI(t)
	m.set(http.StatusOK, chatResponse(`{"title":"Indian Thali","description":"* **Roti:** Flat bread. * **Dal:** Lentil curry."}`))

	id, err := m.client().IdentifyFood(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if id.Confidence != models.Confident {
		t.Errorf("expected confident, got %s", id.Confidence)
	}
	if id.Title != "Indian Thali" {
		t.Errorf("expected title 'Indian Thali', got %q", id.Title)
	}
	if !strings.HasPrefix(id.Description, "* **Roti:**") {
		t.Errorf("unexpected description %q", id.Description)
	}
}

func TestIdentifyFood_Uncertain(t *testing.T) {
	m := newMockOpenAI(t)
	m.set(http.StatusOK, chatResponse(`{"title":"Uncertain Food","description":"I see rice, but I'm not sure about the exact type of curry."}`))

	id, err := m.client().IdentifyFood(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if id.Confidence != models.Uncertain {
		t.Errorf("expected uncertain, got %s", id.Confidence)
	}
}

func TestIdentifyFood_SendsImageAndSchema(t *testing.T) {
	m := newMockOpenAI(t)
	m.set(http.StatusOK, chatResponse(`{"title":"Salad","description":"* Greens"}`))

	if _, err := m.client().IdentifyFood(context.Background(), testImage(t)); err != nil {
		t.Fatalf("identify: %v", err)
	}

	m.mu.Lock()
	req := m.lastReq
	m.mu.Unlock()

	if req["model"] != "test-model" {
		t.Errorf("expected model 'test-model', got %v", req["model"])
	}
	format, _ := req["response_format"].(map[string]interface{})
	if format["type"] != "json_schema" {
		t.Errorf("expected json_schema response format, got %v", format["type"])
	}

	raw, _ := json.Marshal(req["messages"])
	if !strings.Contains(string(raw), "data:image/png;base64,") {
		t.Errorf("expected a PNG data URL in the request, got %s", raw)
	}
	if !strings.Contains(string(raw), models.UncertainTitle) {
		t.Error("expected the instructions to name the uncertain sentinel title")
	}
}

func TestIdentifyFood_MalformedJSON(t *testing.T) {
	m := newMockOpenAI(t)
	m.set(http.StatusOK, chatResponse(`not valid json at all`))

	_, err := m.client().IdentifyFood(context.Background(), testImage(t))
	if !errors.Is(err, models.ErrMalformedAIResponse) {
		t.Fatalf("expected ErrMalformedAIResponse, got %v", err)
	}
}

func TestIdentifyFood_MissingTitle(t *testing.T) {
	m := newMockOpenAI(t)
	m.set(http.StatusOK, chatResponse(`{"description":"* something"}`))

	_, err := m.client().IdentifyFood(context.Background(), testImage(t))
	if !errors.Is(err, models.ErrMalformedAIResponse) {
		t.Fatalf("expected ErrMalformedAIResponse, got %v", err)
	}
}

func TestIdentifyFood_ServiceError(t *testing.T) {
	m := newMockOpenAI(t)
	m.set(http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]string{"message": "server error", "type": "server_error"},
	})

	_, err := m.client().IdentifyFood(context.Background(), testImage(t))
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, models.ErrMalformedAIResponse) {
		t.Errorf("a rejected call must not be reported as malformed output: %v", err)
	}
}

func TestIdentifyFood_NoChoices(t *testing.T) {
	m := newMockOpenAI(t)
	m.set(http.StatusOK, map[string]interface{}{"id": "x", "choices": []interface{}{}})

	_, err := m.client().IdentifyFood(context.Background(), testImage(t))
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

/* ─── Nutrition ──────────────────────────────────────────────────────── */

func TestLookupNutrition_Success(t *testing.T) {
	m := newMockOpenAI(t)
	m.set(http.StatusOK, chatResponse(validNutrition))

	info, err := m.client().LookupNutrition(context.Background(), "Chicken Biryani")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if info.Calories != 650 || info.Protein != 24.5 {
		t.Errorf("unexpected calories/protein: %+v", info)
	}
	if info.Carbohydrates.Fiber != 9 || info.Fat.Saturated != 7.5 {
		t.Errorf("unexpected nested values: %+v", info)
	}
	if len(info.Minerals) != 2 || info.Minerals[1].Name != "Calcium" {
		t.Errorf("expected minerals in order, got %+v", info.Minerals)
	}

	raw, _ := json.Marshal(m.lastReq["messages"])
	if !strings.Contains(string(raw), "Chicken Biryani") {
		t.Errorf("expected the food name in the prompt, got %s", raw)
	}
}

func TestLookupNutrition_Malformed(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"not json", `calories: lots`},
		{"missing calories", `{"protein":1,"carbohydrates":{"total":1,"fiber":1,"sugar":1},"fat":{"total":1,"saturated":1},"vitamins":[],"minerals":[]}`},
		{"missing fiber", `{"calories":1,"protein":1,"carbohydrates":{"total":1,"sugar":1},"fat":{"total":1,"saturated":1},"vitamins":[],"minerals":[]}`},
		{"missing minerals", `{"calories":1,"protein":1,"carbohydrates":{"total":1,"fiber":1,"sugar":1},"fat":{"total":1,"saturated":1},"vitamins":[]}`},
		{"incomplete nutrient", `{"calories":1,"protein":1,"carbohydrates":{"total":1,"fiber":1,"sugar":1},"fat":{"total":1,"saturated":1},"vitamins":[{"name":"A"}],"minerals":[]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMockOpenAI(t)
			m.set(http.StatusOK, chatResponse(tc.content))
			_, err := m.client().LookupNutrition(context.Background(), "Soup")
			if !errors.Is(err, models.ErrMalformedAIResponse) {
				t.Fatalf("expected ErrMalformedAIResponse, got %v", err)
			}
		})
	}
}

func TestLookupNutrition_ZeroValuesAreValid(t *testing.T) {
	m := newMockOpenAI(t)
	m.set(http.StatusOK, chatResponse(`{"calories":0,"protein":0,"carbohydrates":{"total":0,"fiber":0,"sugar":0},"fat":{"total":0,"saturated":0},"vitamins":[],"minerals":[]}`))

	info, err := m.client().LookupNutrition(context.Background(), "Water")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if info.Calories != 0 || len(info.Vitamins) != 0 {
		t.Errorf("unexpected info %+v", info)
	}
}

/* ─── Advice ─────────────────────────────────────────────────────────── */

func adviceFixture() (models.UserProfile, []models.Meal, *models.UserCalculations) {
	profile := models.UserProfile{
		Age: 30, Gender: models.GenderFemale, Weight: 60, Height: 165,
		ActivityLevel: models.ActivityLightlyActive, Goal: models.GoalLose,
	}
	meals := []models.Meal{
		{Name: "Oatmeal", Type: models.MealBreakfast, Nutrition: models.NutritionInfo{Calories: 300, Protein: 10, Carbohydrates: models.Carbohydrates{Total: 50}, Fat: models.Fat{Total: 6}}},
		{Name: "Chicken Salad", Type: models.MealLunch, Nutrition: models.NutritionInfo{Calories: 450.4, Protein: 35.25, Carbohydrates: models.Carbohydrates{Total: 20}, Fat: models.Fat{Total: 18}}},
	}
	calc := &models.UserCalculations{TDEE: 1350.6}
	return profile, meals, calc
}

func TestGenerateAdvice_Success(t *testing.T) {
	m := newMockOpenAI(t)
	m.set(http.StatusOK, chatResponse("Great job! **Add more protein** at dinner."))

	profile, meals, calc := adviceFixture()
	advice, err := m.client().GenerateAdvice(context.Background(), profile, meals, calc)
	if err != nil {
		t.Fatalf("advice: %v", err)
	}
	if advice != "Great job! **Add more protein** at dinner." {
		t.Errorf("unexpected advice %q", advice)
	}
}

func TestGenerateAdvice_NoCalculations(t *testing.T) {
	m := newMockOpenAI(t)
	profile, meals, _ := adviceFixture()

	advice, err := m.client().GenerateAdvice(context.Background(), profile, meals, nil)
	if err != nil {
		t.Fatalf("advice: %v", err)
	}
	if advice != NoCalculationsAdvice {
		t.Errorf("expected fixed message, got %q", advice)
	}
	if m.requests != 0 {
		t.Errorf("expected no request to the service, got %d", m.requests)
	}
}

func TestAdvicePrompt_Totals(t *testing.T) {
	profile, meals, calc := adviceFixture()
	prompt := advicePrompt(profile, meals, calc)

	for _, want := range []string{
		"- Age: 30",
		"- Gender: Female",
		"- Goal: Lose Weight",
		"- Daily Calorie Target: 1351 kcal",
		"- Meals: Oatmeal (Breakfast), Chicken Salad (Lunch)",
		"- Total Calories Consumed: 750 kcal",
		"- Total Protein: 45.2 g",
		"- Total Carbohydrates: 70.0 g",
		"- Total Fat: 24.0 g",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\n%s", want, prompt)
		}
	}
}

func TestClient_Timeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	c := NewClientWithBaseURL("test-key", slow.URL+"/v1").WithTimeout(50 * time.Millisecond)
	start := time.Now()
	_, err := c.LookupNutrition(context.Background(), "Soup")
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if time.Since(start) > time.Second {
		t.Errorf("timeout was not applied, call took %s", time.Since(start))
	}
}
