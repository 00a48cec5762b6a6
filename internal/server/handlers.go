package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nutrivision/internal/metrics"
	"nutrivision/internal/models"
	"nutrivision/internal/tracker"
)

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// writeError maps tracker failures onto HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	var te *tracker.Error
	switch {
	case errors.As(err, &te):
		status := http.StatusBadGateway
		if te.Kind == tracker.KindValidationFailure {
			status = http.StatusBadRequest
		}
		apiError(c, status, te.UserMessage())
	case errors.Is(err, tracker.ErrAnalysisInProgress), errors.Is(err, tracker.ErrNoPending):
		apiError(c, http.StatusConflict, tracker.UserMessage(err))
	case errors.Is(err, tracker.ErrProfileRequired):
		apiError(c, http.StatusPreconditionFailed, tracker.UserMessage(err))
	case errors.Is(err, models.ErrInvalidProfile):
		apiError(c, http.StatusBadRequest, err.Error())
	default:
		s.logger.Errorw("Unhandled request error", "path", c.FullPath(), "error", err)
		apiError(c, http.StatusInternalServerError, "internal error")
	}
}

/* ─── Profile ─────────────────────────────────────────────────────────── */

type profileResponse struct {
	Profile      models.UserProfile       `json:"profile"`
	Calculations *models.UserCalculations `json:"calculations"`
	BMICategory  string                   `json:"bmiCategory,omitempty"`
}

// profileRequest accepts the stored enum strings or their short aliases.
type profileRequest struct {
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	Weight        float64 `json:"weight"`
	Height        float64 `json:"height"`
	ActivityLevel string  `json:"activityLevel"`
	Goal          string  `json:"goal"`
}

func (r profileRequest) toProfile() (*models.UserProfile, error) {
	gender, err := models.ParseGender(r.Gender)
	if err != nil {
		return nil, err
	}
	activity, err := models.ParseActivityLevel(r.ActivityLevel)
	if err != nil {
		return nil, err
	}
	goal, err := models.ParseGoal(r.Goal)
	if err != nil {
		return nil, err
	}
	return &models.UserProfile{
		Age:           r.Age,
		Gender:        gender,
		Weight:        r.Weight,
		Height:        r.Height,
		ActivityLevel: activity,
		Goal:          goal,
	}, nil
}

func (s *Server) getProfile(c *gin.Context) {
	p := s.tracker.Profile()
	if p == nil {
		apiError(c, http.StatusNotFound, "no profile")
		return
	}
	resp := profileResponse{Profile: *p, Calculations: s.tracker.Calculations()}
	if resp.Calculations != nil {
		resp.BMICategory = metrics.BMICategory(resp.Calculations.BMI)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) putProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid profile body")
		return
	}
	p, err := req.toProfile()
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.tracker.SetProfile(c.Request.Context(), p); err != nil {
		s.writeError(c, err)
		return
	}
	s.getProfile(c)
}

func (s *Server) deleteProfile(c *gin.Context) {
	if err := s.tracker.SetProfile(c.Request.Context(), nil); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* ─── Meals ───────────────────────────────────────────────────────────── */

// mealResponse exposes the transient image reference as a fetchable URL.
type mealResponse struct {
	models.Meal
	ImageURL string `json:"imageUrl,omitempty"`
}

func toMealResponse(m models.Meal) mealResponse {
	resp := mealResponse{Meal: m}
	if m.ImageURL != "" {
		resp.ImageURL = "/api/images/" + m.ImageURL
	}
	return resp
}

func toMealResponses(meals []models.Meal) []mealResponse {
	out := make([]mealResponse, 0, len(meals))
	for _, m := range meals {
		out = append(out, toMealResponse(m))
	}
	return out
}

type pendingResponse struct {
	tracker.Pending
	ImageURL string `json:"imageUrl"`
}

func (s *Server) analyzeMeal(c *gin.Context) {
	mealType := models.DefaultMealType
	if raw := c.PostForm("type"); raw != "" {
		t, err := models.ParseMealType(raw)
		if err != nil {
			apiError(c, http.StatusBadRequest, "type must be one of Breakfast, Lunch, Dinner, Snack")
			return
		}
		mealType = t
	}

	header, err := c.FormFile("image")
	if err != nil {
		apiError(c, http.StatusBadRequest, "missing image file")
		return
	}
	if header.Size > models.MaxImageBytes {
		apiError(c, http.StatusBadRequest, models.ImageErrorMessage(models.ErrImageTooLarge))
		return
	}
	f, err := header.Open()
	if err != nil {
		apiError(c, http.StatusBadRequest, "could not read image")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, models.MaxImageBytes+1))
	if err != nil {
		apiError(c, http.StatusBadRequest, "could not read image")
		return
	}
	img, err := models.NewImage(data)
	if err != nil {
		apiError(c, http.StatusBadRequest, models.ImageErrorMessage(err))
		return
	}

	out, err := s.tracker.AnalyzeImage(c.Request.Context(), img, mealType)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if out.Pending != nil {
		c.JSON(http.StatusAccepted, gin.H{"pending": pendingResponse{
			Pending:  *out.Pending,
			ImageURL: "/api/images/" + out.Pending.ImageRef,
		}})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"meal": toMealResponse(*out.Meal)})
}

func (s *Server) confirmMeal(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apiError(c, http.StatusBadRequest, "invalid body")
		return
	}

	meal, err := s.tracker.ConfirmFood(c.Request.Context(), req.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"meal": toMealResponse(*meal)})
}

func (s *Server) cancelMeal(c *gin.Context) {
	s.tracker.CancelPending()
	c.Status(http.StatusNoContent)
}

func (s *Server) listMeals(c *gin.Context) {
	c.JSON(http.StatusOK, toMealResponses(s.tracker.Meals()))
}

type dayGroupResponse struct {
	Day   string         `json:"day"`
	Label string         `json:"label"`
	Meals []mealResponse `json:"meals"`
}

func (s *Server) getHistory(c *gin.Context) {
	groups := s.tracker.History(time.Now())
	out := make([]dayGroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, dayGroupResponse{Day: g.Day, Label: g.Label, Meals: toMealResponses(g.Meals)})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) clearMeals(c *gin.Context) {
	if c.Query("confirm") != "true" {
		apiError(c, http.StatusBadRequest, "clearing all meals requires confirm=true")
		return
	}
	if err := s.tracker.ClearMeals(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* ─── Images and advice ───────────────────────────────────────────────── */

func (s *Server) getImage(c *gin.Context) {
	img, ok := s.tracker.Image(c.Param("ref"))
	if !ok {
		apiError(c, http.StatusNotFound, "image not found")
		return
	}
	c.Data(http.StatusOK, img.MIMEType, img.Data)
}

func (s *Server) getAdvice(c *gin.Context) {
	text, fetching := s.tracker.Advice()
	c.JSON(http.StatusOK, gin.H{"advice": text, "fetching": fetching})
}
