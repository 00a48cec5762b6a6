// Package tracker runs the meal pipeline: identify a photo, ask the user
// when the model is unsure, look up nutrition, append to the log.
package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"nutrivision/internal/advice"
	"nutrivision/internal/metrics"
	"nutrivision/internal/models"
	"nutrivision/pkg/logger"
)

// Store persists the profile and the meal log. Implemented by db.SQLiteDB.
type Store interface {
	LoadProfile(ctx context.Context) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, p *models.UserProfile) error
	LoadMeals(ctx context.Context) ([]models.Meal, error)
	SaveMeals(ctx context.Context, meals []models.Meal) error
}

type Identifier interface {
	IdentifyFood(ctx context.Context, img models.Image) (*models.Identification, error)
}

type NutritionLookup interface {
	LookupNutrition(ctx context.Context, foodName string) (*models.NutritionInfo, error)
}

// Advisor receives every state change worth coaching on. Implemented by
// advice.Scheduler.
type Advisor interface {
	Schedule(req advice.Request)
	Reset()
	Advice() (string, bool)
}

// Outcome of an analysis: exactly one of Meal and Pending is set.
type Outcome struct {
	Meal    *models.Meal `json:"meal,omitempty"`
	Pending *Pending     `json:"pending,omitempty"`
}

const storeTimeout = 5 * time.Second

type Tracker struct {
	store      Store
	identifier Identifier
	lookup     NutritionLookup
	advisor    Advisor
	logger     *logger.Logger
	now        func() time.Time

	mu        sync.Mutex
	profile   *models.UserProfile
	calc      *models.UserCalculations
	meals     []models.Meal
	gate      Gate
	analyzing bool
	images    map[string]models.Image
	lastID    int64
}

// New loads the saved state. Unreadable records are logged and treated as
// absent.
func New(store Store, identifier Identifier, lookup NutritionLookup, advisor Advisor, l *logger.Logger) *Tracker {
	if l == nil {
		l = logger.NewNop()
	}
	t := &Tracker{
		store:      store,
		identifier: identifier,
		lookup:     lookup,
		advisor:    advisor,
		logger:     l.Named("tracker"),
		now:        time.Now,
		meals:      []models.Meal{},
		images:     make(map[string]models.Image),
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	profile, err := store.LoadProfile(ctx)
	if err != nil {
		t.logger.Errorw("Failed to load profile, starting without one", "error", err)
		profile = nil
	}
	meals, err := store.LoadMeals(ctx)
	if err != nil {
		t.logger.Errorw("Failed to load meal log, starting empty", "error", err)
		meals = nil
	}

	t.profile = profile
	t.calc = metrics.Compute(profile)
	if meals != nil {
		t.meals = meals
	}
	for _, m := range t.meals {
		if m.ID > t.lastID {
			t.lastID = m.ID
		}
	}
	t.logger.Infow("State loaded", "hasProfile", profile != nil, "meals", len(t.meals))

	t.scheduleAdviceLocked()
	return t
}

// SetProfile replaces the profile wholesale. nil removes it.
func (t *Tracker) SetProfile(ctx context.Context, p *models.UserProfile) error {
	if p != nil {
		np, err := p.Normalize()
		if err != nil {
			return err
		}
		p = &np
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.profile = p
	t.calc = metrics.Compute(p)

	sctx, cancel := storeContext(ctx)
	defer cancel()
	if err := t.store.SaveProfile(sctx, p); err != nil {
		t.persistFailed(err)
	}

	if p == nil {
		t.resetAdvice()
		return nil
	}
	t.scheduleAdviceLocked()
	return nil
}

// AnalyzeImage identifies the meal in img. A confident identification is
// looked up and recorded at once; an uncertain one is held for
// confirmation. Any previous pending item is discarded.
func (t *Tracker) AnalyzeImage(ctx context.Context, img models.Image, mealType models.MealType) (*Outcome, error) {
	if mealType == "" {
		mealType = models.DefaultMealType
	}

	t.mu.Lock()
	if t.profile == nil {
		t.mu.Unlock()
		return nil, ErrProfileRequired
	}
	if t.analyzing {
		t.mu.Unlock()
		return nil, ErrAnalysisInProgress
	}
	if prev, ok := t.gate.Cancel(); ok {
		delete(t.images, prev.ImageRef)
	}
	ref := "blob:" + uuid.NewString()
	t.images[ref] = img
	t.analyzing = true
	t.mu.Unlock()

	t.logger.Infow("Analyzing image", "ref", ref, "type", mealType, "bytes", len(img.Data))

	id, err := t.identifier.IdentifyFood(ctx, img)
	if err != nil {
		t.abandon(ref)
		t.logger.Errorw("Food identification failed", "error", err)
		return nil, stageError(StageIdentify, err)
	}

	if id.Confidence == models.Uncertain {
		t.mu.Lock()
		p := t.gate.Begin(ref, id.Description, mealType)
		t.analyzing = false
		t.mu.Unlock()
		t.logger.Infow("Identification uncertain, awaiting confirmation", "guess", p.Guess)
		return &Outcome{Pending: &p}, nil
	}

	info, err := t.lookup.LookupNutrition(ctx, id.Title)
	if err != nil {
		t.abandon(ref)
		t.logger.Errorw("Nutrition lookup failed", "food", id.Title, "error", err)
		return nil, stageError(StageNutrition, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.analyzing = false
	meal := t.appendMealLocked(ctx, id.Title, id.Description, ref, *info, mealType)
	return &Outcome{Meal: &meal}, nil
}

// ConfirmFood looks up the user's name for the pending item. When the lookup
// fails the item stays pending so a clearer name can be tried.
func (t *Tracker) ConfirmFood(ctx context.Context, name string) (*models.Meal, error) {
	t.mu.Lock()
	if t.analyzing {
		t.mu.Unlock()
		return nil, ErrAnalysisInProgress
	}
	p, name, err := t.gate.Confirm(name)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	t.analyzing = true
	t.mu.Unlock()

	info, err := t.lookup.LookupNutrition(ctx, name)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.analyzing = false

	if err != nil {
		t.gate.Reopen()
		t.logger.Errorw("Nutrition lookup failed for confirmed name", "food", name, "error", err)
		return nil, stageError(StageNutrition, err)
	}

	t.gate.Settle()
	meal := t.appendMealLocked(ctx, name, p.Description, p.ImageRef, *info, p.MealType)
	return &meal, nil
}

// CancelPending drops the pending item, if any.
func (t *Tracker) CancelPending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.gate.State() == GateConfirmed {
		// lookup in flight; ConfirmFood settles the gate
		return false
	}
	p, ok := t.gate.Cancel()
	if ok {
		delete(t.images, p.ImageRef)
	}
	return ok
}

// ClearMeals empties the log along with the images, the pending item and
// the advice.
func (t *Tracker) ClearMeals(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.analyzing {
		return ErrAnalysisInProgress
	}

	t.meals = []models.Meal{}
	t.images = make(map[string]models.Image)
	t.gate.Cancel()
	t.resetAdvice()

	sctx, cancel := storeContext(ctx)
	defer cancel()
	if err := t.store.SaveMeals(sctx, t.meals); err != nil {
		t.persistFailed(err)
	}
	t.logger.Infow("Meal log cleared")
	return nil
}

func (t *Tracker) Profile() *models.UserProfile {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.profile == nil {
		return nil
	}
	p := *t.profile
	return &p
}

func (t *Tracker) Calculations() *models.UserCalculations {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.calc == nil {
		return nil
	}
	c := *t.calc
	return &c
}

// Meals returns the log in insertion order.
func (t *Tracker) Meals() []models.Meal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Meal{}, t.meals...)
}

func (t *Tracker) Pending() *Pending {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.gate.Pending()
	if !ok {
		return nil
	}
	return &p
}

func (t *Tracker) Analyzing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.analyzing
}

// Advice returns the latest advice text and whether a request is in flight.
func (t *Tracker) Advice() (string, bool) {
	if t.advisor == nil {
		return "", false
	}
	return t.advisor.Advice()
}

// Image returns an uploaded photo by its blob reference.
func (t *Tracker) Image(ref string) (models.Image, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	img, ok := t.images[ref]
	return img, ok
}

func (t *Tracker) History(now time.Time) []models.DayGroup {
	return models.GroupByDay(t.Meals(), now)
}

func (t *Tracker) abandon(ref string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.images, ref)
	t.analyzing = false
}

func (t *Tracker) appendMealLocked(ctx context.Context, name, description, ref string, info models.NutritionInfo, mealType models.MealType) models.Meal {
	now := t.now()
	id := now.UnixMilli()
	if id <= t.lastID {
		id = t.lastID + 1
	}
	t.lastID = id

	meal := models.Meal{
		ID:          id,
		Name:        name,
		Description: description,
		ImageURL:    ref,
		Nutrition:   info,
		Type:        mealType,
		Date:        now.UTC(),
	}
	t.meals = append(t.meals, meal)

	sctx, cancel := storeContext(ctx)
	defer cancel()
	if err := t.store.SaveMeals(sctx, t.meals); err != nil {
		t.persistFailed(err)
	}
	t.logger.Infow("Meal added", "id", meal.ID, "name", meal.Name, "calories", meal.Nutrition.Calories)

	t.scheduleAdviceLocked()
	return meal
}

func (t *Tracker) scheduleAdviceLocked() {
	if t.advisor == nil || t.profile == nil || len(t.meals) == 0 {
		return
	}
	t.advisor.Schedule(advice.Request{
		Profile:      *t.profile,
		Meals:        append([]models.Meal(nil), t.meals...),
		Calculations: t.calc,
	})
}

func (t *Tracker) resetAdvice() {
	if t.advisor != nil {
		t.advisor.Reset()
	}
}

// storeContext detaches writes from the caller's cancellation.
func storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
}

func (t *Tracker) persistFailed(err error) {
	e := &Error{Kind: KindPersistenceFailure, Stage: StageStorage, Err: err}
	if errors.Is(err, context.DeadlineExceeded) {
		t.logger.Warnw("Persistence timed out", "error", e)
		return
	}
	t.logger.Errorw("Persistence failed", "error", e)
}
