package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"nutrivision/internal/models"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	s, err := NewSQLiteDB(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProfile_AbsentIsNil(t *testing.T) {
	s := newTestDB(t)
	p, err := s.LoadProfile(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil profile, got %+v", p)
	}
}

func TestProfile_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	want := models.UserProfile{
		Age: 41, Gender: models.GenderMale, Weight: 82.5, Height: 181,
		ActivityLevel: models.ActivityVeryActive, Goal: models.GoalGain,
	}
	if err := s.SaveProfile(ctx, &want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.LoadProfile(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || *got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	// Overwrite replaces wholesale
	want.Weight = 80
	s.SaveProfile(ctx, &want)
	got, _ = s.LoadProfile(ctx)
	if got.Weight != 80 {
		t.Errorf("expected weight 80 after overwrite, got %v", got.Weight)
	}
}

func TestProfile_NilDeletes(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	p := models.DefaultProfile()
	s.SaveProfile(ctx, &p)
	if err := s.SaveProfile(ctx, nil); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := s.LoadProfile(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Errorf("expected profile to be removed, got %+v", got)
	}
}

func TestMeals_AbsentIsEmpty(t *testing.T) {
	s := newTestDB(t)
	meals, err := s.LoadMeals(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meals == nil || len(meals) != 0 {
		t.Errorf("expected empty non-nil log, got %#v", meals)
	}
}

func TestMeals_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	date := time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)
	meals := []models.Meal{
		{
			ID: 1, Name: "Dal Makhani", Description: "* **Dal:** lentils",
			ImageURL: "blob:abc", Type: models.MealDinner, Date: date,
			Nutrition: models.NutritionInfo{
				Calories: 420, Protein: 18,
				Carbohydrates: models.Carbohydrates{Total: 45, Fiber: 12, Sugar: 3},
				Fat:           models.Fat{Total: 19, Saturated: 9},
				Vitamins:      []models.Nutrient{{Name: "Folate", Amount: 180, Unit: "mcg"}},
				Minerals:      []models.Nutrient{},
			},
		},
		{ID: 2, Name: "Apple", Type: models.MealSnack, Date: date.Add(time.Hour)},
	}
	if err := s.SaveMeals(ctx, meals); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.LoadMeals(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 meals, got %d", len(got))
	}
	if got[0].Name != "Dal Makhani" || got[1].Name != "Apple" {
		t.Errorf("order not preserved: %q, %q", got[0].Name, got[1].Name)
	}
	if !got[0].Date.Equal(date) {
		t.Errorf("expected date %v, got %v", date, got[0].Date)
	}
	if got[0].Nutrition.Carbohydrates.Fiber != 12 || got[0].Nutrition.Vitamins[0].Unit != "mcg" {
		t.Errorf("nutrition not preserved: %+v", got[0].Nutrition)
	}
	if got[0].ImageURL != "" {
		t.Errorf("image reference should not be stored, got %q", got[0].ImageURL)
	}
}

func TestMeals_SaveEmptyClears(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	s.SaveMeals(ctx, []models.Meal{{ID: 1, Name: "Toast"}})
	if err := s.SaveMeals(ctx, nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ := s.LoadMeals(ctx)
	if len(got) != 0 {
		t.Errorf("expected empty log, got %d meals", len(got))
	}
}

func TestCorruptRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	s.put(ctx, ProfileKey, "{not json")
	s.put(ctx, MealsKey, `{"id": 1}`)

	if _, err := s.LoadProfile(ctx); !errors.Is(err, ErrCorruptRecord) {
		t.Errorf("expected ErrCorruptRecord for profile, got %v", err)
	}
	if _, err := s.LoadMeals(ctx); !errors.Is(err, ErrCorruptRecord) {
		t.Errorf("expected ErrCorruptRecord for meals, got %v", err)
	}

	// A fresh save recovers the record
	if err := s.SaveMeals(ctx, []models.Meal{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.LoadMeals(ctx); err != nil {
		t.Errorf("expected recovery after save, got %v", err)
	}
}

func TestProfile_LoadNormalizesAliases(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	s.put(ctx, ProfileKey, `{"age":25,"gender":"male","weight":70,"height":175,"activityLevel":"sedentary","goal":"lose"}`)
	got, err := s.LoadProfile(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := models.UserProfile{
		Age: 25, Gender: models.GenderMale, Weight: 70, Height: 175,
		ActivityLevel: models.ActivitySedentary, Goal: models.GoalLose,
	}
	if got == nil || *got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	s.put(ctx, ProfileKey, `{"age":25,"gender":"robot","weight":70,"height":175,"activityLevel":"sedentary","goal":"lose"}`)
	if _, err := s.LoadProfile(ctx); !errors.Is(err, ErrCorruptRecord) {
		t.Errorf("expected ErrCorruptRecord for an unknown gender, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	s, err := NewSQLiteDB(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.SaveMeals(ctx, []models.Meal{{ID: 7, Name: "Soup"}})
	s.Close()

	s2, err := NewSQLiteDB(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, _ := s2.LoadMeals(ctx)
	if len(got) != 1 || got[0].ID != 7 {
		t.Errorf("expected persisted meal, got %+v", got)
	}
}
