package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseGender(t *testing.T) {
	cases := []struct {
		in      string
		want    Gender
		wantErr bool
	}{
		{"male", GenderMale, false},
		{"M", GenderMale, false},
		{" Female ", GenderFemale, false},
		{"f", GenderFemale, false},
		{"other", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseGender(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseGender(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseGender(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseActivityLevel(t *testing.T) {
	cases := []struct {
		in   string
		want ActivityLevel
	}{
		{"sedentary", ActivitySedentary},
		{"light", ActivityLightlyActive},
		{"moderate", ActivityModeratelyActive},
		{"active", ActivityVeryActive},
		{"very_active", ActivitySuperActive},
		{"Very Active", ActivityVeryActive},
		{"super active", ActivitySuperActive},
		{string(ActivityModeratelyActive), ActivityModeratelyActive},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseActivityLevel(tc.in)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}

	if _, err := ParseActivityLevel("couch"); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile, got %v", err)
	}
}

func TestActivityKeyRoundTrip(t *testing.T) {
	for _, a := range ActivityLevels {
		key := ActivityKey(a)
		if key == "" {
			t.Errorf("no key for %q", a)
			continue
		}
		if back, _ := ParseActivityLevel(key); back != a {
			t.Errorf("key %q parsed to %q, want %q", key, back, a)
		}
	}
}

func TestParseGoal(t *testing.T) {
	for in, want := range map[string]Goal{
		"lose":            GoalLose,
		"MAINTAIN":        GoalMaintain,
		"gain":            GoalGain,
		"Maintain Weight": GoalMaintain,
	} {
		got, err := ParseGoal(in)
		if err != nil || got != want {
			t.Errorf("ParseGoal(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseGoal("bulk"); err == nil {
		t.Error("expected error for unknown goal")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mut     func(p *UserProfile)
		wantErr bool
	}{
		{"default is valid", func(p *UserProfile) {}, false},
		{"zero fields allowed", func(p *UserProfile) { p.Age, p.Weight, p.Height = 0, 0, 0 }, false},
		{"negative age", func(p *UserProfile) { p.Age = -3 }, true},
		{"negative weight", func(p *UserProfile) { p.Weight = -1 }, true},
		{"negative height", func(p *UserProfile) { p.Height = -0.5 }, true},
		{"unknown gender", func(p *UserProfile) { p.Gender = "x" }, true},
		{"unknown activity", func(p *UserProfile) { p.ActivityLevel = "lazy" }, true},
		{"unknown goal", func(p *UserProfile) { p.Goal = "" }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultProfile()
			tc.mut(&p)
			err := p.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("expected ErrInvalidProfile, got %v", err)
			}
		})
	}
}

// Stored profiles keep the human-readable enum strings.
func TestProfileJSONShape(t *testing.T) {
	raw, err := json.Marshal(DefaultProfile())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"age":25,"gender":"Female","weight":60,"height":165,"activityLevel":"Lightly Active (light exercise/sports 1-3 days/week)","goal":"Maintain Weight"}`
	if string(raw) != want {
		t.Errorf("got  %s\nwant %s", raw, want)
	}
}

func TestNormalize(t *testing.T) {
	p := UserProfile{Age: 30, Gender: "F", Weight: 55, Height: 160, ActivityLevel: "very active", Goal: "gain"}
	got, err := p.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := UserProfile{Age: 30, Gender: GenderFemale, Weight: 55, Height: 160, ActivityLevel: ActivityVeryActive, Goal: GoalGain}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if p.Gender != "F" {
		t.Error("Normalize must not modify the receiver")
	}

	p.Goal = "bulk"
	if _, err := p.Normalize(); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile, got %v", err)
	}
}
