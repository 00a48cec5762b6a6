package bot

import (
	"errors"
	"testing"

	"nutrivision/internal/models"
)

func TestWizard_HappyPath(t *testing.T) {
	w := newProfileWizard()
	answers := []string{"Female", "34", "162,5", "58.2", "Moderately Active", "Lose Weight"}
	for _, a := range answers {
		done, err := w.Answer(a)
		if err != nil {
			t.Fatalf("answer %q: %v", a, err)
		}
		if done {
			t.Fatalf("wizard finished early at %q", a)
		}
	}

	prompt, options := w.Prompt()
	if len(options) != 2 || options[0] != answerSave {
		t.Errorf("expected save/restart options, got %v", options)
	}
	if prompt == "" {
		t.Error("expected a summary prompt")
	}

	done, err := w.Answer("Save")
	if err != nil || !done {
		t.Fatalf("expected done, got done=%v err=%v", done, err)
	}

	want := models.UserProfile{
		Age: 34, Gender: models.GenderFemale, Height: 162.5, Weight: 58.2,
		ActivityLevel: models.ActivityModeratelyActive, Goal: models.GoalLose,
	}
	if got := w.Profile(); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestWizard_RejectsBadAnswers(t *testing.T) {
	cases := []struct {
		name    string
		prefix  []string
		bad     string
		wantErr bool
	}{
		{"gender", nil, "robot", true},
		{"age text", []string{"Male"}, "thirty", true},
		{"age zero", []string{"Male"}, "0", true},
		{"height too small", []string{"Male", "30"}, "20", true},
		{"weight too large", []string{"Male", "30", "180"}, "900", true},
		{"activity", []string{"Male", "30", "180", "80"}, "couch potato", true},
		{"goal", []string{"Male", "30", "180", "80", "Sedentary"}, "bulk", true},
		{"confirm", []string{"Male", "30", "180", "80", "Sedentary", "Gain Weight"}, "maybe", true},
		{"activity alias", []string{"Male", "30", "180", "80"}, "very_active", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newProfileWizard()
			for _, a := range tc.prefix {
				if _, err := w.Answer(a); err != nil {
					t.Fatalf("prefix %q: %v", a, err)
				}
			}
			step := w.step
			_, err := w.Answer(tc.bad)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Answer(%q) error = %v, wantErr %v", tc.bad, err, tc.wantErr)
			}
			if err == nil {
				return
			}
			var ie *inputError
			if !errors.As(err, &ie) || ie.hint == "" {
				t.Errorf("expected a hint, got %v", err)
			}
			if w.step != step {
				t.Errorf("step advanced on bad input: %d -> %d", step, w.step)
			}
		})
	}
}

func TestWizard_Restart(t *testing.T) {
	w := newProfileWizard()
	for _, a := range []string{"m", "40", "180", "90", "light", "maintain"} {
		w.Answer(a)
	}
	done, err := w.Answer("Start over")
	if done || err != nil {
		t.Fatalf("expected restart, got done=%v err=%v", done, err)
	}
	if w.step != stepGender || w.Profile() != (models.UserProfile{}) {
		t.Errorf("expected a fresh wizard, got step=%d draft=%+v", w.step, w.Profile())
	}
}
