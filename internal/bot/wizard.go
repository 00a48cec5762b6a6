package bot

import (
	"fmt"
	"strconv"
	"strings"

	"nutrivision/internal/models"
)

type wizardStep int

const (
	stepGender wizardStep = iota
	stepAge
	stepHeight
	stepWeight
	stepActivity
	stepGoal
	stepConfirm
)

const (
	answerSave    = "Save"
	answerRestart = "Start over"
)

// inputError carries the hint shown when an answer is rejected.
type inputError struct {
	hint string
}

func (e *inputError) Error() string {
	return e.hint
}

func invalidAnswer(format string, args ...interface{}) error {
	return &inputError{hint: fmt.Sprintf(format, args...)}
}

// profileWizard collects a profile one question at a time.
type profileWizard struct {
	step  wizardStep
	draft models.UserProfile
}

func newProfileWizard() *profileWizard {
	return &profileWizard{step: stepGender}
}

// Prompt returns the current question and the keyboard options, if any.
func (w *profileWizard) Prompt() (string, []string) {
	switch w.step {
	case stepGender:
		return "Let's set up your profile. What is your gender?", []string{string(models.GenderMale), string(models.GenderFemale)}
	case stepAge:
		return "How old are you? (years, e.g. 30)", nil
	case stepHeight:
		return "What is your height in centimeters? (e.g. 175)", nil
	case stepWeight:
		return "What is your weight in kilograms? (e.g. 70.5)", nil
	case stepActivity:
		opts := make([]string, 0, len(models.ActivityLevels))
		for _, a := range models.ActivityLevels {
			opts = append(opts, a.Short())
		}
		return "How active are you?", opts
	case stepGoal:
		opts := make([]string, 0, len(models.Goals))
		for _, g := range models.Goals {
			opts = append(opts, string(g))
		}
		return "What is your goal?", opts
	}
	return "Please check your profile:\n\n" + profileSummary(w.draft) + "\n\nSave it?", []string{answerSave, answerRestart}
}

// Answer applies input to the current step. It reports done once the user
// confirms; the profile is then in Profile.
func (w *profileWizard) Answer(input string) (bool, error) {
	input = strings.TrimSpace(input)

	switch w.step {
	case stepGender:
		g, err := models.ParseGender(input)
		if err != nil {
			return false, invalidAnswer("Please pick Male or Female")
		}
		w.draft.Gender = g
	case stepAge:
		age, err := strconv.Atoi(input)
		if err != nil || age < 1 || age > 120 {
			return false, invalidAnswer("Please enter an age between 1 and 120")
		}
		w.draft.Age = age
	case stepHeight:
		h, err := parseMeasure(input)
		if err != nil || h < 50 || h > 250 {
			return false, invalidAnswer("Please enter a height between 50 and 250 cm")
		}
		w.draft.Height = h
	case stepWeight:
		kg, err := parseMeasure(input)
		if err != nil || kg < 20 || kg > 350 {
			return false, invalidAnswer("Please enter a weight between 20 and 350 kg")
		}
		w.draft.Weight = kg
	case stepActivity:
		a, err := models.ParseActivityLevel(input)
		if err != nil {
			return false, invalidAnswer("Please pick one of the activity levels")
		}
		w.draft.ActivityLevel = a
	case stepGoal:
		g, err := models.ParseGoal(input)
		if err != nil {
			return false, invalidAnswer("Please pick one of the goals")
		}
		w.draft.Goal = g
	case stepConfirm:
		switch strings.ToLower(input) {
		case strings.ToLower(answerSave), "yes", "y":
			return true, nil
		case strings.ToLower(answerRestart), "no", "n":
			*w = *newProfileWizard()
			return false, nil
		}
		return false, invalidAnswer("Please answer %s or %s", answerSave, answerRestart)
	}

	w.step++
	return false, nil
}

func (w *profileWizard) Profile() models.UserProfile {
	return w.draft
}

// parseMeasure accepts a decimal comma as well as a dot.
func parseMeasure(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}
