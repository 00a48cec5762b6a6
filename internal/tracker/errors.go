package tracker

import (
	"errors"
	"fmt"

	"nutrivision/internal/models"
)

var (
	ErrAnalysisInProgress = errors.New("an analysis is already in progress")
	ErrNoPending          = errors.New("no food is waiting for confirmation")
	ErrProfileRequired    = errors.New("a profile is required before analyzing meals")
	ErrEmptyFoodName      = errors.New("food name is empty")
)

type Kind int

const (
	KindMalformedAIResponse Kind = iota + 1
	KindNetworkOrServiceFailure
	KindValidationFailure
	KindPersistenceFailure
)

func (k Kind) String() string {
	switch k {
	case KindMalformedAIResponse:
		return "malformed AI response"
	case KindNetworkOrServiceFailure:
		return "network or service failure"
	case KindValidationFailure:
		return "validation failure"
	case KindPersistenceFailure:
		return "persistence failure"
	}
	return "unknown"
}

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageIdentify  Stage = "identify"
	StageConfirm   Stage = "confirm"
	StageNutrition Stage = "nutrition"
	StageStorage   Stage = "storage"
)

// Error is a failure of one pipeline stage.
type Error struct {
	Kind  Kind
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown to the user for this failure.
func (e *Error) UserMessage() string {
	if e.Kind == KindValidationFailure {
		if errors.Is(e.Err, ErrEmptyFoodName) {
			return "Please enter a food name."
		}
		return e.Err.Error()
	}
	switch e.Stage {
	case StageIdentify:
		return "Failed to identify the food from the image. Please try again."
	case StageNutrition:
		return "Failed to get nutritional info. Please try again with a clearer name."
	}
	return "Something went wrong. Please try again."
}

// stageError tags an AI failure by whether the service answered at all.
func stageError(stage Stage, err error) *Error {
	kind := KindNetworkOrServiceFailure
	if errors.Is(err, models.ErrMalformedAIResponse) {
		kind = KindMalformedAIResponse
	}
	return &Error{Kind: kind, Stage: stage, Err: err}
}

// UserMessage returns the user-facing text for any error the tracker returns.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	switch {
	case errors.Is(err, ErrAnalysisInProgress):
		return "Please wait, the previous photo is still being analyzed."
	case errors.Is(err, ErrNoPending):
		return "There is no food waiting for a name. Upload a photo first."
	case errors.Is(err, ErrProfileRequired):
		return "Please set up your profile first."
	case errors.Is(err, models.ErrInvalidProfile):
		return err.Error()
	}
	return "Something went wrong. Please try again."
}
