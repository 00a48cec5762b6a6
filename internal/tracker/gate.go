package tracker

import (
	"strings"

	"nutrivision/internal/models"
)

type GateState int

const (
	GateIdle GateState = iota
	GateAwaitingConfirmation
	GateConfirmed
)

func (s GateState) String() string {
	switch s {
	case GateAwaitingConfirmation:
		return "awaiting_confirmation"
	case GateConfirmed:
		return "confirmed"
	}
	return "idle"
}

// Pending is an uncertain identification waiting for the user to name it.
type Pending struct {
	ImageRef    string          `json:"imageRef"`
	Description string          `json:"description"`
	Guess       string          `json:"guess"`
	MealType    models.MealType `json:"mealType"`
}

// Gate holds at most one pending item. It is not safe for concurrent use;
// the Tracker guards it.
type Gate struct {
	state   GateState
	pending *Pending
}

func (g *Gate) State() GateState {
	return g.state
}

// Pending returns the item awaiting confirmation, including one whose
// lookup is in flight.
func (g *Gate) Pending() (Pending, bool) {
	if g.pending == nil {
		return Pending{}, false
	}
	return *g.pending, true
}

// Begin opens the gate for an uncertain identification.
func (g *Gate) Begin(imageRef, description string, mealType models.MealType) Pending {
	p := Pending{
		ImageRef:    imageRef,
		Description: description,
		Guess:       Guess(description),
		MealType:    mealType,
	}
	g.pending = &p
	g.state = GateAwaitingConfirmation
	return p
}

// Confirm accepts the user's name for the pending item. Nothing changes when
// the name is blank.
func (g *Gate) Confirm(name string) (Pending, string, error) {
	if g.state != GateAwaitingConfirmation || g.pending == nil {
		return Pending{}, "", ErrNoPending
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Pending{}, "", &Error{Kind: KindValidationFailure, Stage: StageConfirm, Err: ErrEmptyFoodName}
	}
	g.state = GateConfirmed
	return *g.pending, name, nil
}

// Reopen returns a confirmed item to the user after its lookup failed.
func (g *Gate) Reopen() {
	if g.state == GateConfirmed && g.pending != nil {
		g.state = GateAwaitingConfirmation
	}
}

// Settle closes the gate after the meal was recorded.
func (g *Gate) Settle() {
	g.pending = nil
	g.state = GateIdle
}

// Cancel discards the pending item and settles straight back to idle. It
// reports whether there was one.
func (g *Gate) Cancel() (Pending, bool) {
	if g.pending == nil {
		g.state = GateIdle
		return Pending{}, false
	}
	p := *g.pending
	g.pending = nil
	g.state = GateIdle
	return p, true
}
