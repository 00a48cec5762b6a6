// internal/models/identification.go
package models

import (
	"errors"
	"strings"
)

// UncertainTitle is the title the vision model must return when it cannot
// name the dish.
const UncertainTitle = "Uncertain Food"

// ErrMalformedAIResponse marks AI output that does not match the requested
// JSON shape.
var ErrMalformedAIResponse = errors.New("malformed AI response")

type Confidence int

const (
	Confident Confidence = iota
	Uncertain
)

func (c Confidence) String() string {
	if c == Uncertain {
		return "uncertain"
	}
	return "confident"
}

// Identification is the result of the image stage.
type Identification struct {
	Confidence  Confidence
	Title       string
	Description string
}

// ClassifyIdentification tags a raw model answer. The model signals doubt
// only through its title, so any title containing "uncertain" counts.
func ClassifyIdentification(title, description string) Identification {
	c := Confident
	if strings.Contains(strings.ToLower(title), "uncertain") {
		c = Uncertain
	}
	return Identification{Confidence: c, Title: title, Description: description}
}
