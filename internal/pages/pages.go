// Package pages derives the ordered page prompts of a coloring book from a
// single theme. Output is a pure function of its arguments.
package pages

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidInput is returned for an empty theme or a non-positive page count.
var ErrInvalidInput = errors.New("invalid page request")

var variants = [...]string{
	"wide shot",
	"close up",
	"playful scene",
	"magical background",
	"action pose",
}

// Request is the prompt for a single page. Index is zero-based.
type Request struct {
	Index  int    `json:"index"`
	Prompt string `json:"prompt"`
}

// Variants returns the ordered scene variants applied to successive pages.
func Variants() []string {
	return slices.Clone(variants[:])
}

// Build returns count requests for theme, one per index in ascending order.
// Index i uses variant i mod len(Variants()); pages past the first cycle carry
// a "variation k" suffix so that no two indices share a prompt.
func Build(theme string, count int) ([]Request, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return nil, fmt.Errorf("%w: theme is required", ErrInvalidInput)
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: page count must be at least 1, got %d", ErrInvalidInput, count)
	}

	requests := make([]Request, count)
	for i := range requests {
		requests[i] = Request{Index: i, Prompt: prompt(theme, i)}
	}
	return requests, nil
}

func prompt(theme string, index int) string {
	variant := variants[index%len(variants)]
	cycle := index / len(variants)
	if cycle == 0 {
		return fmt.Sprintf("%s, %s", theme, variant)
	}
	return fmt.Sprintf("%s, %s, variation %d", theme, variant, cycle+1)
}
