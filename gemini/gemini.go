// Package gemini implements a ragjudge.Judge on top of Google Gemini.
package gemini

import (
	"context"
	"fmt"
)

// Sampling holds the generation settings sent with a prompt.
type Sampling struct {
	Temperature float32
	TopP        float32
}

// TextGenerator answers a single-turn prompt with text.
type TextGenerator interface {
	GenerateText(ctx context.Context, model, prompt string, s Sampling) (string, error)
}

// GenerateFunc adapts a function to a TextGenerator.
type GenerateFunc func(ctx context.Context, model, prompt string, s Sampling) (string, error)

// GenerateText calls f.
func (f GenerateFunc) GenerateText(ctx context.Context, model, prompt string, s Sampling) (string, error) {
	return f(ctx, model, prompt, s)
}

// APIError is a failed Gemini call with its HTTP status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API error (HTTP %d): %s", e.StatusCode, e.Message)
}
