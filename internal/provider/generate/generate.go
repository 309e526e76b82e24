// Package generate defines the text generation collaborator.
package generate

import "context"

// Request is a single-prompt generation call.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	TopP        float64
	// Sample enables stochastic decoding. When false backends decode greedily
	// and ignore Temperature and TopP.
	Sample bool
}

// Generator produces a continuation for a prompt.
type Generator interface {
	// Name returns the backend identifier (e.g., "openai", "anyllm").
	Name() string

	// Generate returns the generated text only, without the prompt.
	Generate(ctx context.Context, req Request) (string, error)
}
