// Package translate defines the translation collaborator.
package translate

import "context"

// Request asks for Text to be translated from Source to Target. Codes are
// NLLB language codes such as "fra_Latn".
type Request struct {
	Text      string
	Source    string
	Target    string
	MaxLength int
}

// Translator translates text between languages.
type Translator interface {
	// Name returns the backend identifier (e.g., "nllb", "llm").
	Name() string

	Translate(ctx context.Context, req Request) (string, error)
}
