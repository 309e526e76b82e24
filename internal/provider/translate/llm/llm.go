// Package llm implements translate.Translator by prompting a text generator.
// It is the fallback when no dedicated translation model is deployed.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/nadzzz/polyglot/internal/language"
	"github.com/nadzzz/polyglot/internal/provider/generate"
	"github.com/nadzzz/polyglot/internal/provider/translate"
)

const promptTemplate = "Translate the following text from %s to %s. " +
	"Reply with the translation only, without quotes or commentary.\n\n%s"

// Translator delegates to a Generator.
type Translator struct {
	gen generate.Generator
}

var _ translate.Translator = (*Translator)(nil)

// New wraps gen.
func New(gen generate.Generator) *Translator {
	return &Translator{gen: gen}
}

// Name returns "llm/<generator>".
func (t *Translator) Name() string { return "llm/" + t.gen.Name() }

// Translate implements translate.Translator. MaxLength caps generated tokens.
func (t *Translator) Translate(ctx context.Context, req translate.Request) (string, error) {
	out, err := t.gen.Generate(ctx, generate.Request{
		Prompt:    buildPrompt(req),
		MaxTokens: req.MaxLength,
	})
	if err != nil {
		return "", fmt.Errorf("llm translation: %w", err)
	}
	return strings.Trim(strings.TrimSpace(out), `"`), nil
}

func buildPrompt(req translate.Request) string {
	return fmt.Sprintf(promptTemplate, englishName(req.Source), englishName(req.Target), req.Text)
}

// englishName turns an NLLB code into a name a general model understands.
func englishName(code string) string {
	switch code {
	case "fra_Latn":
		return "French"
	case "eng_Latn":
		return "English"
	case "ary_Arab":
		return "Moroccan Arabic"
	case "spa_Latn":
		return "Spanish"
	}
	if d, ok := language.ByCode(code); ok {
		return d.Name
	}
	return code
}
