package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nadzzz/polyglot/internal/provider/generate/mock"
	"github.com/nadzzz/polyglot/internal/provider/translate"
)

func TestTranslate_PromptsGenerator(t *testing.T) {
	gen := &mock.Generator{Reply: ` "Hello, how are you?" `}
	tr := New(gen)

	out, err := tr.Translate(context.Background(), translate.Request{
		Text: "Bonjour, comment vas-tu?", Source: "fra_Latn", Target: "eng_Latn", MaxLength: 500,
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "Hello, how are you?" {
		t.Errorf("Translate = %q", out)
	}
	if gen.CallCount() != 1 {
		t.Fatalf("generator calls = %d", gen.CallCount())
	}
	call := gen.Calls[0]
	if !strings.Contains(call.Prompt, "from French to English") || !strings.Contains(call.Prompt, "Bonjour, comment vas-tu?") {
		t.Errorf("prompt = %q", call.Prompt)
	}
	if call.MaxTokens != 500 || call.Sample {
		t.Errorf("request = %+v", call)
	}
	if tr.Name() != "llm/mock" {
		t.Errorf("Name() = %q", tr.Name())
	}
}

func TestTranslate_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	tr := New(&mock.Generator{Err: boom})
	if _, err := tr.Translate(context.Background(), translate.Request{Text: "x"}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapping %v", err, boom)
	}
}
