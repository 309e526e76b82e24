// Package chat runs the conversational session: each user message becomes
// one prompt to the generation model and one appended reply.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nadzzz/polyglot/internal/observe"
	"github.com/nadzzz/polyglot/internal/provider/generate"
	"github.com/nadzzz/polyglot/internal/session"
)

// ErrEmptyMessage is returned for blank user input. Nothing is appended.
var ErrEmptyMessage = errors.New("empty chat message")

// promptTemplate frames the question for an instruction-tuned model.
const promptTemplate = "\nQuestion: %s\nAnswer in a clear, helpful and concise way.\n"

// Prompt builds the generation prompt for one user message.
func Prompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}

// Params are the sampling parameters for replies.
type Params struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	Sample      bool
}

// DefaultParams returns the stock sampling setup.
func DefaultParams() Params {
	return Params{MaxTokens: 200, Temperature: 0.6, TopP: 0.9, Sample: true}
}

// GeneratorSource returns the shared generation handle.
type GeneratorSource func(ctx context.Context) (generate.Generator, error)

// Session sends chat messages.
type Session struct {
	generator GeneratorSource
	params    Params
	metrics   *observe.Metrics
}

// New creates a chat Session.
func New(gen GeneratorSource, params Params, m *observe.Metrics) *Session {
	return &Session{generator: gen, params: params, metrics: m}
}

// Send appends the user turn, asks the model and appends its reply. If
// generation fails the user turn stays in the transcript and the error is
// returned.
func (s *Session) Send(ctx context.Context, st *session.State, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	gen, err := s.generator(ctx)
	if err != nil {
		return "", err
	}

	st.AppendTurn(session.RoleUser, text)

	start := time.Now()
	reply, err := gen.Generate(ctx, generate.Request{
		Prompt:      Prompt(text),
		MaxTokens:   s.params.MaxTokens,
		Temperature: s.params.Temperature,
		TopP:        s.params.TopP,
		Sample:      s.params.Sample,
	})
	if err := s.metrics.ObserveStage(ctx, observe.StageGeneration, gen.Name(), start, err); err != nil {
		return "", fmt.Errorf("generating reply: %w", err)
	}

	st.AppendTurn(session.RoleAssistant, reply)
	slog.Debug("chat turn complete", "session_id", st.ID, "turns", len(st.Chat), "duration", time.Since(start))
	return reply, nil
}

// Clear resets the transcript.
func (s *Session) Clear(st *session.State) {
	st.ClearChat()
}
