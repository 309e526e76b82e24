// Package translation runs the translation session: it translates the
// current text into a chosen language and keeps the session's history.
package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nadzzz/polyglot/internal/language"
	"github.com/nadzzz/polyglot/internal/observe"
	"github.com/nadzzz/polyglot/internal/provider/translate"
	"github.com/nadzzz/polyglot/internal/session"
)

var (
	// ErrEmptyText is returned when there is nothing to translate.
	ErrEmptyText = errors.New("no text to translate")

	// ErrNoResult is returned when exporting before any translation.
	ErrNoResult = errors.New("no translation yet")
)

// DefaultMaxLength bounds the translated output length.
const DefaultMaxLength = 500

// Sink mirrors completed translations to durable storage.
type Sink interface {
	Record(ctx context.Context, sessionID string, rec session.Record) error
}

// TranslatorSource returns the shared translation handle.
type TranslatorSource func(ctx context.Context) (translate.Translator, error)

// Service translates session text.
type Service struct {
	translator TranslatorSource
	identifier *language.Identifier
	maxLength  int
	sink       Sink
	metrics    *observe.Metrics
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSink mirrors each record to s. Sink failures are logged, never returned.
func WithSink(s Sink) Option { return func(svc *Service) { svc.sink = s } }

// WithMetrics records stage latency and translation counts.
func WithMetrics(m *observe.Metrics) Option { return func(svc *Service) { svc.metrics = m } }

// WithMaxLength overrides DefaultMaxLength.
func WithMaxLength(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.maxLength = n
		}
	}
}

// WithClock replaces time.Now; used by tests.
func WithClock(now func() time.Time) Option { return func(svc *Service) { svc.now = now } }

// New creates a Service.
func New(tr TranslatorSource, id *language.Identifier, opts ...Option) *Service {
	s := &Service{
		translator: tr,
		identifier: id,
		maxLength:  DefaultMaxLength,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Translate translates the current text into target (display name,
// translation code or speech code). On success the result replaces the last
// result and one record is appended to the history. On any failure the
// state is left unchanged.
func (s *Service) Translate(ctx context.Context, st *session.State, target string) (session.Result, error) {
	text := st.CurrentText
	if strings.TrimSpace(text) == "" {
		return session.Result{}, ErrEmptyText
	}
	tgt, err := language.Lookup(target)
	if err != nil {
		return session.Result{}, err
	}
	src := s.identifier.Identify(ctx, text)

	tr, err := s.translator(ctx)
	if err != nil {
		return session.Result{}, err
	}

	start := time.Now()
	out, err := tr.Translate(ctx, translate.Request{
		Text:      text,
		Source:    src.Code,
		Target:    tgt.Code,
		MaxLength: s.maxLength,
	})
	if err := s.metrics.ObserveStage(ctx, observe.StageTranslation, tr.Name(), start, err); err != nil {
		return session.Result{}, fmt.Errorf("translating %s to %s: %w", src.Code, tgt.Code, err)
	}

	res := session.Result{Text: out, Target: tgt}
	rec := session.Record{
		Time:       s.now(),
		Source:     text,
		Translated: out,
		SourceCode: src.Code,
		TargetCode: tgt.Code,
	}
	st.LastResult = &res
	st.History = append(st.History, rec)
	s.metrics.RecordTranslation(ctx, src.Speech, tgt.Speech)

	if s.sink != nil {
		if err := s.sink.Record(ctx, st.ID, rec); err != nil {
			slog.Warn("translation audit sink failed", "session_id", st.ID, "error", err)
		}
	}

	slog.Debug("translation complete", "session_id", st.ID, "src", src.Code, "tgt", tgt.Code, "history", len(st.History))
	return res, nil
}
