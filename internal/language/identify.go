package language

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pemistahl/lingua-go"

	"github.com/nadzzz/polyglot/internal/observe"
)

// ErrUndetectable is returned by a Detector that cannot classify the text.
var ErrUndetectable = errors.New("language not detectable")

// Detector guesses the ISO-639-1 code of a text.
type Detector interface {
	Detect(ctx context.Context, text string) (string, error)
}

// LinguaDetector detects the supported languages offline with lingua's
// n-gram models. Candidates are limited to the supported set, which keeps
// greetings and other short phrases reliable.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

var _ Detector = (*LinguaDetector)(nil)

var linguaCodes = map[lingua.Language]string{
	lingua.French:  "fr",
	lingua.English: "en",
	lingua.Arabic:  "ar",
	lingua.Spanish: "es",
}

// NewLinguaDetector builds the detector. Language models load on first use.
func NewLinguaDetector() *LinguaDetector {
	langs := make([]lingua.Language, 0, len(linguaCodes))
	for l := range linguaCodes {
		langs = append(langs, l)
	}
	return &LinguaDetector{
		detector: lingua.NewLanguageDetectorBuilder().FromLanguages(langs...).Build(),
	}
}

// Name returns "lingua".
func (*LinguaDetector) Name() string { return "lingua" }

// Detect implements Detector.
func (d *LinguaDetector) Detect(_ context.Context, text string) (string, error) {
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", ErrUndetectable
	}
	code, ok := linguaCodes[lang]
	if !ok {
		return "", ErrUndetectable
	}
	return code, nil
}

// Identifier maps text to a supported Descriptor.
type Identifier struct {
	detector Detector
	metrics  *observe.Metrics
}

// IdentifierOption configures an Identifier.
type IdentifierOption func(*Identifier)

// WithMetrics records detection latency.
func WithMetrics(m *observe.Metrics) IdentifierOption {
	return func(i *Identifier) { i.metrics = m }
}

// NewIdentifier returns an Identifier backed by d.
func NewIdentifier(d Detector, opts ...IdentifierOption) *Identifier {
	i := &Identifier{detector: d}
	for _, o := range opts {
		o(i)
	}
	return i
}

func (i *Identifier) detectorName() string {
	if n, ok := i.detector.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "detector"
}

// Identify never fails: blank text, detection errors and unsupported
// languages all yield [Unknown].
func (i *Identifier) Identify(ctx context.Context, text string) Descriptor {
	if strings.TrimSpace(text) == "" {
		return Unknown()
	}
	start := time.Now()
	code, err := i.detector.Detect(ctx, text)
	if err := i.metrics.ObserveStage(ctx, observe.StageDetection, i.detectorName(), start, err); err != nil {
		slog.Debug("language detection failed", "error", err)
		return Unknown()
	}
	if d, ok := BySpeech(code); ok {
		return d
	}
	slog.Debug("unsupported language detected", "code", code)
	return Unknown()
}
