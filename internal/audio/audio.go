// Package audio renders text to speech and stores the result as the
// session's per-class audio artifact.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nadzzz/polyglot/internal/language"
	"github.com/nadzzz/polyglot/internal/observe"
	"github.com/nadzzz/polyglot/internal/tts"
)

var (
	// ErrEmptyText is returned when there is nothing to read aloud.
	ErrEmptyText = errors.New("no text to render")

	// ErrUnsupportedLanguage is returned for speech codes outside the language table.
	ErrUnsupportedLanguage = errors.New("unsupported speech language")
)

// Kind is an artifact class. Each class has one file per session that is
// overwritten by every new rendering.
type Kind string

const (
	KindInput       Kind = "input"
	KindTranslation Kind = "tr"
)

// Artifact is a rendered audio file.
type Artifact struct {
	Kind        Kind
	Path        string
	ContentType string
	Data        []byte
}

// File returns the artifact's base file name.
func (a Artifact) File() string { return filepath.Base(a.Path) }

// Renderer synthesizes speech into session artifact directories.
type Renderer struct {
	synth   tts.Synthesizer
	metrics *observe.Metrics
}

// NewRenderer creates a Renderer backed by synth. m may be nil.
func NewRenderer(synth tts.Synthesizer, m *observe.Metrics) *Renderer {
	return &Renderer{synth: synth, metrics: m}
}

// Render synthesizes text in the language identified by speechCode and
// writes it to dir as "<kind>.<ext>", replacing any earlier rendering of
// the same kind.
func (r *Renderer) Render(ctx context.Context, dir string, kind Kind, text, speechCode string) (Artifact, error) {
	if strings.TrimSpace(text) == "" {
		return Artifact{}, ErrEmptyText
	}
	lang, ok := language.BySpeech(speechCode)
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, speechCode)
	}

	start := time.Now()
	res, err := r.synth.Synthesize(ctx, text, tts.SynthesizeOpts{Language: lang.Speech})
	if err := r.metrics.ObserveStage(ctx, observe.StageTTS, r.synth.Name(), start, err); err != nil {
		return Artifact{}, fmt.Errorf("synthesizing %s speech: %w", lang.Speech, err)
	}
	if len(res.Audio) == 0 {
		return Artifact{}, fmt.Errorf("synthesizing %s speech: empty audio", lang.Speech)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("creating artifact dir: %w", err)
	}
	path := filepath.Join(dir, string(kind)+"."+res.Ext())
	if err := writeFile(path, res.Audio); err != nil {
		return Artifact{}, err
	}

	observe.Logger(ctx).Debug("audio rendered", "kind", kind, "path", path, "bytes", len(res.Audio))
	return Artifact{Kind: kind, Path: path, ContentType: res.ContentType, Data: res.Audio}, nil
}

// writeFile replaces path atomically so a concurrent reader never sees a
// half-written clip.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".render-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
