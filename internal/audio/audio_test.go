package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nadzzz/polyglot/internal/tts"
	"github.com/nadzzz/polyglot/internal/tts/mock"
)

func TestRender_WritesArtifact(t *testing.T) {
	dir := t.TempDir()
	synth := &mock.Synthesizer{}
	r := NewRenderer(synth, nil)

	art, err := r.Render(context.Background(), dir, KindInput, "Bonjour", "fr")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if art.Path != filepath.Join(dir, "input.wav") || art.File() != "input.wav" {
		t.Errorf("path = %q", art.Path)
	}
	data, err := os.ReadFile(art.Path)
	if err != nil || string(data) != "RIFFBonjour" {
		t.Errorf("file = %q, %v", data, err)
	}
	if synth.Calls[0].Opts.Language != "fr" {
		t.Errorf("language = %q", synth.Calls[0].Opts.Language)
	}
}

func TestRender_OverwritesSameKind(t *testing.T) {
	dir := t.TempDir()
	synth := &mock.Synthesizer{Result: &tts.SynthesizeResult{Audio: []byte("ID3first"), ContentType: "audio/mpeg"}}
	r := NewRenderer(synth, nil)

	if _, err := r.Render(context.Background(), dir, KindTranslation, "Hello", "en"); err != nil {
		t.Fatal(err)
	}
	synth.Result = &tts.SynthesizeResult{Audio: []byte("ID3second"), ContentType: "audio/mpeg"}
	art, err := r.Render(context.Background(), dir, KindTranslation, "Hola", "es")
	if err != nil {
		t.Fatal(err)
	}
	if art.File() != "tr.mp3" {
		t.Errorf("file = %q", art.File())
	}
	data, _ := os.ReadFile(art.Path)
	if string(data) != "ID3second" {
		t.Errorf("file = %q", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

func TestRender_Rejects(t *testing.T) {
	synth := &mock.Synthesizer{}
	r := NewRenderer(synth, nil)
	dir := t.TempDir()

	if _, err := r.Render(context.Background(), dir, KindInput, "   ", "fr"); !errors.Is(err, ErrEmptyText) {
		t.Errorf("blank: err = %v", err)
	}
	if _, err := r.Render(context.Background(), dir, KindInput, "Hallo", "de"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("de: err = %v", err)
	}
	if synth.CallCount() != 0 {
		t.Errorf("synthesizer called %d times", synth.CallCount())
	}
}

func TestRender_SynthesisFailure(t *testing.T) {
	boom := errors.New("voice missing")
	r := NewRenderer(&mock.Synthesizer{Err: boom}, nil)
	dir := t.TempDir()

	if _, err := r.Render(context.Background(), dir, KindInput, "مرحبا", "ar"); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("failed render left %d files", len(entries))
	}
}
