// Package tts defines the text-to-speech collaborator used to read the
// current text and the last translation aloud.
package tts

import (
	"context"
	"strings"
)

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Language is the ISO-639-1 speech code (e.g., "fr", "ar") selecting the voice.
	Language string

	// Voice overrides language-based voice selection.
	Voice string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Name returns the backend identifier (e.g., "piper", "openai").
	Name() string

	// Synthesize renders text as a complete audio file.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// SynthesizeResult holds the output of TTS synthesis.
type SynthesizeResult struct {
	// Audio is a complete audio file (WAV, MP3, ...).
	Audio []byte

	// ContentType is the MIME type of Audio (e.g., "audio/wav").
	ContentType string

	// SampleRate is in Hz; 0 when the backend does not report it.
	SampleRate int

	// Channels is the number of audio channels; 0 when unknown.
	Channels int
}

// Ext returns the file extension (without dot) matching the content type.
func (r *SynthesizeResult) Ext() string {
	ct := strings.ToLower(r.ContentType)
	switch {
	case strings.Contains(ct, "mpeg"), strings.Contains(ct, "mp3"):
		return "mp3"
	case strings.Contains(ct, "ogg"), strings.Contains(ct, "opus"):
		return "ogg"
	case strings.Contains(ct, "flac"):
		return "flac"
	default:
		return "wav"
	}
}
