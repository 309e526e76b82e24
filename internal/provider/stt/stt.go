// Package stt defines the speech-to-text collaborator used by voice input.
package stt

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyAudio is returned for a clip with no bytes.
var ErrEmptyAudio = errors.New("empty audio clip")

// Options controls recognition.
type Options struct {
	// Language is the spoken-language hint as a BCP-47 tag (e.g., "fr-FR").
	Language string
}

// Recognizer converts an audio clip to text.
type Recognizer interface {
	// Name returns the backend identifier (e.g., "openai", "local").
	Name() string

	Recognize(ctx context.Context, audio []byte, contentType string, opts Options) (string, error)
}

// BaseLanguage reduces a BCP-47 tag to its ISO-639-1 primary subtag:
// "fr-FR" → "fr". Whisper-style APIs only accept the latter.
func BaseLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

// ExtFromContentType picks a file extension for upload form fields.
func ExtFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "wav"):
		return ".wav"
	case strings.Contains(ct, "ogg"):
		return ".ogg"
	case strings.Contains(ct, "mp3"), strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "flac"):
		return ".flac"
	case strings.Contains(ct, "webm"):
		return ".webm"
	case strings.Contains(ct, "m4a"), strings.Contains(ct, "mp4"):
		return ".m4a"
	default:
		return ".wav"
	}
}
