// Package openai implements stt.Recognizer with the OpenAI Audio
// Transcription API (whisper-1, gpt-4o-transcribe).
package openai

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"

	"github.com/nadzzz/polyglot/internal/provider"
	"github.com/nadzzz/polyglot/internal/provider/stt"
)

// Recognizer uploads clips to the transcription endpoint.
type Recognizer struct {
	client oai.Client
	model  string
}

var _ stt.Recognizer = (*Recognizer)(nil)

// New constructs a Recognizer. model defaults to whisper-1.
func New(apiKey, model string, opts ...provider.OpenAIOption) (*Recognizer, error) {
	if model == "" {
		model = string(oai.AudioModelWhisper1)
	}
	client, err := provider.NewOpenAIClient(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return &Recognizer{client: client, model: model}, nil
}

// Name returns the backend identifier.
func (r *Recognizer) Name() string { return "openai" }

// Recognize implements stt.Recognizer.
func (r *Recognizer) Recognize(ctx context.Context, audio []byte, contentType string, opts stt.Options) (string, error) {
	if len(audio) == 0 {
		return "", stt.ErrEmptyAudio
	}
	params := oai.AudioTranscriptionNewParams{
		File:  oai.File(bytes.NewReader(audio), "audio"+stt.ExtFromContentType(contentType), contentType),
		Model: oai.AudioModel(r.model),
	}
	if lang := stt.BaseLanguage(opts.Language); lang != "" {
		params.Language = param.NewOpt(lang)
	}

	resp, err := r.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: transcription: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	slog.Debug("transcription complete", "text_length", len(text))
	return text, nil
}
