// Package openai implements tts.Synthesizer with the OpenAI speech API.
// The voice is multilingual; the language follows the input text.
package openai

import (
	"context"
	"fmt"
	"io"

	oai "github.com/openai/openai-go"

	"github.com/nadzzz/polyglot/internal/provider"
	"github.com/nadzzz/polyglot/internal/tts"
)

// Synthesizer renders MP3 through /v1/audio/speech.
type Synthesizer struct {
	client oai.Client
	model  string
	voice  string
}

var _ tts.Synthesizer = (*Synthesizer)(nil)

// New constructs a Synthesizer. model defaults to tts-1, voice to alloy.
func New(apiKey, model, voice string, opts ...provider.OpenAIOption) (*Synthesizer, error) {
	if model == "" {
		model = "tts-1"
	}
	if voice == "" {
		voice = "alloy"
	}
	client, err := provider.NewOpenAIClient(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return &Synthesizer{client: client, model: model, voice: voice}, nil
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "openai" }

// Synthesize implements tts.Synthesizer.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}
	voice := s.voice
	if opts.Voice != "" {
		voice = opts.Voice
	}

	resp, err := s.client.Audio.Speech.New(ctx, oai.AudioSpeechNewParams{
		Input:          text,
		Model:          oai.SpeechModel(s.model),
		Voice:          oai.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: oai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: speech: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: reading speech: %w", err)
	}
	return &tts.SynthesizeResult{
		Audio:       audio,
		ContentType: "audio/mpeg",
		Channels:    1,
	}, nil
}

// Close is a no-op.
func (s *Synthesizer) Close() error { return nil }
