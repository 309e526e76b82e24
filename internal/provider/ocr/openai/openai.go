// Package openai implements ocr.Engine with a vision-capable chat model.
package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/nadzzz/polyglot/internal/provider"
	"github.com/nadzzz/polyglot/internal/provider/ocr"
)

const instruction = "Transcribe all text visible in this image exactly as written, " +
	"preserving line breaks. Reply with the text only. If there is no text, reply with nothing."

// Engine sends the image as a data URL.
type Engine struct {
	client oai.Client
	model  string
}

var _ ocr.Engine = (*Engine)(nil)

// New constructs an Engine.
func New(apiKey, model string, opts ...provider.OpenAIOption) (*Engine, error) {
	if model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}
	client, err := provider.NewOpenAIClient(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{client: client, model: model}, nil
}

// Name returns the backend identifier.
func (e *Engine) Name() string { return "openai-vision" }

// Extract implements ocr.Engine.
func (e *Engine) Extract(ctx context.Context, image []byte, contentType string) (string, error) {
	parts := []oai.ChatCompletionContentPartUnionParam{
		oai.TextContentPart(instruction),
		oai.ImageContentPart(oai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL(image, contentType),
		}),
	}
	resp, err := e.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(e.model),
		Messages: []oai.ChatCompletionMessageParamUnion{oai.UserMessage(parts)},
	})
	if err != nil {
		return "", fmt.Errorf("openai: vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func dataURL(image []byte, contentType string) string {
	if contentType == "" {
		contentType = "image/png"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(image)
}
