// Package openai implements generate.Generator with the OpenAI Chat
// Completions API.
package openai

import (
	"context"
	"fmt"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/nadzzz/polyglot/internal/provider"
	"github.com/nadzzz/polyglot/internal/provider/generate"
)

// Generator calls the chat completions endpoint with the prompt as a single
// user message.
type Generator struct {
	client oai.Client
	model  string
}

var _ generate.Generator = (*Generator)(nil)

// New constructs a Generator.
func New(apiKey, model string, opts ...provider.OpenAIOption) (*Generator, error) {
	if model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}
	client, err := provider.NewOpenAIClient(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return &Generator{client: client, model: model}, nil
}

// Name returns the backend identifier.
func (g *Generator) Name() string { return "openai" }

// Generate implements generate.Generator.
func (g *Generator) Generate(ctx context.Context, req generate.Request) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, buildParams(g.model, req))
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildParams(model string, req generate.Request) oai.ChatCompletionNewParams {
	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: []oai.ChatCompletionMessageParamUnion{oai.UserMessage(req.Prompt)},
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(req.MaxTokens))
	}
	if req.Sample {
		params.Temperature = param.NewOpt(req.Temperature)
		if req.TopP > 0 {
			params.TopP = param.NewOpt(req.TopP)
		}
	} else {
		params.Temperature = param.NewOpt(0.0)
	}
	return params
}
