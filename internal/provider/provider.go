// Package provider holds what the collaborator backends share: the OpenAI
// client construction used by every openai-go backend.
package provider

import (
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIConfig struct {
	baseURL      string
	organization string
	timeout      time.Duration
	httpClient   *http.Client
}

// OpenAIOption configures [NewOpenAIClient].
type OpenAIOption func(*openAIConfig)

// WithBaseURL points the client at an OpenAI-compatible server.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) { c.baseURL = url }
}

// WithOrganization sets the OpenAI organization ID on all requests.
func WithOrganization(org string) OpenAIOption {
	return func(c *openAIConfig) { c.organization = org }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *openAIConfig) { c.timeout = d }
}

// WithHTTPClient replaces the HTTP client; it wins over WithTimeout.
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *openAIConfig) { c.httpClient = hc }
}

// NewOpenAIClient builds an openai-go client. The SDK retries by default;
// polyglot does not, so retries are disabled.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) (oai.Client, error) {
	if apiKey == "" {
		return oai.Client{}, fmt.Errorf("openai: apiKey must not be empty")
	}
	cfg := &openAIConfig{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.organization != "" {
		reqOpts = append(reqOpts, option.WithOrganization(cfg.organization))
	}
	switch {
	case cfg.httpClient != nil:
		reqOpts = append(reqOpts, option.WithHTTPClient(cfg.httpClient))
	case cfg.timeout > 0:
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}
	return oai.NewClient(reqOpts...), nil
}
