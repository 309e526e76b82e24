// Package nllb implements translate.Translator against an HTTP inference
// server hosting facebook/nllb-200-distilled-600M (or any model with the
// same request shape).
//
// Request:  POST {"text": "...", "src_lang": "fra_Latn", "tgt_lang": "eng_Latn", "max_length": 500}
// Response: {"translation_text": "..."} or [{"translation_text": "..."}]
package nllb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nadzzz/polyglot/internal/provider/translate"
)

// Translator posts translation requests to an NLLB server.
type Translator struct {
	endpoint string
	client   *http.Client
}

var _ translate.Translator = (*Translator)(nil)

// New creates a Translator. A zero timeout means no client-side timeout.
func New(endpoint string, timeout time.Duration) (*Translator, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("nllb: endpoint must not be empty")
	}
	return &Translator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the backend identifier.
func (t *Translator) Name() string { return "nllb" }

type request struct {
	Text      string `json:"text"`
	SrcLang   string `json:"src_lang"`
	TgtLang   string `json:"tgt_lang"`
	MaxLength int    `json:"max_length,omitempty"`
}

type output struct {
	TranslationText string `json:"translation_text"`
}

// Translate implements translate.Translator.
func (t *Translator) Translate(ctx context.Context, req translate.Request) (string, error) {
	body, err := json.Marshal(request{
		Text:      req.Text,
		SrcLang:   req.Source,
		TgtLang:   req.Target,
		MaxLength: req.MaxLength,
	})
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("nllb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("nllb translation failed (status %d): %s", resp.StatusCode, respBody)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading nllb response: %w", err)
	}
	text, err := parseOutput(data)
	if err != nil {
		return "", err
	}

	slog.Debug("nllb translation complete", "src", req.Source, "tgt", req.Target, "text_length", len(text))
	return text, nil
}

// parseOutput accepts both the single-object and the pipeline list shape.
func parseOutput(data []byte) (string, error) {
	var list []output
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) == 0 {
			return "", fmt.Errorf("nllb: empty output list")
		}
		return list[0].TranslationText, nil
	}
	var single output
	if err := json.Unmarshal(data, &single); err != nil {
		return "", fmt.Errorf("decoding nllb response: %w", err)
	}
	return single.TranslationText, nil
}
