// Package local implements stt.Recognizer against a self-hosted Whisper
// server. Two flavors are supported:
//   - "openai": OpenAI-compatible API (whisper.cpp server, faster-whisper)
//   - "asr":    ahmetoner/whisper-asr-webservice (POST /asr with query params)
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nadzzz/polyglot/internal/provider/stt"
)

// Recognizer posts audio clips to a Whisper endpoint.
type Recognizer struct {
	endpoint    string
	whisperType string // "openai" or "asr"
	model       string
	client      *http.Client
}

var _ stt.Recognizer = (*Recognizer)(nil)

// New creates a Recognizer. whisperType defaults to "openai".
func New(endpoint, whisperType, model string, timeout time.Duration) *Recognizer {
	if whisperType == "" {
		whisperType = "openai"
	}
	return &Recognizer{
		endpoint:    endpoint,
		whisperType: whisperType,
		model:       model,
		client:      &http.Client{Timeout: timeout},
	}
}

// Name returns the backend identifier.
func (r *Recognizer) Name() string { return "local" }

// Recognize implements stt.Recognizer.
func (r *Recognizer) Recognize(ctx context.Context, audio []byte, contentType string, opts stt.Options) (string, error) {
	if len(audio) == 0 {
		return "", stt.ErrEmptyAudio
	}
	lang := stt.BaseLanguage(opts.Language)
	switch r.whisperType {
	case "asr":
		return r.recognizeASR(ctx, audio, contentType, lang)
	default:
		return r.recognizeOpenAI(ctx, audio, contentType, lang)
	}
}

// recognizeASR handles the whisper-asr-webservice format.
// API: POST /asr?task=transcribe&language=fr&output=json
// Body: multipart/form-data with field "audio_file"
func (r *Recognizer) recognizeASR(ctx context.Context, audio []byte, contentType, lang string) (string, error) {
	body, formType, err := multipartBody("audio_file", audio, contentType, nil)
	if err != nil {
		return "", err
	}

	q := make(url.Values)
	q.Set("task", "transcribe")
	q.Set("output", "json")
	q.Set("encode", "true")
	if lang != "" {
		q.Set("language", lang)
	}
	reqURL := r.endpoint + "?" + q.Encode()

	slog.Debug("whisper-asr request", "url", reqURL)
	return r.post(ctx, reqURL, body, formType)
}

// recognizeOpenAI handles OpenAI-compatible whisper endpoints.
func (r *Recognizer) recognizeOpenAI(ctx context.Context, audio []byte, contentType, lang string) (string, error) {
	fields := map[string]string{"response_format": "json"}
	if r.model != "" {
		fields["model"] = r.model
	}
	if lang != "" {
		fields["language"] = lang
	}
	body, formType, err := multipartBody("file", audio, contentType, fields)
	if err != nil {
		return "", err
	}
	return r.post(ctx, r.endpoint, body, formType)
}

func (r *Recognizer) post(ctx context.Context, target string, body *bytes.Buffer, formType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", formType)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("local transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("local transcription failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding transcription: %w", err)
	}

	text := strings.TrimSpace(result.Text)
	slog.Debug("local transcription complete", "text_length", len(text))
	return text, nil
}

func multipartBody(field string, audio []byte, contentType string, fields map[string]string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(field, "audio"+stt.ExtFromContentType(contentType))
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", fmt.Errorf("writing audio: %w", err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}
