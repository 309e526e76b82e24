// Package http implements the HTTP/WebSocket transport for polyglot.
//
// This transport exposes the session API as JSON over REST under /v1, a
// WebSocket chat endpoint and the Swagger UI. Uploads for the image, voice
// and file input modes are sent as raw request bodies.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nadzzz/polyglot/internal/health"
	"github.com/nadzzz/polyglot/internal/language"
	"github.com/nadzzz/polyglot/internal/message"
	"github.com/nadzzz/polyglot/internal/observe"
	"github.com/nadzzz/polyglot/internal/session"
	"github.com/nadzzz/polyglot/internal/transport"
	"github.com/nadzzz/polyglot/internal/translation"
)

// DefaultMaxBodyBytes bounds uploads when no limit is configured.
const DefaultMaxBodyBytes = 25 << 20

// Transport implements transport.Transport over HTTP and WebSocket.
type Transport struct {
	port    int
	maxBody int64
	metrics *observe.Metrics
	health  *health.Server
	server  *http.Server
}

// Option configures a Transport.
type Option func(*Transport)

// WithMaxBodyBytes bounds request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(t *Transport) {
		if n > 0 {
			t.maxBody = n
		}
	}
}

// WithMetrics enables the request tracing and duration middleware.
func WithMetrics(m *observe.Metrics) Option { return func(t *Transport) { t.metrics = m } }

// WithHealth also serves the ops endpoints of h on the API port.
func WithHealth(h *health.Server) Option { return func(t *Transport) { t.health = h } }

// New creates a new HTTP transport on the given port.
func New(port int, opts ...Option) *Transport {
	t := &Transport{port: port, maxBody: DefaultMaxBodyBytes}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler builds the routed handler serving svc.
func (t *Transport) Handler(svc transport.Service) http.Handler {
	h := &handlers{svc: svc, maxBody: t.maxBody}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/languages", h.languages)
	mux.HandleFunc("POST /v1/sessions", h.createSession)
	mux.HandleFunc("GET /v1/sessions/{id}", h.getSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", h.deleteSession)
	mux.HandleFunc("PUT /v1/sessions/{id}/mode", h.setMode)

	mux.HandleFunc("POST /v1/sessions/{id}/input/text", h.inputText)
	mux.HandleFunc("POST /v1/sessions/{id}/input/image", h.inputUpload(session.ModeImage))
	mux.HandleFunc("POST /v1/sessions/{id}/input/voice", h.inputUpload(session.ModeVoice))
	mux.HandleFunc("POST /v1/sessions/{id}/input/file", h.inputUpload(session.ModeFile))
	mux.HandleFunc("GET /v1/sessions/{id}/language", h.detect)

	mux.HandleFunc("POST /v1/sessions/{id}/chat", h.chat)
	mux.HandleFunc("DELETE /v1/sessions/{id}/chat", h.clearChat)
	mux.HandleFunc("GET /v1/sessions/{id}/chat/ws", h.chatSocket)

	mux.HandleFunc("POST /v1/sessions/{id}/translate", h.translate)
	mux.HandleFunc("GET /v1/sessions/{id}/history", h.history)
	mux.HandleFunc("GET /v1/sessions/{id}/history/export", h.exportHistory)
	mux.HandleFunc("GET /v1/sessions/{id}/download", h.download)
	mux.HandleFunc("POST /v1/sessions/{id}/speak/{source}", h.speak)

	// Swagger UI — serves the registered OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	if t.health != nil {
		t.health.Register(mux)
	}
	if t.metrics != nil {
		return observe.Middleware(t.metrics)(mux)
	}
	return mux
}

// Listen starts the HTTP server and serves requests from svc.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           t.Handler(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

type handlers struct {
	svc     transport.Service
	maxBody int64
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps action errors to HTTP status codes.
func statusFor(err error) int {
	switch transport.Classify(err) {
	case transport.ClassNotFound:
		return http.StatusNotFound
	case transport.ClassInvalid:
		return http.StatusBadRequest
	case transport.ClassUnprocessable:
		return http.StatusUnprocessableEntity
	case transport.ClassConflict:
		return http.StatusConflict
	case transport.ClassUnavailable:
		return http.StatusServiceUnavailable
	case transport.ClassTimeout:
		return http.StatusGatewayTimeout
	case transport.ClassCanceled:
		return 499
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		observe.Logger(r.Context()).Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func (h *handlers) reply(w http.ResponseWriter, r *http.Request, res *message.Result, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// decode reads a bounded JSON body into v.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json: " + err.Error()})
		return false
	}
	return true
}

// languages lists the translation targets in menu order.
//
// @Summary     Supported languages
// @Tags        language
// @Produce     json
// @Success     200  {array}  language.Descriptor
// @Router      /v1/languages [get]
func (h *handlers) languages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, language.Supported())
}

// createSession starts a session.
//
// @Summary     Create a session
// @Description Starts a new session in typed mode with an empty transcript and history.
// @Tags        sessions
// @Produce     json
// @Success     200  {object}  message.Result
// @Router      /v1/sessions [post]
func (h *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.CreateSession(r.Context())
	h.reply(w, r, res, err)
}

// getSession returns the session view.
//
// @Summary     Get a session
// @Tags        sessions
// @Produce     json
// @Param       id   path      string  true  "Session ID"
// @Success     200  {object}  message.Result
// @Failure     404  {object}  errorBody
// @Router      /v1/sessions/{id} [get]
func (h *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Session(r.Context(), r.PathValue("id"))
	h.reply(w, r, res, err)
}

// deleteSession ends a session.
//
// @Summary     Delete a session
// @Tags        sessions
// @Param       id   path  string  true  "Session ID"
// @Success     204
// @Failure     404  {object}  errorBody
// @Router      /v1/sessions/{id} [delete]
func (h *handlers) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setMode switches the input mode.
//
// @Summary     Switch input mode
// @Description One of typed, image, voice, file. The current text is kept.
// @Tags        input
// @Accept      json
// @Produce     json
// @Param       id    path      string               true  "Session ID"
// @Param       body  body      message.ModeRequest  true  "Mode"
// @Success     200   {object}  message.Result
// @Failure     400   {object}  errorBody
// @Router      /v1/sessions/{id}/mode [put]
func (h *handlers) setMode(w http.ResponseWriter, r *http.Request) {
	var req message.ModeRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.SessionID = r.PathValue("id")
	res, err := h.svc.SetMode(r.Context(), req)
	h.reply(w, r, res, err)
}

// inputText replaces the current text with typed input.
//
// @Summary     Typed input
// @Tags        input
// @Accept      json
// @Produce     json
// @Param       id    path      string                true  "Session ID"
// @Param       body  body      message.InputRequest  true  "Only text is read"
// @Success     200   {object}  message.Result
// @Failure     409   {object}  errorBody  "Typed mode is not active"
// @Router      /v1/sessions/{id}/input/text [post]
func (h *handlers) inputText(w http.ResponseWriter, r *http.Request) {
	var req message.InputRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.svc.Acquire(r.Context(), message.InputRequest{
		SessionID: r.PathValue("id"),
		Mode:      session.ModeTyped,
		Text:      req.Text,
	})
	h.reply(w, r, res, err)
}

// inputUpload reads a raw upload for the image, voice or file mode.
//
// @Summary     Upload input
// @Description POST the raw bytes: a PNG/JPEG for image, an audio clip for voice, a UTF-8 .txt for file.
// @Tags        input
// @Accept      image/png
// @Accept      image/jpeg
// @Accept      audio/wav
// @Accept      text/plain
// @Produce     json
// @Param       id    path      string  true  "Session ID"
// @Success     200   {object}  message.Result
// @Failure     400   {object}  errorBody
// @Failure     409   {object}  errorBody  "Mode is not active"
// @Failure     422   {object}  errorBody  "File is not UTF-8"
// @Failure     502   {object}  errorBody  "OCR failed"
// @Router      /v1/sessions/{id}/input/image [post]
// @Router      /v1/sessions/{id}/input/voice [post]
// @Router      /v1/sessions/{id}/input/file [post]
func (h *handlers) inputUpload(mode session.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
		if err != nil {
			status := http.StatusBadRequest
			if errors.As(err, new(*http.MaxBytesError)) {
				status = http.StatusRequestEntityTooLarge
			}
			writeJSON(w, status, errorBody{Error: "reading upload: " + err.Error()})
			return
		}
		res, err := h.svc.Acquire(r.Context(), message.InputRequest{
			SessionID:   r.PathValue("id"),
			Mode:        mode,
			Data:        data,
			ContentType: r.Header.Get("Content-Type"),
		})
		h.reply(w, r, res, err)
	}
}

// detect identifies the language of the current text.
//
// @Summary     Detect language
// @Tags        language
// @Produce     json
// @Param       id   path      string  true  "Session ID"
// @Success     200  {object}  message.Result
// @Router      /v1/sessions/{id}/language [get]
func (h *handlers) detect(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Detect(r.Context(), r.PathValue("id"))
	h.reply(w, r, res, err)
}

// chat sends one message to the assistant.
//
// @Summary     Chat
// @Tags        chat
// @Accept      json
// @Produce     json
// @Param       id    path      string               true  "Session ID"
// @Param       body  body      message.ChatRequest  true  "Message"
// @Success     200   {object}  message.Result
// @Failure     502   {object}  errorBody  "Generation failed"
// @Router      /v1/sessions/{id}/chat [post]
func (h *handlers) chat(w http.ResponseWriter, r *http.Request) {
	var req message.ChatRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.SessionID = r.PathValue("id")
	res, err := h.svc.Chat(r.Context(), req)
	h.reply(w, r, res, err)
}

// @Summary     Clear chat
// @Tags        chat
// @Produce     json
// @Param       id   path      string  true  "Session ID"
// @Success     200  {object}  message.Result
// @Router      /v1/sessions/{id}/chat [delete]
func (h *handlers) clearChat(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ClearChat(r.Context(), r.PathValue("id"))
	h.reply(w, r, res, err)
}

// translate translates the current text.
//
// @Summary     Translate
// @Description Target may be a display name (Anglais), a translation code (eng_Latn) or a speech code (en).
// @Tags        translation
// @Accept      json
// @Produce     json
// @Param       id    path      string                    true  "Session ID"
// @Param       body  body      message.TranslateRequest  true  "Target language"
// @Success     200   {object}  message.Result
// @Failure     400   {object}  errorBody  "Unknown target language"
// @Failure     502   {object}  errorBody  "Translation failed"
// @Router      /v1/sessions/{id}/translate [post]
func (h *handlers) translate(w http.ResponseWriter, r *http.Request) {
	var req message.TranslateRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.SessionID = r.PathValue("id")
	res, err := h.svc.Translate(r.Context(), req)
	h.reply(w, r, res, err)
}

// @Summary     Translation history
// @Description Newest first.
// @Tags        translation
// @Produce     json
// @Param       id   path      string  true  "Session ID"
// @Success     200  {object}  message.Result
// @Router      /v1/sessions/{id}/history [get]
func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.History(r.Context(), r.PathValue("id"))
	h.reply(w, r, res, err)
}

// exportHistory downloads the full history.
//
// @Summary     Export history
// @Tags        translation
// @Produce     json
// @Produce     application/yaml
// @Param       id      path   string  true   "Session ID"
// @Param       format  query  string  false  "json (default) or yaml"
// @Success     200
// @Router      /v1/sessions/{id}/history/export [get]
func (h *handlers) exportHistory(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	data, ct, err := h.svc.ExportHistory(r.Context(), r.PathValue("id"), format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ext := "json"
	if ct == "application/yaml" {
		ext = "yaml"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="historique.%s"`, ext))
	_, _ = w.Write(data)
}

// download returns the last translation as a text file.
//
// @Summary     Download translation
// @Tags        translation
// @Produce     plain
// @Param       id   path      string  true  "Session ID"
// @Success     200  {string}  string
// @Failure     409  {object}  errorBody  "Nothing translated yet"
// @Router      /v1/sessions/{id}/download [get]
func (h *handlers) download(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Download(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, translation.ExportFileName))
	_, _ = w.Write(data)
}

// speak renders audio. Unless the client asks for JSON, a rendered clip is
// returned as raw audio; notices come back as JSON.
//
// @Summary     Speak
// @Description source is "input" (current text, detected language) or "translation" (last result, target language).
// @Tags        audio
// @Produce     audio/wav
// @Produce     audio/mpeg
// @Produce     json
// @Param       id      path  string  true  "Session ID"
// @Param       source  path  string  true  "input or translation"
// @Success     200
// @Router      /v1/sessions/{id}/speak/{source} [post]
func (h *handlers) speak(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Speak(r.Context(), message.SpeakRequest{
		SessionID: r.PathValue("id"),
		Source:    message.SpeakSource(r.PathValue("source")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if res.Audio == nil || acceptsJSON(r) {
		writeJSON(w, http.StatusOK, res)
		return
	}
	w.Header().Set("Content-Type", res.Audio.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename=%q`, res.Audio.File))
	_, _ = w.Write(res.Audio.Data)
}

// acceptsJSON reports whether the Accept header names application/json
// explicitly. Wildcards alone keep the raw audio response.
func acceptsJSON(r *http.Request) bool {
	for _, v := range r.Header.Values("Accept") {
		for _, part := range strings.Split(v, ",") {
			mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
			if err == nil && mt == "application/json" {
				return true
			}
		}
	}
	return false
}
