package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/nadzzz/polyglot/internal/audio"
	"github.com/nadzzz/polyglot/internal/chat"
	"github.com/nadzzz/polyglot/internal/dispatch"
	"github.com/nadzzz/polyglot/internal/input"
	"github.com/nadzzz/polyglot/internal/language"
	"github.com/nadzzz/polyglot/internal/message"
	"github.com/nadzzz/polyglot/internal/provider/generate"
	genmock "github.com/nadzzz/polyglot/internal/provider/generate/mock"
	ocrmock "github.com/nadzzz/polyglot/internal/provider/ocr/mock"
	sttmock "github.com/nadzzz/polyglot/internal/provider/stt/mock"
	"github.com/nadzzz/polyglot/internal/provider/translate"
	trmock "github.com/nadzzz/polyglot/internal/provider/translate/mock"
	"github.com/nadzzz/polyglot/internal/session"
	"github.com/nadzzz/polyglot/internal/translation"
	ttsmock "github.com/nadzzz/polyglot/internal/tts/mock"
)

type frenchDetector struct{}

func (frenchDetector) Detect(context.Context, string) (string, error) { return "fr", nil }

type testEnv struct {
	srv *httptest.Server
	gen *genmock.Generator
	ocr *ocrmock.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		gen: &genmock.Generator{Reply: "Bonjour !"},
		ocr: &ocrmock.Engine{Text: "Texte scanné"},
	}
	identifier := language.NewIdentifier(frenchDetector{})
	d := dispatch.New(dispatch.Components{
		Store:      session.NewStore(t.TempDir()),
		Identifier: identifier,
		Acquirer:   input.New(env.ocr, &sttmock.Recognizer{Text: "Bonjour"}, "fr-FR", nil),
		Chat: chat.New(func(context.Context) (generate.Generator, error) {
			return env.gen, nil
		}, chat.DefaultParams(), nil),
		Translation: translation.New(func(context.Context) (translate.Translator, error) {
			return &trmock.Translator{Reply: "Hello, how are you?"}, nil
		}, identifier),
		Audio: audio.NewRenderer(&ttsmock.Synthesizer{}, nil),
	})

	tr := New(0, WithMaxBodyBytes(1<<20))
	env.srv = httptest.NewServer(tr.Handler(d))
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, contentType string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) json(t *testing.T, method, path string, body any, wantStatus int) *message.Result {
	t.Helper()
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	resp := e.do(t, method, path, "application/json", payload)
	if resp.StatusCode != wantStatus {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: status %d, want %d: %s", method, path, resp.StatusCode, wantStatus, data)
	}
	if wantStatus != http.StatusOK {
		return nil
	}
	var res message.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	return &res
}

func (e *testEnv) newSession(t *testing.T) string {
	t.Helper()
	return e.json(t, http.MethodPost, "/v1/sessions", nil, http.StatusOK).SessionID
}

func TestTypedTranslateDownload(t *testing.T) {
	env := newTestEnv(t)
	id := env.newSession(t)
	base := "/v1/sessions/" + id

	res := env.json(t, http.MethodPost, base+"/input/text", map[string]string{"text": "Bonjour, comment vas-tu?"}, http.StatusOK)
	if res.Language == nil || res.Language.Name != "Français" {
		t.Errorf("language = %+v", res.Language)
	}

	res = env.json(t, http.MethodPost, base+"/translate", message.TranslateRequest{Target: "Anglais"}, http.StatusOK)
	if res.Translation == nil || res.Translation.Text != "Hello, how are you?" {
		t.Fatalf("translation = %+v", res.Translation)
	}

	res = env.json(t, http.MethodGet, base+"/history", nil, http.StatusOK)
	if len(res.History) != 1 {
		t.Errorf("history = %+v", res.History)
	}

	resp := env.do(t, http.MethodGet, base+"/download", "", nil)
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "Hello, how are you?" {
		t.Errorf("download = %d %q", resp.StatusCode, body)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "traduction.txt") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	resp = env.do(t, http.MethodGet, base+"/history/export?format=yaml", "", nil)
	if resp.Header.Get("Content-Type") != "application/yaml" {
		t.Errorf("export content type = %q", resp.Header.Get("Content-Type"))
	}
}

func TestErrorStatuses(t *testing.T) {
	env := newTestEnv(t)
	id := env.newSession(t)
	base := "/v1/sessions/" + id

	env.json(t, http.MethodGet, "/v1/sessions/missing", nil, http.StatusNotFound)
	env.json(t, http.MethodPut, base+"/mode", message.ModeRequest{Mode: "telepathy"}, http.StatusBadRequest)
	env.json(t, http.MethodGet, base+"/download", nil, http.StatusConflict)

	env.json(t, http.MethodPost, base+"/input/text", map[string]string{"text": "Bonjour"}, http.StatusOK)
	env.json(t, http.MethodPost, base+"/translate", message.TranslateRequest{Target: "Klingon"}, http.StatusBadRequest)

	// Image input while typed mode is active.
	resp := env.do(t, http.MethodPost, base+"/input/image", "image/png", []byte("\x89PNG\r\n\x1a\n"))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("inactive mode status = %d", resp.StatusCode)
	}

	env.json(t, http.MethodPut, base+"/mode", message.ModeRequest{Mode: "file"}, http.StatusOK)
	resp = env.do(t, http.MethodPost, base+"/input/file", "text/plain", []byte{0xff, 0xfe, 0x00})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("invalid encoding status = %d", resp.StatusCode)
	}

	env.gen.Err = errors.New("model crashed")
	env.json(t, http.MethodPost, base+"/chat", message.ChatRequest{Text: "Salut"}, http.StatusBadGateway)

	resp = env.do(t, http.MethodPost, base+"/translate", "application/json", []byte("{"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad json status = %d", resp.StatusCode)
	}
}

func TestImageUpload(t *testing.T) {
	env := newTestEnv(t)
	id := env.newSession(t)
	base := "/v1/sessions/" + id
	env.json(t, http.MethodPut, base+"/mode", message.ModeRequest{Mode: "image"}, http.StatusOK)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	resp := env.do(t, http.MethodPost, base+"/input/image", "image/png", png)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var res message.Result
	json.NewDecoder(resp.Body).Decode(&res)
	if res.Session.CurrentText != "Texte scanné" {
		t.Errorf("current text = %q", res.Session.CurrentText)
	}

	resp = env.do(t, http.MethodPost, base+"/input/image", "image/gif", []byte("GIF89a......"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("gif status = %d", resp.StatusCode)
	}
}

func TestSpeakReturnsAudio(t *testing.T) {
	env := newTestEnv(t)
	id := env.newSession(t)
	base := "/v1/sessions/" + id

	// Nothing to speak: JSON with a warning.
	res := env.json(t, http.MethodPost, base+"/speak/input", nil, http.StatusOK)
	if len(res.Notices) != 1 || res.Notices[0].Level != message.LevelWarning {
		t.Errorf("notices = %+v", res.Notices)
	}

	env.json(t, http.MethodPost, base+"/input/text", map[string]string{"text": "Bonjour"}, http.StatusOK)
	resp := env.do(t, http.MethodPost, base+"/speak/input", "", nil)
	body, _ := io.ReadAll(resp.Body)
	if resp.Header.Get("Content-Type") != "audio/wav" || string(body) != "RIFFBonjour" {
		t.Errorf("speak = %q %q", resp.Header.Get("Content-Type"), body)
	}

	env.json(t, http.MethodPost, base+"/speak/radio", nil, http.StatusBadRequest)
}

func TestSpeak_AcceptNegotiation(t *testing.T) {
	env := newTestEnv(t)
	id := env.newSession(t)
	base := "/v1/sessions/" + id
	env.json(t, http.MethodPost, base+"/input/text", map[string]string{"text": "Bonjour"}, http.StatusOK)

	tests := []struct {
		accept string
		want   string
	}{
		{"application/json", "application/json"},
		{"application/json, */*;q=0.8", "application/json"},
		{"text/html;q=0.9, application/json;q=0.5", "application/json"},
		{"*/*", "audio/wav"},
		{"audio/*", "audio/wav"},
		{"", "audio/wav"},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodPost, env.srv.URL+base+"/speak/input", nil)
		if tt.accept != "" {
			req.Header.Set("Accept", tt.accept)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if got := resp.Header.Get("Content-Type"); got != tt.want {
			t.Errorf("Accept %q: Content-Type = %q, want %q", tt.accept, got, tt.want)
		}
	}
}

type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestInputUpload_ReadErrors(t *testing.T) {
	env := newTestEnv(t)
	id := env.newSession(t)
	base := "/v1/sessions/" + id
	env.json(t, http.MethodPut, base+"/mode", message.ModeRequest{Mode: "file"}, http.StatusOK)

	resp := env.do(t, http.MethodPost, base+"/input/file", "text/plain", bytes.Repeat([]byte("a"), 1<<20+1))
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized upload status = %d, want 413", resp.StatusCode)
	}

	h := &handlers{maxBody: 1 << 20}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, base+"/input/file", io.NopCloser(brokenBody{}))
	h.inputUpload(session.ModeFile)(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("broken body status = %d, want 400", rec.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	env := newTestEnv(t)
	id := env.newSession(t)

	resp := env.do(t, http.MethodDelete, "/v1/sessions/"+id, "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	env.json(t, http.MethodGet, "/v1/sessions/"+id, nil, http.StatusNotFound)
}

func TestChatSocket(t *testing.T) {
	env := newTestEnv(t)
	id := env.newSession(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/v1/sessions/" + id + "/chat/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	if err := wsjson.Write(ctx, conn, map[string]string{"text": "Salut"}); err != nil {
		t.Fatal(err)
	}
	var got wsTurn
	if err := wsjson.Read(ctx, conn, &got); err != nil {
		t.Fatal(err)
	}
	if got.Role != session.RoleAssistant || got.Text != "Bonjour !" {
		t.Errorf("turn = %+v", got)
	}

	if err := wsjson.Write(ctx, conn, map[string]string{"text": ""}); err != nil {
		t.Fatal(err)
	}
	got = wsTurn{}
	if err := wsjson.Read(ctx, conn, &got); err != nil {
		t.Fatal(err)
	}
	if got.Text != "" || len(got.Notices) != 1 || got.Notices[0].Text != message.TextEmptyMessage {
		t.Errorf("empty turn = %+v", got)
	}
	conn.Close(websocket.StatusNormalClosure, "")

	res := env.json(t, http.MethodGet, "/v1/sessions/"+id, nil, http.StatusOK)
	if len(res.Session.Chat) != 2 {
		t.Errorf("chat = %+v", res.Session.Chat)
	}
}

func TestChatSocket_UnknownSession(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/v1/sessions/nope/chat/ws", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(context.DeadlineExceeded); got != http.StatusGatewayTimeout {
		t.Errorf("deadline = %d", got)
	}
	if got := statusFor(errors.New("boom")); got != http.StatusBadGateway {
		t.Errorf("default = %d", got)
	}
}

func TestLanguages(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/v1/languages", "", nil)
	var got []language.Descriptor
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 || got[0].Name != "Français" || got[2].Code != "ary_Arab" {
		t.Errorf("languages = %+v", got)
	}
}
