package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nadzzz/polyglot/internal/provider"
	"github.com/nadzzz/polyglot/internal/provider/stt"
)

func TestRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		if got := r.FormValue("language"); got != "fr" {
			t.Errorf("language = %q, want fr", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "Bonjour"}`))
	}))
	defer srv.Close()

	r, err := New("sk-test", "", provider.WithBaseURL(srv.URL+"/v1"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	text, err := r.Recognize(context.Background(), []byte("RIFF"), "audio/wav", stt.Options{Language: "fr-FR"})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "Bonjour" {
		t.Errorf("Recognize = %q", text)
	}
}

func TestRecognize_EmptyClip(t *testing.T) {
	r, err := New("sk-test", "whisper-1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.Recognize(context.Background(), nil, "audio/wav", stt.Options{}); !errors.Is(err, stt.ErrEmptyAudio) {
		t.Errorf("err = %v, want ErrEmptyAudio", err)
	}
}
