package nllb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nadzzz/polyglot/internal/provider/translate"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"object", `{"translation_text": "Hello, how are you?"}`, "Hello, how are you?"},
		{"list", `[{"translation_text": "Hello, how are you?"}]`, "Hello, how are you?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got request
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("method = %s", r.Method)
				}
				if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
					t.Errorf("decode request: %v", err)
				}
				_, _ = w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			tr, err := New(srv.URL, 0)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			out, err := tr.Translate(context.Background(), translate.Request{
				Text: "Bonjour, comment vas-tu?", Source: "fra_Latn", Target: "eng_Latn", MaxLength: 500,
			})
			if err != nil {
				t.Fatalf("Translate: %v", err)
			}
			if out != tt.want {
				t.Errorf("Translate = %q, want %q", out, tt.want)
			}
			if got.SrcLang != "fra_Latn" || got.TgtLang != "eng_Latn" || got.MaxLength != 500 {
				t.Errorf("request = %+v", got)
			}
		})
	}
}

func TestTranslate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, "model crashed", "status 500"},
		{"empty list", http.StatusOK, "[]", "empty output"},
		{"garbage", http.StatusOK, "not json", "decoding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			tr, _ := New(srv.URL, 0)
			_, err := tr.Translate(context.Background(), translate.Request{Text: "x", Source: "fra_Latn", Target: "eng_Latn"})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	if _, err := New("", 0); err == nil {
		t.Error("expected error for empty endpoint")
	}
}
