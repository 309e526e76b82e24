package local

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nadzzz/polyglot/internal/provider/stt"
)

func TestRecognize_OpenAIFlavor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		if got := r.FormValue("language"); got != "fr" {
			t.Errorf("language = %q, want fr", got)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		data, _ := io.ReadAll(f)
		if string(data) != "RIFF-audio" || hdr.Filename != "audio.wav" {
			t.Errorf("file = %q (%s)", data, hdr.Filename)
		}
		_, _ = w.Write([]byte(`{"text": " Bonjour tout le monde "}`))
	}))
	defer srv.Close()

	r := New(srv.URL, "", "whisper-1", 0)
	text, err := r.Recognize(context.Background(), []byte("RIFF-audio"), "audio/wav", stt.Options{Language: "fr-FR"})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "Bonjour tout le monde" {
		t.Errorf("Recognize = %q", text)
	}
}

func TestRecognize_ASRFlavor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("task") != "transcribe" || q.Get("language") != "fr" {
			t.Errorf("query = %v", q)
		}
		if _, _, err := r.FormFile("audio_file"); err != nil {
			t.Errorf("FormFile(audio_file): %v", err)
		}
		_, _ = w.Write([]byte(`{"text": "Salut", "language": "fr"}`))
	}))
	defer srv.Close()

	r := New(srv.URL+"/asr", "asr", "", 0)
	text, err := r.Recognize(context.Background(), []byte("ogg"), "audio/ogg", stt.Options{Language: "fr-FR"})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "Salut" {
		t.Errorf("Recognize = %q", text)
	}
}

func TestRecognize_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no speech", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	r := New(srv.URL, "", "", 0)
	if _, err := r.Recognize(context.Background(), nil, "audio/wav", stt.Options{}); !errors.Is(err, stt.ErrEmptyAudio) {
		t.Errorf("empty clip err = %v, want ErrEmptyAudio", err)
	}
	if _, err := r.Recognize(context.Background(), []byte("x"), "audio/wav", stt.Options{}); err == nil {
		t.Error("expected error for 422 response")
	}
}

func TestMultipartBody(t *testing.T) {
	body, ct, err := multipartBody("audio_file", []byte("RIFF"), "audio/wav", map[string]string{
		"language": "es",
		"task":     "transcribe",
	})
	if err != nil {
		t.Fatalf("multipartBody: %v", err)
	}
	_, params, err := mime.ParseMediaType(ct)
	if err != nil {
		t.Fatalf("content type %q: %v", ct, err)
	}
	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}
	if got := form.Value["language"]; len(got) != 1 || got[0] != "es" {
		t.Errorf("language = %v", got)
	}
	if got := form.Value["task"]; len(got) != 1 || got[0] != "transcribe" {
		t.Errorf("task = %v", got)
	}
	if files := form.File["audio_file"]; len(files) != 1 || files[0].Filename != "audio.wav" {
		t.Errorf("audio_file = %+v", files)
	}
}
