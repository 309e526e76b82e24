package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("api key = %q, want resolved ${OPENAI_API_KEY}", cfg.OpenAI.APIKey)
	}
	if cfg.Generation.MaxTokens != 200 || cfg.Generation.Temperature != 0.6 || cfg.Generation.TopP != 0.9 || !cfg.Generation.Sample {
		t.Errorf("generation = %+v", cfg.Generation)
	}
	if cfg.Translation.MaxLength != 500 {
		t.Errorf("max length = %d", cfg.Translation.MaxLength)
	}
	if cfg.STT.Language != "fr-FR" {
		t.Errorf("stt language = %q", cfg.STT.Language)
	}
	if cfg.Server.SessionTTL != 2*time.Hour {
		t.Errorf("session ttl = %v", cfg.Server.SessionTTL)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "polyglot.yaml")
	yaml := `
generation:
  backend: anyllm
  provider: ollama
  model: llama3.2
translation:
  backend: llm
tts:
  backend: piper
  piper:
    endpoints:
      ar: piper-ar:10200
history:
  postgres_dsn: ${POLYGLOT_TEST_DSN}
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("POLYGLOT_TEST_DSN", "postgres://localhost/polyglot")
	t.Setenv("POLYGLOT_TRANSPORTS_GRPC_PORT", "6000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generation.Backend != "anyllm" || cfg.Generation.Model != "llama3.2" {
		t.Errorf("generation = %+v", cfg.Generation)
	}
	if cfg.TTS.Piper.Endpoints["ar"] != "piper-ar:10200" {
		t.Errorf("piper endpoints = %v", cfg.TTS.Piper.Endpoints)
	}
	if cfg.History.PostgresDSN != "postgres://localhost/polyglot" {
		t.Errorf("dsn = %q", cfg.History.PostgresDSN)
	}
	if cfg.Transports.GRPC.Port != 6000 {
		t.Errorf("grpc port = %d", cfg.Transports.GRPC.Port)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Generation:  GenerationConfig{Backend: "openai", MaxTokens: 200},
			Translation: TranslationConfig{Backend: "nllb", Endpoint: "http://nllb", MaxLength: 500},
			OCR:         OCRConfig{Backend: "tesseract"},
			STT:         STTConfig{Backend: "local"},
			TTS:         TTSConfig{Backend: "piper"},
			Transports:  TransportsConfig{HTTP: HTTPConfig{Enabled: true}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown generation", func(c *Config) { c.Generation.Backend = "t5" }, "generation.backend"},
		{"unknown translation", func(c *Config) { c.Translation.Backend = "google" }, "translation.backend"},
		{"unknown ocr", func(c *Config) { c.OCR.Backend = "easyocr" }, "ocr.backend"},
		{"unknown stt", func(c *Config) { c.STT.Backend = "vosk" }, "stt.backend"},
		{"unknown tts", func(c *Config) { c.TTS.Backend = "gtts" }, "tts.backend"},
		{"zero max tokens", func(c *Config) { c.Generation.MaxTokens = 0 }, "max_tokens"},
		{"zero max length", func(c *Config) { c.Translation.MaxLength = 0 }, "max_length"},
		{"nllb without endpoint", func(c *Config) { c.Translation.Endpoint = "" }, "translation.endpoint"},
		{"llm without endpoint", func(c *Config) { c.Translation.Backend = "llm"; c.Translation.Endpoint = "" }, ""},
		{"no transports", func(c *Config) { c.Transports.HTTP.Enabled = false }, "no transports"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolveEnvRef(t *testing.T) {
	t.Setenv("POLYGLOT_SECRET", "s3cret")
	tests := map[string]string{
		"${POLYGLOT_SECRET}": "s3cret",
		"${POLYGLOT_UNSET}":  "",
		"literal":            "literal",
		"${partial":          "${partial",
	}
	for in, want := range tests {
		if got := resolveEnvRef(in); got != want {
			t.Errorf("resolveEnvRef(%q) = %q, want %q", in, got, want)
		}
	}
}
