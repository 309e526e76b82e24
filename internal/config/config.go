// Package config handles loading and validating the polyglot configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the polyglot service.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Transports  TransportsConfig  `mapstructure:"transports"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Generation  GenerationConfig  `mapstructure:"generation"`
	Translation TranslationConfig `mapstructure:"translation"`
	OCR         OCRConfig         `mapstructure:"ocr"`
	STT         STTConfig         `mapstructure:"stt"`
	TTS         TTSConfig         `mapstructure:"tts"`
	History     HistoryConfig     `mapstructure:"history"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds the ops server and session settings.
type ServerConfig struct {
	HealthPort   int           `mapstructure:"health_port"`
	ArtifactsDir string        `mapstructure:"artifacts_dir"` // root for per-session audio files
	SessionTTL   time.Duration `mapstructure:"session_ttl"`   // idle time before a session is evicted
	ReapInterval time.Duration `mapstructure:"reap_interval"`
	WarmModels   bool          `mapstructure:"warm_models"` // load generation/translation handles at startup
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the HTTP/WebSocket transport.
type HTTPConfig struct {
	Enabled      bool  `mapstructure:"enabled"`
	Port         int   `mapstructure:"port"`
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// OpenAIConfig holds credentials shared by every OpenAI-backed resource.
type OpenAIConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	Organization string `mapstructure:"organization"`
}

// GenerationConfig selects the text generation backend and its sampling parameters.
type GenerationConfig struct {
	Backend     string        `mapstructure:"backend"`  // "openai" or "anyllm"
	Provider    string        `mapstructure:"provider"` // any-llm provider name (e.g., "ollama")
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	TopP        float64       `mapstructure:"top_p"`
	Sample      bool          `mapstructure:"sample"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// TranslationConfig selects the translation backend.
type TranslationConfig struct {
	Backend   string        `mapstructure:"backend"`  // "nllb" or "llm"
	Endpoint  string        `mapstructure:"endpoint"` // NLLB inference server URL
	MaxLength int           `mapstructure:"max_length"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// OCRConfig selects the optical character recognition backend.
type OCRConfig struct {
	Backend   string        `mapstructure:"backend"`   // "tesseract" or "openai"
	Binary    string        `mapstructure:"binary"`    // tesseract executable
	Languages string        `mapstructure:"languages"` // tesseract -l argument
	Model     string        `mapstructure:"model"`     // vision model for the openai backend
	Timeout   time.Duration `mapstructure:"timeout"`
}

// STTConfig selects the speech-to-text backend.
type STTConfig struct {
	Backend         string        `mapstructure:"backend"`  // "openai" or "local"
	Language        string        `mapstructure:"language"` // spoken-language hint, BCP-47 (e.g., "fr-FR")
	Model           string        `mapstructure:"model"`
	WhisperEndpoint string        `mapstructure:"whisper_endpoint"`
	WhisperType     string        `mapstructure:"whisper_type"` // "openai" (default) or "asr" (ahmetoner/whisper-asr-webservice)
	Timeout         time.Duration `mapstructure:"timeout"`
}

// TTSConfig selects and configures the text-to-speech backend.
type TTSConfig struct {
	Backend string          `mapstructure:"backend"` // "piper" or "openai"
	Piper   PiperConfig     `mapstructure:"piper"`
	OpenAI  OpenAITTSConfig `mapstructure:"openai"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
//
// For a single Piper instance that serves all languages, set Endpoint.
// For per-language instances, set Endpoints which maps ISO-639-1 codes to
// individual Wyoming TCP endpoints. Endpoints takes precedence.
type PiperConfig struct {
	Endpoint  string            `mapstructure:"endpoint"`  // Default Wyoming TCP endpoint (host:port)
	Endpoints map[string]string `mapstructure:"endpoints"` // ISO-639-1 language code -> Wyoming TCP endpoint
	Voices    map[string]string `mapstructure:"voices"`    // ISO-639-1 language code -> Piper voice model name
}

// OpenAITTSConfig holds OpenAI speech synthesis settings.
type OpenAITTSConfig struct {
	Model string `mapstructure:"model"`
	Voice string `mapstructure:"voice"`
}

// HistoryConfig configures the optional translation audit sink.
type HistoryConfig struct {
	PostgresDSN string `mapstructure:"postgres_dsn"` // empty disables the sink
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./polyglot.yaml, ./configs/polyglot.yaml, /etc/polyglot/polyglot.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("polyglot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/polyglot")
	}

	// Environment variables: POLYGLOT_SERVER_HEALTH_PORT, POLYGLOT_GENERATION_BACKEND, etc.
	v.SetEnvPrefix("POLYGLOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional; env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${OPENAI_API_KEY}")
	cfg.OpenAI.APIKey = resolveEnvRef(cfg.OpenAI.APIKey)
	cfg.Generation.APIKey = resolveEnvRef(cfg.Generation.APIKey)
	cfg.History.PostgresDSN = resolveEnvRef(cfg.History.PostgresDSN)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.artifacts_dir", "./artifacts")
	v.SetDefault("server.session_ttl", "2h")
	v.SetDefault("server.reap_interval", "5m")
	v.SetDefault("server.warm_models", false)
	v.SetDefault("transports.grpc.enabled", true)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("transports.http.max_body_bytes", 25<<20)
	v.SetDefault("openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.organization", "")
	v.SetDefault("generation.backend", "openai")
	v.SetDefault("generation.provider", "ollama")
	v.SetDefault("generation.model", "gpt-4o-mini")
	v.SetDefault("generation.base_url", "")
	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.max_tokens", 200)
	v.SetDefault("generation.temperature", 0.6)
	v.SetDefault("generation.top_p", 0.9)
	v.SetDefault("generation.sample", true)
	v.SetDefault("generation.timeout", "60s")
	v.SetDefault("translation.backend", "nllb")
	v.SetDefault("translation.endpoint", "http://localhost:8000/translate")
	v.SetDefault("translation.max_length", 500)
	v.SetDefault("translation.timeout", "60s")
	v.SetDefault("ocr.backend", "tesseract")
	v.SetDefault("ocr.binary", "tesseract")
	v.SetDefault("ocr.languages", "fra+eng+ara+spa")
	v.SetDefault("ocr.model", "gpt-4o-mini")
	v.SetDefault("ocr.timeout", "30s")
	v.SetDefault("stt.backend", "openai")
	v.SetDefault("stt.language", "fr-FR")
	v.SetDefault("stt.model", "whisper-1")
	v.SetDefault("stt.whisper_endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("stt.whisper_type", "openai")
	v.SetDefault("stt.timeout", "30s")
	v.SetDefault("tts.backend", "piper")
	v.SetDefault("tts.piper.endpoint", "localhost:10200")
	v.SetDefault("tts.openai.model", "tts-1")
	v.SetDefault("tts.openai.voice", "alloy")
	v.SetDefault("history.postgres_dsn", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate rejects unknown backend names and nonsensical limits.
func (c *Config) Validate() error {
	checks := []struct {
		field   string
		value   string
		allowed []string
	}{
		{"generation.backend", c.Generation.Backend, []string{"openai", "anyllm"}},
		{"translation.backend", c.Translation.Backend, []string{"nllb", "llm"}},
		{"ocr.backend", c.OCR.Backend, []string{"tesseract", "openai"}},
		{"stt.backend", c.STT.Backend, []string{"openai", "local"}},
		{"tts.backend", c.TTS.Backend, []string{"piper", "openai"}},
	}
	for _, ch := range checks {
		if !contains(ch.allowed, ch.value) {
			return fmt.Errorf("config: %s %q must be one of %s", ch.field, ch.value, strings.Join(ch.allowed, ", "))
		}
	}
	if c.Generation.MaxTokens <= 0 {
		return fmt.Errorf("config: generation.max_tokens must be positive")
	}
	if c.Translation.MaxLength <= 0 {
		return fmt.Errorf("config: translation.max_length must be positive")
	}
	if c.Translation.Backend == "nllb" && c.Translation.Endpoint == "" {
		return fmt.Errorf("config: translation.endpoint is required for the nllb backend")
	}
	if !c.Transports.HTTP.Enabled && !c.Transports.GRPC.Enabled {
		return fmt.Errorf("config: no transports enabled; enable at least one")
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
// An unset variable resolves to the empty string.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
