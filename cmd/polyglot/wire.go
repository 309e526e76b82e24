package main

import (
	"context"
	"fmt"
	"log/slog"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/nadzzz/polyglot/internal/audio"
	"github.com/nadzzz/polyglot/internal/chat"
	"github.com/nadzzz/polyglot/internal/config"
	"github.com/nadzzz/polyglot/internal/dispatch"
	"github.com/nadzzz/polyglot/internal/health"
	"github.com/nadzzz/polyglot/internal/history"
	"github.com/nadzzz/polyglot/internal/input"
	"github.com/nadzzz/polyglot/internal/language"
	"github.com/nadzzz/polyglot/internal/observe"
	"github.com/nadzzz/polyglot/internal/provider"
	"github.com/nadzzz/polyglot/internal/provider/generate"
	anyllmgen "github.com/nadzzz/polyglot/internal/provider/generate/anyllm"
	openaigen "github.com/nadzzz/polyglot/internal/provider/generate/openai"
	"github.com/nadzzz/polyglot/internal/provider/ocr"
	openaiocr "github.com/nadzzz/polyglot/internal/provider/ocr/openai"
	"github.com/nadzzz/polyglot/internal/provider/ocr/tesseract"
	"github.com/nadzzz/polyglot/internal/provider/stt"
	localstt "github.com/nadzzz/polyglot/internal/provider/stt/local"
	openaistt "github.com/nadzzz/polyglot/internal/provider/stt/openai"
	"github.com/nadzzz/polyglot/internal/provider/translate"
	llmtr "github.com/nadzzz/polyglot/internal/provider/translate/llm"
	"github.com/nadzzz/polyglot/internal/provider/translate/nllb"
	"github.com/nadzzz/polyglot/internal/resources"
	"github.com/nadzzz/polyglot/internal/session"
	"github.com/nadzzz/polyglot/internal/translation"
	"github.com/nadzzz/polyglot/internal/transport"
	"github.com/nadzzz/polyglot/internal/tts"
	openaitts "github.com/nadzzz/polyglot/internal/tts/openai"
	"github.com/nadzzz/polyglot/internal/tts/piper"
)

var _ transport.Service = (*dispatch.Dispatcher)(nil)

// app is the wired service graph.
type app struct {
	dispatcher *dispatch.Dispatcher
	loader     *resources.Loader
	checkers   []health.Checker
	closers    []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// build selects the configured backends and wires the workflows.
func build(ctx context.Context, cfg *config.Config, store *session.Store, m *observe.Metrics) (*app, error) {
	a := &app{}

	// The llm translation backend borrows the shared generation handle.
	var loader *resources.Loader
	loader = resources.NewLoader(
		func(context.Context) (generate.Generator, error) { return newGenerator(cfg) },
		func(ctx context.Context) (translate.Translator, error) { return newTranslator(ctx, cfg, loader) },
	)
	a.loader = loader
	a.checkers = append(a.checkers, health.Checker{Name: "models", Check: loader.Check})

	engine, err := newOCR(cfg, a)
	if err != nil {
		return nil, err
	}
	recognizer, err := newRecognizer(cfg)
	if err != nil {
		return nil, err
	}
	synth, err := newSynthesizer(cfg, a)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = synth.Close() })

	trOpts := []translation.Option{
		translation.WithMetrics(m),
		translation.WithMaxLength(cfg.Translation.MaxLength),
	}
	if cfg.History.PostgresDSN != "" {
		pool, err := history.Open(ctx, cfg.History.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		sink := history.NewPostgresSink(pool)
		if err := sink.Migrate(ctx); err != nil {
			return nil, err
		}
		trOpts = append(trOpts, translation.WithSink(sink))
		a.checkers = append(a.checkers, health.Checker{Name: "history", Check: func(ctx context.Context) error {
			return pool.Ping(ctx)
		}})
		slog.Info("translation history mirrored to postgres")
	}

	identifier := language.NewIdentifier(language.NewLinguaDetector(), language.WithMetrics(m))
	a.dispatcher = dispatch.New(dispatch.Components{
		Store:      store,
		Identifier: identifier,
		Acquirer:   input.New(engine, recognizer, cfg.STT.Language, m),
		Chat: chat.New(loader.Generation, chat.Params{
			MaxTokens:   cfg.Generation.MaxTokens,
			Temperature: cfg.Generation.Temperature,
			TopP:        cfg.Generation.TopP,
			Sample:      cfg.Generation.Sample,
		}, m),
		Translation: translation.New(loader.Translation, identifier, trOpts...),
		Audio:       audio.NewRenderer(synth, m),
	})
	return a, nil
}

func openAIOptions(cfg *config.Config) []provider.OpenAIOption {
	var opts []provider.OpenAIOption
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, provider.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	if cfg.OpenAI.Organization != "" {
		opts = append(opts, provider.WithOrganization(cfg.OpenAI.Organization))
	}
	return opts
}

func newGenerator(cfg *config.Config) (generate.Generator, error) {
	gc := cfg.Generation
	switch gc.Backend {
	case "anyllm":
		var opts []anyllmlib.Option
		if gc.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(gc.APIKey))
		}
		if gc.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(gc.BaseURL))
		}
		slog.Info("using any-llm generation", "provider", gc.Provider, "model", gc.Model)
		return anyllmgen.New(gc.Provider, gc.Model, opts...)
	default:
		opts := openAIOptions(cfg)
		if gc.BaseURL != "" {
			opts = append(opts, provider.WithBaseURL(gc.BaseURL))
		}
		opts = append(opts, provider.WithTimeout(gc.Timeout))
		key := cfg.OpenAI.APIKey
		if gc.APIKey != "" {
			key = gc.APIKey
		}
		slog.Info("using OpenAI generation", "model", gc.Model)
		return openaigen.New(key, gc.Model, opts...)
	}
}

func newTranslator(ctx context.Context, cfg *config.Config, loader *resources.Loader) (translate.Translator, error) {
	switch cfg.Translation.Backend {
	case "llm":
		gen, err := loader.Generation(ctx)
		if err != nil {
			return nil, fmt.Errorf("llm translation: %w", err)
		}
		slog.Info("using llm-prompted translation", "generator", gen.Name())
		return llmtr.New(gen), nil
	default:
		slog.Info("using NLLB translation", "endpoint", cfg.Translation.Endpoint)
		return nllb.New(cfg.Translation.Endpoint, cfg.Translation.Timeout)
	}
}

func newOCR(cfg *config.Config, a *app) (ocr.Engine, error) {
	switch cfg.OCR.Backend {
	case "openai":
		opts := append(openAIOptions(cfg), provider.WithTimeout(cfg.OCR.Timeout))
		return openaiocr.New(cfg.OpenAI.APIKey, cfg.OCR.Model, opts...)
	default:
		e := tesseract.New(cfg.OCR.Binary, cfg.OCR.Languages, cfg.OCR.Timeout)
		a.checkers = append(a.checkers, health.Checker{Name: "tesseract", Check: e.Available})
		return e, nil
	}
}

func newRecognizer(cfg *config.Config) (stt.Recognizer, error) {
	sc := cfg.STT
	switch sc.Backend {
	case "local":
		slog.Info("using local whisper", "endpoint", sc.WhisperEndpoint, "type", sc.WhisperType)
		return localstt.New(sc.WhisperEndpoint, sc.WhisperType, sc.Model, sc.Timeout), nil
	default:
		opts := append(openAIOptions(cfg), provider.WithTimeout(sc.Timeout))
		return openaistt.New(cfg.OpenAI.APIKey, sc.Model, opts...)
	}
}

func newSynthesizer(cfg *config.Config, a *app) (tts.Synthesizer, error) {
	switch cfg.TTS.Backend {
	case "openai":
		return openaitts.New(cfg.OpenAI.APIKey, cfg.TTS.OpenAI.Model, cfg.TTS.OpenAI.Voice, openAIOptions(cfg)...)
	default:
		s := piper.New(cfg.TTS.Piper)
		a.checkers = append(a.checkers, health.Checker{Name: "piper", Check: s.Ping})
		return s, nil
	}
}
