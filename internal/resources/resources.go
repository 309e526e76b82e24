// Package resources lazily constructs the process-wide model handles.
//
// Each handle is built at most once. A construction failure is cached and
// returned on every later call; it is never retried.
package resources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nadzzz/polyglot/internal/provider/generate"
	"github.com/nadzzz/polyglot/internal/provider/translate"
)

// ErrUnavailable marks a resource whose construction failed.
var ErrUnavailable = errors.New("resource unavailable")

// GeneratorFactory builds the text generation handle.
type GeneratorFactory func(ctx context.Context) (generate.Generator, error)

// TranslatorFactory builds the translation handle.
type TranslatorFactory func(ctx context.Context) (translate.Translator, error)

// handle is a once-built value with its cached error.
type handle[T any] struct {
	once  sync.Once
	done  bool
	value T
	err   error
	mu    sync.Mutex
}

func (h *handle[T]) get(ctx context.Context, name string, build func(context.Context) (T, error)) (T, error) {
	h.once.Do(func() {
		v, err := build(ctx)
		if err != nil {
			slog.Error("resource construction failed", "resource", name, "error", err)
			err = fmt.Errorf("%w: %s: %w", ErrUnavailable, name, err)
		} else {
			slog.Info("resource ready", "resource", name)
		}
		h.mu.Lock()
		h.value, h.err, h.done = v, err, true
		h.mu.Unlock()
	})
	return h.value, h.err
}

// state reports whether construction ran and how it ended, without building.
func (h *handle[T]) state() (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done, h.err
}

// Loader owns the generation and translation handles.
type Loader struct {
	newGenerator  GeneratorFactory
	newTranslator TranslatorFactory

	gen handle[generate.Generator]
	tr  handle[translate.Translator]
}

// NewLoader creates a Loader. Nothing is constructed until first use.
func NewLoader(gen GeneratorFactory, tr TranslatorFactory) *Loader {
	return &Loader{newGenerator: gen, newTranslator: tr}
}

// Generation returns the shared generation handle.
func (l *Loader) Generation(ctx context.Context) (generate.Generator, error) {
	return l.gen.get(ctx, "generation", l.newGenerator)
}

// Translation returns the shared translation handle.
func (l *Loader) Translation(ctx context.Context) (translate.Translator, error) {
	return l.tr.get(ctx, "translation", l.newTranslator)
}

// Warm constructs both handles concurrently.
func (l *Loader) Warm(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := l.Generation(gctx)
		return err
	})
	g.Go(func() error {
		_, err := l.Translation(gctx)
		return err
	})
	return g.Wait()
}

// Check is a readiness probe. Handles not yet built count as healthy;
// a cached construction failure does not.
func (l *Loader) Check(context.Context) error {
	var errs []error
	if done, err := l.gen.state(); done && err != nil {
		errs = append(errs, err)
	}
	if done, err := l.tr.state(); done && err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
