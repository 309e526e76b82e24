// Package mock provides a test double for ocr.Engine.
package mock

import (
	"context"
	"sync"

	"github.com/nadzzz/polyglot/internal/provider/ocr"
)

// Call records one Extract invocation.
type Call struct {
	Image       []byte
	ContentType string
}

// Engine is a mock ocr.Engine.
type Engine struct {
	mu sync.Mutex

	Text string
	Err  error

	Calls []Call
}

var _ ocr.Engine = (*Engine)(nil)

// Name returns "mock".
func (e *Engine) Name() string { return "mock" }

// Extract records the call and returns Text or Err.
func (e *Engine) Extract(_ context.Context, image []byte, contentType string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls = append(e.Calls, Call{Image: append([]byte(nil), image...), ContentType: contentType})
	return e.Text, e.Err
}
