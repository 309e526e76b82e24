// Package mock provides a test double for translate.Translator.
package mock

import (
	"context"
	"sync"

	"github.com/nadzzz/polyglot/internal/provider/translate"
)

// Translator is a mock translate.Translator. Fn, when set, overrides
// Reply and Err.
type Translator struct {
	mu sync.Mutex

	Reply string
	Err   error
	Fn    func(req translate.Request) (string, error)

	Calls []translate.Request
}

var _ translate.Translator = (*Translator)(nil)

// Name returns "mock".
func (t *Translator) Name() string { return "mock" }

// Translate records the call and returns the configured reply.
func (t *Translator) Translate(_ context.Context, req translate.Request) (string, error) {
	t.mu.Lock()
	t.Calls = append(t.Calls, req)
	fn, reply, err := t.Fn, t.Reply, t.Err
	t.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	return reply, err
}

// CallCount returns the number of Translate calls.
func (t *Translator) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Calls)
}
