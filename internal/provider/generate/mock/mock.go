// Package mock provides a test double for generate.Generator.
package mock

import (
	"context"
	"sync"

	"github.com/nadzzz/polyglot/internal/provider/generate"
)

// Generator is a mock generate.Generator. Set Reply/Err before use; calls
// are recorded in Calls. Fn, when set, overrides Reply and Err.
type Generator struct {
	mu sync.Mutex

	Reply string
	Err   error
	Fn    func(req generate.Request) (string, error)

	Calls []generate.Request
}

var _ generate.Generator = (*Generator)(nil)

// Name returns "mock".
func (g *Generator) Name() string { return "mock" }

// Generate records the call and returns the configured reply.
func (g *Generator) Generate(_ context.Context, req generate.Request) (string, error) {
	g.mu.Lock()
	g.Calls = append(g.Calls, req)
	fn, reply, err := g.Fn, g.Reply, g.Err
	g.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	return reply, err
}

// CallCount returns the number of Generate calls.
func (g *Generator) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Calls)
}
