// Package mock provides a test double for stt.Recognizer.
package mock

import (
	"context"
	"sync"

	"github.com/nadzzz/polyglot/internal/provider/stt"
)

// Call records one Recognize invocation.
type Call struct {
	Audio       []byte
	ContentType string
	Opts        stt.Options
}

// Recognizer is a mock stt.Recognizer. Like the real backends it rejects
// empty clips with stt.ErrEmptyAudio before consulting Text/Err.
type Recognizer struct {
	mu sync.Mutex

	Text string
	Err  error

	Calls []Call
}

var _ stt.Recognizer = (*Recognizer)(nil)

// Name returns "mock".
func (r *Recognizer) Name() string { return "mock" }

// Recognize records the call and returns Text or Err.
func (r *Recognizer) Recognize(_ context.Context, audio []byte, contentType string, opts stt.Options) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, Call{Audio: append([]byte(nil), audio...), ContentType: contentType, Opts: opts})
	if len(audio) == 0 {
		return "", stt.ErrEmptyAudio
	}
	return r.Text, r.Err
}
