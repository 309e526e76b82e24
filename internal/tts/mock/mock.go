// Package mock provides a test double for tts.Synthesizer.
package mock

import (
	"context"
	"sync"

	"github.com/nadzzz/polyglot/internal/tts"
)

// Call records one Synthesize invocation.
type Call struct {
	Text string
	Opts tts.SynthesizeOpts
}

// Synthesizer is a mock tts.Synthesizer. With Result nil it returns a small
// WAV-typed payload echoing the text.
type Synthesizer struct {
	mu sync.Mutex

	Result *tts.SynthesizeResult
	Err    error

	Calls  []Call
	Closed bool
}

var _ tts.Synthesizer = (*Synthesizer)(nil)

// Name returns "mock".
func (s *Synthesizer) Name() string { return "mock" }

// Synthesize records the call and returns Result or Err.
func (s *Synthesizer) Synthesize(_ context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, Call{Text: text, Opts: opts})
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Result != nil {
		return s.Result, nil
	}
	return &tts.SynthesizeResult{
		Audio:       []byte("RIFF" + text),
		ContentType: "audio/wav",
		SampleRate:  22050,
		Channels:    1,
	}, nil
}

// Close marks the synthesizer closed.
func (s *Synthesizer) Close() error {
	s.mu.Lock()
	s.Closed = true
	s.mu.Unlock()
	return nil
}

// CallCount returns the number of Synthesize calls.
func (s *Synthesizer) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}
