// Package session holds per-user session state and the in-memory store that
// serializes actions on each session.
package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/nadzzz/polyglot/internal/language"
)

// ErrInvalidMode is returned by ParseMode for unknown mode names.
var ErrInvalidMode = errors.New("invalid input mode")

// Mode selects how the current text is acquired.
type Mode string

const (
	ModeTyped Mode = "typed"
	ModeImage Mode = "image"
	ModeVoice Mode = "voice"
	ModeFile  Mode = "file"
)

// Modes lists the input modes in menu order.
func Modes() []Mode { return []Mode{ModeTyped, ModeImage, ModeVoice, ModeFile} }

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Modes(), m) {
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Role is the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one chat message.
type Turn struct {
	Role Role   `json:"role" yaml:"role"`
	Text string `json:"text" yaml:"text"`
}

// Record is one completed translation.
type Record struct {
	Time       time.Time `json:"time" yaml:"time"`
	Source     string    `json:"source" yaml:"source"`
	Translated string    `json:"translated" yaml:"translated"`
	SourceCode string    `json:"source_code" yaml:"source_code"`
	TargetCode string    `json:"target_code" yaml:"target_code"`
}

// Result is the last successful translation.
type Result struct {
	Text   string              `json:"text" yaml:"text"`
	Target language.Descriptor `json:"target" yaml:"target"`
}

// State is the mutable state of one session. It is only touched while the
// owning session's lock is held, through [Store.Do].
type State struct {
	ID          string
	Dir         string // artifact directory
	Mode        Mode
	CurrentText string
	Chat        []Turn
	History     []Record
	LastResult  *Result
}

// AppendTurn appends a chat turn.
func (s *State) AppendTurn(role Role, text string) {
	s.Chat = append(s.Chat, Turn{Role: role, Text: text})
}

// ClearChat empties the transcript.
func (s *State) ClearChat() {
	s.Chat = nil
}

// SetMode switches the active input mode. The current text is kept.
func (s *State) SetMode(m Mode) {
	s.Mode = m
}

// Snapshot is a read-only copy of a session for views.
type Snapshot struct {
	ID          string   `json:"id"`
	Mode        Mode     `json:"mode"`
	CurrentText string   `json:"current_text"`
	Chat        []Turn   `json:"chat"`
	History     []Record `json:"history"`
	LastResult  *Result  `json:"last_result,omitempty"`
}

// Snapshot copies s. Slices are cloned so the copy outlives the lock.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		ID:          s.ID,
		Mode:        s.Mode,
		CurrentText: s.CurrentText,
		Chat:        slices.Clone(s.Chat),
		History:     slices.Clone(s.History),
	}
	if snap.Chat == nil {
		snap.Chat = []Turn{}
	}
	if snap.History == nil {
		snap.History = []Record{}
	}
	if s.LastResult != nil {
		r := *s.LastResult
		snap.LastResult = &r
	}
	return snap
}
