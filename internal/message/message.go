// Package message defines the data types exchanged between the transports
// and the dispatcher.
package message

import (
	"github.com/nadzzz/polyglot/internal/language"
	"github.com/nadzzz/polyglot/internal/session"
)

// Level is the severity of a user-facing notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a short message for the user, shown next to the result.
// Texts are in French, like the rest of the user interface.
type Notice struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

func Info(text string) Notice    { return Notice{Level: LevelInfo, Text: text} }
func Success(text string) Notice { return Notice{Level: LevelSuccess, Text: text} }
func Warning(text string) Notice { return Notice{Level: LevelWarning, Text: text} }
func Error(text string) Notice   { return Notice{Level: LevelError, Text: text} }

// User-facing notice texts.
const (
	TextNoText          = "Aucun texte"
	TextNothingToSpeak  = "Aucun texte à écouter"
	TextNoTranslation   = "Aucune traduction"
	TextRecognized      = "Texte reconnu"
	TextRecognitionFail = "Erreur reconnaissance vocale"
	TextSpeakFail       = "Impossible de lire le texte"
	TextEmptyMessage    = "Message vide"
	TextChatCleared     = "Conversation effacée"
	TextDetectedPrefix  = "Langue détectée : "
)

// InputRequest carries one acquisition through the given mode. Data holds
// the raw upload for image, voice and file modes; JSON encodes it as base64.
type InputRequest struct {
	SessionID   string       `json:"session_id"`
	Mode        session.Mode `json:"mode"`
	Text        string       `json:"text,omitempty"`
	Data        []byte       `json:"data,omitempty"`
	ContentType string       `json:"content_type,omitempty"`
}

// ModeRequest switches the active input mode.
type ModeRequest struct {
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
}

// ChatRequest sends one user message to the assistant.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// TranslateRequest translates the current text. Target may be a display
// name, translation code or speech code.
type TranslateRequest struct {
	SessionID string `json:"session_id"`
	Target    string `json:"target"`
}

// SpeakSource selects which text Speak renders.
type SpeakSource string

const (
	SpeakInput       SpeakSource = "input"
	SpeakTranslation SpeakSource = "translation"
)

// SpeakRequest renders the current text or the last translation as audio.
type SpeakRequest struct {
	SessionID string      `json:"session_id"`
	Source    SpeakSource `json:"source"`
}

// SessionRequest names a session.
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

// Audio is a rendered audio artifact. Data is base64 in JSON.
type Audio struct {
	Kind        string `json:"kind"`
	File        string `json:"file"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data,omitempty"`
}

// HistoryEntry is one line of the translation history listing.
type HistoryEntry struct {
	Clock             string         `json:"clock" yaml:"clock"` // HH:MM
	SourceSummary     string         `json:"source_summary" yaml:"source_summary"`
	TranslatedSummary string         `json:"translated_summary" yaml:"translated_summary"`
	Record            session.Record `json:"record" yaml:"record"`
}

// Result is the outcome of one action on a session. Fields not touched by
// the action are left empty.
type Result struct {
	SessionID   string               `json:"session_id"`
	Session     *session.Snapshot    `json:"session,omitempty"`
	Language    *language.Descriptor `json:"language,omitempty"`
	Reply       string               `json:"reply,omitempty"`
	Translation *session.Result      `json:"translation,omitempty"`
	Audio       *Audio               `json:"audio,omitempty"`
	History     []HistoryEntry       `json:"history,omitempty"`
	Notices     []Notice             `json:"notices,omitempty"`
}

// Notify appends notices to the result.
func (r *Result) Notify(n ...Notice) {
	r.Notices = append(r.Notices, n...)
}

// HasError reports whether any notice is at error level.
func (r *Result) HasError() bool {
	for _, n := range r.Notices {
		if n.Level == LevelError {
			return true
		}
	}
	return false
}
