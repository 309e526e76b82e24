// Package dispatch routes session actions to the workflows that implement
// them.
//
// Every action locks its session for the whole run, so actions on one
// session are applied one at a time in arrival order. Expected failures
// (empty input, recognition or synthesis errors) come back as notices on
// the Result; only caller errors and collaborator failures the session
// cannot recover from are returned as errors.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nadzzz/polyglot/internal/audio"
	"github.com/nadzzz/polyglot/internal/chat"
	"github.com/nadzzz/polyglot/internal/input"
	"github.com/nadzzz/polyglot/internal/language"
	"github.com/nadzzz/polyglot/internal/message"
	"github.com/nadzzz/polyglot/internal/observe"
	"github.com/nadzzz/polyglot/internal/session"
	"github.com/nadzzz/polyglot/internal/translation"
)

// ErrInvalidSource is returned by Speak for a text source other than
// input or translation.
var ErrInvalidSource = errors.New("invalid speak source")

// Components are the workflows the dispatcher routes to.
type Components struct {
	Store       *session.Store
	Identifier  *language.Identifier
	Acquirer    *input.Acquirer
	Chat        *chat.Session
	Translation *translation.Service
	Audio       *audio.Renderer
}

// Dispatcher is the central routing engine.
type Dispatcher struct {
	store       *session.Store
	identifier  *language.Identifier
	acquirer    *input.Acquirer
	chat        *chat.Session
	translation *translation.Service
	audio       *audio.Renderer
}

// New creates a Dispatcher.
func New(c Components) *Dispatcher {
	return &Dispatcher{
		store:       c.Store,
		identifier:  c.Identifier,
		acquirer:    c.Acquirer,
		chat:        c.Chat,
		translation: c.Translation,
		audio:       c.Audio,
	}
}

// run executes fn under the session lock inside a span and fills in the
// session view afterwards.
func (d *Dispatcher) run(ctx context.Context, action, id string, fn func(ctx context.Context, st *session.State, res *message.Result) error) (*message.Result, error) {
	ctx, span := observe.StartSpan(ctx, "dispatch."+action)
	defer span.End()
	span.SetAttributes(attribute.String("session.id", id))

	start := time.Now()
	logger := observe.Logger(ctx).With("session_id", id, "action", action)

	res := &message.Result{SessionID: id}
	err := d.store.Do(id, func(st *session.State) error {
		if err := fn(ctx, st, res); err != nil {
			return err
		}
		snap := st.Snapshot()
		res.Session = &snap
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("action failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	level := slog.LevelInfo
	if res.HasError() {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "action complete", "notices", len(res.Notices), "duration", time.Since(start))
	return res, nil
}

// CreateSession starts a new session in typed mode.
func (d *Dispatcher) CreateSession(ctx context.Context) (*message.Result, error) {
	snap, err := d.store.Create(ctx)
	if err != nil {
		return nil, err
	}
	return &message.Result{SessionID: snap.ID, Session: &snap}, nil
}

// Session returns the current view of a session.
func (d *Dispatcher) Session(ctx context.Context, id string) (*message.Result, error) {
	return d.run(ctx, "session", id, func(context.Context, *session.State, *message.Result) error {
		return nil
	})
}

// DeleteSession ends a session and removes its artifacts.
func (d *Dispatcher) DeleteSession(ctx context.Context, id string) error {
	return d.store.Delete(ctx, id)
}

// SetMode switches the active input mode. The current text is kept.
func (d *Dispatcher) SetMode(ctx context.Context, req message.ModeRequest) (*message.Result, error) {
	mode, err := session.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	return d.run(ctx, "set_mode", req.SessionID, func(_ context.Context, st *session.State, _ *message.Result) error {
		st.SetMode(mode)
		return nil
	})
}

// Acquire applies one input to the current text and reports the language
// detected on the result.
func (d *Dispatcher) Acquire(ctx context.Context, req message.InputRequest) (*message.Result, error) {
	in := input.Input{Mode: req.Mode, Text: req.Text, Data: req.Data, ContentType: req.ContentType}
	return d.run(ctx, "acquire", req.SessionID, func(ctx context.Context, st *session.State, res *message.Result) error {
		notices, err := d.acquirer.Apply(ctx, st, in)
		if err != nil {
			return err
		}
		res.Notify(notices...)
		d.detect(ctx, st, res)
		return nil
	})
}

// Detect identifies the language of the current text.
func (d *Dispatcher) Detect(ctx context.Context, id string) (*message.Result, error) {
	return d.run(ctx, "detect", id, func(ctx context.Context, st *session.State, res *message.Result) error {
		d.detect(ctx, st, res)
		return nil
	})
}

func (d *Dispatcher) detect(ctx context.Context, st *session.State, res *message.Result) {
	lang := d.identifier.Identify(ctx, st.CurrentText)
	if !lang.Known() && strings.TrimSpace(st.CurrentText) != "" {
		slog.Debug("language not identified, using default", "session_id", st.ID, "code", lang.Code)
	}
	res.Language = &lang
	res.Notify(message.Info(message.TextDetectedPrefix + lang.Name))
}

// Chat sends one message to the assistant. An empty message is skipped
// with a warning.
func (d *Dispatcher) Chat(ctx context.Context, req message.ChatRequest) (*message.Result, error) {
	return d.run(ctx, "chat", req.SessionID, func(ctx context.Context, st *session.State, res *message.Result) error {
		reply, err := d.chat.Send(ctx, st, req.Text)
		if errors.Is(err, chat.ErrEmptyMessage) {
			res.Notify(message.Warning(message.TextEmptyMessage))
			return nil
		}
		if err != nil {
			return err
		}
		res.Reply = reply
		return nil
	})
}

// ClearChat empties the transcript.
func (d *Dispatcher) ClearChat(ctx context.Context, id string) (*message.Result, error) {
	return d.run(ctx, "clear_chat", id, func(_ context.Context, st *session.State, res *message.Result) error {
		d.chat.Clear(st)
		res.Notify(message.Info(message.TextChatCleared))
		return nil
	})
}

// Translate translates the current text into req.Target. Empty text is
// skipped with a warning and leaves the history alone.
func (d *Dispatcher) Translate(ctx context.Context, req message.TranslateRequest) (*message.Result, error) {
	return d.run(ctx, "translate", req.SessionID, func(ctx context.Context, st *session.State, res *message.Result) error {
		out, err := d.translation.Translate(ctx, st, req.Target)
		if errors.Is(err, translation.ErrEmptyText) {
			res.Notify(message.Warning(message.TextNoText))
			return nil
		}
		if err != nil {
			return err
		}
		res.Translation = &out
		res.Notify(message.Success(out.Text))
		res.History = translation.List(st)
		return nil
	})
}

// History lists past translations, newest first.
func (d *Dispatcher) History(ctx context.Context, id string) (*message.Result, error) {
	return d.run(ctx, "history", id, func(_ context.Context, st *session.State, res *message.Result) error {
		res.History = translation.List(st)
		if len(res.History) == 0 {
			res.Notify(message.Info(message.TextNoTranslation))
		}
		return nil
	})
}

// ExportHistory serializes the history as "json" or "yaml" and returns the
// payload with its content type.
func (d *Dispatcher) ExportHistory(ctx context.Context, id, format string) ([]byte, string, error) {
	var (
		data []byte
		ct   string
	)
	_, err := d.run(ctx, "export_history", id, func(_ context.Context, st *session.State, _ *message.Result) error {
		var err error
		data, ct, err = translation.ExportHistory(st, format)
		return err
	})
	return data, ct, err
}

// Download returns the last translation as the traduction.txt export.
func (d *Dispatcher) Download(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	_, err := d.run(ctx, "download", id, func(_ context.Context, st *session.State, _ *message.Result) error {
		var err error
		data, err = translation.ExportText(st)
		return err
	})
	return data, err
}

// Speak renders the current text (in its detected language) or the last
// translation (in its target language) as audio. Rendering failures come
// back as notices and never fail the action.
func (d *Dispatcher) Speak(ctx context.Context, req message.SpeakRequest) (*message.Result, error) {
	return d.run(ctx, "speak", req.SessionID, func(ctx context.Context, st *session.State, res *message.Result) error {
		var (
			kind   audio.Kind
			text   string
			speech string
		)
		switch req.Source {
		case message.SpeakInput, "":
			if strings.TrimSpace(st.CurrentText) == "" {
				res.Notify(message.Warning(message.TextNothingToSpeak))
				return nil
			}
			lang := d.identifier.Identify(ctx, st.CurrentText)
			kind, text, speech = audio.KindInput, st.CurrentText, lang.Speech
		case message.SpeakTranslation:
			if st.LastResult == nil {
				res.Notify(message.Warning(message.TextNoTranslation))
				return nil
			}
			kind, text, speech = audio.KindTranslation, st.LastResult.Text, st.LastResult.Target.Speech
		default:
			return fmt.Errorf("%w: %q", ErrInvalidSource, req.Source)
		}

		art, err := d.audio.Render(ctx, st.Dir, kind, text, speech)
		if err != nil {
			slog.Warn("audio rendering failed", "session_id", st.ID, "kind", kind, "error", err)
			res.Notify(message.Error(message.TextSpeakFail))
			return nil
		}
		res.Audio = &message.Audio{
			Kind:        string(art.Kind),
			File:        art.File(),
			ContentType: art.ContentType,
			Data:        art.Data,
		}
		return nil
	})
}
