// Package input routes user input from one of the four acquisition modes
// into the session's current text.
package input

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nadzzz/polyglot/internal/message"
	"github.com/nadzzz/polyglot/internal/observe"
	"github.com/nadzzz/polyglot/internal/provider/ocr"
	"github.com/nadzzz/polyglot/internal/provider/stt"
	"github.com/nadzzz/polyglot/internal/session"
)

var (
	// ErrModeInactive is returned when input arrives through a mode other
	// than the session's active one.
	ErrModeInactive = errors.New("input mode is not active")

	// ErrUnsupportedImage is returned for uploads that are not PNG or JPEG.
	ErrUnsupportedImage = errors.New("unsupported image type")

	// ErrInvalidEncoding is returned for text files that are not UTF-8.
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")

	// ErrOCR wraps OCR collaborator failures.
	ErrOCR = errors.New("text extraction failed")
)

// Input is one acquisition attempt.
type Input struct {
	Mode        session.Mode
	Text        string
	Data        []byte
	ContentType string
}

// Typed is keyboard input; the value replaces the current text verbatim.
func Typed(text string) Input { return Input{Mode: session.ModeTyped, Text: text} }

// Image is an uploaded picture to run through OCR.
func Image(data []byte, contentType string) Input {
	return Input{Mode: session.ModeImage, Data: data, ContentType: contentType}
}

// Voice is a recorded clip to run through speech recognition.
func Voice(data []byte, contentType string) Input {
	return Input{Mode: session.ModeVoice, Data: data, ContentType: contentType}
}

// File is an uploaded .txt file.
func File(data []byte) Input { return Input{Mode: session.ModeFile, Data: data} }

// Acquirer applies inputs to session state.
type Acquirer struct {
	ocr        ocr.Engine
	recognizer stt.Recognizer
	hint       string
	metrics    *observe.Metrics
}

// New creates an Acquirer. hint is the spoken-language tag passed to speech
// recognition (e.g., "fr-FR").
func New(engine ocr.Engine, recognizer stt.Recognizer, hint string, m *observe.Metrics) *Acquirer {
	return &Acquirer{ocr: engine, recognizer: recognizer, hint: hint, metrics: m}
}

// Apply runs in against st. Voice failures do not return an error: they
// leave the current text alone and come back as an error notice.
func (a *Acquirer) Apply(ctx context.Context, st *session.State, in Input) ([]message.Notice, error) {
	if in.Mode != st.Mode {
		return nil, fmt.Errorf("%w: active mode is %s, got %s", ErrModeInactive, st.Mode, in.Mode)
	}
	logger := slog.With("session_id", st.ID, "mode", in.Mode)

	switch in.Mode {
	case session.ModeTyped:
		st.CurrentText = in.Text
		return nil, nil

	case session.ModeImage:
		text, err := a.extract(ctx, in)
		if err != nil {
			return nil, err
		}
		st.CurrentText = text
		logger.Debug("image text extracted", "text_length", len(text))
		return nil, nil

	case session.ModeVoice:
		text, err := a.recognize(ctx, in)
		if err != nil {
			logger.Warn("speech recognition failed", "error", err)
			return []message.Notice{message.Error(message.TextRecognitionFail)}, nil
		}
		st.CurrentText = text
		return []message.Notice{message.Success(message.TextRecognized)}, nil

	case session.ModeFile:
		if !utf8.Valid(in.Data) {
			return nil, ErrInvalidEncoding
		}
		st.CurrentText = string(in.Data)
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: %q", session.ErrInvalidMode, in.Mode)
	}
}

// extract validates the image type and runs OCR.
func (a *Acquirer) extract(ctx context.Context, in Input) (string, error) {
	ct, err := imageType(in.Data)
	if err != nil {
		return "", err
	}
	start := time.Now()
	text, err := a.ocr.Extract(ctx, in.Data, ct)
	if err := a.metrics.ObserveStage(ctx, observe.StageOCR, a.ocr.Name(), start, err); err != nil {
		return "", fmt.Errorf("%w: %w", ErrOCR, err)
	}
	return text, nil
}

func (a *Acquirer) recognize(ctx context.Context, in Input) (string, error) {
	if len(in.Data) == 0 {
		return "", stt.ErrEmptyAudio
	}
	start := time.Now()
	text, err := a.recognizer.Recognize(ctx, in.Data, in.ContentType, stt.Options{Language: a.hint})
	if err := a.metrics.ObserveStage(ctx, observe.StageSTT, a.recognizer.Name(), start, err); err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no speech recognized")
	}
	return text, nil
}

// imageType sniffs the upload; only PNG and JPEG are accepted.
func imageType(data []byte) (string, error) {
	ct := http.DetectContentType(data)
	switch ct {
	case "image/png", "image/jpeg":
		return ct, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, ct)
}
