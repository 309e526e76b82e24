package transport

import (
	"context"
	"errors"

	"github.com/nadzzz/polyglot/internal/dispatch"
	"github.com/nadzzz/polyglot/internal/input"
	"github.com/nadzzz/polyglot/internal/language"
	"github.com/nadzzz/polyglot/internal/resources"
	"github.com/nadzzz/polyglot/internal/session"
	"github.com/nadzzz/polyglot/internal/translation"
)

// Class groups action errors by who is at fault, so each transport can map
// them to its own status codes.
type Class int

const (
	// ClassUpstream is a collaborator (model, OCR, backend) failure.
	ClassUpstream Class = iota
	ClassNotFound
	ClassInvalid
	ClassUnprocessable
	ClassConflict
	ClassUnavailable
	ClassTimeout
	ClassCanceled
)

// Classify maps err onto a Class using the package sentinels.
func Classify(err error) Class {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return ClassNotFound
	case errors.Is(err, session.ErrInvalidMode),
		errors.Is(err, language.ErrUnknownLanguage),
		errors.Is(err, input.ErrUnsupportedImage),
		errors.Is(err, translation.ErrUnsupportedFormat),
		errors.Is(err, dispatch.ErrInvalidSource):
		return ClassInvalid
	case errors.Is(err, input.ErrInvalidEncoding):
		return ClassUnprocessable
	case errors.Is(err, input.ErrModeInactive),
		errors.Is(err, translation.ErrNoResult):
		return ClassConflict
	case errors.Is(err, resources.ErrUnavailable):
		return ClassUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return ClassTimeout
	case errors.Is(err, context.Canceled):
		return ClassCanceled
	default:
		return ClassUpstream
	}
}
