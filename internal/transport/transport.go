// Package transport defines the contract between the network transports
// and the session dispatcher.
//
// Each transport (HTTP/WebSocket, gRPC) decodes requests, calls the Service
// and encodes the Result. Transports never touch session state directly.
package transport

import (
	"context"

	"github.com/nadzzz/polyglot/internal/message"
)

// Service is the set of session actions a transport can invoke. It is
// implemented by *dispatch.Dispatcher.
type Service interface {
	CreateSession(ctx context.Context) (*message.Result, error)
	Session(ctx context.Context, id string) (*message.Result, error)
	DeleteSession(ctx context.Context, id string) error
	SetMode(ctx context.Context, req message.ModeRequest) (*message.Result, error)
	Acquire(ctx context.Context, req message.InputRequest) (*message.Result, error)
	Detect(ctx context.Context, id string) (*message.Result, error)
	Chat(ctx context.Context, req message.ChatRequest) (*message.Result, error)
	ClearChat(ctx context.Context, id string) (*message.Result, error)
	Translate(ctx context.Context, req message.TranslateRequest) (*message.Result, error)
	History(ctx context.Context, id string) (*message.Result, error)
	ExportHistory(ctx context.Context, id, format string) ([]byte, string, error)
	Download(ctx context.Context, id string) ([]byte, error)
	Speak(ctx context.Context, req message.SpeakRequest) (*message.Result, error)
}

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "grpc", "http").
	Name() string

	// Listen starts accepting requests and serves them from svc.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, svc Service) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
