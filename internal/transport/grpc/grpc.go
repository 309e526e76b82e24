// Package grpc implements the gRPC transport for polyglot.
//
// The Polyglot service (polyglot.v1.Polyglot) uses a JSON codec over the
// message package types: clients call it with
// grpc.CallContentSubtype("json"). The standard gRPC health service is
// registered alongside.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/nadzzz/polyglot/internal/message"
	"github.com/nadzzz/polyglot/internal/transport"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "polyglot.v1.Polyglot"

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port   int
	server *grpc.Server
	health *health.Server
}

// New creates a new gRPC transport on the given port.
func New(port int) *Transport {
	return &Transport{port: port}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server and serves requests from svc.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	slog.Info("grpc transport listening", "port", t.port)
	return t.Serve(ctx, lis, svc)
}

// Serve serves svc on lis until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener, svc transport.Service) error {
	t.server = grpc.NewServer(grpc.ChainUnaryInterceptor(logUnary))
	t.server.RegisterService(&serviceDesc, svc)

	t.health = health.NewServer()
	healthpb.RegisterHealthServer(t.server, t.health)
	t.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		t.health.Shutdown()
		t.server.GracefulStop()
	}()

	return t.server.Serve(lis)
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	if t.health != nil {
		t.health.Shutdown()
	}
	if t.server != nil {
		t.server.GracefulStop()
	}
	return nil
}

// logUnary logs each call with its outcome.
func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)
	level := slog.LevelInfo
	if code != codes.OK {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "grpc call completed",
		"method", info.FullMethod,
		"code", code.String(),
		"duration", time.Since(start),
	)
	return resp, err
}

// toStatus maps action errors to gRPC status errors.
func toStatus(err error) error {
	var code codes.Code
	switch transport.Classify(err) {
	case transport.ClassNotFound:
		code = codes.NotFound
	case transport.ClassInvalid, transport.ClassUnprocessable:
		code = codes.InvalidArgument
	case transport.ClassConflict:
		code = codes.FailedPrecondition
	case transport.ClassUnavailable:
		code = codes.Unavailable
	case transport.ClassTimeout:
		code = codes.DeadlineExceeded
	case transport.ClassCanceled:
		code = codes.Canceled
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}

// unary builds a method whose request type is Req and whose response is a
// message.Result.
func unary[Req any](name string, call func(ctx context.Context, svc transport.Service, req *Req) (*message.Result, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "decoding request: %v", err)
			}
			svc := srv.(transport.Service)
			handler := func(ctx context.Context, req any) (any, error) {
				res, err := call(ctx, svc, req.(*Req))
				if err != nil {
					return nil, toStatus(err)
				}
				return res, nil
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*transport.Service)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateSession", func(ctx context.Context, svc transport.Service, _ *message.SessionRequest) (*message.Result, error) {
			return svc.CreateSession(ctx)
		}),
		unary("GetSession", func(ctx context.Context, svc transport.Service, req *message.SessionRequest) (*message.Result, error) {
			return svc.Session(ctx, req.SessionID)
		}),
		unary("DeleteSession", func(ctx context.Context, svc transport.Service, req *message.SessionRequest) (*message.Result, error) {
			if err := svc.DeleteSession(ctx, req.SessionID); err != nil {
				return nil, err
			}
			return &message.Result{SessionID: req.SessionID}, nil
		}),
		unary("SetMode", func(ctx context.Context, svc transport.Service, req *message.ModeRequest) (*message.Result, error) {
			return svc.SetMode(ctx, *req)
		}),
		unary("Acquire", func(ctx context.Context, svc transport.Service, req *message.InputRequest) (*message.Result, error) {
			return svc.Acquire(ctx, *req)
		}),
		unary("Detect", func(ctx context.Context, svc transport.Service, req *message.SessionRequest) (*message.Result, error) {
			return svc.Detect(ctx, req.SessionID)
		}),
		unary("Chat", func(ctx context.Context, svc transport.Service, req *message.ChatRequest) (*message.Result, error) {
			return svc.Chat(ctx, *req)
		}),
		unary("ClearChat", func(ctx context.Context, svc transport.Service, req *message.SessionRequest) (*message.Result, error) {
			return svc.ClearChat(ctx, req.SessionID)
		}),
		unary("Translate", func(ctx context.Context, svc transport.Service, req *message.TranslateRequest) (*message.Result, error) {
			return svc.Translate(ctx, *req)
		}),
		unary("History", func(ctx context.Context, svc transport.Service, req *message.SessionRequest) (*message.Result, error) {
			return svc.History(ctx, req.SessionID)
		}),
		unary("Speak", func(ctx context.Context, svc transport.Service, req *message.SpeakRequest) (*message.Result, error) {
			return svc.Speak(ctx, *req)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "polyglot/v1/polyglot.json",
}
