// Polyglot is a session-scoped chat and translation service: typed, image,
// voice and file input, language detection, translation with history and
// speech rendering, served over HTTP/WebSocket and gRPC.
//
// Usage:
//
//	polyglot [flags]
//	polyglot --config /path/to/polyglot.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nadzzz/polyglot/internal/config"
	_ "github.com/nadzzz/polyglot/internal/docs"
	"github.com/nadzzz/polyglot/internal/health"
	"github.com/nadzzz/polyglot/internal/observe"
	"github.com/nadzzz/polyglot/internal/session"
	"github.com/nadzzz/polyglot/internal/transport"
	grpctransport "github.com/nadzzz/polyglot/internal/transport/grpc"
	httptransport "github.com/nadzzz/polyglot/internal/transport/http"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/polyglot.local.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("polyglot %s\n", version)
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("polyglot starting", "version", version)

	if err := run(cfg); err != nil {
		slog.Error("polyglot failed", "error", err)
		os.Exit(1)
	}
	slog.Info("polyglot stopped")
}

func run(cfg *config.Config) error {
	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownOTel, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		if err := shutdownOTel(sctx); err != nil {
			slog.Warn("telemetry shutdown", "error", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	store := session.NewStore(cfg.Server.ArtifactsDir,
		session.WithTTL(cfg.Server.SessionTTL),
		session.WithMetrics(metrics),
	)

	app, err := build(ctx, cfg, store, metrics)
	if err != nil {
		return err
	}
	defer app.close()

	if cfg.Server.WarmModels {
		slog.Info("warming model handles")
		if err := app.loader.Warm(ctx); err != nil {
			// Cached in the loader; features depending on the failed
			// resource keep returning the error.
			slog.Error("model warm-up failed", "error", err)
		}
	}

	healthServer := health.New(cfg.Server.HealthPort, app.checkers...)

	// Initialize enabled transports.
	var transports []transport.Transport
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port))
	}
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP.Port,
			httptransport.WithMaxBodyBytes(cfg.Transports.HTTP.MaxBodyBytes),
			httptransport.WithMetrics(metrics),
			httptransport.WithHealth(healthServer),
		))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return healthServer.ListenAndServe(gctx) })
	g.Go(func() error { return store.Run(gctx, cfg.Server.ReapInterval) })
	for _, t := range transports {
		g.Go(func() error {
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(gctx, app.dispatcher); err != nil {
				return fmt.Errorf("%s transport: %w", t.Name(), err)
			}
			return nil
		})
	}

	// Mark as ready once all transports are started.
	healthServer.SetReady(true)
	slog.Info("polyglot ready",
		"transports", len(transports),
		"health_port", cfg.Server.HealthPort,
		"generation", cfg.Generation.Backend,
		"translation", cfg.Translation.Backend)

	<-gctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)

	// Close all transports gracefully.
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
