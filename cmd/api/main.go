package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Ascend/internal/config"
	"Ascend/internal/server"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// serve runs apiServer until it fails or ctx is cancelled, then drains
// in-flight requests for at most timeout.
func serve(ctx context.Context, apiServer *http.Server, timeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- apiServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", timeout).Msg("Shutting down, press Ctrl+C again to force")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		// Streams still open past the deadline are cut.
		_ = apiServer.Close()
		return fmt.Errorf("forced shutdown: %w", err)
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	setupLogger(cfg)

	if !cfg.HasUpstreamKey() {
		log.Warn().Msg("OPENAI_API_KEY is not set, chat endpoints will answer 500")
	}

	apiServer, err := server.NewServer(cfg, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	// A second signal after the first kills the process immediately.
	context.AfterFunc(ctx, stop)

	log.Info().
		Str("addr", apiServer.Addr).
		Str("env", cfg.Environment).
		Str("model", cfg.UpstreamModel).
		Str("version", version).
		Msg("Ascend API listening")

	if err := serve(ctx, apiServer, cfg.ShutdownTimeout); err != nil {
		log.Fatal().Err(err).Msg("http server error")
	}
	log.Info().Msg("Graceful shutdown complete.")
}
