/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the
coaching handlers, health reporter and middleware onto the router.
*/
package server

import (
	"fmt"
	"net/http"
	"time"

	"Ascend/internal/coach"
	"Ascend/internal/config"
	"Ascend/internal/monitor"
)

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// cfg is the process configuration, built once in main.
	cfg *config.Config

	// health reports process and host status for /health.
	health monitor.Service

	// coach serves the /api endpoints.
	coach *coach.Handler
}

// New assembles the application from its configuration and health reporter.
func New(cfg *config.Config, health monitor.Service) *Server {
	return &Server{
		cfg:    cfg,
		health: health,
		coach:  coach.NewHandler(cfg),
	}
}

// NewServer initializes the application and returns a configured
// *http.Server. There is no write timeout: chat streams stay open for as
// long as the provider keeps sending.
func NewServer(cfg *config.Config, version string) (*http.Server, error) {
	app := New(cfg, monitor.NewService(monitor.HostProbes(), version))

	handler, err := app.RegisterRoutes()
	if err != nil {
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
	}, nil
}
