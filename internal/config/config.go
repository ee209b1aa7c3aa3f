/*
Package config builds the process-wide configuration once at startup.
The resulting *Config is passed explicitly to the relay, the handlers and the
router; nothing in the application reads the environment after Load returns.
*/
package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort          = 8080
	defaultUpstreamURL   = "https://api.openai.com/v1/chat/completions"
	defaultUpstreamModel = "gpt-4o-mini"
	defaultOrigin        = "http://localhost:3000"
	defaultRequestIDHdr  = "X-Request-ID"
)

// Config holds the configuration for the application.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port int

	// Environment is "development" or "production". Development switches
	// logging to the human-readable console writer.
	Environment string

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string

	// Upstream chat-completion provider. APIKey may be empty at boot; chat
	// requests then fail with a server configuration error.
	UpstreamAPIKey string
	UpstreamURL    string
	UpstreamModel  string

	// AllowedOrigins feeds both the CORS middleware and the websocket origin check.
	AllowedOrigins []string

	// General rate limit applied to every /api route.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Stricter limit applied to the chat routes on top of the general one.
	ChatRateLimitRequests int
	ChatRateLimitWindow   time.Duration

	// RateLimitClients bounds how many client buckets are tracked at once.
	RateLimitClients int

	// RequestIDHeader carries the request id in and out.
	RequestIDHeader string

	// ShutdownTimeout is how long in-flight requests (chat streams included)
	// get to finish after SIGINT/SIGTERM.
	ShutdownTimeout time.Duration
}

// Load reads .env (when present) and the process environment into a Config.
func Load() (*Config, error) {
	// A missing .env file is normal in containers.
	_ = godotenv.Load()

	cfg := &Config{
		Environment:    getEnv("APP_ENV", "production"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		UpstreamAPIKey: os.Getenv("OPENAI_API_KEY"),
		UpstreamURL:    getEnv("OPENAI_API_URL", defaultUpstreamURL),
		UpstreamModel:  getEnv("OPENAI_MODEL", defaultUpstreamModel),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", defaultOrigin)),

		RequestIDHeader: http.CanonicalHeaderKey(getEnv("REQUEST_ID_HEADER", defaultRequestIDHdr)),
	}

	var err error
	if cfg.Port, err = getInt("PORT", defaultPort); err != nil {
		return nil, err
	}
	if cfg.RateLimitRequests, err = getInt("RATE_LIMIT_REQUESTS", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ChatRateLimitRequests, err = getInt("CHAT_RATE_LIMIT_REQUESTS", 20); err != nil {
		return nil, err
	}
	if cfg.ChatRateLimitWindow, err = getDuration("CHAT_RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitClients, err = getInt("RATE_LIMIT_CLIENTS", 10000); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	if len(cfg.AllowedOrigins) == 0 {
		return nil, fmt.Errorf("ALLOWED_ORIGINS must list at least one origin")
	}

	return cfg, nil
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// HasUpstreamKey reports whether chat requests can be forwarded at all.
func (c *Config) HasUpstreamKey() bool {
	return strings.TrimSpace(c.UpstreamAPIKey) != ""
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return value, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return value, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
