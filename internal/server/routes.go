package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"Ascend/internal/utility"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

// maxRequestIDLen caps caller-supplied ids before they reach every log line.
const maxRequestIDLen = 128

func (s *Server) RegisterRoutes() (http.Handler, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(RequestContext(s.cfg.RequestIDHeader))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := utility.GetLogger(c).Info()
			if v.Error != nil {
				event = utility.GetLogger(c).Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  s.cfg.AllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", s.cfg.RequestIDHeader},
		ExposeHeaders: []string{s.cfg.RequestIDHeader},
		MaxAge:        300,
	}))

	e.GET("/health", s.healthHandler)

	generalLimit, err := rateLimiter(s.cfg.RateLimitRequests, s.cfg.RateLimitWindow, s.cfg.RateLimitClients)
	if err != nil {
		return nil, err
	}
	chatLimit, err := rateLimiter(s.cfg.ChatRateLimitRequests, s.cfg.ChatRateLimitWindow, s.cfg.RateLimitClients)
	if err != nil {
		return nil, err
	}

	api := e.Group("/api", generalLimit)

	// Chat routes cost provider tokens and get a stricter budget on top.
	chat := api.Group("/chat", chatLimit)
	chat.POST("", s.coach.Chat)
	chat.GET("/ws", s.coach.ChatWS)

	api.POST("/persona", s.coach.Persona)
	api.POST("/program", s.coach.Program)
	api.POST("/nutrition", s.coach.Nutrition)
	api.GET("/daily-prompt/:day", s.coach.DailyPrompt)
	api.GET("/milestone/:day", s.coach.Milestone)

	return e, nil
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.health.Health(c.Request().Context()))
}

// rateLimiter builds a per-client limiter keyed on the caller's real IP.
func rateLimiter(requests int, window time.Duration, clients int) (echo.MiddlewareFunc, error) {
	store, err := utility.NewRateLimiterStore(requests, window, clients)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter store: %w", err)
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return utility.GetRealIP(c), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Unable to identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			utility.GetLogger(c).Warn().Str("client", identifier).Msg("Rate limit exceeded")
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests, please try again later"})
		},
	}), nil
}

// RequestContext stamps every request with an id, taken from header when the
// caller sent a usable one, and stores a child logger carrying it in the echo
// context for utility.GetLogger.
func RequestContext(header string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := strings.TrimSpace(c.Request().Header.Get(header))
			if requestID == "" || len(requestID) > maxRequestIDLen {
				requestID = uuid.New().String()
			}
			c.Set("request_id", requestID)
			c.Response().Header().Set(header, requestID)

			logger := log.With().
				Str("request_id", requestID).
				Str("route", c.Path()).
				Str("client_ip", utility.GetRealIP(c)).
				Logger()
			c.Set("logger", &logger)

			return next(c)
		}
	}
}
