/*
Package coach holds the HTTP handlers of the coaching API. Handlers only
translate between JSON and the domain packages; every computation lives in
nutrition, program, persona, journey or coachai.
*/
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"Ascend/internal/coachai"
	"Ascend/internal/config"
	"Ascend/internal/journey"
	"Ascend/internal/nutrition"
	"Ascend/internal/persona"
	"Ascend/internal/program"
	"Ascend/internal/utility"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	msgInvalidRequest = "Invalid request format"
	msgNotConfigured  = "Server is not configured for AI chat"
	msgChatFailed     = "Failed to process chat request"
	msgMissingOnboard = "Onboarding data is required"
	msgNoMilestone    = "No milestone for this day"
	msgPersonaFailed  = "Failed to build coaching persona"
	maxWSRequestFrame = 1 << 20
)

// Handler serves the coaching endpoints.
type Handler struct {
	relay    *coachai.Relay
	upgrader *websocket.Upgrader
}

// NewHandler wires the handlers to the upstream relay described by cfg.
func NewHandler(cfg *config.Config) *Handler {
	return &Handler{
		relay:    coachai.NewRelay(cfg),
		upgrader: utility.NewUpgrader(cfg.AllowedOrigins),
	}
}

type chatRequest struct {
	Messages    json.RawMessage `json:"messages"`
	Temperature *float64        `json:"temperature"`
	MaxTokens   *int            `json:"maxTokens"`
	Stream      *bool           `json:"stream"`
}

// Chat relays a conversation to the AI provider. Streamed answers are
// written through as an event stream; otherwise the provider's JSON body is
// returned verbatim.
func (h *Handler) Chat(c echo.Context) error {
	logger := utility.GetLogger(c)

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn().Err(err).Msg("Failed to bind chat request")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msgInvalidRequest})
	}

	messages, err := coachai.ParseMessages(req.Messages)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": coachai.ErrInvalidMessages.Error()})
	}

	chatReq := coachai.NewChatRequest(messages, req.Temperature, req.MaxTokens, req.Stream)
	ctx := c.Request().Context()

	up, err := h.relay.Open(ctx, logger, chatReq)
	if err != nil {
		status, message := chatFailure(err)
		return c.JSON(status, map[string]string{"error": message})
	}

	if !chatReq.Stream {
		body, err := h.relay.Complete(logger, up)
		if err != nil {
			status, message := chatFailure(err)
			return c.JSON(status, map[string]string{"error": message})
		}
		return c.JSONBlob(http.StatusOK, body)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	h.relay.Pipe(ctx, logger, up, sseSink{res: res})
	return nil
}

// ChatWS is the websocket variant of Chat. The first text frame carries the
// chat request; every upstream chunk is sent back as one text frame and the
// socket is closed when the stream ends. Failures before the stream starts
// are reported as a single {"error", "status"} frame.
func (h *Handler) ChatWS(c echo.Context) error {
	logger := utility.GetLogger(c)

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already answered with an HTTP error.
		logger.Warn().Err(err).Msg("Websocket upgrade failed")
		return nil
	}
	sink := utility.NewWSSink(conn)
	defer sink.Close()

	conn.SetReadLimit(maxWSRequestFrame)

	var req chatRequest
	if err := conn.ReadJSON(&req); err != nil {
		logger.Warn().Err(err).Msg("Failed to read websocket chat request")
		_ = sink.WriteJSON(wsError(http.StatusBadRequest, msgInvalidRequest))
		return nil
	}

	messages, err := coachai.ParseMessages(req.Messages)
	if err != nil {
		_ = sink.WriteJSON(wsError(http.StatusBadRequest, coachai.ErrInvalidMessages.Error()))
		return nil
	}

	// A websocket always streams.
	stream := true
	chatReq := coachai.NewChatRequest(messages, req.Temperature, req.MaxTokens, &stream)

	// A hijacked connection never cancels the request context, so watch the
	// socket for the client going away.
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	up, err := h.relay.Open(ctx, logger, chatReq)
	if err != nil {
		status, message := chatFailure(err)
		_ = sink.WriteJSON(wsError(status, message))
		return nil
	}

	h.relay.Pipe(ctx, logger, up, sink)
	return nil
}

func wsError(status int, message string) map[string]any {
	return map[string]any{"error": message, "status": status}
}

// chatFailure maps a relay error to the status and message shown to the
// caller. The configured key is never part of the message.
func chatFailure(err error) (int, string) {
	var upErr *coachai.UpstreamError
	switch {
	case errors.Is(err, coachai.ErrMissingAPIKey):
		return http.StatusInternalServerError, msgNotConfigured
	case errors.As(err, &upErr):
		return upErr.Status, upErr.Message
	default:
		return http.StatusInternalServerError, msgChatFailed
	}
}

// sseSink flushes every relayed chunk straight to the client.
type sseSink struct {
	res *echo.Response
}

func (s sseSink) WriteChunk(p []byte) error {
	if _, err := s.res.Write(p); err != nil {
		return err
	}
	return http.NewResponseController(s.res.Writer).Flush()
}

type personaRequest struct {
	OnboardingData *persona.OnboardingProfile `json:"onboardingData"`
	ProgressData   *persona.ProgressSnapshot  `json:"progressData"`
	JournalEntries []persona.JournalEntry     `json:"journalEntries"`
}

// Persona builds the coach system prompt for the caller's current state.
func (h *Handler) Persona(c echo.Context) error {
	logger := utility.GetLogger(c)

	var req personaRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn().Err(err).Msg("Failed to bind persona request")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msgInvalidRequest})
	}

	result, err := persona.Synthesize(persona.Input{
		Onboarding: req.OnboardingData,
		Progress:   req.ProgressData,
		Journal:    req.JournalEntries,
	})
	if errors.Is(err, persona.ErrMissingOnboarding) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msgMissingOnboard})
	}
	if err != nil {
		logger.Error().Err(err).Msg("Persona synthesis failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": msgPersonaFailed})
	}

	logger.Info().Str("style", result.StyleLabel).Int("prompt_chars", len(result.SystemPrompt)).Msg("Persona synthesized")
	return c.JSON(http.StatusOK, result)
}

type programRequest struct {
	Onboarding *program.Input `json:"onboarding"`
}

// Program generates the 30-day workout program.
func (h *Handler) Program(c echo.Context) error {
	logger := utility.GetLogger(c)

	var req programRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn().Err(err).Msg("Failed to bind program request")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msgInvalidRequest})
	}

	workouts, err := program.Generate(req.Onboarding)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msgMissingOnboard})
	}

	return c.JSON(http.StatusOK, map[string]any{"workouts": workouts})
}

type nutritionRequest struct {
	Onboarding *nutrition.Input `json:"onboarding"`
}

// Nutrition derives daily calorie and macro targets.
func (h *Handler) Nutrition(c echo.Context) error {
	logger := utility.GetLogger(c)

	var req nutritionRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn().Err(err).Msg("Failed to bind nutrition request")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msgInvalidRequest})
	}

	targets, err := nutrition.Calculate(req.Onboarding)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msgMissingOnboard})
	}

	return c.JSON(http.StatusOK, targets)
}

// DailyPrompt returns the prompt for /api/daily-prompt/:day.
func (h *Handler) DailyPrompt(c echo.Context) error {
	day, err := journey.ParseDay(c.Param("day"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": journey.ErrInvalidDay.Error()})
	}

	prompt, err := journey.DailyPrompt(day)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{"day": day, "prompt": prompt})
}

// Milestone returns the milestone card for /api/milestone/:day.
func (h *Handler) Milestone(c echo.Context) error {
	day, err := journey.ParseDay(c.Param("day"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": journey.ErrInvalidDay.Error()})
	}

	milestone, err := journey.MilestoneFor(day)
	if errors.Is(err, journey.ErrNoMilestone) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": msgNoMilestone})
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, milestone)
}
