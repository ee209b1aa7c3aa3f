package coachai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"Ascend/internal/config"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// --- Chat request defaults ---
const (
	DefaultTemperature = 0.8
	DefaultMaxTokens   = 300

	readBufferSize     = 32 * 1024
	maxErrorBodyBytes  = 64 * 1024
	chunkQueueCapacity = 64
	fallbackErrMessage = "Upstream provider error"
)

// ErrMissingAPIKey is returned before any network call when no upstream key
// is configured.
var ErrMissingAPIKey = errors.New("upstream API key is not configured")

// UpstreamError carries a failed upstream call as a status and a message that
// is safe to show to the caller.
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream status %d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ChunkSink receives relayed bytes in upstream order.
type ChunkSink interface {
	WriteChunk(p []byte) error
}

// ChatRequest is a validated, truncated chat call.
type ChatRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
	Stream      bool
}

// NewChatRequest truncates the history and applies the defaults for any
// option the caller left out.
func NewChatRequest(messages []Message, temperature *float64, maxTokens *int, stream *bool) ChatRequest {
	req := ChatRequest{
		Messages:    Truncate(messages),
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Stream:      true,
	}
	if temperature != nil {
		req.Temperature = *temperature
	}
	if maxTokens != nil && *maxTokens > 0 {
		req.MaxTokens = *maxTokens
	}
	if stream != nil {
		req.Stream = *stream
	}
	return req
}

// upstreamPayload is the OpenAI-compatible chat-completion body.
type upstreamPayload struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

// Relay forwards chat requests to the upstream provider. It holds no
// per-request state and is safe for concurrent use.
type Relay struct {
	apiKey     string
	url        string
	model      string
	httpClient *http.Client
}

// NewRelay creates a relay from the process configuration. The client has no
// overall timeout: streams last as long as the provider keeps sending, and
// cancellation comes from the request context.
func NewRelay(cfg *config.Config) *Relay {
	return &Relay{
		apiKey:     strings.TrimSpace(cfg.UpstreamAPIKey),
		url:        cfg.UpstreamURL,
		model:      cfg.UpstreamModel,
		httpClient: &http.Client{},
	}
}

// Upstream is an accepted (2xx) provider response waiting to be relayed.
type Upstream struct {
	resp          *http.Response
	started       time.Time
	promptTokens  int
	fallbackModel string
}

// Close releases the upstream connection.
func (u *Upstream) Close() error {
	return u.resp.Body.Close()
}

// Open sends the request upstream. Any non-2xx answer or transport failure is
// returned as *UpstreamError; the stream branch is never entered for those.
func (r *Relay) Open(ctx context.Context, log *zerolog.Logger, req ChatRequest) (*Upstream, error) {
	if r.apiKey == "" {
		log.Error().Msg("FATAL: upstream API key is not set, refusing chat request")
		return nil, ErrMissingAPIKey
	}

	payload := upstreamPayload{
		Model:       r.model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      req.Stream,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	if req.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	log.Info().
		Int("messages", len(req.Messages)).
		Bool("stream", req.Stream).
		Int("max_tokens", req.MaxTokens).
		Msg("Calling upstream chat completion")

	started := time.Now()
	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		log.Warn().Err(err).Msg("Upstream request failed")
		return nil, &UpstreamError{
			Status:  http.StatusBadGateway,
			Message: "Failed to reach the AI provider",
			Err:     err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		upErr := &UpstreamError{Status: resp.StatusCode, Message: extractErrorMessage(body)}
		log.Warn().Int("status", resp.StatusCode).Str("upstream_message", upErr.Message).Msg("Upstream returned non-2xx status")
		return nil, upErr
	}

	return &Upstream{
		resp:          resp,
		started:       started,
		promptTokens:  EstimatePromptTokens(req.Messages),
		fallbackModel: r.model,
	}, nil
}

// Complete reads a non-streamed completion and returns the body verbatim.
func (r *Relay) Complete(log *zerolog.Logger, up *Upstream) (json.RawMessage, error) {
	defer up.Close()

	body, err := io.ReadAll(up.resp.Body)
	if err != nil {
		return nil, &UpstreamError{Status: http.StatusBadGateway, Message: "Failed to read the AI provider response", Err: err}
	}
	if !json.Valid(body) {
		return nil, &UpstreamError{Status: http.StatusBadGateway, Message: "The AI provider returned an invalid response"}
	}

	usage := parseUsage(body, up.fallbackModel)
	log.Info().
		Str("model", usage.Model).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Int("total_tokens", usage.TotalTokens).
		Dur("latency", time.Since(up.started)).
		Msg("Chat completion relayed")

	return body, nil
}

var errClientGone = errors.New("client stopped accepting data")

// Pipe relays the upstream stream to sink chunk by chunk, in order and
// without buffering. A telemetry goroutine parses a copy of each chunk.
// Pipe never fails: read errors and client disconnects end the stream and
// are reported through StreamStats and the log.
func (r *Relay) Pipe(ctx context.Context, log *zerolog.Logger, up *Upstream, sink ChunkSink) StreamStats {
	defer up.Close()

	var (
		stats     StreamStats
		telemetry streamTelemetry
	)

	g, gctx := errgroup.WithContext(ctx)
	chunks := make(chan []byte, chunkQueueCapacity)

	g.Go(func() error {
		defer close(chunks)
		buf := make([]byte, readBufferSize)
		for {
			n, readErr := up.resp.Body.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])

				if err := sink.WriteChunk(chunk); err != nil {
					return fmt.Errorf("%w: %v", errClientGone, err)
				}
				stats.Chunks++
				stats.Bytes += n

				select {
				case chunks <- chunk:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			if readErr == io.EOF {
				return nil
			}
			if readErr != nil {
				return readErr
			}
		}
	})

	g.Go(func() error {
		for chunk := range chunks {
			telemetry.Feed(chunk)
		}
		telemetry.Flush()
		return nil
	})

	err := g.Wait()

	switch {
	case err == nil:
	case errors.Is(err, errClientGone), ctx.Err() != nil:
		stats.ClientGone = true
		log.Info().Err(err).Msg("Client disconnected mid-stream, upstream released")
	default:
		stats.Interrupted = true
		log.Warn().Err(err).Msg("Upstream stream interrupted, closing response")
	}

	stats.Completed = telemetry.done
	stats.ContentRunes = telemetry.runes
	stats.SkippedLines = telemetry.skipped
	stats.Usage = telemetry.usage(up.promptTokens, up.fallbackModel)

	log.Info().
		Str("model", stats.Usage.Model).
		Int("prompt_tokens", stats.Usage.PromptTokens).
		Int("completion_tokens", stats.Usage.CompletionTokens).
		Bool("estimated", stats.Usage.Estimated).
		Int("chunks", stats.Chunks).
		Int("bytes", stats.Bytes).
		Int("skipped_lines", stats.SkippedLines).
		Bool("completed", stats.Completed).
		Dur("latency", time.Since(up.started)).
		Msg("Chat stream relayed")

	return stats
}

// extractErrorMessage pulls a human message out of a provider error body.
func extractErrorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return fallbackErrMessage
	}
	for _, path := range []string{"error.message", "message", "error"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			return v.String()
		}
	}
	return fallbackErrMessage
}
