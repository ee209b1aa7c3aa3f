package coachai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"Ascend/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func testRelay(url, key string) *Relay {
	return NewRelay(&config.Config{
		UpstreamAPIKey: key,
		UpstreamURL:    url,
		UpstreamModel:  "test-model",
	})
}

// recordingSink collects relayed chunks in order.
type recordingSink struct {
	chunks [][]byte
	failAt int
}

func (s *recordingSink) WriteChunk(p []byte) error {
	if s.failAt > 0 && len(s.chunks)+1 >= s.failAt {
		return errors.New("broken pipe")
	}
	s.chunks = append(s.chunks, append([]byte(nil), p...))
	return nil
}

func (s *recordingSink) joined() string {
	return string(bytes.Join(s.chunks, nil))
}

func TestOpenWithoutKeyMakesNoNetworkCall(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	_, err := testRelay(srv.URL, "").Open(context.Background(), nopLogger(), NewChatRequest(conversation(1), nil, nil, nil))
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestOpenSendsPayload(t *testing.T) {
	var got upstreamPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","model":"test-model","choices":[],"usage":{"prompt_tokens":5,"completion_tokens":7,"total_tokens":12}}`)
	}))
	defer srv.Close()

	relay := testRelay(srv.URL, "sk-test")
	stream := false
	up, err := relay.Open(context.Background(), nopLogger(), NewChatRequest(conversation(14), nil, nil, &stream))
	require.NoError(t, err)

	body, err := relay.Complete(nopLogger(), up)
	require.NoError(t, err)

	assert.Equal(t, "test-model", got.Model)
	assert.Len(t, got.Messages, MaxHistory)
	assert.Equal(t, DefaultTemperature, got.Temperature)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	assert.False(t, got.Stream)
	assert.JSONEq(t, `{"id":"x","model":"test-model","choices":[],"usage":{"prompt_tokens":5,"completion_tokens":7,"total_tokens":12}}`, string(body))
}

func TestOpenRelaysUpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"OpenAIShape", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"requests"}}`, "Rate limit reached"},
		{"FlatMessage", http.StatusBadRequest, `{"message":"bad model"}`, "bad model"},
		{"StringError", http.StatusUnauthorized, `{"error":"invalid key"}`, "invalid key"},
		{"NotJSON", http.StatusBadGateway, `<html>oops</html>`, fallbackErrMessage},
		{"Empty", http.StatusInternalServerError, ``, fallbackErrMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := testRelay(srv.URL, "sk").Open(context.Background(), nopLogger(), NewChatRequest(conversation(1), nil, nil, nil))

			var upErr *UpstreamError
			require.ErrorAs(t, err, &upErr)
			assert.Equal(t, tt.status, upErr.Status)
			assert.Equal(t, tt.message, upErr.Message)
		})
	}
}

func TestOpenUnreachableUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := testRelay(url, "sk").Open(context.Background(), nopLogger(), NewChatRequest(conversation(1), nil, nil, nil))

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusBadGateway, upErr.Status)
}

const sampleStream = "data: {\"model\":\"test-model\",\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"Keep\"}}]}\n\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\" going\"}}]}\n\n" +
	"data: not-json\n\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"!\"}}]}\n\n" +
	"data: [DONE]\n\n"

func TestPipeForwardsBytesUnmodified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		// Split mid-line to exercise partial-line buffering.
		for _, part := range []string{sampleStream[:37], sampleStream[37:120], sampleStream[120:]} {
			_, _ = io.WriteString(w, part)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	relay := testRelay(srv.URL, "sk")
	up, err := relay.Open(context.Background(), nopLogger(), NewChatRequest(conversation(2), nil, nil, nil))
	require.NoError(t, err)

	sink := &recordingSink{}
	stats := relay.Pipe(context.Background(), nopLogger(), up, sink)

	assert.Equal(t, sampleStream, sink.joined())
	assert.Equal(t, len(sampleStream), stats.Bytes)
	assert.True(t, stats.Completed)
	assert.False(t, stats.Interrupted)
	assert.False(t, stats.ClientGone)
	assert.Equal(t, 1, stats.SkippedLines)
	assert.Equal(t, 3, stats.Usage.CompletionTokens)
	assert.True(t, stats.Usage.Estimated)
	assert.Equal(t, "test-model", stats.Usage.Model)
	assert.Equal(t, len("Keep going!"), stats.ContentRunes)
}

func TestPipeStopsWhenClientGoes(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := 0; i < 3; i++ {
			_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\n")
			flusher.Flush()
		}
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	relay := testRelay(srv.URL, "sk")
	up, err := relay.Open(context.Background(), nopLogger(), NewChatRequest(conversation(1), nil, nil, nil))
	require.NoError(t, err)

	sink := &recordingSink{failAt: 1}
	stats := relay.Pipe(context.Background(), nopLogger(), up, sink)

	assert.True(t, stats.ClientGone)
	assert.False(t, stats.Completed)
	assert.Empty(t, sink.chunks)
	assert.Zero(t, stats.Chunks)
}

func TestPipeHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	relay := testRelay(srv.URL, "sk")
	up, err := relay.Open(ctx, nopLogger(), NewChatRequest(conversation(1), nil, nil, nil))
	require.NoError(t, err)

	sink := &cancelAfterFirst{cancel: cancel}
	stats := relay.Pipe(ctx, nopLogger(), up, sink)

	assert.True(t, stats.ClientGone)
	assert.False(t, stats.Interrupted)
	assert.Positive(t, stats.Chunks)
}

func TestPipeEndsQuietlyOnUpstreamFailure(t *testing.T) {
	const sent = "data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		// Promise more than is sent so the client sees a truncated body.
		w.Header().Set("Content-Length", "4096")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, sent)
		w.(http.Flusher).Flush()

		conn, _, err := http.NewResponseController(w).Hijack()
		if err != nil {
			return
		}
		_ = conn.Close()
	}))
	defer srv.Close()

	relay := testRelay(srv.URL, "sk")
	up, err := relay.Open(context.Background(), nopLogger(), NewChatRequest(conversation(1), nil, nil, nil))
	require.NoError(t, err)

	sink := &recordingSink{}
	stats := relay.Pipe(context.Background(), nopLogger(), up, sink)

	assert.True(t, stats.Interrupted)
	assert.False(t, stats.ClientGone)
	assert.False(t, stats.Completed)
	assert.Equal(t, sent, sink.joined())
	assert.Equal(t, 1, stats.Usage.CompletionTokens)
}

type cancelAfterFirst struct {
	cancel context.CancelFunc
}

func (s *cancelAfterFirst) WriteChunk(p []byte) error {
	s.cancel()
	return nil
}

func TestCompleteRejectsInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not json")
	}))
	defer srv.Close()

	relay := testRelay(srv.URL, "sk")
	stream := false
	up, err := relay.Open(context.Background(), nopLogger(), NewChatRequest(conversation(1), nil, nil, &stream))
	require.NoError(t, err)

	_, err = relay.Complete(nopLogger(), up)
	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusBadGateway, upErr.Status)
	assert.Contains(t, upErr.Error(), "invalid response")
}
