package coachai

import (
	"bytes"

	"github.com/tidwall/gjson"
)

var (
	dataPrefix   = []byte("data:")
	doneSentinel = []byte("[DONE]")
)

// TokenUsage tracks the tokens consumed by a request. Stream counts are
// estimates unless the provider reported usage itself.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
	Estimated        bool
}

// StreamStats summarizes one relayed stream.
type StreamStats struct {
	Chunks       int
	Bytes        int
	ContentRunes int
	SkippedLines int
	Usage        TokenUsage
	Completed    bool // terminal sentinel seen
	Interrupted  bool // upstream read failed mid-transfer
	ClientGone   bool // caller disconnected or stopped accepting writes
}

// streamTelemetry splits relayed bytes into event-stream lines and
// accumulates usage. It never affects what is relayed.
type streamTelemetry struct {
	pending      []byte
	deltas       int
	runes        int
	reported     int
	promptTokens int
	model        string
	skipped      int
	done         bool
}

// Feed consumes one raw chunk, buffering any partial trailing line.
func (t *streamTelemetry) Feed(chunk []byte) {
	t.pending = append(t.pending, chunk...)
	for {
		i := bytes.IndexByte(t.pending, '\n')
		if i < 0 {
			return
		}
		t.line(t.pending[:i])
		t.pending = append(t.pending[:0], t.pending[i+1:]...)
	}
}

// Flush processes whatever partial line is left at end of stream.
func (t *streamTelemetry) Flush() {
	if len(t.pending) > 0 {
		t.line(t.pending)
		t.pending = nil
	}
}

func (t *streamTelemetry) line(raw []byte) {
	line := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(line, dataPrefix) || t.done {
		return
	}

	payload := bytes.TrimSpace(line[len(dataPrefix):])
	if bytes.Equal(payload, doneSentinel) {
		t.done = true
		return
	}
	if !gjson.ValidBytes(payload) {
		t.skipped++
		return
	}

	event := gjson.ParseBytes(payload)
	if content := event.Get("choices.0.delta.content").String(); content != "" {
		t.deltas++
		t.runes += len([]rune(content))
	}
	if model := event.Get("model").String(); model != "" {
		t.model = model
	}
	if usage := event.Get("usage"); usage.IsObject() {
		t.reported = int(usage.Get("completion_tokens").Int())
		if prompt := usage.Get("prompt_tokens").Int(); prompt > 0 {
			t.promptTokens = int(prompt)
		}
	}
}

// usage folds the accumulated counters into a TokenUsage. Provider-reported
// counts win over the per-delta estimate.
func (t *streamTelemetry) usage(estimatedPrompt int, fallbackModel string) TokenUsage {
	u := TokenUsage{
		PromptTokens:     estimatedPrompt,
		CompletionTokens: t.deltas,
		Model:            t.model,
		Estimated:        true,
	}
	if t.reported > 0 {
		u.CompletionTokens = t.reported
		u.Estimated = false
	}
	if t.promptTokens > 0 {
		u.PromptTokens = t.promptTokens
	}
	if u.Model == "" {
		u.Model = fallbackModel
	}
	u.TotalTokens = u.PromptTokens + u.CompletionTokens
	return u
}

// EstimatePromptTokens approximates prompt size at four characters per token.
func EstimatePromptTokens(messages []Message) int {
	chars := 0
	for _, m := range messages {
		chars += len(m.Content)
	}
	return (chars + 3) / 4
}

// parseUsage reads the usage block of a non-streamed completion body.
func parseUsage(body []byte, fallbackModel string) TokenUsage {
	fields := gjson.GetManyBytes(body,
		"usage.prompt_tokens",
		"usage.completion_tokens",
		"usage.total_tokens",
		"model",
	)
	u := TokenUsage{
		PromptTokens:     int(fields[0].Int()),
		CompletionTokens: int(fields[1].Int()),
		TotalTokens:      int(fields[2].Int()),
		Model:            fields[3].String(),
	}
	if u.Model == "" {
		u.Model = fallbackModel
	}
	return u
}
