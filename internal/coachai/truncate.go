package coachai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MaxHistory is how many non-system messages are forwarded upstream.
const MaxHistory = 12

const roleSystem = "system"

// ErrInvalidMessages is returned when the chat payload has no message array.
var ErrInvalidMessages = errors.New("messages must be an array")

// Message is one chat turn in OpenAI wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ParseMessages decodes the raw "messages" field. Absent, null and non-array
// values are rejected.
func ParseMessages(raw json.RawMessage) ([]Message, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrInvalidMessages
	}

	var messages []Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessages, err)
	}
	return messages, nil
}

// Truncate bounds the history sent upstream: the first system message (if
// any) followed by the last MaxHistory non-system messages in their original
// order. Later system messages are dropped.
func Truncate(messages []Message) []Message {
	var system *Message
	conversation := make([]Message, 0, len(messages))

	for i := range messages {
		if messages[i].Role == roleSystem {
			if system == nil {
				system = &messages[i]
			}
			continue
		}
		conversation = append(conversation, messages[i])
	}

	if len(conversation) > MaxHistory {
		conversation = conversation[len(conversation)-MaxHistory:]
	}

	out := make([]Message, 0, len(conversation)+1)
	if system != nil {
		out = append(out, *system)
	}
	return append(out, conversation...)
}
