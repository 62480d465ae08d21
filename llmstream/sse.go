package llmstream

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

const dataPrefix = "data: "

// DeltaToolCall is one streamed fragment of a tool-call descriptor. The
// first fragment for a given Index carries the id, type and the start of
// the function name/arguments; later fragments carry only an arguments
// substring to append.
type DeltaToolCall struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
}

// Delta is the incremental payload of one stream event.
type Delta struct {
	Role      string          `json:"role,omitempty"`
	Content   *string         `json:"content,omitempty"`
	ToolCalls []DeltaToolCall `json:"tool_calls,omitempty"`
}

// DeltaChoice pairs a delta with the provider's finish reason, which is
// null until the final event of the choice.
type DeltaChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// DeltaEvent is one parsed `data:` frame of a streaming completion.
type DeltaEvent struct {
	ID      string        `json:"id"`
	Model   string        `json:"model"`
	Choices []DeltaChoice `json:"choices"`
	Usage   *Usage        `json:"usage,omitempty"`
}

// EventStream decodes a chunked event-stream response body into a sequence
// of DeltaEvents. It is tied to a single response body: finite, one-shot,
// not restartable.
//
// Framing: every line starting with "data: " is a frame; the literal
// payload "[DONE]" terminates the stream without emitting an event; any
// frame whose payload fails to parse as JSON is dropped and counted, so a
// single malformed fragment never aborts the whole response. Lines are
// buffered across network reads, so a frame split between two reads is
// reassembled rather than corrupted.
type EventStream struct {
	scanner *bufio.Scanner
	done    bool
	dropped int
}

// NewEventStream wraps a streaming response body.
func NewEventStream(body io.Reader) *EventStream {
	scanner := bufio.NewScanner(body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	return &EventStream{scanner: scanner}
}

// Next returns the next decoded event. It returns io.EOF once the stream
// has ended, either via the [DONE] sentinel or body exhaustion; any
// transport error from the underlying reader is returned as-is.
func (s *EventStream) Next() (*DeltaEvent, error) {
	if s.done {
		return nil, io.EOF
	}
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		payload := strings.TrimPrefix(line, dataPrefix)
		if payload == "[DONE]" {
			s.done = true
			return nil, io.EOF
		}
		var event DeltaEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			s.dropped++
			continue
		}
		return &event, nil
	}
	s.done = true
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Dropped returns how many malformed frames were skipped so far.
func (s *EventStream) Dropped() int { return s.dropped }
