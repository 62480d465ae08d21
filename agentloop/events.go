package agentloop

import (
	"sync"
	"time"

	"github.com/pharmera/agentkit/llmstream"
)

// EventKind identifies the type of execution event.
type EventKind string

const (
	EventIterationStart EventKind = "iteration_start"
	EventChunk          EventKind = "chunk"
	EventToolCall       EventKind = "tool_call"
	EventToolResult     EventKind = "tool_result"
	EventWarning        EventKind = "warning"
	EventComplete       EventKind = "complete"
	EventError          EventKind = "error"
)

// ExecutionEvent is a typed event emitted during a run, for hosts that
// prefer ranging over a channel to registering callbacks.
type ExecutionEvent struct {
	Kind      EventKind              `json:"kind"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// EventEmitter delivers typed events via a buffered channel. Events are
// dropped rather than blocking the agent loop when the buffer is full.
type EventEmitter struct {
	ch     chan ExecutionEvent
	closed bool
	mu     sync.Mutex
}

// NewEventEmitter creates an EventEmitter with the given buffer size.
func NewEventEmitter(bufferSize int) *EventEmitter {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &EventEmitter{ch: make(chan ExecutionEvent, bufferSize)}
}

// Emit sends an event. Silently dropped once the emitter is closed or the
// buffer is full.
func (e *EventEmitter) Emit(kind EventKind, data map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	event := ExecutionEvent{Kind: kind, Timestamp: time.Now(), Data: data}
	select {
	case e.ch <- event:
	default:
	}
}

// Events returns the read-only event channel.
func (e *EventEmitter) Events() <-chan ExecutionEvent {
	return e.ch
}

// Close closes the event channel. Safe to call multiple times.
func (e *EventEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}

// Callbacks returns a Callbacks value that forwards every notification to
// the emitter, closing it after the terminal event.
func (e *EventEmitter) Callbacks() Callbacks {
	return Callbacks{
		OnChunk: func(text string) {
			e.Emit(EventChunk, map[string]interface{}{"text": text})
		},
		OnIterationStart: func(iteration int) {
			e.Emit(EventIterationStart, map[string]interface{}{"iteration": iteration})
		},
		OnToolCall: func(call llmstream.ToolCall) {
			e.Emit(EventToolCall, map[string]interface{}{
				"id":        call.ID,
				"name":      call.Name,
				"arguments": call.Arguments,
			})
		},
		OnToolResult: func(result ToolResultStep) {
			e.Emit(EventToolResult, map[string]interface{}{
				"tool_call_id": result.ToolCallID,
				"is_error":     result.IsError,
				"duration_ms":  result.DurationMs,
			})
		},
		OnComplete: func(execution *Execution) {
			e.Emit(EventComplete, map[string]interface{}{
				"execution_id": execution.ID,
				"success":      execution.Success,
				"iterations":   execution.IterationCount,
			})
			e.Close()
		},
		OnError: func(err error) {
			e.Emit(EventError, map[string]interface{}{"error": err.Error()})
		},
	}
}
