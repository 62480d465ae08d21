package agentloop

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmera/agentkit/llmstream"
)

func drain(emitter *EventEmitter) []ExecutionEvent {
	var events []ExecutionEvent
	for event := range emitter.Events() {
		events = append(events, event)
	}
	return events
}

func TestEventEmitterDeliversInOrder(t *testing.T) {
	emitter := NewEventEmitter(8)
	emitter.Emit(EventIterationStart, map[string]interface{}{"iteration": 1})
	emitter.Emit(EventChunk, map[string]interface{}{"text": "hi"})
	emitter.Close()

	events := drain(emitter)
	require.Len(t, events, 2)
	assert.Equal(t, EventIterationStart, events[0].Kind)
	assert.Equal(t, EventChunk, events[1].Kind)
	assert.Equal(t, "hi", events[1].Data["text"])
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestEventEmitterDropsWhenFull(t *testing.T) {
	emitter := NewEventEmitter(1)
	emitter.Emit(EventChunk, map[string]interface{}{"n": 1})
	emitter.Emit(EventChunk, map[string]interface{}{"n": 2}) // dropped, buffer full
	emitter.Close()

	events := drain(emitter)
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].Data["n"])
}

func TestEventEmitterCloseIsIdempotent(t *testing.T) {
	emitter := NewEventEmitter(1)
	emitter.Close()
	emitter.Close()
	emitter.Emit(EventChunk, nil) // dropped after close, must not panic
	assert.Empty(t, drain(emitter))
}

func TestEventEmitterCallbacksBridge(t *testing.T) {
	emitter := NewEventEmitter(16)
	callbacks := emitter.Callbacks()

	callbacks.OnIterationStart(1)
	callbacks.OnChunk("partial")
	callbacks.OnToolCall(llmstream.ToolCall{ID: "call_1", Name: "echo", Arguments: `{}`})
	callbacks.OnToolResult(ToolResultStep{ToolCallID: "call_1", DurationMs: 3})
	callbacks.OnError(errors.New("boom"))

	execution := newExecution(time.Now())
	execution.IterationCount = 1
	callbacks.OnComplete(execution)

	events := drain(emitter)
	require.Len(t, events, 6)
	assert.Equal(t, EventIterationStart, events[0].Kind)
	assert.Equal(t, EventChunk, events[1].Kind)
	assert.Equal(t, EventToolCall, events[2].Kind)
	assert.Equal(t, "echo", events[2].Data["name"])
	assert.Equal(t, EventToolResult, events[3].Kind)
	assert.Equal(t, "call_1", events[3].Data["tool_call_id"])
	assert.Equal(t, EventError, events[4].Kind)
	assert.Equal(t, "boom", events[4].Data["error"])
	assert.Equal(t, EventComplete, events[5].Kind)
	assert.Equal(t, execution.ID, events[5].Data["execution_id"])

	// OnComplete closed the emitter; later emits are dropped.
	emitter.Emit(EventChunk, nil)
}

func TestEventEmitterWithOrchestrator(t *testing.T) {
	adapter := &scriptedAdapter{responses: []scriptedResponse{
		toolCallResponse(llmstream.ToolCall{ID: "call_1", Name: "echo", Arguments: `{"x":1}`}),
		textResponse("done"),
	}}
	o := newTestOrchestrator(t, adapter, echoRegistry(t), nil)

	emitter := NewEventEmitter(64)
	_, err := o.Run(t.Context(), []llmstream.Message{llmstream.UserMessage("hi")}, emitter.Callbacks())
	require.NoError(t, err)

	var kinds []EventKind
	for _, event := range drain(emitter) {
		kinds = append(kinds, event.Kind)
	}
	assert.Equal(t, []EventKind{
		EventIterationStart,
		EventToolCall,
		EventToolResult,
		EventIterationStart,
		EventChunk,
		EventComplete,
	}, kinds)
}
