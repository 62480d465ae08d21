package agentloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pharmera/agentkit/llmstream"
)

func stepsForCalls(calls ...llmstream.ToolCall) []Step {
	e := newExecution(time.Now())
	for _, call := range calls {
		e.appendToolCallStep(call, time.Now())
		e.appendToolResultStep(ToolResultStep{ToolCallID: call.ID, Content: "{}"}, time.Now())
	}
	return e.Steps
}

func call(name, args string) llmstream.ToolCall {
	return llmstream.ToolCall{ID: "call_x", Name: name, Arguments: args}
}

func TestDetectLoopIdenticalCalls(t *testing.T) {
	steps := stepsForCalls(
		call("search", `{"q":"go"}`),
		call("search", `{"q":"go"}`),
		call("search", `{"q":"go"}`),
		call("search", `{"q":"go"}`),
	)
	assert.True(t, detectLoop(steps, 4))
}

func TestDetectLoopAlternatingPattern(t *testing.T) {
	steps := stepsForCalls(
		call("read", `{"f":"a"}`),
		call("write", `{"f":"b"}`),
		call("read", `{"f":"a"}`),
		call("write", `{"f":"b"}`),
	)
	assert.True(t, detectLoop(steps, 4))
}

func TestDetectLoopDistinctArguments(t *testing.T) {
	steps := stepsForCalls(
		call("search", `{"q":"go"}`),
		call("search", `{"q":"rust"}`),
		call("search", `{"q":"zig"}`),
		call("search", `{"q":"c"}`),
	)
	assert.False(t, detectLoop(steps, 4))
}

func TestDetectLoopTooFewCalls(t *testing.T) {
	steps := stepsForCalls(
		call("search", `{"q":"go"}`),
		call("search", `{"q":"go"}`),
	)
	assert.False(t, detectLoop(steps, 4))
}

func TestDetectLoopOnlyRecentWindowCounts(t *testing.T) {
	steps := stepsForCalls(
		call("search", `{"q":"go"}`),
		call("fetch", `{"u":"x"}`),
		call("fetch", `{"u":"x"}`),
		call("fetch", `{"u":"x"}`),
	)
	// Window of 3 sees only the repeated fetches.
	assert.True(t, detectLoop(steps, 3))
	// Window of 4 includes the distinct search call.
	assert.False(t, detectLoop(steps, 4))
}

func TestToolCallSignatureDiscriminates(t *testing.T) {
	same := toolCallSignature("search", `{"q":"go"}`)
	assert.Equal(t, same, toolCallSignature("search", `{"q":"go"}`))
	assert.NotEqual(t, same, toolCallSignature("search", `{"q":"rust"}`))
	assert.NotEqual(t, same, toolCallSignature("fetch", `{"q":"go"}`))
}
