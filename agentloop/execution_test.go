package agentloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmera/agentkit/llmstream"
)

func TestExecutionStepNumbering(t *testing.T) {
	e := newExecution(time.Now())
	require.Nil(t, e.LastStep())

	e.appendToolCallStep(llmstream.ToolCall{ID: "call_1", Name: "a"}, time.Now())
	e.appendToolResultStep(ToolResultStep{ToolCallID: "call_1"}, time.Now())
	e.appendResponseStep("done", time.Now())

	require.Len(t, e.Steps, 3)
	for i, step := range e.Steps {
		assert.Equal(t, i+1, step.StepNumber)
	}
	last := e.LastStep()
	require.NotNil(t, last)
	assert.Equal(t, StepResponse, last.Kind)
	assert.Equal(t, "done", last.Response.Text)
}

func TestExecutionStepPayloadDiscrimination(t *testing.T) {
	e := newExecution(time.Now())
	e.appendToolCallStep(llmstream.ToolCall{ID: "call_1", Name: "a", Arguments: `{}`}, time.Now())
	e.appendToolResultStep(ToolResultStep{ToolCallID: "call_1", Content: `{}`}, time.Now())
	e.appendResponseStep("ok", time.Now())

	tc := e.Steps[0]
	assert.NotNil(t, tc.ToolCall)
	assert.Nil(t, tc.ToolResult)
	assert.Nil(t, tc.Response)

	tr := e.Steps[1]
	assert.Nil(t, tr.ToolCall)
	assert.NotNil(t, tr.ToolResult)
	assert.Nil(t, tr.Response)

	resp := e.Steps[2]
	assert.Nil(t, resp.ToolCall)
	assert.Nil(t, resp.ToolResult)
	assert.NotNil(t, resp.Response)
}

func TestExecutionToolsUsedDeduplicated(t *testing.T) {
	e := newExecution(time.Now())
	e.recordToolUse("weather")
	e.recordToolUse("search")
	e.recordToolUse("weather")
	assert.Equal(t, []string{"search", "weather"}, e.ToolsUsed)
}

func TestExecutionFinishStampsDuration(t *testing.T) {
	start := time.Now()
	e := newExecution(start)
	e.finish(start.Add(1500 * time.Millisecond))
	assert.Equal(t, int64(1500), e.TotalDurationMs)
}

func TestExecutionIDsAreUnique(t *testing.T) {
	a := newExecution(time.Now())
	b := newExecution(time.Now())
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
