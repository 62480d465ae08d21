package agentloop

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pharmera/agentkit/llmstream"
)

// StepKind discriminates between step types.
type StepKind string

const (
	StepToolCall   StepKind = "tool_call"
	StepToolResult StepKind = "tool_result"
	StepResponse   StepKind = "response"
)

// Step is a single entry in the execution trace. StepNumber starts at 1
// and increases without gaps; exactly one payload field is set, matching
// Kind.
type Step struct {
	Kind       StepKind        `json:"kind"`
	StepNumber int             `json:"step_number"`
	Timestamp  time.Time       `json:"timestamp"`
	ToolCall   *ToolCallStep   `json:"tool_call,omitempty"`
	ToolResult *ToolResultStep `json:"tool_result,omitempty"`
	Response   *ResponseStep   `json:"response,omitempty"`
}

// ToolCallStep records a model-requested tool invocation.
type ToolCallStep struct {
	Call llmstream.ToolCall `json:"call"`
}

// ToolResultStep records the outcome of executing one tool call.
type ToolResultStep struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"` // JSON payload
	IsError    bool   `json:"is_error"`
	DurationMs int64  `json:"duration_ms"`
}

// ResponseStep records the model's final text answer.
type ResponseStep struct {
	Text string `json:"text"`
}

// Execution is the auditable trace of one full agent run. It is mutated
// only by the orchestrator that owns it and becomes immutable once
// returned to the caller.
type Execution struct {
	ID              string          `json:"id"`
	Steps           []Step          `json:"steps"`
	FinalResponse   *string         `json:"final_response,omitempty"`
	TotalDurationMs int64           `json:"total_duration_ms"`
	ToolsUsed       []string        `json:"tools_used,omitempty"`
	IterationCount  int             `json:"iteration_count"`
	Success         bool            `json:"success"`
	Error           string          `json:"error,omitempty"`
	Usage           llmstream.Usage `json:"usage"`

	startedAt time.Time
	toolSet   map[string]struct{}
}

// newExecution creates an empty Execution for a run starting now.
func newExecution(now time.Time) *Execution {
	return &Execution{
		ID:        uuid.New().String(),
		startedAt: now,
		toolSet:   make(map[string]struct{}),
	}
}

// nextStepNumber returns the step number the next appended step receives.
func (e *Execution) nextStepNumber() int { return len(e.Steps) + 1 }

// appendToolCallStep records a tool_call step and returns it.
func (e *Execution) appendToolCallStep(call llmstream.ToolCall, now time.Time) Step {
	step := Step{
		Kind:       StepToolCall,
		StepNumber: e.nextStepNumber(),
		Timestamp:  now,
		ToolCall:   &ToolCallStep{Call: call},
	}
	e.Steps = append(e.Steps, step)
	return step
}

// appendToolResultStep records a tool_result step and returns it.
func (e *Execution) appendToolResultStep(result ToolResultStep, now time.Time) Step {
	step := Step{
		Kind:       StepToolResult,
		StepNumber: e.nextStepNumber(),
		Timestamp:  now,
		ToolResult: &result,
	}
	e.Steps = append(e.Steps, step)
	return step
}

// appendResponseStep records the final response step.
func (e *Execution) appendResponseStep(text string, now time.Time) Step {
	step := Step{
		Kind:       StepResponse,
		StepNumber: e.nextStepNumber(),
		Timestamp:  now,
		Response:   &ResponseStep{Text: text},
	}
	e.Steps = append(e.Steps, step)
	return step
}

// recordToolUse adds a tool name to the deduplicated set, keeping
// ToolsUsed sorted for deterministic output.
func (e *Execution) recordToolUse(name string) {
	if _, seen := e.toolSet[name]; seen {
		return
	}
	e.toolSet[name] = struct{}{}
	e.ToolsUsed = append(e.ToolsUsed, name)
	sort.Strings(e.ToolsUsed)
}

// finish stamps the total duration. Called exactly once per run.
func (e *Execution) finish(now time.Time) {
	e.TotalDurationMs = now.Sub(e.startedAt).Milliseconds()
}

// LastStep returns the most recent step, or nil for an empty trace.
func (e *Execution) LastStep() *Step {
	if len(e.Steps) == 0 {
		return nil
	}
	return &e.Steps[len(e.Steps)-1]
}
