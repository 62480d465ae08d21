package agentloop

import "github.com/pharmera/agentkit/llmstream"

// Callbacks delivers live progress to the host. Every member is optional:
// nil members are skipped. All callbacks are invoked synchronously from
// the run's goroutine, in causal order.
//
// Delivery guarantees: OnComplete fires exactly once per run, on every
// terminal path. OnError fires only when the run was aborted by a
// transport failure or the wall-clock timeout; reaching the iteration cap
// is reported through the Execution alone.
type Callbacks struct {
	// OnChunk receives each text fragment as it streams in.
	OnChunk func(text string)

	// OnIterationStart fires before each model round-trip, with the
	// 1-based iteration number.
	OnIterationStart func(iteration int)

	// OnToolCall fires before a tool is executed.
	OnToolCall func(call llmstream.ToolCall)

	// OnToolResult fires after a tool finished, with its result step.
	OnToolResult func(result ToolResultStep)

	// OnComplete receives the finished Execution.
	OnComplete func(execution *Execution)

	// OnError fires when the run aborts with an error.
	OnError func(err error)
}

// The nil-safe invocation helpers below keep the orchestrator free of
// callback nil checks.

func (c Callbacks) chunk(text string) {
	if c.OnChunk != nil {
		c.OnChunk(text)
	}
}

func (c Callbacks) iterationStart(iteration int) {
	if c.OnIterationStart != nil {
		c.OnIterationStart(iteration)
	}
}

func (c Callbacks) toolCall(call llmstream.ToolCall) {
	if c.OnToolCall != nil {
		c.OnToolCall(call)
	}
}

func (c Callbacks) toolResult(result ToolResultStep) {
	if c.OnToolResult != nil {
		c.OnToolResult(result)
	}
}

func (c Callbacks) complete(execution *Execution) {
	if c.OnComplete != nil {
		c.OnComplete(execution)
	}
}

func (c Callbacks) errored(err error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}
