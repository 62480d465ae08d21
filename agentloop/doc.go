// Package agentloop runs tool-calling agent conversations against a
// streaming LLM client.
//
// An Orchestrator repeatedly asks the model for a completion, executes
// the tools it requests through a ToolRegistry, appends the results to
// the conversation, and stops when the model produces a final answer,
// the iteration cap is hit, or the wall-clock budget runs out. Every run
// produces an Execution: an ordered trace of tool calls, tool results,
// and the final response, with token usage and timing attached.
//
// Progress is observable two ways: a Callbacks struct of optional hooks
// invoked synchronously from the loop, or an EventEmitter that bridges
// those hooks onto a buffered channel for consumers that prefer to
// range over events.
package agentloop
