package llmstream

import "strings"

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of the conversation history, shaped like the chat
// completions wire format so history can be sent to the provider verbatim.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// SystemMessage creates a system Message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserMessage creates a user Message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage creates an assistant Message carrying text and any
// tool-call descriptors exactly as the model issued them.
func AssistantMessage(text string, toolCalls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: toolCalls}
}

// ToolMessage creates a tool-result Message correlated to a prior tool call.
func ToolMessage(toolCallID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

// ToolCall is a model-issued request to invoke a tool. Arguments is the raw
// JSON string as streamed by the provider; it is only guaranteed to be
// complete (and therefore parseable) after the stream has finished.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition describes a callable tool to the model (JSON-Schema
// function definition without the executor).
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// FinishReason is the provider-supplied reason a completion round stopped.
// The zero value means the provider never sent one.
type FinishReason string

const (
	FinishNone      FinishReason = ""
	FinishStop      FinishReason = "stop"
	FinishToolCalls FinishReason = "tool_calls"
	FinishLength    FinishReason = "length"
)

// Usage tracks token consumption for one round-trip.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add returns the sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		TotalTokens:      u.TotalTokens + other.TotalTokens,
	}
}

// Float64 returns a pointer to v, for optional numeric fields where the
// zero value is meaningful and must be distinguishable from unset.
func Float64(v float64) *float64 { return &v }

// Request is the input to one completion round-trip.
type Request struct {
	Model       string           `json:"model"`
	Messages    []Message        `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`

	// Provider routes the request when a Client holds several adapters.
	Provider string `json:"-"`
}

// Result is one finalized completion round-trip: the accumulated text, the
// reassembled tool calls, and why the provider stopped.
type Result struct {
	ID           string
	Model        string
	Text         string
	ToolCalls    []ToolCall
	FinishReason FinishReason
	Usage        Usage
}

// HasToolCalls reports whether the model requested any tool invocations.
func (r *Result) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}

// ChunkHandler receives each text fragment as it arrives on the stream.
// It is invoked synchronously from the decode loop; handlers must be fast.
type ChunkHandler func(text string)

// ApproxTokens estimates the token count of a message list using the
// four-characters-per-token heuristic. Used only for context-window
// warnings, never for billing.
func ApproxTokens(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += len(m.Content)
		for _, tc := range m.ToolCalls {
			total += len(tc.Name) + len(tc.Arguments)
		}
	}
	return total / 4
}

// trimmedNonEmpty reports whether s contains anything besides whitespace.
func trimmedNonEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}
