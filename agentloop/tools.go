package agentloop

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/pharmera/agentkit/llmstream"
)

// ToolExecutor performs the actual lookup or computation behind a tool.
// The returned string is itself a JSON payload. Executor errors are
// converted into structured error results by the orchestrator; they never
// cross this boundary as Go errors into the model conversation.
type ToolExecutor func(ctx context.Context, arguments json.RawMessage) (string, error)

// RegisteredTool pairs a tool definition with its executor.
type RegisteredTool struct {
	Definition llmstream.ToolDefinition
	Executor   ToolExecutor
}

// ToolRegistry manages tool registration and lookup. Safe for concurrent
// use; typically populated once at startup and shared by all runs.
type ToolRegistry struct {
	tools map[string]*RegisteredTool
	mu    sync.RWMutex
}

// NewToolRegistry creates an empty ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]*RegisteredTool)}
}

// Register adds or replaces a tool.
func (r *ToolRegistry) Register(tool RegisteredTool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Definition.Name] = &tool
}

// Unregister removes a tool.
func (r *ToolRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get returns a registered tool, or nil when unknown.
func (r *ToolRegistry) Get(name string) *RegisteredTool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Names returns the sorted names of all registered tools.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns tool definitions for the model, restricted to
// enabled when non-nil. Unknown names in enabled are ignored. Output is
// sorted by name for a stable tool schema across requests.
func (r *ToolRegistry) Definitions(enabled []string) []llmstream.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var allow map[string]struct{}
	if enabled != nil {
		allow = make(map[string]struct{}, len(enabled))
		for _, name := range enabled {
			allow[name] = struct{}{}
		}
	}

	defs := make([]llmstream.ToolDefinition, 0, len(r.tools))
	for name, tool := range r.tools {
		if allow != nil {
			if _, ok := allow[name]; !ok {
				continue
			}
		}
		defs = append(defs, tool.Definition)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// toolErrorPayload is the structured error result fed back to the model
// when a tool call cannot be executed as requested.
type toolErrorPayload struct {
	Success        bool     `json:"success"`
	Error          string   `json:"error"`
	AvailableTools []string `json:"available_tools,omitempty"`
}

// errorResult serializes a structured error payload for the model.
func errorResult(message string, availableTools []string) string {
	payload := toolErrorPayload{Success: false, Error: message, AvailableTools: availableTools}
	data, err := json.Marshal(payload)
	if err != nil {
		return `{"success":false,"error":"internal error"}`
	}
	return string(data)
}
