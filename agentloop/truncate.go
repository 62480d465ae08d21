package agentloop

import "fmt"

// truncateToolOutput caps a tool result before it is fed back to the
// model, keeping the head and tail halves. Oversized middles carry a
// marker so the model knows content was removed. The full untruncated
// output still reaches the execution trace and callbacks.
func truncateToolOutput(output string, toolName string, cfg Config) string {
	limit := cfg.ToolOutputLimit
	if override, ok := cfg.ToolOutputLimits[toolName]; ok {
		limit = override
	}
	if limit <= 0 || len(output) <= limit {
		return output
	}

	half := limit / 2
	removed := len(output) - limit
	return output[:half] +
		fmt.Sprintf("\n[... tool output truncated, %d characters removed ...]\n", removed) +
		output[len(output)-half:]
}
