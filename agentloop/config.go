package agentloop

import (
	"time"

	"github.com/pharmera/agentkit/llmstream"
)

// Config holds per-orchestrator settings. Each Orchestrator receives its
// own Config value, so concurrent executions can never observe another
// run's configuration.
type Config struct {
	// Provider selects the completion backend. Required.
	Provider string `json:"provider"`

	// Model overrides the provider's catalog default.
	Model string `json:"model,omitempty"`

	// Temperature in [0,1]. Nil defaults to 0.7; an explicit zero is
	// honored (deterministic sampling).
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxIterations caps the number of model round-trips per run, not the
	// number of tool calls. Defaults to 10.
	MaxIterations int `json:"max_iterations"`

	// Timeout is the wall-clock budget for one run, checked at iteration
	// boundaries only. Defaults to 60s.
	Timeout time.Duration `json:"timeout"`

	// EnabledTools restricts which registered tools are offered to the
	// model. Nil means all registered tools.
	EnabledTools []string `json:"enabled_tools,omitempty"`

	// ToolOutputLimit caps tool result sizes (in characters) before they
	// are fed back to the model. Zero disables truncation.
	ToolOutputLimit int `json:"tool_output_limit,omitempty"`

	// ToolOutputLimits overrides ToolOutputLimit per tool name.
	ToolOutputLimits map[string]int `json:"tool_output_limits,omitempty"`

	// LoopDetectionWindow enables repeating tool-call detection over the
	// last N calls. Zero disables it.
	LoopDetectionWindow int `json:"loop_detection_window,omitempty"`

	// ContextWindow overrides the catalog's context window size used for
	// the usage warning. Zero means catalog lookup with a 128k fallback.
	ContextWindow int `json:"context_window,omitempty"`
}

// DefaultConfig returns the default configuration for a provider.
func DefaultConfig(provider string) Config {
	return Config{
		Provider:      provider,
		Temperature:   llmstream.Float64(0.7),
		MaxIterations: 10,
		Timeout:       60 * time.Second,
	}
}

// withDefaults fills unset values with their defaults.
func (c Config) withDefaults() Config {
	if c.Temperature == nil {
		c.Temperature = llmstream.Float64(0.7)
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 10
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	return c
}

// Validate reports configuration problems before a run starts.
func (c Config) Validate() error {
	if c.Provider == "" {
		return llmstream.NewConfigurationError("config: provider is required")
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 1) {
		return llmstream.NewConfigurationError("config: temperature %v outside [0,1]", *c.Temperature)
	}
	if c.MaxIterations < 0 {
		return llmstream.NewConfigurationError("config: max iterations must be positive")
	}
	if c.Timeout < 0 {
		return llmstream.NewConfigurationError("config: timeout must be positive")
	}
	return nil
}

// model resolves the model in effect: explicit override or catalog default.
func (c Config) model() string {
	if c.Model != "" {
		return c.Model
	}
	return llmstream.DefaultModel(c.Provider)
}

// contextWindow resolves the window used for the usage warning.
func (c Config) contextWindow() int {
	if c.ContextWindow > 0 {
		return c.ContextWindow
	}
	return llmstream.ContextWindow(c.model(), 128000)
}
