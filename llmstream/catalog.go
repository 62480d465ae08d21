package llmstream

// ModelInfo describes a known model in the catalog.
type ModelInfo struct {
	ID            string   `json:"id"`
	Provider      string   `json:"provider"`
	ContextWindow int      `json:"context_window"`
	SupportsTools bool     `json:"supports_tools"`
	Default       bool     `json:"default,omitempty"` // per-provider default
	Aliases       []string `json:"aliases,omitempty"`
}

// Models is the built-in model catalog.
var Models = []ModelInfo{
	// OpenAI and OpenAI-compatible endpoints.
	{ID: "gpt-4o", Provider: "openai", ContextWindow: 128000, SupportsTools: true, Default: true},
	{ID: "gpt-4o-mini", Provider: "openai", ContextWindow: 128000, SupportsTools: true, Aliases: []string{"4o-mini"}},
	{ID: "gpt-4.1", Provider: "openai", ContextWindow: 1000000, SupportsTools: true},
	{ID: "gpt-4.1-mini", Provider: "openai", ContextWindow: 1000000, SupportsTools: true},

	// Mistral.
	{ID: "mistral-large-latest", Provider: "mistral", ContextWindow: 128000, SupportsTools: true, Default: true},
	{ID: "mistral-small-latest", Provider: "mistral", ContextWindow: 32000, SupportsTools: true},

	// Anthropic (served through the gollm fallback adapter).
	{ID: "claude-sonnet-4-5", Provider: "anthropic", ContextWindow: 200000, SupportsTools: true, Default: true, Aliases: []string{"sonnet"}},
	{ID: "claude-opus-4-6", Provider: "anthropic", ContextWindow: 200000, SupportsTools: true, Aliases: []string{"opus"}},
}

// GetModelInfo looks up a model by ID or alias. Returns nil when unknown.
func GetModelInfo(id string) *ModelInfo {
	for i := range Models {
		m := &Models[i]
		if m.ID == id {
			return m
		}
		for _, alias := range m.Aliases {
			if alias == id {
				return m
			}
		}
	}
	return nil
}

// DefaultModel returns the default model ID for a provider, or empty when
// the provider has no catalog entry.
func DefaultModel(provider string) string {
	for i := range Models {
		if Models[i].Provider == provider && Models[i].Default {
			return Models[i].ID
		}
	}
	return ""
}

// ContextWindow returns the context window for a model, or fallback when
// the model is not in the catalog.
func ContextWindow(model string, fallback int) int {
	if info := GetModelInfo(model); info != nil {
		return info.ContextWindow
	}
	return fallback
}
