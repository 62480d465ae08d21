package llmstream

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/teilomillet/gollm"
)

// GollmAdapter is the fallback ProviderAdapter for providers without an
// OpenAI-compatible streaming endpoint. It flattens the conversation into
// a gollm prompt, generates blocking, and fires the chunk handler once
// with the full text. Tool calls are recovered from the generated text,
// since gollm's Generate surface does not return structured calls.
type GollmAdapter struct {
	provider string
	llm      gollm.LLM
	model    string
}

// NewGollmAdapter creates an adapter for the given provider. If apiKey is
// empty, gollm reads it from the provider's environment variable.
func NewGollmAdapter(provider, apiKey, model string) (*GollmAdapter, error) {
	if model == "" {
		model = DefaultModel(provider)
	}
	opts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetModel(model),
		gollm.SetMaxRetries(0), // retries are client middleware here
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if apiKey != "" {
		opts = append(opts, gollm.SetAPIKey(apiKey))
	}
	llm, err := gollm.NewLLM(opts...)
	if err != nil {
		return nil, &ConfigurationError{ClientError{Message: "create gollm provider " + provider, Cause: err}}
	}
	return &GollmAdapter{provider: provider, llm: llm, model: model}, nil
}

// NewGollmAdapterFromLLM wraps an existing gollm.LLM instance.
func NewGollmAdapterFromLLM(provider string, llm gollm.LLM) *GollmAdapter {
	return &GollmAdapter{provider: provider, llm: llm}
}

// Name returns the provider identifier.
func (a *GollmAdapter) Name() string { return a.provider }

// Complete sends one blocking round-trip through gollm.
func (a *GollmAdapter) Complete(ctx context.Context, req Request, onChunk ChunkHandler) (*Result, error) {
	prompt := a.translateRequest(req)
	a.applyRequestOptions(req)

	text, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, NewNetworkError(a.provider, err)
	}

	result := a.buildResult(req, text)
	if onChunk != nil && result.Text != "" {
		onChunk(result.Text)
	}
	return result, nil
}

// translateRequest flattens the message history into a gollm prompt.
func (a *GollmAdapter) translateRequest(req Request) *gollm.Prompt {
	var system strings.Builder
	var parts []string

	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			system.WriteString(msg.Content)
			system.WriteString("\n")
		case RoleUser:
			parts = append(parts, msg.Content)
		case RoleAssistant:
			if msg.Content != "" {
				parts = append(parts, "[Assistant]: "+msg.Content)
			}
			for _, tc := range msg.ToolCalls {
				parts = append(parts, "[Tool Call "+tc.Name+"]: "+tc.Arguments)
			}
		case RoleTool:
			parts = append(parts, "[Tool Result]: "+msg.Content)
		}
	}

	promptText := strings.Join(parts, "\n")
	if promptText == "" {
		promptText = "Hello"
	}

	promptOpts := []gollm.PromptOption{}
	if system.Len() > 0 {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(strings.TrimSpace(system.String()), gollm.CacheTypeEphemeral))
	}
	if len(req.Tools) > 0 {
		tools := make([]gollm.Tool, 0, len(req.Tools))
		for _, t := range req.Tools {
			tools = append(tools, gollm.Tool{
				Type: "function",
				Function: gollm.Function{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			})
		}
		promptOpts = append(promptOpts, gollm.WithTools(tools))
		promptOpts = append(promptOpts, gollm.WithToolChoice("auto"))
	}
	return gollm.NewPrompt(promptText, promptOpts...)
}

// applyRequestOptions applies per-request parameters to the gollm LLM.
func (a *GollmAdapter) applyRequestOptions(req Request) {
	if req.Model != "" {
		a.llm.SetOption("model", req.Model)
	}
	if req.Temperature != nil {
		a.llm.SetOption("temperature", *req.Temperature)
	}
	if req.MaxTokens > 0 {
		a.llm.SetOption("max_tokens", req.MaxTokens)
	}
}

// buildResult constructs a Result from the generated text, recovering any
// tool calls the model emitted as inline JSON.
func (a *GollmAdapter) buildResult(req Request, text string) *Result {
	model := req.Model
	if model == "" {
		model = a.model
	}

	calls, cleaned := extractInlineToolCalls(text)
	finish := FinishStop
	if len(calls) > 0 {
		finish = FinishToolCalls
	}
	return &Result{
		ID:           "resp_" + uuid.New().String()[:8],
		Model:        model,
		Text:         cleaned,
		ToolCalls:    calls,
		FinishReason: finish,
	}
}

// inlineCall matches the JSON shape models use for text-embedded calls.
type inlineCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// extractInlineToolCalls scans text for brace-balanced JSON objects with a
// name and an arguments object and converts them into ToolCalls. The
// matched JSON is removed from the returned text.
func extractInlineToolCalls(text string) ([]ToolCall, string) {
	var calls []ToolCall
	remaining := text
	var kept strings.Builder

	for {
		start := strings.IndexByte(remaining, '{')
		if start < 0 {
			kept.WriteString(remaining)
			break
		}
		candidate, length := balancedJSONObject(remaining[start:])
		if length == 0 {
			kept.WriteString(remaining[:start+1])
			remaining = remaining[start+1:]
			continue
		}
		var ic inlineCall
		if err := json.Unmarshal([]byte(candidate), &ic); err != nil || ic.Name == "" || len(ic.Arguments) == 0 {
			kept.WriteString(remaining[:start+1])
			remaining = remaining[start+1:]
			continue
		}
		kept.WriteString(remaining[:start])
		remaining = remaining[start+length:]
		calls = append(calls, ToolCall{
			ID:        "call_" + uuid.New().String()[:8],
			Name:      ic.Name,
			Arguments: string(ic.Arguments),
		})
	}
	return calls, strings.TrimSpace(kept.String())
}

// balancedJSONObject returns the first brace-balanced run at the start of
// s (which must begin with '{') and its length, or ("", 0) when the braces
// never balance. String literals and escapes are honored.
func balancedJSONObject(s string) (string, int) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[:i+1], i + 1
				}
			}
		}
	}
	return "", 0
}
