package llmstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

const chatCompletionsPath = "/chat/completions"

// OpenAIAdapter speaks the chat-completions streaming protocol. It works
// against OpenAI and any compatible endpoint (OpenRouter, Mistral,
// DeepSeek, local inference servers).
type OpenAIAdapter struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// OpenAIOption configures an OpenAIAdapter.
type OpenAIOption func(*OpenAIAdapter)

// WithHTTPClient overrides the HTTP client (primarily for tests).
func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(a *OpenAIAdapter) { a.httpClient = client }
}

// WithName overrides the provider name used for routing and error
// attribution, for compatible endpoints that are not OpenAI itself.
func WithName(name string) OpenAIOption {
	return func(a *OpenAIAdapter) { a.name = name }
}

// NewOpenAIAdapter creates an adapter for an OpenAI-compatible endpoint.
// baseURL is the API root (e.g. "https://api.openai.com/v1").
func NewOpenAIAdapter(baseURL, apiKey string, opts ...OpenAIOption) (*OpenAIAdapter, error) {
	if !trimmedNonEmpty(baseURL) {
		return nil, NewConfigurationError("openai adapter: base URL is empty")
	}
	if !trimmedNonEmpty(apiKey) {
		return nil, NewConfigurationError("openai adapter: API key is empty")
	}
	a := &OpenAIAdapter{
		name:       "openai",
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Name returns the provider identifier.
func (a *OpenAIAdapter) Name() string { return a.name }

// wireRequest is the serialized chat-completions request body.
type wireRequest struct {
	Model         string         `json:"model"`
	Messages      []wireMessage  `json:"messages"`
	Tools         []wireTool     `json:"tools,omitempty"`
	ToolChoice    string         `json:"tool_choice,omitempty"`
	Temperature   *float64       `json:"temperature,omitempty"`
	MaxTokens     int            `json:"max_tokens,omitempty"`
	Stream        bool           `json:"stream"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

func buildWireRequest(req Request) wireRequest {
	wr := wireRequest{
		Model:         req.Model,
		Temperature:   req.Temperature,
		MaxTokens:     req.MaxTokens,
		Stream:        true,
		StreamOptions: &streamOptions{IncludeUsage: true},
	}
	wr.Messages = make([]wireMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		wm := wireMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			wtc := wireToolCall{ID: tc.ID, Type: "function"}
			wtc.Function.Name = tc.Name
			wtc.Function.Arguments = tc.Arguments
			wm.ToolCalls = append(wm.ToolCalls, wtc)
		}
		wr.Messages = append(wr.Messages, wm)
	}
	for _, t := range req.Tools {
		wr.Tools = append(wr.Tools, wireTool{
			Type: "function",
			Function: wireFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	if len(wr.Tools) > 0 {
		wr.ToolChoice = "auto"
	}
	return wr
}

// Complete issues one streaming round-trip and consumes the stream to the
// end: text deltas are concatenated (and forwarded to onChunk as they
// arrive), tool-call fragments are reassembled, and the provider's finish
// reason is surfaced on the finalized Result.
func (a *OpenAIAdapter) Complete(ctx context.Context, req Request, onChunk ChunkHandler) (*Result, error) {
	if req.Model == "" {
		return nil, NewConfigurationError("openai adapter: model is empty")
	}

	payload, err := json.Marshal(buildWireRequest(req))
	if err != nil {
		return nil, &ClientError{Message: "marshal request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+chatCompletionsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, &ClientError{Message: "build request", Cause: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewNetworkError(a.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, ErrorFromResponse(a.name, resp, body)
	}

	return a.consumeStream(resp.Body, onChunk)
}

// consumeStream drives the event decoder and the tool-call accumulator
// until the stream ends, producing the finalized result.
func (a *OpenAIAdapter) consumeStream(body io.Reader, onChunk ChunkHandler) (*Result, error) {
	stream := NewEventStream(body)
	accumulator := NewToolCallAccumulator()

	result := &Result{}
	var text strings.Builder

	for {
		event, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// The stream broke mid-flight; chunks may already have been
			// delivered, so this is not safe to retry blindly.
			return nil, &TransportError{
				ClientError: ClientError{Message: "stream read error", Cause: err},
				Provider:    a.name,
			}
		}

		if event.ID != "" {
			result.ID = event.ID
		}
		if event.Model != "" {
			result.Model = event.Model
		}
		if event.Usage != nil {
			result.Usage = *event.Usage
		}
		for _, choice := range event.Choices {
			if choice.Index != 0 {
				continue
			}
			accumulator.Merge(choice.Delta)
			if choice.Delta.Content != nil && *choice.Delta.Content != "" {
				text.WriteString(*choice.Delta.Content)
				if onChunk != nil {
					onChunk(*choice.Delta.Content)
				}
			}
			if choice.FinishReason != nil {
				result.FinishReason = FinishReason(*choice.FinishReason)
			}
		}
	}

	result.Text = text.String()
	result.ToolCalls = accumulator.Finalize()
	return result, nil
}

// timeoutHTTPClient is a convenience constructor for hosts that want a
// bounded per-request transport without configuring details.
func timeoutHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// WithRequestTimeout sets a hard per-request timeout on the adapter's
// HTTP client. Most hosts should prefer context deadlines.
func WithRequestTimeout(timeout time.Duration) OpenAIOption {
	return func(a *OpenAIAdapter) { a.httpClient = timeoutHTTPClient(timeout) }
}
