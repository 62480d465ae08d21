// Package llmstream is a provider-agnostic client for streaming chat
// completions with tool calling.
//
// It turns one streaming HTTP round-trip into a finalized Result: the
// response body is decoded as a server-sent event stream (EventStream),
// fragmented tool-call descriptors are reassembled in arrival order
// (ToolCallAccumulator), text deltas are forwarded live to a ChunkHandler,
// and the provider's finish reason is surfaced once the stream ends.
//
// Requests are routed through a Client holding named ProviderAdapters.
// OpenAIAdapter speaks the chat-completions wire protocol against any
// compatible endpoint; GollmAdapter covers the rest of the provider
// ecosystem through gollm, without streaming. Cross-cutting behavior such
// as retries is applied as Client middleware (RetryMiddleware).
//
// There is no package-level default client: hosts construct a Client and
// inject it, so concurrent consumers never share hidden mutable state.
package llmstream
