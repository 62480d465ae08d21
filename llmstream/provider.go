package llmstream

import "context"

// ProviderAdapter is the interface every provider backend implements. One
// Complete call is one model round-trip: it blocks until the provider's
// stream (or response) has been fully consumed and returns the finalized
// result. Text fragments are forwarded to onChunk as they arrive; onChunk
// may be nil.
type ProviderAdapter interface {
	// Name returns the provider identifier (e.g. "openai", "mistral").
	Name() string

	// Complete issues one completion round-trip.
	Complete(ctx context.Context, req Request, onChunk ChunkHandler) (*Result, error)
}

// Closer is implemented by adapters that hold resources.
type Closer interface {
	Close() error
}
