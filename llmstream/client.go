package llmstream

import (
	"context"
	"sync"
)

// Middleware wraps a provider call. It receives the request and a next
// function that calls the downstream handler, and returns the result.
type Middleware func(ctx context.Context, req Request, onChunk ChunkHandler, next CompleteFunc) (*Result, error)

// CompleteFunc is the downstream handler signature seen by middleware.
type CompleteFunc func(ctx context.Context, req Request, onChunk ChunkHandler) (*Result, error)

// Client routes completion requests to registered provider adapters and
// applies middleware. Clients are value-injected into every consumer; there
// is deliberately no package-level default instance, so concurrent agent
// runs can never observe each other's configuration.
type Client struct {
	providers       map[string]ProviderAdapter
	defaultProvider string
	middleware      []Middleware
	mu              sync.RWMutex
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithProvider registers a provider adapter.
func WithProvider(name string, adapter ProviderAdapter) ClientOption {
	return func(c *Client) {
		c.providers[name] = adapter
	}
}

// WithDefaultProvider sets the provider used when a request names none.
func WithDefaultProvider(name string) ClientOption {
	return func(c *Client) {
		c.defaultProvider = name
	}
}

// WithMiddleware appends middleware; the first registered runs outermost.
func WithMiddleware(mw ...Middleware) ClientOption {
	return func(c *Client) {
		c.middleware = append(c.middleware, mw...)
	}
}

// NewClient creates a Client with the given options.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{providers: make(map[string]ProviderAdapter)}
	for _, opt := range opts {
		opt(c)
	}
	if c.defaultProvider == "" && len(c.providers) == 1 {
		for name := range c.providers {
			c.defaultProvider = name
		}
	}
	return c
}

// RegisterProvider adds a provider adapter after construction.
func (c *Client) RegisterProvider(name string, adapter ProviderAdapter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers[name] = adapter
	if c.defaultProvider == "" {
		c.defaultProvider = name
	}
}

// Providers returns the names of all registered adapters.
func (c *Client) Providers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.providers))
	for name := range c.providers {
		names = append(names, name)
	}
	return names
}

// resolveProvider determines which adapter serves a request.
func (c *Client) resolveProvider(req Request) (ProviderAdapter, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name := req.Provider
	if name == "" {
		name = c.defaultProvider
	}
	if name == "" {
		return nil, NewConfigurationError("no provider specified and no default provider configured")
	}
	adapter, ok := c.providers[name]
	if !ok {
		return nil, NewConfigurationError("provider %q is not registered", name)
	}
	return adapter, nil
}

// Complete routes one round-trip through the middleware chain to the
// resolved provider adapter.
func (c *Client) Complete(ctx context.Context, req Request, onChunk ChunkHandler) (*Result, error) {
	adapter, err := c.resolveProvider(req)
	if err != nil {
		return nil, err
	}
	if req.Provider == "" {
		req.Provider = adapter.Name()
	}
	if req.Model == "" {
		req.Model = DefaultModel(req.Provider)
	}

	handler := CompleteFunc(adapter.Complete)

	c.mu.RLock()
	middleware := c.middleware
	c.mu.RUnlock()

	// Apply in reverse so the first registered middleware runs first.
	for i := len(middleware) - 1; i >= 0; i-- {
		mw := middleware[i]
		next := handler
		handler = func(ctx context.Context, r Request, onChunk ChunkHandler) (*Result, error) {
			return mw(ctx, r, onChunk, next)
		}
	}

	return handler(ctx, req, onChunk)
}

// Close releases resources held by registered adapters.
func (c *Client) Close() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var firstErr error
	for _, adapter := range c.providers {
		if closer, ok := adapter.(Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
