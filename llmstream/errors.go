package llmstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// ClientError is the base error type for this package.
type ClientError struct {
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error { return e.Cause }

// ConfigurationError means the client or request was misconfigured
// (missing credentials, unknown provider, invalid parameter). It is fatal
// and raised before any network traffic.
type ConfigurationError struct{ ClientError }

// TransportError means the provider round-trip failed: a network error or
// a non-2xx HTTP status. StatusCode is zero for pure network failures.
type TransportError struct {
	ClientError
	Provider   string
	StatusCode int
	Retryable  bool
	RetryAfter *float64 // seconds, from the Retry-After header when present
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("[%s] %s", e.Provider, e.ClientError.Error())
	}
	return fmt.Sprintf("[%s] %s (status=%d, retryable=%v)", e.Provider, e.Message, e.StatusCode, e.Retryable)
}

// NewConfigurationError creates a ConfigurationError with a formatted message.
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{ClientError{Message: fmt.Sprintf(format, args...)}}
}

// NewNetworkError wraps a transport-level failure (no HTTP status).
func NewNetworkError(provider string, cause error) *TransportError {
	return &TransportError{
		ClientError: ClientError{Message: "request failed", Cause: cause},
		Provider:    provider,
		Retryable:   true,
	}
}

// ErrorFromResponse maps a non-2xx HTTP response to a TransportError.
// Client errors are permanent; 408/429 and server errors are retryable.
func ErrorFromResponse(provider string, resp *http.Response, body []byte) *TransportError {
	message := providerErrorMessage(body)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	te := &TransportError{
		ClientError: ClientError{Message: message},
		Provider:    provider,
		StatusCode:  resp.StatusCode,
	}
	switch {
	case resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		te.Retryable = true
	}
	if after := resp.Header.Get("Retry-After"); after != "" {
		if seconds, err := strconv.ParseFloat(after, 64); err == nil {
			te.RetryAfter = &seconds
		}
	}
	return te
}

// providerErrorMessage extracts the error message from a provider error
// body of the form {"error": {"message": ..., "type": ...}}.
func providerErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error.Message == "" {
		return ""
	}
	if payload.Error.Type != "" {
		return payload.Error.Type + ": " + payload.Error.Message
	}
	return payload.Error.Message
}

// IsRetryable reports whether the error is safe to retry.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return false
}

// IsConfiguration reports whether the error is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
