// ABOUTME: Structured error types for vision provider failures with retryability.
// ABOUTME: HTTP status codes map onto a small hierarchy so the retry loop and the describe step can react per class.
package provider

import "fmt"

// ProviderError is the base error for failures reported by a vision provider's
// API. Subtypes embed it and override IsRetryable.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Cause      error

	// RetryAfter is the server-suggested wait in seconds, when the response
	// carried a Retry-After header. Nil otherwise.
	RetryAfter *float64
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// IsRetryable is the conservative default for unclassified provider errors:
// unknown failures are assumed transient.
func (e *ProviderError) IsRetryable() bool { return true }

// AuthenticationError is a 401/403 response. Not retryable; the run should
// stop and tell the user to fix their credentials.
type AuthenticationError struct {
	ProviderError
}

func (e *AuthenticationError) Error() string     { return e.ProviderError.Error() }
func (e *AuthenticationError) Unwrap() error     { return e.ProviderError.Unwrap() }
func (e *AuthenticationError) IsRetryable() bool { return false }

func (e *AuthenticationError) As(target any) bool {
	if t, ok := target.(**ProviderError); ok {
		*t = &e.ProviderError
		return true
	}
	return false
}

// InvalidRequestError is a 400/404/413/422 response. Retrying the same image
// with the same payload cannot succeed.
type InvalidRequestError struct {
	ProviderError
}

func (e *InvalidRequestError) Error() string     { return e.ProviderError.Error() }
func (e *InvalidRequestError) Unwrap() error     { return e.ProviderError.Unwrap() }
func (e *InvalidRequestError) IsRetryable() bool { return false }

func (e *InvalidRequestError) As(target any) bool {
	if t, ok := target.(**ProviderError); ok {
		*t = &e.ProviderError
		return true
	}
	return false
}

// RateLimitError is a 429 response. Retryable, honoring RetryAfter when set.
type RateLimitError struct {
	ProviderError
}

func (e *RateLimitError) Error() string     { return e.ProviderError.Error() }
func (e *RateLimitError) Unwrap() error     { return e.ProviderError.Unwrap() }
func (e *RateLimitError) IsRetryable() bool { return true }

func (e *RateLimitError) As(target any) bool {
	if t, ok := target.(**ProviderError); ok {
		*t = &e.ProviderError
		return true
	}
	return false
}

// ServerError is a 5xx response. Retryable.
type ServerError struct {
	ProviderError
}

func (e *ServerError) Error() string     { return e.ProviderError.Error() }
func (e *ServerError) Unwrap() error     { return e.ProviderError.Unwrap() }
func (e *ServerError) IsRetryable() bool { return true }

func (e *ServerError) As(target any) bool {
	if t, ok := target.(**ProviderError); ok {
		*t = &e.ProviderError
		return true
	}
	return false
}

// NetworkError is a transport-level failure (connection refused, DNS, timeout)
// before any HTTP status was received. Retryable.
type NetworkError struct {
	Provider string
	Cause    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Provider, e.Cause)
}

func (e *NetworkError) Unwrap() error     { return e.Cause }
func (e *NetworkError) IsRetryable() bool { return true }

// ConfigurationError is a local setup problem (missing API key, unknown
// provider name). Not retryable.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string     { return e.Message }
func (e *ConfigurationError) IsRetryable() bool { return false }

// ErrorFromStatusCode maps an HTTP status code to the matching error type.
func ErrorFromStatusCode(provider string, statusCode int, message string, retryAfter *float64) error {
	base := ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		RetryAfter: retryAfter,
	}
	switch {
	case statusCode == 401 || statusCode == 403:
		return &AuthenticationError{ProviderError: base}
	case statusCode == 400 || statusCode == 404 || statusCode == 413 || statusCode == 422:
		return &InvalidRequestError{ProviderError: base}
	case statusCode == 429:
		return &RateLimitError{ProviderError: base}
	case statusCode >= 500 && statusCode <= 599:
		return &ServerError{ProviderError: base}
	default:
		return &base
	}
}

// IsRetryable reports whether an error advertises itself as retryable.
// Errors without the interface are not retried.
func IsRetryable(err error) bool {
	type retryable interface {
		IsRetryable() bool
	}
	if r, ok := err.(retryable); ok {
		return r.IsRetryable()
	}
	return false
}
