// ABOUTME: Tests for provider error classification and retryability.
package provider

import (
	"errors"
	"testing"
)

func TestErrorFromStatusCode(t *testing.T) {
	cases := []struct {
		status    int
		wantType  string
		retryable bool
	}{
		{400, "*provider.InvalidRequestError", false},
		{401, "*provider.AuthenticationError", false},
		{403, "*provider.AuthenticationError", false},
		{404, "*provider.InvalidRequestError", false},
		{413, "*provider.InvalidRequestError", false},
		{422, "*provider.InvalidRequestError", false},
		{429, "*provider.RateLimitError", true},
		{500, "*provider.ServerError", true},
		{503, "*provider.ServerError", true},
		{418, "*provider.ProviderError", true},
	}
	for _, tc := range cases {
		err := ErrorFromStatusCode("test", tc.status, "boom", nil)
		if got := typeName(err); got != tc.wantType {
			t.Errorf("status %d: got %s, want %s", tc.status, got, tc.wantType)
		}
		if IsRetryable(err) != tc.retryable {
			t.Errorf("status %d: IsRetryable = %v, want %v", tc.status, IsRetryable(err), tc.retryable)
		}
	}
}

func typeName(err error) string {
	switch err.(type) {
	case *AuthenticationError:
		return "*provider.AuthenticationError"
	case *InvalidRequestError:
		return "*provider.InvalidRequestError"
	case *RateLimitError:
		return "*provider.RateLimitError"
	case *ServerError:
		return "*provider.ServerError"
	case *ProviderError:
		return "*provider.ProviderError"
	default:
		return "unknown"
	}
}

func TestErrorsAsProviderError(t *testing.T) {
	err := ErrorFromStatusCode("openai", 429, "slow down", nil)
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatal("RateLimitError should match *ProviderError via errors.As")
	}
	if pe.StatusCode != 429 || pe.Provider != "openai" {
		t.Errorf("extracted ProviderError = %+v", pe)
	}
}

func TestNetworkErrorRetryable(t *testing.T) {
	err := &NetworkError{Provider: "ollama", Cause: errors.New("connection refused")}
	if !IsRetryable(err) {
		t.Error("network errors must be retryable")
	}
	if !errors.Is(err, err.Cause) {
		t.Error("NetworkError must unwrap its cause")
	}
}

func TestConfigurationErrorNotRetryable(t *testing.T) {
	if IsRetryable(&ConfigurationError{Message: "no key"}) {
		t.Error("configuration errors must not be retried")
	}
}

func TestPlainErrorNotRetryable(t *testing.T) {
	if IsRetryable(errors.New("plain")) {
		t.Error("errors without the retryable interface must not be retried")
	}
}
