package rainmachine

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"testing"
)

// timeoutError mimics a transport timeout
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantSubtype NetworkErrorSubtype
		wantRetry   bool
	}{
		{
			name:        "timeout",
			err:         timeoutError{},
			wantSubtype: NetworkErrorTimeout,
			wantRetry:   true,
		},
		{
			name:        "dns failure",
			err:         &net.DNSError{Err: "no such host", Name: "rainmachine.local"},
			wantSubtype: NetworkErrorDNS,
			wantRetry:   false,
		},
		{
			name:        "connection refused",
			err:         &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED},
			wantSubtype: NetworkErrorConnectionRefused,
			wantRetry:   true,
		},
		{
			name:        "host unreachable",
			err:         &net.OpError{Op: "dial", Err: syscall.EHOSTUNREACH},
			wantSubtype: NetworkErrorHostUnreachable,
			wantRetry:   true,
		},
		{
			name:        "network unreachable",
			err:         &net.OpError{Op: "dial", Err: syscall.ENETUNREACH},
			wantSubtype: NetworkErrorNetworkUnreachable,
			wantRetry:   true,
		},
		{
			name:        "wrapped in url.Error",
			err:         &url.Error{Op: "Get", URL: "https://192.168.1.100:8080", Err: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}},
			wantSubtype: NetworkErrorConnectionRefused,
			wantRetry:   true,
		},
		{
			name:        "unknown transport error",
			err:         errors.New("connection reset by peer"),
			wantSubtype: NetworkErrorGeneral,
			wantRetry:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyNetworkError(tt.err, "192.168.1.100")

			if classified.Type != ErrTypeNetwork {
				t.Errorf("Type = %v, want ErrTypeNetwork", classified.Type)
			}
			if classified.NetworkSubtype != tt.wantSubtype {
				t.Errorf("NetworkSubtype = %v, want %v", classified.NetworkSubtype, tt.wantSubtype)
			}
			if classified.Retryable != tt.wantRetry {
				t.Errorf("Retryable = %v, want %v", classified.Retryable, tt.wantRetry)
			}
			if classified.Host != "192.168.1.100" {
				t.Errorf("Host = %q, want 192.168.1.100", classified.Host)
			}
			if !IsNetworkError(classified) {
				t.Error("IsNetworkError() = false")
			}
		})
	}
}

func TestClassifyNetworkErrorNil(t *testing.T) {
	if classifyNetworkError(nil, "host") != nil {
		t.Error("classifyNetworkError(nil) should return nil")
	}
}

func TestErrorTypeCheckers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
	}{
		{"validation", newValidationError("bad id"), IsValidationError},
		{"authentication", newAuthenticationError("rejected", nil), IsAuthenticationError},
		{"request", newRequestError(500, "boom"), IsRequestError},
		{"response", newResponseError("bad body", nil), IsResponseError},
		{"discovery", newDiscoveryError("nothing found", nil), IsDiscoveryError},
	}

	checkers := map[string]func(error) bool{
		"validation":     IsValidationError,
		"authentication": IsAuthenticationError,
		"request":        IsRequestError,
		"response":       IsResponseError,
		"discovery":      IsDiscoveryError,
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.checker(tt.err) {
				t.Errorf("checker for %s returned false for its own error", tt.name)
			}
			// Every other checker must reject it
			for name, other := range checkers {
				if name == tt.name {
					continue
				}
				if other(tt.err) {
					t.Errorf("%s checker matched a %s error", name, tt.name)
				}
			}
		})
	}
}

func TestErrorCheckersRejectPlainErrors(t *testing.T) {
	plain := errors.New("something else")
	for name, checker := range map[string]func(error) bool{
		"IsValidationError":     IsValidationError,
		"IsNetworkError":        IsNetworkError,
		"IsAuthenticationError": IsAuthenticationError,
		"IsRequestError":        IsRequestError,
		"IsResponseError":       IsResponseError,
		"IsDiscoveryError":      IsDiscoveryError,
		"IsRetryable":           IsRetryable,
	} {
		if checker(plain) {
			t.Errorf("%s(plain error) = true, want false", name)
		}
		if checker(nil) {
			t.Errorf("%s(nil) = true, want false", name)
		}
	}
}

func TestRequestErrorRetryability(t *testing.T) {
	if IsRetryable(newRequestError(404, "not found")) {
		t.Error("4xx request errors must not be retryable")
	}
	if !IsRetryable(newRequestError(503, "busy")) {
		t.Error("5xx request errors should be retryable")
	}
}

func TestControllerErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := newResponseError("decode failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should see through ControllerError to the cause")
	}

	wrapped := fmt.Errorf("fetching zones: %w", err)
	if !IsResponseError(wrapped) {
		t.Error("IsResponseError should match through fmt.Errorf wrapping")
	}
}

func TestShortErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation passes message through", newValidationError("zone id must be a positive integer, got -1"), "zone id must be a positive integer, got -1"},
		{"timeout", classifyNetworkError(timeoutError{}, "h"), "Controller not responding (timeout)"},
		{"refused", classifyNetworkError(&net.OpError{Err: syscall.ECONNREFUSED}, "h"), "Controller refused connection - check port"},
		{"authentication", newAuthenticationError("nope", nil), "Authentication failed - check password"},
		{"request", newRequestError(404, "missing"), "Controller error (HTTP 404)"},
		{"response", newResponseError("bad body", nil), "Failed to parse controller response"},
		{"discovery", newDiscoveryError("nothing", nil), "No controllers found on the local network"},
		{"plain error", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortErrorMessage(tt.err); got != tt.want {
				t.Errorf("ShortErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		et   ErrorType
		want string
	}{
		{ErrTypeValidation, "Validation Error"},
		{ErrTypeNetwork, "Network Error"},
		{ErrTypeAuthentication, "Authentication Error"},
		{ErrTypeRequest, "Request Error"},
		{ErrTypeResponse, "Response Error"},
		{ErrTypeDiscovery, "Discovery Failed"},
		{ErrorType(42), "ErrorType(42)"},
	}

	for _, tt := range tests {
		if got := tt.et.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", tt.et, got, tt.want)
		}
	}
}
