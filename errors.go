package rainmachine

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// ErrNotAuthenticated is returned when a resource call is made before
// Authenticate has succeeded. No network call is attempted in that case.
var ErrNotAuthenticated = errors.New("client is not authenticated; call Authenticate first")

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeValidation indicates bad caller input; the request never
	// reached the network
	ErrTypeValidation ErrorType = iota
	// ErrTypeNetwork indicates a network-level error (unreachable host,
	// timeout, connection reset)
	ErrTypeNetwork
	// ErrTypeAuthentication indicates the controller rejected the
	// credentials, or an authorization failure survived the single retry
	ErrTypeAuthentication
	// ErrTypeRequest indicates the controller returned a non-2xx status
	// for a well-formed, authorized request
	ErrTypeRequest
	// ErrTypeResponse indicates the response body did not match the
	// expected shape
	ErrTypeResponse
	// ErrTypeDiscovery indicates no controller was found within the
	// scan window
	ErrTypeDiscovery
)

// NetworkErrorSubtype provides more specific network error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeAuthentication:
		return "Authentication Error"
	case ErrTypeRequest:
		return "Request Error"
	case ErrTypeResponse:
		return "Response Error"
	case ErrTypeDiscovery:
		return "Discovery Failed"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ControllerError represents an error from talking to a RainMachine
// controller (or from refusing to, in the validation case).
type ControllerError struct {
	Type           ErrorType           // Category of error
	Message        string              // Human-readable error message
	StatusCode     int                 // HTTP status code (if applicable)
	Err            error               // Underlying error (if any)
	NetworkSubtype NetworkErrorSubtype // More specific network error type
	Host           string              // Controller host (for context)
	Retryable      bool                // Whether the error is retryable
}

// Error implements the error interface
func (e *ControllerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ControllerError) Unwrap() error {
	return e.Err
}

// classifyNetworkError analyzes a transport failure and returns a
// ControllerError with the most specific network subtype it can determine.
func classifyNetworkError(err error, host string) *ControllerError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &ControllerError{
			Type:           ErrTypeNetwork,
			Message:        "request timed out",
			Err:            err,
			NetworkSubtype: NetworkErrorTimeout,
			Host:           host,
			Retryable:      true,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &ControllerError{
			Type:           ErrTypeNetwork,
			Message:        fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:            err,
			NetworkSubtype: NetworkErrorDNS,
			Host:           host,
			Retryable:      false,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return &ControllerError{
				Type:           ErrTypeNetwork,
				Message:        "controller refused connection",
				Err:            err,
				NetworkSubtype: NetworkErrorConnectionRefused,
				Host:           host,
				Retryable:      true,
			}
		}
		if errors.Is(opErr.Err, syscall.EHOSTUNREACH) {
			return &ControllerError{
				Type:           ErrTypeNetwork,
				Message:        "host unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorHostUnreachable,
				Host:           host,
				Retryable:      true,
			}
		}
		if errors.Is(opErr.Err, syscall.ENETUNREACH) {
			return &ControllerError{
				Type:           ErrTypeNetwork,
				Message:        "network unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorNetworkUnreachable,
				Host:           host,
				Retryable:      true,
			}
		}
	}

	// url.Error wraps the interesting error; classify what is inside
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
		classified := classifyNetworkError(urlErr.Err, host)
		classified.Err = err
		return classified
	}

	return &ControllerError{
		Type:           ErrTypeNetwork,
		Message:        "network error occurred",
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
		Host:           host,
		Retryable:      true,
	}
}

// newValidationError creates an error for bad caller input
func newValidationError(message string) *ControllerError {
	return &ControllerError{
		Type:      ErrTypeValidation,
		Message:   message,
		Retryable: false,
	}
}

// newAuthenticationError creates an error for rejected credentials
func newAuthenticationError(message string, err error) *ControllerError {
	return &ControllerError{
		Type:       ErrTypeAuthentication,
		Message:    message,
		StatusCode: 401,
		Err:        err,
		Retryable:  false,
	}
}

// newRequestError creates an error for a non-2xx controller response
func newRequestError(statusCode int, message string) *ControllerError {
	return &ControllerError{
		Type:       ErrTypeRequest,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode >= 500,
	}
}

// newResponseError creates an error for an undecodable or incomplete body
func newResponseError(message string, err error) *ControllerError {
	return &ControllerError{
		Type:      ErrTypeResponse,
		Message:   message,
		Err:       err,
		Retryable: false,
	}
}

// newDiscoveryError creates an error for a scan that found no controllers
func newDiscoveryError(message string, err error) *ControllerError {
	return &ControllerError{
		Type:      ErrTypeDiscovery,
		Message:   message,
		Err:       err,
		Retryable: true,
	}
}

func isErrorType(err error, et ErrorType) bool {
	var ctrlErr *ControllerError
	if errors.As(err, &ctrlErr) {
		return ctrlErr.Type == et
	}
	return false
}

// IsValidationError checks if an error was caused by bad caller input
func IsValidationError(err error) bool {
	return isErrorType(err, ErrTypeValidation)
}

// IsNetworkError checks if an error is a network error (including timeout,
// connection refused, DNS failure)
func IsNetworkError(err error) bool {
	return isErrorType(err, ErrTypeNetwork)
}

// IsAuthenticationError checks if an error is an authentication error
func IsAuthenticationError(err error) bool {
	return isErrorType(err, ErrTypeAuthentication)
}

// IsRequestError checks if the controller rejected a specific request
func IsRequestError(err error) bool {
	return isErrorType(err, ErrTypeRequest)
}

// IsResponseError checks if a response body failed to decode
func IsResponseError(err error) bool {
	return isErrorType(err, ErrTypeResponse)
}

// IsDiscoveryError checks if a scan completed without finding a controller
func IsDiscoveryError(err error) bool {
	return isErrorType(err, ErrTypeDiscovery)
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var ctrlErr *ControllerError
	if errors.As(err, &ctrlErr) {
		return ctrlErr.Retryable
	}
	return false
}

// ShortErrorMessage returns a concise, user-friendly error message
func ShortErrorMessage(err error) string {
	var ctrlErr *ControllerError
	if !errors.As(err, &ctrlErr) {
		return err.Error()
	}

	switch ctrlErr.Type {
	case ErrTypeValidation:
		return ctrlErr.Message
	case ErrTypeNetwork:
		switch ctrlErr.NetworkSubtype {
		case NetworkErrorTimeout:
			return "Controller not responding (timeout)"
		case NetworkErrorConnectionRefused:
			return "Controller refused connection - check port"
		case NetworkErrorDNS:
			return "Cannot resolve controller hostname"
		case NetworkErrorHostUnreachable:
			return "Controller unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable - check WiFi connection"
		default:
			return "Network error - check connection"
		}
	case ErrTypeAuthentication:
		return "Authentication failed - check password"
	case ErrTypeRequest:
		return fmt.Sprintf("Controller error (HTTP %d)", ctrlErr.StatusCode)
	case ErrTypeResponse:
		return "Failed to parse controller response"
	case ErrTypeDiscovery:
		return "No controllers found on the local network"
	default:
		return ctrlErr.Message
	}
}
