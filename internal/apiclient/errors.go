package apiclient

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

var (
	// ErrSessionExpired is returned instead of a response when a service
	// answered 401. The session has already been cleared.
	ErrSessionExpired = errors.New("session expired")

	// The transport messages are shown to users verbatim, so they keep
	// sentence case and punctuation.
	ErrServiceUnavailable = errors.New("Service unavailable. Please check if the server is running.") //nolint:staticcheck // ST1005: user-facing text
	ErrNetwork            = errors.New("Network error. Please try again.")                            //nolint:staticcheck // ST1005: user-facing text
)

// TransportError is returned when a request never produced a response.
// It matches ErrServiceUnavailable or ErrNetwork with errors.Is.
type TransportError struct {
	Kind error
	URL  string
	Err  error
}

func (e *TransportError) Error() string {
	return e.Kind.Error()
}

func (e *TransportError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func newTransportError(url string, err error) *TransportError {
	kind := ErrNetwork
	if isUnreachable(err) {
		kind = ErrServiceUnavailable
	}
	return &TransportError{Kind: kind, URL: url, Err: err}
}

// isUnreachable reports whether err means the service could not be connected to
func isUnreachable(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// APIError is a non-2xx answer from a service
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.StatusCode, e.Message)
}
