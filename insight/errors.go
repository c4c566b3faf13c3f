package insight

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMetrics is returned by BuildPrompt when a snapshot's memory
	// or disk total is zero and percentages cannot be computed.
	ErrInvalidMetrics = errors.New("insight: invalid metrics data")

	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("insight: API key is not set")
)

// TransportError is returned when the request never produced a response:
// DNS, connect, TLS, timeout or a broken body read.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("insight: transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is returned for any non-200 response. Body holds the raw
// response body, bounded by maxResponseBytes.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("insight: API error: %s (body: %s)", e.Status, e.Body)
	}
	return fmt.Sprintf("insight: API error: %s", e.Status)
}

// ParseError is returned when a 200 response does not carry the expected
// candidates[0].content.parts[0].text field.
type ParseError struct {
	Reason string
	Body   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("insight: unexpected response: %s", e.Reason)
}
