package api

import (
	"errors"
	"fmt"
)

// ErrSessionInvalid is returned by every remote surface when the
// backend no longer accepts the session. Consumers must treat it as a
// logout signal, never as a retryable error.
var ErrSessionInvalid = errors.New("session invalid")

// NetworkError wraps transport-level failures. These are transient and
// retryable by explicit user action only.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %s", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError indicates the backend responded with a payload that does
// not match the expected schema. Treated like a network failure by the
// UI-facing layers.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable response from %s: %s", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func IsSessionInvalid(err error) bool {
	return errors.Is(err, ErrSessionInvalid)
}
