package workflow

import (
	"errors"
	"fmt"
)

// ErrEmptyReply is returned when the webhook answers 200 but the body has no
// usable output field.
var ErrEmptyReply = errors.New("workflow reply has no output")

// NetworkError wraps a transport-level failure (DNS, connect, timeout). The
// request never produced an HTTP status.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("workflow request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AuthError means the webhook rejected our credentials (401 or 403).
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("workflow rejected credentials with status %d", e.Status)
}

// UpstreamError is any other non-200 reply, keeping the status and body so
// callers can surface them to the user.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("workflow returned status %d: %s", e.Status, e.Body)
}
