package core

import (
	"errors"
	"fmt"
)

// ErrMalformedMessage marks a fetched message whose shape cannot be parsed
// (missing payload or headers). Such messages are skipped without aborting
// the scan.
var ErrMalformedMessage = errors.New("malformed message")

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("record not found")

// SourceError is a failure talking to the message source. It is not
// recoverable within a scan and propagates to the caller.
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("message source: %s: %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// AuthError is a credential failure at the message source. Callers should
// surface it as a request to reauthorize rather than a transient fault.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("message source auth: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsAuthError reports whether err is (or wraps) an AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
