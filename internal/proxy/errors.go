package proxy

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyDispatched is returned when Dispatch is called on a
	// dispatcher that was already used.
	ErrAlreadyDispatched = errors.New("request already dispatched")

	// ErrNotDispatched is returned when the result is read before
	// Dispatch completed successfully.
	ErrNotDispatched = errors.New("request not dispatched")
)

// UnsupportedMethodError is returned for verbs without an action.
type UnsupportedMethodError struct {
	Method Method
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported method %q", e.Method.String())
}

// IsUnsupportedMethod reports whether err is an UnsupportedMethodError.
func IsUnsupportedMethod(err error) bool {
	var methodErr *UnsupportedMethodError
	return errors.As(err, &methodErr)
}
