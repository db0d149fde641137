package dispatch

import (
	"errors"
	"fmt"
)

// Error types.
var (
	ErrMethodNotFound    = errors.New("method not found")
	ErrInternalInvariant = errors.New("dispatch cache invariant violated")
	ErrNilTarget         = errors.New("invocation target is nil")
	ErrEmptyMethodName   = errors.New("method name is empty")
	ErrArgumentMismatch  = errors.New("argument does not match argument type")
	ErrInvalidResultType = errors.New("result has unexpected type")
	ErrVariantConflict   = errors.New("key already holds the other thunk variant")
	ErrCompileFailed     = errors.New("thunk compilation failed")
)

// MethodNotFoundError is returned when no method on the owner type matches the
// method name and the exact parameter list of a Key.
type MethodNotFoundError struct {
	Key    Key
	Reason string
}

// Error implements the error interface.
func (e *MethodNotFoundError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", ErrMethodNotFound, e.Key)
	}
	return fmt.Sprintf("%s: %s: %s", ErrMethodNotFound, e.Key, e.Reason)
}

// Is reports ErrMethodNotFound as the sentinel.
func (e *MethodNotFoundError) Is(target error) bool {
	return target == ErrMethodNotFound
}

// InternalCacheInvariantError means the fast-path slot matched a key but held
// no thunk. It is never expected at runtime.
type InternalCacheInvariantError struct {
	Key Key
}

// Error implements the error interface.
func (e *InternalCacheInvariantError) Error() string {
	return fmt.Sprintf("%s: slot matched %s without a thunk", ErrInternalInvariant, e.Key)
}

// Is reports ErrInternalInvariant as the sentinel.
func (e *InternalCacheInvariantError) Is(target error) bool {
	return target == ErrInternalInvariant
}

func notFound(key Key, format string, args ...any) error {
	return &MethodNotFoundError{Key: key, Reason: fmt.Sprintf(format, args...)}
}
