package dispatch

import (
	"context"
	"fmt"
	"reflect"
)

// Invoker dispatches a method call by name. It is exported so consumers can
// depend on the contract instead of *Cache.
type Invoker interface {
	Invoke(ctx context.Context, target any, methodName string, argType reflect.Type, arg any) (any, error)
}

// InvokeAs is a type-safe wrapper around Invoker.Invoke. A nil result yields
// the zero R.
func InvokeAs[R any](ctx context.Context, inv Invoker, target any, methodName string, argType reflect.Type, arg any) (R, error) {
	var zero R

	result, err := inv.Invoke(ctx, target, methodName, argType, arg)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}

	typed, ok := result.(R)
	if !ok {
		return zero, fmt.Errorf("%w: got %T, want %s", ErrInvalidResultType, result, reflect.TypeFor[R]())
	}
	return typed, nil
}
