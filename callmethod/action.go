package callmethod

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/goliatone/go-dispatch-cache/dispatch"
	"go.uber.org/zap"
)

// ErrMissingMethodName is returned when neither the action nor the message
// names a method.
var ErrMissingMethodName = errors.New("callmethod: method name is required")

// Action calls a method on Target through a dispatch cache. The message
// handled by Invoke may override the method name and the parameter.
type Action struct {
	// Cache dispatches the call. When nil the action creates its own cache
	// on the default registry.
	Cache dispatch.Invoker

	Target        any
	MethodName    string
	ParameterType reflect.Type
	Parameter     any

	Logger *zap.Logger

	once sync.Once
}

// Invoke calls the method described by the action and msg. msg may be nil.
//
// A message addressed to a type Target is not assignable to is skipped and
// left unhandled. On success the result is stored into result messages and
// the message is marked handled.
func (a *Action) Invoke(ctx context.Context, msg Message) error {
	a.once.Do(a.init)

	if a.Target == nil {
		return fmt.Errorf("callmethod: %w", dispatch.ErrNilTarget)
	}

	name := a.MethodName
	mm, isMethod := msg.(MethodMessage)
	if isMethod {
		if want := mm.MethodTarget(); want != nil && !reflect.TypeOf(a.Target).AssignableTo(want) {
			a.Logger.Debug("message skipped",
				zap.Stringer("target", reflect.TypeOf(a.Target)),
				zap.Stringer("wants", want),
			)
			return nil
		}
		if n := mm.MethodName(); n != "" {
			name = n
		}
	}
	if name == "" {
		return ErrMissingMethodName
	}

	argType, arg := a.ParameterType, a.Parameter
	if pm, ok := msg.(ParameterMessage); ok {
		argType, arg = pm.ParameterType(), pm.MethodParameter()
	}

	result, err := a.Cache.Invoke(ctx, a.Target, name, argType, arg)
	if err != nil {
		return fmt.Errorf("callmethod %s: %w", name, err)
	}

	if msg == nil {
		return nil
	}
	if rm, ok := msg.(ResultMessage); ok {
		if err := rm.SetResult(result); err != nil {
			return err
		}
	}
	msg.SetHandled(true)

	return nil
}

func (a *Action) init() {
	if a.Logger == nil {
		a.Logger = zap.NewNop()
	}
	if a.Cache == nil {
		a.Cache = dispatch.New(nil, dispatch.WithLogger(a.Logger))
	}
}
