package dispatch

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Method is a resolved, dispatchable method of an owner type.
type Method struct {
	// Key is the key the method was resolved for.
	Key Key
	// Name is the Go method name, which differs from Key.Method when the
	// owner declares an overload family.
	Name string
	// Index is the method index in the owner's method set.
	Index int
	// Func is the method expression; its first parameter is the receiver.
	Func reflect.Value
	// Kind is the thunk variant the method compiles to.
	Kind ThunkKind

	param        reflect.Type
	returnsError bool
}

// Param returns the parameter type, or nil for zero-argument methods.
func (m *Method) Param() reflect.Type {
	return m.param
}

// ReturnsError reports whether the last result of the method is an error.
func (m *Method) ReturnsError() bool {
	return m.returnsError
}

// newMethod checks the result list of rm and builds a Method for key.
func newMethod(key Key, rm reflect.Method) (*Method, error) {
	ft := rm.Type
	m := &Method{
		Key:   key,
		Name:  rm.Name,
		Index: rm.Index,
		Func:  rm.Func,
	}
	if ft.NumIn() == 2 {
		m.param = ft.In(1)
	}

	switch ft.NumOut() {
	case 0:
		m.Kind = KindAction
	case 1:
		if ft.Out(0) == errorType {
			m.Kind = KindAction
			m.returnsError = true
		} else {
			m.Kind = KindFunction
		}
	case 2:
		if ft.Out(1) != errorType {
			return nil, notFound(key, "method %s returns two results and the second is not error", rm.Name)
		}
		m.Kind = KindFunction
		m.returnsError = true
	default:
		return nil, notFound(key, "method %s returns %d results", rm.Name, ft.NumOut())
	}

	return m, nil
}

// Invoke calls the method on target through reflection, looking the method
// up on the target value. This is the slow path used before a thunk exists.
func (m *Method) Invoke(target any, args []any) (any, error) {
	recv := reflect.ValueOf(target)
	if recv.Type() != m.Key.Owner {
		return nil, fmt.Errorf("%w: target %s is not %s", ErrArgumentMismatch, recv.Type(), m.Key.Owner)
	}

	fn := recv.Method(m.Index)

	var in []reflect.Value
	if m.param != nil {
		in = []reflect.Value{m.argValue(args)}
	}

	return m.results(fn.Call(in))
}

func (m *Method) argValue(args []any) reflect.Value {
	if len(args) == 0 || args[0] == nil {
		return reflect.Zero(m.param)
	}
	return reflect.ValueOf(args[0])
}

// results unboxes the values returned by a call according to the method shape.
func (m *Method) results(out []reflect.Value) (any, error) {
	switch m.Kind {
	case KindAction:
		if m.returnsError {
			return nil, asError(out[0])
		}
		return nil, nil
	default:
		if m.returnsError {
			if err := asError(out[1]); err != nil {
				return nil, err
			}
		}
		return out[0].Interface(), nil
	}
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error) //nolint:forcetypeassert
}
