package callmethod

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrResultType is returned when a result does not fit the message result type.
var ErrResultType = errors.New("callmethod: result does not match message result type")

// Message is anything an Action can handle.
type Message interface {
	Handled() bool
	SetHandled(bool)
}

// MethodMessage names the method to call and, optionally, the target type it
// is meant for.
type MethodMessage interface {
	Message
	// MethodTarget returns the type the message is addressed to; nil matches any target.
	MethodTarget() reflect.Type
	MethodName() string
}

// ParameterMessage carries the single argument of the call.
type ParameterMessage interface {
	MethodMessage
	MethodParameter() any
	ParameterType() reflect.Type
}

// ResultMessage receives the result of the call.
type ResultMessage interface {
	MethodMessage
	SetResult(any) error
}

// Call holds the fields shared by all call messages.
type Call struct {
	Target  reflect.Type
	Method  string
	handled bool
}

func (c *Call) Handled() bool              { return c.handled }
func (c *Call) SetHandled(handled bool)    { c.handled = handled }
func (c *Call) MethodTarget() reflect.Type { return c.Target }
func (c *Call) MethodName() string         { return c.Method }

// CallAction calls a method without an argument and ignores its result.
type CallAction struct {
	Call
}

// NewCallAction creates a CallAction for method.
func NewCallAction(method string) *CallAction {
	return &CallAction{Call: Call{Method: method}}
}

// CallActionWith calls a method with one argument of type P and ignores its
// result. The overload is selected by P, not by the dynamic type of Parameter.
type CallActionWith[P any] struct {
	Call
	Parameter P
}

// NewCallActionWith creates a CallActionWith for method.
func NewCallActionWith[P any](method string, parameter P) *CallActionWith[P] {
	return &CallActionWith[P]{Call: Call{Method: method}, Parameter: parameter}
}

func (m *CallActionWith[P]) MethodParameter() any        { return m.Parameter }
func (m *CallActionWith[P]) ParameterType() reflect.Type { return reflect.TypeFor[P]() }

// CallFunc calls a method without an argument and stores its result.
type CallFunc[R any] struct {
	Call
	Result R
}

// NewCallFunc creates a CallFunc for method.
func NewCallFunc[R any](method string) *CallFunc[R] {
	return &CallFunc[R]{Call: Call{Method: method}}
}

func (m *CallFunc[R]) SetResult(v any) error {
	return assign(&m.Result, v)
}

// CallFuncWith calls a method with one argument of type P and stores its
// result.
type CallFuncWith[P, R any] struct {
	Call
	Parameter P
	Result    R
}

// NewCallFuncWith creates a CallFuncWith for method.
func NewCallFuncWith[P, R any](method string, parameter P) *CallFuncWith[P, R] {
	return &CallFuncWith[P, R]{Call: Call{Method: method}, Parameter: parameter}
}

func (m *CallFuncWith[P, R]) MethodParameter() any        { return m.Parameter }
func (m *CallFuncWith[P, R]) ParameterType() reflect.Type { return reflect.TypeFor[P]() }

func (m *CallFuncWith[P, R]) SetResult(v any) error {
	return assign(&m.Result, v)
}

// assign stores v into dst; a nil v stores the zero R.
func assign[R any](dst *R, v any) error {
	if v == nil {
		var zero R
		*dst = zero
		return nil
	}
	r, ok := v.(R)
	if !ok {
		return fmt.Errorf("%w: got %T, want %s", ErrResultType, v, reflect.TypeFor[R]())
	}
	*dst = r
	return nil
}

var (
	_ ParameterMessage = (*CallActionWith[int])(nil)
	_ ResultMessage    = (*CallFunc[int])(nil)
	_ ParameterMessage = (*CallFuncWith[int, int])(nil)
	_ ResultMessage    = (*CallFuncWith[int, int])(nil)
)
