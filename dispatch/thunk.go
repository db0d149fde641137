package dispatch

// ThunkKind tells the two thunk variants apart.
type ThunkKind uint8

const (
	KindNone     ThunkKind = iota // zero Thunk
	KindAction                    // no result, or only error
	KindFunction                  // one result, or (T, error)
)

// String returns the variant name.
func (k ThunkKind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindFunction:
		return "function"
	default:
		return "none"
	}
}

// ActionThunk performs a call and returns nothing but the method's own error.
type ActionThunk func(target any, args []any) error

// FunctionThunk performs a call and returns the boxed result.
type FunctionThunk func(target any, args []any) (any, error)

// Thunk is a compiled call to one resolved method. It holds exactly one of
// the two variants; the zero Thunk holds neither.
type Thunk struct {
	action   ActionThunk
	function FunctionThunk
}

// ActionOf wraps fn as an action Thunk.
func ActionOf(fn ActionThunk) Thunk {
	return Thunk{action: fn}
}

// FunctionOf wraps fn as a function Thunk.
func FunctionOf(fn FunctionThunk) Thunk {
	return Thunk{function: fn}
}

// Kind reports which variant t holds.
func (t Thunk) Kind() ThunkKind {
	switch {
	case t.action != nil:
		return KindAction
	case t.function != nil:
		return KindFunction
	default:
		return KindNone
	}
}

// IsZero reports whether t holds no variant.
func (t Thunk) IsZero() bool {
	return t.action == nil && t.function == nil
}

// Call invokes the thunk. Action thunks always yield a nil result.
func (t Thunk) Call(target any, args []any) (any, error) {
	if t.action != nil {
		return nil, t.action(target, args)
	}
	return t.function(target, args)
}
