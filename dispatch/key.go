package dispatch

import (
	"reflect"
	"strconv"
	"strings"
)

// KeySeparator defines the delimiter used between key segments.
const KeySeparator = "::"

// noArgument is the rendering of an absent argument type.
const noArgument = "void"

// Key identifies one dispatchable overload: the dynamic type of the target,
// the method name used to dispatch, and the single argument type. A nil Arg
// selects the zero-argument overload.
//
// Key is comparable and is used directly as a map key. Two keys are equal
// when all three fields are identical; *T and T are different owners.
type Key struct {
	Owner  reflect.Type
	Method string
	Arg    reflect.Type
}

// KeyFor builds the Key for calling method on target with an optional argument type.
func KeyFor(target any, method string, arg reflect.Type) Key {
	return Key{Owner: reflect.TypeOf(target), Method: method, Arg: arg}
}

// String renders the key as owner::method::argument using package-qualified
// type names, e.g. "*github.com/acme/app.View::Greet::int".
func (k Key) String() string {
	parts := []string{typeName(k.Owner), k.Method, noArgument}
	if k.Arg != nil {
		parts[2] = typeName(k.Arg)
	}
	return strings.Join(parts, KeySeparator)
}

// typeName renders t with full package paths for named types so keys coming
// from different packages that share a package name do not collide.
func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}

	if t.Name() != "" {
		if pkg := t.PkgPath(); pkg != "" {
			return pkg + "." + t.Name()
		}
		return t.Name()
	}

	switch t.Kind() {
	case reflect.Ptr:
		return "*" + typeName(t.Elem())
	case reflect.Slice:
		return "[]" + typeName(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + typeName(t.Elem())
	case reflect.Map:
		return "map[" + typeName(t.Key()) + "]" + typeName(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + typeName(t.Elem())
		case reflect.SendDir:
			return "chan<- " + typeName(t.Elem())
		default:
			return "chan " + typeName(t.Elem())
		}
	default:
		// unnamed func, struct and interface types
		return t.String()
	}
}
