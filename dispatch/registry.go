package dispatch

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
)

// Registry is the shared store of compiled thunks, split into one map per
// thunk variant. It is safe for concurrent use by any number of Cache
// instances and never forgets an entry.
type Registry struct {
	actions   *xsync.MapOf[Key, ActionThunk]
	functions *xsync.MapOf[Key, FunctionThunk]
}

var defaultRegistry = NewRegistry()

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		actions:   xsync.NewMapOf[Key, ActionThunk](),
		functions: xsync.NewMapOf[Key, FunctionThunk](),
	}
}

// Default returns the process-wide Registry.
func Default() *Registry {
	return defaultRegistry
}

// Lookup returns the thunk stored for key, probing actions then functions.
func (r *Registry) Lookup(key Key) (Thunk, bool) {
	if fn, ok := r.actions.Load(key); ok {
		return ActionOf(fn), true
	}
	if fn, ok := r.functions.Load(key); ok {
		return FunctionOf(fn), true
	}
	return Thunk{}, false
}

// Publish stores thunk under key, overwriting any thunk of the same variant.
// A key never holds both variants; publishing the other variant fails with
// ErrVariantConflict.
func (r *Registry) Publish(key Key, thunk Thunk) error {
	switch thunk.Kind() {
	case KindAction:
		if _, ok := r.functions.Load(key); ok {
			return fmt.Errorf("%w: %s", ErrVariantConflict, key)
		}
		r.actions.Store(key, thunk.action)
	case KindFunction:
		if _, ok := r.actions.Load(key); ok {
			return fmt.Errorf("%w: %s", ErrVariantConflict, key)
		}
		r.functions.Store(key, thunk.function)
	default:
		return fmt.Errorf("publish %s: empty thunk", key)
	}
	return nil
}

// Count returns how many thunks are stored for key across both variants.
func (r *Registry) Count(key Key) int {
	n := 0
	if _, ok := r.actions.Load(key); ok {
		n++
	}
	if _, ok := r.functions.Load(key); ok {
		n++
	}
	return n
}

// Len returns the total number of stored thunks.
func (r *Registry) Len() int {
	return r.actions.Size() + r.functions.Size()
}

// Keys returns a snapshot of every key that holds a thunk. Order is unspecified.
func (r *Registry) Keys() []Key {
	keys := make([]Key, 0, r.Len())
	r.actions.Range(func(k Key, _ ActionThunk) bool {
		keys = append(keys, k)
		return true
	})
	r.functions.Range(func(k Key, _ FunctionThunk) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}
