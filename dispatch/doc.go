// Package dispatch provides a two-tier inline cache for calling methods by name.
//
// # Overview
//
// A Cache resolves a method by name and an optional single argument type on
// the dynamic type of a target, calls it, and upgrades repeated calls from
// reflective lookup to a compiled thunk:
//
//   - Fast path slot: a one-entry memo private to each Cache
//   - Registry: a shared store of compiled thunks, keyed by Key
//   - Compiler: builds thunks in the background and publishes them
//
// The first call for a Key is always served through reflection and never
// waits for compilation. Later calls on any Cache sharing the Registry are
// served by the compiled thunk.
//
// # Basic Usage
//
//	registry := dispatch.NewRegistry()
//	c := dispatch.New(registry)
//
//	out, err := c.Invoke(ctx, view, "Greet", nil, nil)
//	n, err := dispatch.InvokeAs[int](ctx, c, view, "Greet", reflect.TypeFor[int](), 21)
//
// # Overloads
//
// Go has no method overloading. A type exposes several methods under one
// dispatch name by implementing Overloaded:
//
//	func (v *View) DispatchOverloads() map[string][]string {
//		return map[string][]string{"Greet": {"Greet", "GreetInt"}}
//	}
//
// The resolver picks the single candidate whose parameter list matches the
// Key exactly: no parameter for a nil argument type, or one parameter of the
// same type. No widening is performed; a string passed with argument type
// any selects the overload that takes any.
//
// # Result Shapes
//
// Methods may return nothing, error, a single value, or a value and an error.
// The first two compile to action thunks, the others to function thunks. A
// returned error is passed through Invoke unchanged. Only exported methods
// can be dispatched.
//
// # Concurrency
//
// A Cache holds its mutex only while reading or writing its slot and probing
// the Registry, never across a method call. Caches never coordinate with each
// other; racing misses may compile the same Key more than once and the last
// publish wins. Enable WithCoalescing on the Compiler to share one build
// between concurrent jobs for a Key.
//
// Compile jobs cannot be cancelled. Compiler.Wait drains them, which makes
// the warm path deterministic in tests.
package dispatch
