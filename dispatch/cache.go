package dispatch

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Option configures a Cache.
type Option func(*Cache)

// WithCompiler sets the compiler that builds thunks for cold keys.
func WithCompiler(compiler *Compiler) Option {
	return func(c *Cache) {
		if compiler != nil {
			c.compiler = compiler
		}
	}
}

// WithResolver sets the resolver used on cold keys.
func WithResolver(resolver Resolver) Option {
	return func(c *Cache) {
		if resolver != nil {
			c.resolver = resolver
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithName names the cache in log output.
func WithName(name string) Option {
	return func(c *Cache) {
		c.name = name
	}
}

// slot remembers the last key this cache dispatched and its thunk.
type slot struct {
	owner  reflect.Type
	method string
	arg    reflect.Type
	thunk  Thunk
}

func (s *slot) matches(key Key) bool {
	return s.owner != nil && s.owner == key.Owner && s.method == key.Method && s.arg == key.Arg
}

// Cache dispatches method calls by name. Each Cache owns a one-entry fast
// path slot and shares a Registry of compiled thunks with every other Cache
// built on the same Registry. Caches are cheap; create one per call site.
type Cache struct {
	name     string
	registry *Registry
	compiler *Compiler
	resolver Resolver
	logger   *zap.Logger

	mu   sync.Mutex
	slot slot

	stats counters
}

var _ Invoker = (*Cache)(nil)

// New creates a Cache backed by registry. A nil registry selects Default().
func New(registry *Registry, opts ...Option) *Cache {
	if registry == nil {
		registry = Default()
	}

	c := &Cache{
		registry: registry,
		compiler: DefaultCompiler(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.resolver == nil {
		c.resolver = NewResolver(WithResolverLogger(c.logger))
	}
	if c.name != "" {
		c.logger = c.logger.With(zap.String("cache", c.name))
	}

	return c
}

// Registry returns the registry the cache publishes into.
func (c *Cache) Registry() *Registry {
	return c.registry
}

// Invoke calls methodName on target with at most one argument.
//
// argType selects the overload by exact type. When argType is nil and arg is
// not, the dynamic type of arg is used; when both are nil the zero-argument
// overload is called. The result is nil for methods without a value result.
//
// The first call for a key runs through reflection and schedules compilation
// in the background; it never waits for the compiled thunk.
func (c *Cache) Invoke(ctx context.Context, target any, methodName string, argType reflect.Type, arg any) (any, error) {
	if target == nil {
		c.stats.failures.Add(1)
		return nil, ErrNilTarget
	}
	if methodName == "" {
		c.stats.failures.Add(1)
		return nil, ErrEmptyMethodName
	}

	argType, args, err := arguments(argType, arg)
	if err != nil {
		c.stats.failures.Add(1)
		return nil, err
	}

	key := Key{Owner: reflect.TypeOf(target), Method: methodName, Arg: argType}

	c.mu.Lock()
	if c.slot.matches(key) {
		thunk := c.slot.thunk
		c.mu.Unlock()

		if thunk.IsZero() {
			return nil, &InternalCacheInvariantError{Key: key}
		}
		c.stats.slotHits.Add(1)
		return thunk.Call(target, args)
	}

	if thunk, ok := c.registry.Lookup(key); ok {
		c.slot = slot{owner: key.Owner, method: key.Method, arg: key.Arg, thunk: thunk}
		c.mu.Unlock()

		c.stats.registryHits.Add(1)
		return thunk.Call(target, args)
	}
	c.mu.Unlock()

	return c.cold(ctx, key, target, args)
}

// cold resolves key, calls the method reflectively and hands the method to
// the compiler. The cache lock is not held.
func (c *Cache) cold(ctx context.Context, key Key, target any, args []any) (any, error) {
	m, err := c.resolver.Resolve(ctx, key)
	if err != nil {
		c.stats.failures.Add(1)
		return nil, err
	}

	c.stats.misses.Add(1)
	c.logger.Debug("cold dispatch", zap.Stringer("key", key), zap.String("method", m.Name))

	result, err := m.Invoke(target, args)

	c.compiler.Submit(m, c.publish(key))

	return result, err
}

// publish returns the callback a compile job uses to warm this cache's slot
// and the shared registry.
func (c *Cache) publish(key Key) func(Thunk) error {
	return func(thunk Thunk) error {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.slot = slot{owner: key.Owner, method: key.Method, arg: key.Arg, thunk: thunk}
		return c.registry.Publish(key, thunk)
	}
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return c.stats.snapshot()
}

// arguments normalizes the optional argument into its type and argument list.
func arguments(argType reflect.Type, arg any) (reflect.Type, []any, error) {
	if argType == nil {
		if arg == nil {
			return nil, nil, nil
		}
		return reflect.TypeOf(arg), []any{arg}, nil
	}

	if arg == nil {
		if !nillable(argType.Kind()) {
			return nil, nil, fmt.Errorf("%w: nil for %s", ErrArgumentMismatch, argType)
		}
		return argType, []any{nil}, nil
	}

	if at := reflect.TypeOf(arg); !at.AssignableTo(argType) {
		return nil, nil, fmt.Errorf("%w: %s for %s", ErrArgumentMismatch, at, argType)
	}
	return argType, []any{arg}, nil
}

func nillable(kind reflect.Kind) bool {
	switch kind {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}
