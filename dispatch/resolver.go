package dispatch

import (
	"context"
	"errors"
	"reflect"

	"github.com/goliatone/go-dispatch-cache/internal/resolvecache"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

// Overloaded is implemented by targets that expose several Go methods under
// one dispatch name. DispatchOverloads maps the dispatch name to the Go
// method names forming its overload set; the resolver picks the one whose
// parameter list matches the key exactly.
//
// The table must depend only on the type: it is read from the zero value of
// the owner type, never from the invocation target.
type Overloaded interface {
	DispatchOverloads() map[string][]string
}

// Resolver finds the method a Key refers to.
type Resolver interface {
	Resolve(ctx context.Context, key Key) (*Method, error)
}

// ResolverOption configures a resolver.
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	logger *zap.Logger
}

// WithResolverLogger sets the logger used by a resolver.
func WithResolverLogger(logger *zap.Logger) ResolverOption {
	return func(o *resolverOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newResolverOptions(opts []ResolverOption) resolverOptions {
	o := resolverOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// reflectResolver resolves keys with reflect.Type.MethodByName.
type reflectResolver struct {
	logger *zap.Logger
	tables *xsync.MapOf[reflect.Type, map[string][]string]
}

// NewResolver returns a Resolver that looks every key up through reflection.
func NewResolver(opts ...ResolverOption) Resolver {
	o := newResolverOptions(opts)
	return &reflectResolver{
		logger: o.logger,
		tables: xsync.NewMapOf[reflect.Type, map[string][]string](),
	}
}

// Resolve matches key against the exported methods of key.Owner. A method
// matches when it takes no parameter and key.Arg is nil, or takes exactly
// one parameter whose type is key.Arg.
func (r *reflectResolver) Resolve(_ context.Context, key Key) (*Method, error) {
	if key.Owner == nil {
		return nil, notFound(key, "owner type is nil")
	}

	names := r.candidates(key)

	var (
		found  []reflect.Method
		exists bool
	)
	for _, name := range names {
		rm, ok := key.Owner.MethodByName(name)
		if !ok {
			continue
		}
		exists = true
		if matchesParams(rm.Type, key.Arg) {
			found = append(found, rm)
		}
	}

	switch {
	case !exists:
		return nil, notFound(key, "no exported method named %s", key.Method)
	case len(found) == 0:
		return nil, notFound(key, "no overload takes the requested parameters")
	case len(found) > 1:
		return nil, notFound(key, "%d overloads take the requested parameters", len(found))
	}

	m, err := newMethod(key, found[0])
	if err != nil {
		return nil, err
	}

	r.logger.Debug("method resolved",
		zap.Stringer("key", key),
		zap.String("method", m.Name),
		zap.Stringer("kind", m.Kind),
	)
	return m, nil
}

// candidates returns the Go method names that may implement key.Method.
func (r *reflectResolver) candidates(key Key) []string {
	table, _ := r.tables.LoadOrCompute(key.Owner, func() map[string][]string {
		return overloadTable(key.Owner)
	})
	if names, ok := table[key.Method]; ok && len(names) > 0 {
		return names
	}
	return []string{key.Method}
}

// overloadTable reads the overload table from the zero value of owner.
func overloadTable(owner reflect.Type) (table map[string][]string) {
	if !owner.Implements(reflect.TypeOf((*Overloaded)(nil)).Elem()) {
		return nil
	}

	defer func() {
		if recover() != nil {
			table = nil
		}
	}()

	var zero reflect.Value
	if owner.Kind() == reflect.Ptr {
		zero = reflect.New(owner.Elem())
	} else {
		zero = reflect.Zero(owner)
	}

	return zero.Interface().(Overloaded).DispatchOverloads() //nolint:forcetypeassert
}

func matchesParams(ft reflect.Type, arg reflect.Type) bool {
	// ft includes the receiver as its first parameter
	if ft.IsVariadic() {
		return false
	}
	if arg == nil {
		return ft.NumIn() == 1
	}
	return ft.NumIn() == 2 && ft.In(1) == arg
}

// cachedResolver puts a sturdyc memo in front of another resolver.
type cachedResolver struct {
	next   Resolver
	memo   *resolvecache.Memo[*Method]
	logger *zap.Logger
}

func newCachedResolver(cfg resolvecache.Config, next Resolver, opts ...ResolverOption) (*cachedResolver, error) {
	memo, err := resolvecache.NewMemo[*Method](cfg)
	if err != nil {
		return nil, err
	}
	o := newResolverOptions(opts)
	return &cachedResolver{next: next, memo: memo, logger: o.logger}, nil
}

// Resolve returns the memoized resolution for key. Memo entries are keyed by
// Key.String, so an entry recorded for a different Key is ignored and the
// key is resolved directly.
func (r *cachedResolver) Resolve(ctx context.Context, key Key) (*Method, error) {
	m, err := r.memo.GetOrFetch(ctx, key.String(), func(ctx context.Context) (*Method, error) {
		return r.next.Resolve(ctx, key)
	})
	if err != nil {
		var nf *MethodNotFoundError
		if errors.As(err, &nf) && nf.Key != key {
			r.logger.Debug("resolution memo collision", zap.Stringer("key", key))
			return r.next.Resolve(ctx, key)
		}
		return nil, err
	}

	if m == nil || m.Key != key {
		r.logger.Debug("resolution memo collision", zap.Stringer("key", key))
		return r.next.Resolve(ctx, key)
	}
	return m, nil
}
