package di

import (
	"context"

	"github.com/goliatone/go-dispatch-cache/callmethod"
	"github.com/goliatone/go-dispatch-cache/dispatch"
	"go.uber.org/zap"
)

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger shared by every component the container builds.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegistry makes the container publish into an existing registry, for
// example dispatch.Default().
func WithRegistry(registry *dispatch.Registry) Option {
	return func(c *Container) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// Container provides dependency injection for dispatch components.
// It owns one Registry, Compiler and Resolver and builds Cache instances
// that share them.
type Container struct {
	registry *dispatch.Registry
	compiler *dispatch.Compiler
	resolver dispatch.Resolver
	logger   *zap.Logger
	config   dispatch.Config
}

// NewContainer creates a new DI container with the provided configuration.
// The resolver is backed by the sturdyc resolution memo.
func NewContainer(config dispatch.Config, opts ...Option) (*Container, error) {
	c := &Container{
		logger: zap.NewNop(),
		config: config,
	}
	for _, opt := range opts {
		opt(c)
	}

	resolver, err := dispatch.NewCachedResolver(config, dispatch.WithResolverLogger(c.logger))
	if err != nil {
		return nil, err
	}
	c.resolver = resolver

	if c.registry == nil {
		c.registry = dispatch.NewRegistry()
	}
	c.compiler = dispatch.NewCompiler(
		dispatch.WithCompilerLogger(c.logger),
		dispatch.WithCoalescing(config.CoalesceCompiles),
	)

	return c, nil
}

// NewContainerWithDefaults creates a new DI container using default configuration.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(dispatch.DefaultConfig(), opts...)
}

// Registry returns the registry shared by the container's caches.
func (c *Container) Registry() *dispatch.Registry {
	return c.registry
}

// Compiler returns the compiler shared by the container's caches.
func (c *Container) Compiler() *dispatch.Compiler {
	return c.compiler
}

// Resolver returns the memoized resolver.
func (c *Container) Resolver() dispatch.Resolver {
	return c.resolver
}

// Logger returns the container logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() dispatch.Config {
	return c.config
}

// NewCache creates a Cache wired to the container's shared components.
// Create one per call site; name appears in log output.
func (c *Container) NewCache(name string) *dispatch.Cache {
	return dispatch.New(c.registry,
		dispatch.WithCompiler(c.compiler),
		dispatch.WithResolver(c.resolver),
		dispatch.WithLogger(c.logger),
		dispatch.WithName(name),
	)
}

// NewAction creates a callmethod.Action for target with its own cache.
func (c *Container) NewAction(name string, target any) *callmethod.Action {
	return &callmethod.Action{
		Cache:  c.NewCache(name),
		Target: target,
		Logger: c.logger,
	}
}

// Wait blocks until every pending compile job has finished or ctx is done.
func (c *Container) Wait(ctx context.Context) error {
	return c.compiler.Wait(ctx)
}
