package resolvecache

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc backed resolution memo.
// It encapsulates the core sturdyc options needed for cache initialization.
type Config struct {
	// Capacity defines the maximum number of resolution outcomes the memo keeps.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Must be greater than 0. Default: 64
	NumShards int

	// TTL is how long a resolution outcome stays in the memo.
	// Method sets never change at runtime, so this only bounds memory.
	// Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the memo reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EarlyRefresh configures sturdyc early refreshes. Nil disables them.
	EarlyRefresh *EarlyRefreshConfig

	// MissingRecordStorage keeps failed resolutions (method not found) in the
	// memo so repeated lookups of a bad name skip reflection.
	MissingRecordStorage bool

	// EvictionInterval sets how often sturdyc checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration
}

// EarlyRefreshConfig configures early refresh behavior.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:             4096,
		NumShards:            64,
		TTL:                  30 * time.Minute,
		EvictionPercentage:   10,
		EarlyRefresh:         nil,
		MissingRecordStorage: true,
		EvictionInterval:     0,
	}
}

// ToSturdycOptions converts the Config to sturdyc.Option slice.
// Capacity, NumShards, TTL and EvictionPercentage are passed directly
// to sturdyc.New() and are not included in the options.
// MissingRecordStorage is handled by Memo itself.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EarlyRefresh != nil {
		options = append(options, sturdyc.WithEarlyRefreshes(
			c.EarlyRefresh.MinAsyncRefreshTime,
			c.EarlyRefresh.MaxAsyncRefreshTime,
			c.EarlyRefresh.SyncRefreshTime,
			c.EarlyRefresh.RetryBaseDelay,
		))
	}

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.NumShards > c.Capacity {
		return &ConfigError{Field: "NumShards", Message: "must not exceed Capacity"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}

	if c.EarlyRefresh != nil {
		if c.EarlyRefresh.MinAsyncRefreshTime < 0 {
			return &ConfigError{Field: "EarlyRefresh.MinAsyncRefreshTime", Message: "must be non-negative"}
		}
		if c.EarlyRefresh.MaxAsyncRefreshTime < c.EarlyRefresh.MinAsyncRefreshTime {
			return &ConfigError{Field: "EarlyRefresh.MaxAsyncRefreshTime", Message: "must not be less than MinAsyncRefreshTime"}
		}
		if c.EarlyRefresh.SyncRefreshTime < 0 {
			return &ConfigError{Field: "EarlyRefresh.SyncRefreshTime", Message: "must be non-negative"}
		}
		if c.EarlyRefresh.RetryBaseDelay < 0 {
			return &ConfigError{Field: "EarlyRefresh.RetryBaseDelay", Message: "must be non-negative"}
		}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// outcome is what the memo stores: a resolved value or the error that
// resolving produced. Errors are stored as values so sturdyc never sees
// a failing fetch.
type outcome[T any] struct {
	value T
	err   error
}

// Memo is a read-through memo keyed by string. Concurrent fetches of the
// same key are collapsed into one by sturdyc.
type Memo[T any] struct {
	client     *sturdyc.Client[outcome[T]]
	keepMisses bool
}

// NewMemo creates a sturdyc backed memo.
// It validates the configuration before building the client.
func NewMemo[T any](cfg Config) (*Memo[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[outcome[T]](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &Memo[T]{client: client, keepMisses: cfg.MissingRecordStorage}, nil
}

// GetOrFetch returns the memoized outcome for key, calling fetch on a miss.
// The error returned by fetch is memoized along with the value when
// MissingRecordStorage is enabled, otherwise it is dropped right after
// being returned so the next call fetches again.
func (m *Memo[T]) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	res, err := m.client.GetOrFetch(ctx, key, func(ctx context.Context) (outcome[T], error) {
		v, err := fetch(ctx)
		return outcome[T]{value: v, err: err}, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	if res.err != nil && !m.keepMisses {
		m.client.Delete(key)
	}

	return res.value, res.err
}

// Peek returns the memoized outcome for key without fetching.
// found reports whether the key is present; err is the memoized error, if any.
func (m *Memo[T]) Peek(key string) (value T, found bool, err error) {
	res, ok := m.client.Get(key)
	return res.value, ok, res.err
}

// Delete drops a single key from the memo.
func (m *Memo[T]) Delete(key string) {
	m.client.Delete(key)
}

// Size returns the number of memoized outcomes.
func (m *Memo[T]) Size() int {
	return m.client.Size()
}
