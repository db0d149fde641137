package dispatch

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Compile builds the thunk for a resolved method. The thunk calls the method
// expression directly with the target as receiver, skipping the by-name
// lookup and signature checks the reflective path performs on every call.
func Compile(m *Method) (Thunk, error) {
	if m == nil || !m.Func.IsValid() {
		return Thunk{}, fmt.Errorf("%w: method is not resolved", ErrCompileFailed)
	}

	fn := m.Func
	ft := fn.Type()
	if ft.NumIn() < 1 || ft.NumIn() > 2 {
		return Thunk{}, fmt.Errorf("%w: %s takes %d parameters", ErrCompileFailed, m.Key, ft.NumIn()-1)
	}
	if ft.In(0) != m.Key.Owner {
		return Thunk{}, fmt.Errorf("%w: receiver %s does not match owner %s", ErrCompileFailed, ft.In(0), m.Key.Owner)
	}

	call := directCall(fn, m.param)
	returnsError := m.returnsError

	switch m.Kind {
	case KindAction:
		if returnsError {
			return ActionOf(func(target any, args []any) error {
				return asError(call(target, args)[0])
			}), nil
		}
		return ActionOf(func(target any, args []any) error {
			call(target, args)
			return nil
		}), nil

	case KindFunction:
		if returnsError {
			return FunctionOf(func(target any, args []any) (any, error) {
				out := call(target, args)
				if err := asError(out[1]); err != nil {
					return nil, err
				}
				return out[0].Interface(), nil
			}), nil
		}
		return FunctionOf(func(target any, args []any) (any, error) {
			return call(target, args)[0].Interface(), nil
		}), nil

	default:
		return Thunk{}, fmt.Errorf("%w: %s has no thunk kind", ErrCompileFailed, m.Key)
	}
}

// directCall returns a trampoline for fn. The parameter zero value is
// computed once so a nil argument costs nothing at call time.
func directCall(fn reflect.Value, param reflect.Type) func(target any, args []any) []reflect.Value {
	if param == nil {
		return func(target any, _ []any) []reflect.Value {
			return fn.Call([]reflect.Value{reflect.ValueOf(target)})
		}
	}

	zero := reflect.Zero(param)
	return func(target any, args []any) []reflect.Value {
		arg := zero
		if args[0] != nil {
			arg = reflect.ValueOf(args[0])
		}
		return fn.Call([]reflect.Value{reflect.ValueOf(target), arg})
	}
}

// Job is one background compilation.
type Job struct {
	ID  uuid.UUID
	Key Key

	done chan struct{}
	err  error
}

// Done is closed once the job has finished, successfully or not.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Err returns the failure of a finished job. It must only be read after Done
// is closed.
func (j *Job) Err() error {
	return j.err
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithCompilerLogger sets the logger used to report failed jobs.
func WithCompilerLogger(logger *zap.Logger) CompilerOption {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCoalescing makes concurrent jobs for the same key share one build.
// Each job still publishes on its own.
func WithCoalescing(enabled bool) CompilerOption {
	return func(c *Compiler) {
		c.coalesce = enabled
	}
}

// Compiler runs thunk compilation off the calling goroutine. Every job gets
// its own goroutine and runs to completion; failures are logged and counted,
// never returned to callers of Invoke.
type Compiler struct {
	logger   *zap.Logger
	coalesce bool
	build    func(*Method) (Thunk, error)

	group     singleflight.Group
	jobs      *xsync.MapOf[uuid.UUID, *Job]
	completed atomic.Uint64
	failures  atomic.Uint64
}

var defaultCompiler = NewCompiler()

// DefaultCompiler returns the process-wide Compiler used by caches built
// without WithCompiler.
func DefaultCompiler() *Compiler {
	return defaultCompiler
}

// NewCompiler creates a Compiler.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		logger: zap.NewNop(),
		build:  Compile,
		jobs:   xsync.NewMapOf[uuid.UUID, *Job](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// compiled pairs a thunk with the key it was built for so coalesced builds
// can be checked against the job's own key.
type compiled struct {
	key   Key
	thunk Thunk
}

// Submit schedules compilation of m. publish receives the thunk once built;
// an error it returns marks the job as failed.
func (c *Compiler) Submit(m *Method, publish func(Thunk) error) *Job {
	job := &Job{
		ID:   uuid.New(),
		Key:  m.Key,
		done: make(chan struct{}),
	}
	c.jobs.Store(job.ID, job)

	go c.run(job, m, publish)

	return job
}

func (c *Compiler) run(job *Job, m *Method, publish func(Thunk) error) {
	defer func() {
		if r := recover(); r != nil {
			job.err = fmt.Errorf("%w: panic: %v", ErrCompileFailed, r)
		}

		if job.err != nil {
			c.failures.Add(1)
			c.logger.Warn("thunk compilation failed",
				zap.Stringer("key", job.Key),
				zap.String("job", job.ID.String()),
				zap.Error(job.err),
			)
		} else {
			c.completed.Add(1)
		}

		c.jobs.Delete(job.ID)
		close(job.done)
	}()

	thunk, err := c.compile(m)
	if err != nil {
		job.err = err
		return
	}

	job.err = publish(thunk)
}

func (c *Compiler) compile(m *Method) (Thunk, error) {
	if !c.coalesce {
		return c.build(m)
	}

	v, err, _ := c.group.Do(m.Key.String(), func() (any, error) {
		thunk, err := c.build(m)
		return compiled{key: m.Key, thunk: thunk}, err
	})
	if err != nil {
		return Thunk{}, err
	}

	if res := v.(compiled); res.key == m.Key { //nolint:forcetypeassert
		return res.thunk, nil
	}
	return c.build(m)
}

// Pending returns the number of jobs that have not finished.
func (c *Compiler) Pending() int {
	return c.jobs.Size()
}

// Completed returns the number of jobs that published a thunk.
func (c *Compiler) Completed() uint64 {
	return c.completed.Load()
}

// Failures returns the number of jobs that failed.
func (c *Compiler) Failures() uint64 {
	return c.failures.Load()
}

// Wait blocks until no job is pending or ctx is done. Jobs submitted while
// waiting are waited for as well.
func (c *Compiler) Wait(ctx context.Context) error {
	for {
		var pending []*Job
		c.jobs.Range(func(_ uuid.UUID, job *Job) bool {
			pending = append(pending, job)
			return true
		})

		if len(pending) == 0 {
			return nil
		}

		for _, job := range pending {
			select {
			case <-job.done:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
