package callmethod_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/goliatone/go-dispatch-cache/callmethod"
	"github.com/goliatone/go-dispatch-cache/dispatch"
	"github.com/goliatone/go-dispatch-cache/pkg/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newCache() *dispatch.Cache {
	return dispatch.New(dispatch.NewRegistry(), dispatch.WithCompiler(dispatch.NewCompiler()))
}

func TestAction_CallFunc(t *testing.T) {
	ctx := context.Background()
	action := &callmethod.Action{Cache: newCache(), Target: testsupport.Greeter{}}

	msg := callmethod.NewCallFunc[string]("Greet")
	require.NoError(t, action.Invoke(ctx, msg))
	assert.Equal(t, "hi", msg.Result)
	assert.True(t, msg.Handled())

	withArg := callmethod.NewCallFuncWith[int, int]("Greet", 21)
	require.NoError(t, action.Invoke(ctx, withArg))
	assert.Equal(t, 42, withArg.Result)
	assert.True(t, withArg.Handled())
}

func TestAction_ParameterTypeFromMessage(t *testing.T) {
	ctx := context.Background()
	rec := &testsupport.Recorder{}
	action := &callmethod.Action{Cache: newCache(), Target: testsupport.NewTarget(rec)}

	require.NoError(t, action.Invoke(ctx, callmethod.NewCallActionWith[any]("Test", "s")))
	require.NoError(t, action.Invoke(ctx, callmethod.NewCallActionWith("Test", "s")))
	require.NoError(t, action.Invoke(ctx, callmethod.NewCallActionWith("Test", 3)))
	require.NoError(t, action.Invoke(ctx, callmethod.NewCallAction("Test")))

	assert.Equal(t, []string{"Test(any):s", "Test(string):s", "Test(int):3", "Test()"}, rec.Calls())
}

func TestAction_ActionDefaults(t *testing.T) {
	ctx := context.Background()
	rec := &testsupport.Recorder{}

	tests := []struct {
		name   string
		action *callmethod.Action
		want   string
	}{
		{
			name:   "configured parameter type",
			action: &callmethod.Action{MethodName: "Test", ParameterType: reflect.TypeFor[any](), Parameter: 5},
			want:   "Test(any):5",
		},
		{
			name:   "runtime type of configured parameter",
			action: &callmethod.Action{MethodName: "Test", Parameter: 5},
			want:   "Test(int):5",
		},
		{
			name:   "no parameter",
			action: &callmethod.Action{MethodName: "Test"},
			want:   "Test()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.Reset()
			tt.action.Cache = newCache()
			tt.action.Target = testsupport.NewTarget(rec)

			msg := &callmethod.CallAction{}
			require.NoError(t, tt.action.Invoke(ctx, msg))
			assert.True(t, msg.Handled())
			assert.Equal(t, []string{tt.want}, rec.Calls())
		})
	}
}

func TestAction_MessageNameOverridesAction(t *testing.T) {
	action := &callmethod.Action{Cache: newCache(), Target: testsupport.Greeter{}, MethodName: "Missing"}

	msg := callmethod.NewCallFunc[string]("Greet")
	require.NoError(t, action.Invoke(context.Background(), msg))
	assert.Equal(t, "hi", msg.Result)
}

func TestAction_NilMessage(t *testing.T) {
	rec := &testsupport.Recorder{}
	action := &callmethod.Action{Cache: newCache(), Target: testsupport.NewTarget(rec), MethodName: "Test"}

	require.NoError(t, action.Invoke(context.Background(), nil))
	assert.Equal(t, []string{"Test()"}, rec.Calls())
}

func TestAction_TargetMismatchIsSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	action := &callmethod.Action{
		Cache:  newCache(),
		Target: testsupport.Greeter{},
		Logger: zap.New(core),
	}

	msg := callmethod.NewCallFunc[string]("Greet")
	msg.Target = reflect.TypeFor[*testsupport.Account]()

	require.NoError(t, action.Invoke(context.Background(), msg))
	assert.False(t, msg.Handled())
	assert.Empty(t, msg.Result)
	assert.Equal(t, 1, logs.FilterMessage("message skipped").Len())

	// an interface target type matches any implementation
	type greeter interface{ Greet() string }
	msg.Target = reflect.TypeFor[greeter]()
	require.NoError(t, action.Invoke(context.Background(), msg))
	assert.True(t, msg.Handled())
	assert.Equal(t, "hi", msg.Result)
}

func TestAction_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing method name", func(t *testing.T) {
		action := &callmethod.Action{Cache: newCache(), Target: testsupport.Greeter{}}
		err := action.Invoke(ctx, &callmethod.CallAction{})
		assert.ErrorIs(t, err, callmethod.ErrMissingMethodName)
	})

	t.Run("nil target", func(t *testing.T) {
		action := &callmethod.Action{Cache: newCache(), MethodName: "Greet"}
		err := action.Invoke(ctx, nil)
		assert.ErrorIs(t, err, dispatch.ErrNilTarget)
	})

	t.Run("method not found", func(t *testing.T) {
		action := &callmethod.Action{Cache: newCache(), Target: testsupport.Greeter{}}
		msg := callmethod.NewCallFuncWith[string, string]("Greet", "x")
		err := action.Invoke(ctx, msg)
		assert.ErrorIs(t, err, dispatch.ErrMethodNotFound)
		assert.False(t, msg.Handled())
	})

	t.Run("method error", func(t *testing.T) {
		action := &callmethod.Action{Cache: newCache(), Target: &testsupport.Account{}}
		msg := callmethod.NewCallFuncWith[int, int]("Withdraw", 10)
		err := action.Invoke(ctx, msg)
		assert.ErrorIs(t, err, testsupport.ErrInsufficientFunds)
		assert.False(t, msg.Handled())
	})

	t.Run("result type mismatch", func(t *testing.T) {
		action := &callmethod.Action{Cache: newCache(), Target: testsupport.Greeter{}}
		msg := callmethod.NewCallFunc[int]("Greet")
		err := action.Invoke(ctx, msg)
		assert.ErrorIs(t, err, callmethod.ErrResultType)
		assert.False(t, msg.Handled())
	})
}

func TestAction_DefaultCache(t *testing.T) {
	action := &callmethod.Action{Target: testsupport.Greeter{}}

	msg := callmethod.NewCallFuncWith[int, int]("Greet", 2)
	require.NoError(t, action.Invoke(context.Background(), msg))
	assert.Equal(t, 4, msg.Result)
	assert.NotNil(t, action.Cache)
}

func TestCallFunc_SetResultNil(t *testing.T) {
	msg := callmethod.NewCallFunc[*testsupport.Account]("Any")
	msg.Result = &testsupport.Account{}

	require.NoError(t, msg.SetResult(nil))
	assert.Nil(t, msg.Result)
}
