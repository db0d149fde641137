package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/goliatone/go-dispatch-cache/dispatch"
	"github.com/goliatone/go-dispatch-cache/pkg/testsupport"
)

// TestConcurrentAccess tests concurrent dispatch through caches sharing one container
func TestConcurrentAccess(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("Failed to create DI container: %v", err)
	}

	dir := newDirectory()
	for i := 0; i < 100; i++ {
		if err := dir.Add(User{ID: fmt.Sprintf("user-%d", i), Name: fmt.Sprintf("User %d", i)}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	ctx := context.Background()
	const numGoroutines = 50
	const operationsPerGoroutine = 20

	var wg sync.WaitGroup
	errs := make(chan error, numGoroutines*operationsPerGoroutine)
	caches := make([]*dispatch.Cache, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		caches[i] = container.NewCache(fmt.Sprintf("worker-%d", i))
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c := caches[workerID]

			for j := 0; j < operationsPerGoroutine; j++ {
				userID := fmt.Sprintf("user-%d", (workerID*operationsPerGoroutine+j)%100)

				u, err := dispatch.InvokeAs[User](ctx, c, dir, "Find", reflect.TypeFor[string](), userID)
				if err != nil {
					errs <- fmt.Errorf("worker %d operation %d Find failed: %v", workerID, j, err)
					continue
				}
				if u.ID != userID {
					errs <- fmt.Errorf("worker %d operation %d: expected %s, got %s", workerID, j, userID, u.ID)
				}

				// alternate keys every 5th iteration to evict the slot
				if j%5 == 0 {
					n, err := dispatch.InvokeAs[int](ctx, c, dir, "Count", nil, nil)
					if err != nil || n != 100 {
						errs <- fmt.Errorf("worker %d operation %d Count: %d, %v", workerID, j, n, err)
					}
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	var errorCount int
	for err := range errs {
		t.Error(err)
		errorCount++
		if errorCount > 10 {
			t.Error("... and more errors")
			break
		}
	}
	if errorCount > 0 {
		t.Fatalf("Concurrent access test failed with %d errors", errorCount)
	}

	if err := container.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	var total dispatch.Stats
	for _, c := range caches {
		s := c.Stats()
		total.SlotHits += s.SlotHits
		total.RegistryHits += s.RegistryHits
		total.Misses += s.Misses
	}

	if total.Misses >= total.Calls() {
		t.Errorf("Expected warm calls, got %+v", total)
	}

	t.Logf("Concurrent test completed: %d calls, %d cold (%.1f%% thunk hit rate)",
		total.Calls(), total.Misses, total.HitRate())
}

// BenchmarkDispatch compares direct calls against cold and warm dispatch
func BenchmarkDispatch(b *testing.B) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		b.Fatalf("Failed to create DI container: %v", err)
	}

	ctx := context.Background()
	target := testsupport.Greeter{}
	intType := reflect.TypeFor[int]()

	b.Run("direct_call", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = target.GreetInt(i)
		}
	})

	b.Run("reflect_method_by_name", func(b *testing.B) {
		b.ReportAllocs()
		v := reflect.ValueOf(target)
		for i := 0; i < b.N; i++ {
			_ = v.MethodByName("GreetInt").Call([]reflect.Value{reflect.ValueOf(i)})
		}
	})

	warm := container.NewCache("warm")
	_, _ = warm.Invoke(ctx, target, "Greet", intType, 1)
	if err := container.Wait(ctx); err != nil {
		b.Fatalf("Wait failed: %v", err)
	}

	b.Run("dispatch_slot_hit", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = warm.Invoke(ctx, target, "Greet", intType, i)
		}
	})

	b.Run("dispatch_registry_hit", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			// alternate keys so every call misses the slot
			_, _ = warm.Invoke(ctx, target, "Greet", intType, i)
			_, _ = warm.Invoke(ctx, target, "Greet", nil, nil)
		}
	})
}

// BenchmarkConcurrentDispatch measures warm dispatch from many goroutines
func BenchmarkConcurrentDispatch(b *testing.B) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		b.Fatalf("Failed to create DI container: %v", err)
	}

	ctx := context.Background()
	target := testsupport.Greeter{}
	intType := reflect.TypeFor[int]()

	_, _ = container.NewCache("warmup").Invoke(ctx, target, "Greet", intType, 1)
	_ = container.Wait(ctx)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		c := container.NewCache("parallel")
		i := 0
		for pb.Next() {
			_, _ = c.Invoke(ctx, target, "Greet", intType, i)
			i++
		}
	})
}
