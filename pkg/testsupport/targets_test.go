package testsupport

import (
	"errors"
	"sync"
	"testing"
)

func TestRecorder(t *testing.T) {
	rec := &Recorder{}
	rec.Record("a")
	rec.Record("b")
	rec.Record("a")

	calls := rec.Calls()
	if len(calls) != 3 || calls[0] != "a" || calls[1] != "b" {
		t.Fatalf("unexpected calls %v", calls)
	}
	if rec.Count("a") != 2 {
		t.Errorf("expected 2 calls to a, got %d", rec.Count("a"))
	}

	// Calls returns a copy
	calls[0] = "changed"
	if rec.Calls()[0] != "a" {
		t.Error("Calls must not expose the internal slice")
	}

	rec.Reset()
	if len(rec.Calls()) != 0 {
		t.Error("expected empty log after Reset")
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	rec := &Recorder{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Record("call")
		}()
	}
	wg.Wait()

	if rec.Count("call") != 50 {
		t.Errorf("expected 50 calls, got %d", rec.Count("call"))
	}
}

func TestOverloadTables_ReadableFromZeroValue(t *testing.T) {
	target := new(Target)
	if got := len(target.DispatchOverloads()["Test"]); got != 4 {
		t.Errorf("expected 4 Test overloads, got %d", got)
	}
	if got := len(Greeter{}.DispatchOverloads()["Greet"]); got != 2 {
		t.Errorf("expected 2 Greet overloads, got %d", got)
	}
}

func TestAccount(t *testing.T) {
	acc := &Account{}

	if err := acc.Deposit(0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if err := acc.Deposit(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	left, err := acc.Withdraw(4)
	if err != nil || left != 6 {
		t.Errorf("expected 6, nil; got %d, %v", left, err)
	}
	if _, err := acc.Withdraw(7); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
}
