// Package testsupport provides dispatch targets shared by the package tests.
package testsupport

import (
	"errors"
	"fmt"
	"sync"
)

// Recorder collects the calls made on a target.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

// Record appends call to the log.
func (r *Recorder) Record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

// Calls returns a copy of the recorded calls in order.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many times call was recorded.
func (r *Recorder) Count(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}

// Reset clears the log.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Target exposes two overload families: Test, which records which overload
// ran, and Result, which returns a value per overload.
type Target struct {
	rec *Recorder
}

// NewTarget creates a Target that records into rec.
func NewTarget(rec *Recorder) *Target {
	return &Target{rec: rec}
}

// DispatchOverloads lists the overload families of Target.
func (t *Target) DispatchOverloads() map[string][]string {
	return map[string][]string{
		"Test":   {"Test", "TestString", "TestInt", "TestAny"},
		"Result": {"Result", "ResultString", "ResultInt"},
	}
}

func (t *Target) Test()               { t.rec.Record("Test()") }
func (t *Target) TestString(s string) { t.rec.Record("Test(string):" + s) }
func (t *Target) TestInt(n int)       { t.rec.Record(fmt.Sprintf("Test(int):%d", n)) }
func (t *Target) TestAny(v any)       { t.rec.Record(fmt.Sprintf("Test(any):%v", v)) }

func (t *Target) Result() string { return "result" }

func (t *Target) ResultString(s string) string { return "result:" + s }

func (t *Target) ResultInt(n int) int { return n + 1 }

// Greeter answers Greet with and without an int argument.
type Greeter struct{}

// DispatchOverloads lists the overload families of Greeter.
func (Greeter) DispatchOverloads() map[string][]string {
	return map[string][]string{"Greet": {"Greet", "GreetInt"}}
}

// Greet returns "hi".
func (Greeter) Greet() string { return "hi" }

// GreetInt returns n*2.
func (Greeter) GreetInt(n int) int { return n * 2 }

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Account has methods that report failures through a trailing error result.
type Account struct {
	mu      sync.Mutex
	balance int
}

// Deposit adds n to the balance.
func (a *Account) Deposit(n int) error {
	if n <= 0 {
		return ErrInvalidAmount
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance += n
	return nil
}

// Withdraw removes n from the balance and returns what is left.
func (a *Account) Withdraw(n int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n > a.balance {
		return 0, ErrInsufficientFunds
	}
	a.balance -= n
	return a.balance, nil
}

// Balance returns the current balance.
func (a *Account) Balance() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Pair returns two values and cannot be dispatched.
func (a *Account) Pair() (int, int) { return a.Balance(), 0 }

// Sum is variadic and cannot be dispatched.
func (a *Account) Sum(ns ...int) int {
	total := 0
	for _, n := range ns {
		total += n
	}
	return total
}

// Ambiguous declares two overloads with the same parameter list.
type Ambiguous struct{}

// DispatchOverloads lists the overload families of Ambiguous.
func (Ambiguous) DispatchOverloads() map[string][]string {
	return map[string][]string{"Do": {"DoLeft", "DoRight"}}
}

func (Ambiguous) DoLeft(n int) int  { return n }
func (Ambiguous) DoRight(n int) int { return -n }
