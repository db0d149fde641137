// Package callmethod routes call messages to methods through a dispatch cache.
//
// # Overview
//
// A message names a method and optionally carries one argument and a result
// slot. An Action owns the target and a dispatch cache; Invoke extracts the
// call from the message, dispatches it and stores the result back:
//
//	action := &callmethod.Action{Target: view}
//
//	msg := callmethod.NewCallFuncWith[int, int]("Greet", 21)
//	if err := action.Invoke(ctx, msg); err != nil {
//		return err
//	}
//	fmt.Println(msg.Result, msg.Handled()) // 42 true
//
// # Message Types
//
//   - CallAction: no argument, result ignored
//   - CallActionWith[P]: one argument of type P, result ignored
//   - CallFunc[R]: no argument, result stored as R
//   - CallFuncWith[P, R]: one argument of type P, result stored as R
//
// The overload is selected by P. A CallActionWith[any] holding a string calls
// the overload that takes any, never the one that takes string.
//
// Setting Call.Target restricts a message to targets assignable to that type;
// other actions skip it without error.
package callmethod
