// Package observable defines the push-stream contract used by rxstate and
// ships a synchronous implementation of it.
//
// # Contract
//
// An Observable delivers values to an Observer until it completes or the
// subscriber unsubscribes:
//
//	sub := obs.Subscribe(observable.NextFunc(func(v any) {
//	    fmt.Println(v)
//	}))
//	defer sub.Unsubscribe()
//
// A Primitive builds Observables from a SetupFunc, from a single value (Of),
// or from a slice or another stream (From). Runtimes are configured with one
// Primitive and every state stream is built with it.
//
// # Capability Check
//
// IsObservable decides whether an arbitrary value is stream-shaped: it carries
// the Interop marker (an Observable() method) or is a Primitive. It never
// panics.
//
// # Basic
//
// Basic is the reference Primitive. Subscriptions are guarded: after
// Complete or Unsubscribe no further values reach the observer, and the
// producer's teardown runs exactly once.
package observable
