package observable

import (
	"reflect"
)

// Observer receives values pushed by an Observable.
type Observer interface {
	// Next delivers one value.
	Next(value any)

	// Complete signals that no further values will be delivered.
	Complete()
}

// Subscription is the teardown handle returned by Subscribe.
type Subscription interface {
	// Unsubscribe stops delivery and releases the producer. It is idempotent.
	Unsubscribe()
}

// Interop is the interoperability marker. A value implementing it can hand
// out an Observable view of itself.
type Interop interface {
	Observable() Observable
}

// Observable is a push-stream.
type Observable interface {
	Interop

	// Subscribe attaches o and returns its teardown handle.
	Subscribe(o Observer) Subscription
}

// SetupFunc wires a new subscriber to a producer. It returns the teardown
// handle for that subscriber, or nil when there is nothing to release.
type SetupFunc func(o Observer) Subscription

// Primitive constructs Observables. It is the pluggable stream
// implementation a runtime is configured with.
type Primitive interface {
	// New builds an Observable that runs setup once per subscriber.
	New(setup SetupFunc) Observable

	// Of builds an Observable that emits value and completes.
	Of(value any) Observable

	// From normalizes slices, arrays and Interop values into an Observable.
	From(source any) (Observable, error)
}

// IsObservable reports whether v satisfies the push-stream contract: it
// either carries the Interop marker or is itself a Primitive. Nil values,
// typed-nil pointers and markers that panic all report false.
func IsObservable(v any) (ok bool) {
	if isNil(v) {
		return false
	}

	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	switch x := v.(type) {
	case Interop:
		return !isNil(x.Observable())
	case Primitive:
		return true
	}
	return false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Funcs adapts a pair of callbacks to Observer. Either may be nil.
type Funcs struct {
	OnNext     func(value any)
	OnComplete func()
}

// Next implements Observer.
func (f Funcs) Next(value any) {
	if f.OnNext != nil {
		f.OnNext(value)
	}
}

// Complete implements Observer.
func (f Funcs) Complete() {
	if f.OnComplete != nil {
		f.OnComplete()
	}
}

// NextFunc returns an Observer that only handles values.
func NextFunc(fn func(value any)) Observer {
	return Funcs{OnNext: fn}
}

// SubscriptionFunc adapts a function to Subscription.
type SubscriptionFunc func()

// Unsubscribe implements Subscription.
func (f SubscriptionFunc) Unsubscribe() {
	if f != nil {
		f()
	}
}
