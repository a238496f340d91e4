package observable

import (
	"reflect"
	"sync"

	"github.com/vango-dev/rxstate/internal/errors"
)

// Basic is a synchronous Primitive. Subscribers run on the goroutine that
// pushes values; there is no scheduler.
type Basic struct{}

var _ Primitive = Basic{}

// New implements Primitive.
func (Basic) New(setup SetupFunc) Observable {
	return &stream{setup: setup}
}

// Of implements Primitive.
func (b Basic) Of(value any) Observable {
	return b.New(func(o Observer) Subscription {
		o.Next(value)
		o.Complete()
		return nil
	})
}

// From implements Primitive. Interop values are returned through their
// Observable view; slices and arrays emit each element in order, then
// complete.
func (b Basic) From(source any) (Observable, error) {
	if in, ok := source.(Interop); ok && IsObservable(in) {
		return in.Observable(), nil
	}

	if !isNil(source) {
		rv := reflect.ValueOf(source)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			items := make([]any, rv.Len())
			for i := range items {
				items[i] = rv.Index(i).Interface()
			}
			return b.New(func(o Observer) Subscription {
				for _, item := range items {
					o.Next(item)
				}
				o.Complete()
				return nil
			}), nil
		}
	}

	return nil, errors.New("R025").WithDetailf("cannot build an observable from %T", source)
}

// stream is the Observable built by Basic.New.
type stream struct {
	setup SetupFunc
}

// Observable implements Interop.
func (s *stream) Observable() Observable { return s }

// Subscribe implements Observable.
func (s *stream) Subscribe(o Observer) Subscription {
	if o == nil {
		o = Funcs{}
	}
	sub := &subscription{observer: o}
	if s.setup != nil {
		sub.attach(s.setup(sub))
	}
	return sub
}

// subscription is both the guarded observer handed to a SetupFunc and the
// handle returned to the subscriber. Once closed, by completion or by
// unsubscribe, it drops every further signal.
type subscription struct {
	observer Observer

	mu       sync.Mutex
	closed   bool
	teardown Subscription
}

// Next implements Observer.
func (s *subscription) Next(value any) {
	if s.Closed() {
		return
	}
	s.observer.Next(value)
}

// Complete implements Observer.
func (s *subscription) Complete() {
	if !s.close() {
		return
	}
	s.observer.Complete()
	s.release()
}

// Unsubscribe implements Subscription.
func (s *subscription) Unsubscribe() {
	if !s.close() {
		return
	}
	s.release()
}

// Closed reports whether the subscription has ended.
func (s *subscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// attach stores the producer's teardown. A subscription that already closed
// while setup was running releases it immediately.
func (s *subscription) attach(teardown Subscription) {
	if isNil(teardown) {
		return
	}
	s.mu.Lock()
	if !s.closed {
		s.teardown = teardown
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	teardown.Unsubscribe()
}

func (s *subscription) close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	return true
}

func (s *subscription) release() {
	s.mu.Lock()
	teardown := s.teardown
	s.teardown = nil
	s.mu.Unlock()

	if teardown != nil {
		teardown.Unsubscribe()
	}
}
