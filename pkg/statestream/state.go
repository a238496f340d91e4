package statestream

import (
	"github.com/vango-dev/rxstate/internal/errors"
	"github.com/vango-dev/rxstate/pkg/observable"
)

// observerEntry boxes a registered observer so it can be removed by
// pointer, whatever the dynamic type of the observer itself.
type observerEntry struct {
	observer observable.Observer
}

// coreDisposer is the first handle in a stream's subscriptions. Running it
// disposes the state core.
type coreDisposer struct {
	s *stateStream
}

func (d *coreDisposer) Unsubscribe() { d.s.dispose() }

// newState stores initial and builds the base state stream: each subscriber
// is registered, then receives the current value ahead of any later one.
func (s *stateStream) newState(initial any) observable.Observable {
	s.value = initial
	s.subscriptions = append(s.subscriptions, &coreDisposer{s: s})

	return s.primitive.New(func(o observable.Observer) observable.Subscription {
		entry := &observerEntry{observer: o}

		s.mu.Lock()
		disposed := s.disposed
		if !disposed {
			s.observers = append(s.observers, entry)
		}
		drain := s.enqueue(delivery{
			entries:  []*observerEntry{entry},
			value:    s.value,
			hasValue: true,
			complete: disposed,
		})
		s.mu.Unlock()

		if drain {
			s.drain()
		}
		if disposed {
			return nil
		}

		return observable.SubscriptionFunc(func() {
			s.removeObserver(entry)
		})
	})
}

// GetState implements Stream.
func (s *stateStream) GetState() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Next implements Stream. The updater runs while updates are serialized and
// must not call Next on the same stream. Subscribers see values in update
// order, whichever goroutine called Next. A Next issued from inside a
// subscriber is delivered after the value currently being delivered.
func (s *stateStream) Next(updater Updater) error {
	if updater == nil {
		return errors.New("R020").WithDetailf("stream %q", s.name)
	}

	s.updateMu.Lock()

	s.mu.RLock()
	disposed, old := s.disposed, s.value
	s.mu.RUnlock()

	if disposed {
		s.updateMu.Unlock()
		s.logger.Warn("next called on a disposed stream; update dropped")
		return nil
	}

	value := updater(old)

	s.mu.Lock()
	s.value = value
	drain := s.enqueue(delivery{
		entries:  s.snapshotObservers(),
		value:    value,
		hasValue: true,
	})
	s.mu.Unlock()

	s.updateMu.Unlock()

	if drain {
		s.drain()
	}
	return nil
}

// delivery is one queued notification of a set of observers.
type delivery struct {
	entries  []*observerEntry
	value    any
	hasValue bool
	complete bool
}

// enqueue appends d and reports whether the caller must drain the queue.
// Callers hold s.mu.
func (s *stateStream) enqueue(d delivery) bool {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.pending = append(s.pending, d)
	if s.delivering {
		return false
	}
	s.delivering = true
	return true
}

// drain delivers queued notifications in order until the queue is empty.
// Only one goroutine drains at a time; deliveries enqueued meanwhile, from
// subscribers or from other goroutines, are picked up by that goroutine.
func (s *stateStream) drain() {
	for {
		s.deliverMu.Lock()
		if len(s.pending) == 0 {
			s.pending = nil
			s.delivering = false
			s.deliverMu.Unlock()
			return
		}
		d := s.pending[0]
		s.pending[0] = delivery{}
		s.pending = s.pending[1:]
		s.deliverMu.Unlock()

		for _, entry := range d.entries {
			if d.hasValue {
				entry.observer.Next(d.value)
			}
			if d.complete {
				entry.observer.Complete()
			}
		}
	}
}

// Observers implements Stream.
func (s *stateStream) Observers() []observable.Observer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]observable.Observer, len(s.observers))
	for i, entry := range s.observers {
		out[i] = entry.observer
	}
	return out
}

// Disposed implements Stream.
func (s *stateStream) Disposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposed
}

// dispose marks the core disposed and completes every current observer
// exactly once, after any value still queued for it.
func (s *stateStream) dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	observers := s.observers
	s.observers = nil
	drain := s.enqueue(delivery{entries: observers, complete: true})
	s.mu.Unlock()

	if drain {
		s.drain()
	}
	s.logger.Debug("stream disposed", "observers", len(observers))
}

// snapshotObservers copies the registry. Callers hold s.mu.
func (s *stateStream) snapshotObservers() []*observerEntry {
	out := make([]*observerEntry, len(s.observers))
	copy(out, s.observers)
	return out
}

func (s *stateStream) removeObserver(entry *observerEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.observers {
		if existing == entry {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}
