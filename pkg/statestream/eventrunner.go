package statestream

import (
	"sync"

	"github.com/vango-dev/rxstate/internal/errors"
	"github.com/vango-dev/rxstate/pkg/observable"
)

// EventRunner implements Stream.
//
// The input stream is resolved from input: when omitted it emits the current
// state once; an observable is used as is; any other value, nil included, is
// wrapped with the primitive's Of. Only the first input is used. A nil
// factory is the identity.
//
// The factory output is subscribed right away so its latest value is kept.
// The returned stream replays that value to each new consumer and then
// forwards later values. Once the last consumer unsubscribes the output
// subscription is released.
func (s *stateStream) EventRunner(factory Factory, input ...any) (observable.Observable, error) {
	var source observable.Observable
	if len(input) == 0 {
		source = s.primitive.Of(s.GetState())
	} else if in, ok := input[0].(observable.Interop); ok && observable.IsObservable(in) {
		source = in.Observable()
	} else {
		source = s.primitive.Of(input[0])
	}

	if factory == nil {
		factory = func(in observable.Observable) observable.Observable { return in }
	}

	output := factory(source)
	if !observable.IsObservable(output) {
		return nil, errors.New("R022").WithDetailf("stream %q: factory returned %T", s.name, output)
	}

	return newRunner(s.primitive, output), nil
}

// runner multicasts a factory output with last-value replay.
type runner struct {
	mu        sync.Mutex
	last      any
	hasLast   bool
	consumers []*runnerConsumer
	upstream  observable.Subscription
	released  bool
}

type runnerConsumer struct {
	observer observable.Observer
}

func newRunner(primitive observable.Primitive, output observable.Observable) observable.Observable {
	r := &runner{}
	stream := primitive.New(r.attach)

	sub := output.Subscribe(observable.NextFunc(r.push))

	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		sub.Unsubscribe()
	} else {
		r.upstream = sub
		r.mu.Unlock()
	}
	return stream
}

func (r *runner) push(value any) {
	r.mu.Lock()
	r.last, r.hasLast = value, true
	consumers := make([]*runnerConsumer, len(r.consumers))
	copy(consumers, r.consumers)
	r.mu.Unlock()

	for _, c := range consumers {
		c.observer.Next(value)
	}
}

func (r *runner) attach(o observable.Observer) observable.Subscription {
	c := &runnerConsumer{observer: o}

	r.mu.Lock()
	r.consumers = append(r.consumers, c)
	last, hasLast := r.last, r.hasLast
	r.mu.Unlock()

	if hasLast {
		o.Next(last)
	}

	var once sync.Once
	return observable.SubscriptionFunc(func() {
		once.Do(func() { r.detach(c) })
	})
}

// detach removes c and releases the upstream subscription when c was the
// last consumer.
func (r *runner) detach(c *runnerConsumer) {
	r.mu.Lock()
	for i, existing := range r.consumers {
		if existing == c {
			r.consumers = append(r.consumers[:i], r.consumers[i+1:]...)
			break
		}
	}
	if len(r.consumers) > 0 || r.released {
		r.mu.Unlock()
		return
	}
	r.released = true
	upstream := r.upstream
	r.upstream = nil
	r.mu.Unlock()

	if upstream != nil {
		upstream.Unsubscribe()
	}
}
