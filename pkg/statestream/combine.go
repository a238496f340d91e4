package statestream

import (
	"maps"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/vango-dev/rxstate/internal/errors"
	"github.com/vango-dev/rxstate/pkg/observable"
)

// participant is one input of a combination.
type participant struct {
	name  string
	state observable.Observable
}

// combine returns base unchanged when there are no sources. Otherwise it
// returns a stream of map[string]any holding the latest value of every
// source and of s itself, keyed by name.
func (s *stateStream) combine(base observable.Observable, sources []Stream) (observable.Observable, error) {
	if len(sources) == 0 {
		return base, nil
	}

	parts := make([]participant, 0, len(sources)+1)
	for i, src := range sources {
		if isNilStream(src) {
			return nil, errors.New("R023").WithDetailf("sources[%d] is nil", i)
		}
		name, state := src.Name(), src.State()
		if strings.TrimSpace(name) == "" || !observable.IsObservable(state) {
			return nil, errors.New("R023").WithDetailf("sources[%d] (%T) has no name or no state stream", i, src)
		}
		parts = append(parts, participant{name: name, state: state})
	}
	parts = append(parts, participant{name: s.name, state: base})

	names := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		if _, dup := names[p.name]; dup {
			return nil, errors.New("R011").WithDetailf("duplicate name %q in combination %q", p.name, s.name)
		}
		names[p.name] = struct{}{}
	}

	return s.primitive.New(func(o observable.Observer) observable.Subscription {
		return s.subscribeParticipants(parts, o)
	}), nil
}

// subscribeParticipants wires one aggregate subscriber. Nothing is emitted
// until every participant has delivered a value. Once s is disposed the
// subscriber is completed without touching the participants.
func (s *stateStream) subscribeParticipants(parts []participant, o observable.Observer) observable.Subscription {
	group := &combinedSubscription{owner: s}
	if !s.track(group) {
		o.Complete()
		return nil
	}

	var (
		mu      sync.Mutex
		current = make(map[string]any, len(parts))
		seen    = bitset.New(uint(len(parts)))
	)

	for i, p := range parts {
		sub := p.state.Subscribe(observable.NextFunc(func(value any) {
			mu.Lock()
			current[p.name] = value
			seen.Set(uint(i))
			if seen.Count() < uint(len(parts)) {
				mu.Unlock()
				return
			}
			aggregate := maps.Clone(current)
			mu.Unlock()

			o.Next(aggregate)
		}))
		if !group.add(sub) {
			break
		}
	}

	return group
}

// combinedSubscription owns the participant subscriptions of one aggregate
// subscriber. It is tracked by the combining stream so Dispose releases it.
type combinedSubscription struct {
	owner *stateStream

	mu     sync.Mutex
	closed bool
	subs   []observable.Subscription
}

// add records sub. If the group already closed, sub is released at once and
// add reports false.
func (c *combinedSubscription) add(sub observable.Subscription) bool {
	if sub == nil {
		return true
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		sub.Unsubscribe()
		return false
	}
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return true
}

// Unsubscribe releases every participant subscription. Participants
// themselves are not disposed.
func (c *combinedSubscription) Unsubscribe() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	c.owner.untrack(c)
}
