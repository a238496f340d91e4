package statestream

import (
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/vango-dev/rxstate/internal/errors"
	"github.com/vango-dev/rxstate/pkg/observable"
)

// Updater computes a new state from the old one.
type Updater func(old any) any

// Factory transforms an input stream into an output stream for EventRunner.
type Factory func(input observable.Observable) observable.Observable

// EmitterFunc turns call arguments into an Updater.
type EmitterFunc func(args ...any) Updater

// Method is an entry of a stream's capability table.
type Method func(args ...any) (any, error)

// Stream is a named state container exposed as a replayable push-stream.
//
// Plugins may wrap a Stream in their own type. Wrappers embed the Stream
// they were given and override only the methods they intercept.
type Stream interface {
	// Name returns the stream name.
	Name() string

	// State returns the state stream. Subscribing delivers the current
	// value first, then every later value. For combined streams the value
	// is a map[string]any keyed by participant name.
	State() observable.Observable

	// GetState returns the current value.
	GetState() any

	// Next replaces the value with updater(old) and notifies subscribers.
	// On a disposed stream it does nothing and returns nil.
	Next(updater Updater) error

	// EventRunner runs factory over an input stream and returns a multicast
	// stream that replays its last value. See the package documentation.
	EventRunner(factory Factory, input ...any) (observable.Observable, error)

	// Dispose completes every subscriber and releases every subscription
	// the stream holds. It is safe to call more than once.
	Dispose()

	// Disposed reports whether Dispose has been called.
	Disposed() bool

	// Emitter registers a named method that calls Next(updater(args...)).
	Emitter(name string, updater EmitterFunc) error

	// Emitters returns the registered emitters.
	Emitters() map[string]Method

	// Emit calls the named emitter.
	Emit(name string, args ...any) error

	// Method looks up an entry of the capability table.
	Method(name string) (Method, bool)

	// SetMethod adds or replaces an entry of the capability table.
	SetMethod(name string, m Method) error

	// Call invokes an entry of the capability table.
	Call(name string, args ...any) (any, error)

	// Subscriptions returns the teardown handles Dispose runs.
	Subscriptions() []observable.Subscription

	// Observers returns the current subscribers of the base state stream.
	Observers() []observable.Observer

	// Primitive returns the observable primitive the stream was built with.
	Primitive() observable.Primitive

	// Runtime returns the runtime the stream was built by.
	Runtime() *Runtime
}

// stateStream is the Stream built by Runtime.New.
type stateStream struct {
	name      string
	runtime   *Runtime
	primitive observable.Primitive
	logger    *slog.Logger
	state     observable.Observable

	// updateMu serializes Next calls while the updater runs.
	updateMu sync.Mutex

	// deliverMu guards the delivery queue. Deliveries are enqueued while
	// mu is held, so the queue follows the order of state changes.
	deliverMu  sync.Mutex
	pending    []delivery
	delivering bool

	mu            sync.RWMutex
	value         any
	disposed      bool
	observers     []*observerEntry
	subscriptions []observable.Subscription
	methods       map[string]Method
	emitters      map[string]Method

	// self is the public instance returned after plugins ran.
	self Stream
}

var _ Stream = (*stateStream)(nil)

// New constructs a stream named name holding initial. When sources are
// given the stream's state becomes the combination of every source and
// itself. The registry's plugins run last and may substitute the instance.
func (r *Runtime) New(name string, initial any, sources ...Stream) (Stream, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("R010").WithDetailf("got %q", name)
	}

	primitive, err := r.Current()
	if err != nil {
		return nil, err
	}

	s := &stateStream{
		name:      name,
		runtime:   r,
		primitive: primitive,
		logger:    r.Logger().With("stream", name),
		methods:   make(map[string]Method),
		emitters:  make(map[string]Method),
	}

	base := s.newState(initial)
	state, err := s.combine(base, sources)
	if err != nil {
		s.Dispose()
		return nil, err
	}
	s.state = state

	public, err := r.InstallPlugins(s)
	if err != nil {
		s.Dispose()
		return nil, err
	}

	s.mu.Lock()
	s.self = public
	s.mu.Unlock()

	s.logger.Debug("stream created", "sources", len(sources))
	return public, nil
}

// Name implements Stream.
func (s *stateStream) Name() string { return s.name }

// State implements Stream.
func (s *stateStream) State() observable.Observable { return s.state }

// Primitive implements Stream.
func (s *stateStream) Primitive() observable.Primitive { return s.primitive }

// Runtime implements Stream.
func (s *stateStream) Runtime() *Runtime { return s.runtime }

// Emitter implements Stream.
func (s *stateStream) Emitter(name string, updater EmitterFunc) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("R012").WithDetailf("stream %q", s.name)
	}
	if updater == nil {
		return errors.New("R024").WithDetailf("emitter %q on stream %q", name, s.name)
	}

	m := Method(func(args ...any) (any, error) {
		return nil, s.public().Next(updater(args...))
	})

	s.mu.Lock()
	s.methods[name] = m
	s.emitters[name] = m
	s.mu.Unlock()
	return nil
}

// Emitters implements Stream.
func (s *stateStream) Emitters() map[string]Method {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Method, len(s.emitters))
	for name, m := range s.emitters {
		out[name] = m
	}
	return out
}

// Emit implements Stream.
func (s *stateStream) Emit(name string, args ...any) error {
	s.mu.RLock()
	m, ok := s.emitters[name]
	s.mu.RUnlock()

	if !ok {
		return errors.New("R013").WithDetailf("no emitter %q on stream %q", name, s.name)
	}
	_, err := m(args...)
	return err
}

// Method implements Stream.
func (s *stateStream) Method(name string) (Method, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.methods[name]
	return m, ok
}

// SetMethod implements Stream.
func (s *stateStream) SetMethod(name string, m Method) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("R012").WithDetailf("stream %q", s.name)
	}
	if m == nil {
		return errors.New("R026").WithDetailf("method %q on stream %q", name, s.name)
	}

	s.mu.Lock()
	s.methods[name] = m
	s.mu.Unlock()
	return nil
}

// Call implements Stream.
func (s *stateStream) Call(name string, args ...any) (any, error) {
	m, ok := s.Method(name)
	if !ok {
		return nil, errors.New("R013").WithDetailf("no method %q on stream %q", name, s.name)
	}
	return m(args...)
}

// Subscriptions implements Stream.
func (s *stateStream) Subscriptions() []observable.Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]observable.Subscription, len(s.subscriptions))
	copy(out, s.subscriptions)
	return out
}

// Dispose implements Stream.
func (s *stateStream) Dispose() {
	for _, sub := range s.Subscriptions() {
		sub.Unsubscribe()
	}
}

// public returns the instance callers see, so emitters route through any
// plugin wrappers.
func (s *stateStream) public() Stream {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.self != nil {
		return s.self
	}
	return s
}

// track records sub for Dispose. It reports false, recording nothing, once
// the stream is disposed.
func (s *stateStream) track(sub observable.Subscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false
	}
	s.subscriptions = append(s.subscriptions, sub)
	return true
}

func (s *stateStream) untrack(sub observable.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.subscriptions {
		if existing == sub {
			s.subscriptions = append(s.subscriptions[:i], s.subscriptions[i+1:]...)
			return
		}
	}
}

// isNilStream reports whether s is nil or a typed-nil pointer.
func isNilStream(s Stream) bool {
	if s == nil {
		return true
	}
	rv := reflect.ValueOf(s)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
