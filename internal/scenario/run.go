package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"github.com/vango-dev/rxstate/internal/errors"
	"github.com/vango-dev/rxstate/pkg/observable"
	"github.com/vango-dev/rxstate/pkg/statestream"
)

// Env holds the streams built from a scenario.
type Env struct {
	runtime *statestream.Runtime
	streams map[string]statestream.Stream
	order   []string
}

// Build constructs every declared stream on the runtime carried by ctx and
// registers their emitters. On error the streams built so far are disposed.
func (sc *Scenario) Build(ctx context.Context) (*Env, error) {
	rt := statestream.FromContext(ctx)
	env := &Env{
		runtime: rt,
		streams: make(map[string]statestream.Stream, len(sc.Streams)),
	}

	for i, def := range sc.Streams {
		sources := make([]statestream.Stream, 0, len(def.Sources))
		for _, name := range def.Sources {
			sources = append(sources, env.streams[name])
		}

		s, err := rt.New(def.Name, def.Initial, sources...)
		if err != nil {
			env.Dispose()
			return nil, errors.New("R031").WithDetailf("streams[%d]: cannot build %q", i, def.Name).Wrap(err)
		}

		for _, name := range slices.Sorted(maps.Keys(def.Emitters)) {
			if err := s.Emitter(name, operations[def.Emitters[name].Op]); err != nil {
				s.Dispose()
				env.Dispose()
				return nil, errors.New("R031").WithDetailf("streams[%d]: emitter %q", i, name).Wrap(err)
			}
		}

		env.streams[def.Name] = s
		env.order = append(env.order, def.Name)
	}

	rt.Logger().Debug("scenario built", "streams", len(env.order))
	return env, nil
}

// Stream returns the stream built for name.
func (e *Env) Stream(name string) (statestream.Stream, bool) {
	s, ok := e.streams[name]
	return s, ok
}

// Names returns the stream names in declaration order.
func (e *Env) Names() []string {
	return slices.Clone(e.order)
}

// Dispose disposes every stream, most recently built first.
func (e *Env) Dispose() {
	for i := len(e.order) - 1; i >= 0; i-- {
		e.streams[e.order[i]].Dispose()
	}
}

// Emission is one watched value. Run writes one JSON object per line.
type Emission struct {
	Seq    int    `json:"seq"`
	Stream string `json:"stream"`
	Value  any    `json:"value"`
}

// Run subscribes to the watched streams, applies every step in order and
// writes each watched emission to w. Watchers are released before Run
// returns; the streams are left to the caller.
func (sc *Scenario) Run(ctx context.Context, env *Env, w io.Writer) error {
	out := &emissionWriter{enc: json.NewEncoder(w)}

	subs := make([]observable.Subscription, 0, len(sc.Watch))
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}()

	for _, name := range sc.Watch {
		s, ok := env.Stream(name)
		if !ok {
			return errors.New("R031").WithDetailf("watch: unknown stream %q", name)
		}
		subs = append(subs, s.State().Subscribe(observable.NextFunc(func(v any) {
			out.write(name, v)
		})))
	}

	logger := env.runtime.Logger()
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, ok := env.Stream(step.Stream)
		if !ok {
			return errors.New("R031").WithDetailf("steps[%d]: unknown stream %q", i, step.Stream)
		}

		logger.Debug("scenario step", "index", i, "stream", step.Stream, "action", step.Action)
		if err := apply(s, step); err != nil {
			return fmt.Errorf("steps[%d] (line %d): %w", i, step.Line, err)
		}
		if err := out.err(); err != nil {
			return err
		}
	}
	return out.err()
}

func apply(s statestream.Stream, step Step) error {
	switch step.Action {
	case ActionSet:
		return s.Next(statestream.Set(step.Value))
	case ActionAdd:
		return s.Next(addOp(step.Value))
	case ActionEmit:
		return s.Emit(step.Emit, step.Args...)
	case ActionDispose:
		s.Dispose()
		return nil
	}
	return errors.New("R031").WithDetailf("unknown action %q", step.Action)
}

// emissionWriter serializes watched emissions and keeps the first write
// error.
type emissionWriter struct {
	mu       sync.Mutex
	enc      *json.Encoder
	seq      int
	firstErr error
}

func (w *emissionWriter) write(stream string, v any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.firstErr != nil {
		return
	}
	w.seq++
	if err := w.enc.Encode(Emission{Seq: w.seq, Stream: stream, Value: v}); err != nil {
		w.firstErr = err
	}
}

func (w *emissionWriter) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.firstErr
}
