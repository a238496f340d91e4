package statestream_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vango-dev/rxstate/pkg/observable"
	"github.com/vango-dev/rxstate/pkg/observable/observabletest"
	"github.com/vango-dev/rxstate/pkg/statestream"
)

func TestEventRunner_InputResolution(t *testing.T) {
	rt := newRuntime(t)
	s := mustNew(t, rt, "stateStream", 0)

	tests := []struct {
		name  string
		input []any
		want  any
	}{
		{"omitted input emits current state", nil, 0},
		{"observable input is used as is", []any{observable.Basic{}.Of("value")}, "value"},
		{"string is wrapped", []any{"value"}, "value"},
		{"number is wrapped", []any{1}, 1},
		{"map is wrapped", []any{map[string]any{}}, map[string]any{}},
		{"nil is wrapped", []any{nil}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := observabletest.NewRecorder()
			_, err := s.EventRunner(func(in observable.Observable) observable.Observable {
				in.Subscribe(seen)
				return in
			}, tt.input...)
			require.NoError(t, err)
			require.Equal(t, []any{tt.want}, seen.Values())
		})
	}
}

func TestEventRunner_NilFactoryIsIdentity(t *testing.T) {
	rt := newRuntime(t)
	s := mustNew(t, rt, "stateStream", 0)

	out, err := s.EventRunner(nil)
	require.NoError(t, err)

	r := observabletest.NewRecorder()
	out.Subscribe(r)
	require.Equal(t, []any{0}, r.Values())
}

func TestEventRunner_FactoryMustReturnObservable(t *testing.T) {
	rt := newRuntime(t)
	s := mustNew(t, rt, "stateStream", 0)

	_, err := s.EventRunner(func(observable.Observable) observable.Observable { return nil })
	require.ErrorIs(t, err, statestream.ErrType)
}

func TestEventRunner_FactoryRunsOnce(t *testing.T) {
	rt := newRuntime(t)
	s := mustNew(t, rt, "stateStream", 0)

	setups := 0
	out, err := s.EventRunner(func(observable.Observable) observable.Observable {
		return observable.Basic{}.New(func(o observable.Observer) observable.Subscription {
			setups++
			o.Next(1)
			return nil
		})
	})
	require.NoError(t, err)

	r1, r2 := observabletest.NewRecorder(), observabletest.NewRecorder()
	out.Subscribe(r1)
	out.Subscribe(r2)

	require.Equal(t, 1, setups)
	require.Equal(t, []any{1}, r1.Values())
	require.Equal(t, []any{1}, r2.Values())
}

func TestEventRunner_SubscribeBeforeEmission(t *testing.T) {
	rt := newRuntime(t)
	s := mustNew(t, rt, "stateStream", 0)

	var push func(any)
	source := observable.Basic{}.New(func(o observable.Observer) observable.Subscription {
		push = o.Next
		return nil
	})

	out, err := s.EventRunner(nil, source)
	require.NoError(t, err)

	r := observabletest.NewRecorder()
	out.Subscribe(r)
	push(1)

	require.Equal(t, []any{1}, r.Values())
}

func TestEventRunner_Multicast(t *testing.T) {
	rt := newRuntime(t)
	s := mustNew(t, rt, "stateStream", 0)

	out, err := s.EventRunner(nil, s.State())
	require.NoError(t, err)

	r1 := observabletest.NewRecorder()
	out.Subscribe(r1)
	require.NoError(t, s.Next(statestream.Set(1)))

	r2 := observabletest.NewRecorder()
	out.Subscribe(r2)
	require.NoError(t, s.Next(statestream.Set(2)))

	require.Equal(t, []any{0, 1, 2}, r1.Values())
	require.Equal(t, []any{1, 2}, r2.Values())
}

func TestEventRunner_Unsubscribe(t *testing.T) {
	rt := newRuntime(t)
	s := mustNew(t, rt, "stateStream", 0)

	out, err := s.EventRunner(nil, s.State())
	require.NoError(t, err)
	require.Len(t, s.Observers(), 1, "factory output is captured eagerly")

	r1, r2 := observabletest.NewRecorder(), observabletest.NewRecorder()
	sub1 := out.Subscribe(r1)
	sub2 := out.Subscribe(r2)

	require.NoError(t, s.Next(statestream.Set(1)))
	require.Equal(t, 2, r1.Len())

	sub1.Unsubscribe()
	require.Len(t, s.Observers(), 1, "upstream is kept while consumers remain")

	require.NoError(t, s.Next(statestream.Set(2)))
	require.Equal(t, 2, r1.Len())
	require.Equal(t, []any{0, 1, 2}, r2.Values())

	sub2.Unsubscribe()
	require.Empty(t, s.Observers(), "last consumer releases the upstream")

	require.NoError(t, s.Next(statestream.Set(3)))
	require.Equal(t, 3, r2.Len())
}

func TestEventRunner_Transform(t *testing.T) {
	rt := newRuntime(t)
	s := mustNew(t, rt, "stateStream", 2)

	double := func(in observable.Observable) observable.Observable {
		return observable.Basic{}.New(func(o observable.Observer) observable.Subscription {
			return in.Subscribe(observable.NextFunc(func(v any) {
				o.Next(v.(int) * 2)
			}))
		})
	}

	out, err := s.EventRunner(double, s.State())
	require.NoError(t, err)

	r := observabletest.NewRecorder()
	out.Subscribe(r)
	require.NoError(t, s.Next(statestream.Set(5)))

	require.Equal(t, []any{4, 10}, r.Values())
}
