package statestream_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vango-dev/rxstate/pkg/observable"
	"github.com/vango-dev/rxstate/pkg/observable/observabletest"
	"github.com/vango-dev/rxstate/pkg/statestream"
)

func TestCombine_InitialAggregate(t *testing.T) {
	rt := newRuntime(t)
	a := mustNew(t, rt, "a", "A")
	b := mustNew(t, rt, "b", "B")
	c := mustNew(t, rt, "c", "C", a, b)

	r := observabletest.NewRecorder()
	c.State().Subscribe(r)
	require.Equal(t, []any{map[string]any{"a": "A", "b": "B", "c": "C"}}, r.Values())

	require.NoError(t, a.Next(statestream.Set("AA")))
	last, ok := r.Last()
	require.True(t, ok)
	require.Equal(t, map[string]any{"a": "AA", "b": "B", "c": "C"}, last)
}

func TestCombine_EveryParticipantUpdate(t *testing.T) {
	rt := newRuntime(t)
	sa := mustNew(t, rt, "sourceA", "A")
	sb := mustNew(t, rt, "sourceB", "B")
	sc := mustNew(t, rt, "sourceC", "C")
	stream := mustNew(t, rt, "stream", "source", sa, sb, sc)

	r := observabletest.NewRecorder()
	stream.State().Subscribe(r)

	require.NoError(t, sa.Next(statestream.Set("AA")))
	require.NoError(t, sb.Next(statestream.Set("BB")))
	require.NoError(t, sc.Next(statestream.Set("CC")))
	require.NoError(t, stream.Next(statestream.Set("self")))

	require.Equal(t, []any{
		map[string]any{"sourceA": "A", "sourceB": "B", "sourceC": "C", "stream": "source"},
		map[string]any{"sourceA": "AA", "sourceB": "B", "sourceC": "C", "stream": "source"},
		map[string]any{"sourceA": "AA", "sourceB": "BB", "sourceC": "C", "stream": "source"},
		map[string]any{"sourceA": "AA", "sourceB": "BB", "sourceC": "CC", "stream": "source"},
		map[string]any{"sourceA": "AA", "sourceB": "BB", "sourceC": "CC", "stream": "self"},
	}, r.Values())

	// GetState stays the stream's own value.
	require.Equal(t, "self", stream.GetState())
}

func TestCombine_Nested(t *testing.T) {
	rt := newRuntime(t)
	a := mustNew(t, rt, "streamA", "A")
	b := mustNew(t, rt, "streamB", "B")
	c := mustNew(t, rt, "streamC", "C")
	stream := mustNew(t, rt, "stream", "stream1", a, b, c)
	stream2 := mustNew(t, rt, "stream2", "stream2", stream, a)

	r := observabletest.NewRecorder()
	stream2.State().Subscribe(r)

	require.Equal(t, []any{map[string]any{
		"stream": map[string]any{
			"streamA": "A",
			"streamB": "B",
			"streamC": "C",
			"stream":  "stream1",
		},
		"streamA": "A",
		"stream2": "stream2",
	}}, r.Values())
}

func TestCombine_SuppressesPartialAggregates(t *testing.T) {
	rt := newRuntime(t)

	// A participant that stays silent until told to emit.
	var push func(any)
	silent := &fakeStream{
		name: "silent",
		state: observable.Basic{}.New(func(o observable.Observer) observable.Subscription {
			push = o.Next
			return nil
		}),
	}
	loud := mustNew(t, rt, "loud", 1)
	c := mustNew(t, rt, "c", 0, loud, silent)

	r := observabletest.NewRecorder()
	c.State().Subscribe(r)

	require.NoError(t, loud.Next(statestream.Set(2)))
	require.NoError(t, c.Next(statestream.Set(3)))
	require.Zero(t, r.Len(), "no aggregate before every participant emitted")

	push("now")
	require.Equal(t, []any{map[string]any{"loud": 2, "silent": "now", "c": 3}}, r.Values())
}

func TestCombine_Unsubscribe(t *testing.T) {
	rt := newRuntime(t)
	a := mustNew(t, rt, "sourceA", "A")
	b := mustNew(t, rt, "sourceB", "B")
	stream := mustNew(t, rt, "stream", "C", a, b)

	r := observabletest.NewRecorder()
	sub := stream.State().Subscribe(r)
	require.Len(t, a.Observers(), 1)
	require.Len(t, stream.Subscriptions(), 2)

	sub.Unsubscribe()

	require.NoError(t, a.Next(statestream.Set("AA")))
	require.NoError(t, b.Next(statestream.Set("BB")))
	require.NoError(t, stream.Next(statestream.Set("CC")))

	require.Equal(t, 1, r.Len())
	require.Empty(t, a.Observers())
	require.Empty(t, b.Observers())
	require.Empty(t, stream.Observers())
	require.Len(t, stream.Subscriptions(), 1, "released group is no longer tracked")
	require.False(t, a.Disposed(), "participants are not disposed")
}

func TestCombine_DisposeReleasesParticipants(t *testing.T) {
	rt := newRuntime(t)
	a := mustNew(t, rt, "a", "A")
	c := mustNew(t, rt, "c", "C", a)

	r := observabletest.NewRecorder()
	c.State().Subscribe(r)
	require.Len(t, a.Observers(), 1)

	c.Dispose()

	require.True(t, c.Disposed())
	require.False(t, a.Disposed())
	require.Empty(t, a.Observers())

	require.NoError(t, a.Next(statestream.Set("AA")))
	require.Equal(t, 1, r.Len())
}

func TestCombine_SubscribeAfterDispose(t *testing.T) {
	rt := newRuntime(t)
	a := mustNew(t, rt, "a", "A")
	c := mustNew(t, rt, "c", "C", a)
	c.Dispose()

	r := observabletest.NewRecorder()
	c.State().Subscribe(r)

	require.Empty(t, r.Values())
	require.Equal(t, 1, r.Completions())
	require.Empty(t, a.Observers(), "no subscription reaches the live participant")
	require.Len(t, c.Subscriptions(), 1, "only the core handle remains")

	require.NoError(t, a.Next(statestream.Set("AA")))
	require.Empty(t, r.Values())
}

func TestCombine_Validation(t *testing.T) {
	rt := newRuntime(t)

	t.Run("valid sources", func(t *testing.T) {
		source := mustNew(t, rt, "source", "")
		streamA := mustNew(t, rt, "streamA", "", source)
		_, err := rt.New("streamB", "", source, streamA)
		require.NoError(t, err)
	})

	t.Run("nil source", func(t *testing.T) {
		source := mustNew(t, rt, "source", "")
		_, err := rt.New("stream", "", nil, source)
		require.ErrorIs(t, err, statestream.ErrType)
		require.Contains(t, err.Error(), "sources[0]")
	})

	t.Run("source without a state stream", func(t *testing.T) {
		_, err := rt.New("stream", "", &fakeStream{name: "broken"})
		require.ErrorIs(t, err, statestream.ErrType)
	})

	t.Run("source without a name", func(t *testing.T) {
		_, err := rt.New("stream", "", &fakeStream{state: observable.Basic{}.Of(1)})
		require.ErrorIs(t, err, statestream.ErrType)
	})

	t.Run("duplicate source names", func(t *testing.T) {
		a1 := mustNew(t, rt, "streamA", "A")
		a2 := mustNew(t, rt, "streamA", "B")
		_, err := rt.New("stream", nil, a1, a2)
		require.ErrorIs(t, err, statestream.ErrValue)
		require.Contains(t, err.Error(), `"streamA"`)
	})

	t.Run("source named like self", func(t *testing.T) {
		a := mustNew(t, rt, "streamA", "A")
		_, err := rt.New("streamA", nil, a)
		require.ErrorIs(t, err, statestream.ErrValue)
	})
}

// fakeStream is a hand-rolled participant. Only Name and State matter to a
// combination.
type fakeStream struct {
	statestream.Stream
	name  string
	state observable.Observable
}

func (f *fakeStream) Name() string                 { return f.name }
func (f *fakeStream) State() observable.Observable { return f.state }
