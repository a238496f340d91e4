package rxstate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vango-dev/rxstate"
)

func TestFacade(t *testing.T) {
	rxstate.Teardown()
	t.Cleanup(rxstate.Teardown)

	_, err := rxstate.New("count", 0)
	require.ErrorIs(t, err, rxstate.ErrConfiguration)

	require.NoError(t, rxstate.Setup(rxstate.SetupOptions{Primitive: rxstate.Basic{}}))
	p, err := rxstate.GetObservable()
	require.NoError(t, err)
	require.True(t, rxstate.IsObservable(p))

	var seen []any
	count, err := rxstate.New("count", 0)
	require.NoError(t, err)
	count.State().Subscribe(rxstate.NextFunc(func(v any) { seen = append(seen, v) }))

	require.NoError(t, count.Emitter("add", func(args ...any) rxstate.Updater {
		return rxstate.Reduce(func(n int) int { return n + args[0].(int) })
	}))
	require.NoError(t, count.Emit("add", 2))
	require.NoError(t, count.Next(rxstate.Set(10)))

	require.Equal(t, []any{0, 2, 10}, seen)
	v, ok := rxstate.Value[int](count)
	require.True(t, ok)
	require.Equal(t, 10, v)
}

func TestFacade_Plugins(t *testing.T) {
	rxstate.Teardown()
	t.Cleanup(rxstate.Teardown)
	require.NoError(t, rxstate.Setup(rxstate.SetupOptions{Primitive: rxstate.Basic{}}))

	var names []string
	p := rxstate.NewPlugin("names", func(s rxstate.StateStream) rxstate.StateStream {
		names = append(names, s.Name())
		return nil
	})
	require.NoError(t, rxstate.AddPlugin(p))

	_, err := rxstate.New("a", 1)
	require.NoError(t, err)
	rxstate.RemovePlugin(p)
	_, err = rxstate.New("b", 1)
	require.NoError(t, err)

	require.Equal(t, []string{"a"}, names)
	require.ErrorIs(t, rxstate.AddPlugin(nil), rxstate.ErrType)
}
