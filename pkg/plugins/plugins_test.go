package plugins_test

import (
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/rxstate/pkg/observable"
	"github.com/vango-dev/rxstate/pkg/statestream"
)

func newRuntime(t *testing.T, plugins ...*statestream.Plugin) *statestream.Runtime {
	t.Helper()
	rt := statestream.NewRuntime(
		statestream.WithLogger(slogt.New(t)),
		statestream.WithPrimitive(observable.Basic{}),
	)
	require.NoError(t, rt.AddPlugin(plugins...))
	return rt
}

func mustNew(t *testing.T, rt *statestream.Runtime, name string, initial any, sources ...statestream.Stream) statestream.Stream {
	t.Helper()
	s, err := rt.New(name, initial, sources...)
	require.NoError(t, err)
	return s
}

func inc(args ...any) statestream.Updater {
	n := 1
	if len(args) > 0 {
		n = args[0].(int)
	}
	return statestream.Reduce(func(v int) int { return v + n })
}
