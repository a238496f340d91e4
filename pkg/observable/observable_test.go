package observable_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	rxerrors "github.com/vango-dev/rxstate/internal/errors"
	"github.com/vango-dev/rxstate/pkg/observable"
	"github.com/vango-dev/rxstate/pkg/observable/observabletest"
)

type panickyMarker struct{}

func (panickyMarker) Observable() observable.Observable { panic("boom") }

type nilMarker struct{}

func (nilMarker) Observable() observable.Observable { return nil }

func TestIsObservable(t *testing.T) {
	var basic observable.Basic
	var typedNil *observabletest.Recorder

	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, false},
		{"string", "value", false},
		{"int", 1, false},
		{"map", map[string]any{}, false},
		{"primitive", basic, true},
		{"stream", basic.Of(1), true},
		{"typed nil", typedNil, false},
		{"panicking marker", panickyMarker{}, false},
		{"marker returning nil", nilMarker{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, observable.IsObservable(tt.v))
		})
	}
}

func TestBasic_New(t *testing.T) {
	t.Run("setup runs per subscriber", func(t *testing.T) {
		calls := 0
		obs := observable.Basic{}.New(func(o observable.Observer) observable.Subscription {
			calls++
			o.Next(0)
			return nil
		})

		r1, r2 := observabletest.NewRecorder(), observabletest.NewRecorder()
		obs.Subscribe(r1)
		obs.Subscribe(r2)

		require.Equal(t, 2, calls)
		require.Equal(t, []any{0}, r1.Values())
		require.Equal(t, []any{0}, r2.Values())
	})

	t.Run("unsubscribe runs teardown once and stops delivery", func(t *testing.T) {
		var push func(any)
		teardowns := 0
		obs := observable.Basic{}.New(func(o observable.Observer) observable.Subscription {
			push = o.Next
			return observable.SubscriptionFunc(func() { teardowns++ })
		})

		r := observabletest.NewRecorder()
		sub := obs.Subscribe(r)
		push(1)
		sub.Unsubscribe()
		sub.Unsubscribe()
		push(2)

		require.Equal(t, []any{1}, r.Values())
		require.Equal(t, 1, teardowns)
	})

	t.Run("complete closes the subscription", func(t *testing.T) {
		var obs observable.Observer
		teardowns := 0
		stream := observable.Basic{}.New(func(o observable.Observer) observable.Subscription {
			obs = o
			return observable.SubscriptionFunc(func() { teardowns++ })
		})

		r := observabletest.NewRecorder()
		sub := stream.Subscribe(r)
		obs.Complete()
		obs.Complete()
		obs.Next("late")
		sub.Unsubscribe()

		require.Empty(t, r.Values())
		require.Equal(t, 1, r.Completions())
		require.Equal(t, 1, teardowns)
	})

	t.Run("teardown returned after synchronous completion runs immediately", func(t *testing.T) {
		teardowns := 0
		stream := observable.Basic{}.New(func(o observable.Observer) observable.Subscription {
			o.Complete()
			return observable.SubscriptionFunc(func() { teardowns++ })
		})

		stream.Subscribe(observabletest.NewRecorder())
		require.Equal(t, 1, teardowns)
	})

	t.Run("nil observer is tolerated", func(t *testing.T) {
		stream := observable.Basic{}.Of(1)
		require.NotPanics(t, func() { stream.Subscribe(nil) })
	})
}

func TestBasic_Of(t *testing.T) {
	r := observabletest.NewRecorder()
	observable.Basic{}.Of("value").Subscribe(r)

	require.Equal(t, []any{"value"}, r.Values())
	require.Equal(t, 1, r.Completions())
}

func TestBasic_From(t *testing.T) {
	b := observable.Basic{}

	t.Run("slice", func(t *testing.T) {
		obs, err := b.From([]int{1, 2, 3})
		require.NoError(t, err)

		r := observabletest.NewRecorder()
		obs.Subscribe(r)
		require.Equal(t, []any{1, 2, 3}, r.Values())
		require.Equal(t, 1, r.Completions())
	})

	t.Run("array", func(t *testing.T) {
		obs, err := b.From([2]string{"a", "b"})
		require.NoError(t, err)

		r := observabletest.NewRecorder()
		obs.Subscribe(r)
		require.Equal(t, []any{"a", "b"}, r.Values())
	})

	t.Run("observable", func(t *testing.T) {
		src := b.Of(7)
		obs, err := b.From(src)
		require.NoError(t, err)
		require.Same(t, src, obs)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := b.From(42)
		require.Error(t, err)
		require.True(t, errors.Is(err, rxerrors.Kind(rxerrors.CategoryType)))
	})
}

func TestFuncs(t *testing.T) {
	var got []any
	completed := false
	o := observable.Funcs{
		OnNext:     func(v any) { got = append(got, v) },
		OnComplete: func() { completed = true },
	}

	observable.Basic{}.Of(1).Subscribe(o)
	require.Equal(t, []any{1}, got)
	require.True(t, completed)

	require.NotPanics(t, func() {
		observable.Funcs{}.Next(1)
		observable.Funcs{}.Complete()
		observable.SubscriptionFunc(nil).Unsubscribe()
	})
}
