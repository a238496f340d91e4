// Package rxstate provides the public API for rxstate state streams.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/rxstate"
//
// Usage:
//
//	if err := rxstate.Setup(rxstate.SetupOptions{Primitive: rxstate.Basic{}}); err != nil {
//	    return err
//	}
//	defer rxstate.Teardown()
//
//	count, _ := rxstate.New("count", 0)
//	count.Emitter("add", func(args ...any) rxstate.Updater {
//	    return rxstate.Reduce(func(n int) int { return n + args[0].(int) })
//	})
//	count.Emit("add", 2)
package rxstate

import (
	"github.com/vango-dev/rxstate/pkg/observable"
	"github.com/vango-dev/rxstate/pkg/statestream"
)

// =============================================================================
// Observables (re-export from pkg/observable)
// =============================================================================

// Observable is a push-stream that can be subscribed to.
type Observable = observable.Observable

// Observer receives values and completion from an Observable.
type Observer = observable.Observer

// Subscription cancels delivery to one Observer.
type Subscription = observable.Subscription

// Primitive constructs observables.
type Primitive = observable.Primitive

// Basic is the built-in synchronous Primitive.
type Basic = observable.Basic

// IsObservable reports whether v can act as an observable or as a Primitive.
var IsObservable = observable.IsObservable

// NextFunc adapts a function to an Observer that ignores completion.
var NextFunc = observable.NextFunc

// =============================================================================
// State streams (re-export from pkg/statestream)
// =============================================================================

// StateStream is a named state container exposed as a replayable stream.
type StateStream = statestream.Stream

// Runtime holds the installed primitive and plugin registry.
type Runtime = statestream.Runtime

// SetupOptions configures Setup.
type SetupOptions = statestream.SetupOptions

// Updater computes a new state from the old one.
type Updater = statestream.Updater

// Factory transforms an input stream for EventRunner.
type Factory = statestream.Factory

// EmitterFunc turns emitter arguments into an Updater.
type EmitterFunc = statestream.EmitterFunc

// Plugin extends every stream constructed after it is registered.
type Plugin = statestream.Plugin

// PluginFunc is the function a Plugin applies.
type PluginFunc = statestream.PluginFunc

// NewRuntime creates an isolated runtime.
var NewRuntime = statestream.NewRuntime

// NewPlugin creates a named plugin.
var NewPlugin = statestream.NewPlugin

// Set returns an Updater that replaces the state.
var Set = statestream.Set

// Setup installs a primitive and plugins on the default runtime.
func Setup(opts SetupOptions) error {
	return statestream.Setup(opts)
}

// Teardown clears the default runtime.
func Teardown() {
	statestream.Teardown()
}

// New constructs a stream on the default runtime.
func New(name string, initial any, sources ...StateStream) (StateStream, error) {
	return statestream.New(name, initial, sources...)
}

// GetObservable returns the primitive installed on the default runtime.
func GetObservable() (Primitive, error) {
	return statestream.GetObservable()
}

// AddPlugin appends plugins to the default runtime.
func AddPlugin(plugins ...*Plugin) error {
	return statestream.AddPlugin(plugins...)
}

// RemovePlugin removes plugins from the default runtime, or all of them
// when called with no arguments.
func RemovePlugin(plugins ...*Plugin) {
	statestream.RemovePlugin(plugins...)
}

// Reduce adapts a typed reducer to an Updater.
func Reduce[T any](fn func(old T) T) Updater {
	return statestream.Reduce(fn)
}

// Value returns the current state of s as a T.
func Value[T any](s StateStream) (T, bool) {
	return statestream.Value[T](s)
}

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrConfiguration matches setup and installation errors.
	ErrConfiguration = statestream.ErrConfiguration

	// ErrValue matches invalid names and unknown methods.
	ErrValue = statestream.ErrValue

	// ErrType matches arguments of the wrong kind.
	ErrType = statestream.ErrType
)
