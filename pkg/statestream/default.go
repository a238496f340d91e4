package statestream

import (
	"github.com/vango-dev/rxstate/pkg/observable"
)

// defaultRuntime backs the package-level API.
var defaultRuntime = NewRuntime()

// Default returns the process-wide runtime used by the package-level
// functions.
func Default() *Runtime {
	return defaultRuntime
}

// Setup installs the primitive and seeds the plugins of the default runtime.
// It is meant to run once at program start.
func Setup(opts SetupOptions) error {
	return defaultRuntime.Setup(opts)
}

// Teardown resets the default runtime.
func Teardown() {
	defaultRuntime.Teardown()
}

// New constructs a stream with the default runtime.
func New(name string, initial any, sources ...Stream) (Stream, error) {
	return defaultRuntime.New(name, initial, sources...)
}

// GetObservable returns the primitive installed in the default runtime.
func GetObservable() (observable.Primitive, error) {
	return defaultRuntime.Current()
}

// AddPlugin appends plugins to the default runtime.
func AddPlugin(plugins ...*Plugin) error {
	return defaultRuntime.AddPlugin(plugins...)
}

// RemovePlugin removes plugins from the default runtime; with no arguments
// it removes all of them.
func RemovePlugin(plugins ...*Plugin) {
	defaultRuntime.RemovePlugin(plugins...)
}

// Plugins returns the default runtime's plugins.
func Plugins() []*Plugin {
	return defaultRuntime.Plugins()
}
