package statestream

import (
	"log/slog"
	"sync"

	"github.com/vango-dev/rxstate/internal/errors"
	"github.com/vango-dev/rxstate/pkg/observable"
)

// Runtime is the process-scoped configuration every state stream is built
// from: the installed observable primitive, the plugin registry, and the
// logger used for diagnostics.
//
// Most programs use the default runtime through the package-level Setup,
// Teardown and New functions. Tests and embedders that need isolation create
// their own with NewRuntime and pass it explicitly or through a context.
type Runtime struct {
	mu        sync.RWMutex
	primitive observable.Primitive
	plugins   []*Plugin
	logger    *slog.Logger
}

// NewRuntime creates an empty runtime. Without WithPrimitive it must be
// set up before streams can be constructed.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		logger: slog.Default().With("component", "statestream"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// SetupOptions configures Runtime.Setup.
type SetupOptions struct {
	// Primitive is the observable implementation to install. Required.
	Primitive observable.Primitive

	// Plugins seed the plugin registry, in order.
	Plugins []*Plugin
}

// Setup installs opts.Primitive and appends opts.Plugins to the registry.
// Nothing is changed when any part of opts is invalid.
func (r *Runtime) Setup(opts SetupOptions) error {
	if !observable.IsObservable(opts.Primitive) {
		return errors.New("R003").WithDetailf("setup got %T", opts.Primitive)
	}
	if err := validatePlugins(opts.Plugins); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.primitive != nil {
		return errors.New("R001")
	}
	r.primitive = opts.Primitive
	r.plugins = append(r.plugins, opts.Plugins...)

	r.logger.Debug("runtime set up", "plugins", len(r.plugins))
	return nil
}

// Teardown clears the installed primitive and every plugin. Streams already
// constructed keep working with the primitive they were built with.
func (r *Runtime) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.primitive = nil
	r.plugins = nil
	r.logger.Debug("runtime torn down")
}

// Install sets the observable primitive. It fails if one is already
// installed; registration happens once per runtime lifetime unless Clear
// is called in between.
func (r *Runtime) Install(p observable.Primitive) error {
	if !observable.IsObservable(p) {
		return errors.New("R003").WithDetailf("install got %T", p)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.primitive != nil {
		return errors.New("R001")
	}
	r.primitive = p
	return nil
}

// Current returns the installed primitive.
func (r *Runtime) Current() (observable.Primitive, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.primitive == nil {
		return nil, errors.New("R002")
	}
	return r.primitive, nil
}

// Clear empties the primitive slot. It is idempotent.
func (r *Runtime) Clear() {
	r.mu.Lock()
	r.primitive = nil
	r.mu.Unlock()
}

// Logger returns the runtime's logger.
func (r *Runtime) Logger() *slog.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logger
}

// SetLogger replaces the runtime's logger. A nil logger is ignored.
// Streams pick up the logger at construction time.
func (r *Runtime) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	r.mu.Lock()
	r.logger = logger
	r.mu.Unlock()
}
