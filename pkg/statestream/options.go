package statestream

import (
	"log/slog"

	"github.com/vango-dev/rxstate/pkg/observable"
)

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger sets the runtime logger.
// Default: slog.Default() with component=statestream.
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPrimitive installs p at construction, so the runtime is usable
// without a separate Setup call. A value that is not a primitive is ignored.
func WithPrimitive(p observable.Primitive) RuntimeOption {
	return func(r *Runtime) {
		if observable.IsObservable(p) {
			r.primitive = p
		}
	}
}
