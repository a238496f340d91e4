package statestream

import "context"

type runtimeKey struct{}

// NewContext returns a copy of ctx carrying r.
func NewContext(ctx context.Context, r *Runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, r)
}

// FromContext returns the runtime carried by ctx, or the default runtime.
func FromContext(ctx context.Context) *Runtime {
	if ctx != nil {
		if r, ok := ctx.Value(runtimeKey{}).(*Runtime); ok && r != nil {
			return r
		}
	}
	return defaultRuntime
}
