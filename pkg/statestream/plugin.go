package statestream

import (
	"github.com/vango-dev/rxstate/internal/errors"
)

// PluginFunc transforms a freshly constructed stream. Returning nil keeps
// the stream it was given; returning another Stream substitutes it.
type PluginFunc func(s Stream) Stream

// Plugin is a named PluginFunc. Plugins are compared by pointer, so keep
// the value returned by NewPlugin to remove it later.
type Plugin struct {
	name string
	fn   PluginFunc
}

// NewPlugin creates a plugin.
func NewPlugin(name string, fn PluginFunc) *Plugin {
	return &Plugin{name: name, fn: fn}
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

// Apply runs the plugin on s and returns the resulting candidate.
func (p *Plugin) Apply(s Stream) Stream {
	if out := p.fn(s); !isNilStream(out) {
		return out
	}
	return s
}

func (p *Plugin) callable() bool {
	return p != nil && p.fn != nil
}

func validatePlugins(plugins []*Plugin) error {
	for i, p := range plugins {
		if !p.callable() {
			return errors.New("R021").WithDetailf("plugin %d (%q) has no function", i, p.Name())
		}
	}
	return nil
}

// AddPlugin appends plugins to the registry in order. Nothing is appended
// if any of them is nil or has no function.
func (r *Runtime) AddPlugin(plugins ...*Plugin) error {
	if err := validatePlugins(plugins); err != nil {
		return err
	}

	r.mu.Lock()
	r.plugins = append(r.plugins, plugins...)
	r.mu.Unlock()
	return nil
}

// RemovePlugin removes the given plugins from the registry. With no
// arguments it clears the registry. Plugins not in the registry are ignored.
func (r *Runtime) RemovePlugin(plugins ...*Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(plugins) == 0 {
		r.plugins = nil
		return
	}

	kept := r.plugins[:0:0]
	for _, p := range r.plugins {
		if !containsPlugin(plugins, p) {
			kept = append(kept, p)
		}
	}
	r.plugins = kept
}

func containsPlugin(plugins []*Plugin, p *Plugin) bool {
	for _, candidate := range plugins {
		if candidate == p {
			return true
		}
	}
	return false
}

// Plugins returns a copy of the plugin registry.
func (r *Runtime) Plugins() []*Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

// SetPlugins replaces the registry without validation. InstallPlugins
// rejects invalid entries when streams are constructed.
func (r *Runtime) SetPlugins(plugins []*Plugin) {
	r.mu.Lock()
	r.plugins = append([]*Plugin(nil), plugins...)
	r.mu.Unlock()
}

// InstallPlugins folds the registry over s, left to right, and returns the
// final candidate.
func (r *Runtime) InstallPlugins(s Stream) (Stream, error) {
	plugins := r.Plugins()
	if err := validatePlugins(plugins); err != nil {
		return nil, err
	}

	candidate := s
	for _, p := range plugins {
		candidate = p.Apply(candidate)
	}
	return candidate, nil
}
