// Package plugins provides statestream plugins for observability.
//
// Each plugin wraps new streams in a type that embeds the original
// statestream.Stream and intercepts Next, Emit, EventRunner and Dispose.
// Emitters dispatch through the outermost wrapper, so emitter-driven
// updates are observed as well.
//
//	rt := statestream.NewRuntime(statestream.WithPrimitive(observable.Basic{}))
//	rt.AddPlugin(
//	    plugins.Logging(logger),
//	    plugins.Prometheus(),
//	    plugins.OpenTelemetry(plugins.WithTracerName("checkout")),
//	)
//
// Plugins apply in registry order, so the last one added is the outermost
// wrapper.
package plugins
