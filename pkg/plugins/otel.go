package plugins

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/rxstate/pkg/observable"
	"github.com/vango-dev/rxstate/pkg/statestream"
)

// Default tracer name for rxstate streams.
const defaultTracerName = "rxstate"

// OTelConfig configures the OpenTelemetry plugin.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "rxstate").
	TracerName string

	// TracerProvider supplies the tracer.
	// Default: the global provider from otel.GetTracerProvider.
	TracerProvider trace.TracerProvider

	// AttributeExtractor adds custom attributes to every span.
	AttributeExtractor func(s statestream.Stream) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry plugin.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(s statestream.Stream) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry returns a plugin that traces every update, emit, event
// runner and disposal of the streams it wraps.
//
// Span names:
//   - statestream.next
//   - statestream.emit
//   - statestream.event_runner
//   - statestream.dispose
//
// Every span carries rxstate.stream; failed calls record the error and set
// the span status to Error.
func OpenTelemetry(opts ...OTelOption) *statestream.Plugin {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(config.TracerName)

	return statestream.NewPlugin("opentelemetry", func(s statestream.Stream) statestream.Stream {
		return &tracedStream{Stream: s, tracer: tracer, config: config}
	})
}

// tracedStream starts a span around each intercepted call.
type tracedStream struct {
	statestream.Stream
	tracer trace.Tracer
	config OTelConfig
}

func (s *tracedStream) start(name string, attrs ...attribute.KeyValue) trace.Span {
	attrs = append(attrs, attribute.String("rxstate.stream", s.Name()))
	if s.config.AttributeExtractor != nil {
		attrs = append(attrs, s.config.AttributeExtractor(s.Stream)...)
	}
	_, span := s.tracer.Start(context.Background(), name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return span
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (s *tracedStream) Next(updater statestream.Updater) error {
	span := s.start("statestream.next", attribute.Bool("rxstate.disposed", s.Disposed()))
	err := s.Stream.Next(updater)
	finish(span, err)
	return err
}

func (s *tracedStream) Emit(name string, args ...any) error {
	span := s.start("statestream.emit",
		attribute.String("rxstate.emitter", name),
		attribute.Int("rxstate.args", len(args)),
	)
	err := s.Stream.Emit(name, args...)
	finish(span, err)
	return err
}

func (s *tracedStream) EventRunner(factory statestream.Factory, input ...any) (observable.Observable, error) {
	span := s.start("statestream.event_runner", attribute.Bool("rxstate.input", len(input) > 0))
	out, err := s.Stream.EventRunner(factory, input...)
	finish(span, err)
	return out, err
}

func (s *tracedStream) Dispose() {
	span := s.start("statestream.dispose")
	s.Stream.Dispose()
	finish(span, nil)
}
