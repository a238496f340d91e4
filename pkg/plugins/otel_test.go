package plugins_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/rxstate/pkg/plugins"
	"github.com/vango-dev/rxstate/pkg/statestream"
)

// recordingProvider hands out a tracer that keeps every span it starts.
type recordingProvider struct {
	noop.TracerProvider
	tracer *recordingTracer
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{tracer: &recordingTracer{}}
}

func (p *recordingProvider) Tracer(name string, _ ...trace.TracerOption) trace.Tracer {
	p.tracer.name = name
	return p.tracer
}

type recordingTracer struct {
	noop.Tracer
	name  string
	mu    sync.Mutex
	spans []*recordedSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	span := &recordedSpan{name: name, attrs: cfg.Attributes()}
	t.mu.Lock()
	t.spans = append(t.spans, span)
	t.mu.Unlock()
	return trace.ContextWithSpan(ctx, span), span
}

func (t *recordingTracer) recorded() []*recordedSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*recordedSpan(nil), t.spans...)
}

type recordedSpan struct {
	noop.Span
	name   string
	attrs  []attribute.KeyValue
	status codes.Code
	errs   []error
	ended  bool
}

func (s *recordedSpan) End(...trace.SpanEndOption) {
	s.ended = true
}

func (s *recordedSpan) SetStatus(code codes.Code, _ string) {
	s.status = code
}

func (s *recordedSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}

func (s *recordedSpan) attr(key string) (attribute.Value, bool) {
	for _, kv := range s.attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestOpenTelemetry_Spans(t *testing.T) {
	tp := newRecordingProvider()
	rt := newRuntime(t, plugins.OpenTelemetry(
		plugins.WithTracerProvider(tp),
		plugins.WithTracerName("test"),
		plugins.WithAttributeExtractor(func(s statestream.Stream) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("owner", "team-a")}
		}),
	))
	require.Equal(t, "test", tp.tracer.name)

	s := mustNew(t, rt, "counter", 0)
	require.NoError(t, s.Emitter("inc", inc))
	require.NoError(t, s.Emit("inc", 2))
	_, err := s.EventRunner(nil)
	require.NoError(t, err)
	s.Dispose()

	spans := tp.tracer.recorded()
	names := make([]string, len(spans))
	for i, span := range spans {
		names[i] = span.name
		require.True(t, span.ended, span.name)
		require.Equal(t, codes.Ok, span.status, span.name)

		v, ok := span.attr("rxstate.stream")
		require.True(t, ok)
		require.Equal(t, "counter", v.AsString())
		v, ok = span.attr("owner")
		require.True(t, ok)
		require.Equal(t, "team-a", v.AsString())
	}
	require.Equal(t, []string{
		"statestream.emit",
		"statestream.next",
		"statestream.event_runner",
		"statestream.dispose",
	}, names)

	v, ok := spans[0].attr("rxstate.emitter")
	require.True(t, ok)
	require.Equal(t, "inc", v.AsString())
}

func TestOpenTelemetry_RecordsErrors(t *testing.T) {
	tp := newRecordingProvider()
	rt := newRuntime(t, plugins.OpenTelemetry(plugins.WithTracerProvider(tp)))
	require.Equal(t, "rxstate", tp.tracer.name)

	s := mustNew(t, rt, "counter", 0)
	err := s.Next(nil)
	require.ErrorIs(t, err, statestream.ErrType)

	err = s.Emit("missing")
	require.ErrorIs(t, err, statestream.ErrValue)

	spans := tp.tracer.recorded()
	require.Len(t, spans, 2)
	for _, span := range spans {
		require.Equal(t, codes.Error, span.status)
		require.Len(t, span.errs, 1)
	}
}
