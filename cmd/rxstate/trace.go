package main

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// logTracerProvider writes every finished span to a logger at debug level.
// It stands in for an exporter so that --trace is useful without a
// collector.
type logTracerProvider struct {
	noop.TracerProvider
	logger *slog.Logger
}

func newLogTracerProvider(logger *slog.Logger) *logTracerProvider {
	return &logTracerProvider{logger: logger}
}

func (p *logTracerProvider) Tracer(name string, _ ...trace.TracerOption) trace.Tracer {
	return &logTracer{logger: p.logger.With("tracer", name)}
}

type logTracer struct {
	noop.Tracer
	logger *slog.Logger
}

func (t *logTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	span := &logSpan{
		logger: t.logger,
		name:   name,
		start:  time.Now(),
		attrs:  cfg.Attributes(),
	}
	return trace.ContextWithSpan(ctx, span), span
}

type logSpan struct {
	noop.Span
	logger *slog.Logger
	name   string
	start  time.Time
	attrs  []attribute.KeyValue
	status codes.Code
	desc   string
	ended  bool
}

func (s *logSpan) IsRecording() bool {
	return !s.ended
}

func (s *logSpan) SetStatus(code codes.Code, description string) {
	s.status = code
	s.desc = description
}

func (s *logSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.attrs = append(s.attrs, kv...)
}

func (s *logSpan) End(...trace.SpanEndOption) {
	if s.ended {
		return
	}
	s.ended = true

	args := []any{
		"span", s.name,
		"duration", time.Since(s.start),
		"status", s.status.String(),
	}
	if s.desc != "" {
		args = append(args, "description", s.desc)
	}
	for _, kv := range s.attrs {
		args = append(args, string(kv.Key), kv.Value.Emit())
	}
	s.logger.Debug("span ended", args...)
}
