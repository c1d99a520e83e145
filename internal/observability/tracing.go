package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer scope and span-name constants, mirroring the teacher's
// scope/span-name/attribute-key constant convention.
const (
	ScopeRuntime = "cmdforge.runtime"

	SpanAgentIteration = "cmdforge.agent.iteration"
	SpanMCPToolCall     = "cmdforge.mcp.tool_call"
	SpanRunbookStep     = "cmdforge.runbook.step"

	AttrIteration  = "cmdforge.iteration"
	AttrToolName   = "cmdforge.tool_name"
	AttrServerName = "cmdforge.server_name"
	AttrStepName   = "cmdforge.step_name"
	AttrStatus     = "cmdforge.status"
)

// NewTracerProvider builds an otel TracerProvider using the exporter
// named in config (jaeger, zipkin, or otlp); tracing.Enabled=false
// yields a no-op provider.
func NewTracerProvider(ctx context.Context, config TracingConfig) (trace.TracerProvider, func(context.Context) error, error) {
	if !config.Enabled {
		return trace.NewNoopTracerProvider(), func(context.Context) error { return nil }, nil
	}

	exp, err := buildExporter(ctx, config)
	if err != nil {
		return nil, nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(orDefault(config.ServiceName, "cmdforge")),
		semconv.ServiceVersion(orDefault(config.ServiceVersion, "0.0.0")),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("observability: build resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(config.SampleRate)),
	)
	otel.SetTracerProvider(provider)

	return provider, provider.Shutdown, nil
}

func buildExporter(ctx context.Context, config TracingConfig) (sdktrace.SpanExporter, error) {
	switch config.Exporter {
	case "zipkin":
		return zipkin.New(config.ZipkinEndpoint)
	case "otlp":
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(config.OTLPEndpoint))
	case "jaeger", "":
		return jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(config.JaegerEndpoint)))
	default:
		return nil, fmt.Errorf("observability: unknown tracing exporter %q", config.Exporter)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// StartSpan starts a span under ScopeRuntime with the given name and attrs.
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(ScopeRuntime).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// MarkSpanResult sets the span's status and records the error, if any.
func MarkSpanResult(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrStatus, "error"))
		return
	}
	span.SetAttributes(attribute.String(AttrStatus, "ok"))
}
