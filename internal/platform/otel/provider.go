package otel

import (
	"context"
	"strings"

	"github.com/louisbranch/flowise-mcp/internal/platform/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Env holds the tracing switches read from the environment.
type Env struct {
	Endpoint string `env:"FLOWISEAI_MCP_OTEL_ENDPOINT"`
	Enabled  string `env:"FLOWISEAI_MCP_OTEL_ENABLED"`
}

// Active reports whether tracing should be installed.
func (e Env) Active() bool {
	if strings.EqualFold(strings.TrimSpace(e.Enabled), "false") {
		return false
	}
	return strings.TrimSpace(e.Endpoint) != ""
}

// Setup initialises OpenTelemetry tracing for the given service.
//
// Tracing is opt-in: when FLOWISEAI_MCP_OTEL_ENDPOINT is empty or
// FLOWISEAI_MCP_OTEL_ENABLED is "false", Setup returns a no-op shutdown
// function and no global provider is registered.
//
// The returned shutdown function flushes pending spans and should be deferred
// by the caller.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	var env Env
	if err := config.ParseEnv(&env); err != nil {
		return noop, err
	}
	return SetupWith(ctx, serviceName, env)
}

// SetupWith is Setup with explicit settings.
func SetupWith(ctx context.Context, serviceName string, env Env) (shutdown func(context.Context) error, err error) {
	if !env.Active() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(strings.TrimSpace(env.Endpoint)),
	)
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

func noop(context.Context) error { return nil }
