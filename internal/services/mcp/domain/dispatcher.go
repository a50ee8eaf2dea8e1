package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/louisbranch/flowise-mcp/internal/platform/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/flowise-mcp/internal/services/mcp/domain"

// Outcomes reported to the Recorder.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeTestMode = "test_mode"
	OutcomeUnknown  = "unknown"
	OutcomeInvalid  = "invalid"
)

// UnroutedToolLabel replaces unknown tool names in recorded metrics so
// arbitrary client input cannot create new series.
const UnroutedToolLabel = "_unrouted"

// ToolCall is one incoming tool invocation.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// ToolResult is the single text result of a tool call. IsError marks
// error-shaped results; the text then explains the failure.
type ToolResult struct {
	Text    string
	IsError bool
}

// Recorder observes finished tool calls.
type Recorder interface {
	ObserveToolCall(tool, outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveToolCall(string, string, time.Duration) {}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRecorder sets the recorder finished calls are reported to.
func WithRecorder(recorder Recorder) Option {
	return func(d *Dispatcher) {
		if recorder != nil {
			d.recorder = recorder
		}
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithTracerProvider sets the provider dispatch spans are created from.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(d *Dispatcher) {
		if provider != nil {
			d.tracer = provider.Tracer(tracerName)
		}
	}
}

// Dispatcher routes tool calls to Flowise operations. It is safe for
// concurrent use; all per-call state arrives with the call.
type Dispatcher struct {
	factory  ClientFactory
	catalog  *catalog
	recorder Recorder
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewDispatcher builds a dispatcher over the tool catalog. It fails when the
// catalog cannot be built or is inconsistent with the routing table.
func NewDispatcher(factory ClientFactory, opts ...Option) (*Dispatcher, error) {
	if factory == nil {
		return nil, fmt.Errorf("client factory is required")
	}
	c, err := loadCatalog()
	if err != nil {
		return nil, fmt.Errorf("load tool catalog: %w", err)
	}
	if err := VerifyCatalog(c.descriptors, c.routedNames()); err != nil {
		return nil, err
	}
	d := &Dispatcher{
		factory:  factory,
		catalog:  c,
		recorder: nopRecorder{},
		logger:   log.Logger.With().Str("component", "dispatcher").Logger(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Tools returns the advertised tools in catalog order.
func (d *Dispatcher) Tools() []ToolDescriptor {
	descriptors := make([]ToolDescriptor, len(d.catalog.descriptors))
	copy(descriptors, d.catalog.descriptors)
	return descriptors
}

// Dispatch runs one tool call with cfg and always returns a result. Remote
// failures, invalid arguments and panics in tool code become error-shaped
// results.
func (d *Dispatcher) Dispatch(ctx context.Context, cfg AmbientConfig, call ToolCall) (result ToolResult) {
	invocationID := uuid.NewString()
	started := time.Now()
	outcome := OutcomeError

	ctx, span := d.tracer.Start(ctx, "mcp.tool/"+call.Name, trace.WithAttributes(
		attribute.String("mcp.tool.name", call.Name),
		attribute.String("mcp.invocation_id", invocationID),
		attribute.Bool("flowise.test_mode", cfg.TestMode()),
	))
	logger := d.logger.With().
		Str("tool", call.Name).
		Str("invocation_id", invocationID).
		Logger()

	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error().Interface("panic", recovered).Msg("tool call panicked")
			result = ToolResult{Text: fmt.Sprintf("Error: %s failed unexpectedly", call.Name), IsError: true}
			outcome = OutcomeError
		}
		elapsed := time.Since(started)

		label := call.Name
		if _, routed := d.catalog.routes[call.Name]; !routed {
			label = UnroutedToolLabel
		}
		d.recorder.ObserveToolCall(label, outcome, elapsed)

		span.SetAttributes(attribute.String("mcp.tool.outcome", outcome))
		if result.IsError {
			span.SetStatus(otelcodes.Error, outcome)
		}
		span.End()

		event := logger.Info()
		if result.IsError {
			event = logger.Warn().Str("error", result.Text)
		}
		event.Str("outcome", outcome).Dur("duration", elapsed).Msg("tool call")
	}()

	result, outcome = d.dispatch(ctx, cfg, call, logger)
	return result
}

func (d *Dispatcher) dispatch(ctx context.Context, cfg AmbientConfig, call ToolCall, logger zerolog.Logger) (ToolResult, string) {
	if call.Name == PingToolName {
		return d.ping(ctx, cfg, logger)
	}
	if cfg.TestMode() {
		err := apperrors.New(apperrors.CodeTestModeUnavailable,
			fmt.Sprintf("Tool '%s' unavailable in test mode. Please configure FLOWISEAI_API_KEY.", call.Name))
		return ToolResult{Text: err.Error(), IsError: true}, OutcomeTestMode
	}
	route, ok := d.catalog.routes[call.Name]
	if !ok {
		err := apperrors.New(apperrors.CodeToolUnknown, "Unknown tool: "+call.Name)
		return ToolResult{Text: err.Error(), IsError: true}, OutcomeUnknown
	}

	args, instance, err := normalizeArguments(call.Arguments)
	if err != nil {
		return errorResult(err), OutcomeInvalid
	}
	if err := route.schema.Validate(instance); err != nil {
		return errorResult(apperrors.Wrap(apperrors.CodeArgumentInvalid, "invalid arguments for "+call.Name, err)), OutcomeInvalid
	}

	api := d.factory(cfg)
	defer func() {
		if err := api.Close(); err != nil {
			logger.Debug().Err(err).Msg("close flowise client")
		}
	}()

	text, err := route.invoke(ctx, api, args)
	if err != nil {
		outcome := OutcomeError
		if apperrors.CodeOf(err) == apperrors.CodeArgumentInvalid {
			outcome = OutcomeInvalid
		}
		return errorResult(err), outcome
	}
	return ToolResult{Text: text}, OutcomeOK
}

// ping answers without an outbound call in test mode and reports an
// unreachable remote as offline rather than as an error.
func (d *Dispatcher) ping(ctx context.Context, cfg AmbientConfig, logger zerolog.Logger) (ToolResult, string) {
	if cfg.TestMode() {
		return ToolResult{Text: pingTestMode}, OutcomeTestMode
	}
	route := d.catalog.routes[PingToolName]
	api := d.factory(cfg)
	defer func() {
		if err := api.Close(); err != nil {
			logger.Debug().Err(err).Msg("close flowise client")
		}
	}()

	text, err := route.invoke(ctx, api, json.RawMessage("{}"))
	if err != nil {
		logger.Debug().Err(err).Msg("flowise ping failed")
		return ToolResult{Text: pingOffline}, OutcomeError
	}
	return ToolResult{Text: text}, OutcomeOK
}

func errorResult(err error) ToolResult {
	return ToolResult{Text: "Error: " + err.Error(), IsError: true}
}
