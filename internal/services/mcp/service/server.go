package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/louisbranch/flowise-mcp/internal/platform/logging"
	"github.com/louisbranch/flowise-mcp/internal/platform/timeouts"
	"github.com/louisbranch/flowise-mcp/internal/services/mcp/domain"
	"github.com/louisbranch/flowise-mcp/internal/services/mcp/flowise"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over streamable HTTP for remote clients.
	TransportHTTP TransportKind = "http"
)

// ParseTransportKind validates a transport name.
func ParseTransportKind(value string) (TransportKind, error) {
	switch kind := TransportKind(value); kind {
	case TransportStdio, TransportHTTP:
		return kind, nil
	case "":
		return TransportStdio, nil
	default:
		return "", fmt.Errorf("transport %q is not supported", value)
	}
}

// Config configures the MCP gateway.
type Config struct {
	Transport TransportKind
	// HTTPAddr is the listen address of the HTTP transport, for example
	// "0.0.0.0:8000".
	HTTPAddr string
	// Defaults is the process-wide Flowise configuration. HTTP sessions may
	// layer an override on top of it.
	Defaults domain.AmbientConfig
	// Debug switches gin into debug mode.
	Debug bool
}

// gateway holds what every MCP server of the process shares: the
// dispatcher, the client factory and the metrics registry.
type gateway struct {
	defaults   domain.AmbientConfig
	dispatcher *domain.Dispatcher
	factory    domain.ClientFactory
	metrics    *Metrics
	logger     zerolog.Logger
}

// newGateway builds the shared runtime. All remote clients reuse one
// instrumented connection pool whose response header wait is bounded by
// remoteTimeout.
func newGateway(defaults domain.AmbientConfig, metrics *Metrics, remoteTimeout time.Duration) (*gateway, error) {
	httpClient := flowise.NewHTTPClient(remoteTimeout)
	return newGatewayWithFactory(defaults, domain.NewClientFactory(httpClient), metrics)
}

func newGatewayWithFactory(defaults domain.AmbientConfig, factory domain.ClientFactory, metrics *Metrics) (*gateway, error) {
	if metrics == nil {
		metrics = NewMetrics()
	}
	logger := logging.Component("mcp")
	dispatcher, err := domain.NewDispatcher(factory,
		domain.WithRecorder(metrics),
		domain.WithLogger(logging.Component("dispatcher")),
	)
	if err != nil {
		return nil, fmt.Errorf("build dispatcher: %w", err)
	}
	return &gateway{
		defaults:   defaults,
		dispatcher: dispatcher,
		factory:    factory,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// newServer creates an MCP server whose handlers run with cfg. The stdio
// binding builds one; the HTTP binding builds one per session.
func (g *gateway) newServer(cfg domain.AmbientConfig) (*mcp.Server, error) {
	server := mcp.NewServer(&mcp.Implementation{Name: domain.ServerName, Version: domain.ServerVersion}, nil)
	server.AddReceivingMiddleware(
		catalogOrderMiddleware(g.dispatcher),
		unroutedToolMiddleware(g.dispatcher, cfg),
	)

	registrar := mcpServerRegistrationAdapter{server: server}
	for _, module := range newMCPRegistrationModules(g, cfg) {
		if err := module.register(registrar); err != nil {
			return nil, fmt.Errorf("register MCP %s module %q: %w", module.kind, module.name, err)
		}
	}
	return server, nil
}

// Run is the service entrypoint for MCP and blocks until the transport
// stops or the context is cancelled.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	g, err := newGateway(cfg.Defaults, NewMetrics(), timeouts.RemoteRequest)
	if err != nil {
		return err
	}

	switch cfg.Transport {
	case TransportStdio:
		return g.serveStdio(ctx)
	case TransportHTTP:
		return NewHTTPTransport(cfg.HTTPAddr, g, cfg.Debug).Start(ctx)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

func (g *gateway) serveStdio(ctx context.Context) error {
	return g.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport runs one server with the process defaults until the
// peer disconnects. Cancellation and end of input are clean exits.
func (g *gateway) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if ctx == nil {
		ctx = context.Background()
	}
	server, err := g.newServer(g.defaults)
	if err != nil {
		return err
	}
	g.logger.Info().
		Str("transport", fmt.Sprintf("%T", transport)).
		Bool("test_mode", g.defaults.TestMode()).
		Int("tools", len(g.dispatcher.Tools())).
		Msg("serving MCP")

	err = server.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
