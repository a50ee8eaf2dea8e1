package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/louisbranch/flowise-mcp/internal/platform/timeouts"
	"github.com/louisbranch/flowise-mcp/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

var listenTCP = net.Listen

const (
	mcpPath       = "/mcp"
	healthPath    = "/health"
	metricsPath   = "/metrics"
	transportName = "streamable-http"

	// defaultHTTPAddr is used when no listen address is configured.
	defaultHTTPAddr = "0.0.0.0:8000"
)

type transportState int

const (
	stateStopped transportState = iota
	stateStarting
	stateRunning
	stateStopping
)

func (s transportState) String() string {
	switch s {
	case stateStopped:
		return "stopped"
	case stateStarting:
		return "starting"
	case stateRunning:
		return "running"
	case stateStopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// healthResponse is the liveness document served on /health and /.
type healthResponse struct {
	Status    string          `json:"status"`
	Service   string          `json:"service"`
	Transport string          `json:"transport"`
	TestMode  bool            `json:"test_mode"`
	Endpoints healthEndpoints `json:"endpoints"`
}

type healthEndpoints struct {
	MCP    string `json:"mcp"`
	Health string `json:"health"`
}

// HTTPTransport serves MCP over streamable HTTP. Every session gets its own
// MCP server bound to the configuration it was opened with; the SDK handler
// owns session ids, SSE framing and session termination.
type HTTPTransport struct {
	addr    string
	gateway *gateway
	debug   bool
	logger  zerolog.Logger

	mu         sync.Mutex
	state      transportState
	listenAddr net.Addr

	sessions *sessionServers
}

// NewHTTPTransport creates an HTTP transport for g listening on addr.
func NewHTTPTransport(addr string, g *gateway, debug bool) *HTTPTransport {
	if addr == "" {
		addr = defaultHTTPAddr
	}
	return &HTTPTransport{
		addr:     addr,
		gateway:  g,
		debug:    debug,
		logger:   g.logger.With().Str("transport", transportName).Logger(),
		sessions: newSessionServers(),
	}
}

// Handler returns the HTTP routes of the transport.
func (t *HTTPTransport) Handler() http.Handler {
	if t.debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	mcpHandler := gin.WrapH(mcp.NewStreamableHTTPHandler(t.getServer, &mcp.StreamableHTTPOptions{
		SessionTimeout: timeouts.SessionIdle,
	}))
	configBlob := configBlobMiddleware(t.logger)

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(t.logger))
	engine.GET(mcpPath, configBlob, mcpHandler)
	engine.POST(mcpPath, configBlob, mcpHandler)
	engine.DELETE(mcpPath, configBlob, mcpHandler)
	engine.GET(healthPath, t.handleHealth)
	engine.GET("/", t.handleHealth)
	engine.GET(metricsPath, gin.WrapH(t.gateway.metrics.Handler()))

	return otelhttp.NewHandler(engine, transportName)
}

// getServer builds the server of a new session from the process defaults
// and the configuration carried by the opening request.
func (t *HTTPTransport) getServer(req *http.Request) *mcp.Server {
	cfg := resolveConfig(t.gateway.defaults, req.Header)
	server, err := t.gateway.newServer(cfg)
	if err != nil {
		t.logger.Error().Err(err).Msg("build session server")
		return nil
	}
	t.sessions.add(server)
	t.logger.Debug().Bool("test_mode", cfg.TestMode()).Msg("session server created")
	return server
}

func (t *HTTPTransport) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:    "healthy",
		Service:   domain.ServerName,
		Transport: transportName,
		TestMode:  t.gateway.defaults.TestMode(),
		Endpoints: healthEndpoints{MCP: mcpPath, Health: healthPath},
	})
}

// Start serves HTTP until ctx is cancelled or the server fails. Only one
// Start may run at a time.
func (t *HTTPTransport) Start(ctx context.Context) error {
	if err := t.transition(stateStopped, stateStarting); err != nil {
		return err
	}
	defer t.setState(stateStopped)

	listener, err := listenTCP("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", t.addr, err)
	}
	httpServer := &http.Server{
		Handler:           t.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	// Open sessions hold SSE streams; closing them lets Shutdown finish.
	httpServer.RegisterOnShutdown(func() {
		if closed := t.sessions.closeAll(); closed > 0 {
			t.logger.Info().Int("sessions", closed).Msg("closed sessions")
		}
	})

	group, groupCtx := errgroup.WithContext(ctx)
	managerCtx, cancelManager := context.WithCancel(context.Background())
	defer cancelManager()

	group.Go(func() error {
		t.manageSessions(managerCtx)
		return nil
	})
	group.Go(func() error {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		t.setState(stateStopping)
		t.logger.Info().Msg("shutting down MCP HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		shutdownErr := httpServer.Shutdown(shutdownCtx)
		if shutdownErr != nil {
			_ = httpServer.Close()
		}
		t.sessions.closeAll()
		cancelManager()
		if shutdownErr != nil {
			return fmt.Errorf("shutdown HTTP server: %w", shutdownErr)
		}
		return nil
	})

	t.mu.Lock()
	t.listenAddr = listener.Addr()
	t.state = stateRunning
	t.mu.Unlock()
	t.logger.Info().
		Str("addr", listener.Addr().String()).
		Bool("test_mode", t.gateway.defaults.TestMode()).
		Msg("serving MCP")

	return group.Wait()
}

// Addr returns the bound listen address while the transport is running.
func (t *HTTPTransport) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.listenAddr
}

func (t *HTTPTransport) currentState() transportState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *HTTPTransport) transition(from, to transportState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != from {
		return fmt.Errorf("HTTP transport is %s", t.state)
	}
	t.state = to
	return nil
}

func (t *HTTPTransport) setState(state transportState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
	if state == stateStopped {
		t.listenAddr = nil
	}
}

// manageSessions drops servers whose sessions have all ended and keeps the
// active session gauge current.
func (t *HTTPTransport) manageSessions(ctx context.Context) {
	ticker := time.NewTicker(timeouts.SessionSweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.gateway.metrics.SetActiveSessions(0)
			return
		case <-ticker.C:
			open, pruned := t.sessions.sweep(timeouts.SessionSweep)
			t.gateway.metrics.SetActiveSessions(open)
			if pruned > 0 {
				t.logger.Debug().Int("pruned", pruned).Int("open", open).Msg("session sweep")
			}
		}
	}
}

// configBlobMiddleware turns the config query parameter into the internal
// configuration header. Inbound copies of the header are always dropped.
func configBlobMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Header.Del(ConfigHeader)

		blob, ok := c.GetQuery(configQueryParam)
		if !ok {
			c.Next()
			return
		}
		override, err := decodeConfigBlob(blob)
		if err != nil {
			logger.Warn().Err(err).Msg("ignoring config query parameter")
			c.Next()
			return
		}
		if override.Empty() {
			c.Next()
			return
		}
		value, err := encodeConfigHeader(override)
		if err != nil {
			logger.Warn().Err(err).Msg("ignoring config query parameter")
			c.Next()
			return
		}
		c.Request.Header.Set(ConfigHeader, value)
		c.Next()
	}
}

// requestLogger logs each request without its query, which may carry a
// credential.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(started)).
			Msg("http request")
	}
}
