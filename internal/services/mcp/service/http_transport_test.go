package service

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/louisbranch/flowise-mcp/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTPServer(t *testing.T, transport *HTTPTransport) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(transport.Handler())
	t.Cleanup(func() {
		transport.sessions.closeAll()
		server.Close()
	})
	return server
}

func connectHTTP(t *testing.T, endpoint string) *mcp.ClientSession {
	t.Helper()
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(context.Background(), &mcp.StreamableClientTransport{Endpoint: endpoint}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestHTTPHealthEndpoints(t *testing.T) {
	transport := NewHTTPTransport("", newTestGateway(t, domain.AmbientConfig{}), false)
	server := newTestHTTPServer(t, transport)

	for _, path := range []string{"/health", "/"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(server.URL + path)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{
				"status": "healthy",
				"service": "flowiseai-mcp",
				"transport": "streamable-http",
				"test_mode": true,
				"endpoints": {"mcp": "/mcp", "health": "/health"}
			}`, string(body))
		})
	}
}

func TestHTTPHealthReflectsDefaults(t *testing.T) {
	transport := NewHTTPTransport("", newTestGateway(t, domain.AmbientConfig{Credential: "live-key"}), false)
	server := newTestHTTPServer(t, transport)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"test_mode":false`)
}

func TestHTTPMetricsEndpoint(t *testing.T) {
	g := newTestGateway(t, domain.AmbientConfig{})
	g.metrics.ObserveToolCall("ping", domain.OutcomeTestMode, time.Millisecond)
	server := newTestHTTPServer(t, NewHTTPTransport("", g, false))

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `flowise_mcp_tool_calls_total{outcome="test_mode",tool="ping"} 1`)
}

func TestConfigBlobMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	override := domain.ConfigOverride{Credential: stringPtr("key-a")}

	serve := func(t *testing.T, target string, inbound string) http.Header {
		t.Helper()
		var seen http.Header
		engine := gin.New()
		engine.GET("/mcp", configBlobMiddleware(zerolog.Nop()), func(c *gin.Context) {
			seen = c.Request.Header.Clone()
			c.Status(http.StatusNoContent)
		})
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if inbound != "" {
			req.Header.Set(ConfigHeader, inbound)
		}
		engine.ServeHTTP(httptest.NewRecorder(), req)
		require.NotNil(t, seen)
		return seen
	}

	t.Run("valid blob sets header", func(t *testing.T) {
		header := serve(t, "/mcp?config="+configBlob(t, override, base64.URLEncoding), "")
		got, ok := configFromHeader(header)
		require.True(t, ok)
		assert.Equal(t, "key-a", *got.Credential)
	})
	t.Run("inbound header is dropped", func(t *testing.T) {
		forged, err := encodeConfigHeader(domain.ConfigOverride{Credential: stringPtr("forged")})
		require.NoError(t, err)

		header := serve(t, "/mcp", forged)
		assert.Empty(t, header.Get(ConfigHeader))
	})
	t.Run("inbound header replaced by blob", func(t *testing.T) {
		forged, err := encodeConfigHeader(domain.ConfigOverride{Credential: stringPtr("forged")})
		require.NoError(t, err)

		header := serve(t, "/mcp?config="+configBlob(t, override, base64.RawURLEncoding), forged)
		got, ok := configFromHeader(header)
		require.True(t, ok)
		assert.Equal(t, "key-a", *got.Credential)
	})
	t.Run("invalid blob is ignored", func(t *testing.T) {
		header := serve(t, "/mcp?config=not-base64!", "")
		assert.Empty(t, header.Get(ConfigHeader))
	})
	t.Run("empty override is ignored", func(t *testing.T) {
		header := serve(t, "/mcp?config="+base64.StdEncoding.EncodeToString([]byte("{}")), "")
		assert.Empty(t, header.Get(ConfigHeader))
	})
}

func TestHTTPSessionIsolation(t *testing.T) {
	fakeA := newFakeFlowise(t)
	fakeB := newFakeFlowise(t)
	transport := NewHTTPTransport("", newTestGateway(t, domain.AmbientConfig{}), false)
	server := newTestHTTPServer(t, transport)

	endpoint := func(fake *fakeFlowise, credential string) string {
		blob := configBlob(t, domain.ConfigOverride{
			Credential: stringPtr(credential),
			Endpoint:   stringPtr(fake.server.URL),
		}, base64.URLEncoding)
		return server.URL + "/mcp?config=" + blob
	}
	sessionA := connectHTTP(t, endpoint(fakeA, "key-a"))
	sessionB := connectHTTP(t, endpoint(fakeB, "key-b"))

	const callsPerSession = 5
	var wg conc.WaitGroup
	for _, session := range []*mcp.ClientSession{sessionA, sessionB} {
		wg.Go(func() {
			for range callsPerSession {
				result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "chatflow_list", Arguments: map[string]any{}})
				if !assert.NoError(t, err) {
					return
				}
				assert.False(t, result.IsError)
			}
		})
	}
	wg.Wait()

	assertOnlyBearer := func(fake *fakeFlowise, want string) {
		seen := fake.seenAuthorizations()
		assert.Len(t, seen, callsPerSession)
		for _, authorization := range seen {
			assert.Equal(t, "Bearer "+want, authorization)
		}
	}
	assertOnlyBearer(fakeA, "key-a")
	assertOnlyBearer(fakeB, "key-b")
	assert.Equal(t, 2, transport.sessions.len())
}

func TestHTTPSessionWithoutBlobUsesDefaults(t *testing.T) {
	transport := NewHTTPTransport("", newTestGateway(t, domain.AmbientConfig{}), false)
	server := newTestHTTPServer(t, transport)
	session := connectHTTP(t, server.URL+"/mcp")

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "ping", Arguments: map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, "pong (test mode)", resultText(t, result))
}

func TestHTTPTransportLifecycle(t *testing.T) {
	transport := NewHTTPTransport("127.0.0.1:0", newTestGateway(t, domain.AmbientConfig{}), false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan error, 1)
	go func() {
		started <- transport.Start(ctx)
	}()
	require.Eventually(t, func() bool {
		return transport.currentState() == stateRunning
	}, 2*time.Second, 10*time.Millisecond)

	err := transport.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running")

	session := connectHTTP(t, "http://"+transport.Addr().String()+"/mcp")
	_, err = session.CallTool(context.Background(), &mcp.CallToolParams{Name: "ping", Arguments: map[string]any{}})
	require.NoError(t, err)

	cancel()
	select {
	case err := <-started:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("transport did not stop")
	}
	assert.Equal(t, stateStopped, transport.currentState())
	assert.Nil(t, transport.Addr())
	assert.Zero(t, transport.sessions.len())
}

func TestHTTPTransportListenFailure(t *testing.T) {
	transport := NewHTTPTransport("127.0.0.1:-1", newTestGateway(t, domain.AmbientConfig{}), false)

	err := transport.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, stateStopped, transport.currentState())
}

func TestSessionServersSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	servers := newSessionServers()
	servers.now = func() time.Time { return now }

	fresh := mcp.NewServer(&mcp.Implementation{Name: "fresh", Version: "v0"}, nil)
	stale := mcp.NewServer(&mcp.Implementation{Name: "stale", Version: "v0"}, nil)
	servers.add(stale)
	now = now.Add(2 * time.Minute)
	servers.add(fresh)

	open, pruned := servers.sweep(time.Minute)
	assert.Zero(t, open)
	assert.Equal(t, 1, pruned)
	assert.Equal(t, 1, servers.len())

	assert.Zero(t, servers.closeAll())
	assert.Zero(t, servers.len())
}

func TestTransportStateString(t *testing.T) {
	assert.Equal(t, "stopped", stateStopped.String())
	assert.Equal(t, "starting", stateStarting.String())
	assert.Equal(t, "running", stateRunning.String())
	assert.Equal(t, "stopping", stateStopping.String())
}
