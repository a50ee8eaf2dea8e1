package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/louisbranch/flowise-mcp/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// fakeFlowise serves a few chatflow routes and records the Authorization
// header of every request.
type fakeFlowise struct {
	mu             sync.Mutex
	authorizations []string
	server         *httptest.Server
}

func newFakeFlowise(t *testing.T) *fakeFlowise {
	t.Helper()
	fake := &fakeFlowise{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/chatflows", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":"cf1","name":"Support"}]`)
	})
	mux.HandleFunc("GET /api/v1/chatflows/cf1", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"cf1","name":"Support"}`)
	})
	mux.HandleFunc("GET /api/v1/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "pong")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"message":"not found"}`)
	})
	fake.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		fake.authorizations = append(fake.authorizations, r.Header.Get("Authorization"))
		fake.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(fake.server.Close)
	return fake
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (f *fakeFlowise) seenAuthorizations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.authorizations))
	copy(out, f.authorizations)
	return out
}

func (f *fakeFlowise) config(credential string) domain.AmbientConfig {
	return domain.AmbientConfig{Endpoint: f.server.URL, Credential: credential}
}

func newTestGateway(t *testing.T, defaults domain.AmbientConfig) *gateway {
	t.Helper()
	g, err := newGatewayWithFactory(defaults, domain.NewClientFactory(nil), NewMetrics())
	require.NoError(t, err)
	return g
}

func failingFactory(t *testing.T) domain.ClientFactory {
	return func(domain.AmbientConfig) domain.API {
		t.Errorf("no remote client may be built")
		return nil
	}
}

// connectInMemory serves g over an in-memory transport and returns the
// connected client session.
func connectInMemory(t *testing.T, g *gateway) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	served := make(chan error, 1)
	go func() {
		served <- g.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = session.Close()
		cancel()
		<-served
	})
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return resultText(t, result), result.IsError
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])
	return text.Text
}

func configBlob(t *testing.T, override domain.ConfigOverride, encoding *base64.Encoding) string {
	t.Helper()
	data, err := json.Marshal(override)
	require.NoError(t, err)
	return encoding.EncodeToString(data)
}

func stringPtr(value string) *string {
	return &value
}
