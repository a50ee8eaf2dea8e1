package domain

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testCredential = "live-key"

type seenRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	Body          string
}

// fakeFlowise answers "METHOD /path" routes under /api/v1 and records every
// request it sees.
type fakeFlowise struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []seenRequest
	server   *httptest.Server
}

func newFakeFlowise(t *testing.T) *fakeFlowise {
	t.Helper()
	fake := &fakeFlowise{routes: map[string]http.HandlerFunc{}}
	fake.server = httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(fake.server.Close)
	return fake
}

func (f *fakeFlowise) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, seenRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		Body:          string(body),
	})
	handler, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"route not found"}`)
		return
	}
	handler(w, r)
}

func (f *fakeFlowise) handle(method, path string, handler http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" /api/v1"+path] = handler
}

func (f *fakeFlowise) json(method, path string, status int, body string) {
	f.handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (f *fakeFlowise) sse(path string, lines ...string) {
	f.handle(http.MethodPost, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, line := range lines {
			_, _ = io.WriteString(w, line+"\n")
		}
	})
}

func (f *fakeFlowise) seen() []seenRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]seenRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeFlowise) last(t *testing.T) seenRequest {
	t.Helper()
	requests := f.seen()
	require.NotEmpty(t, requests)
	return requests[len(requests)-1]
}

func (f *fakeFlowise) config() AmbientConfig {
	return AmbientConfig{Endpoint: f.server.URL, Credential: testCredential}
}

func decodeBody(t *testing.T, body string) map[string]any {
	t.Helper()
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	return decoded
}

func failingFactory(t *testing.T) ClientFactory {
	return func(AmbientConfig) API {
		t.Fatalf("no remote client may be built")
		return nil
	}
}

func newTestDispatcher(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()
	dispatcher, err := NewDispatcher(NewClientFactory(nil), opts...)
	require.NoError(t, err)
	return dispatcher
}

type observedCall struct {
	Tool    string
	Outcome string
}

type recordingRecorder struct {
	mu    sync.Mutex
	calls []observedCall
}

func (r *recordingRecorder) ObserveToolCall(tool, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, observedCall{Tool: tool, Outcome: outcome})
}

func (r *recordingRecorder) observed() []observedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]observedCall, len(r.calls))
	copy(out, r.calls)
	return out
}
