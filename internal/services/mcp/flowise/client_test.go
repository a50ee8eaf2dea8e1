package flowise

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	apperrors "github.com/louisbranch/flowise-mcp/internal/platform/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

// fakeFlowise records every request and answers with the handler's reply.
type fakeFlowise struct {
	mu       sync.Mutex
	requests []recordedRequest
	server   *httptest.Server
}

func newFakeFlowise(t *testing.T, handler http.HandlerFunc) *fakeFlowise {
	t.Helper()
	fake := &fakeFlowise{}
	fake.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fake.mu.Lock()
		fake.requests = append(fake.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		fake.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(fake.server.Close)
	return fake
}

func (f *fakeFlowise) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func (f *fakeFlowise) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func replyJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func newTestClient(fake *fakeFlowise, credential string) *Client {
	return New(Options{Endpoint: fake.server.URL, Credential: credential})
}

func TestNewNormalizesEndpoint(t *testing.T) {
	client := New(Options{Endpoint: "localhost:3000/"})
	assert.Equal(t, "http://localhost:3000/api/v1", client.BaseURL())
}

func TestClientSendsBearerCredential(t *testing.T) {
	fake := newFakeFlowise(t, replyJSON(http.StatusOK, `[]`))
	client := newTestClient(fake, "secret-key")

	_, err := client.ListAssistants(context.Background())
	require.NoError(t, err)

	req := fake.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v1/assistants", req.Path)
	assert.Equal(t, "Bearer secret-key", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Empty(t, req.Header.Get("Content-Type"))
}

func TestClientOmitsAuthorizationWithoutCredential(t *testing.T) {
	fake := newFakeFlowise(t, replyJSON(http.StatusOK, `[]`))
	client := newTestClient(fake, "")

	_, err := client.ListChatflows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fake.last(t).Header.Get("Authorization"))
}

func TestClientEncodesBodyAndDecodesRecord(t *testing.T) {
	fake := newFakeFlowise(t, replyJSON(http.StatusOK, `{"id":"a1","name":"helper","max_tokens":256}`))
	client := newTestClient(fake, "k")

	temperature := 0.7
	created, err := client.CreateAssistant(context.Background(), Assistant{Name: "helper", Temperature: &temperature})
	require.NoError(t, err)
	assert.Equal(t, "a1", created.ID)
	require.NotNil(t, created.MaxTokens)
	assert.Equal(t, 256, *created.MaxTokens)

	req := fake.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"name":"helper","temperature":0.7}`, req.Body)
}

func TestClientEscapesPathIdentifiers(t *testing.T) {
	fake := newFakeFlowise(t, replyJSON(http.StatusOK, `{}`))
	client := newTestClient(fake, "k")

	_, err := client.GetChatflow(context.Background(), "a/b c")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/chatflows/a%2Fb%20c", fake.last(t).Path)
}

func TestClientRejectedStatus(t *testing.T) {
	fake := newFakeFlowise(t, replyJSON(http.StatusNotFound, `{"message":"Chatflow missing not found"}`))
	client := newTestClient(fake, "k")

	_, err := client.GetChatflow(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeRemoteRejected, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.Contains(t, err.Error(), "Chatflow missing not found")

	status, ok := apperrors.MetadataOf(err, "status")
	require.True(t, ok)
	assert.Equal(t, "404", status)
}

func TestClientDecodeFailure(t *testing.T) {
	fake := newFakeFlowise(t, replyJSON(http.StatusOK, `{"not":"a list"}`))
	client := newTestClient(fake, "k")

	_, err := client.ListTools(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDecodeFailure, apperrors.CodeOf(err))
}

func TestClientEmptyBodyIsZeroValue(t *testing.T) {
	fake := newFakeFlowise(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	client := newTestClient(fake, "k")

	require.NoError(t, client.DeleteVariable(context.Background(), "v1"))
	req := fake.last(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/api/v1/variables/v1", req.Path)

	tool, err := client.GetTool(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, Tool{}, tool)
}

func TestClientUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	client := New(Options{Endpoint: endpoint, Credential: "k"})
	_, err := client.ListVariables(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeRemoteUnreachable, apperrors.CodeOf(err))
}

func TestClientCloseIsIdempotent(t *testing.T) {
	fake := newFakeFlowise(t, replyJSON(http.StatusOK, `[]`))
	client := newTestClient(fake, "k")

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	_, err := client.ListAssistants(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeRemoteUnreachable, apperrors.CodeOf(err))
	assert.Zero(t, fake.count())
}

func TestClientCloseLeavesSharedPoolUsable(t *testing.T) {
	fake := newFakeFlowise(t, replyJSON(http.StatusOK, `[]`))
	shared := NewHTTPClient(0)

	first := New(Options{Endpoint: fake.server.URL, HTTPClient: shared})
	require.NoError(t, first.Close())

	second := New(Options{Endpoint: fake.server.URL, HTTPClient: shared})
	_, err := second.ListLeads(context.Background(), "cf")
	require.NoError(t, err)
}

func TestChatMessageFilterQuery(t *testing.T) {
	t.Run("defaults to newest first", func(t *testing.T) {
		assert.Equal(t, "order=DESC", ChatMessageFilter{}.query().Encode())
	})
	t.Run("includes set fields", func(t *testing.T) {
		feedback := true
		limit := 10
		q := ChatMessageFilter{
			ChatType:   ChatTypeExternal,
			Order:      SortAscending,
			SessionID:  "s1",
			Feedback:   &feedback,
			Limit:      &limit,
			MemoryType: MemoryTypeBuffer,
		}.query()
		assert.Equal(t, "EXTERNAL", q.Get("chatType"))
		assert.Equal(t, "ASC", q.Get("order"))
		assert.Equal(t, "s1", q.Get("sessionId"))
		assert.Equal(t, "true", q.Get("feedback"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "bufferMemory", q.Get("memoryType"))
		assert.False(t, q.Has("offset"))
		assert.False(t, q.Has("chatId"))
	})
}

func TestListChatMessagesSendsQuery(t *testing.T) {
	fake := newFakeFlowise(t, replyJSON(http.StatusOK, `[{"id":"m1","role":"userMessage","content":"hi"}]`))
	client := newTestClient(fake, "k")

	messages, err := client.ListChatMessages(context.Background(), "cf1", ChatMessageFilter{ChatID: "c1"})
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hi", messages[0].Content)

	req := fake.last(t)
	assert.Equal(t, "/api/v1/chatmessages/cf1", req.Path)
	assert.Contains(t, req.Query, "order=DESC")
	assert.Contains(t, req.Query, "chatId=c1")
}

func TestCreateAttachmentsBody(t *testing.T) {
	fake := newFakeFlowise(t, replyJSON(http.StatusOK, `[{"fileName":"a.txt","content":"x"}]`))
	client := newTestClient(fake, "k")

	attachments, err := client.CreateAttachments(context.Background(), "cf1", "chat1", AttachmentRequest{})
	require.NoError(t, err)
	require.Len(t, attachments, 1)

	req := fake.last(t)
	assert.Equal(t, "/api/v1/attachments/cf1/chat1", req.Path)
	assert.JSONEq(t, `{"attachments":[],"returnBase64":false}`, req.Body)
}

func TestPredictClearsStreamingFlag(t *testing.T) {
	fake := newFakeFlowise(t, replyJSON(http.StatusOK, `{"text":"answer","chatId":"c1"}`))
	client := newTestClient(fake, "k")

	resp, err := client.Predict(context.Background(), "cf1", PredictionRequest{Question: "q", Streaming: true})
	require.NoError(t, err)
	assert.Equal(t, "answer", resp.Text)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(fake.last(t).Body), &body))
	assert.Equal(t, "q", body["question"])
	assert.NotContains(t, body, "streaming")
}

func TestGetDocumentChunksAcceptsBothShapes(t *testing.T) {
	t.Run("paged object", func(t *testing.T) {
		fake := newFakeFlowise(t, replyJSON(http.StatusOK, `{"chunks":[{"id":"c1","pageContent":"x"}],"count":1}`))
		page, err := newTestClient(fake, "k").GetDocumentChunks(context.Background(), "s1", "l1")
		require.NoError(t, err)
		require.Len(t, page.Chunks, 1)
		require.NotNil(t, page.Count)
		assert.Equal(t, 1, *page.Count)
		assert.Equal(t, "/api/v1/document-store/s1/chunks/l1", fake.last(t).Path)
	})
	t.Run("bare array", func(t *testing.T) {
		fake := newFakeFlowise(t, replyJSON(http.StatusOK, `[{"id":"c1"},{"id":"c2"}]`))
		page, err := newTestClient(fake, "k").GetDocumentChunks(context.Background(), "s1", "l1")
		require.NoError(t, err)
		assert.Len(t, page.Chunks, 2)
	})
}

func TestUpsertDocumentsBody(t *testing.T) {
	fake := newFakeFlowise(t, replyJSON(http.StatusOK, `{"numAdded":2}`))
	client := newTestClient(fake, "k")

	result, err := client.UpsertDocuments(context.Background(), "s1", []any{map[string]any{"pageContent": "x"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"numAdded": float64(2)}, result)

	req := fake.last(t)
	assert.Equal(t, "/api/v1/document-store/upsert/s1", req.Path)
	assert.JSONEq(t, `{"documents":[{"pageContent":"x"}]}`, req.Body)
}

func TestUpsertHistoryRoutes(t *testing.T) {
	fake := newFakeFlowise(t, replyJSON(http.StatusOK, `[]`))
	client := newTestClient(fake, "k")

	_, err := client.ListUpsertHistory(context.Background(), "cf1", UpsertHistoryFilter{StartDate: "2024-01-01"})
	require.NoError(t, err)
	req := fake.last(t)
	assert.Equal(t, "/api/v1/upsert-history/cf1", req.Path)
	assert.Contains(t, req.Query, "order=DESC")
	assert.Contains(t, req.Query, "startDate=2024-01-01")

	require.NoError(t, client.DeleteUpsertHistory(context.Background(), "h1"))
	req = fake.last(t)
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/api/v1/upsert-history/h1", req.Path)
}

func TestPing(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "json message", body: `{"message":"hello"}`, want: "hello"},
		{name: "json without message", body: `{}`, want: DefaultPingMessage},
		{name: "json string", body: `"pong"`, want: "pong"},
		{name: "plain text", body: "pong\n", want: "pong"},
		{name: "empty", body: "", want: DefaultPingMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := newFakeFlowise(t, replyJSON(http.StatusOK, tc.body))
			got, err := newTestClient(fake, "k").Ping(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, "/api/v1/ping", fake.last(t).Path)
		})
	}

	t.Run("rejected", func(t *testing.T) {
		fake := newFakeFlowise(t, replyJSON(http.StatusUnauthorized, `{"message":"Unauthorized"}`))
		_, err := newTestClient(fake, "k").Ping(context.Background())
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeRemoteRejected, apperrors.CodeOf(err))
	})
}
