package domain

import (
	"context"
	"net/http"

	"github.com/louisbranch/flowise-mcp/internal/services/mcp/flowise"
)

// API is the set of Flowise operations tools call. *flowise.Client
// implements it; tests substitute fakes.
type API interface {
	CreateAssistant(ctx context.Context, assistant flowise.Assistant) (flowise.Assistant, error)
	ListAssistants(ctx context.Context) ([]flowise.Assistant, error)
	GetAssistant(ctx context.Context, id string) (flowise.Assistant, error)
	UpdateAssistant(ctx context.Context, id string, assistant flowise.Assistant) (flowise.Assistant, error)
	DeleteAssistant(ctx context.Context, id string) error

	CreateChatflow(ctx context.Context, chatflow flowise.Chatflow) (flowise.Chatflow, error)
	ListChatflows(ctx context.Context) ([]flowise.Chatflow, error)
	GetChatflow(ctx context.Context, id string) (flowise.Chatflow, error)
	GetChatflowByAPIKey(ctx context.Context, apiKey string) (flowise.Chatflow, error)
	UpdateChatflow(ctx context.Context, id string, chatflow flowise.Chatflow) (flowise.Chatflow, error)
	DeleteChatflow(ctx context.Context, id string) error

	Predict(ctx context.Context, chatflowID string, req flowise.PredictionRequest) (flowise.PredictionResponse, error)
	PredictStream(ctx context.Context, chatflowID string, req flowise.PredictionRequest) (*flowise.Stream, error)

	ListChatMessages(ctx context.Context, chatflowID string, filter flowise.ChatMessageFilter) ([]flowise.ChatMessage, error)
	DeleteChatMessages(ctx context.Context, chatflowID string) error
	CreateAttachments(ctx context.Context, chatflowID, chatID string, req flowise.AttachmentRequest) ([]flowise.Attachment, error)
	ListFeedback(ctx context.Context, chatflowID string) ([]flowise.Feedback, error)
	CreateFeedback(ctx context.Context, feedback flowise.Feedback) (flowise.Feedback, error)
	UpdateFeedback(ctx context.Context, id string, feedback flowise.Feedback) (flowise.Feedback, error)
	ListLeads(ctx context.Context, chatflowID string) ([]flowise.Lead, error)
	CreateLead(ctx context.Context, lead flowise.Lead) (flowise.Lead, error)

	CreateTool(ctx context.Context, tool flowise.Tool) (flowise.Tool, error)
	ListTools(ctx context.Context) ([]flowise.Tool, error)
	GetTool(ctx context.Context, id string) (flowise.Tool, error)
	UpdateTool(ctx context.Context, id string, tool flowise.Tool) (flowise.Tool, error)
	DeleteTool(ctx context.Context, id string) error

	CreateVariable(ctx context.Context, variable flowise.Variable) (flowise.Variable, error)
	ListVariables(ctx context.Context) ([]flowise.Variable, error)
	UpdateVariable(ctx context.Context, id string, variable flowise.Variable) (flowise.Variable, error)
	DeleteVariable(ctx context.Context, id string) error

	ListDocumentStores(ctx context.Context) ([]flowise.DocumentStore, error)
	GetDocumentStore(ctx context.Context, id string) (flowise.DocumentStore, error)
	CreateDocumentStore(ctx context.Context, store flowise.DocumentStore) (flowise.DocumentStore, error)
	UpdateDocumentStore(ctx context.Context, id string, store flowise.DocumentStore) (flowise.DocumentStore, error)
	DeleteDocumentStore(ctx context.Context, id string) error
	UpsertDocuments(ctx context.Context, storeID string, documents []any) (any, error)
	RefreshDocumentStore(ctx context.Context, storeID string) (any, error)
	GetDocumentChunks(ctx context.Context, storeID, loaderID string) (flowise.DocumentChunkPage, error)
	UpdateDocumentChunk(ctx context.Context, storeID, chunkID string, chunk flowise.DocumentChunk) (flowise.DocumentChunk, error)
	DeleteDocumentChunk(ctx context.Context, storeID, chunkID string) error
	DeleteDocumentLoader(ctx context.Context, storeID, loaderID string) error

	VectorUpsert(ctx context.Context, chatflowID string, req flowise.VectorUpsertRequest) (map[string]any, error)
	ListUpsertHistory(ctx context.Context, chatflowID string, filter flowise.UpsertHistoryFilter) ([]flowise.UpsertHistory, error)
	DeleteUpsertHistory(ctx context.Context, historyID string) error

	Ping(ctx context.Context) (string, error)

	Close() error
}

var _ API = (*flowise.Client)(nil)

// ClientFactory builds the remote client a single call uses.
type ClientFactory func(cfg AmbientConfig) API

// NewClientFactory returns a factory whose clients share httpClient as their
// connection pool. A nil httpClient gives every client its own pool.
func NewClientFactory(httpClient *http.Client) ClientFactory {
	return func(cfg AmbientConfig) API {
		return flowise.New(flowise.Options{
			Endpoint:   cfg.Endpoint,
			Credential: cfg.Credential,
			HTTPClient: httpClient,
		})
	}
}
