package domain

import (
	"context"

	"github.com/louisbranch/flowise-mcp/internal/services/mcp/flowise"
)

// DocumentStoreCreateInput represents the MCP tool input for store creation.
type DocumentStoreCreateInput struct {
	Name                string           `json:"name" jsonschema:"store name"`
	Description         string           `json:"description,omitempty" jsonschema:"store description"`
	Loaders             []map[string]any `json:"loaders,omitempty" jsonschema:"document loader configurations"`
	VectorStoreConfig   map[string]any   `json:"vectorStoreConfig,omitempty" jsonschema:"vector store configuration"`
	EmbeddingConfig     map[string]any   `json:"embeddingConfig,omitempty" jsonschema:"embedding model configuration"`
	RecordManagerConfig map[string]any   `json:"recordManagerConfig,omitempty" jsonschema:"record manager configuration"`
}

// DocumentStoreUpdateInput represents the MCP tool input for store updates.
type DocumentStoreUpdateInput struct {
	ID          string `json:"id" jsonschema:"store identifier"`
	Name        string `json:"name,omitempty" jsonschema:"store name"`
	Description string `json:"description,omitempty" jsonschema:"store description"`
}

// DocumentUpsertInput represents the MCP tool input for loading documents.
type DocumentUpsertInput struct {
	StoreID   string `json:"store_id" jsonschema:"store identifier"`
	Documents []any  `json:"documents" jsonschema:"documents to load and upsert"`
}

// StoreIDInput addresses a document store.
type StoreIDInput struct {
	StoreID string `json:"store_id" jsonschema:"store identifier"`
}

// StoreLoaderInput addresses one loader of a document store.
type StoreLoaderInput struct {
	StoreID  string `json:"store_id" jsonschema:"store identifier"`
	LoaderID string `json:"loader_id" jsonschema:"loader identifier"`
}

// StoreChunkInput addresses one chunk of a document store.
type StoreChunkInput struct {
	StoreID string `json:"store_id" jsonschema:"store identifier"`
	ChunkID string `json:"chunk_id" jsonschema:"chunk identifier"`
}

// ChunkUpdateInput represents the MCP tool input for chunk updates.
type ChunkUpdateInput struct {
	StoreID     string         `json:"store_id" jsonschema:"store identifier"`
	ChunkID     string         `json:"chunk_id" jsonschema:"chunk identifier"`
	PageContent string         `json:"pageContent,omitempty" jsonschema:"chunk text"`
	Metadata    map[string]any `json:"metadata,omitempty" jsonschema:"chunk metadata"`
}

func documentStoreTools() []toolSpec {
	return []toolSpec{
		newTool("docstore_list", "List all document stores", documentStoreList),
		newTool("docstore_get", "Get a document store by ID", documentStoreGet),
		newTool("docstore_create", "Create a new document store", documentStoreCreate),
		newTool("docstore_upsert", "Upsert documents to a document store", documentStoreUpsert),
		newTool("docstore_refresh", "Refresh/reprocess all documents in a store", documentStoreRefresh),
		newTool("docstore_get_chunks", "Get loader chunks from a document store", documentStoreChunks),
		newTool("docstore_update_chunk", "Update a document chunk", documentChunkUpdate),
		newTool("docstore_update", "Update a document store", documentStoreUpdate),
		newTool("docstore_delete", "Delete a document store", documentStoreDelete),
		newTool("docstore_delete_chunk", "Delete a document chunk", documentChunkDelete),
		newTool("docstore_delete_loader", "Delete a loader and all its chunks", documentLoaderDelete),
	}
}

func documentStoreList(ctx context.Context, api API, _ EmptyInput) (string, error) {
	stores, err := api.ListDocumentStores(ctx)
	if err != nil {
		return "", err
	}
	return encodeList(stores)
}

func documentStoreGet(ctx context.Context, api API, in IDInput) (string, error) {
	store, err := api.GetDocumentStore(ctx, in.ID)
	if err != nil {
		return "", err
	}
	return encodeRecord(store)
}

func documentStoreCreate(ctx context.Context, api API, in DocumentStoreCreateInput) (string, error) {
	store := flowise.DocumentStore{
		Name:        in.Name,
		Description: in.Description,
	}
	// Absent configs stay out of the body rather than being sent as null.
	if in.Loaders != nil {
		store.Loaders = in.Loaders
	}
	if in.VectorStoreConfig != nil {
		store.VectorStoreConfig = in.VectorStoreConfig
	}
	if in.EmbeddingConfig != nil {
		store.EmbeddingConfig = in.EmbeddingConfig
	}
	if in.RecordManagerConfig != nil {
		store.RecordManagerConfig = in.RecordManagerConfig
	}
	created, err := api.CreateDocumentStore(ctx, store)
	if err != nil {
		return "", err
	}
	return encodeRecord(created)
}

func documentStoreUpsert(ctx context.Context, api API, in DocumentUpsertInput) (string, error) {
	result, err := api.UpsertDocuments(ctx, in.StoreID, in.Documents)
	if err != nil {
		return "", err
	}
	return encodeRecord(result)
}

func documentStoreRefresh(ctx context.Context, api API, in StoreIDInput) (string, error) {
	result, err := api.RefreshDocumentStore(ctx, in.StoreID)
	if err != nil {
		return "", err
	}
	return encodeRecord(result)
}

func documentStoreChunks(ctx context.Context, api API, in StoreLoaderInput) (string, error) {
	page, err := api.GetDocumentChunks(ctx, in.StoreID, in.LoaderID)
	if err != nil {
		return "", err
	}
	return encodeList(page.Chunks)
}

func documentChunkUpdate(ctx context.Context, api API, in ChunkUpdateInput) (string, error) {
	updated, err := api.UpdateDocumentChunk(ctx, in.StoreID, in.ChunkID, flowise.DocumentChunk{
		PageContent: in.PageContent,
		Metadata:    in.Metadata,
	})
	if err != nil {
		return "", err
	}
	return encodeRecord(updated)
}

func documentStoreUpdate(ctx context.Context, api API, in DocumentStoreUpdateInput) (string, error) {
	updated, err := api.UpdateDocumentStore(ctx, in.ID, flowise.DocumentStore{
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		return "", err
	}
	return encodeRecord(updated)
}

func documentStoreDelete(ctx context.Context, api API, in IDInput) (string, error) {
	return confirm("Document store deleted successfully", api.DeleteDocumentStore(ctx, in.ID))
}

func documentChunkDelete(ctx context.Context, api API, in StoreChunkInput) (string, error) {
	return confirm("Document chunk deleted successfully", api.DeleteDocumentChunk(ctx, in.StoreID, in.ChunkID))
}

func documentLoaderDelete(ctx context.Context, api API, in StoreLoaderInput) (string, error) {
	return confirm("Document loader and chunks deleted successfully", api.DeleteDocumentLoader(ctx, in.StoreID, in.LoaderID))
}
