package flowise

import (
	"context"
	"fmt"
	"net/http"
)

const documentStorePath = "/document-store"

// ListDocumentStores lists document stores.
func (c *Client) ListDocumentStores(ctx context.Context) ([]DocumentStore, error) {
	var out []DocumentStore
	if err := c.call(ctx, http.MethodGet, documentStorePath, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list document stores: %w", err)
	}
	return out, nil
}

// GetDocumentStore fetches one document store.
func (c *Client) GetDocumentStore(ctx context.Context, id string) (DocumentStore, error) {
	var out DocumentStore
	if err := c.call(ctx, http.MethodGet, documentStorePath+segment(id), nil, nil, &out); err != nil {
		return DocumentStore{}, fmt.Errorf("get document store %s: %w", id, err)
	}
	return out, nil
}

// CreateDocumentStore creates a document store.
func (c *Client) CreateDocumentStore(ctx context.Context, store DocumentStore) (DocumentStore, error) {
	var out DocumentStore
	if err := c.call(ctx, http.MethodPost, documentStorePath, nil, store, &out); err != nil {
		return DocumentStore{}, fmt.Errorf("create document store: %w", err)
	}
	return out, nil
}

// UpdateDocumentStore replaces the supplied fields of a document store.
func (c *Client) UpdateDocumentStore(ctx context.Context, id string, store DocumentStore) (DocumentStore, error) {
	var out DocumentStore
	if err := c.call(ctx, http.MethodPut, documentStorePath+segment(id), nil, store, &out); err != nil {
		return DocumentStore{}, fmt.Errorf("update document store %s: %w", id, err)
	}
	return out, nil
}

// DeleteDocumentStore deletes a document store with its loaders and chunks.
func (c *Client) DeleteDocumentStore(ctx context.Context, id string) error {
	if err := c.call(ctx, http.MethodDelete, documentStorePath+segment(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete document store %s: %w", id, err)
	}
	return nil
}

// UpsertDocuments loads documents into a store and upserts them into its
// vector store. The remote result is returned as decoded JSON.
func (c *Client) UpsertDocuments(ctx context.Context, storeID string, documents []any) (any, error) {
	if documents == nil {
		documents = []any{}
	}
	var out any
	body := map[string]any{"documents": documents}
	if err := c.call(ctx, http.MethodPost, documentStorePath+"/upsert"+segment(storeID), nil, body, &out); err != nil {
		return nil, fmt.Errorf("upsert documents %s: %w", storeID, err)
	}
	return out, nil
}

// RefreshDocumentStore re-processes every loader of a store.
func (c *Client) RefreshDocumentStore(ctx context.Context, storeID string) (any, error) {
	var out any
	if err := c.call(ctx, http.MethodPost, documentStorePath+"/refresh"+segment(storeID), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("refresh document store %s: %w", storeID, err)
	}
	return out, nil
}

// GetDocumentChunks lists the chunks produced by one loader.
func (c *Client) GetDocumentChunks(ctx context.Context, storeID, loaderID string) (DocumentChunkPage, error) {
	var out DocumentChunkPage
	path := documentStorePath + segment(storeID) + "/chunks" + segment(loaderID)
	if err := c.call(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return DocumentChunkPage{}, fmt.Errorf("get document chunks %s/%s: %w", storeID, loaderID, err)
	}
	return out, nil
}

// UpdateDocumentChunk changes a chunk's content or metadata.
func (c *Client) UpdateDocumentChunk(ctx context.Context, storeID, chunkID string, chunk DocumentChunk) (DocumentChunk, error) {
	var out DocumentChunk
	path := documentStorePath + segment(storeID) + "/chunks" + segment(chunkID)
	if err := c.call(ctx, http.MethodPut, path, nil, chunk, &out); err != nil {
		return DocumentChunk{}, fmt.Errorf("update document chunk %s/%s: %w", storeID, chunkID, err)
	}
	return out, nil
}

// DeleteDocumentChunk deletes one chunk.
func (c *Client) DeleteDocumentChunk(ctx context.Context, storeID, chunkID string) error {
	path := documentStorePath + segment(storeID) + "/chunks" + segment(chunkID)
	if err := c.call(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("delete document chunk %s/%s: %w", storeID, chunkID, err)
	}
	return nil
}

// DeleteDocumentLoader deletes a loader and the chunks it produced.
func (c *Client) DeleteDocumentLoader(ctx context.Context, storeID, loaderID string) error {
	path := documentStorePath + segment(storeID) + "/loaders" + segment(loaderID)
	if err := c.call(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("delete document loader %s/%s: %w", storeID, loaderID, err)
	}
	return nil
}
