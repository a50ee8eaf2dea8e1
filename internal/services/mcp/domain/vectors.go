package domain

import (
	"context"

	"github.com/louisbranch/flowise-mcp/internal/services/mcp/flowise"
)

// VectorUpsertInput represents the MCP tool input for a vector upsert.
type VectorUpsertInput struct {
	ChatflowID     string           `json:"chatflow_id" jsonschema:"chatflow identifier"`
	Documents      []map[string]any `json:"documents,omitempty" jsonschema:"documents to embed"`
	Texts          []string         `json:"texts,omitempty" jsonschema:"raw texts to embed"`
	Embeddings     [][]float64      `json:"embeddings,omitempty" jsonschema:"precomputed embeddings"`
	Metadata       []map[string]any `json:"metadata,omitempty" jsonschema:"metadata per text"`
	StopNodeID     string           `json:"stopNodeId,omitempty" jsonschema:"vector store node to stop at"`
	OverrideConfig map[string]any   `json:"overrideConfig,omitempty" jsonschema:"per-run overrides"`
}

// UpsertHistoryListInput represents the MCP tool input for listing upsert runs.
type UpsertHistoryListInput struct {
	ChatflowID string `json:"chatflow_id" jsonschema:"chatflow identifier"`
	Order      string `json:"order,omitempty" jsonschema:"sort order by date (defaults to DESC)"`
	StartDate  string `json:"startDate,omitempty" jsonschema:"earliest run date"`
	EndDate    string `json:"endDate,omitempty" jsonschema:"latest run date"`
}

// UpsertHistoryDeleteInput addresses one upsert history entry.
type UpsertHistoryDeleteInput struct {
	HistoryID string `json:"history_id" jsonschema:"upsert history identifier"`
}

func vectorTools() []toolSpec {
	return []toolSpec{
		newTool("vector_upsert", "Upsert embeddings to vector store for a chatflow", vectorUpsert),
	}
}

func upsertHistoryTools() []toolSpec {
	return []toolSpec{
		newTool("upsert_history_list", "Retrieve upsert history for a chatflow", upsertHistoryList,
			enumProperty("order", string(flowise.SortAscending), string(flowise.SortDescending))),
		newTool("upsert_history_delete", "Soft-delete upsert history records", upsertHistoryDelete),
	}
}

func vectorUpsert(ctx context.Context, api API, in VectorUpsertInput) (string, error) {
	result, err := api.VectorUpsert(ctx, in.ChatflowID, flowise.VectorUpsertRequest{
		Documents:      in.Documents,
		Texts:          in.Texts,
		Embeddings:     in.Embeddings,
		Metadata:       in.Metadata,
		StopNodeID:     in.StopNodeID,
		OverrideConfig: in.OverrideConfig,
	})
	if err != nil {
		return "", err
	}
	return encodeRecord(result)
}

func upsertHistoryList(ctx context.Context, api API, in UpsertHistoryListInput) (string, error) {
	history, err := api.ListUpsertHistory(ctx, in.ChatflowID, flowise.UpsertHistoryFilter{
		Order:     flowise.SortOrder(in.Order),
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
	})
	if err != nil {
		return "", err
	}
	return encodeList(history)
}

func upsertHistoryDelete(ctx context.Context, api API, in UpsertHistoryDeleteInput) (string, error) {
	return confirm("Upsert history deleted successfully", api.DeleteUpsertHistory(ctx, in.HistoryID))
}
