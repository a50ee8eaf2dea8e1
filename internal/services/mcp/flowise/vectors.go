package flowise

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/louisbranch/flowise-mcp/internal/platform/errors"
)

const (
	vectorUpsertPath  = "/vector/upsert"
	upsertHistoryPath = "/upsert-history"
	pingPath          = "/ping"
)

// DefaultPingMessage is reported when the remote answers without a message.
const DefaultPingMessage = "pong"

// VectorUpsert upserts documents through a chatflow's vector store nodes.
func (c *Client) VectorUpsert(ctx context.Context, chatflowID string, req VectorUpsertRequest) (map[string]any, error) {
	var out map[string]any
	if err := c.call(ctx, http.MethodPost, vectorUpsertPath+segment(chatflowID), nil, req, &out); err != nil {
		return nil, fmt.Errorf("vector upsert %s: %w", chatflowID, err)
	}
	return out, nil
}

// ListUpsertHistory lists the vector upsert runs of a chatflow.
func (c *Client) ListUpsertHistory(ctx context.Context, chatflowID string, filter UpsertHistoryFilter) ([]UpsertHistory, error) {
	var out []UpsertHistory
	if err := c.call(ctx, http.MethodGet, upsertHistoryPath+segment(chatflowID), filter.query(), nil, &out); err != nil {
		return nil, fmt.Errorf("list upsert history %s: %w", chatflowID, err)
	}
	return out, nil
}

// DeleteUpsertHistory soft-deletes one upsert history entry.
func (c *Client) DeleteUpsertHistory(ctx context.Context, historyID string) error {
	if err := c.call(ctx, http.MethodPatch, upsertHistoryPath+segment(historyID), nil, nil, nil); err != nil {
		return fmt.Errorf("delete upsert history %s: %w", historyID, err)
	}
	return nil
}

// Ping checks that the remote is reachable. Flowise answers with plain text
// or with a JSON object carrying a message; either form is accepted.
func (c *Client) Ping(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.send(ctx, http.MethodGet, pingPath, nil, nil, contentTypeJSON+", text/plain")
	if err != nil {
		return "", fmt.Errorf("ping: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeRemoteUnreachable, "read ping response", err)
	}
	return pingMessage(data), nil
}

func pingMessage(data []byte) string {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err == nil {
		switch value := decoded.(type) {
		case map[string]any:
			if message, ok := value["message"].(string); ok && message != "" {
				return message
			}
			return DefaultPingMessage
		case string:
			if value != "" {
				return value
			}
			return DefaultPingMessage
		}
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}
	return DefaultPingMessage
}

func (f UpsertHistoryFilter) query() url.Values {
	q := url.Values{}
	order := f.Order
	if order == "" {
		order = SortDescending
	}
	q.Set("order", string(order))
	setIf(q, "startDate", f.StartDate)
	setIf(q, "endDate", f.EndDate)
	return q
}
