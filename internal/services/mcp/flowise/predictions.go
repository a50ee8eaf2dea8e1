package flowise

import (
	"context"
	"fmt"
	"net/http"
)

const predictionPath = "/prediction"

// Predict runs a chatflow and waits for the complete answer. The request's
// Streaming flag is cleared; use PredictStream for incremental output.
func (c *Client) Predict(ctx context.Context, chatflowID string, req PredictionRequest) (PredictionResponse, error) {
	req.Streaming = false
	var out PredictionResponse
	if err := c.call(ctx, http.MethodPost, predictionPath+segment(chatflowID), nil, req, &out); err != nil {
		return PredictionResponse{}, fmt.Errorf("predict %s: %w", chatflowID, err)
	}
	return out, nil
}

// PredictStream runs a chatflow with streaming enabled and returns the
// fragment sequence. The request is sent before PredictStream returns; a
// rejected request fails here rather than on the first Next. The caller must
// Close the stream. Cancelling ctx aborts the read in progress.
func (c *Client) PredictStream(ctx context.Context, chatflowID string, req PredictionRequest) (*Stream, error) {
	req.Streaming = true
	resp, err := c.send(ctx, http.MethodPost, predictionPath+segment(chatflowID), nil, req, contentTypeSSE)
	if err != nil {
		return nil, fmt.Errorf("stream prediction %s: %w", chatflowID, err)
	}
	return NewStream(resp.Body), nil
}
