package flowise

import (
	"context"
	"fmt"
	"net/http"
)

const (
	assistantsPath = "/assistants"
	chatflowsPath  = "/chatflows"
)

// CreateAssistant creates an assistant.
func (c *Client) CreateAssistant(ctx context.Context, assistant Assistant) (Assistant, error) {
	var out Assistant
	if err := c.call(ctx, http.MethodPost, assistantsPath, nil, assistant, &out); err != nil {
		return Assistant{}, fmt.Errorf("create assistant: %w", err)
	}
	return out, nil
}

// ListAssistants lists all assistants.
func (c *Client) ListAssistants(ctx context.Context) ([]Assistant, error) {
	var out []Assistant
	if err := c.call(ctx, http.MethodGet, assistantsPath, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list assistants: %w", err)
	}
	return out, nil
}

// GetAssistant fetches one assistant.
func (c *Client) GetAssistant(ctx context.Context, id string) (Assistant, error) {
	var out Assistant
	if err := c.call(ctx, http.MethodGet, assistantsPath+segment(id), nil, nil, &out); err != nil {
		return Assistant{}, fmt.Errorf("get assistant %s: %w", id, err)
	}
	return out, nil
}

// UpdateAssistant replaces the supplied fields of an assistant.
func (c *Client) UpdateAssistant(ctx context.Context, id string, assistant Assistant) (Assistant, error) {
	var out Assistant
	if err := c.call(ctx, http.MethodPut, assistantsPath+segment(id), nil, assistant, &out); err != nil {
		return Assistant{}, fmt.Errorf("update assistant %s: %w", id, err)
	}
	return out, nil
}

// DeleteAssistant deletes an assistant.
func (c *Client) DeleteAssistant(ctx context.Context, id string) error {
	if err := c.call(ctx, http.MethodDelete, assistantsPath+segment(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete assistant %s: %w", id, err)
	}
	return nil
}

// CreateChatflow creates a chatflow.
func (c *Client) CreateChatflow(ctx context.Context, chatflow Chatflow) (Chatflow, error) {
	var out Chatflow
	if err := c.call(ctx, http.MethodPost, chatflowsPath, nil, chatflow, &out); err != nil {
		return Chatflow{}, fmt.Errorf("create chatflow: %w", err)
	}
	return out, nil
}

// ListChatflows lists all chatflows.
func (c *Client) ListChatflows(ctx context.Context) ([]Chatflow, error) {
	var out []Chatflow
	if err := c.call(ctx, http.MethodGet, chatflowsPath, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list chatflows: %w", err)
	}
	return out, nil
}

// GetChatflow fetches one chatflow.
func (c *Client) GetChatflow(ctx context.Context, id string) (Chatflow, error) {
	var out Chatflow
	if err := c.call(ctx, http.MethodGet, chatflowsPath+segment(id), nil, nil, &out); err != nil {
		return Chatflow{}, fmt.Errorf("get chatflow %s: %w", id, err)
	}
	return out, nil
}

// GetChatflowByAPIKey fetches the chatflow bound to an API key.
func (c *Client) GetChatflowByAPIKey(ctx context.Context, apiKey string) (Chatflow, error) {
	var out Chatflow
	if err := c.call(ctx, http.MethodGet, chatflowsPath+"/apikey"+segment(apiKey), nil, nil, &out); err != nil {
		return Chatflow{}, fmt.Errorf("get chatflow by api key: %w", err)
	}
	return out, nil
}

// UpdateChatflow replaces the supplied fields of a chatflow.
func (c *Client) UpdateChatflow(ctx context.Context, id string, chatflow Chatflow) (Chatflow, error) {
	var out Chatflow
	if err := c.call(ctx, http.MethodPut, chatflowsPath+segment(id), nil, chatflow, &out); err != nil {
		return Chatflow{}, fmt.Errorf("update chatflow %s: %w", id, err)
	}
	return out, nil
}

// DeleteChatflow deletes a chatflow.
func (c *Client) DeleteChatflow(ctx context.Context, id string) error {
	if err := c.call(ctx, http.MethodDelete, chatflowsPath+segment(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete chatflow %s: %w", id, err)
	}
	return nil
}
