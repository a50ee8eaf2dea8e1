package flowise

import (
	"context"
	"fmt"
	"net/http"
)

const (
	toolsPath     = "/tools"
	variablesPath = "/variables"
)

// CreateTool creates a custom tool.
func (c *Client) CreateTool(ctx context.Context, tool Tool) (Tool, error) {
	var out Tool
	if err := c.call(ctx, http.MethodPost, toolsPath, nil, tool, &out); err != nil {
		return Tool{}, fmt.Errorf("create tool: %w", err)
	}
	return out, nil
}

// ListTools lists custom tools.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	var out []Tool
	if err := c.call(ctx, http.MethodGet, toolsPath, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return out, nil
}

// GetTool fetches one custom tool.
func (c *Client) GetTool(ctx context.Context, id string) (Tool, error) {
	var out Tool
	if err := c.call(ctx, http.MethodGet, toolsPath+segment(id), nil, nil, &out); err != nil {
		return Tool{}, fmt.Errorf("get tool %s: %w", id, err)
	}
	return out, nil
}

// UpdateTool replaces the supplied fields of a custom tool.
func (c *Client) UpdateTool(ctx context.Context, id string, tool Tool) (Tool, error) {
	var out Tool
	if err := c.call(ctx, http.MethodPut, toolsPath+segment(id), nil, tool, &out); err != nil {
		return Tool{}, fmt.Errorf("update tool %s: %w", id, err)
	}
	return out, nil
}

// DeleteTool deletes a custom tool.
func (c *Client) DeleteTool(ctx context.Context, id string) error {
	if err := c.call(ctx, http.MethodDelete, toolsPath+segment(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete tool %s: %w", id, err)
	}
	return nil
}

// CreateVariable creates a runtime variable.
func (c *Client) CreateVariable(ctx context.Context, variable Variable) (Variable, error) {
	var out Variable
	if err := c.call(ctx, http.MethodPost, variablesPath, nil, variable, &out); err != nil {
		return Variable{}, fmt.Errorf("create variable: %w", err)
	}
	return out, nil
}

// ListVariables lists runtime variables.
func (c *Client) ListVariables(ctx context.Context) ([]Variable, error) {
	var out []Variable
	if err := c.call(ctx, http.MethodGet, variablesPath, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list variables: %w", err)
	}
	return out, nil
}

// UpdateVariable replaces the supplied fields of a variable.
func (c *Client) UpdateVariable(ctx context.Context, id string, variable Variable) (Variable, error) {
	var out Variable
	if err := c.call(ctx, http.MethodPut, variablesPath+segment(id), nil, variable, &out); err != nil {
		return Variable{}, fmt.Errorf("update variable %s: %w", id, err)
	}
	return out, nil
}

// DeleteVariable deletes a variable.
func (c *Client) DeleteVariable(ctx context.Context, id string) error {
	if err := c.call(ctx, http.MethodDelete, variablesPath+segment(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete variable %s: %w", id, err)
	}
	return nil
}
