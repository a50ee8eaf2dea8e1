package domain

import (
	"context"

	"github.com/louisbranch/flowise-mcp/internal/services/mcp/flowise"
)

// defaultVariableType is applied when a variable is created without a type.
const defaultVariableType = "string"

// ToolCreateInput represents the MCP tool input for custom tool creation.
type ToolCreateInput struct {
	Name        string         `json:"name" jsonschema:"tool name"`
	Description string         `json:"description,omitempty" jsonschema:"what the tool does"`
	Schema      map[string]any `json:"schema,omitempty" jsonschema:"input schema of the tool"`
	Func        string         `json:"func,omitempty" jsonschema:"JavaScript function body"`
}

// ToolUpdateInput represents the MCP tool input for custom tool updates.
type ToolUpdateInput struct {
	ID          string         `json:"id" jsonschema:"tool identifier"`
	Name        string         `json:"name,omitempty" jsonschema:"tool name"`
	Description string         `json:"description,omitempty" jsonschema:"what the tool does"`
	Schema      map[string]any `json:"schema,omitempty" jsonschema:"input schema of the tool"`
	Func        string         `json:"func,omitempty" jsonschema:"JavaScript function body"`
}

// VariableCreateInput represents the MCP tool input for variable creation.
type VariableCreateInput struct {
	Name  string `json:"name" jsonschema:"variable name"`
	Value any    `json:"value" jsonschema:"variable value"`
	Type  string `json:"type,omitempty" jsonschema:"variable type (defaults to string)"`
}

// VariableUpdateInput represents the MCP tool input for variable updates.
type VariableUpdateInput struct {
	ID    string `json:"id" jsonschema:"variable identifier"`
	Name  string `json:"name,omitempty" jsonschema:"variable name"`
	Value any    `json:"value,omitempty" jsonschema:"variable value"`
	Type  string `json:"type,omitempty" jsonschema:"variable type"`
}

func customToolTools() []toolSpec {
	return []toolSpec{
		newTool("tool_create", "Create a custom tool with schema and function", toolCreate),
		newTool("tool_list", "List all custom tools", toolList),
		newTool("tool_get", "Get a custom tool by ID", toolGet),
		newTool("tool_update", "Update a custom tool", toolUpdate),
		newTool("tool_delete", "Delete a custom tool", toolDelete),
	}
}

func variableTools() []toolSpec {
	return []toolSpec{
		newTool("variable_create", "Create a runtime variable", variableCreate),
		newTool("variable_list", "List all variables", variableList),
		newTool("variable_update", "Update a variable", variableUpdate),
		newTool("variable_delete", "Delete a variable", variableDelete),
	}
}

func toolCreate(ctx context.Context, api API, in ToolCreateInput) (string, error) {
	created, err := api.CreateTool(ctx, flowise.Tool{
		Name:        in.Name,
		Description: in.Description,
		Schema:      toolSchema(in.Schema),
		Func:        in.Func,
	})
	if err != nil {
		return "", err
	}
	return encodeRecord(created)
}

func toolList(ctx context.Context, api API, _ EmptyInput) (string, error) {
	tools, err := api.ListTools(ctx)
	if err != nil {
		return "", err
	}
	return encodeList(tools)
}

func toolGet(ctx context.Context, api API, in IDInput) (string, error) {
	tool, err := api.GetTool(ctx, in.ID)
	if err != nil {
		return "", err
	}
	return encodeRecord(tool)
}

func toolUpdate(ctx context.Context, api API, in ToolUpdateInput) (string, error) {
	updated, err := api.UpdateTool(ctx, in.ID, flowise.Tool{
		Name:        in.Name,
		Description: in.Description,
		Schema:      toolSchema(in.Schema),
		Func:        in.Func,
	})
	if err != nil {
		return "", err
	}
	return encodeRecord(updated)
}

func toolDelete(ctx context.Context, api API, in IDInput) (string, error) {
	return confirm("Tool deleted successfully", api.DeleteTool(ctx, in.ID))
}

func variableCreate(ctx context.Context, api API, in VariableCreateInput) (string, error) {
	kind := in.Type
	if kind == "" {
		kind = defaultVariableType
	}
	created, err := api.CreateVariable(ctx, flowise.Variable{
		Name:  in.Name,
		Value: in.Value,
		Type:  kind,
	})
	if err != nil {
		return "", err
	}
	return encodeRecord(created)
}

func variableList(ctx context.Context, api API, _ EmptyInput) (string, error) {
	variables, err := api.ListVariables(ctx)
	if err != nil {
		return "", err
	}
	return encodeList(variables)
}

func variableUpdate(ctx context.Context, api API, in VariableUpdateInput) (string, error) {
	updated, err := api.UpdateVariable(ctx, in.ID, flowise.Variable{
		Name:  in.Name,
		Value: in.Value,
		Type:  in.Type,
	})
	if err != nil {
		return "", err
	}
	return encodeRecord(updated)
}

func variableDelete(ctx context.Context, api API, in IDInput) (string, error) {
	return confirm("Variable deleted successfully", api.DeleteVariable(ctx, in.ID))
}

func toolSchema(schema map[string]any) any {
	if schema == nil {
		return nil
	}
	return schema
}
