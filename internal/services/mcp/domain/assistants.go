package domain

import (
	"context"

	"github.com/louisbranch/flowise-mcp/internal/services/mcp/flowise"
)

// defaultAssistantTemperature is applied when an assistant is created
// without a temperature.
const defaultAssistantTemperature = 0.7

// IDInput addresses a single record.
type IDInput struct {
	ID string `json:"id" jsonschema:"record identifier"`
}

// EmptyInput is the argument shape of tools that take no arguments.
type EmptyInput struct{}

// AssistantCreateInput represents the MCP tool input for assistant creation.
type AssistantCreateInput struct {
	Name        string   `json:"name" jsonschema:"assistant name"`
	Description string   `json:"description,omitempty" jsonschema:"assistant description"`
	Model       string   `json:"model,omitempty" jsonschema:"model name"`
	Prompt      string   `json:"prompt,omitempty" jsonschema:"system prompt"`
	Temperature *float64 `json:"temperature,omitempty" jsonschema:"sampling temperature between 0 and 1 (defaults to 0.7)"`
	MaxTokens   *int     `json:"max_tokens,omitempty" jsonschema:"maximum tokens per answer"`
	Tools       []string `json:"tools,omitempty" jsonschema:"names of tools the assistant may use"`
}

// AssistantUpdateInput represents the MCP tool input for assistant updates.
type AssistantUpdateInput struct {
	ID          string   `json:"id" jsonschema:"assistant identifier"`
	Name        string   `json:"name,omitempty" jsonschema:"assistant name"`
	Description string   `json:"description,omitempty" jsonschema:"assistant description"`
	Model       string   `json:"model,omitempty" jsonschema:"model name"`
	Prompt      string   `json:"prompt,omitempty" jsonschema:"system prompt"`
	Temperature *float64 `json:"temperature,omitempty" jsonschema:"sampling temperature between 0 and 1"`
	MaxTokens   *int     `json:"max_tokens,omitempty" jsonschema:"maximum tokens per answer"`
}

// ChatflowCreateInput represents the MCP tool input for chatflow creation.
type ChatflowCreateInput struct {
	Name     string         `json:"name" jsonschema:"chatflow name"`
	FlowData map[string]any `json:"flowData,omitempty" jsonschema:"flow graph with nodes and edges"`
	Deployed *bool          `json:"deployed,omitempty" jsonschema:"whether the chatflow is deployed (defaults to true)"`
	IsPublic *bool          `json:"isPublic,omitempty" jsonschema:"whether the chatflow is public (defaults to false)"`
	Category string         `json:"category,omitempty" jsonschema:"chatflow category"`
}

// ChatflowAPIKeyInput addresses a chatflow by the API key bound to it.
type ChatflowAPIKeyInput struct {
	APIKey string `json:"apikey" jsonschema:"API key bound to the chatflow"`
}

// ChatflowUpdateInput represents the MCP tool input for chatflow updates.
type ChatflowUpdateInput struct {
	ID       string         `json:"id" jsonschema:"chatflow identifier"`
	Name     string         `json:"name,omitempty" jsonschema:"chatflow name"`
	FlowData map[string]any `json:"flowData,omitempty" jsonschema:"flow graph with nodes and edges"`
	Deployed *bool          `json:"deployed,omitempty" jsonschema:"whether the chatflow is deployed"`
	IsPublic *bool          `json:"isPublic,omitempty" jsonschema:"whether the chatflow is public"`
}

func assistantTools() []toolSpec {
	return []toolSpec{
		newTool("assistant_create", "Create a new assistant", assistantCreate,
			rangeProperty("temperature", 0, 1)),
		newTool("assistant_list", "List all assistants", assistantList),
		newTool("assistant_get", "Get an assistant by ID", assistantGet),
		newTool("assistant_update", "Update an assistant", assistantUpdate,
			rangeProperty("temperature", 0, 1)),
		newTool("assistant_delete", "Delete an assistant", assistantDelete),
	}
}

func chatflowTools() []toolSpec {
	return []toolSpec{
		newTool("chatflow_create", "Create a new chatflow", chatflowCreate),
		newTool("chatflow_list", "List all chatflows", chatflowList),
		newTool("chatflow_get", "Get a chatflow by ID", chatflowGet),
		newTool("chatflow_get_by_apikey", "Get a chatflow by API key", chatflowGetByAPIKey),
		newTool("chatflow_update", "Update a chatflow including flowData, deployed status, and isPublic", chatflowUpdate),
		newTool("chatflow_delete", "Delete a chatflow", chatflowDelete),
	}
}

func assistantCreate(ctx context.Context, api API, in AssistantCreateInput) (string, error) {
	temperature := in.Temperature
	if temperature == nil {
		value := defaultAssistantTemperature
		temperature = &value
	}
	created, err := api.CreateAssistant(ctx, flowise.Assistant{
		Name:        in.Name,
		Description: in.Description,
		Model:       in.Model,
		Prompt:      in.Prompt,
		Temperature: temperature,
		MaxTokens:   in.MaxTokens,
		Tools:       in.Tools,
	})
	if err != nil {
		return "", err
	}
	return encodeRecord(created)
}

func assistantList(ctx context.Context, api API, _ EmptyInput) (string, error) {
	assistants, err := api.ListAssistants(ctx)
	if err != nil {
		return "", err
	}
	return encodeList(assistants)
}

func assistantGet(ctx context.Context, api API, in IDInput) (string, error) {
	assistant, err := api.GetAssistant(ctx, in.ID)
	if err != nil {
		return "", err
	}
	return encodeRecord(assistant)
}

func assistantUpdate(ctx context.Context, api API, in AssistantUpdateInput) (string, error) {
	updated, err := api.UpdateAssistant(ctx, in.ID, flowise.Assistant{
		Name:        in.Name,
		Description: in.Description,
		Model:       in.Model,
		Prompt:      in.Prompt,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return encodeRecord(updated)
}

func assistantDelete(ctx context.Context, api API, in IDInput) (string, error) {
	return confirm("Assistant deleted successfully", api.DeleteAssistant(ctx, in.ID))
}

func chatflowCreate(ctx context.Context, api API, in ChatflowCreateInput) (string, error) {
	deployed := true
	if in.Deployed != nil {
		deployed = *in.Deployed
	}
	isPublic := false
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}
	created, err := api.CreateChatflow(ctx, flowise.Chatflow{
		Name:     in.Name,
		FlowData: flowData(in.FlowData),
		Deployed: &deployed,
		IsPublic: &isPublic,
		Category: in.Category,
	})
	if err != nil {
		return "", err
	}
	return encodeRecord(created)
}

func chatflowList(ctx context.Context, api API, _ EmptyInput) (string, error) {
	chatflows, err := api.ListChatflows(ctx)
	if err != nil {
		return "", err
	}
	return encodeList(chatflows)
}

func chatflowGet(ctx context.Context, api API, in IDInput) (string, error) {
	chatflow, err := api.GetChatflow(ctx, in.ID)
	if err != nil {
		return "", err
	}
	return encodeRecord(chatflow)
}

func chatflowGetByAPIKey(ctx context.Context, api API, in ChatflowAPIKeyInput) (string, error) {
	chatflow, err := api.GetChatflowByAPIKey(ctx, in.APIKey)
	if err != nil {
		return "", err
	}
	return encodeRecord(chatflow)
}

func chatflowUpdate(ctx context.Context, api API, in ChatflowUpdateInput) (string, error) {
	updated, err := api.UpdateChatflow(ctx, in.ID, flowise.Chatflow{
		Name:     in.Name,
		FlowData: flowData(in.FlowData),
		Deployed: in.Deployed,
		IsPublic: in.IsPublic,
	})
	if err != nil {
		return "", err
	}
	return encodeRecord(updated)
}

func chatflowDelete(ctx context.Context, api API, in IDInput) (string, error) {
	return confirm("Chatflow deleted successfully", api.DeleteChatflow(ctx, in.ID))
}

// flowData keeps an absent graph out of the request body.
func flowData(graph map[string]any) any {
	if graph == nil {
		return nil
	}
	return graph
}
