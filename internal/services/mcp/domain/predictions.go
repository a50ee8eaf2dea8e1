package domain

import (
	"context"

	"github.com/louisbranch/flowise-mcp/internal/services/mcp/flowise"
)

// PredictionRunInput represents the MCP tool input for running a chatflow.
type PredictionRunInput struct {
	ChatflowID     string           `json:"chatflow_id" jsonschema:"chatflow identifier"`
	Question       string           `json:"question,omitempty" jsonschema:"question to ask"`
	Form           map[string]any   `json:"form,omitempty" jsonschema:"AgentFlow V2 form inputs"`
	Streaming      bool             `json:"streaming,omitempty" jsonschema:"stream the answer and return the joined fragments"`
	OverrideConfig map[string]any   `json:"overrideConfig,omitempty" jsonschema:"per-run overrides such as sessionId, vars, temperature or maxTokens"`
	History        []map[string]any `json:"history,omitempty" jsonschema:"previous messages of the conversation"`
	Uploads        []map[string]any `json:"uploads,omitempty" jsonschema:"files or images sent with the question"`
	HumanInput     any              `json:"humanInput,omitempty" jsonschema:"human-in-the-loop input resuming a paused run"`
	ChatID         string           `json:"chatId,omitempty" jsonschema:"chat identifier"`
}

// PredictionStreamInput represents the MCP tool input for streaming a chatflow.
type PredictionStreamInput struct {
	ChatflowID     string           `json:"chatflow_id" jsonschema:"chatflow identifier"`
	Question       string           `json:"question,omitempty" jsonschema:"question to ask"`
	Form           map[string]any   `json:"form,omitempty" jsonschema:"AgentFlow V2 form inputs"`
	OverrideConfig map[string]any   `json:"overrideConfig,omitempty" jsonschema:"per-run overrides"`
	History        []map[string]any `json:"history,omitempty" jsonschema:"previous messages of the conversation"`
	Uploads        []map[string]any `json:"uploads,omitempty" jsonschema:"files or images sent with the question"`
	SessionID      string           `json:"sessionId,omitempty" jsonschema:"session identifier"`
}

// ChatMessageListInput represents the MCP tool input for listing messages.
type ChatMessageListInput struct {
	ChatflowID string `json:"chatflow_id" jsonschema:"chatflow identifier"`
	ChatType   string `json:"chatType,omitempty" jsonschema:"message origin"`
	Order      string `json:"order,omitempty" jsonschema:"sort order by creation date (defaults to DESC)"`
	ChatID     string `json:"chatId,omitempty" jsonschema:"chat identifier"`
	MemoryType string `json:"memoryType,omitempty" jsonschema:"memory implementation"`
	SessionID  string `json:"sessionId,omitempty" jsonschema:"session identifier"`
	StartDate  string `json:"startDate,omitempty" jsonschema:"earliest creation date"`
	EndDate    string `json:"endDate,omitempty" jsonschema:"latest creation date"`
	Feedback   *bool  `json:"feedback,omitempty" jsonschema:"only messages with feedback"`
	Limit      *int   `json:"limit,omitempty" jsonschema:"maximum number of messages"`
	Offset     *int   `json:"offset,omitempty" jsonschema:"number of messages to skip"`
}

// ChatflowIDInput addresses everything belonging to one chatflow.
type ChatflowIDInput struct {
	ChatflowID string `json:"chatflow_id" jsonschema:"chatflow identifier"`
}

// AttachmentCreateInput represents the MCP tool input for uploading attachments.
type AttachmentCreateInput struct {
	ChatflowID   string `json:"chatflow_id" jsonschema:"chatflow identifier"`
	ChatID       string `json:"chat_id" jsonschema:"chat identifier"`
	Attachments  []any  `json:"attachments" jsonschema:"files to attach"`
	ReturnBase64 bool   `json:"return_base64,omitempty" jsonschema:"include the file content as base64 in the result"`
}

// FeedbackCreateInput represents the MCP tool input for recording feedback.
type FeedbackCreateInput struct {
	ChatflowID string `json:"chatflowid" jsonschema:"chatflow identifier"`
	ChatID     string `json:"chatId" jsonschema:"chat identifier"`
	MessageID  string `json:"messageId,omitempty" jsonschema:"message identifier"`
	Rating     *int   `json:"rating,omitempty" jsonschema:"rating from 1 to 5"`
	Content    string `json:"content,omitempty" jsonschema:"feedback text"`
}

// FeedbackUpdateInput represents the MCP tool input for changing feedback.
type FeedbackUpdateInput struct {
	ID      string `json:"id" jsonschema:"feedback identifier"`
	Rating  *int   `json:"rating,omitempty" jsonschema:"rating"`
	Content string `json:"content,omitempty" jsonschema:"feedback text"`
}

// LeadCreateInput represents the MCP tool input for recording a lead.
type LeadCreateInput struct {
	ChatflowID string `json:"chatflowid" jsonschema:"chatflow identifier"`
	ChatID     string `json:"chatId" jsonschema:"chat identifier"`
	Name       string `json:"name,omitempty" jsonschema:"contact name"`
	Email      string `json:"email,omitempty" jsonschema:"contact email"`
	Phone      string `json:"phone,omitempty" jsonschema:"contact phone"`
}

func predictionTools() []toolSpec {
	return []toolSpec{
		newTool("prediction_run", "Run a prediction on a chatflow with support for question, form (AgentFlow V2), streaming, overrideConfig, history, uploads, and humanInput", predictionRun),
		newTool("prediction_stream", "Run a streaming prediction on a chatflow", predictionStream),
	}
}

func chatMessageTools() []toolSpec {
	return []toolSpec{
		newTool("chatmessage_list", "List chat messages for a chatflow with filters", chatMessageList,
			enumProperty("chatType", string(flowise.ChatTypeInternal), string(flowise.ChatTypeExternal)),
			enumProperty("order", string(flowise.SortAscending), string(flowise.SortDescending)),
			enumProperty("memoryType", string(flowise.MemoryTypeWindowBuffer), string(flowise.MemoryTypeConversationSummary), string(flowise.MemoryTypeBuffer))),
		newTool("chatmessage_delete_all", "Delete all chat messages for a chatflow", chatMessageDeleteAll),
	}
}

func attachmentTools() []toolSpec {
	return []toolSpec{
		newTool("attachment_create", "Create attachments for a chatflow/chat session", attachmentCreate),
	}
}

func feedbackTools() []toolSpec {
	return []toolSpec{
		newTool("feedback_list", "List feedback for a chatflow", feedbackList),
		newTool("feedback_create", "Create feedback", feedbackCreate, rangeProperty("rating", 1, 5)),
		newTool("feedback_update", "Update feedback", feedbackUpdate),
	}
}

func leadTools() []toolSpec {
	return []toolSpec{
		newTool("lead_list", "List leads for a chatflow", leadList),
		newTool("lead_create", "Create a lead", leadCreate),
	}
}

func predictionRun(ctx context.Context, api API, in PredictionRunInput) (string, error) {
	req := flowise.PredictionRequest{
		Question:       in.Question,
		OverrideConfig: in.OverrideConfig,
		History:        in.History,
		Uploads:        in.Uploads,
		Form:           in.Form,
		HumanInput:     in.HumanInput,
		ChatID:         in.ChatID,
	}
	if in.Streaming {
		stream, err := api.PredictStream(ctx, in.ChatflowID, req)
		if err != nil {
			return "", err
		}
		return drainStream(stream)
	}
	resp, err := api.Predict(ctx, in.ChatflowID, req)
	if err != nil {
		return "", err
	}
	return encodeRecord(resp)
}

func predictionStream(ctx context.Context, api API, in PredictionStreamInput) (string, error) {
	stream, err := api.PredictStream(ctx, in.ChatflowID, flowise.PredictionRequest{
		Question:       in.Question,
		OverrideConfig: in.OverrideConfig,
		History:        in.History,
		Uploads:        in.Uploads,
		Form:           in.Form,
		SessionID:      in.SessionID,
	})
	if err != nil {
		return "", err
	}
	return drainStream(stream)
}

func chatMessageList(ctx context.Context, api API, in ChatMessageListInput) (string, error) {
	messages, err := api.ListChatMessages(ctx, in.ChatflowID, flowise.ChatMessageFilter{
		ChatType:   flowise.ChatType(in.ChatType),
		Order:      flowise.SortOrder(in.Order),
		ChatID:     in.ChatID,
		MemoryType: flowise.MemoryType(in.MemoryType),
		SessionID:  in.SessionID,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Feedback:   in.Feedback,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return "", err
	}
	return encodeList(messages)
}

func chatMessageDeleteAll(ctx context.Context, api API, in ChatflowIDInput) (string, error) {
	return confirm("All chat messages deleted successfully", api.DeleteChatMessages(ctx, in.ChatflowID))
}

func attachmentCreate(ctx context.Context, api API, in AttachmentCreateInput) (string, error) {
	attachments, err := api.CreateAttachments(ctx, in.ChatflowID, in.ChatID, flowise.AttachmentRequest{
		Attachments:  in.Attachments,
		ReturnBase64: in.ReturnBase64,
	})
	if err != nil {
		return "", err
	}
	return encodeList(attachments)
}

func feedbackList(ctx context.Context, api API, in ChatflowIDInput) (string, error) {
	feedback, err := api.ListFeedback(ctx, in.ChatflowID)
	if err != nil {
		return "", err
	}
	return encodeList(feedback)
}

func feedbackCreate(ctx context.Context, api API, in FeedbackCreateInput) (string, error) {
	created, err := api.CreateFeedback(ctx, flowise.Feedback{
		ChatflowID: in.ChatflowID,
		ChatID:     in.ChatID,
		MessageID:  in.MessageID,
		Rating:     rating(in.Rating),
		Content:    in.Content,
	})
	if err != nil {
		return "", err
	}
	return encodeRecord(created)
}

func feedbackUpdate(ctx context.Context, api API, in FeedbackUpdateInput) (string, error) {
	updated, err := api.UpdateFeedback(ctx, in.ID, flowise.Feedback{
		Rating:  rating(in.Rating),
		Content: in.Content,
	})
	if err != nil {
		return "", err
	}
	return encodeRecord(updated)
}

func leadList(ctx context.Context, api API, in ChatflowIDInput) (string, error) {
	leads, err := api.ListLeads(ctx, in.ChatflowID)
	if err != nil {
		return "", err
	}
	return encodeList(leads)
}

func leadCreate(ctx context.Context, api API, in LeadCreateInput) (string, error) {
	created, err := api.CreateLead(ctx, flowise.Lead{
		ChatflowID: in.ChatflowID,
		ChatID:     in.ChatID,
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
	})
	if err != nil {
		return "", err
	}
	return encodeRecord(created)
}

// rating keeps an absent rating out of the request body.
func rating(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}
