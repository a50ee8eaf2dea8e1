package flowise

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	chatMessagesPath = "/chatmessages"
	attachmentsPath  = "/attachments"
	feedbackPath     = "/feedback"
	leadsPath        = "/leads"
)

// ListChatMessages lists a chatflow's messages. Results are newest first
// unless the filter asks otherwise.
func (c *Client) ListChatMessages(ctx context.Context, chatflowID string, filter ChatMessageFilter) ([]ChatMessage, error) {
	var out []ChatMessage
	if err := c.call(ctx, http.MethodGet, chatMessagesPath+segment(chatflowID), filter.query(), nil, &out); err != nil {
		return nil, fmt.Errorf("list chat messages %s: %w", chatflowID, err)
	}
	return out, nil
}

// DeleteChatMessages deletes every message of a chatflow.
func (c *Client) DeleteChatMessages(ctx context.Context, chatflowID string) error {
	if err := c.call(ctx, http.MethodDelete, chatMessagesPath+segment(chatflowID), nil, nil, nil); err != nil {
		return fmt.Errorf("delete chat messages %s: %w", chatflowID, err)
	}
	return nil
}

// CreateAttachments uploads files into a chat session.
func (c *Client) CreateAttachments(ctx context.Context, chatflowID, chatID string, req AttachmentRequest) ([]Attachment, error) {
	if req.Attachments == nil {
		req.Attachments = []any{}
	}
	var out []Attachment
	path := attachmentsPath + segment(chatflowID) + segment(chatID)
	if err := c.call(ctx, http.MethodPost, path, nil, req, &out); err != nil {
		return nil, fmt.Errorf("create attachments %s/%s: %w", chatflowID, chatID, err)
	}
	return out, nil
}

// ListFeedback lists feedback left on a chatflow.
func (c *Client) ListFeedback(ctx context.Context, chatflowID string) ([]Feedback, error) {
	var out []Feedback
	if err := c.call(ctx, http.MethodGet, feedbackPath+segment(chatflowID), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list feedback %s: %w", chatflowID, err)
	}
	return out, nil
}

// CreateFeedback records feedback on a message.
func (c *Client) CreateFeedback(ctx context.Context, feedback Feedback) (Feedback, error) {
	var out Feedback
	if err := c.call(ctx, http.MethodPost, feedbackPath, nil, feedback, &out); err != nil {
		return Feedback{}, fmt.Errorf("create feedback: %w", err)
	}
	return out, nil
}

// UpdateFeedback changes existing feedback.
func (c *Client) UpdateFeedback(ctx context.Context, id string, feedback Feedback) (Feedback, error) {
	var out Feedback
	if err := c.call(ctx, http.MethodPut, feedbackPath+segment(id), nil, feedback, &out); err != nil {
		return Feedback{}, fmt.Errorf("update feedback %s: %w", id, err)
	}
	return out, nil
}

// ListLeads lists leads captured by a chatflow.
func (c *Client) ListLeads(ctx context.Context, chatflowID string) ([]Lead, error) {
	var out []Lead
	if err := c.call(ctx, http.MethodGet, leadsPath+segment(chatflowID), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list leads %s: %w", chatflowID, err)
	}
	return out, nil
}

// CreateLead records a lead.
func (c *Client) CreateLead(ctx context.Context, lead Lead) (Lead, error) {
	var out Lead
	if err := c.call(ctx, http.MethodPost, leadsPath, nil, lead, &out); err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return out, nil
}

func (f ChatMessageFilter) query() url.Values {
	q := url.Values{}
	order := f.Order
	if order == "" {
		order = SortDescending
	}
	q.Set("order", string(order))
	setIf(q, "chatType", string(f.ChatType))
	setIf(q, "chatId", f.ChatID)
	setIf(q, "memoryType", string(f.MemoryType))
	setIf(q, "sessionId", f.SessionID)
	setIf(q, "startDate", f.StartDate)
	setIf(q, "endDate", f.EndDate)
	if f.Feedback != nil {
		q.Set("feedback", strconv.FormatBool(*f.Feedback))
	}
	if f.Limit != nil {
		q.Set("limit", strconv.Itoa(*f.Limit))
	}
	if f.Offset != nil {
		q.Set("offset", strconv.Itoa(*f.Offset))
	}
	return q
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
