package flowise

import (
	"bytes"
	"encoding/json"
)

// ChatType filters chat messages by origin.
type ChatType string

const (
	ChatTypeInternal ChatType = "INTERNAL"
	ChatTypeExternal ChatType = "EXTERNAL"
)

// MemoryType names a Flowise conversation memory implementation.
type MemoryType string

const (
	MemoryTypeWindowBuffer        MemoryType = "windowBufferMemory"
	MemoryTypeConversationSummary MemoryType = "conversationSummaryMemory"
	MemoryTypeBuffer              MemoryType = "bufferMemory"
)

// SortOrder orders list results by creation date.
type SortOrder string

const (
	SortAscending  SortOrder = "ASC"
	SortDescending SortOrder = "DESC"
)

// Assistant is an OpenAI-style assistant managed by Flowise.
type Assistant struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Model       string   `json:"model,omitempty"`
	Prompt      string   `json:"prompt,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Tools       []string `json:"tools,omitempty"`
	CreatedDate string   `json:"created_date,omitempty"`
	UpdatedDate string   `json:"updated_date,omitempty"`
}

// Chatflow is a deployable flow graph.
type Chatflow struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name,omitempty"`
	FlowData      any    `json:"flowData,omitempty"`
	Deployed      *bool  `json:"deployed,omitempty"`
	IsPublic      *bool  `json:"isPublic,omitempty"`
	APIKeyID      string `json:"apikeyid,omitempty"`
	Category      string `json:"category,omitempty"`
	SpeechToText  any    `json:"speechToText,omitempty"`
	ChatbotConfig any    `json:"chatbotConfig,omitempty"`
	CreatedDate   string `json:"createdDate,omitempty"`
	UpdatedDate   string `json:"updatedDate,omitempty"`
}

// PredictionRequest is the body of a prediction call. Form carries AgentFlow
// V2 inputs and HumanInput resumes a human-in-the-loop checkpoint.
type PredictionRequest struct {
	Question       string           `json:"question,omitempty"`
	OverrideConfig map[string]any   `json:"overrideConfig,omitempty"`
	History        []map[string]any `json:"history,omitempty"`
	Uploads        []map[string]any `json:"uploads,omitempty"`
	Streaming      bool             `json:"streaming,omitempty"`
	Form           map[string]any   `json:"form,omitempty"`
	HumanInput     any              `json:"humanInput,omitempty"`
	SessionID      string           `json:"sessionId,omitempty"`
	ChatID         string           `json:"chatId,omitempty"`
}

// PredictionResponse is the result of a non-streaming prediction.
type PredictionResponse struct {
	Text            string           `json:"text,omitempty"`
	JSON            map[string]any   `json:"json,omitempty"`
	ChatID          string           `json:"chatId,omitempty"`
	SessionID       string           `json:"sessionId,omitempty"`
	SourceDocuments []map[string]any `json:"sourceDocuments,omitempty"`
	UsedTools       []map[string]any `json:"usedTools,omitempty"`
	Question        string           `json:"question,omitempty"`
	ChatMessageID   string           `json:"chatMessageId,omitempty"`
}

// ChatMessage is one stored message of a chatflow conversation.
type ChatMessage struct {
	ID              string           `json:"id,omitempty"`
	Role            string           `json:"role,omitempty"`
	Content         string           `json:"content,omitempty"`
	ChatflowID      string           `json:"chatflowid,omitempty"`
	ChatType        ChatType         `json:"chatType,omitempty"`
	ChatID          string           `json:"chatId,omitempty"`
	MemoryType      MemoryType       `json:"memoryType,omitempty"`
	SessionID       string           `json:"sessionId,omitempty"`
	CreatedDate     string           `json:"createdDate,omitempty"`
	SourceDocuments any              `json:"sourceDocuments,omitempty"`
	UsedTools       any              `json:"usedTools,omitempty"`
	FileAnnotations any              `json:"fileAnnotations,omitempty"`
	Feedback        map[string]any   `json:"feedback,omitempty"`
	Artifacts       []map[string]any `json:"artifacts,omitempty"`
}

// ChatMessageFilter narrows a chat message listing. Zero values are omitted
// from the query string.
type ChatMessageFilter struct {
	ChatType   ChatType
	Order      SortOrder
	ChatID     string
	MemoryType MemoryType
	SessionID  string
	StartDate  string
	EndDate    string
	Feedback   *bool
	Limit      *int
	Offset     *int
}

// Attachment is a file uploaded into a chat session.
type Attachment struct {
	ID          string `json:"id,omitempty"`
	ChatflowID  string `json:"chatflowId,omitempty"`
	ChatID      string `json:"chatId,omitempty"`
	FileName    string `json:"fileName,omitempty"`
	FileBase64  string `json:"fileBase64,omitempty"`
	FileURL     string `json:"fileUrl,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	Content     string `json:"content,omitempty"`
	CreatedDate string `json:"createdDate,omitempty"`
}

// AttachmentRequest is the body of an attachment upload.
type AttachmentRequest struct {
	Attachments  []any `json:"attachments"`
	ReturnBase64 bool  `json:"returnBase64"`
}

// Feedback is a rating left on a chat message.
type Feedback struct {
	ID          string `json:"id,omitempty"`
	ChatflowID  string `json:"chatflowid,omitempty"`
	ChatID      string `json:"chatId,omitempty"`
	MessageID   string `json:"messageId,omitempty"`
	Rating      any    `json:"rating,omitempty"`
	Content     string `json:"content,omitempty"`
	CreatedDate string `json:"createdDate,omitempty"`
}

// Lead is contact information captured by a chatflow.
type Lead struct {
	ID          string `json:"id,omitempty"`
	ChatflowID  string `json:"chatflowid,omitempty"`
	ChatID      string `json:"chatId,omitempty"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CreatedDate string `json:"createdDate,omitempty"`
}

// Tool is a custom JavaScript tool usable from flows.
type Tool struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Schema      any    `json:"schema,omitempty"`
	Func        string `json:"func,omitempty"`
	IconSrc     string `json:"iconSrc,omitempty"`
	CreatedDate string `json:"createdDate,omitempty"`
	UpdatedDate string `json:"updatedDate,omitempty"`
}

// Variable is a runtime variable readable from flows.
type Variable struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Value       any    `json:"value,omitempty"`
	Type        string `json:"type,omitempty"`
	CreatedDate string `json:"createdDate,omitempty"`
	UpdatedDate string `json:"updatedDate,omitempty"`
}

// DocumentStore groups loaders, chunks and the vector store they feed.
type DocumentStore struct {
	ID                  string           `json:"id,omitempty"`
	Name                string           `json:"name,omitempty"`
	Description         string           `json:"description,omitempty"`
	Loaders             any              `json:"loaders,omitempty"`
	WhereUsed           any              `json:"whereUsed,omitempty"`
	VectorStoreConfig   any              `json:"vectorStoreConfig,omitempty"`
	EmbeddingConfig     any              `json:"embeddingConfig,omitempty"`
	RecordManagerConfig any              `json:"recordManagerConfig,omitempty"`
	Status              string           `json:"status,omitempty"`
	TotalChunks         *int             `json:"totalChunks,omitempty"`
	TotalChars          *int             `json:"totalChars,omitempty"`
	Chunks              []map[string]any `json:"chunks,omitempty"`
	CreatedDate         string           `json:"createdDate,omitempty"`
	UpdatedDate         string           `json:"updatedDate,omitempty"`
}

// DocumentChunk is one split piece of a loaded document.
type DocumentChunk struct {
	ID          string         `json:"id,omitempty"`
	DocID       string         `json:"docId,omitempty"`
	StoreID     string         `json:"storeId,omitempty"`
	LoaderID    string         `json:"loaderId,omitempty"`
	ChunkNo     *int           `json:"chunkNo,omitempty"`
	PageContent string         `json:"pageContent,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// DocumentChunkPage is the response of a chunk listing.
type DocumentChunkPage struct {
	Chunks      []DocumentChunk `json:"chunks"`
	Count       *int            `json:"count,omitempty"`
	File        any             `json:"file,omitempty"`
	CurrentPage *int            `json:"currentPage,omitempty"`
	StoreName   string          `json:"storeName,omitempty"`
	Description string          `json:"description,omitempty"`
}

// VectorUpsertRequest is the body of a vector upsert.
type VectorUpsertRequest struct {
	Documents      []map[string]any `json:"documents,omitempty"`
	Texts          []string         `json:"texts,omitempty"`
	Embeddings     [][]float64      `json:"embeddings,omitempty"`
	Metadata       []map[string]any `json:"metadata,omitempty"`
	StopNodeID     string           `json:"stopNodeId,omitempty"`
	OverrideConfig map[string]any   `json:"overrideConfig,omitempty"`
}

// UpsertHistory records one vector upsert run for a chatflow.
type UpsertHistory struct {
	ID         string         `json:"id,omitempty"`
	ChatflowID string         `json:"chatflowid,omitempty"`
	Result     map[string]any `json:"result,omitempty"`
	FlowData   any            `json:"flowData,omitempty"`
	Date       string         `json:"date,omitempty"`
}

// UpsertHistoryFilter narrows an upsert history listing.
type UpsertHistoryFilter struct {
	Order     SortOrder
	StartDate string
	EndDate   string
}

// UnmarshalJSON accepts both the paged object and a bare chunk array, which
// older Flowise releases return.
func (p *DocumentChunkPage) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var chunks []DocumentChunk
		if err := json.Unmarshal(trimmed, &chunks); err != nil {
			return err
		}
		*p = DocumentChunkPage{Chunks: chunks}
		return nil
	}
	type page DocumentChunkPage
	var decoded page
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return err
	}
	*p = DocumentChunkPage(decoded)
	return nil
}
