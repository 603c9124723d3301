package dto

import "encoding/json"

// Payloads exchanged with the external workflow engine.

// WhatsAppForward is the body posted to the engine's WhatsApp webhook
// when an inbound Twilio message passes store lookup.
type WhatsAppForward struct {
	StoreName string `json:"store_name"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
}

// InstagramForward is the body posted to the engine's Instagram webhook
// by the background forward processor.
type InstagramForward struct {
	UserID           int64  `json:"user_id"`
	StoreName        string `json:"store_name"`
	UnipileAccountID string `json:"unipile_account_id"`
	UnipileChatID    string `json:"unipile_chat_id"`
	MessageText      string `json:"message_text"`
	MessageTimestamp string `json:"message_timestamp"`
	SystemPrompt     string `json:"system_prompt"`
	SenderName       string `json:"sender_name"`
}

// EmailForward is the body posted to the engine's email webhook for each
// unseen inbox message. SMTP credentials ride along so the workflow can
// reply directly.
type EmailForward struct {
	ConfigID       int64  `json:"config_id"`
	ConversationID string `json:"conversation_id"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	FromEmail      string `json:"from_email"`
	FromName       string `json:"from_name,omitempty"`
	MessageID      string `json:"message_id"`
	References     string `json:"references"`
	SMTPHost       string `json:"smtp_host"`
	SMTPPort       int    `json:"smtp_port"`
	SMTPUser       string `json:"smtp_user"`
	SMTPPassword   string `json:"smtp_password"`
	StoreName      string `json:"store_name"`
	AISystemPrompt string `json:"ai_system_prompt,omitempty"`
}

// AgentRunPayload is the body posted to the engine's prospecting webhook
// when an agent run starts.
type AgentRunPayload struct {
	AgentID            int64           `json:"agent_id"`
	StoreName          string          `json:"store_name"`
	ProductName        string          `json:"product_name"`
	ProductURL         string          `json:"product_url,omitempty"`
	Mode               string          `json:"mode"`
	Platforms          json.RawMessage `json:"platforms"`
	PlatformSubOptions json.RawMessage `json:"platform_sub_options"`
	Hashtags           json.RawMessage `json:"hashtags"`
	Targeting          json.RawMessage `json:"targeting"`
	CallbackURL        string          `json:"callback_url"`
}

// VideoGeneratePayload is the body posted to the engine's video webhook.
type VideoGeneratePayload struct {
	JobID              string `json:"job_id"`
	StoreID            string `json:"store_id"`
	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description,omitempty"`
	ProductImageURL    string `json:"product_image_url"`
	UgcStyle           string `json:"ugc_style"`
}

// VideoCallbackRequest is the engine's callback when a video render
// finishes or fails.
type VideoCallbackRequest struct {
	JobID        string `json:"job_id" binding:"required"`
	Status       string `json:"status" binding:"required"`
	VideoURL     string `json:"video_url,omitempty"`
	MotionPrompt string `json:"motion_prompt,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// AgentCompletionRequest is the engine's callback when a prospecting run
// ends.
type AgentCompletionRequest struct {
	AgentID        int64   `json:"agent_id" binding:"required"`
	Success        *bool   `json:"success" binding:"required"`
	ProspectsFound int     `json:"prospects_found,omitempty"`
	Error          *string `json:"error,omitempty"`
}

// AgentLogRequest is posted by the engine after each AI turn.
type AgentLogRequest struct {
	ConversationID string  `json:"conversation_id" binding:"required"`
	UserMessage    *string `json:"user_message,omitempty"`
	AIResponse     *string `json:"ai_response,omitempty"`
	CostTokens     int     `json:"cost_tokens"`
	Channel        string  `json:"channel,omitempty"`
	Action         string  `json:"action,omitempty"`
	DraftReply     *string `json:"draft_reply,omitempty"`
	ReplyToEmail   *string `json:"reply_to_email,omitempty"`
	ReplySubject   *string `json:"reply_subject,omitempty"`
}

// AgentContextRequest asks for store context plus recent history before
// the engine generates a reply.
type AgentContextRequest struct {
	StoreName string `json:"store_name" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// AgentContextResponse carries the formatted history and system prompt
// back to the engine. HistoryFormatted and SystemPrompt are JSON-encoded
// strings so the workflow can splice them into its model call verbatim.
type AgentContextResponse struct {
	ConversationID   string `json:"conversation_id"`
	StoreName        string `json:"store_name"`
	Phone            string `json:"phone"`
	HistoryFormatted string `json:"history_formatted"`
	SystemPrompt     string `json:"system_prompt"`
	MessageCount     int    `json:"message_count"`
	ProductsCount    int    `json:"products_count"`
}

// HistoryTurn is one turn in the model-ready conversation history.
type HistoryTurn struct {
	Role  string        `json:"role"`
	Parts []HistoryPart `json:"parts"`
}

// HistoryPart wraps a single text fragment.
type HistoryPart struct {
	Text string `json:"text"`
}

// LeadIngestRequest is one lead reported by the scraping workflow.
type LeadIngestRequest struct {
	StoreName    string          `json:"store_name" binding:"required"`
	AgentID      *int64          `json:"agent_id,omitempty"`
	Platform     string          `json:"platform" binding:"required"`
	ExternalID   string          `json:"external_id" binding:"required"`
	Username     string          `json:"username" binding:"required"`
	ProfileURL   string          `json:"profile_url" binding:"required"`
	Context      json.RawMessage `json:"context,omitempty"`
	QualityScore int             `json:"quality_score,omitempty"`
	DraftMessage *string         `json:"draft_message,omitempty"`
}

// LeadBatchRequest carries a batch of scraped leads for one agent run.
type LeadBatchRequest struct {
	StoreName string          `json:"store_name" binding:"required"`
	AgentID   int64           `json:"agent_id" binding:"required"`
	Leads     []LeadBatchItem `json:"leads" binding:"required"`
}

// LeadBatchItem is one entry inside a batch. Malformed items are skipped,
// not rejected.
type LeadBatchItem struct {
	Platform     string          `json:"platform"`
	ExternalID   string          `json:"external_id"`
	Username     string          `json:"username"`
	ProfileURL   string          `json:"profile_url"`
	Context      json.RawMessage `json:"context,omitempty"`
	QualityScore int             `json:"quality_score,omitempty"`
}
