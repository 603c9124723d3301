package dto

import "encoding/json"

// Dashboard and provisioning request bodies.

// EmailConnectRequest links a store mailbox using an app password.
// Host and port fields are only required for the custom provider; known
// providers fall back to their presets.
type EmailConnectRequest struct {
	StoreName    string `json:"store_name" binding:"required"`
	EmailAddress string `json:"email_address" binding:"required,email"`
	AppPassword  string `json:"app_password" binding:"required"`
	Provider     string `json:"provider" binding:"required,oneof=gmail yahoo outlook custom"`
	IMAPHost     string `json:"imap_host,omitempty"`
	IMAPPort     int    `json:"imap_port,omitempty"`
	SMTPHost     string `json:"smtp_host,omitempty"`
	SMTPPort     int    `json:"smtp_port,omitempty"`
}

// ChannelConfigUpdateRequest toggles AI behaviour on a connected channel.
// Pointer fields distinguish "not sent" from zero values.
type ChannelConfigUpdateRequest struct {
	StoreName      string  `json:"store_name" binding:"required"`
	AiActive       *bool   `json:"ai_active,omitempty"`
	AiSystemPrompt *string `json:"ai_system_prompt,omitempty"`
	ManualApproval *bool   `json:"manual_approval,omitempty"`
}

// StoreScopedRequest carries just the tenant key, used by stop/toggle
// style endpoints.
type StoreScopedRequest struct {
	StoreName string `json:"store_name" binding:"required"`
}

// AgentCreateRequest creates a prospecting agent.
type AgentCreateRequest struct {
	StoreName          string          `json:"store_name" binding:"required"`
	Name               string          `json:"name" binding:"required,max=255"`
	ProductName        string          `json:"product_name" binding:"required,max=255"`
	ProductURL         string          `json:"product_url,omitempty"`
	ProductImage       string          `json:"product_image,omitempty"`
	Mode               string          `json:"mode" binding:"required,oneof=b2c b2b both"`
	ConfigType         string          `json:"config_type,omitempty"`
	Platforms          json.RawMessage `json:"platforms,omitempty"`
	PlatformSubOptions json.RawMessage `json:"platform_sub_options,omitempty"`
	Hashtags           json.RawMessage `json:"hashtags,omitempty"`
	Targeting          json.RawMessage `json:"targeting,omitempty"`
}

// AgentUpdateRequest partially updates an agent. Absent fields keep their
// current values.
type AgentUpdateRequest struct {
	StoreName          string          `json:"store_name" binding:"required"`
	Name               *string         `json:"name,omitempty"`
	ProductName        *string         `json:"product_name,omitempty"`
	ProductURL         *string         `json:"product_url,omitempty"`
	ProductImage       *string         `json:"product_image,omitempty"`
	Mode               *string         `json:"mode,omitempty"`
	ConfigType         *string         `json:"config_type,omitempty"`
	Platforms          json.RawMessage `json:"platforms,omitempty"`
	PlatformSubOptions json.RawMessage `json:"platform_sub_options,omitempty"`
	Hashtags           json.RawMessage `json:"hashtags,omitempty"`
	Targeting          json.RawMessage `json:"targeting,omitempty"`
}

// VideoGenerateRequest starts a product video render.
type VideoGenerateRequest struct {
	StoreID            string `json:"store_id" binding:"required"`
	ProductName        string `json:"product_name" binding:"required"`
	ProductDescription string `json:"product_description,omitempty"`
	ProductImageURL    string `json:"product_image_url" binding:"required"`
	UgcStyle           string `json:"ugc_style" binding:"required"`
}

// LeadConfigSaveRequest stores the scraping preferences for a store.
type LeadConfigSaveRequest struct {
	StoreName      string          `json:"store_name" binding:"required"`
	Hashtags       json.RawMessage `json:"hashtags,omitempty"`
	Platforms      json.RawMessage `json:"platforms,omitempty"`
	IsActive       *bool           `json:"is_active,omitempty"`
	AiSystemPrompt *string         `json:"ai_system_prompt,omitempty"`
}

// ProvisionBuyRequest purchases a Twilio number for a store.
type ProvisionBuyRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	StoreName   string `json:"store_name" binding:"required,max=100"`
	APIToken    string `json:"api_token,omitempty"`
}

// ProvisionConfigRequest updates a store's platform API token.
type ProvisionConfigRequest struct {
	StoreName string `json:"store_name" binding:"required"`
	APIToken  string `json:"api_token" binding:"required"`
}

// AgentTestRequest pushes a synthetic inbound message straight to the
// workflow engine.
type AgentTestRequest struct {
	StoreName string `json:"store_name" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Message   string `json:"message" binding:"required"`
}
