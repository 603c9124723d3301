package model

import "time"

// Channel identifiers used across the conversation ledger and dispatcher.
const (
	ChannelWhatsApp  = "whatsapp"
	ChannelInstagram = "instagram"
	ChannelEmail     = "email"
)

// WhatsAppStoreConfig maps a Twilio WhatsApp number to a tenant store.
// ApiToken is held as plaintext in memory; the persistence layer encrypts it.
type WhatsAppStoreConfig struct {
	ID                int64     `json:"id"`
	StoreName         string    `json:"store_name"`
	TwilioPhoneNumber string    `json:"twilio_phone_number"`
	ApiToken          string    `json:"-"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ApiBaseURL returns the per-tenant store API base for catalog lookups.
func (c *WhatsAppStoreConfig) ApiBaseURL() string {
	return "https://" + c.StoreName + ".devaito.com/api/v1/ai-agent"
}

// StoreBaseURL returns the public storefront URL for this tenant.
func (c *WhatsAppStoreConfig) StoreBaseURL() string {
	return "https://" + c.StoreName + ".devaito.com"
}

// InstagramConfig maps a Unipile account to a tenant store.
type InstagramConfig struct {
	ID                int64     `json:"id"`
	StoreName         string    `json:"store_name"`
	UnipileAccountID  string    `json:"unipile_account_id"`
	InstagramUsername string    `json:"instagram_username"`
	ApiToken          string    `json:"-"`
	AiActive          bool      `json:"ai_active"`
	AiSystemPrompt    string    `json:"ai_system_prompt"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ShouldRespond reports whether the AI agent may reply on this account.
func (c *InstagramConfig) ShouldRespond() bool {
	return c.IsActive && c.AiActive && c.UnipileAccountID != ""
}

// EmailConfig holds a tenant's mailbox connection plus AI settings.
// AppPassword and ApiToken are plaintext in memory, encrypted at rest.
type EmailConfig struct {
	ID             int64      `json:"id"`
	StoreName      string     `json:"store_name"`
	EmailAddress   string     `json:"email_address"`
	Provider       string     `json:"provider"`
	AppPassword    string     `json:"-"`
	ImapHost       string     `json:"imap_host"`
	ImapPort       int        `json:"imap_port"`
	ImapEncryption string     `json:"imap_encryption"`
	SmtpHost       string     `json:"smtp_host"`
	SmtpPort       int        `json:"smtp_port"`
	SmtpEncryption string     `json:"smtp_encryption"`
	AiActive       bool       `json:"ai_active"`
	AiSystemPrompt string     `json:"ai_system_prompt"`
	ManualApproval bool       `json:"manual_approval"`
	ApiToken       string     `json:"-"`
	IsActive       bool       `json:"is_active"`
	LastPolledAt   *time.Time `json:"last_polled_at,omitempty"`
	LastError      *string    `json:"last_error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ShouldRespond reports whether this mailbox participates in polling.
func (c *EmailConfig) ShouldRespond() bool {
	return c.IsActive && c.AiActive
}

// EmailProviderPreset carries well-known host/port settings per provider.
type EmailProviderPreset struct {
	ImapHost       string
	ImapPort       int
	ImapEncryption string
	SmtpHost       string
	SmtpPort       int
	SmtpEncryption string
}

var emailProviderPresets = map[string]EmailProviderPreset{
	"gmail": {
		ImapHost: "imap.gmail.com", ImapPort: 993, ImapEncryption: "ssl",
		SmtpHost: "smtp.gmail.com", SmtpPort: 587, SmtpEncryption: "tls",
	},
	"yahoo": {
		ImapHost: "imap.mail.yahoo.com", ImapPort: 993, ImapEncryption: "ssl",
		SmtpHost: "smtp.mail.yahoo.com", SmtpPort: 587, SmtpEncryption: "tls",
	},
	"outlook": {
		ImapHost: "outlook.office365.com", ImapPort: 993, ImapEncryption: "ssl",
		SmtpHost: "smtp-mail.outlook.com", SmtpPort: 587, SmtpEncryption: "tls",
	},
}

// GetEmailProviderPreset returns preset settings for a known provider, or false.
func GetEmailProviderPreset(provider string) (EmailProviderPreset, bool) {
	p, ok := emailProviderPresets[provider]
	return p, ok
}

// LeadConfig is the per-store lead-scraping configuration handed to the
// workflow engine when it asks for active agents.
type LeadConfig struct {
	ID             int64      `json:"id"`
	StoreName      string     `json:"store_name"`
	Hashtags       []string   `json:"hashtags"`
	Platforms      []string   `json:"platforms"`
	AiSystemPrompt string     `json:"ai_system_prompt"`
	IsActive       bool       `json:"is_active"`
	LastScrapedAt  *time.Time `json:"last_scraped_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
