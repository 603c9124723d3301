package repository

import (
	"context"

	"agent-hub/domain/model"
)

// IWhatsAppConfig manages Twilio number to store mappings.
type IWhatsAppConfig interface {
	GetByStoreName(ctx context.Context, storeName string) (*model.WhatsAppStoreConfig, error)
	GetByTwilioNumber(ctx context.Context, phoneNumber string) (*model.WhatsAppStoreConfig, error)
	Upsert(ctx context.Context, config *model.WhatsAppStoreConfig) (*model.WhatsAppStoreConfig, error)
	ActiveNumberInUse(ctx context.Context, phoneNumber, excludeStore string) (bool, error)
	SetAPIToken(ctx context.Context, storeName, apiToken string) error
	Deactivate(ctx context.Context, storeName string) error
}

// IInstagramConfig manages Unipile account to store mappings.
type IInstagramConfig interface {
	GetByStoreName(ctx context.Context, storeName string) (*model.InstagramConfig, error)
	GetByUnipileAccountID(ctx context.Context, accountID string) (*model.InstagramConfig, error)
	Upsert(ctx context.Context, config *model.InstagramConfig) (*model.InstagramConfig, error)
	Update(ctx context.Context, config *model.InstagramConfig) error
}

// IEmailConfig manages tenant mailbox connections.
type IEmailConfig interface {
	GetByStoreName(ctx context.Context, storeName string) (*model.EmailConfig, error)
	GetActiveConfigs(ctx context.Context) ([]model.EmailConfig, error)
	Upsert(ctx context.Context, config *model.EmailConfig) (*model.EmailConfig, error)
	Update(ctx context.Context, config *model.EmailConfig) error
	Delete(ctx context.Context, storeName string) error
	MarkPolled(ctx context.Context, id int64) error
	RecordError(ctx context.Context, id int64, message string) error
}

// ILeadConfig manages per-store scraping preferences.
type ILeadConfig interface {
	GetByStoreName(ctx context.Context, storeName string) (*model.LeadConfig, error)
	GetActive(ctx context.Context) ([]model.LeadConfig, error)
	Upsert(ctx context.Context, config *model.LeadConfig) (*model.LeadConfig, error)
}
