package repository

import (
	"context"

	"agent-hub/domain/dto"
	"agent-hub/domain/model"
)

// IEngine is the outbound client for the external workflow engine.
type IEngine interface {
	// ForwardWhatsApp synchronously delivers an inbound WhatsApp message.
	ForwardWhatsApp(ctx context.Context, payload *dto.WhatsAppForward) error

	// ForwardInstagram synchronously delivers a queued Instagram message.
	ForwardInstagram(ctx context.Context, payload *dto.InstagramForward) error

	// ForwardEmail delivers one inbox message. A non-2xx response is an
	// error so the caller leaves the mail unseen.
	ForwardEmail(ctx context.Context, payload *dto.EmailForward) error

	// TriggerAgentRun fires the prospecting workflow without waiting for
	// completion. Timeouts are not errors.
	TriggerAgentRun(ctx context.Context, payload *dto.AgentRunPayload) error

	// TriggerVideoGeneration hands a render job to the engine.
	TriggerVideoGeneration(ctx context.Context, payload *dto.VideoGeneratePayload) error
}

// IStoreAPI fetches tenant storefront context from the platform API.
type IStoreAPI interface {
	StoreInfo(ctx context.Context, config *model.WhatsAppStoreConfig) (map[string]interface{}, error)
	Products(ctx context.Context, config *model.WhatsAppStoreConfig, limit int) ([]map[string]interface{}, error)
}

// IUnipile is the outbound client for the messaging aggregator.
type IUnipile interface {
	// CreateHostedAuthLink returns a URL the store owner opens to connect
	// their Instagram account, plus its expiry.
	CreateHostedAuthLink(ctx context.Context, storeName string) (url string, expiresAt string, err error)

	DeleteAccount(ctx context.Context, accountID string) error
}

// ITwilioProvisioner searches and purchases WhatsApp-capable numbers.
type ITwilioProvisioner interface {
	SearchNumbers(ctx context.Context, country string, limit int) ([]model.AvailableNumber, string, error)
	PurchaseNumber(ctx context.Context, phoneNumber string) (*model.PurchasedNumber, error)
}
