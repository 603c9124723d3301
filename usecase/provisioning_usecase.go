package usecase

import (
	"context"
	"errors"
	"fmt"

	"agent-hub/domain/dto"
	"agent-hub/domain/model"
	"agent-hub/domain/repository"
	"agent-hub/infrastructure/logger"
)

var (
	ErrStoreHasNumber = errors.New("store already has an active number")
	ErrNumberInUse    = errors.New("number is already assigned to another store")
)

type IProvisioningUsecase interface {
	Countries() []model.Country
	Search(ctx context.Context, country string, limit int) ([]model.AvailableNumber, string, error)

	// Buy purchases a number and binds it to the store. One active number
	// per store, one store per number.
	Buy(ctx context.Context, req *dto.ProvisionBuyRequest) (*model.WhatsAppStoreConfig, error)

	// Configure stores or rotates the store's platform API token.
	Configure(ctx context.Context, req *dto.ProvisionConfigRequest) error

	Status(ctx context.Context, storeName string) (*model.WhatsAppStoreConfig, error)
	Deactivate(ctx context.Context, storeName string) error
}

type provisioningUsecase struct {
	configRepo repository.IWhatsAppConfig
	twilio     repository.ITwilioProvisioner
	env        string
}

func NewProvisioningUsecase(configRepo repository.IWhatsAppConfig, twilio repository.ITwilioProvisioner, env string) IProvisioningUsecase {
	return &provisioningUsecase{configRepo: configRepo, twilio: twilio, env: env}
}

func (u *provisioningUsecase) Countries() []model.Country {
	return model.ProvisioningCountries
}

func (u *provisioningUsecase) Search(ctx context.Context, country string, limit int) ([]model.AvailableNumber, string, error) {
	return u.twilio.SearchNumbers(ctx, country, limit)
}

func (u *provisioningUsecase) Buy(ctx context.Context, req *dto.ProvisionBuyRequest) (*model.WhatsAppStoreConfig, error) {
	existing, err := u.configRepo.GetByStoreName(ctx, req.StoreName)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsActive && existing.TwilioPhoneNumber != "" {
		return nil, ErrStoreHasNumber
	}

	// Outside production every store shares the Twilio sandbox number, so
	// the cross-store uniqueness rule only holds for real numbers.
	if u.env == "production" {
		inUse, err := u.configRepo.ActiveNumberInUse(ctx, req.PhoneNumber, req.StoreName)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, ErrNumberInUse
		}
	}

	purchased, err := u.twilio.PurchaseNumber(ctx, req.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to purchase number: %w", err)
	}

	config := &model.WhatsAppStoreConfig{
		StoreName:         req.StoreName,
		TwilioPhoneNumber: purchased.PhoneNumber,
		ApiToken:          req.APIToken,
		IsActive:          true,
	}
	saved, err := u.configRepo.Upsert(ctx, config)
	if err != nil {
		// The number is bought but unmapped; surface loudly so it can be
		// attached by hand instead of silently leaking spend.
		logger.GetLogger().WithField("phone_number", purchased.PhoneNumber).WithField("error", err).
			Error("Number purchased but store mapping failed")
		return nil, fmt.Errorf("number purchased but store mapping failed: %w", err)
	}
	return saved, nil
}

func (u *provisioningUsecase) Configure(ctx context.Context, req *dto.ProvisionConfigRequest) error {
	return u.configRepo.SetAPIToken(ctx, req.StoreName, req.APIToken)
}

func (u *provisioningUsecase) Status(ctx context.Context, storeName string) (*model.WhatsAppStoreConfig, error) {
	return u.configRepo.GetByStoreName(ctx, storeName)
}

func (u *provisioningUsecase) Deactivate(ctx context.Context, storeName string) error {
	return u.configRepo.Deactivate(ctx, storeName)
}
