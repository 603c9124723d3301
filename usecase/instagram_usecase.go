package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agent-hub/domain/dto"
	"agent-hub/domain/model"
	"agent-hub/domain/repository"
	"agent-hub/infrastructure/logger"
)

// ErrMissingAccountID marks an account event that cannot be registered
// because the provider omitted the account id.
var ErrMissingAccountID = errors.New("account event missing account_id")

// Webhook outcomes reported back to the caller.
const (
	WebhookOutcomeAccountConnected = "account_connected"
	WebhookOutcomeQueued           = "queued"
	WebhookOutcomeDuplicate        = "duplicate"
	WebhookOutcomeSelfMessage      = "self_message"
	WebhookOutcomeIgnored          = "ignored"
)

type IInstagramUsecase interface {
	// HandleWebhook classifies and processes one Unipile delivery,
	// returning the outcome taken.
	HandleWebhook(ctx context.Context, payload *dto.UnipilePayload) (string, error)

	// ProcessForwardJobs drains due queue entries, delivering each to the
	// workflow engine. Returns the number of jobs claimed.
	ProcessForwardJobs(ctx context.Context) (int, error)

	Connect(ctx context.Context, storeName string) (url, expiresAt string, err error)
	Status(ctx context.Context, storeName string) (*model.InstagramConfig, error)
	UpdateConfig(ctx context.Context, req *dto.ChannelConfigUpdateRequest) (*model.InstagramConfig, error)
	Disconnect(ctx context.Context, storeName string) error
	Stats(ctx context.Context, storeName string) (*model.ChannelStats, error)
}

type instagramUsecase struct {
	configRepo repository.IInstagramConfig
	queueRepo  repository.IForwardQueue
	convRepo   repository.IConversationLog
	dedup      repository.IDedup
	engine     repository.IEngine
	unipile    repository.IUnipile
	dedupTTL   time.Duration
	staleness  time.Duration
	batchSize  int
}

func NewInstagramUsecase(
	configRepo repository.IInstagramConfig,
	queueRepo repository.IForwardQueue,
	convRepo repository.IConversationLog,
	dedup repository.IDedup,
	engine repository.IEngine,
	unipile repository.IUnipile,
	dedupTTL, staleness time.Duration,
	batchSize int,
) IInstagramUsecase {
	return &instagramUsecase{
		configRepo: configRepo,
		queueRepo:  queueRepo,
		convRepo:   convRepo,
		dedup:      dedup,
		engine:     engine,
		unipile:    unipile,
		dedupTTL:   dedupTTL,
		staleness:  staleness,
		batchSize:  batchSize,
	}
}

func (u *instagramUsecase) HandleWebhook(ctx context.Context, payload *dto.UnipilePayload) (string, error) {
	switch {
	case payload.IsAccountEvent():
		return u.handleAccountConnected(ctx, payload)
	case payload.IsMessageEvent():
		return u.handleMessage(ctx, payload)
	}
	logger.GetLogger().WithField("event", payload.EventType()).Info("Ignoring Unipile event")
	return WebhookOutcomeIgnored, nil
}

// handleAccountConnected registers or refreshes the store mapping when a
// hosted auth flow completes. When the webhook carries no store label the
// account id seeds a placeholder name so the connection is never lost.
func (u *instagramUsecase) handleAccountConnected(ctx context.Context, payload *dto.UnipilePayload) (string, error) {
	accountID := payload.ResolvedAccountID()
	if accountID == "" {
		return WebhookOutcomeIgnored, ErrMissingAccountID
	}

	storeName := payload.ResolvedStoreName()
	if storeName == "" {
		storeName = fallbackStoreName(accountID)
	}

	config := &model.InstagramConfig{
		StoreName:         storeName,
		UnipileAccountID:  accountID,
		InstagramUsername: payload.ResolvedUsername(),
		AiActive:          true,
		IsActive:          true,
	}
	if _, err := u.configRepo.Upsert(ctx, config); err != nil {
		return WebhookOutcomeIgnored, fmt.Errorf("failed to register Instagram account: %w", err)
	}

	logger.GetLogger().WithField("store", storeName).WithField("account_id", accountID).Info("Instagram account connected")
	return WebhookOutcomeAccountConnected, nil
}

// fallbackStoreName seeds a placeholder tenant label from the account id
// when the webhook carries no store name.
func fallbackStoreName(accountID string) string {
	suffix := accountID
	if len(suffix) > 10 {
		suffix = suffix[:10]
	}
	return "store_" + suffix
}

// ensureAccountRegistered creates a tenant mapping the first time an
// unknown account delivers a message, so a connection whose account event
// was lost still gets a store. Existing mappings are left untouched.
func (u *instagramUsecase) ensureAccountRegistered(ctx context.Context, payload *dto.UnipilePayload, accountID string) {
	existing, err := u.configRepo.GetByUnipileAccountID(ctx, accountID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Account lookup failed during registration")
		return
	}
	if existing != nil {
		return
	}

	storeName := payload.ResolvedStoreName()
	if storeName == "" {
		storeName = fallbackStoreName(accountID)
	}
	config := &model.InstagramConfig{
		StoreName:         storeName,
		UnipileAccountID:  accountID,
		InstagramUsername: payload.ResolvedUsername(),
		AiActive:          true,
		IsActive:          true,
	}
	if _, err := u.configRepo.Upsert(ctx, config); err != nil {
		logger.GetLogger().WithField("error", err).WithField("account_id", accountID).Warn("Failed to auto-register Instagram account")
		return
	}
	logger.GetLogger().WithField("store", storeName).WithField("account_id", accountID).Info("Instagram account auto-registered from message")
}

// handleMessage deduplicates an inbound DM and queues it for the
// background processor. The webhook itself never calls the engine, so
// Unipile gets its ack fast.
func (u *instagramUsecase) handleMessage(ctx context.Context, payload *dto.UnipilePayload) (string, error) {
	if payload.SelfSent() {
		return WebhookOutcomeSelfMessage, nil
	}
	accountID := payload.ResolvedAccountID()
	if accountID == "" || payload.Message == "" {
		return WebhookOutcomeIgnored, nil
	}

	u.ensureAccountRegistered(ctx, payload, accountID)

	if messageID := payload.ResolvedMessageID(); messageID != "" {
		fresh, err := u.dedup.MarkIfNew(ctx, "unipile_msg:"+messageID, u.dedupTTL)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Dedup check failed, processing anyway")
		} else if !fresh {
			return WebhookOutcomeDuplicate, nil
		}
	}

	job := &model.ForwardJob{
		StoreName:      payload.ResolvedStoreName(),
		AccountID:      accountID,
		ChatID:         payload.ChatID,
		SenderID:       payload.SenderID(),
		SenderName:     payload.SenderName(),
		Message:        payload.Message,
		EventTimestamp: payload.EventTime(),
	}
	if _, err := u.queueRepo.Enqueue(ctx, job); err != nil {
		return WebhookOutcomeIgnored, fmt.Errorf("failed to queue message: %w", err)
	}
	return WebhookOutcomeQueued, nil
}

func (u *instagramUsecase) ProcessForwardJobs(ctx context.Context) (int, error) {
	jobs, err := u.queueRepo.ClaimDue(ctx, u.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to claim forward jobs: %w", err)
	}

	lg := logger.GetLogger()
	for _, job := range jobs {
		if err := u.deliver(ctx, &job); err != nil {
			lg.WithField("error", err).WithField("job_id", job.ID).Warn("Forward job delivery failed")
		}
	}
	return len(jobs), nil
}

func (u *instagramUsecase) deliver(ctx context.Context, job *model.ForwardJob) error {
	event := model.InboundEvent{
		Channel:   model.ChannelInstagram,
		Timestamp: job.EventTimestamp,
	}
	if event.Stale(u.staleness, time.Now()) {
		return u.queueRepo.MarkSkipped(ctx, job.ID, "message older than staleness window")
	}

	config, err := u.configRepo.GetByUnipileAccountID(ctx, job.AccountID)
	if err != nil {
		return u.queueRepo.MarkFailed(ctx, job.ID, job.Attempts+1, err.Error())
	}
	if config == nil {
		return u.queueRepo.MarkSkipped(ctx, job.ID, "no store mapped to account")
	}
	if !config.ShouldRespond() {
		return u.queueRepo.MarkSkipped(ctx, job.ID, "AI responses disabled for store")
	}

	timestamp := ""
	if !job.EventTimestamp.IsZero() {
		timestamp = job.EventTimestamp.UTC().Format(time.RFC3339)
	}
	payload := &dto.InstagramForward{
		UserID:           config.ID,
		StoreName:        config.StoreName,
		UnipileAccountID: config.UnipileAccountID,
		UnipileChatID:    job.ChatID,
		MessageText:      job.Message,
		MessageTimestamp: timestamp,
		SystemPrompt:     config.AiSystemPrompt,
		SenderName:       job.SenderName,
	}
	if err := u.engine.ForwardInstagram(ctx, payload); err != nil {
		return u.queueRepo.MarkFailed(ctx, job.ID, job.Attempts+1, err.Error())
	}
	return u.queueRepo.MarkDone(ctx, job.ID)
}

func (u *instagramUsecase) Connect(ctx context.Context, storeName string) (string, string, error) {
	return u.unipile.CreateHostedAuthLink(ctx, storeName)
}

func (u *instagramUsecase) Status(ctx context.Context, storeName string) (*model.InstagramConfig, error) {
	return u.configRepo.GetByStoreName(ctx, storeName)
}

func (u *instagramUsecase) UpdateConfig(ctx context.Context, req *dto.ChannelConfigUpdateRequest) (*model.InstagramConfig, error) {
	config, err := u.configRepo.GetByStoreName(ctx, req.StoreName)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, ErrStoreNotConfigured
	}

	if req.AiActive != nil {
		config.AiActive = *req.AiActive
	}
	if req.AiSystemPrompt != nil {
		config.AiSystemPrompt = *req.AiSystemPrompt
	}
	if err := u.configRepo.Update(ctx, config); err != nil {
		return nil, err
	}
	return config, nil
}

// Disconnect removes the Unipile account best effort and always clears
// the local mapping.
func (u *instagramUsecase) Disconnect(ctx context.Context, storeName string) error {
	config, err := u.configRepo.GetByStoreName(ctx, storeName)
	if err != nil {
		return err
	}
	if config == nil {
		return ErrStoreNotConfigured
	}

	if config.UnipileAccountID != "" {
		if err := u.unipile.DeleteAccount(ctx, config.UnipileAccountID); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to delete Unipile account, clearing local mapping anyway")
		}
	}

	config.UnipileAccountID = ""
	config.InstagramUsername = ""
	config.AiActive = false
	config.IsActive = false
	return u.configRepo.Update(ctx, config)
}

func (u *instagramUsecase) Stats(ctx context.Context, storeName string) (*model.ChannelStats, error) {
	return u.convRepo.ChannelStats(ctx, storeName, model.ChannelInstagram)
}
