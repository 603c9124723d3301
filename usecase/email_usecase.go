package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agent-hub/domain/dto"
	"agent-hub/domain/model"
	"agent-hub/domain/repository"
	"agent-hub/infrastructure/logger"
)

// ErrDraftNotApprovable is returned when the targeted turn has no draft
// awaiting approval.
var ErrDraftNotApprovable = errors.New("turn has no draft awaiting approval")

const inboxFetchLimit = 5

// PollResult summarizes one cron poll cycle.
type PollResult struct {
	Inboxes   int `json:"inboxes"`
	Forwarded int `json:"forwarded"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

type IEmailUsecase interface {
	// Connect validates mailbox credentials over IMAP and stores the
	// config. The caller's bearer token is kept as the store API token.
	Connect(ctx context.Context, req *dto.EmailConnectRequest, apiToken string) (*model.EmailConfig, error)

	Status(ctx context.Context, storeName string) (*model.EmailConfig, error)
	UpdateConfig(ctx context.Context, req *dto.ChannelConfigUpdateRequest) (*model.EmailConfig, error)
	Disconnect(ctx context.Context, storeName string) error

	// TestConnection re-checks the stored mailbox credentials over IMAP.
	TestConnection(ctx context.Context, storeName string) error

	// PollInboxes walks every active mailbox, forwarding unseen mail to
	// the workflow engine. Mail is only marked seen after a successful
	// forward so failures retry next cycle.
	PollInboxes(ctx context.Context) (*PollResult, error)

	// ApproveDraft sends a held draft reply through the store's SMTP.
	ApproveDraft(ctx context.Context, storeName string, turnID int64) error
	RejectDraft(ctx context.Context, storeName string, turnID int64) error

	Thread(ctx context.Context, conversationID string) ([]model.ConversationTurn, error)
	Conversations(ctx context.Context, storeName string) ([]model.ConversationSummary, error)
	Stats(ctx context.Context, storeName string) (*model.ChannelStats, error)
}

type emailUsecase struct {
	configRepo repository.IEmailConfig
	convRepo   repository.IConversationLog
	mailbox    repository.IMailbox
	sender     repository.IMailSender
	engine     repository.IEngine
}

func NewEmailUsecase(
	configRepo repository.IEmailConfig,
	convRepo repository.IConversationLog,
	mailbox repository.IMailbox,
	sender repository.IMailSender,
	engine repository.IEngine,
) IEmailUsecase {
	return &emailUsecase{
		configRepo: configRepo,
		convRepo:   convRepo,
		mailbox:    mailbox,
		sender:     sender,
		engine:     engine,
	}
}

func (u *emailUsecase) Connect(ctx context.Context, req *dto.EmailConnectRequest, apiToken string) (*model.EmailConfig, error) {
	config := &model.EmailConfig{
		StoreName:    req.StoreName,
		EmailAddress: req.EmailAddress,
		Provider:     req.Provider,
		AppPassword:  req.AppPassword,
		ApiToken:     apiToken,
		AiActive:     true,
		IsActive:     true,
	}

	if preset, ok := model.GetEmailProviderPreset(req.Provider); ok {
		config.ImapHost = preset.ImapHost
		config.ImapPort = preset.ImapPort
		config.ImapEncryption = preset.ImapEncryption
		config.SmtpHost = preset.SmtpHost
		config.SmtpPort = preset.SmtpPort
		config.SmtpEncryption = preset.SmtpEncryption
	} else {
		if req.IMAPHost == "" || req.SMTPHost == "" {
			return nil, errors.New("custom provider requires imap_host and smtp_host")
		}
		config.ImapHost = req.IMAPHost
		config.ImapPort = req.IMAPPort
		config.SmtpHost = req.SMTPHost
		config.SmtpPort = req.SMTPPort
		if config.ImapPort == 0 {
			config.ImapPort = 993
		}
		if config.SmtpPort == 0 {
			config.SmtpPort = 587
		}
		config.ImapEncryption = "ssl"
		config.SmtpEncryption = "tls"
	}

	if err := u.mailbox.Test(ctx, config); err != nil {
		return nil, fmt.Errorf("mailbox connection test failed: %w", err)
	}
	return u.configRepo.Upsert(ctx, config)
}

func (u *emailUsecase) Status(ctx context.Context, storeName string) (*model.EmailConfig, error) {
	return u.configRepo.GetByStoreName(ctx, storeName)
}

func (u *emailUsecase) TestConnection(ctx context.Context, storeName string) error {
	config, err := u.configRepo.GetByStoreName(ctx, storeName)
	if err != nil {
		return err
	}
	if config == nil {
		return ErrStoreNotConfigured
	}
	if err := u.mailbox.Test(ctx, config); err != nil {
		return fmt.Errorf("mailbox connection test failed: %w", err)
	}
	return nil
}

func (u *emailUsecase) UpdateConfig(ctx context.Context, req *dto.ChannelConfigUpdateRequest) (*model.EmailConfig, error) {
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
	if req.ManualApproval != nil {
		config.ManualApproval = *req.ManualApproval
	}
	if err := u.configRepo.Update(ctx, config); err != nil {
		return nil, err
	}
	return config, nil
}

func (u *emailUsecase) Disconnect(ctx context.Context, storeName string) error {
	return u.configRepo.Delete(ctx, storeName)
}

func (u *emailUsecase) PollInboxes(ctx context.Context) (*PollResult, error) {
	configs, err := u.configRepo.GetActiveConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active mailboxes: %w", err)
	}

	result := &PollResult{Inboxes: len(configs)}
	for i := range configs {
		u.pollOne(ctx, &configs[i], result)
	}
	return result, nil
}

func (u *emailUsecase) pollOne(ctx context.Context, config *model.EmailConfig, result *PollResult) {
	lg := logger.GetLogger().WithField("store", config.StoreName)

	messages, err := u.mailbox.FetchUnseen(ctx, config, inboxFetchLimit)
	if err != nil {
		lg.WithField("error", err).Warn("Inbox poll failed")
		if recordErr := u.configRepo.RecordError(ctx, config.ID, err.Error()); recordErr != nil {
			lg.WithField("error", recordErr).Error("Failed to record poll error")
		}
		result.Errors++
		return
	}

	var seen []uint32
	for _, msg := range messages {
		forwarded, skip := u.processMessage(ctx, config, &msg)
		if forwarded || skip {
			seen = append(seen, msg.UID)
		}
		if forwarded {
			result.Forwarded++
		} else if skip {
			result.Skipped++
		}
	}

	if len(seen) > 0 {
		if err := u.mailbox.MarkSeen(ctx, config, seen); err != nil {
			lg.WithField("error", err).Warn("Failed to mark messages seen")
		}
	}
	if err := u.configRepo.MarkPolled(ctx, config.ID); err != nil {
		lg.WithField("error", err).Error("Failed to record poll time")
	}
}

// processMessage handles one unseen mail. Returns (forwarded, skip):
// skipped messages are still marked seen so they never come back;
// failed forwards return (false, false) and stay unseen for retry.
func (u *emailUsecase) processMessage(ctx context.Context, config *model.EmailConfig, msg *repository.InboxMessage) (bool, bool) {
	lg := logger.GetLogger().WithField("store", config.StoreName)

	// Replies we sent ourselves come back as unseen on some providers.
	if strings.EqualFold(msg.FromEmail, config.EmailAddress) {
		return false, true
	}
	if msg.MessageID != "" {
		processed, err := u.convRepo.IsMessageProcessed(ctx, msg.MessageID)
		if err != nil {
			lg.WithField("error", err).Warn("Processed check failed")
		} else if processed {
			return false, true
		}
	}

	conversationID := model.EmailConversationID(config.StoreName, msg.References, msg.Subject)
	payload := &dto.EmailForward{
		ConfigID:       config.ID,
		ConversationID: conversationID,
		Subject:        msg.Subject,
		Body:           msg.Body,
		FromEmail:      msg.FromEmail,
		FromName:       msg.FromName,
		MessageID:      msg.MessageID,
		References:     msg.References,
		SMTPHost:       config.SmtpHost,
		SMTPPort:       config.SmtpPort,
		SMTPUser:       config.EmailAddress,
		SMTPPassword:   config.AppPassword,
		StoreName:      config.StoreName,
		AISystemPrompt: config.AiSystemPrompt,
	}
	if err := u.engine.ForwardEmail(ctx, payload); err != nil {
		lg.WithField("error", err).Warn("Email forward failed, message stays unseen")
		return false, false
	}

	action := model.ActionRecordedOnly
	turn := &model.ConversationTurn{
		StoreName:      config.StoreName,
		Channel:        model.ChannelEmail,
		ConversationID: conversationID,
		CustomerRef:    msg.FromEmail,
		UserMessage:    &msg.Body,
		Status:         model.TurnStatusSuccess,
		Action:         &action,
		Subject:        &msg.Subject,
		FromEmail:      &msg.FromEmail,
	}
	if msg.MessageID != "" {
		turn.MessageID = &msg.MessageID
	}
	if msg.FromName != "" {
		turn.SenderName = &msg.FromName
	}
	if _, err := u.convRepo.Create(ctx, turn); err != nil {
		if errors.Is(err, repository.ErrDuplicateTurn) {
			lg.WithField("message_id", msg.MessageID).Info("Turn already recorded for this message id")
		} else {
			lg.WithField("error", err).Error("Failed to record inbound email")
		}
	}
	return true, false
}

func (u *emailUsecase) ApproveDraft(ctx context.Context, storeName string, turnID int64) error {
	turn, err := u.convRepo.GetByID(ctx, turnID)
	if err != nil {
		return err
	}
	if turn == nil || turn.StoreName != storeName {
		return ErrDraftNotApprovable
	}
	if turn.ApprovalStatus == nil || *turn.ApprovalStatus != model.ApprovalPending ||
		turn.DraftReply == nil || *turn.DraftReply == "" {
		return ErrDraftNotApprovable
	}

	config, err := u.configRepo.GetByStoreName(ctx, storeName)
	if err != nil {
		return err
	}
	if config == nil {
		return ErrStoreNotConfigured
	}

	recipient := ""
	if turn.ReplyToEmail != nil {
		recipient = *turn.ReplyToEmail
	}
	if recipient == "" && turn.FromEmail != nil {
		recipient = *turn.FromEmail
	}
	if recipient == "" {
		return errors.New("draft has no recipient address")
	}

	subject := "Re: Your inquiry"
	if turn.ReplySubject != nil && *turn.ReplySubject != "" {
		subject = "Re: " + strings.TrimSpace(strings.TrimPrefix(*turn.ReplySubject, "Re:"))
	}

	if err := u.sender.Send(ctx, config, recipient, subject, *turn.DraftReply); err != nil {
		return fmt.Errorf("failed to send approved draft: %w", err)
	}

	approved := model.ApprovalApproved
	turn.ApprovalStatus = &approved
	turn.AiResponse = turn.DraftReply
	return u.convRepo.Update(ctx, turn)
}

func (u *emailUsecase) RejectDraft(ctx context.Context, storeName string, turnID int64) error {
	turn, err := u.convRepo.GetByID(ctx, turnID)
	if err != nil {
		return err
	}
	if turn == nil || turn.StoreName != storeName {
		return ErrDraftNotApprovable
	}
	if turn.ApprovalStatus == nil || *turn.ApprovalStatus != model.ApprovalPending {
		return ErrDraftNotApprovable
	}

	rejected := model.ApprovalRejected
	turn.ApprovalStatus = &rejected
	return u.convRepo.Update(ctx, turn)
}

func (u *emailUsecase) Thread(ctx context.Context, conversationID string) ([]model.ConversationTurn, error) {
	return u.convRepo.History(ctx, conversationID, 0)
}

func (u *emailUsecase) Conversations(ctx context.Context, storeName string) ([]model.ConversationSummary, error) {
	return u.convRepo.ConversationSummaries(ctx, storeName, summaryLimit)
}

func (u *emailUsecase) Stats(ctx context.Context, storeName string) (*model.ChannelStats, error) {
	return u.convRepo.ChannelStats(ctx, storeName, model.ChannelEmail)
}
