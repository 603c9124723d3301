package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"agent-hub/domain/dto"
	"agent-hub/domain/model"
	"agent-hub/domain/repository"
	"agent-hub/usecase"
)

func strPtr(s string) *string { return &s }

func emailConfigFixture() *model.EmailConfig {
	return &model.EmailConfig{
		ID:           1,
		StoreName:    "acme",
		EmailAddress: "shop@acme.com",
		Provider:     "gmail",
		AiActive:     true,
		IsActive:     true,
	}
}

func TestEmailUsecase_ConnectAppliesGmailPreset(t *testing.T) {
	configRepo := new(MockEmailConfigRepo)
	mbox := new(MockMailbox)
	uc := usecase.NewEmailUsecase(configRepo, new(MockConversationRepo), mbox, new(MockMailSender), new(MockEngine))

	mbox.On("Test", mock.Anything, mock.MatchedBy(func(c *model.EmailConfig) bool {
		return c.ImapHost == "imap.gmail.com" && c.ImapPort == 993 && c.SmtpPort == 587
	})).Return(nil)
	configRepo.On("Upsert", mock.Anything, mock.Anything).Return(emailConfigFixture(), nil)

	config, err := uc.Connect(context.Background(), &dto.EmailConnectRequest{
		StoreName:    "acme",
		EmailAddress: "shop@acme.com",
		Provider:     "gmail",
		AppPassword:  "app-pass",
	}, "token")
	require.NoError(t, err)
	assert.Equal(t, "acme", config.StoreName)
	mbox.AssertExpectations(t)
}

func TestEmailUsecase_ConnectRejectsBadCredentials(t *testing.T) {
	configRepo := new(MockEmailConfigRepo)
	mbox := new(MockMailbox)
	uc := usecase.NewEmailUsecase(configRepo, new(MockConversationRepo), mbox, new(MockMailSender), new(MockEngine))

	mbox.On("Test", mock.Anything, mock.Anything).Return(errors.New("login failed"))

	_, err := uc.Connect(context.Background(), &dto.EmailConnectRequest{
		StoreName:    "acme",
		EmailAddress: "shop@acme.com",
		Provider:     "gmail",
		AppPassword:  "wrong",
	}, "token")
	assert.Error(t, err)
	configRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestEmailUsecase_TestConnectionUsesStoredConfig(t *testing.T) {
	configRepo := new(MockEmailConfigRepo)
	mbox := new(MockMailbox)
	uc := usecase.NewEmailUsecase(configRepo, new(MockConversationRepo), mbox, new(MockMailSender), new(MockEngine))

	config := emailConfigFixture()
	configRepo.On("GetByStoreName", mock.Anything, "acme").Return(config, nil)
	mbox.On("Test", mock.Anything, config).Return(nil)

	assert.NoError(t, uc.TestConnection(context.Background(), "acme"))
	mbox.AssertExpectations(t)
}

func TestEmailUsecase_TestConnectionUnconfiguredStore(t *testing.T) {
	configRepo := new(MockEmailConfigRepo)
	uc := usecase.NewEmailUsecase(configRepo, new(MockConversationRepo), new(MockMailbox), new(MockMailSender), new(MockEngine))

	configRepo.On("GetByStoreName", mock.Anything, "ghost").Return(nil, nil)

	err := uc.TestConnection(context.Background(), "ghost")
	assert.ErrorIs(t, err, usecase.ErrStoreNotConfigured)
}

func TestEmailUsecase_ConnectCustomProviderNeedsHosts(t *testing.T) {
	uc := usecase.NewEmailUsecase(new(MockEmailConfigRepo), new(MockConversationRepo), new(MockMailbox), new(MockMailSender), new(MockEngine))

	_, err := uc.Connect(context.Background(), &dto.EmailConnectRequest{
		StoreName:    "acme",
		EmailAddress: "shop@acme.com",
		Provider:     "custom",
		AppPassword:  "pass",
	}, "token")
	assert.Error(t, err)
}

func TestEmailUsecase_PollSkipsOwnAndProcessedMail(t *testing.T) {
	configRepo := new(MockEmailConfigRepo)
	convRepo := new(MockConversationRepo)
	mbox := new(MockMailbox)
	engine := new(MockEngine)
	uc := usecase.NewEmailUsecase(configRepo, convRepo, mbox, new(MockMailSender), engine)

	config := emailConfigFixture()
	configRepo.On("GetActiveConfigs", mock.Anything).Return([]model.EmailConfig{*config}, nil)

	messages := []repository.InboxMessage{
		{UID: 1, MessageID: "<own@acme.com>", FromEmail: "SHOP@acme.com", Subject: "note to self", Body: "x"},
		{UID: 2, MessageID: "<seen@x.com>", FromEmail: "a@x.com", Subject: "hi", Body: "x"},
		{UID: 3, MessageID: "<new@x.com>", FromEmail: "b@x.com", Subject: "order", Body: "where is it"},
	}
	mbox.On("FetchUnseen", mock.Anything, mock.Anything, 5).Return(messages, nil)
	convRepo.On("IsMessageProcessed", mock.Anything, "<seen@x.com>").Return(true, nil)
	convRepo.On("IsMessageProcessed", mock.Anything, "<new@x.com>").Return(false, nil)
	engine.On("ForwardEmail", mock.Anything, mock.MatchedBy(func(p *dto.EmailForward) bool {
		return p.FromEmail == "b@x.com" && p.StoreName == "acme"
	})).Return(nil)
	convRepo.On("Create", mock.Anything, mock.Anything).Return(&model.ConversationTurn{ID: 1}, nil)
	// All three UIDs get marked seen: two skips plus one forward.
	mbox.On("MarkSeen", mock.Anything, mock.Anything, []uint32{1, 2, 3}).Return(nil)
	configRepo.On("MarkPolled", mock.Anything, int64(1)).Return(nil)

	result, err := uc.PollInboxes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inboxes)
	assert.Equal(t, 1, result.Forwarded)
	assert.Equal(t, 2, result.Skipped)
	mbox.AssertExpectations(t)
}

func TestEmailUsecase_PollTreatsDuplicateTurnAsForwarded(t *testing.T) {
	configRepo := new(MockEmailConfigRepo)
	convRepo := new(MockConversationRepo)
	mbox := new(MockMailbox)
	engine := new(MockEngine)
	uc := usecase.NewEmailUsecase(configRepo, convRepo, mbox, new(MockMailSender), engine)

	config := emailConfigFixture()
	configRepo.On("GetActiveConfigs", mock.Anything).Return([]model.EmailConfig{*config}, nil)
	mbox.On("FetchUnseen", mock.Anything, mock.Anything, 5).Return([]repository.InboxMessage{
		{UID: 4, MessageID: "<dup@x.com>", FromEmail: "a@x.com", Subject: "hi", Body: "x"},
	}, nil)
	convRepo.On("IsMessageProcessed", mock.Anything, "<dup@x.com>").Return(false, nil)
	engine.On("ForwardEmail", mock.Anything, mock.Anything).Return(nil)
	// A concurrent poll already inserted the turn for this message id.
	convRepo.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrDuplicateTurn)
	mbox.On("MarkSeen", mock.Anything, mock.Anything, []uint32{4}).Return(nil)
	configRepo.On("MarkPolled", mock.Anything, int64(1)).Return(nil)

	result, err := uc.PollInboxes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Forwarded)
	assert.Zero(t, result.Errors)
	mbox.AssertExpectations(t)
}

func TestEmailUsecase_PollLeavesFailedForwardUnseen(t *testing.T) {
	configRepo := new(MockEmailConfigRepo)
	convRepo := new(MockConversationRepo)
	mbox := new(MockMailbox)
	engine := new(MockEngine)
	uc := usecase.NewEmailUsecase(configRepo, convRepo, mbox, new(MockMailSender), engine)

	config := emailConfigFixture()
	configRepo.On("GetActiveConfigs", mock.Anything).Return([]model.EmailConfig{*config}, nil)
	mbox.On("FetchUnseen", mock.Anything, mock.Anything, 5).Return([]repository.InboxMessage{
		{UID: 9, MessageID: "<m@x.com>", FromEmail: "a@x.com", Subject: "hi", Body: "x"},
	}, nil)
	convRepo.On("IsMessageProcessed", mock.Anything, "<m@x.com>").Return(false, nil)
	engine.On("ForwardEmail", mock.Anything, mock.Anything).Return(errors.New("engine down"))
	configRepo.On("MarkPolled", mock.Anything, int64(1)).Return(nil)

	result, err := uc.PollInboxes(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Forwarded)
	mbox.AssertNotCalled(t, "MarkSeen", mock.Anything, mock.Anything, mock.Anything)
}

func TestEmailUsecase_PollRecordsFetchError(t *testing.T) {
	configRepo := new(MockEmailConfigRepo)
	mbox := new(MockMailbox)
	uc := usecase.NewEmailUsecase(configRepo, new(MockConversationRepo), mbox, new(MockMailSender), new(MockEngine))

	config := emailConfigFixture()
	configRepo.On("GetActiveConfigs", mock.Anything).Return([]model.EmailConfig{*config}, nil)
	mbox.On("FetchUnseen", mock.Anything, mock.Anything, 5).Return(nil, errors.New("imap timeout"))
	configRepo.On("RecordError", mock.Anything, int64(1), "imap timeout").Return(nil)

	result, err := uc.PollInboxes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Errors)
	configRepo.AssertExpectations(t)
}

func TestEmailUsecase_ApproveDraftSendsReply(t *testing.T) {
	configRepo := new(MockEmailConfigRepo)
	convRepo := new(MockConversationRepo)
	sender := new(MockMailSender)
	uc := usecase.NewEmailUsecase(configRepo, convRepo, new(MockMailbox), sender, new(MockEngine))

	pending := model.ApprovalPending
	turn := &model.ConversationTurn{
		ID:             7,
		StoreName:      "acme",
		ApprovalStatus: &pending,
		DraftReply:     strPtr("Thanks, shipping today."),
		FromEmail:      strPtr("a@x.com"),
		ReplySubject:   strPtr("Re: Where is my order"),
	}
	convRepo.On("GetByID", mock.Anything, int64(7)).Return(turn, nil)
	configRepo.On("GetByStoreName", mock.Anything, "acme").Return(emailConfigFixture(), nil)
	sender.On("Send", mock.Anything, mock.Anything, "a@x.com", "Re: Where is my order", "Thanks, shipping today.").Return(nil)
	convRepo.On("Update", mock.Anything, mock.MatchedBy(func(tn *model.ConversationTurn) bool {
		return tn.ApprovalStatus != nil && *tn.ApprovalStatus == model.ApprovalApproved &&
			tn.AiResponse != nil && *tn.AiResponse == "Thanks, shipping today."
	})).Return(nil)

	require.NoError(t, uc.ApproveDraft(context.Background(), "acme", 7))
	sender.AssertExpectations(t)
	convRepo.AssertExpectations(t)
}

func TestEmailUsecase_ApproveDraftDefaultSubject(t *testing.T) {
	configRepo := new(MockEmailConfigRepo)
	convRepo := new(MockConversationRepo)
	sender := new(MockMailSender)
	uc := usecase.NewEmailUsecase(configRepo, convRepo, new(MockMailbox), sender, new(MockEngine))

	pending := model.ApprovalPending
	turn := &model.ConversationTurn{
		ID:             7,
		StoreName:      "acme",
		ApprovalStatus: &pending,
		DraftReply:     strPtr("Hello!"),
		FromEmail:      strPtr("a@x.com"),
	}
	convRepo.On("GetByID", mock.Anything, int64(7)).Return(turn, nil)
	configRepo.On("GetByStoreName", mock.Anything, "acme").Return(emailConfigFixture(), nil)
	sender.On("Send", mock.Anything, mock.Anything, "a@x.com", "Re: Your inquiry", "Hello!").Return(nil)
	convRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, uc.ApproveDraft(context.Background(), "acme", 7))
	sender.AssertExpectations(t)
}

func TestEmailUsecase_ApproveDraftRefusesWrongState(t *testing.T) {
	convRepo := new(MockConversationRepo)
	uc := usecase.NewEmailUsecase(new(MockEmailConfigRepo), convRepo, new(MockMailbox), new(MockMailSender), new(MockEngine))

	approved := model.ApprovalApproved
	turn := &model.ConversationTurn{ID: 7, StoreName: "acme", ApprovalStatus: &approved, DraftReply: strPtr("x")}
	convRepo.On("GetByID", mock.Anything, int64(7)).Return(turn, nil)

	assert.ErrorIs(t, uc.ApproveDraft(context.Background(), "acme", 7), usecase.ErrDraftNotApprovable)
}

func TestEmailUsecase_ApproveDraftRefusesOtherStore(t *testing.T) {
	convRepo := new(MockConversationRepo)
	uc := usecase.NewEmailUsecase(new(MockEmailConfigRepo), convRepo, new(MockMailbox), new(MockMailSender), new(MockEngine))

	pending := model.ApprovalPending
	turn := &model.ConversationTurn{ID: 7, StoreName: "other", ApprovalStatus: &pending, DraftReply: strPtr("x")}
	convRepo.On("GetByID", mock.Anything, int64(7)).Return(turn, nil)

	assert.ErrorIs(t, uc.ApproveDraft(context.Background(), "acme", 7), usecase.ErrDraftNotApprovable)
}

func TestEmailUsecase_RejectDraft(t *testing.T) {
	convRepo := new(MockConversationRepo)
	uc := usecase.NewEmailUsecase(new(MockEmailConfigRepo), convRepo, new(MockMailbox), new(MockMailSender), new(MockEngine))

	pending := model.ApprovalPending
	turn := &model.ConversationTurn{ID: 7, StoreName: "acme", ApprovalStatus: &pending, DraftReply: strPtr("x")}
	convRepo.On("GetByID", mock.Anything, int64(7)).Return(turn, nil)
	convRepo.On("Update", mock.Anything, mock.MatchedBy(func(tn *model.ConversationTurn) bool {
		return tn.ApprovalStatus != nil && *tn.ApprovalStatus == model.ApprovalRejected
	})).Return(nil)

	require.NoError(t, uc.RejectDraft(context.Background(), "acme", 7))
	convRepo.AssertExpectations(t)
}
