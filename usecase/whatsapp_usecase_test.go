package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"agent-hub/domain/dto"
	"agent-hub/domain/model"
	"agent-hub/usecase"
)

func TestWhatsAppUsecase_HandleInboundForwards(t *testing.T) {
	configRepo := new(MockWhatsAppConfigRepo)
	engine := new(MockEngine)
	uc := usecase.NewWhatsAppUsecase(configRepo, new(MockConversationRepo), engine, new(MockStoreAPI), new(MockDedup), time.Minute)

	config := &model.WhatsAppStoreConfig{ID: 1, StoreName: "acme", TwilioPhoneNumber: "+14155550100", IsActive: true}
	configRepo.On("GetByTwilioNumber", mock.Anything, "+14155550100").Return(config, nil)
	engine.On("ForwardWhatsApp", mock.Anything, mock.MatchedBy(func(p *dto.WhatsAppForward) bool {
		return p.StoreName == "acme" && p.Phone == "+33612345678" && p.Message == "hi"
	})).Return(nil)

	uc.HandleInbound(context.Background(), &dto.TwilioInboundForm{
		From: "whatsapp:+33612345678",
		To:   "whatsapp:+14155550100",
		Body: "hi",
	})
	engine.AssertExpectations(t)
}

func TestWhatsAppUsecase_HandleInboundDropsDuplicateDelivery(t *testing.T) {
	configRepo := new(MockWhatsAppConfigRepo)
	engine := new(MockEngine)
	dedup := new(MockDedup)
	uc := usecase.NewWhatsAppUsecase(configRepo, new(MockConversationRepo), engine, new(MockStoreAPI), dedup, time.Minute)

	config := &model.WhatsAppStoreConfig{StoreName: "acme", TwilioPhoneNumber: "+14155550100", IsActive: true}
	configRepo.On("GetByTwilioNumber", mock.Anything, "+14155550100").Return(config, nil)
	dedup.On("MarkIfNew", mock.Anything, "twilio_msg:SM1", time.Minute).Return(true, nil).Once()
	dedup.On("MarkIfNew", mock.Anything, "twilio_msg:SM1", time.Minute).Return(false, nil).Once()
	engine.On("ForwardWhatsApp", mock.Anything, mock.Anything).Return(nil)

	form := &dto.TwilioInboundForm{
		From:       "whatsapp:+33612345678",
		To:         "whatsapp:+14155550100",
		Body:       "hi",
		MessageSid: "SM1",
	}
	uc.HandleInbound(context.Background(), form)
	uc.HandleInbound(context.Background(), form)

	engine.AssertNumberOfCalls(t, "ForwardWhatsApp", 1)
	dedup.AssertExpectations(t)
}

func TestWhatsAppUsecase_HandleInboundForwardsWhenDedupDown(t *testing.T) {
	configRepo := new(MockWhatsAppConfigRepo)
	engine := new(MockEngine)
	dedup := new(MockDedup)
	uc := usecase.NewWhatsAppUsecase(configRepo, new(MockConversationRepo), engine, new(MockStoreAPI), dedup, time.Minute)

	config := &model.WhatsAppStoreConfig{StoreName: "acme", TwilioPhoneNumber: "+14155550100", IsActive: true}
	configRepo.On("GetByTwilioNumber", mock.Anything, "+14155550100").Return(config, nil)
	dedup.On("MarkIfNew", mock.Anything, "twilio_msg:SM2", time.Minute).Return(false, errors.New("redis down"))
	engine.On("ForwardWhatsApp", mock.Anything, mock.Anything).Return(nil)

	uc.HandleInbound(context.Background(), &dto.TwilioInboundForm{
		From:       "whatsapp:+33612345678",
		To:         "whatsapp:+14155550100",
		Body:       "hi",
		MessageSid: "SM2",
	})
	engine.AssertNumberOfCalls(t, "ForwardWhatsApp", 1)
}

func TestWhatsAppUsecase_HandleInboundUnmappedNumber(t *testing.T) {
	configRepo := new(MockWhatsAppConfigRepo)
	engine := new(MockEngine)
	uc := usecase.NewWhatsAppUsecase(configRepo, new(MockConversationRepo), engine, new(MockStoreAPI), new(MockDedup), time.Minute)

	configRepo.On("GetByTwilioNumber", mock.Anything, "+19999999999").Return(nil, nil)

	uc.HandleInbound(context.Background(), &dto.TwilioInboundForm{
		From: "whatsapp:+33612345678",
		To:   "whatsapp:+19999999999",
		Body: "hi",
	})
	engine.AssertNotCalled(t, "ForwardWhatsApp", mock.Anything, mock.Anything)
}

func TestWhatsAppUsecase_HandleInboundSwallowsEngineError(t *testing.T) {
	configRepo := new(MockWhatsAppConfigRepo)
	engine := new(MockEngine)
	uc := usecase.NewWhatsAppUsecase(configRepo, new(MockConversationRepo), engine, new(MockStoreAPI), new(MockDedup), time.Minute)

	config := &model.WhatsAppStoreConfig{StoreName: "acme", IsActive: true}
	configRepo.On("GetByTwilioNumber", mock.Anything, mock.Anything).Return(config, nil)
	engine.On("ForwardWhatsApp", mock.Anything, mock.Anything).Return(errors.New("engine down"))

	// Must not panic or propagate: Twilio always gets its 200.
	uc.HandleInbound(context.Background(), &dto.TwilioInboundForm{
		From: "whatsapp:+33612345678",
		To:   "whatsapp:+14155550100",
		Body: "hi",
	})
}

func TestWhatsAppUsecase_LogTurnComputesCost(t *testing.T) {
	convRepo := new(MockConversationRepo)
	uc := usecase.NewWhatsAppUsecase(new(MockWhatsAppConfigRepo), convRepo, new(MockEngine), new(MockStoreAPI), new(MockDedup), time.Minute)

	convRepo.On("Create", mock.Anything, mock.MatchedBy(func(turn *model.ConversationTurn) bool {
		return turn.StoreName == "acme" &&
			turn.CustomerRef == "+33612345678" &&
			turn.Channel == model.ChannelWhatsApp &&
			turn.TokensUsed == 1250 &&
			turn.CostEstimateUSD == model.CalculateCost(1250)
	})).Return(&model.ConversationTurn{ID: 1}, nil)

	msg := "hi"
	_, err := uc.LogTurn(context.Background(), &dto.AgentLogRequest{
		ConversationID: "acme_+33612345678",
		UserMessage:    &msg,
		CostTokens:     1250,
	})
	require.NoError(t, err)
	convRepo.AssertExpectations(t)
}

func TestWhatsAppUsecase_LogTurnDraftNeedsApproval(t *testing.T) {
	convRepo := new(MockConversationRepo)
	uc := usecase.NewWhatsAppUsecase(new(MockWhatsAppConfigRepo), convRepo, new(MockEngine), new(MockStoreAPI), new(MockDedup), time.Minute)

	convRepo.On("Create", mock.Anything, mock.MatchedBy(func(turn *model.ConversationTurn) bool {
		return turn.ApprovalStatus != nil && *turn.ApprovalStatus == model.ApprovalPending
	})).Return(&model.ConversationTurn{ID: 1}, nil)

	draft := "Draft reply"
	_, err := uc.LogTurn(context.Background(), &dto.AgentLogRequest{
		ConversationID: "acme_customer@x.com",
		Channel:        model.ChannelEmail,
		Action:         model.ActionDraftGenerated,
		DraftReply:     &draft,
	})
	require.NoError(t, err)
	convRepo.AssertExpectations(t)
}

func TestWhatsAppUsecase_LogTurnRejectsMalformedConversationID(t *testing.T) {
	uc := usecase.NewWhatsAppUsecase(new(MockWhatsAppConfigRepo), new(MockConversationRepo), new(MockEngine), new(MockStoreAPI), new(MockDedup), time.Minute)

	_, err := uc.LogTurn(context.Background(), &dto.AgentLogRequest{ConversationID: "no-separator"})
	assert.Error(t, err)
}

func TestWhatsAppUsecase_BuildContextShapesHistory(t *testing.T) {
	configRepo := new(MockWhatsAppConfigRepo)
	convRepo := new(MockConversationRepo)
	storeAPI := new(MockStoreAPI)
	uc := usecase.NewWhatsAppUsecase(configRepo, convRepo, new(MockEngine), storeAPI, new(MockDedup), time.Minute)

	q1, a1 := "do you ship to France?", "Yes, within 5 days."
	turns := []model.ConversationTurn{{UserMessage: &q1, AiResponse: &a1}}
	convRepo.On("RecentHistory", mock.Anything, "acme_+33612345678", 5).Return(turns, nil)
	config := &model.WhatsAppStoreConfig{StoreName: "acme", ApiToken: "tok", IsActive: true}
	configRepo.On("GetByStoreName", mock.Anything, "acme").Return(config, nil)
	storeAPI.On("StoreInfo", mock.Anything, config).Return(map[string]interface{}{"description": "Espresso gear"}, nil)
	storeAPI.On("Products", mock.Anything, config, 20).Return([]map[string]interface{}{
		{"name": "Espresso kit", "price": 49.90},
	}, nil)

	resp, err := uc.BuildContext(context.Background(), &dto.AgentContextRequest{StoreName: "acme", Phone: "+33612345678"})
	require.NoError(t, err)
	assert.Equal(t, "acme_+33612345678", resp.ConversationID)
	assert.Equal(t, 1, resp.ProductsCount)
	assert.Equal(t, 1, resp.MessageCount)

	var history []dto.HistoryTurn
	require.NoError(t, json.Unmarshal([]byte(resp.HistoryFormatted), &history))
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, q1, history[0].Parts[0].Text)

	var prompt string
	require.NoError(t, json.Unmarshal([]byte(resp.SystemPrompt), &prompt))
	assert.Contains(t, prompt, "Espresso gear")
	assert.Contains(t, prompt, "Espresso kit")
}

func TestWhatsAppUsecase_StatsFillsActivityChart(t *testing.T) {
	configRepo := new(MockWhatsAppConfigRepo)
	convRepo := new(MockConversationRepo)
	uc := usecase.NewWhatsAppUsecase(configRepo, convRepo, new(MockEngine), new(MockStoreAPI), new(MockDedup), time.Minute)

	today := time.Now().Format("2006-01-02")
	convRepo.On("TotalMessages", mock.Anything, "acme").Return(12, nil)
	convRepo.On("TotalSpend", mock.Anything, "acme").Return(0.123456789, nil)
	convRepo.On("ActivityByDay", mock.Anything, "acme", mock.Anything).Return([]model.ActivityPoint{{Date: today, Count: 3}}, nil)
	convRepo.On("ConversationSummaries", mock.Anything, "acme", 20).Return([]model.ConversationSummary{}, nil)

	stats, err := uc.Stats(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalMessages)
	assert.Equal(t, 0.12346, stats.TotalSpendUSD)
	require.Len(t, stats.ActivityChart, 7)
	assert.Equal(t, today, stats.ActivityChart[6].Date)
	assert.Equal(t, 3, stats.ActivityChart[6].Count)
	assert.Zero(t, stats.ActivityChart[0].Count)
}

func TestWhatsAppUsecase_TestNeedsActiveConfig(t *testing.T) {
	configRepo := new(MockWhatsAppConfigRepo)
	uc := usecase.NewWhatsAppUsecase(configRepo, new(MockConversationRepo), new(MockEngine), new(MockStoreAPI), new(MockDedup), time.Minute)

	configRepo.On("GetByStoreName", mock.Anything, "acme").Return(nil, nil)

	err := uc.Test(context.Background(), &dto.AgentTestRequest{StoreName: "acme", Phone: "+336", Message: "ping"})
	assert.ErrorIs(t, err, usecase.ErrStoreNotConfigured)
}
