package usecase_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"agent-hub/domain/dto"
	"agent-hub/domain/model"
	"agent-hub/usecase"
)

func TestAgentUsecase_RunStartsIdleAgent(t *testing.T) {
	agentRepo := new(MockAgentRepo)
	engine := new(MockEngine)
	uc := usecase.NewAgentUsecase(agentRepo, engine, "https://hub.example/api/leads/ingest")

	agent := &model.Agent{ID: 1, StoreName: "acme", Status: model.AgentStatusIdle, IsActive: true}
	agentRepo.On("GetByID", mock.Anything, "acme", int64(1)).Return(agent, nil)
	agentRepo.On("MarkRunning", mock.Anything, int64(1)).Return(nil)
	engine.On("TriggerAgentRun", mock.Anything, mock.MatchedBy(func(p *dto.AgentRunPayload) bool {
		return p.AgentID == 1 && p.CallbackURL == "https://hub.example/api/leads/ingest"
	})).Return(nil)

	out, err := uc.Run(context.Background(), "acme", 1)
	require.NoError(t, err)
	assert.Equal(t, model.AgentStatusRunning, out.Status)
	agentRepo.AssertExpectations(t)
	engine.AssertExpectations(t)
}

func TestAgentUsecase_RunRefusesWhileRunning(t *testing.T) {
	agentRepo := new(MockAgentRepo)
	engine := new(MockEngine)
	uc := usecase.NewAgentUsecase(agentRepo, engine, "")

	agent := &model.Agent{ID: 1, StoreName: "acme", Status: model.AgentStatusRunning, IsActive: true}
	agentRepo.On("GetByID", mock.Anything, "acme", int64(1)).Return(agent, nil)

	_, err := uc.Run(context.Background(), "acme", 1)
	assert.ErrorIs(t, err, usecase.ErrAgentAlreadyRunning)
	engine.AssertNotCalled(t, "TriggerAgentRun", mock.Anything, mock.Anything)
}

func TestAgentUsecase_RunLosesClaimRace(t *testing.T) {
	agentRepo := new(MockAgentRepo)
	engine := new(MockEngine)
	uc := usecase.NewAgentUsecase(agentRepo, engine, "")

	agent := &model.Agent{ID: 1, StoreName: "acme", Status: model.AgentStatusIdle, IsActive: true}
	agentRepo.On("GetByID", mock.Anything, "acme", int64(1)).Return(agent, nil)
	agentRepo.On("MarkRunning", mock.Anything, int64(1)).Return(sql.ErrNoRows)

	_, err := uc.Run(context.Background(), "acme", 1)
	assert.ErrorIs(t, err, usecase.ErrAgentAlreadyRunning)
	engine.AssertNotCalled(t, "TriggerAgentRun", mock.Anything, mock.Anything)
}

func TestAgentUsecase_RunRefusesInactiveAgent(t *testing.T) {
	agentRepo := new(MockAgentRepo)
	engine := new(MockEngine)
	uc := usecase.NewAgentUsecase(agentRepo, engine, "")

	agent := &model.Agent{ID: 1, StoreName: "acme", Status: model.AgentStatusIdle, IsActive: false}
	agentRepo.On("GetByID", mock.Anything, "acme", int64(1)).Return(agent, nil)

	_, err := uc.Run(context.Background(), "acme", 1)
	assert.ErrorIs(t, err, usecase.ErrAgentInactive)
}

func TestAgentUsecase_RunRecordsTriggerFailure(t *testing.T) {
	agentRepo := new(MockAgentRepo)
	engine := new(MockEngine)
	uc := usecase.NewAgentUsecase(agentRepo, engine, "")

	agent := &model.Agent{ID: 1, StoreName: "acme", Status: model.AgentStatusIdle, IsActive: true}
	agentRepo.On("GetByID", mock.Anything, "acme", int64(1)).Return(agent, nil)
	agentRepo.On("MarkRunning", mock.Anything, int64(1)).Return(nil)
	engine.On("TriggerAgentRun", mock.Anything, mock.Anything).Return(errors.New("engine unreachable"))
	agentRepo.On("MarkError", mock.Anything, int64(1), "engine unreachable").Return(nil)

	_, err := uc.Run(context.Background(), "acme", 1)
	assert.Error(t, err)
	agentRepo.AssertExpectations(t)
}

func TestAgentUsecase_RunUnknownAgent(t *testing.T) {
	agentRepo := new(MockAgentRepo)
	engine := new(MockEngine)
	uc := usecase.NewAgentUsecase(agentRepo, engine, "")

	agentRepo.On("GetByID", mock.Anything, "acme", int64(99)).Return(nil, nil)

	_, err := uc.Run(context.Background(), "acme", 99)
	assert.ErrorIs(t, err, usecase.ErrAgentNotFound)
}

func TestAgentUsecase_CompleteSuccess(t *testing.T) {
	agentRepo := new(MockAgentRepo)
	uc := usecase.NewAgentUsecase(agentRepo, new(MockEngine), "")

	agent := &model.Agent{ID: 1, StoreName: "acme", Status: model.AgentStatusRunning}
	agentRepo.On("GetByIDAny", mock.Anything, int64(1)).Return(agent, nil)
	agentRepo.On("MarkCompleted", mock.Anything, int64(1), 42).Return(nil)

	ok := true
	err := uc.Complete(context.Background(), &dto.AgentCompletionRequest{AgentID: 1, Success: &ok, ProspectsFound: 42})
	require.NoError(t, err)
	agentRepo.AssertExpectations(t)
}

func TestAgentUsecase_CompleteFailureDefaultsMessage(t *testing.T) {
	agentRepo := new(MockAgentRepo)
	uc := usecase.NewAgentUsecase(agentRepo, new(MockEngine), "")

	agent := &model.Agent{ID: 1, StoreName: "acme", Status: model.AgentStatusRunning}
	agentRepo.On("GetByIDAny", mock.Anything, int64(1)).Return(agent, nil)
	agentRepo.On("MarkError", mock.Anything, int64(1), "prospecting run failed").Return(nil)

	notOk := false
	err := uc.Complete(context.Background(), &dto.AgentCompletionRequest{AgentID: 1, Success: &notOk})
	require.NoError(t, err)
	agentRepo.AssertExpectations(t)
}

func TestAgentUsecase_CreateDefaults(t *testing.T) {
	agentRepo := new(MockAgentRepo)
	uc := usecase.NewAgentUsecase(agentRepo, new(MockEngine), "")

	agentRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *model.Agent) bool {
		return a.ConfigType == "auto" && a.Status == model.AgentStatusIdle && a.IsActive
	})).Return(&model.Agent{ID: 5}, nil)

	out, err := uc.Create(context.Background(), &dto.AgentCreateRequest{
		StoreName:   "acme",
		Name:        "Coffee finder",
		ProductName: "Espresso kit",
		Mode:        model.AgentModeB2C,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.ID)
	agentRepo.AssertExpectations(t)
}
