package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agent-hub/domain/dto"
	"agent-hub/domain/model"
	"agent-hub/domain/repository"
	"agent-hub/infrastructure/logger"
)

var (
	ErrAgentNotFound       = errors.New("agent not found")
	ErrAgentAlreadyRunning = errors.New("agent is already running")
	ErrAgentNotRunning     = errors.New("agent is not running")
	ErrAgentInactive       = errors.New("agent is deactivated")
)

type IAgentUsecase interface {
	Create(ctx context.Context, req *dto.AgentCreateRequest) (*model.Agent, error)
	List(ctx context.Context, storeName string) ([]model.Agent, error)
	Get(ctx context.Context, storeName string, id int64) (*model.Agent, error)
	Update(ctx context.Context, id int64, req *dto.AgentUpdateRequest) (*model.Agent, error)
	Delete(ctx context.Context, storeName string, id int64) error
	ToggleActive(ctx context.Context, storeName string, id int64) (bool, error)

	// Run starts a prospecting run, refusing while one is in flight.
	Run(ctx context.Context, storeName string, id int64) (*model.Agent, error)
	Stop(ctx context.Context, storeName string, id int64) error

	// Complete applies the engine's end-of-run callback.
	Complete(ctx context.Context, req *dto.AgentCompletionRequest) error
}

type agentUsecase struct {
	agentRepo   repository.IAgent
	engine      repository.IEngine
	callbackURL string
}

func NewAgentUsecase(agentRepo repository.IAgent, engine repository.IEngine, callbackURL string) IAgentUsecase {
	return &agentUsecase{agentRepo: agentRepo, engine: engine, callbackURL: callbackURL}
}

func (u *agentUsecase) Create(ctx context.Context, req *dto.AgentCreateRequest) (*model.Agent, error) {
	configType := req.ConfigType
	if configType == "" {
		configType = "auto"
	}
	agent := &model.Agent{
		StoreName:          req.StoreName,
		Name:               req.Name,
		ProductName:        req.ProductName,
		ProductURL:         req.ProductURL,
		ProductImage:       req.ProductImage,
		Mode:               req.Mode,
		ConfigType:         configType,
		Status:             model.AgentStatusIdle,
		IsActive:           true,
		Platforms:          req.Platforms,
		PlatformSubOptions: req.PlatformSubOptions,
		Hashtags:           req.Hashtags,
		Targeting:          req.Targeting,
	}
	return u.agentRepo.Create(ctx, agent)
}

func (u *agentUsecase) List(ctx context.Context, storeName string) ([]model.Agent, error) {
	return u.agentRepo.ListByStore(ctx, storeName)
}

func (u *agentUsecase) Get(ctx context.Context, storeName string, id int64) (*model.Agent, error) {
	agent, err := u.agentRepo.GetByID(ctx, storeName, id)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, ErrAgentNotFound
	}
	return agent, nil
}

func (u *agentUsecase) Update(ctx context.Context, id int64, req *dto.AgentUpdateRequest) (*model.Agent, error) {
	agent, err := u.Get(ctx, req.StoreName, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		agent.Name = *req.Name
	}
	if req.ProductName != nil {
		agent.ProductName = *req.ProductName
	}
	if req.ProductURL != nil {
		agent.ProductURL = *req.ProductURL
	}
	if req.ProductImage != nil {
		agent.ProductImage = *req.ProductImage
	}
	if req.Mode != nil {
		agent.Mode = *req.Mode
	}
	if req.ConfigType != nil {
		agent.ConfigType = *req.ConfigType
	}
	if len(req.Platforms) > 0 {
		agent.Platforms = req.Platforms
	}
	if len(req.PlatformSubOptions) > 0 {
		agent.PlatformSubOptions = req.PlatformSubOptions
	}
	if len(req.Hashtags) > 0 {
		agent.Hashtags = req.Hashtags
	}
	if len(req.Targeting) > 0 {
		agent.Targeting = req.Targeting
	}

	if err := u.agentRepo.Update(ctx, agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func (u *agentUsecase) Delete(ctx context.Context, storeName string, id int64) error {
	if err := u.agentRepo.Delete(ctx, storeName, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAgentNotFound
		}
		return err
	}
	return nil
}

func (u *agentUsecase) ToggleActive(ctx context.Context, storeName string, id int64) (bool, error) {
	active, err := u.agentRepo.ToggleActive(ctx, storeName, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrAgentNotFound
		}
		return false, err
	}
	return active, nil
}

func (u *agentUsecase) Run(ctx context.Context, storeName string, id int64) (*model.Agent, error) {
	agent, err := u.Get(ctx, storeName, id)
	if err != nil {
		return nil, err
	}
	if !agent.IsActive {
		return nil, ErrAgentInactive
	}
	if agent.IsRunning() {
		return nil, ErrAgentAlreadyRunning
	}

	if err := u.agentRepo.MarkRunning(ctx, agent.ID); err != nil {
		// A concurrent run request can win the slot between the check
		// above and the claim.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAgentAlreadyRunning
		}
		return nil, fmt.Errorf("failed to mark agent running: %w", err)
	}

	payload := &dto.AgentRunPayload{
		AgentID:            agent.ID,
		StoreName:          agent.StoreName,
		ProductName:        agent.ProductName,
		ProductURL:         agent.ProductURL,
		Mode:               agent.Mode,
		Platforms:          agent.Platforms,
		PlatformSubOptions: agent.PlatformSubOptions,
		Hashtags:           agent.Hashtags,
		Targeting:          agent.ResolvedTargeting(),
		CallbackURL:        u.callbackURL,
	}
	if err := u.engine.TriggerAgentRun(ctx, payload); err != nil {
		if markErr := u.agentRepo.MarkError(ctx, agent.ID, err.Error()); markErr != nil {
			logger.GetLogger().WithField("error", markErr).Error("Failed to record agent error state")
		}
		return nil, fmt.Errorf("failed to trigger prospecting run: %w", err)
	}

	agent.Status = model.AgentStatusRunning
	logger.GetLogger().WithField("agent_id", agent.ID).WithField("store", storeName).Info("Prospecting run started")
	return agent, nil
}

func (u *agentUsecase) Stop(ctx context.Context, storeName string, id int64) error {
	if _, err := u.Get(ctx, storeName, id); err != nil {
		return err
	}
	if err := u.agentRepo.MarkStopped(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAgentNotRunning
		}
		return err
	}
	return nil
}

func (u *agentUsecase) Complete(ctx context.Context, req *dto.AgentCompletionRequest) error {
	agent, err := u.agentRepo.GetByIDAny(ctx, req.AgentID)
	if err != nil {
		return err
	}
	if agent == nil {
		return ErrAgentNotFound
	}

	if req.Success != nil && *req.Success {
		return u.agentRepo.MarkCompleted(ctx, agent.ID, req.ProspectsFound)
	}

	message := "prospecting run failed"
	if req.Error != nil && *req.Error != "" {
		message = *req.Error
	}
	return u.agentRepo.MarkError(ctx, agent.ID, message)
}
