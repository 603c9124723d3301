package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"agent-hub/domain/dto"
	"agent-hub/domain/model"
	"agent-hub/domain/repository"
	"agent-hub/infrastructure/logger"
)

var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrInvalidPlatform = errors.New("unsupported lead platform")
)

// LeadWithLink is a lead enriched with its outreach deep link for the
// dashboard.
type LeadWithLink struct {
	model.Lead
	DeepLink string `json:"deep_link"`
}

// BatchResult reports how a lead batch was absorbed.
type BatchResult struct {
	Stored  int `json:"stored"`
	Skipped int `json:"skipped"`
}

type ILeadUsecase interface {
	// Ingest stores one scraped lead, updating the owning agent's counters.
	Ingest(ctx context.Context, req *dto.LeadIngestRequest) (*model.Lead, bool, error)

	// IngestBatch stores a run's worth of leads, silently skipping
	// malformed items.
	IngestBatch(ctx context.Context, req *dto.LeadBatchRequest) (*BatchResult, error)

	Pending(ctx context.Context, filter repository.LeadFilter) ([]LeadWithLink, error)
	MarkSent(ctx context.Context, storeName string, id int64) error
	Reject(ctx context.Context, storeName string, id int64) error
	Stats(ctx context.Context, storeName string) (*model.LeadStats, error)

	// ActiveConfigs lists stores with scraping enabled, polled by the
	// engine's scheduler.
	ActiveConfigs(ctx context.Context) ([]model.LeadConfig, error)
	ConfigStatus(ctx context.Context, storeName string) (*model.LeadConfig, error)
	SaveConfig(ctx context.Context, req *dto.LeadConfigSaveRequest) (*model.LeadConfig, error)
}

type leadUsecase struct {
	leadRepo       repository.ILead
	leadConfigRepo repository.ILeadConfig
	agentRepo      repository.IAgent
}

func NewLeadUsecase(leadRepo repository.ILead, leadConfigRepo repository.ILeadConfig, agentRepo repository.IAgent) ILeadUsecase {
	return &leadUsecase{leadRepo: leadRepo, leadConfigRepo: leadConfigRepo, agentRepo: agentRepo}
}

func (u *leadUsecase) Ingest(ctx context.Context, req *dto.LeadIngestRequest) (*model.Lead, bool, error) {
	if _, ok := model.ValidLeadPlatforms[req.Platform]; !ok {
		return nil, false, ErrInvalidPlatform
	}

	lead := &model.Lead{
		StoreName:    req.StoreName,
		AgentID:      req.AgentID,
		Platform:     req.Platform,
		ExternalID:   req.ExternalID,
		Username:     req.Username,
		ProfileURL:   req.ProfileURL,
		Context:      req.Context,
		QualityScore: req.QualityScore,
		DraftMessage: req.DraftMessage,
		Status:       model.LeadStatusPending,
	}
	stored, created, err := u.leadRepo.Upsert(ctx, lead)
	if err != nil {
		return nil, false, fmt.Errorf("failed to store lead: %w", err)
	}

	if created && req.AgentID != nil {
		u.creditAgent(ctx, *req.AgentID)
	}
	return stored, created, nil
}

// creditAgent bumps the prospect counter and settles a still-running
// agent, since lead arrival proves the workflow made progress.
func (u *leadUsecase) creditAgent(ctx context.Context, agentID int64) {
	lg := logger.GetLogger().WithField("agent_id", agentID)
	if err := u.agentRepo.IncrementProspectCount(ctx, agentID); err != nil {
		lg.WithField("error", err).Warn("Failed to increment prospect count")
		return
	}
	u.settleAgent(ctx, agentID)
}

// settleAgent flips a still-running agent to completed. Lead ingest is the
// indirect end-of-run signal when the engine never calls back.
func (u *leadUsecase) settleAgent(ctx context.Context, agentID int64) {
	agent, err := u.agentRepo.GetByIDAny(ctx, agentID)
	if err != nil || agent == nil {
		return
	}
	if agent.IsRunning() {
		if err := u.agentRepo.MarkCompleted(ctx, agentID, 0); err != nil {
			logger.GetLogger().WithField("error", err).WithField("agent_id", agentID).Warn("Failed to settle running agent")
		}
	}
}

func (u *leadUsecase) IngestBatch(ctx context.Context, req *dto.LeadBatchRequest) (*BatchResult, error) {
	valid := make([]dto.LeadBatchItem, 0, len(req.Leads))
	skipped := 0
	for _, item := range req.Leads {
		if _, ok := model.ValidLeadPlatforms[item.Platform]; !ok {
			skipped++
			continue
		}
		if item.ExternalID == "" || item.Username == "" || item.ProfileURL == "" {
			skipped++
			continue
		}
		valid = append(valid, item)
	}

	stored := 0
	if len(valid) > 0 {
		n, err := u.leadRepo.UpsertBatch(ctx, req.StoreName, req.AgentID, valid)
		if err != nil {
			return nil, fmt.Errorf("failed to store lead batch: %w", err)
		}
		stored = n
	}

	// Recount from the table so upserted duplicates don't inflate the
	// agent's prospect total.
	count, err := u.leadRepo.CountByAgent(ctx, req.AgentID)
	if err == nil {
		if err := u.agentRepo.SetProspectCount(ctx, req.AgentID, count); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to sync prospect count")
		}
	}
	u.settleAgent(ctx, req.AgentID)

	return &BatchResult{Stored: stored, Skipped: skipped}, nil
}

func (u *leadUsecase) Pending(ctx context.Context, filter repository.LeadFilter) ([]LeadWithLink, error) {
	leads, err := u.leadRepo.Pending(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]LeadWithLink, 0, len(leads))
	for _, lead := range leads {
		out = append(out, LeadWithLink{Lead: lead, DeepLink: lead.DeepLink()})
	}
	return out, nil
}

func (u *leadUsecase) MarkSent(ctx context.Context, storeName string, id int64) error {
	return u.setStatus(ctx, storeName, id, model.LeadStatusSent)
}

func (u *leadUsecase) Reject(ctx context.Context, storeName string, id int64) error {
	return u.setStatus(ctx, storeName, id, model.LeadStatusRejected)
}

func (u *leadUsecase) setStatus(ctx context.Context, storeName string, id int64, status string) error {
	lead, err := u.leadRepo.GetByID(ctx, storeName, id)
	if err != nil {
		return err
	}
	if lead == nil {
		return ErrLeadNotFound
	}
	return u.leadRepo.SetStatus(ctx, lead.ID, status)
}

func (u *leadUsecase) Stats(ctx context.Context, storeName string) (*model.LeadStats, error) {
	return u.leadRepo.Stats(ctx, storeName)
}

func (u *leadUsecase) ActiveConfigs(ctx context.Context) ([]model.LeadConfig, error) {
	return u.leadConfigRepo.GetActive(ctx)
}

func (u *leadUsecase) ConfigStatus(ctx context.Context, storeName string) (*model.LeadConfig, error) {
	return u.leadConfigRepo.GetByStoreName(ctx, storeName)
}

func (u *leadUsecase) SaveConfig(ctx context.Context, req *dto.LeadConfigSaveRequest) (*model.LeadConfig, error) {
	config := &model.LeadConfig{
		StoreName: req.StoreName,
		IsActive:  true,
	}
	if len(req.Hashtags) > 0 {
		if err := json.Unmarshal(req.Hashtags, &config.Hashtags); err != nil {
			return nil, errors.New("hashtags must be a JSON array of strings")
		}
	}
	if len(req.Platforms) > 0 {
		if err := json.Unmarshal(req.Platforms, &config.Platforms); err != nil {
			return nil, errors.New("platforms must be a JSON array of strings")
		}
	}
	if req.IsActive != nil {
		config.IsActive = *req.IsActive
	}
	if req.AiSystemPrompt != nil {
		config.AiSystemPrompt = *req.AiSystemPrompt
	}
	return u.leadConfigRepo.Upsert(ctx, config)
}
