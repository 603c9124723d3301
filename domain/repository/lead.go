package repository

import (
	"context"

	"agent-hub/domain/dto"
	"agent-hub/domain/model"
)

// LeadFilter narrows pending-lead listings.
type LeadFilter struct {
	StoreName string
	Platform  string
	MinScore  int
	AgentID   *int64
}

// ILead stores scraped prospects.
type ILead interface {
	// Upsert inserts or updates on (store_name, platform, external_id).
	// The returned bool is true when a new row was created.
	Upsert(ctx context.Context, lead *model.Lead) (*model.Lead, bool, error)

	// UpsertBatch writes pre-validated leads in one transaction and
	// returns the number of rows written.
	UpsertBatch(ctx context.Context, storeName string, agentID int64, items []dto.LeadBatchItem) (int, error)

	GetByID(ctx context.Context, storeName string, id int64) (*model.Lead, error)
	Pending(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	SetStatus(ctx context.Context, id int64, status string) error
	Stats(ctx context.Context, storeName string) (*model.LeadStats, error)
	CountByAgent(ctx context.Context, agentID int64) (int, error)
}
