package repository

import (
	"context"

	"agent-hub/domain/model"
)

// IAgent stores prospecting agents. Run-state transitions go through the
// Mark helpers so status and timestamps stay consistent.
type IAgent interface {
	Create(ctx context.Context, agent *model.Agent) (*model.Agent, error)
	GetByID(ctx context.Context, storeName string, id int64) (*model.Agent, error)
	GetByIDAny(ctx context.Context, id int64) (*model.Agent, error)
	ListByStore(ctx context.Context, storeName string) ([]model.Agent, error)
	Update(ctx context.Context, agent *model.Agent) error
	Delete(ctx context.Context, storeName string, id int64) error
	ToggleActive(ctx context.Context, storeName string, id int64) (bool, error)

	MarkRunning(ctx context.Context, id int64) error
	MarkCompleted(ctx context.Context, id int64, prospectsFound int) error
	MarkError(ctx context.Context, id int64, message string) error
	MarkStopped(ctx context.Context, id int64) error
	SetProspectCount(ctx context.Context, id int64, count int) error
	IncrementProspectCount(ctx context.Context, id int64) error
}
