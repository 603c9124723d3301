package repository

import (
	"context"

	"agent-hub/domain/model"
)

// IVideoJob stores video render jobs keyed by their public job id.
type IVideoJob interface {
	Create(ctx context.Context, job *model.VideoJob) (*model.VideoJob, error)
	GetByJobID(ctx context.Context, jobID string) (*model.VideoJob, error)
	Update(ctx context.Context, job *model.VideoJob) error
	History(ctx context.Context, storeID string, limit int) ([]model.VideoJob, error)
	Delete(ctx context.Context, jobID string) error
}
