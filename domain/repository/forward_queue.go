package repository

import (
	"context"

	"agent-hub/domain/model"
)

// IForwardQueue is the durable queue feeding the background Instagram
// forward processor.
type IForwardQueue interface {
	Enqueue(ctx context.Context, job *model.ForwardJob) (*model.ForwardJob, error)

	// ClaimDue atomically moves up to limit due pending jobs to
	// processing and returns them.
	ClaimDue(ctx context.Context, limit int) ([]model.ForwardJob, error)

	MarkDone(ctx context.Context, id int64) error

	// MarkFailed records the error and either reschedules the job or,
	// past the attempt cap, parks it as failed.
	MarkFailed(ctx context.Context, id int64, attempt int, message string) error

	// MarkSkipped finishes a job without delivery (stale, config gone).
	MarkSkipped(ctx context.Context, id int64, reason string) error
}
