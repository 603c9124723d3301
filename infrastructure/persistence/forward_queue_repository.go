package persistence

import (
	"context"
	"database/sql"
	"time"

	"agent-hub/domain/model"
	"agent-hub/domain/repository"
)

// Retry delay between forward attempts.
const forwardRetryDelay = 30 * time.Second

// A job claimed longer than this without settling belongs to a worker
// that died; it goes back on the market.
const forwardClaimTimeout = "5 minutes"

// ForwardQueueRepository is the Postgres-backed delivery queue for
// inbound Instagram messages.
type ForwardQueueRepository struct {
	db *sql.DB
}

func NewForwardQueueRepository(db *sql.DB) repository.IForwardQueue {
	return &ForwardQueueRepository{db: db}
}

const forwardJobCols = `id, store_name, account_id, chat_id, sender_id, sender_name, message,
	event_timestamp, status, attempts, last_error, next_attempt_at, processed_at, created_at`

func (r *ForwardQueueRepository) Enqueue(ctx context.Context, job *model.ForwardJob) (*model.ForwardJob, error) {
	now := time.Now().UTC()
	q := `INSERT INTO forward_jobs (store_name, account_id, chat_id, sender_id, sender_name, message,
	        event_timestamp, status, attempts, next_attempt_at, created_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,'pending',0,$8,$8)
	      RETURNING id, created_at`
	var eventTS interface{}
	if !job.EventTimestamp.IsZero() {
		eventTS = job.EventTimestamp.UTC()
	}
	err := r.db.QueryRowContext(ctx, q,
		job.StoreName, job.AccountID, job.ChatID, job.SenderID, job.SenderName, job.Message,
		eventTS, now,
	).Scan(&job.ID, &job.CreatedAt)
	if err != nil {
		return nil, err
	}
	job.Status = model.ForwardJobPending
	job.NextAttemptAt = now
	return job, nil
}

// ClaimDue uses FOR UPDATE SKIP LOCKED so concurrent processors never
// double-deliver a job. Jobs stranded in processing by a dead worker are
// reclaimed after the claim timeout.
func (r *ForwardQueueRepository) ClaimDue(ctx context.Context, limit int) ([]model.ForwardJob, error) {
	q := `UPDATE forward_jobs SET status='processing', claimed_at=now()
	      WHERE id IN (
	        SELECT id FROM forward_jobs
	        WHERE (status='pending' AND next_attempt_at <= now())
	           OR (status='processing' AND claimed_at < now() - interval '` + forwardClaimTimeout + `')
	        ORDER BY created_at ASC
	        LIMIT $1
	        FOR UPDATE SKIP LOCKED
	      )
	      RETURNING ` + forwardJobCols
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []model.ForwardJob
	for rows.Next() {
		j := model.ForwardJob{}
		var eventTS, processedAt sql.NullTime
		var lastErr sql.NullString
		if err := rows.Scan(&j.ID, &j.StoreName, &j.AccountID, &j.ChatID, &j.SenderID, &j.SenderName, &j.Message,
			&eventTS, &j.Status, &j.Attempts, &lastErr, &j.NextAttemptAt, &processedAt, &j.CreatedAt); err != nil {
			return nil, err
		}
		if eventTS.Valid {
			j.EventTimestamp = eventTS.Time
		}
		if lastErr.Valid {
			j.LastError = &lastErr.String
		}
		if processedAt.Valid {
			j.ProcessedAt = &processedAt.Time
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *ForwardQueueRepository) MarkDone(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE forward_jobs SET status='done', processed_at=$1 WHERE id=$2`,
		time.Now().UTC(), id)
	return err
}

func (r *ForwardQueueRepository) MarkFailed(ctx context.Context, id int64, attempt int, message string) error {
	now := time.Now().UTC()
	if attempt >= model.ForwardMaxAttempts {
		_, err := r.db.ExecContext(ctx,
			`UPDATE forward_jobs SET status='failed', attempts=$1, last_error=$2, processed_at=$3 WHERE id=$4`,
			attempt, message, now, id)
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE forward_jobs SET status='pending', attempts=$1, last_error=$2, next_attempt_at=$3 WHERE id=$4`,
		attempt, message, now.Add(forwardRetryDelay), id)
	return err
}

func (r *ForwardQueueRepository) MarkSkipped(ctx context.Context, id int64, reason string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE forward_jobs SET status='done', last_error=$1, processed_at=$2 WHERE id=$3`,
		reason, time.Now().UTC(), id)
	return err
}
