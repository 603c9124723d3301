package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-hub/domain/model"
)

func TestForwardQueueRepository_Enqueue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewForwardQueueRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO forward_jobs`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), now))

	job, err := repo.Enqueue(context.Background(), &model.ForwardJob{
		StoreName: "acme",
		AccountID: "acct_1",
		ChatID:    "chat_1",
		SenderID:  "sender_1",
		Message:   "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), job.ID)
	assert.Equal(t, model.ForwardJobPending, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForwardQueueRepository_MarkFailedRequeues(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewForwardQueueRepository(db)

	// Below the attempt cap the job goes back to pending with a delay.
	mock.ExpectExec(`UPDATE forward_jobs SET status='pending'`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(context.Background(), 42, 1, "engine unreachable"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForwardQueueRepository_MarkFailedTerminal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewForwardQueueRepository(db)

	mock.ExpectExec(`UPDATE forward_jobs SET status='failed'`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(context.Background(), 42, model.ForwardMaxAttempts, "engine unreachable"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForwardQueueRepository_ClaimDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewForwardQueueRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "store_name", "account_id", "chat_id", "sender_id", "sender_name", "message",
		"event_timestamp", "status", "attempts", "last_error", "next_attempt_at", "processed_at", "created_at",
	}).AddRow(int64(1), "acme", "acct_1", "chat_1", "sender_1", "Customer", "hello",
		now, "processing", 0, nil, now, nil, now)

	mock.ExpectQuery(`UPDATE forward_jobs SET status='processing'`).
		WithArgs(10).
		WillReturnRows(rows)

	jobs, err := repo.ClaimDue(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "acme", jobs[0].StoreName)
	assert.Equal(t, "hello", jobs[0].Message)
	assert.Nil(t, jobs[0].LastError)
}

func TestForwardQueueRepository_ClaimDueReclaimsStaleProcessing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewForwardQueueRepository(db)

	// The claim predicate must sweep up processing rows abandoned by a
	// dead worker, not just due pending rows.
	mock.ExpectQuery(`OR \(status='processing' AND claimed_at < now\(\) - interval '5 minutes'\)`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "store_name", "account_id", "chat_id", "sender_id", "sender_name", "message",
			"event_timestamp", "status", "attempts", "last_error", "next_attempt_at", "processed_at", "created_at",
		}))

	jobs, err := repo.ClaimDue(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
