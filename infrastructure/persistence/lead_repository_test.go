package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-hub/domain/dto"
	"agent-hub/domain/model"
)

func leadRowCols() []string {
	return []string{
		"id", "store_name", "agent_id", "platform", "external_id", "username", "profile_url",
		"context", "quality_score", "draft_message", "status", "action_taken_at", "created_at", "updated_at",
	}
}

func TestLeadRepository_UpsertReportsInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)

	now := time.Now().UTC()
	cols := append(leadRowCols(), "inserted")
	mock.ExpectQuery(`INSERT INTO leads`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(9), "acme", nil, "instagram", "ig_123", "jane", "https://instagram.com/jane",
				nil, 80, nil, "pending", nil, now, now, true))

	lead, created, err := repo.Upsert(context.Background(), &model.Lead{
		StoreName:  "acme",
		Platform:   "instagram",
		ExternalID: "ig_123",
		Username:   "jane",
		ProfileURL: "https://instagram.com/jane",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(9), lead.ID)
	assert.Equal(t, "pending", lead.Status)
}

func TestLeadRepository_UpsertReportsUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)

	now := time.Now().UTC()
	cols := append(leadRowCols(), "inserted")
	mock.ExpectQuery(`INSERT INTO leads`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(9), "acme", int64(3), "instagram", "ig_123", "jane", "https://instagram.com/jane",
				[]byte(`{"bio":"coffee"}`), 85, nil, "pending", nil, now, now, false))

	lead, created, err := repo.Upsert(context.Background(), &model.Lead{
		StoreName:  "acme",
		Platform:   "instagram",
		ExternalID: "ig_123",
		Username:   "jane",
		ProfileURL: "https://instagram.com/jane",
	})
	require.NoError(t, err)
	assert.False(t, created)
	require.NotNil(t, lead.AgentID)
	assert.Equal(t, int64(3), *lead.AgentID)
}

func TestLeadRepository_SetStatusMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)

	mock.ExpectExec(`UPDATE leads SET status=`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.SetStatus(context.Background(), 404, "sent")
	assert.Equal(t, sql.ErrNoRows, err)
}

func TestLeadRepository_UpsertBatchWritesAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO leads`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO leads`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	items := []dto.LeadBatchItem{
		{Platform: "instagram", ExternalID: "a", Username: "ua", ProfileURL: "https://instagram.com/ua"},
		{Platform: "twitter", ExternalID: "b", Username: "ub", ProfileURL: "https://twitter.com/ub"},
	}
	written, err := repo.UpsertBatch(context.Background(), "acme", 3, items)
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.NoError(t, mock.ExpectationsWereMet())
}
