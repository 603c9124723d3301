package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"agent-hub/domain/dto"
	"agent-hub/domain/model"
	"agent-hub/domain/repository"
)

// LeadRepository stores scraped prospects with a global uniqueness key on
// (store_name, platform, external_id).
type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) repository.ILead {
	return &LeadRepository{db: db}
}

const leadCols = `id, store_name, agent_id, platform, external_id, username, profile_url,
	context, quality_score, draft_message, status, action_taken_at, created_at, updated_at`

func scanLead(row interface{ Scan(...interface{}) error }) (*model.Lead, error) {
	l := &model.Lead{}
	var agentID sql.NullInt64
	var contextJSON []byte
	var draftMessage sql.NullString
	var actionTakenAt sql.NullTime
	err := row.Scan(&l.ID, &l.StoreName, &agentID, &l.Platform, &l.ExternalID, &l.Username, &l.ProfileURL,
		&contextJSON, &l.QualityScore, &draftMessage, &l.Status, &actionTakenAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if agentID.Valid {
		l.AgentID = &agentID.Int64
	}
	l.Context = contextJSON
	if draftMessage.Valid {
		l.DraftMessage = &draftMessage.String
	}
	if actionTakenAt.Valid {
		l.ActionTakenAt = &actionTakenAt.Time
	}
	return l, nil
}

func (r *LeadRepository) Upsert(ctx context.Context, lead *model.Lead) (*model.Lead, bool, error) {
	now := time.Now().UTC()
	q := `INSERT INTO leads (store_name, agent_id, platform, external_id, username, profile_url,
	        context, quality_score, draft_message, status, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'pending',$10,$10)
	      ON CONFLICT (store_name, platform, external_id) DO UPDATE SET
	        username = EXCLUDED.username,
	        profile_url = EXCLUDED.profile_url,
	        context = EXCLUDED.context,
	        quality_score = EXCLUDED.quality_score,
	        draft_message = COALESCE(EXCLUDED.draft_message, leads.draft_message),
	        agent_id = COALESCE(EXCLUDED.agent_id, leads.agent_id),
	        updated_at = EXCLUDED.updated_at
	      RETURNING ` + leadCols + `, (xmax = 0) AS inserted`
	row := r.db.QueryRowContext(ctx, q,
		lead.StoreName, lead.AgentID, lead.Platform, lead.ExternalID, lead.Username, lead.ProfileURL,
		nilIfEmptyJSON(lead.Context), lead.QualityScore, lead.DraftMessage, now)

	out := &model.Lead{}
	var agentID sql.NullInt64
	var contextJSON []byte
	var draftMessage sql.NullString
	var actionTakenAt sql.NullTime
	var inserted bool
	err := row.Scan(&out.ID, &out.StoreName, &agentID, &out.Platform, &out.ExternalID, &out.Username, &out.ProfileURL,
		&contextJSON, &out.QualityScore, &draftMessage, &out.Status, &actionTakenAt, &out.CreatedAt, &out.UpdatedAt, &inserted)
	if err != nil {
		return nil, false, err
	}
	if agentID.Valid {
		out.AgentID = &agentID.Int64
	}
	out.Context = contextJSON
	if draftMessage.Valid {
		out.DraftMessage = &draftMessage.String
	}
	if actionTakenAt.Valid {
		out.ActionTakenAt = &actionTakenAt.Time
	}
	return out, inserted, nil
}

// UpsertBatch writes the batch in one transaction, retrying up to three
// times on serialization or deadlock failures.
func (r *LeadRepository) UpsertBatch(ctx context.Context, storeName string, agentID int64, items []dto.LeadBatchItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	var written int
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		written, err = r.upsertBatchTx(ctx, storeName, agentID, items)
		if err == nil {
			return written, nil
		}
		if !retryableTxError(err) {
			return 0, err
		}
	}
	return 0, err
}

func (r *LeadRepository) upsertBatchTx(ctx context.Context, storeName string, agentID int64, items []dto.LeadBatchItem) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	q := `INSERT INTO leads (store_name, agent_id, platform, external_id, username, profile_url,
	        context, quality_score, status, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,'pending',$9,$9)
	      ON CONFLICT (store_name, platform, external_id) DO UPDATE SET
	        username = EXCLUDED.username,
	        profile_url = EXCLUDED.profile_url,
	        context = EXCLUDED.context,
	        updated_at = EXCLUDED.updated_at`
	count := 0
	for _, it := range items {
		if _, err = tx.ExecContext(ctx, q,
			storeName, agentID, it.Platform, it.ExternalID, it.Username, it.ProfileURL,
			nilIfEmptyJSON(it.Context), it.QualityScore, now); err != nil {
			return 0, err
		}
		count++
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

func retryableTxError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "deadlock detected") || strings.Contains(msg, "could not serialize")
}

func nilIfEmptyJSON(raw []byte) interface{} {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}

func (r *LeadRepository) GetByID(ctx context.Context, storeName string, id int64) (*model.Lead, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+leadCols+` FROM leads WHERE store_name=$1 AND id=$2`, storeName, id)
	l, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return l, err
}

func (r *LeadRepository) Pending(ctx context.Context, filter repository.LeadFilter) ([]model.Lead, error) {
	q := `SELECT ` + leadCols + ` FROM leads WHERE store_name=$1 AND status='pending' AND quality_score >= $2`
	args := []interface{}{filter.StoreName, filter.MinScore}
	if filter.Platform != "" {
		args = append(args, filter.Platform)
		q += fmt.Sprintf(` AND platform=$%d`, len(args))
	}
	if filter.AgentID != nil {
		args = append(args, *filter.AgentID)
		q += fmt.Sprintf(` AND agent_id=$%d`, len(args))
	}
	q += ` ORDER BY quality_score DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *LeadRepository) SetStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE leads SET status=$1, action_taken_at=$2, updated_at=$2 WHERE id=$3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *LeadRepository) Stats(ctx context.Context, storeName string) (*model.LeadStats, error) {
	stats := &model.LeadStats{}
	err := r.db.QueryRowContext(ctx,
		`SELECT
		   COUNT(*) FILTER (WHERE status='pending'),
		   COUNT(*) FILTER (WHERE status='sent'),
		   COUNT(*) FILTER (WHERE status='rejected'),
		   COUNT(*) FILTER (WHERE status='pending' AND platform='instagram'),
		   COUNT(*) FILTER (WHERE status='pending' AND platform='twitter'),
		   COUNT(*) FILTER (WHERE status='pending' AND platform='tiktok')
		 FROM leads WHERE store_name=$1`, storeName).
		Scan(&stats.TotalPending, &stats.TotalSent, &stats.TotalRejected,
			&stats.InstagramPending, &stats.TwitterPending, &stats.TiktokPending)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *LeadRepository) CountByAgent(ctx context.Context, agentID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads WHERE agent_id=$1`, agentID).Scan(&n)
	return n, err
}
