package persistence

import (
	"context"
	"database/sql"
	"time"

	"agent-hub/domain/model"
	"agent-hub/domain/repository"
)

// ConversationLogRepository stores the shared per-turn ledger.
type ConversationLogRepository struct {
	db *sql.DB
}

func NewConversationLogRepository(db *sql.DB) repository.IConversationLog {
	return &ConversationLogRepository{db: db}
}

const turnCols = `id, store_name, channel, conversation_id, customer_ref, sender_name,
	user_message, ai_response, tokens_used, cost_estimate_usd, status, action,
	draft_reply, approval_status, reply_to_email, reply_subject, subject,
	from_email, message_id, created_at`

func scanTurn(row interface{ Scan(...interface{}) error }) (*model.ConversationTurn, error) {
	t := &model.ConversationTurn{}
	var senderName, userMessage, aiResponse, action, draftReply, approvalStatus sql.NullString
	var replyToEmail, replySubject, subject, fromEmail, messageID sql.NullString
	err := row.Scan(&t.ID, &t.StoreName, &t.Channel, &t.ConversationID, &t.CustomerRef, &senderName,
		&userMessage, &aiResponse, &t.TokensUsed, &t.CostEstimateUSD, &t.Status, &action,
		&draftReply, &approvalStatus, &replyToEmail, &replySubject, &subject,
		&fromEmail, &messageID, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.SenderName = nullableString(senderName)
	t.UserMessage = nullableString(userMessage)
	t.AiResponse = nullableString(aiResponse)
	t.Action = nullableString(action)
	t.DraftReply = nullableString(draftReply)
	t.ApprovalStatus = nullableString(approvalStatus)
	t.ReplyToEmail = nullableString(replyToEmail)
	t.ReplySubject = nullableString(replySubject)
	t.Subject = nullableString(subject)
	t.FromEmail = nullableString(fromEmail)
	t.MessageID = nullableString(messageID)
	return t, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func (r *ConversationLogRepository) Create(ctx context.Context, turn *model.ConversationTurn) (*model.ConversationTurn, error) {
	if turn.Status == "" {
		turn.Status = model.TurnStatusSuccess
	}
	q := `INSERT INTO conversation_turns (store_name, channel, conversation_id, customer_ref, sender_name,
	        user_message, ai_response, tokens_used, cost_estimate_usd, status, action,
	        draft_reply, approval_status, reply_to_email, reply_subject, subject, from_email, message_id, created_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	      ON CONFLICT (message_id) WHERE message_id IS NOT NULL DO NOTHING
	      RETURNING id, created_at`
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, q,
		turn.StoreName, turn.Channel, turn.ConversationID, turn.CustomerRef, turn.SenderName,
		turn.UserMessage, turn.AiResponse, turn.TokensUsed, turn.CostEstimateUSD, turn.Status, turn.Action,
		turn.DraftReply, turn.ApprovalStatus, turn.ReplyToEmail, turn.ReplySubject, turn.Subject,
		turn.FromEmail, turn.MessageID, now,
	).Scan(&turn.ID, &turn.CreatedAt)
	if err == sql.ErrNoRows {
		// DO NOTHING returned no row: a concurrent poll won the insert.
		return nil, repository.ErrDuplicateTurn
	}
	if err != nil {
		return nil, err
	}
	return turn, nil
}

func (r *ConversationLogRepository) GetByID(ctx context.Context, id int64) (*model.ConversationTurn, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+turnCols+` FROM conversation_turns WHERE id=$1`, id)
	t, err := scanTurn(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (r *ConversationLogRepository) Update(ctx context.Context, turn *model.ConversationTurn) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE conversation_turns SET ai_response=$1, status=$2, action=$3, approval_status=$4, draft_reply=$5 WHERE id=$6`,
		turn.AiResponse, turn.Status, turn.Action, turn.ApprovalStatus, turn.DraftReply, turn.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ConversationLogRepository) History(ctx context.Context, conversationID string, limit int) ([]model.ConversationTurn, error) {
	q := `SELECT ` + turnCols + ` FROM conversation_turns WHERE conversation_id=$1 ORDER BY created_at ASC`
	args := []interface{}{conversationID}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}
	return r.queryTurns(ctx, q, args...)
}

func (r *ConversationLogRepository) RecentHistory(ctx context.Context, conversationID string, limit int) ([]model.ConversationTurn, error) {
	q := `SELECT ` + turnCols + ` FROM (
	        SELECT ` + turnCols + ` FROM conversation_turns WHERE conversation_id=$1 ORDER BY created_at DESC LIMIT $2
	      ) latest ORDER BY created_at ASC`
	return r.queryTurns(ctx, q, conversationID, limit)
}

func (r *ConversationLogRepository) queryTurns(ctx context.Context, q string, args ...interface{}) ([]model.ConversationTurn, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ConversationTurn
	for rows.Next() {
		t, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *ConversationLogRepository) IsMessageProcessed(ctx context.Context, messageID string) (bool, error) {
	if messageID == "" {
		return false, nil
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM conversation_turns WHERE message_id=$1)`, messageID)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ConversationLogRepository) TotalMessages(ctx context.Context, storeName string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversation_turns WHERE store_name=$1`, storeName).Scan(&n)
	return n, err
}

func (r *ConversationLogRepository) TotalSpend(ctx context.Context, storeName string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(cost_estimate_usd),0) FROM conversation_turns WHERE store_name=$1`, storeName).Scan(&total)
	return total, err
}

func (r *ConversationLogRepository) ActivityByDay(ctx context.Context, storeName string, since time.Time) ([]model.ActivityPoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT to_char(created_at::date, 'YYYY-MM-DD'), COUNT(*)
		 FROM conversation_turns
		 WHERE store_name=$1 AND created_at >= $2
		 GROUP BY created_at::date
		 ORDER BY created_at::date ASC`, storeName, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ActivityPoint
	for rows.Next() {
		var p model.ActivityPoint
		if err := rows.Scan(&p.Date, &p.Count); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ConversationLogRepository) ConversationSummaries(ctx context.Context, storeName string, limit int) ([]model.ConversationSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT g.conversation_id, g.customer_ref, g.message_count, g.last_activity,
		        COALESCE(last.ai_response, last.user_message, ''), last.sender_name, last.subject
		 FROM (
		   SELECT conversation_id, customer_ref, COUNT(*) AS message_count, MAX(created_at) AS last_activity
		   FROM conversation_turns WHERE store_name=$1
		   GROUP BY conversation_id, customer_ref
		 ) g
		 JOIN LATERAL (
		   SELECT ai_response, user_message, sender_name, subject
		   FROM conversation_turns
		   WHERE conversation_id = g.conversation_id
		   ORDER BY created_at DESC LIMIT 1
		 ) last ON TRUE
		 ORDER BY g.last_activity DESC
		 LIMIT $2`, storeName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ConversationSummary
	for rows.Next() {
		var s model.ConversationSummary
		var senderName, subject sql.NullString
		if err := rows.Scan(&s.ConversationID, &s.CustomerRef, &s.MessageCount, &s.LastActivity,
			&s.LastMessage, &senderName, &subject); err != nil {
			return nil, err
		}
		s.SenderName = nullableString(senderName)
		s.Subject = nullableString(subject)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ConversationLogRepository) ChannelStats(ctx context.Context, storeName, channel string) (*model.ChannelStats, error) {
	stats := &model.ChannelStats{}
	err := r.db.QueryRowContext(ctx,
		`SELECT
		   COUNT(*) FILTER (WHERE created_at >= date_trunc('day', now())),
		   COUNT(*) FILTER (WHERE created_at >= now() - interval '7 days'),
		   COUNT(*),
		   COUNT(DISTINCT conversation_id),
		   COALESCE(SUM(cost_estimate_usd),0)
		 FROM conversation_turns
		 WHERE store_name=$1 AND channel=$2`, storeName, channel).
		Scan(&stats.MessagesToday, &stats.MessagesThisWeek, &stats.TotalMessages, &stats.Conversations, &stats.TotalSpendUSD)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
