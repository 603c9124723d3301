package persistence

import (
	"context"
	"database/sql"
	"time"

	"agent-hub/domain/model"
	"agent-hub/domain/repository"
)

type AgentRepository struct {
	db *sql.DB
}

func NewAgentRepository(db *sql.DB) repository.IAgent {
	return &AgentRepository{db: db}
}

const agentCols = `id, store_name, name, product_name, product_url, product_image, mode, config_type,
	status, is_active, platforms, platform_sub_options, hashtags, targeting,
	prospect_count, search_rate, last_run, last_error, created_at, updated_at`

func scanAgent(row interface{ Scan(...interface{}) error }) (*model.Agent, error) {
	a := &model.Agent{}
	var productURL, productImage, lastError sql.NullString
	var targeting []byte
	var lastRun sql.NullTime
	err := row.Scan(&a.ID, &a.StoreName, &a.Name, &a.ProductName, &productURL, &productImage, &a.Mode, &a.ConfigType,
		&a.Status, &a.IsActive, &a.Platforms, &a.PlatformSubOptions, &a.Hashtags, &targeting,
		&a.ProspectCount, &a.SearchRate, &lastRun, &lastError, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.ProductURL = productURL.String
	a.ProductImage = productImage.String
	a.Targeting = targeting
	if lastRun.Valid {
		a.LastRun = &lastRun.Time
	}
	if lastError.Valid {
		a.LastError = &lastError.String
	}
	return a, nil
}

func (r *AgentRepository) Create(ctx context.Context, agent *model.Agent) (*model.Agent, error) {
	if agent.Status == "" {
		agent.Status = model.AgentStatusIdle
	}
	if agent.ConfigType == "" {
		agent.ConfigType = "auto"
	}
	now := time.Now().UTC()
	q := `INSERT INTO agents (store_name, name, product_name, product_url, product_image, mode, config_type,
	        status, is_active, platforms, platform_sub_options, hashtags, targeting, created_at, updated_at)
	      VALUES ($1,$2,$3,NULLIF($4,''),NULLIF($5,''),$6,$7,$8,$9,
	              COALESCE($10,'[]'::jsonb), COALESCE($11,'{}'::jsonb), COALESCE($12,'[]'::jsonb), $13, $14, $14)
	      RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, q,
		agent.StoreName, agent.Name, agent.ProductName, agent.ProductURL, agent.ProductImage,
		agent.Mode, agent.ConfigType, agent.Status, agent.IsActive,
		nilIfEmptyJSON(agent.Platforms), nilIfEmptyJSON(agent.PlatformSubOptions),
		nilIfEmptyJSON(agent.Hashtags), nilIfEmptyJSON(agent.ResolvedTargeting()), now,
	).Scan(&agent.ID, &agent.CreatedAt, &agent.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return agent, nil
}

func (r *AgentRepository) GetByID(ctx context.Context, storeName string, id int64) (*model.Agent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+agentCols+` FROM agents WHERE store_name=$1 AND id=$2`, storeName, id)
	a, err := scanAgent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *AgentRepository) GetByIDAny(ctx context.Context, id int64) (*model.Agent, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+agentCols+` FROM agents WHERE id=$1`, id)
	a, err := scanAgent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *AgentRepository) ListByStore(ctx context.Context, storeName string) ([]model.Agent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+agentCols+` FROM agents WHERE store_name=$1 ORDER BY updated_at DESC`, storeName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *AgentRepository) Update(ctx context.Context, agent *model.Agent) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE agents SET name=$1, product_name=$2, product_url=NULLIF($3,''), product_image=NULLIF($4,''),
		   mode=$5, config_type=$6,
		   platforms=COALESCE($7, platforms), platform_sub_options=COALESCE($8, platform_sub_options),
		   hashtags=COALESCE($9, hashtags), targeting=COALESCE($10, targeting), updated_at=$11
		 WHERE store_name=$12 AND id=$13`,
		agent.Name, agent.ProductName, agent.ProductURL, agent.ProductImage,
		agent.Mode, agent.ConfigType,
		nilIfEmptyJSON(agent.Platforms), nilIfEmptyJSON(agent.PlatformSubOptions),
		nilIfEmptyJSON(agent.Hashtags), nilIfEmptyJSON(agent.Targeting),
		time.Now().UTC(), agent.StoreName, agent.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *AgentRepository) Delete(ctx context.Context, storeName string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM agents WHERE store_name=$1 AND id=$2`, storeName, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *AgentRepository) ToggleActive(ctx context.Context, storeName string, id int64) (bool, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE agents SET is_active = NOT is_active, updated_at=$1 WHERE store_name=$2 AND id=$3 RETURNING is_active`,
		time.Now().UTC(), storeName, id)
	var active bool
	if err := row.Scan(&active); err != nil {
		return false, err
	}
	return active, nil
}

// MarkRunning claims the run slot. The status guard makes concurrent run
// requests race on the row instead of in application code; the loser sees
// zero rows.
func (r *AgentRepository) MarkRunning(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE agents SET status=$1, last_error=NULL, updated_at=$2 WHERE id=$3 AND status<>$1`,
		model.AgentStatusRunning, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *AgentRepository) MarkCompleted(ctx context.Context, id int64, prospectsFound int) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE agents SET status=$1, last_run=$2, prospect_count=prospect_count+$3, updated_at=$2 WHERE id=$4`,
		model.AgentStatusCompleted, now, prospectsFound, id)
	return err
}

func (r *AgentRepository) MarkError(ctx context.Context, id int64, message string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE agents SET status=$1, last_error=$2, updated_at=$3 WHERE id=$4`,
		model.AgentStatusError, message, time.Now().UTC(), id)
	return err
}

func (r *AgentRepository) MarkStopped(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE agents SET status=$1, last_run=$2, updated_at=$2 WHERE id=$3 AND status=$4`,
		model.AgentStatusCompleted, now, id, model.AgentStatusRunning)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *AgentRepository) SetProspectCount(ctx context.Context, id int64, count int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE agents SET prospect_count=$1, updated_at=$2 WHERE id=$3`, count, time.Now().UTC(), id)
	return err
}

func (r *AgentRepository) IncrementProspectCount(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE agents SET prospect_count=prospect_count+1, updated_at=$1 WHERE id=$2`, time.Now().UTC(), id)
	return err
}
