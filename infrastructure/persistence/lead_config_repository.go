package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"agent-hub/domain/model"
	"agent-hub/domain/repository"
)

type LeadConfigRepository struct {
	db *sql.DB
}

func NewLeadConfigRepository(db *sql.DB) repository.ILeadConfig {
	return &LeadConfigRepository{db: db}
}

const leadConfigCols = `id, store_name, hashtags, platforms, ai_system_prompt, is_active, last_scraped_at, created_at, updated_at`

func scanLeadConfig(row interface{ Scan(...interface{}) error }) (*model.LeadConfig, error) {
	c := &model.LeadConfig{}
	var hashtags, platforms []byte
	var lastScraped sql.NullTime
	err := row.Scan(&c.ID, &c.StoreName, &hashtags, &platforms, &c.AiSystemPrompt, &c.IsActive, &lastScraped, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastScraped.Valid {
		c.LastScrapedAt = &lastScraped.Time
	}
	_ = json.Unmarshal(hashtags, &c.Hashtags)
	_ = json.Unmarshal(platforms, &c.Platforms)
	return c, nil
}

func (r *LeadConfigRepository) GetByStoreName(ctx context.Context, storeName string) (*model.LeadConfig, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+leadConfigCols+` FROM lead_configs WHERE store_name=$1`, storeName)
	c, err := scanLeadConfig(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *LeadConfigRepository) GetActive(ctx context.Context) ([]model.LeadConfig, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+leadConfigCols+` FROM lead_configs WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.LeadConfig
	for rows.Next() {
		c, err := scanLeadConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *LeadConfigRepository) Upsert(ctx context.Context, config *model.LeadConfig) (*model.LeadConfig, error) {
	hashtags, _ := json.Marshal(emptyIfNil(config.Hashtags))
	platforms := config.Platforms
	if len(platforms) == 0 {
		platforms = []string{"tiktok"}
	}
	platformsJSON, _ := json.Marshal(platforms)
	now := time.Now().UTC()
	q := `INSERT INTO lead_configs (store_name, hashtags, platforms, ai_system_prompt, is_active, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$6)
	      ON CONFLICT (store_name) DO UPDATE SET
	        hashtags = EXCLUDED.hashtags,
	        platforms = EXCLUDED.platforms,
	        ai_system_prompt = EXCLUDED.ai_system_prompt,
	        is_active = EXCLUDED.is_active,
	        updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, q,
		config.StoreName, hashtags, platformsJSON, config.AiSystemPrompt, config.IsActive, now); err != nil {
		return nil, err
	}
	return r.GetByStoreName(ctx, config.StoreName)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
