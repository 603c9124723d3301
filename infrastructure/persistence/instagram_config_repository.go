package persistence

import (
	"context"
	"database/sql"
	"time"

	"agent-hub/domain/model"
	"agent-hub/domain/repository"
)

type InstagramConfigRepository struct {
	db     *sql.DB
	cipher *Cipher
}

func NewInstagramConfigRepository(db *sql.DB, cipher *Cipher) repository.IInstagramConfig {
	return &InstagramConfigRepository{db: db, cipher: cipher}
}

const instagramConfigCols = `id, store_name, unipile_account_id, instagram_username, api_token, ai_active, ai_system_prompt, is_active, created_at, updated_at`

func (r *InstagramConfigRepository) scan(row *sql.Row) (*model.InstagramConfig, error) {
	c := &model.InstagramConfig{}
	var accountID, username sql.NullString
	err := row.Scan(&c.ID, &c.StoreName, &accountID, &username, &c.ApiToken, &c.AiActive, &c.AiSystemPrompt, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.UnipileAccountID = accountID.String
	c.InstagramUsername = username.String
	if c.ApiToken, err = r.cipher.Decrypt(c.ApiToken); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *InstagramConfigRepository) GetByStoreName(ctx context.Context, storeName string) (*model.InstagramConfig, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+instagramConfigCols+` FROM instagram_configs WHERE store_name=$1`, storeName)
	return r.scan(row)
}

func (r *InstagramConfigRepository) GetByUnipileAccountID(ctx context.Context, accountID string) (*model.InstagramConfig, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+instagramConfigCols+` FROM instagram_configs WHERE unipile_account_id=$1`, accountID)
	return r.scan(row)
}

func (r *InstagramConfigRepository) Upsert(ctx context.Context, config *model.InstagramConfig) (*model.InstagramConfig, error) {
	token, err := r.cipher.Encrypt(config.ApiToken)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	q := `INSERT INTO instagram_configs (store_name, unipile_account_id, instagram_username, api_token, ai_active, ai_system_prompt, is_active, created_at, updated_at)
	      VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4, $5, $6, $7, $8, $8)
	      ON CONFLICT (store_name) DO UPDATE SET
	        unipile_account_id = COALESCE(NULLIF(EXCLUDED.unipile_account_id,''), instagram_configs.unipile_account_id),
	        instagram_username = COALESCE(NULLIF(EXCLUDED.instagram_username,''), instagram_configs.instagram_username),
	        is_active = EXCLUDED.is_active,
	        updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, q,
		config.StoreName, config.UnipileAccountID, config.InstagramUsername, token,
		config.AiActive, config.AiSystemPrompt, config.IsActive, now); err != nil {
		return nil, err
	}
	return r.GetByStoreName(ctx, config.StoreName)
}

func (r *InstagramConfigRepository) Update(ctx context.Context, config *model.InstagramConfig) error {
	token, err := r.cipher.Encrypt(config.ApiToken)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE instagram_configs SET
		   unipile_account_id=NULLIF($1,''), instagram_username=NULLIF($2,''), api_token=$3,
		   ai_active=$4, ai_system_prompt=$5, is_active=$6, updated_at=$7
		 WHERE id=$8`,
		config.UnipileAccountID, config.InstagramUsername, token,
		config.AiActive, config.AiSystemPrompt, config.IsActive, time.Now().UTC(), config.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
