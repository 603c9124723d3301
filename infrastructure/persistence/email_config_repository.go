package persistence

import (
	"context"
	"database/sql"
	"time"

	"agent-hub/domain/model"
	"agent-hub/domain/repository"
)

// EmailConfigRepository stores mailbox connections. App passwords and API
// tokens are encrypted at rest and decrypted on read.
type EmailConfigRepository struct {
	db     *sql.DB
	cipher *Cipher
}

func NewEmailConfigRepository(db *sql.DB, cipher *Cipher) repository.IEmailConfig {
	return &EmailConfigRepository{db: db, cipher: cipher}
}

const emailConfigCols = `id, store_name, email_address, provider, app_password,
	imap_host, imap_port, imap_encryption, smtp_host, smtp_port, smtp_encryption,
	ai_active, ai_system_prompt, manual_approval, api_token, is_active,
	last_polled_at, last_error, created_at, updated_at`

type emailRowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *EmailConfigRepository) scan(row emailRowScanner) (*model.EmailConfig, error) {
	c := &model.EmailConfig{}
	var lastPolled sql.NullTime
	var lastError sql.NullString
	err := row.Scan(&c.ID, &c.StoreName, &c.EmailAddress, &c.Provider, &c.AppPassword,
		&c.ImapHost, &c.ImapPort, &c.ImapEncryption, &c.SmtpHost, &c.SmtpPort, &c.SmtpEncryption,
		&c.AiActive, &c.AiSystemPrompt, &c.ManualApproval, &c.ApiToken, &c.IsActive,
		&lastPolled, &lastError, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastPolled.Valid {
		c.LastPolledAt = &lastPolled.Time
	}
	if lastError.Valid {
		c.LastError = &lastError.String
	}
	if c.AppPassword, err = r.cipher.Decrypt(c.AppPassword); err != nil {
		return nil, err
	}
	if c.ApiToken, err = r.cipher.Decrypt(c.ApiToken); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *EmailConfigRepository) GetByStoreName(ctx context.Context, storeName string) (*model.EmailConfig, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+emailConfigCols+` FROM email_configs WHERE store_name=$1`, storeName)
	c, err := r.scan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *EmailConfigRepository) GetActiveConfigs(ctx context.Context) ([]model.EmailConfig, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+emailConfigCols+` FROM email_configs WHERE is_active AND ai_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.EmailConfig
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *EmailConfigRepository) Upsert(ctx context.Context, config *model.EmailConfig) (*model.EmailConfig, error) {
	password, err := r.cipher.Encrypt(config.AppPassword)
	if err != nil {
		return nil, err
	}
	token, err := r.cipher.Encrypt(config.ApiToken)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	q := `INSERT INTO email_configs (store_name, email_address, provider, app_password,
	        imap_host, imap_port, imap_encryption, smtp_host, smtp_port, smtp_encryption,
	        ai_active, ai_system_prompt, manual_approval, api_token, is_active, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$16)
	      ON CONFLICT (store_name) DO UPDATE SET
	        email_address = EXCLUDED.email_address,
	        provider = EXCLUDED.provider,
	        app_password = EXCLUDED.app_password,
	        imap_host = EXCLUDED.imap_host,
	        imap_port = EXCLUDED.imap_port,
	        imap_encryption = EXCLUDED.imap_encryption,
	        smtp_host = EXCLUDED.smtp_host,
	        smtp_port = EXCLUDED.smtp_port,
	        smtp_encryption = EXCLUDED.smtp_encryption,
	        api_token = CASE WHEN EXCLUDED.api_token <> '' THEN EXCLUDED.api_token ELSE email_configs.api_token END,
	        is_active = EXCLUDED.is_active,
	        updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, q,
		config.StoreName, config.EmailAddress, config.Provider, password,
		config.ImapHost, config.ImapPort, config.ImapEncryption,
		config.SmtpHost, config.SmtpPort, config.SmtpEncryption,
		config.AiActive, config.AiSystemPrompt, config.ManualApproval, token, config.IsActive, now); err != nil {
		return nil, err
	}
	return r.GetByStoreName(ctx, config.StoreName)
}

func (r *EmailConfigRepository) Update(ctx context.Context, config *model.EmailConfig) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE email_configs SET ai_active=$1, ai_system_prompt=$2, manual_approval=$3, updated_at=$4 WHERE id=$5`,
		config.AiActive, config.AiSystemPrompt, config.ManualApproval, time.Now().UTC(), config.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *EmailConfigRepository) Delete(ctx context.Context, storeName string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM email_configs WHERE store_name=$1`, storeName)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *EmailConfigRepository) MarkPolled(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE email_configs SET last_polled_at=$1, last_error=NULL, updated_at=$1 WHERE id=$2`,
		time.Now().UTC(), id)
	return err
}

func (r *EmailConfigRepository) RecordError(ctx context.Context, id int64, message string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE email_configs SET last_error=$1, updated_at=$2 WHERE id=$3`,
		message, time.Now().UTC(), id)
	return err
}
