package persistence

import (
	"context"
	"database/sql"
	"time"

	"agent-hub/domain/model"
	"agent-hub/domain/repository"
)

// WhatsAppConfigRepository stores Twilio number mappings with the API
// token encrypted at rest.
type WhatsAppConfigRepository struct {
	db     *sql.DB
	cipher *Cipher
}

func NewWhatsAppConfigRepository(db *sql.DB, cipher *Cipher) repository.IWhatsAppConfig {
	return &WhatsAppConfigRepository{db: db, cipher: cipher}
}

const whatsappConfigCols = `id, store_name, twilio_phone_number, api_token, is_active, created_at, updated_at`

func (r *WhatsAppConfigRepository) scan(row *sql.Row) (*model.WhatsAppStoreConfig, error) {
	c := &model.WhatsAppStoreConfig{}
	err := row.Scan(&c.ID, &c.StoreName, &c.TwilioPhoneNumber, &c.ApiToken, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if c.ApiToken, err = r.cipher.Decrypt(c.ApiToken); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *WhatsAppConfigRepository) GetByStoreName(ctx context.Context, storeName string) (*model.WhatsAppStoreConfig, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+whatsappConfigCols+` FROM whatsapp_store_configs WHERE store_name=$1`, storeName)
	return r.scan(row)
}

func (r *WhatsAppConfigRepository) GetByTwilioNumber(ctx context.Context, phoneNumber string) (*model.WhatsAppStoreConfig, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+whatsappConfigCols+` FROM whatsapp_store_configs WHERE twilio_phone_number=$1 AND is_active`, phoneNumber)
	return r.scan(row)
}

func (r *WhatsAppConfigRepository) Upsert(ctx context.Context, config *model.WhatsAppStoreConfig) (*model.WhatsAppStoreConfig, error) {
	token, err := r.cipher.Encrypt(config.ApiToken)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	q := `INSERT INTO whatsapp_store_configs (store_name, twilio_phone_number, api_token, is_active, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$5)
	      ON CONFLICT (store_name) DO UPDATE SET
	        twilio_phone_number = EXCLUDED.twilio_phone_number,
	        api_token = EXCLUDED.api_token,
	        is_active = EXCLUDED.is_active,
	        updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, q, config.StoreName, config.TwilioPhoneNumber, token, config.IsActive, now); err != nil {
		return nil, err
	}
	return r.GetByStoreName(ctx, config.StoreName)
}

func (r *WhatsAppConfigRepository) ActiveNumberInUse(ctx context.Context, phoneNumber, excludeStore string) (bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM whatsapp_store_configs WHERE twilio_phone_number=$1 AND is_active AND store_name <> $2)`,
		phoneNumber, excludeStore)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *WhatsAppConfigRepository) SetAPIToken(ctx context.Context, storeName, apiToken string) error {
	token, err := r.cipher.Encrypt(apiToken)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE whatsapp_store_configs SET api_token=$1, updated_at=$2 WHERE store_name=$3`,
		token, time.Now().UTC(), storeName)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *WhatsAppConfigRepository) Deactivate(ctx context.Context, storeName string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE whatsapp_store_configs SET is_active=FALSE, updated_at=$1 WHERE store_name=$2`,
		time.Now().UTC(), storeName)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
