package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureSchema creates the tables used by the hub if they do not exist.
// Safe to call at startup.
func EnsureSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS whatsapp_store_configs (
			id BIGSERIAL PRIMARY KEY,
			store_name TEXT NOT NULL UNIQUE,
			twilio_phone_number TEXT NOT NULL DEFAULT '',
			api_token TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_whatsapp_configs_number ON whatsapp_store_configs (twilio_phone_number) WHERE is_active`,

		`CREATE TABLE IF NOT EXISTS instagram_configs (
			id BIGSERIAL PRIMARY KEY,
			store_name TEXT NOT NULL UNIQUE,
			unipile_account_id TEXT,
			instagram_username TEXT,
			api_token TEXT NOT NULL DEFAULT '',
			ai_active BOOLEAN NOT NULL DEFAULT FALSE,
			ai_system_prompt TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_instagram_configs_account ON instagram_configs (unipile_account_id)`,

		`CREATE TABLE IF NOT EXISTS email_configs (
			id BIGSERIAL PRIMARY KEY,
			store_name TEXT NOT NULL UNIQUE,
			email_address TEXT NOT NULL,
			provider TEXT NOT NULL,
			app_password TEXT NOT NULL,
			imap_host TEXT NOT NULL DEFAULT '',
			imap_port INTEGER NOT NULL DEFAULT 993,
			imap_encryption TEXT NOT NULL DEFAULT 'ssl',
			smtp_host TEXT NOT NULL DEFAULT '',
			smtp_port INTEGER NOT NULL DEFAULT 587,
			smtp_encryption TEXT NOT NULL DEFAULT 'tls',
			ai_active BOOLEAN NOT NULL DEFAULT FALSE,
			ai_system_prompt TEXT NOT NULL DEFAULT '',
			manual_approval BOOLEAN NOT NULL DEFAULT FALSE,
			api_token TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			last_polled_at TIMESTAMPTZ,
			last_error TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS lead_configs (
			id BIGSERIAL PRIMARY KEY,
			store_name TEXT NOT NULL UNIQUE,
			hashtags JSONB NOT NULL DEFAULT '[]',
			platforms JSONB NOT NULL DEFAULT '["tiktok"]',
			ai_system_prompt TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			last_scraped_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS conversation_turns (
			id BIGSERIAL PRIMARY KEY,
			store_name TEXT NOT NULL,
			channel TEXT NOT NULL,
			conversation_id TEXT NOT NULL,
			customer_ref TEXT NOT NULL DEFAULT '',
			sender_name TEXT,
			user_message TEXT,
			ai_response TEXT,
			tokens_used INTEGER NOT NULL DEFAULT 0,
			cost_estimate_usd NUMERIC(12,6) NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'success',
			action TEXT,
			draft_reply TEXT,
			approval_status TEXT,
			reply_to_email TEXT,
			reply_subject TEXT,
			subject TEXT,
			from_email TEXT,
			message_id TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_conversation ON conversation_turns (conversation_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_store ON conversation_turns (store_name, created_at)`,
		`DROP INDEX IF EXISTS idx_turns_message_id`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_turns_message_id ON conversation_turns (message_id) WHERE message_id IS NOT NULL`,

		`CREATE TABLE IF NOT EXISTS leads (
			id BIGSERIAL PRIMARY KEY,
			store_name TEXT NOT NULL,
			agent_id BIGINT,
			platform TEXT NOT NULL,
			external_id TEXT NOT NULL,
			username TEXT NOT NULL,
			profile_url TEXT NOT NULL,
			context JSONB,
			quality_score INTEGER NOT NULL DEFAULT 0,
			draft_message TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			action_taken_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (store_name, platform, external_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_pending ON leads (store_name, status, quality_score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_agent ON leads (agent_id)`,

		`CREATE TABLE IF NOT EXISTS agents (
			id BIGSERIAL PRIMARY KEY,
			store_name TEXT NOT NULL,
			name TEXT NOT NULL,
			product_name TEXT NOT NULL DEFAULT '',
			product_url TEXT,
			product_image TEXT,
			mode TEXT NOT NULL DEFAULT 'b2c',
			config_type TEXT NOT NULL DEFAULT 'auto',
			status TEXT NOT NULL DEFAULT 'idle',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			platforms JSONB NOT NULL DEFAULT '[]',
			platform_sub_options JSONB NOT NULL DEFAULT '{}',
			hashtags JSONB NOT NULL DEFAULT '[]',
			targeting JSONB,
			prospect_count INTEGER NOT NULL DEFAULT 0,
			search_rate INTEGER NOT NULL DEFAULT 0,
			last_run TIMESTAMPTZ,
			last_error TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_agents_store ON agents (store_name, updated_at DESC)`,

		`CREATE TABLE IF NOT EXISTS video_jobs (
			id BIGSERIAL PRIMARY KEY,
			job_id TEXT NOT NULL UNIQUE,
			store_id TEXT NOT NULL,
			product_id TEXT,
			product_name TEXT NOT NULL DEFAULT '',
			product_description TEXT NOT NULL DEFAULT '',
			product_image_url TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			video_url TEXT,
			external_video_url TEXT,
			motion_prompt TEXT,
			error_message TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_video_jobs_store ON video_jobs (store_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS forward_jobs (
			id BIGSERIAL PRIMARY KEY,
			store_name TEXT NOT NULL,
			account_id TEXT NOT NULL,
			chat_id TEXT NOT NULL DEFAULT '',
			sender_id TEXT NOT NULL DEFAULT '',
			sender_name TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			event_timestamp TIMESTAMPTZ,
			status TEXT NOT NULL DEFAULT 'pending',
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT,
			next_attempt_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			claimed_at TIMESTAMPTZ,
			processed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`ALTER TABLE forward_jobs ADD COLUMN IF NOT EXISTS claimed_at TIMESTAMPTZ`,
		`CREATE INDEX IF NOT EXISTS idx_forward_jobs_due ON forward_jobs (status, next_attempt_at)`,
	}

	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}
