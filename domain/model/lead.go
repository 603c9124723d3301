package model

import (
	"encoding/json"
	"net/url"
	"time"
)

// Lead lifecycle states. pending -> sent|rejected, terminal states final.
const (
	LeadStatusPending  = "pending"
	LeadStatusSent     = "sent"
	LeadStatusRejected = "rejected"
)

// ValidLeadPlatforms are the platforms the scraping workflow may report.
var ValidLeadPlatforms = map[string]struct{}{
	"instagram": {},
	"twitter":   {},
	"tiktok":    {},
	"linkedin":  {},
	"reddit":    {},
}

// Lead is a prospect discovered by the external scraping workflow.
// (store_name, platform, external_id) is globally unique; re-ingestion of the
// same external id updates mutable fields but never creates a duplicate row.
type Lead struct {
	ID            int64           `json:"id"`
	StoreName     string          `json:"store_name"`
	AgentID       *int64          `json:"agent_id,omitempty"`
	Platform      string          `json:"platform"`
	ExternalID    string          `json:"external_id"`
	Username      string          `json:"username"`
	ProfileURL    string          `json:"profile_url"`
	Context       json.RawMessage `json:"context,omitempty"`
	QualityScore  int             `json:"quality_score"`
	DraftMessage  *string         `json:"draft_message,omitempty"`
	Status        string          `json:"status"`
	ActionTakenAt *time.Time      `json:"action_taken_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// DeepLink builds the platform-specific outreach URL for this lead.
func (l *Lead) DeepLink() string {
	switch l.Platform {
	case "instagram":
		return "https://ig.me/m/" + l.Username
	case "twitter":
		text := ""
		if l.DraftMessage != nil {
			text = url.QueryEscape(*l.DraftMessage)
		}
		return "https://twitter.com/intent/tweet?in_reply_to=" + l.ExternalID + "&text=" + text
	case "tiktok":
		// no DM deep link on TikTok, link to profile
		return "https://www.tiktok.com/@" + l.Username
	}
	return l.ProfileURL
}

// LeadStats aggregates lead counts for a store's dashboard.
type LeadStats struct {
	TotalPending     int `json:"total_pending"`
	TotalSent        int `json:"total_sent"`
	TotalRejected    int `json:"total_rejected"`
	InstagramPending int `json:"instagram_pending"`
	TwitterPending   int `json:"twitter_pending"`
	TiktokPending    int `json:"tiktok_pending"`
}
