package model

import (
	"encoding/json"
	"time"
)

// Agent run states.
const (
	AgentStatusIdle      = "idle"
	AgentStatusRunning   = "running"
	AgentStatusCompleted = "completed"
	AgentStatusError     = "error"
)

// Agent modes.
const (
	AgentModeB2C  = "b2c"
	AgentModeB2B  = "b2b"
	AgentModeBoth = "both"
)

// Default targeting bounds applied when an agent has no explicit criteria.
const (
	DefaultMinFollowers = 500
	DefaultMaxFollowers = 100000
)

// AgentPlatforms are the platforms an agent may scrape.
var AgentPlatforms = map[string]struct{}{
	"instagram": {},
	"tiktok":    {},
	"twitter":   {},
	"linkedin":  {},
}

// Agent is a per-store lead-finding configuration. At most one agent per
// store may be in the running state at any time.
type Agent struct {
	ID                 int64           `json:"id"`
	StoreName          string          `json:"store_name"`
	Name               string          `json:"name"`
	ProductName        string          `json:"product_name"`
	ProductURL         string          `json:"product_url,omitempty"`
	ProductImage       string          `json:"product_image,omitempty"`
	Mode               string          `json:"mode"`
	ConfigType         string          `json:"config_type"`
	Status             string          `json:"status"`
	IsActive           bool            `json:"is_active"`
	Platforms          json.RawMessage `json:"platforms,omitempty"`
	PlatformSubOptions json.RawMessage `json:"platform_sub_options,omitempty"`
	Hashtags           json.RawMessage `json:"hashtags,omitempty"`
	Targeting          json.RawMessage `json:"targeting,omitempty"`
	ProspectCount      int             `json:"prospect_count"`
	SearchRate         int             `json:"search_rate"`
	LastRun            *time.Time      `json:"last_run,omitempty"`
	LastError          *string         `json:"last_error,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TargetingCriteria is the resolved targeting block sent to the workflow
// engine when a run starts.
type TargetingCriteria struct {
	MinFollowers    int  `json:"minFollowers"`
	MaxFollowers    int  `json:"maxFollowers"`
	ExcludeVerified bool `json:"excludeVerified"`
}

// DefaultTargeting is applied when an agent stores no targeting block.
func DefaultTargeting() TargetingCriteria {
	return TargetingCriteria{
		MinFollowers:    DefaultMinFollowers,
		MaxFollowers:    DefaultMaxFollowers,
		ExcludeVerified: true,
	}
}

// ResolvedTargeting returns the stored targeting JSON, falling back to
// the defaults when absent.
func (a *Agent) ResolvedTargeting() json.RawMessage {
	if len(a.Targeting) > 0 && string(a.Targeting) != "null" {
		return a.Targeting
	}
	b, _ := json.Marshal(DefaultTargeting())
	return b
}

// PlatformList decodes the agent's stored platform JSON array.
func (a *Agent) PlatformList() []string {
	var out []string
	if len(a.Platforms) > 0 {
		_ = json.Unmarshal(a.Platforms, &out)
	}
	return out
}

// IsRunning reports whether the agent is mid-run.
func (a *Agent) IsRunning() bool {
	return a.Status == AgentStatusRunning
}
