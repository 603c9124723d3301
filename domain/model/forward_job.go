package model

import "time"

// ForwardJob queue states.
const (
	ForwardJobPending    = "pending"
	ForwardJobProcessing = "processing"
	ForwardJobDone       = "done"
	ForwardJobFailed     = "failed"
)

// ForwardMaxAttempts bounds retries for a queued forward before it is
// marked failed.
const ForwardMaxAttempts = 3

// ForwardJob is a queued inbound Instagram message awaiting delivery to
// the workflow engine. Rows are claimed by the background processor.
type ForwardJob struct {
	ID             int64      `json:"id"`
	StoreName      string     `json:"store_name"`
	AccountID      string     `json:"account_id"`
	ChatID         string     `json:"chat_id"`
	SenderID       string     `json:"sender_id"`
	SenderName     string     `json:"sender_name"`
	Message        string     `json:"message"`
	EventTimestamp time.Time  `json:"event_timestamp"`
	Status         string     `json:"status"`
	Attempts       int        `json:"attempts"`
	LastError      *string    `json:"last_error,omitempty"`
	NextAttemptAt  time.Time  `json:"next_attempt_at"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
