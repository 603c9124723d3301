package model

import "time"

// InboundEvent is the canonical form every channel normalizer produces
// before dispatch. Channel is one of the Channel* constants.
type InboundEvent struct {
	Channel        string    `json:"channel"`
	StoreName      string    `json:"store_name"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	SenderName     string    `json:"sender_name,omitempty"`
	Message        string    `json:"message"`
	MessageID      string    `json:"message_id,omitempty"`
	Subject        string    `json:"subject,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Stale reports whether the event is older than the given window.
// Stale events are dropped rather than forwarded.
func (e *InboundEvent) Stale(window time.Duration, now time.Time) bool {
	if e.Timestamp.IsZero() {
		return false
	}
	return now.Sub(e.Timestamp) > window
}
