package dto

import (
	"encoding/json"
	"time"
)

// UnipilePayload is the loosely-typed webhook body Unipile posts. Field
// names vary between event formats, so extraction goes through the
// accessor methods which try each known alias in order.
type UnipilePayload struct {
	Event       string               `json:"event,omitempty"`
	Type        string               `json:"type,omitempty"`
	Status      string               `json:"status,omitempty"`
	AccountID   string               `json:"account_id,omitempty"`
	ChatID      string               `json:"chat_id,omitempty"`
	MessageID   string               `json:"message_id,omitempty"`
	Message     string               `json:"message,omitempty"`
	Timestamp   string               `json:"timestamp,omitempty"`
	IsSender    *bool                `json:"is_sender,omitempty"`
	Name        string               `json:"name,omitempty"`
	WebhookName string               `json:"webhook_name,omitempty"`
	Username    string               `json:"username,omitempty"`
	Sender      *UnipileAttendee     `json:"sender,omitempty"`
	AccountInfo *UnipileAccountInfo  `json:"account_info,omitempty"`
	Data        *UnipilePayloadInner `json:"data,omitempty"`
}

// UnipilePayloadInner holds the nested "data" object some event formats use.
type UnipilePayloadInner struct {
	ID        string `json:"id,omitempty"`
	Status    string `json:"status,omitempty"`
	AccountID string `json:"account_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Username  string `json:"username,omitempty"`
	IsSender  *bool  `json:"is_sender,omitempty"`
}

// UnipileAttendee identifies the message counterpart.
type UnipileAttendee struct {
	AttendeeID   string `json:"attendee_id,omitempty"`
	AttendeeName string `json:"attendee_name,omitempty"`
}

// UnipileAccountInfo carries account metadata on connection events.
type UnipileAccountInfo struct {
	Username string `json:"username,omitempty"`
}

// EventType resolves the event name across payload formats.
func (p *UnipilePayload) EventType() string {
	if p.Event != "" {
		return p.Event
	}
	return p.Type
}

// IsMessageEvent reports whether the payload is an inbound message under
// any of the event names Unipile has used.
func (p *UnipilePayload) IsMessageEvent() bool {
	switch p.EventType() {
	case "message_received", "new_message", "message.new", "message":
		return true
	}
	return false
}

// IsAccountEvent reports whether the payload signals a successful account
// connection, either by event name or by status field.
func (p *UnipilePayload) IsAccountEvent() bool {
	switch p.EventType() {
	case "account_connected", "account.connected", "account":
		return true
	}
	switch p.ResolvedStatus() {
	case "CREATION_SUCCESS", "OK", "CONNECTED":
		return true
	}
	return false
}

func (p *UnipilePayload) ResolvedStatus() string {
	if p.Status != "" {
		return p.Status
	}
	if p.Data != nil {
		return p.Data.Status
	}
	return ""
}

func (p *UnipilePayload) ResolvedAccountID() string {
	if p.AccountID != "" {
		return p.AccountID
	}
	if p.Data != nil {
		return p.Data.AccountID
	}
	return ""
}

func (p *UnipilePayload) ResolvedMessageID() string {
	if p.MessageID != "" {
		return p.MessageID
	}
	if p.Data != nil {
		return p.Data.ID
	}
	return ""
}

// ResolvedStoreName picks the store label attached at webhook registration.
func (p *UnipilePayload) ResolvedStoreName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.WebhookName != "" {
		return p.WebhookName
	}
	if p.Data != nil {
		return p.Data.Name
	}
	return ""
}

func (p *UnipilePayload) ResolvedUsername() string {
	if p.AccountInfo != nil && p.AccountInfo.Username != "" {
		return p.AccountInfo.Username
	}
	if p.Username != "" {
		return p.Username
	}
	if p.Data != nil {
		return p.Data.Username
	}
	return ""
}

// SelfSent reports whether the message was sent by the connected account
// itself. Self messages are never answered.
func (p *UnipilePayload) SelfSent() bool {
	if p.IsSender != nil {
		return *p.IsSender
	}
	if p.Data != nil && p.Data.IsSender != nil {
		return *p.Data.IsSender
	}
	return false
}

func (p *UnipilePayload) SenderName() string {
	if p.Sender != nil && p.Sender.AttendeeName != "" {
		return p.Sender.AttendeeName
	}
	return "Customer"
}

func (p *UnipilePayload) SenderID() string {
	if p.Sender != nil {
		return p.Sender.AttendeeID
	}
	return ""
}

// EventTime parses the message timestamp. Returns zero time when absent
// or unparsable; callers treat that as not stale.
func (p *UnipilePayload) EventTime() time.Time {
	if p.Timestamp == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, p.Timestamp); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Raw re-marshals the payload for audit logging.
func (p *UnipilePayload) Raw() json.RawMessage {
	b, _ := json.Marshal(p)
	return b
}
