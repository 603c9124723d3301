package model

import (
	"crypto/md5"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Gemini API pricing used for WhatsApp token accounting.
const CostPerMillionTokens = 0.50

// Turn statuses.
const (
	TurnStatusSuccess = "success"
	TurnStatusError   = "error"
)

// Draft approval sub-states (email channel only).
const (
	ApprovalPending  = "pending_approval"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Turn actions, recorded so history reflects the dispatcher branch taken.
const (
	ActionReplied        = "replied"
	ActionDraftGenerated = "draft_generated"
	ActionRecordedOnly   = "recorded_only"
)

// ConversationTurn is one inbound/outbound exchange in the ledger. A turn
// belongs to exactly one (store_name, channel, conversation_id) triple; turns
// within a conversation are ordered by CreatedAt.
type ConversationTurn struct {
	ID             int64     `json:"id"`
	StoreName      string    `json:"store_name"`
	Channel        string    `json:"channel"`
	ConversationID string    `json:"conversation_id"`
	CustomerRef    string    `json:"customer_ref"`
	SenderName     *string   `json:"sender_name,omitempty"`
	UserMessage    *string   `json:"user_message,omitempty"`
	AiResponse     *string   `json:"ai_response,omitempty"`
	TokensUsed     int       `json:"tokens_used"`
	CostEstimateUSD float64  `json:"cost_estimate_usd"`
	Status         string    `json:"status"`
	Action         *string   `json:"action,omitempty"`
	DraftReply     *string   `json:"draft_reply,omitempty"`
	ApprovalStatus *string   `json:"approval_status,omitempty"`
	ReplyToEmail   *string   `json:"reply_to_email,omitempty"`
	ReplySubject   *string   `json:"reply_subject,omitempty"`
	Subject        *string   `json:"subject,omitempty"`
	FromEmail      *string   `json:"from_email,omitempty"`
	MessageID      *string   `json:"message_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// CalculateCost converts a token count into an estimated USD cost.
func CalculateCost(tokens int) float64 {
	return float64(tokens) / 1_000_000 * CostPerMillionTokens
}

// WhatsAppConversationID derives the grouping key for a WhatsApp exchange.
// Reproducible from raw provider data so unrelated backends agree on grouping.
func WhatsAppConversationID(storeName, phone string) string {
	return storeName + "_" + NormalizePhone(phone)
}

// NormalizePhone strips Twilio's channel prefix from a phone number.
func NormalizePhone(phone string) string {
	return strings.ReplaceAll(phone, "whatsapp:", "")
}

// SplitConversationID breaks a {store}_{phone} conversation id back into its
// parts. Returns empty strings when the format does not match.
func SplitConversationID(conversationID string) (storeName, phone string) {
	parts := strings.SplitN(conversationID, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", ""
	}
	return parts[0], parts[1]
}

var replyPrefixRe = regexp.MustCompile(`(?i)^(Re:|Fwd:|Fw:)\s*`)

// EmailConversationID derives a deterministic thread key. The threading
// reference header wins when present; otherwise a normalized subject line
// (reply prefixes stripped, case folded) is hashed, so "Re: Subject" and
// "Subject" group together.
func EmailConversationID(storeName, references, subject string) string {
	if fields := strings.Fields(references); len(fields) > 0 {
		threadID := strings.Trim(fields[0], "<>")
		return fmt.Sprintf("%x", md5.Sum([]byte(storeName+"_"+threadID)))
	}
	clean := subject
	for replyPrefixRe.MatchString(clean) {
		clean = replyPrefixRe.ReplaceAllString(clean, "")
	}
	clean = strings.ToLower(strings.TrimSpace(clean))
	return fmt.Sprintf("%x", md5.Sum([]byte(storeName+"_"+clean)))
}

// ConversationSummary is a per-conversation rollup for dashboard listings.
type ConversationSummary struct {
	ConversationID string    `json:"conversation_id"`
	CustomerRef    string    `json:"customer_ref"`
	SenderName     *string   `json:"sender_name,omitempty"`
	Subject        *string   `json:"subject,omitempty"`
	LastMessage    string    `json:"last_message"`
	MessageCount   int       `json:"message_count"`
	LastActivity   time.Time `json:"last_activity"`
}

// ActivityPoint is one day on the dashboard activity chart.
type ActivityPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ChannelStats aggregates ledger counts for a store on one channel.
type ChannelStats struct {
	MessagesToday    int     `json:"messages_today"`
	MessagesThisWeek int     `json:"messages_this_week"`
	TotalMessages    int     `json:"total_messages"`
	Conversations    int     `json:"conversations"`
	TotalSpendUSD    float64 `json:"total_spend,omitempty"`
}
