package repository

import (
	"context"

	"agent-hub/domain/model"
)

// InboxMessage is one fetched mail with just the fields the poller needs.
type InboxMessage struct {
	UID        uint32
	MessageID  string
	Subject    string
	FromEmail  string
	FromName   string
	References string
	Body       string
}

// IMailbox reads a tenant inbox over IMAP.
type IMailbox interface {
	// FetchUnseen returns up to limit unseen messages, newest first.
	FetchUnseen(ctx context.Context, config *model.EmailConfig, limit int) ([]InboxMessage, error)

	// MarkSeen flags messages as read. Called only after successful
	// forwarding so unseen mail is retried next cycle.
	MarkSeen(ctx context.Context, config *model.EmailConfig, uids []uint32) error

	// Test opens and closes a connection to validate credentials.
	Test(ctx context.Context, config *model.EmailConfig) error
}

// IMailSender delivers approved draft replies over the tenant's SMTP.
type IMailSender interface {
	Send(ctx context.Context, config *model.EmailConfig, to, subject, body string) error
}
