package mailbox

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"

	"agent-hub/domain/model"
	"agent-hub/domain/repository"
	"agent-hub/infrastructure/logger"
)

// IMAPMailbox reads tenant inboxes over IMAP with TLS.
type IMAPMailbox struct {
	dialTimeout time.Duration
}

func NewIMAPMailbox() repository.IMailbox {
	return &IMAPMailbox{dialTimeout: 30 * time.Second}
}

func (m *IMAPMailbox) connect(config *model.EmailConfig) (*client.Client, error) {
	addr := fmt.Sprintf("%s:%d", config.ImapHost, config.ImapPort)
	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	c.Timeout = m.dialTimeout
	if err := c.Login(config.EmailAddress, config.AppPassword); err != nil {
		c.Logout()
		return nil, fmt.Errorf("IMAP login failed for %s: %w", config.EmailAddress, err)
	}
	return c, nil
}

// FetchUnseen returns up to limit unseen inbox messages, newest first.
// Messages are fetched with BODY.PEEK so the unseen flag survives until
// the poller explicitly marks them.
func (m *IMAPMailbox) FetchUnseen(ctx context.Context, config *model.EmailConfig, limit int) ([]repository.InboxMessage, error) {
	c, err := m.connect(config)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", false); err != nil {
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search unseen messages: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	// Highest sequence numbers are the most recent arrivals.
	if len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, len(ids))
	if err := c.Fetch(seqset, items, messages); err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	var fetched []repository.InboxMessage
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		parsed, err := parseMessage(body)
		if err != nil {
			logger.GetLogger().WithField("error", err).WithField("uid", msg.Uid).Warn("Skipping unparsable message")
			continue
		}
		parsed.UID = msg.Uid
		fetched = append(fetched, parsed)
	}

	// Fetch yields ascending sequence order; flip it so callers see the
	// newest message first.
	for i, j := 0, len(fetched)-1; i < j; i, j = i+1, j-1 {
		fetched[i], fetched[j] = fetched[j], fetched[i]
	}
	return fetched, nil
}

func (m *IMAPMailbox) MarkSeen(ctx context.Context, config *model.EmailConfig, uids []uint32) error {
	if len(uids) == 0 {
		return nil
	}
	c, err := m.connect(config)
	if err != nil {
		return err
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", false); err != nil {
		return fmt.Errorf("failed to select INBOX: %w", err)
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := c.UidStore(seqset, item, []interface{}{imap.SeenFlag}, nil); err != nil {
		return fmt.Errorf("failed to mark messages seen: %w", err)
	}
	return nil
}

func (m *IMAPMailbox) Test(ctx context.Context, config *model.EmailConfig) error {
	c, err := m.connect(config)
	if err != nil {
		return err
	}
	return c.Logout()
}

// parseMessage extracts headers and the first text part from a raw RFC
// 5322 message.
func parseMessage(r io.Reader) (repository.InboxMessage, error) {
	var out repository.InboxMessage

	mr, err := mail.CreateReader(r)
	if err != nil {
		return out, fmt.Errorf("failed to parse message: %w", err)
	}

	header := mr.Header
	out.Subject, _ = header.Subject()
	if msgID, err := header.MessageID(); err == nil {
		out.MessageID = msgID
	}
	if refs, err := header.MsgIDList("References"); err == nil && len(refs) > 0 {
		out.References = joinMessageIDs(refs)
	} else if replies, err := header.MsgIDList("In-Reply-To"); err == nil && len(replies) > 0 {
		// Some clients thread with In-Reply-To only; without this a
		// direct reply would start a fresh conversation.
		out.References = joinMessageIDs(replies)
	}
	if from, err := header.AddressList("From"); err == nil && len(from) > 0 {
		out.FromEmail = from[0].Address
		out.FromName = from[0].Name
	}

	var plain, html string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		inline, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := inline.ContentType()
		content, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}
		switch contentType {
		case "text/plain":
			if plain == "" {
				plain = string(content)
			}
		case "text/html":
			if html == "" {
				html = string(content)
			}
		}
	}

	out.Body = strings.TrimSpace(plain)
	if out.Body == "" {
		out.Body = strings.TrimSpace(stripTags(html))
	}
	return out, nil
}

func joinMessageIDs(ids []string) string {
	bracketed := make([]string, len(ids))
	for i, id := range ids {
		bracketed[i] = "<" + id + ">"
	}
	return strings.Join(bracketed, " ")
}

// stripTags is a minimal HTML-to-text fallback for mails without a
// plain part.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
