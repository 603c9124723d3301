package mailbox

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"agent-hub/domain/model"
	"agent-hub/domain/repository"
	"agent-hub/infrastructure/logger"
)

// SMTPSender delivers replies through the tenant's own SMTP server so
// mail originates from the store's address.
type SMTPSender struct{}

func NewSMTPSender() repository.IMailSender {
	return &SMTPSender{}
}

func (s *SMTPSender) Send(ctx context.Context, config *model.EmailConfig, to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", config.EmailAddress)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(config.SmtpHost, config.SmtpPort, config.EmailAddress, config.AppPassword)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", config.SmtpHost, err)
	}

	logger.GetLogger().WithField("to", to).WithField("store", config.StoreName).Info("Reply sent via SMTP")
	return nil
}
