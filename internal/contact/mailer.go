package contact

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/deskfolio/deskfolio/internal/config"
)

// Mailer delivers composed mail.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// SMTPMailer sends mail over SMTP with mandatory STARTTLS.
type SMTPMailer struct {
	client *mail.Client
}

// NewSMTPMailer returns a mailer for cfg. It fails with ErrNotConfigured if
// the host or credentials are missing.
func NewSMTPMailer(cfg config.MailConfig) (*SMTPMailer, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	port := cfg.Port
	if port == 0 {
		port = config.DefaultSMTPPort
	}
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &SMTPMailer{client: client}, nil
}

// Send delivers e.
func (m *SMTPMailer) Send(ctx context.Context, e Email) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(e.FromName, e.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(e.To); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	if err := msg.ReplyTo(e.ReplyTo); err != nil {
		return fmt.Errorf("invalid reply-to address: %w", err)
	}
	msg.Subject(e.Subject)
	msg.SetBodyString(mail.TypeTextPlain, e.Text)
	msg.AddAlternativeString(mail.TypeTextHTML, e.HTML)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
