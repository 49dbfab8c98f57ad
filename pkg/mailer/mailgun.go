package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
	"github.com/samber/oops"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Mailgun wraps Mailgun client configuration.
type Mailgun struct {
	Domain string
	APIKey string
	Sender string
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender}
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	client := mg.NewMailgun(m.Domain, m.APIKey)
	msg := client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, _, err := client.Send(c, msg); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("domain", m.Domain).Wrap(err)
	}
	return nil
}

// LogSender only logs; used when MAIL_SEND_ENABLED is false.
type LogSender struct {
	Log func(to, subject string)
}

func (s LogSender) Send(_ context.Context, to, subject, _, _ string) error {
	if s.Log != nil {
		s.Log(to, subject)
	}
	return nil
}
