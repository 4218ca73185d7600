package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"dpformance-site/pkg/config"
)

// ErrMailerNotConfigured is returned when SMTP credentials are missing
var ErrMailerNotConfigured = errors.New("EMAIL_USER and EMAIL_PASS environment variables not set")

// Message is an outgoing plain-text email
type Message struct {
	ID      string
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer delivers messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends mail through an authenticated SMTP relay
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	fromName string
	timeout  time.Duration
}

// NewSMTPMailer creates a mailer from the EMAIL_* and SMTP_* settings.
// The sender address is the authenticated user.
func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	if !cfg.MailConfigured() {
		return nil, ErrMailerNotConfigured
	}

	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.EmailUser,
		password: cfg.EmailPass,
		fromName: "Website Contact",
		timeout:  15 * time.Second,
	}, nil
}

// Send dials the relay and delivers msg
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	mm := mail.NewMsg()
	if err := mm.FromFormat(m.fromName, m.username); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := mm.To(msg.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := mm.ReplyTo(msg.ReplyTo); err != nil {
			return fmt.Errorf("set reply-to: %w", err)
		}
	}
	if msg.ID != "" {
		mm.SetGenHeader(mail.Header("X-Submission-ID"), msg.ID)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, msg.Body)

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(m.timeout),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// DisabledMailer rejects every message. The server uses it when SMTP
// credentials are missing so the contact endpoint fails like a broken relay.
type DisabledMailer struct{}

// Send always returns ErrMailerNotConfigured
func (DisabledMailer) Send(context.Context, Message) error {
	return ErrMailerNotConfigured
}
