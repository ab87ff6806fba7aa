package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"strconv"
	"time"

	"contact-backend/config"
	"contact-backend/pkg/logger"

	"github.com/wneessen/go-mail"
)

// EmailService sends notification emails through an authenticated SMTP relay.
// It holds no per-message state and is safe for concurrent use.
type EmailService struct {
	host       string
	port       string
	username   string
	password   string
	mailbox    string
	skipVerify bool
	timeout    time.Duration
}

// Message is a fully addressed notification email.
type Message struct {
	From     string
	To       string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
}

// NewEmailService creates a new email service from the SMTP configuration.
// The login mailbox doubles as sender and recipient.
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:       cfg.SMTPHost,
		port:       cfg.SMTPPort,
		username:   cfg.EmailUser,
		password:   cfg.EmailPass,
		mailbox:    cfg.EmailUser,
		skipVerify: cfg.SMTPSkipVerify,
		timeout:    cfg.SMTPTimeout,
	}
}

// Mailbox returns the outbound mailbox address.
func (s *EmailService) Mailbox() string {
	return s.mailbox
}

// Send delivers msg over a fresh connection.
func (s *EmailService) Send(ctx context.Context, msg Message) error {
	m, err := newMsg(msg)
	if err != nil {
		return err
	}

	client, err := s.client()
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// Verify connects, negotiates TLS and authenticates without sending anything.
func (s *EmailService) Verify(ctx context.Context) error {
	client, err := s.client()
	if err != nil {
		return err
	}
	if err := client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("verify smtp relay: %w", err)
	}
	return client.Close()
}

// client builds an SMTP client. Port 465 uses implicit TLS; any other port
// upgrades with STARTTLS when the server offers it.
func (s *EmailService) client() (*mail.Client, error) {
	port, err := strconv.Atoi(s.port)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP port %q: %w", s.port, err)
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.username),
		mail.WithPassword(s.password),
	}
	if port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if s.timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.timeout))
	}

	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.SetTLSConfig(&tls.Config{
		ServerName:         s.host,
		InsecureSkipVerify: s.skipVerify, //nolint:gosec // opt-in via SMTP_TLS_SKIP_VERIFY
		MinVersion:         tls.VersionTLS12,
	}); err != nil {
		return nil, fmt.Errorf("smtp tls config: %w", err)
	}
	return client, nil
}

// newMsg renders msg as a multipart/alternative message. A Reply-To that is
// not a parseable address is left off rather than failing the send.
func newMsg(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("email sender: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("email recipient: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			logger.Log.Warn("Reply-To omitted, submitter email is not an address")
		}
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	return m, nil
}
