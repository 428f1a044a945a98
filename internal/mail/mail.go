// Package mail is the outbound email gateway. It knows how to hand a rendered
// message to a transport and nothing about trips or participants.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"

	"github.com/pkordes/planner/backend/internal/domain"
)

// ErrInvalidMessage marks a message that can never be sent as built, such as
// one with a malformed recipient address. Retrying it is pointless.
var ErrInvalidMessage = errors.New("invalid message")

// Message is a single rendered HTML email for one recipient.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// SMTPConfig holds everything needed to reach an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// TLS requires STARTTLS when true; when false the connection stays plain
	// (local catchers such as MailHog or Mailpit).
	TLS         bool
	FromName    string
	FromAddress string
	// Timeout bounds the dial and every SMTP command.
	Timeout time.Duration
}

// SMTPSender delivers messages over SMTP using go-mail.
// It is safe for concurrent use: each Send opens its own SMTP session.
type SMTPSender struct {
	cfg  SMTPConfig
	opts []gomail.Option
}

// NewSMTPSender validates cfg and returns a sender. No connection is made
// until the first Send.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail.NewSMTPSender: host is required")
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("mail.NewSMTPSender: from address is required")
	}
	// go-mail's PLAIN auth refuses to send credentials in clear text to
	// anything but localhost, so every send would fail.
	if cfg.Username != "" && !cfg.TLS && !isLoopback(cfg.Host) {
		return nil, fmt.Errorf("mail.NewSMTPSender: SMTP credentials for %s require TLS", cfg.Host)
	}

	opts := []gomail.Option{gomail.WithPort(cfg.Port)}
	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}
	if cfg.TLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	return &SMTPSender{cfg: cfg, opts: opts}, nil
}

// Send delivers msg and returns the Message-ID it was sent with.
// Any failure is wrapped with domain.ErrTransport.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	m, id, err := s.build(msg)
	if err != nil {
		return "", fmt.Errorf("mail.SMTPSender.Send: %w: %w: %w", domain.ErrTransport, ErrInvalidMessage, err)
	}

	client, err := gomail.NewClient(s.cfg.Host, s.opts...)
	if err != nil {
		return "", fmt.Errorf("mail.SMTPSender.Send: %w: new client: %w", domain.ErrTransport, err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return "", fmt.Errorf("mail.SMTPSender.Send: %w: %w", domain.ErrTransport, err)
	}
	return id, nil
}

func (s *SMTPSender) build(msg Message) (*gomail.Msg, string, error) {
	m := gomail.NewMsg()
	if err := m.FromFormat(s.cfg.FromName, s.cfg.FromAddress); err != nil {
		return nil, "", fmt.Errorf("from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, "", fmt.Errorf("to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)

	id := newMessageID(s.cfg.FromAddress)
	m.SetMessageIDWithValue(id)
	return m, id, nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// LogSender writes messages to the structured log instead of delivering them.
// main wires it when no SMTP host is configured, so a development setup can
// follow confirmation links straight from the log output.
type LogSender struct {
	log         *slog.Logger
	fromAddress string
}

// NewLogSender returns a LogSender that logs through log.
func NewLogSender(log *slog.Logger, fromAddress string) *LogSender {
	return &LogSender{log: log, fromAddress: fromAddress}
}

// Send logs msg and returns a synthetic Message-ID. It never fails.
func (s *LogSender) Send(ctx context.Context, msg Message) (string, error) {
	id := newMessageID(s.fromAddress)
	s.log.InfoContext(ctx, "mail not delivered: no SMTP host configured",
		"message_id", id,
		"to", msg.To,
		"subject", msg.Subject,
		"html", msg.HTML,
	)
	return id, nil
}

// newMessageID builds an RFC 5322 id-left@id-right value (without angle
// brackets) using the sender's domain as the right-hand side.
func newMessageID(fromAddress string) string {
	domainPart := "localhost"
	if i := strings.LastIndex(fromAddress, "@"); i >= 0 && i < len(fromAddress)-1 {
		domainPart = fromAddress[i+1:]
	}
	return uuid.NewString() + "@" + domainPart
}
