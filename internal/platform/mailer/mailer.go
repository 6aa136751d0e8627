// Package mailer delivers transactional email over SMTP.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskify/taskify-api/internal/config"
	"github.com/wneessen/go-mail"
)

const sendTimeout = 15 * time.Second

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends a Message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer for cfg, or a mailer that only logs when no
// host is configured.
func New(cfg config.MailConfig, logger *slog.Logger) (Mailer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "mailer"))

	if cfg.Host == "" {
		logger.Info("smtp host not configured, email delivery disabled")
		return &NopMailer{logger: logger}, nil
	}
	return NewSMTPMailer(cfg, logger)
}

// SMTPMailer sends mail through one SMTP relay.
type SMTPMailer struct {
	client *mail.Client
	from   string
	logger *slog.Logger
}

func NewSMTPMailer(cfg config.MailConfig, logger *slog.Logger) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithTimeout(sendTimeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From, logger: logger}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	envelope, err := m.build(msg)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, envelope); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	m.logger.Debug("email sent", slog.String("subject", msg.Subject))
	return nil
}

func (m *SMTPMailer) build(msg Message) (*mail.Msg, error) {
	envelope := mail.NewMsg()
	if err := envelope.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := envelope.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	envelope.Subject(msg.Subject)
	envelope.SetBodyString(mail.TypeTextPlain, msg.Body)
	return envelope, nil
}

// NopMailer logs messages instead of sending them.
type NopMailer struct {
	logger *slog.Logger
}

func (m *NopMailer) Send(_ context.Context, msg Message) error {
	m.logger.Debug("email delivery disabled, dropping message",
		slog.String("subject", msg.Subject))
	return nil
}

// AssignmentEmail is sent to a user who was made assignee of a task.
// assignedBy may be empty.
func AssignmentEmail(to, assigneeName, assignedBy, taskTitle, projectName, link string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", assigneeName)
	if assignedBy != "" {
		fmt.Fprintf(&b, "%s assigned you the task %q in project %s.\n", assignedBy, taskTitle, projectName)
	} else {
		fmt.Fprintf(&b, "You were assigned the task %q in project %s.\n", taskTitle, projectName)
	}
	if link != "" {
		fmt.Fprintf(&b, "\nOpen the board: %s\n", link)
	}
	return Message{
		To:      to,
		Subject: "New task assigned: " + taskTitle,
		Body:    b.String(),
	}
}
