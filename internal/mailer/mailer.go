package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

type Attachment struct {
	Name string
	Data []byte
}

type Message struct {
	To          []string
	Subject     string
	Body        string
	HTML        bool
	Attachments []Attachment
}

type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

type SMTPMailer struct {
	client   *mail.Client
	from     string
	fromName string
}

func NewSMTPMailer(host string, port int, username, password, from string) (*SMTPMailer, error) {
	c, err := mail.NewClient(
		host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
	)
	if err != nil {
		return nil, fmt.Errorf("could not initialize smtp client: %w", err)
	}
	return &SMTPMailer{client: c, from: from, fromName: "CinePass"}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, in *Message) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return fmt.Errorf("failed to set From address: %w", err)
	}
	if err := msg.To(in.To...); err != nil {
		return fmt.Errorf("failed to set To address: %w", err)
	}
	msg.Subject(in.Subject)
	if in.HTML {
		msg.SetBodyString(mail.TypeTextHTML, in.Body)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, in.Body)
	}
	for _, a := range in.Attachments {
		if err := msg.AttachReader(a.Name, bytes.NewReader(a.Data)); err != nil {
			return fmt.Errorf("failed to attach %s: %w", a.Name, err)
		}
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// LogMailer is used when SMTP is not configured; messages are logged and dropped.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg *Message) error {
	m.logger.Info("Mail delivery disabled, dropping message",
		"to", msg.To,
		"subject", msg.Subject,
		"attachments", len(msg.Attachments),
	)
	return nil
}
