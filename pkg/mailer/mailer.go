package mailer

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Config holds mailer settings.
type Config struct {
	From     string `env:"MAILER_FROM" envDefault:"MusicStore <no-reply@musicstore.test>"`
	Provider string `env:"MAILER_PROVIDER" envDefault:"log"` // "log" or "resend"
}

// Message is a Markdown message addressed to one recipient.
type Message struct {
	To      string
	Subject string
	Body    string
	Tags    map[string]string
}

// Mailer renders messages and passes them to a Sender.
type Mailer struct {
	sender Sender
	cfg    Config
	md     goldmark.Markdown
}

// New creates a Mailer.
func New(sender Sender, cfg Config) *Mailer {
	return &Mailer{
		sender: sender,
		cfg:    cfg,
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Send renders msg and delivers it.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	if msg.Subject == "" {
		return ErrNoSubject
	}
	if strings.TrimSpace(msg.Body) == "" {
		return ErrNoContent
	}

	body, err := m.Render(msg.Body)
	if err != nil {
		return err
	}

	email := &Email{
		From:    m.cfg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    body,
		Text:    msg.Body,
		Tags:    msg.Tags,
	}
	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

// Render converts Markdown to HTML.
func (m *Mailer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(markdown), &buf); err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return buf.String(), nil
}
