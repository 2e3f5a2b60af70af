// Package resend delivers mailer emails through the Resend API.
package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/musicstore/pkg/mailer"
)

// Config holds Resend credentials.
type Config struct {
	APIKey string `env:"RESEND_APIKEY"`
}

// Sender implements mailer.Sender.
type Sender struct {
	client *resend.Client
}

// New creates a Resend sender.
func New(cfg Config) *Sender {
	return &Sender{client: resend.NewClient(cfg.APIKey)}
}

func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	req := &resend.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
		Headers: email.Headers,
	}
	for name, value := range email.Tags {
		req.Tags = append(req.Tags, resend.Tag{Name: name, Value: value})
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: failed to send email: %w", err)
	}
	return nil
}
