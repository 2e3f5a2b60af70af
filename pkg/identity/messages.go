package identity

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/musicstore/pkg/mailer"
)

// Message is an outbound notification to a user.
type Message struct {
	Destination string
	Subject     string
	Body        string
}

// MessageProvider delivers messages over one channel.
type MessageProvider interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// EmailMessageProvider sends messages through the mailer.
type EmailMessageProvider struct {
	mailer *mailer.Mailer
}

func NewEmailMessageProvider(m *mailer.Mailer) *EmailMessageProvider {
	return &EmailMessageProvider{mailer: m}
}

func (p *EmailMessageProvider) Name() string { return EmailProvider }

func (p *EmailMessageProvider) Send(ctx context.Context, msg Message) error {
	return p.mailer.Send(ctx, mailer.Message{
		To:      msg.Destination,
		Subject: msg.Subject,
		Body:    msg.Body,
		Tags:    map[string]string{"category": "identity"},
	})
}

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// SMSMessageProvider sends messages through an SMSSender.
type SMSMessageProvider struct {
	sender SMSSender
}

func NewSMSMessageProvider(sender SMSSender) *SMSMessageProvider {
	return &SMSMessageProvider{sender: sender}
}

func (p *SMSMessageProvider) Name() string { return PhoneNumberProvider }

func (p *SMSMessageProvider) Send(ctx context.Context, msg Message) error {
	return p.sender.SendSMS(ctx, msg.Destination, msg.Body)
}

// LogSMSSender writes text messages to the log.
type LogSMSSender struct {
	log *slog.Logger
}

func NewLogSMSSender(log *slog.Logger) *LogSMSSender {
	return &LogSMSSender{log: log}
}

func (s *LogSMSSender) SendSMS(ctx context.Context, to, body string) error {
	s.log.InfoContext(ctx, "sms sent", slog.String("to", to), slog.Int("length", len(body)))
	return nil
}
