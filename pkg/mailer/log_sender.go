package mailer

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// LogSender logs emails instead of delivering them. It keeps the last
// messages it saw so tests can inspect them.
type LogSender struct {
	log  *slog.Logger
	mu   sync.Mutex
	sent []Email
}

// NewLogSender creates a LogSender.
func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, email *Email) error {
	s.mu.Lock()
	s.sent = append(s.sent, *email)
	s.mu.Unlock()

	s.log.InfoContext(ctx, "email sent",
		slog.String("to", strings.Join(email.To, ",")),
		slog.String("subject", email.Subject),
		slog.Int("html_bytes", len(email.HTML)),
	)
	return nil
}

// Sent returns a copy of the delivered emails.
func (s *LogSender) Sent() []Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Email(nil), s.sent...)
}
