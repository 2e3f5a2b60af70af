package mailer

import (
	"context"
	"fmt"
)

// Sender delivers a fully prepared Email.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, email *Email) error

func (f SenderFunc) Send(ctx context.Context, email *Email) error { return f(ctx, email) }

// Email is a message ready for a provider.
type Email struct {
	From    string
	ReplyTo string
	To      []string
	Subject string
	HTML    string
	Text    string
	Headers map[string]string
	Tags    map[string]string
}

// Recipient formats a name and address as "Name <email>".
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
