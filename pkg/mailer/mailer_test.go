package mailer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/musicstore/pkg/logger"
	"github.com/dmitrymomot/musicstore/pkg/mailer"
)

func TestMailer_Send(t *testing.T) {
	t.Parallel()

	sender := mailer.NewLogSender(logger.NewNope())
	m := mailer.New(sender, mailer.Config{From: "store@test.com"})

	err := m.Send(context.Background(), mailer.Message{
		To:      "Administrator@test.com",
		Subject: "Security code",
		Body:    "Your security code is **123456**.",
	})
	require.NoError(t, err)

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"Administrator@test.com"}, sent[0].To)
	assert.Equal(t, "store@test.com", sent[0].From)
	assert.Contains(t, sent[0].HTML, "<strong>123456</strong>")
	assert.Equal(t, "Your security code is **123456**.", sent[0].Text)
}

func TestMailer_Validation(t *testing.T) {
	t.Parallel()

	m := mailer.New(mailer.NewLogSender(logger.NewNope()), mailer.Config{})
	ctx := context.Background()

	tests := []struct {
		name string
		msg  mailer.Message
		want error
	}{
		{"no recipient", mailer.Message{Subject: "s", Body: "b"}, mailer.ErrNoRecipient},
		{"no subject", mailer.Message{To: "a@b.c", Body: "b"}, mailer.ErrNoSubject},
		{"no body", mailer.Message{To: "a@b.c", Subject: "s", Body: "  "}, mailer.ErrNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, m.Send(ctx, tt.msg), tt.want)
		})
	}
}

func TestMailer_SenderFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	m := mailer.New(mailer.SenderFunc(func(context.Context, *mailer.Email) error { return boom }), mailer.Config{})

	err := m.Send(context.Background(), mailer.Message{To: "a@b.c", Subject: "s", Body: "b"})
	require.ErrorIs(t, err, mailer.ErrSendFailed)
	require.ErrorIs(t, err, boom)
}

func TestRecipient(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a@b.c", mailer.Recipient("", "a@b.c"))
	assert.Equal(t, "Admin <a@b.c>", mailer.Recipient("Admin", "a@b.c"))
}
