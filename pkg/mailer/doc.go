// Package mailer delivers account messages such as confirmation codes and
// password reset links.
//
// Message bodies are written in Markdown. The Mailer renders them to HTML
// with goldmark, keeps the Markdown as the plain-text part and hands the
// result to a Sender:
//
//	m := mailer.New(resend.New(cfg.Resend), mailer.Config{From: "store@example.com"})
//	err := m.Send(ctx, mailer.Message{
//		To:      "Administrator@test.com",
//		Subject: "Security code",
//		Body:    "Your security code is **123456**.",
//	})
//
// LogSender is the default Sender for local and test hosts. It writes each
// message to the logger instead of delivering it.
package mailer
