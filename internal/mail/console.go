package mail

import (
	"context"
	"log"
)

// ConsoleMailer logs mails instead of sending them. Used in development when
// no Sendgrid key is configured.
type ConsoleMailer struct{}

// NewConsoleMailer creates a console mailer.
func NewConsoleMailer() *ConsoleMailer {
	return &ConsoleMailer{}
}

// SendPasswordReset logs the reset link.
func (m *ConsoleMailer) SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string) error {
	log.Printf("mail[console] password reset for %s <%s>: %s", toName, toEmail, resetURL)
	return nil
}
