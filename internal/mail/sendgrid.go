package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendgridMailer sends mail through the Sendgrid API.
type SendgridMailer struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

// NewSendgridMailer creates a Sendgrid-backed mailer.
func NewSendgridMailer(apiKey, fromName, fromAddr string) *SendgridMailer {
	return &SendgridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		fromAddr: fromAddr,
	}
}

// SendPasswordReset sends the password reset mail.
func (m *SendgridMailer) SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string) error {
	from := sgmail.NewEmail(m.fromName, m.fromAddr)
	to := sgmail.NewEmail(toName, toEmail)
	subject := "Reset your CrewCall password"
	plain := fmt.Sprintf("Hi %s,\n\nFollow this link to reset your password:\n%s\n\nIf you did not request a reset, ignore this mail.", toName, resetURL)
	html := fmt.Sprintf(`<p>Hi %s,</p><p>Follow <a href="%s">this link</a> to reset your password.</p><p>If you did not request a reset, ignore this mail.</p>`, toName, resetURL)

	message := sgmail.NewSingleEmail(from, subject, to, plain, html)
	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d", resp.StatusCode)
	}
	return nil
}
