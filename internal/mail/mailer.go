package mail

import "context"

// Mailer sends the out-of-band mails the service needs. Implementations must
// be safe for concurrent use.
type Mailer interface {
	SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string) error
}
