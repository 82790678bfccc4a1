package mailer

import (
	"context"
	"fmt"
	"html"

	"github.com/claimsaver/go-services/internal/config"
	"github.com/resend/resend-go/v2"
)

// Mailer sends transactional email. Satisfied by *ResendMailer and test fakes.
type Mailer interface {
	SendShareEmail(ctx context.Context, to, senderName, documentName, link, message string) error
}

// ResendMailer implements Mailer on the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(cfg config.ResendConfig) *ResendMailer {
	from := cfg.FromEmail
	if from == "" {
		from = "ClaimSaver+ <noreply@claimsaverplus.com>"
	}
	return &ResendMailer{client: resend.NewClient(cfg.APIKey), from: from}
}

// SendShareEmail delivers a document share link. The link already carries the
// signed token; the mail body never contains document content.
func (m *ResendMailer) SendShareEmail(ctx context.Context, to, senderName, documentName, link, message string) error {
	body := fmt.Sprintf(
		`<p>%s shared the document <strong>%s</strong> with you via ClaimSaver+.</p>`,
		html.EscapeString(senderName), html.EscapeString(documentName),
	)
	if message != "" {
		body += fmt.Sprintf(`<blockquote>%s</blockquote>`, html.EscapeString(message))
	}
	body += fmt.Sprintf(`<p><a href="%s">View document</a></p><p>The link expires automatically.</p>`, link)

	req := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: fmt.Sprintf("%s shared %q with you", senderName, documentName),
		Html:    body,
	}
	if _, err := m.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}
