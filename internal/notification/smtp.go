// Package notification emails the team when a qualified lead comes in.
// Delivery goes over the firm's own SMTP server via go-mail.
package notification

import (
	"context"
	"fmt"
	"net"
	"time"

	"nomadtax_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers notification emails.
type Sender interface {
	SendQualifiedLead(ctx context.Context, data QualifiedLeadData) error
}

// SMTPSender implements Sender over a direct SMTP connection.
type SMTPSender struct {
	cfg config.EmailConfig
}

func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.cfg.GetEmailFromName(), s.cfg.GetEmailFromAddress()); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.cfg.GetSMTPHost(),
		gomail.WithPort(s.cfg.GetSMTPPort()),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.GetSMTPUsername()),
		gomail.WithPassword(s.cfg.GetSMTPPassword()),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// SendQualifiedLead notifies the configured team address about a new
// qualified lead.
func (s *SMTPSender) SendQualifiedLead(ctx context.Context, data QualifiedLeadData) error {
	content, err := renderTemplate("qualified_lead.html", data)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("New qualified lead: %s (score %d)", data.Name, data.Score)
	return s.send(ctx, s.cfg.GetNotifyAddress(), subject, content)
}
