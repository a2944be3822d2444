package email

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/tourbook/tourbook/internal/domain/reservation"
	"github.com/tourbook/tourbook/internal/shared/biztime"
	"github.com/tourbook/tourbook/internal/shared/config"
)

// ErrEmailServiceNotConfigured is returned when SMTP host or recipients are missing.
var ErrEmailServiceNotConfigured = errors.New("email service not configured")

// messageSender is satisfied by *gomail.Dialer.
type messageSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPEmailService struct {
	config config.EmailConfig
	sender messageSender
}

func NewSMTPEmailService(cfg config.EmailConfig) *SMTPEmailService {
	return &SMTPEmailService{
		config: cfg,
		sender: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}
}

// IsConfigured checks if alerts can be delivered
func (s *SMTPEmailService) IsConfigured() bool {
	return s.config.SMTPHost != "" && len(s.config.ReviewRecipients) > 0
}

// SendIntegrityAlert tells the review recipients about a gateway notification
// that was rejected and stored for manual review.
func (s *SMTPEmailService) SendIntegrityAlert(ctx context.Context, n *reservation.FlaggedNotification) error {
	if !s.IsConfigured() {
		return ErrEmailServiceNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	orderRef := n.OrderReference
	if orderRef == "" {
		orderRef = "unknown"
	}
	subject := fmt.Sprintf("[payments] notification flagged for review: %s (%s)", n.Reason, orderRef)
	received := biztime.FormatInBizTimezone(n.ReceivedAt, "2006-01-02 15:04:05 MST")

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Payment notification flagged for review</h2>
			<p>A gateway notification was rejected and has not been applied to any reservation.</p>
			<table>
				<tr><td>Review ID</td><td>%s</td></tr>
				<tr><td>Reason</td><td>%s</td></tr>
				<tr><td>Order reference</td><td>%s</td></tr>
				<tr><td>Source IP</td><td>%s</td></tr>
				<tr><td>Received</td><td>%s</td></tr>
				<tr><td>Detail</td><td>%s</td></tr>
			</table>
			<p>The signed envelope is stored verbatim in the review queue.</p>
		</body>
		</html>
	`,
		html.EscapeString(n.ID),
		html.EscapeString(string(n.Reason)),
		html.EscapeString(orderRef),
		html.EscapeString(n.SourceIP),
		received,
		html.EscapeString(n.Detail),
	)

	plainBody := fmt.Sprintf(`
Payment notification flagged for review

A gateway notification was rejected and has not been applied to any reservation.

Review ID:       %s
Reason:          %s
Order reference: %s
Source IP:       %s
Received:        %s
Detail:          %s

The signed envelope is stored verbatim in the review queue.
	`, n.ID, n.Reason, orderRef, n.SourceIP, received, n.Detail)

	return s.sendEmail(s.config.ReviewRecipients, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) sendEmail(to []string, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	if s.config.FromName != "" {
		m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	} else {
		m.SetHeader("From", s.config.FromAddress)
	}
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", strings.TrimSpace(plainBody))
	m.AddAlternative("text/html", htmlBody)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
