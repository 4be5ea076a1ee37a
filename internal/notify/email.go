package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

const defaultFromName = "HomeFinder Concierge"

// CategorySiteVisit tags booking alerts so agents can filter them.
const CategorySiteVisit = "site_visit"

// EmailSender delivers agent emails (SendGrid, SES or the stub).
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is one agent email.
type EmailMessage struct {
	To       string
	ToName   string
	Subject  string
	Body     string // plain text
	HTML     string
	Category string
}

// NewBookingEmail turns a booking alert made of "Label: value" lines into an
// email whose subject names the property and whose HTML body is a table of
// the booking fields. Lines without a label become paragraphs.
func NewBookingEmail(to, text string) EmailMessage {
	msg := EmailMessage{To: to, Subject: bookingEmailSubject, Body: text, Category: CategorySiteVisit}

	var (
		paras, rows strings.Builder
		property    string
		booking     string
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		label, value, ok := strings.Cut(line, ": ")
		if !ok {
			fmt.Fprintf(&paras, "<p>%s</p>\n", html.EscapeString(line))
			continue
		}
		switch label {
		case "Property":
			property = value
		case "Booking":
			booking = value
		}
		fmt.Fprintf(&rows, "<tr><th align=\"left\">%s</th><td>%s</td></tr>\n", html.EscapeString(label), html.EscapeString(value))
	}
	if rows.Len() == 0 {
		return msg
	}
	msg.HTML = paras.String() + "<table>\n" + rows.String() + "</table>\n"

	if property != "" {
		msg.Subject = bookingEmailSubject + ": " + property
		if booking != "" {
			msg.Subject += " (" + booking + ")"
		}
	}
	return msg
}

type sendgridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridSender sends emails via SendGrid API.
type SendGridSender struct {
	client    sendgridClient
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender creates a new SendGrid email sender. It returns nil when
// no API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Send sends an email via SendGrid.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)

	htmlBody := msg.HTML
	if htmlBody == "" {
		htmlBody = msg.Body
	}
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, htmlBody)
	if msg.Category != "" {
		message.AddCategories(msg.Category)
	}

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("agent email via sendgrid failed", "error", err, "to", msg.To, "category", msg.Category)
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}

	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", msg.To)
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	s.logger.Info("agent email sent via sendgrid", "to", msg.To, "subject", msg.Subject, "category", msg.Category, "status", response.StatusCode)
	return nil
}

// StubEmailSender logs agent emails when no provider is configured.
type StubEmailSender struct {
	logger *logging.Logger
}

// NewStubEmailSender creates a StubEmailSender.
func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

// Send logs the email.
func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("agent email not sent, no provider configured", "to", msg.To, "subject", msg.Subject, "category", msg.Category)
	return nil
}
