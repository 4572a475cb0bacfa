package notifier

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"slot-bot/i18n"
)

// MailClient is satisfied by *sendgrid.Client.
type MailClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type EmailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	To        []string
}

// EmailChannel mails announcements to operators through SendGrid.
type EmailChannel struct {
	client MailClient
	from   *mail.Email
	to     []string
	loc    *time.Location
	locale i18n.Locale
}

// NewEmailChannel returns nil when no API key or recipient is configured.
func NewEmailChannel(cfg EmailConfig, loc *time.Location, locale i18n.Locale) *EmailChannel {
	if cfg.APIKey == "" || len(cfg.To) == 0 {
		return nil
	}
	return NewEmailChannelWithClient(sendgrid.NewSendClient(cfg.APIKey), cfg, loc, locale)
}

func NewEmailChannelWithClient(client MailClient, cfg EmailConfig, loc *time.Location, locale i18n.Locale) *EmailChannel {
	if cfg.FromName == "" {
		cfg.FromName = "Slot Bot"
	}
	if loc == nil {
		loc = time.UTC
	}
	return &EmailChannel{
		client: client,
		from:   mail.NewEmail(cfg.FromName, cfg.FromEmail),
		to:     cfg.To,
		loc:    loc,
		locale: locale,
	}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Send(ctx context.Context, a Announcement) error {
	body := FormatAnnouncement(a, c.loc, c.locale)
	htmlBody := strings.ReplaceAll(html.EscapeString(body), "\n", "<br>")
	subject := i18n.T(c.locale, i18n.OperatorSubject, a.AppointmentID, a.ServiceName)

	var errs []error
	for _, addr := range c.to {
		msg := mail.NewSingleEmail(c.from, subject, mail.NewEmail("", addr), body, htmlBody)
		resp, err := c.client.SendWithContext(ctx, msg)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", addr, err))
			continue
		}
		if resp.StatusCode >= 400 {
			errs = append(errs, fmt.Errorf("%s: sendgrid returned status %d", addr, resp.StatusCode))
		}
	}
	return errors.Join(errs...)
}
