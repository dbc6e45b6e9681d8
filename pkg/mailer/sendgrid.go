package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendgridSender sends messages through the SendGrid v3 mail API.
type SendgridSender struct {
	client     *sendgrid.Client
	from       *sgmail.Email
	subjPrefix string
	logger     zerolog.Logger
}

// NewSendgridSender constructs a SendGrid sender.
func NewSendgridSender(apiKey string, from mail.Address, appName string, logger zerolog.Logger) (*SendgridSender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("sendgrid api key must be provided")
	}

	prefix := ""
	if appName != "" {
		prefix = "[" + appName + "] "
	}

	return &SendgridSender{
		client:     sendgrid.NewSendClient(apiKey),
		from:       sgmail.NewEmail(from.Name, from.Address),
		subjPrefix: prefix,
		logger:     logger.With().Str("component", "sendgrid").Logger(),
	}, nil
}

// Send delivers the message and fails on any non-2xx API status.
func (s *SendgridSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	res, err := s.client.SendWithContext(ctx, s.prepare(msg))
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sending email: status %d: %s", res.StatusCode, res.Body)
	}

	s.logger.Debug().Int("status", res.StatusCode).Str("subject", msg.Subject).Msg("email accepted")
	return nil
}

func (s *SendgridSender) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)

	if msg.TextContent != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	}
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}

	for _, at := range msg.Attachments {
		m.AddAttachment(&sgmail.Attachment{
			Content:     base64.StdEncoding.EncodeToString(at.Content),
			Type:        at.ContentType,
			Filename:    at.Filename,
			Disposition: "attachment",
		})
	}

	return m
}
