// Package mailer delivers transactional email through SendGrid, or to the log
// when no SendGrid key is configured.
package mailer

import (
	"context"
	"errors"
	"net/mail"
)

// ErrNoRecipients is returned for messages without any recipient.
var ErrNoRecipients = errors.New("message has no recipients")

// Attachment is a file sent along with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is one outgoing email.
type Message struct {
	To          []mail.Address
	Subject     string
	TextContent string
	HTMLContent string
	Attachments []Attachment
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
