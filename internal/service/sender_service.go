package service

import (
	"context"
	"fmt"
	"net/mail"
)

// Message is one outbound HTML email.
type Message struct {
	FromName  string
	FromEmail string
	To        string
	Subject   string
	HTML      string
	Text      string
}

// From formats the From header as "Name <email>".
func (m Message) From() string {
	if m.FromName == "" {
		return m.FromEmail
	}
	return (&mail.Address{Name: m.FromName, Address: m.FromEmail}).String()
}

// SendResult is what the transport reported. A send without error can still
// leave the recipient out of Accepted.
type SendResult struct {
	MessageID string
	Accepted  []string
	Rejected  []string
	Response  string
}

func (r SendResult) AcceptedAny() bool { return len(r.Accepted) > 0 }

// MailSender is implemented by the SMTP and SendGrid transports.
type MailSender interface {
	Send(ctx context.Context, msg Message) (SendResult, error)
	// Verify checks connectivity and credentials without sending.
	Verify(ctx context.Context) error
	Name() string
}

func validateMessage(msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("missing recipient")
	}
	if msg.FromEmail == "" {
		return fmt.Errorf("missing sender")
	}
	return nil
}
