package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrreynao/widgetamericanrent/internal/config"
	"github.com/jrreynao/widgetamericanrent/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const sendGridHost = "https://api.sendgrid.com"

// SendGridSender sends through the SendGrid v3 API. A 2xx reply means the
// recipient was accepted.
type SendGridSender struct {
	apiKey string
	host   string
	log    *zap.Logger
}

func NewSendGridSender(cfg *config.Config) *SendGridSender {
	return &SendGridSender{apiKey: cfg.SendGridAPIKey, host: sendGridHost, log: logger.Named("sendgrid")}
}

// WithHost points the sender at another API host.
func (s *SendGridSender) WithHost(host string) *SendGridSender {
	s.host = host
	return s
}

func (s *SendGridSender) Name() string { return config.TransportSendGrid }

func (s *SendGridSender) Send(ctx context.Context, msg Message) (SendResult, error) {
	if err := validateMessage(msg); err != nil {
		return SendResult{Rejected: []string{msg.To}}, err
	}

	from := sgmail.NewEmail(msg.FromName, msg.FromEmail)
	to := sgmail.NewEmail("", msg.To)
	email := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	req := sendgrid.GetRequest(s.apiKey, "/v3/mail/send", s.host)
	req.Method = http.MethodPost
	client := &sendgrid.Client{Request: req}

	resp, err := client.SendWithContext(ctx, email)
	if err != nil {
		s.log.Error("sendgrid send failed", zap.String("to", msg.To), zap.Error(err))
		return SendResult{Rejected: []string{msg.To}}, fmt.Errorf("sendgrid send: %w", err)
	}

	result := SendResult{Response: fmt.Sprintf("%d %s", resp.StatusCode, resp.Body)}
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		result.MessageID = ids[0]
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result.Accepted = []string{msg.To}
		s.log.Info("email sent", zap.String("to", msg.To), zap.Int("status", resp.StatusCode))
		return result, nil
	}

	// Rechazo sin error de red: el orquestador lo trata como no aceptado.
	result.Rejected = []string{msg.To}
	s.log.Warn("sendgrid rejected message", zap.String("to", msg.To), zap.Int("status", resp.StatusCode), zap.String("body", resp.Body))
	return result, nil
}

// Verify checks the API key against the scopes endpoint.
func (s *SendGridSender) Verify(ctx context.Context) error {
	req := sendgrid.GetRequest(s.apiKey, "/v3/scopes", s.host)
	req.Method = http.MethodGet

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid verify: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sendgrid verify: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// NewMailSender builds the transport selected by MAIL_TRANSPORT.
func NewMailSender(cfg *config.Config) MailSender {
	if cfg.MailTransport == config.TransportSendGrid {
		return NewSendGridSender(cfg)
	}
	return NewSMTPSender(cfg)
}
