package service

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/jrreynao/widgetamericanrent/internal/config"
	"github.com/jrreynao/widgetamericanrent/internal/logger"

	"github.com/go-mail/mail"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SMTPSender sends through an authenticated SMTP relay with go-mail.
type SMTPSender struct {
	Host               string
	Port               int
	User               string
	Pass               string
	SSL                bool // TLS implícito (465); si no, STARTTLS oportunista
	LocalName          string
	Timeout            time.Duration
	InsecureSkipVerify bool
	EnvelopeFrom       string

	log *zap.Logger
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		Host:               cfg.SMTPHost,
		Port:               cfg.SMTPPort,
		User:               cfg.SMTPUser,
		Pass:               cfg.SMTPPass,
		SSL:                cfg.SMTPSecure,
		LocalName:          cfg.SMTPName,
		Timeout:            cfg.SMTPTimeout,
		InsecureSkipVerify: cfg.SMTPInsecureSkipVerify,
		EnvelopeFrom:       cfg.SMTPEnvelopeFrom(),
		log:                logger.Named("smtp"),
	}
}

func (s *SMTPSender) Name() string { return config.TransportSMTP }

func (s *SMTPSender) dialer() *mail.Dialer {
	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.SSL = s.SSL
	d.LocalName = s.LocalName
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify,
	}
	if s.Timeout > 0 {
		d.Timeout = s.Timeout
	}
	if !s.SSL {
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	}
	return d
}

// Send delivers one message. go-mail only returns nil once the server took
// the recipient and the DATA, so a nil error means accepted.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (SendResult, error) {
	if err := validateMessage(msg); err != nil {
		return SendResult{Rejected: []string{msg.To}}, err
	}
	if err := ctx.Err(); err != nil {
		return SendResult{}, err
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.messageDomain())

	m := mail.NewMessage()
	m.SetAddressHeader("From", msg.FromEmail, msg.FromName)
	if s.EnvelopeFrom != "" && s.EnvelopeFrom != msg.FromEmail {
		m.SetHeader("Sender", s.EnvelopeFrom)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", messageID)
	m.SetDateHeader("Date", time.Now())

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.Text != "":
		m.SetBody("text/plain", msg.Text)
	default:
		m.SetBody("text/html", msg.HTML)
	}

	log := s.log.With(zap.String("to", msg.To), zap.String("message_id", messageID))
	if err := s.dialer().DialAndSend(m); err != nil {
		log.Error("smtp send failed", zap.Error(err), zap.String("code", DiagnoseSMTP(err).Code))
		return SendResult{MessageID: messageID, Rejected: []string{msg.To}, Response: err.Error()},
			fmt.Errorf("smtp send: %w", err)
	}

	log.Info("email sent")
	return SendResult{MessageID: messageID, Accepted: []string{msg.To}, Response: "250 OK"}, nil
}

// Verify dials and authenticates, then hangs up.
func (s *SMTPSender) Verify(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sc, err := s.dialer().Dial()
	if err != nil {
		return fmt.Errorf("smtp verify: %w", err)
	}
	return sc.Close()
}

func (s *SMTPSender) messageDomain() string {
	if s.LocalName != "" {
		return s.LocalName
	}
	return s.Host
}
