package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrreynao/widgetamericanrent/internal/entities"
	apperrors "github.com/jrreynao/widgetamericanrent/internal/errors"
	"github.com/jrreynao/widgetamericanrent/internal/logger"
	"github.com/jrreynao/widgetamericanrent/internal/metrics"

	"go.uber.org/zap"
)

const (
	customerSubject = "¡Recibimos tu solicitud en American Rent a Car! 🎉"
	adminSubjectFmt = "Nueva solicitud de cotización - American Rent a Car - %s"

	outcomeOK          = "ok"
	outcomeDryRun      = "dry_run"
	outcomeInvalid     = "invalid"
	outcomeTemplate    = "template_error"
	outcomeTransport   = "transport_error"
	outcomeNotAccepted = "not_accepted"

	msgMissingForm = "Faltan datos"
)

type QuoteConfig struct {
	AdminEmail string
	FromName   string
	FromEmail  string
}

// QuoteResult describes a handled submission.
type QuoteResult struct {
	DryRun   bool
	OrderID  int
	Customer SendResult
	Admin    SendResult
}

// QuoteService runs one submission: templates, tokens, render, two sends.
type QuoteService struct {
	templates TemplateResolver
	deriver   *Deriver
	sender    MailSender
	notifier  Notifier
	cfg       QuoteConfig
}

func NewQuoteService(templates TemplateResolver, deriver *Deriver, sender MailSender, cfg QuoteConfig) *QuoteService {
	return &QuoteService{
		templates: templates,
		deriver:   deriver,
		sender:    sender,
		cfg:       cfg,
	}
}

// WithNotifier enables the business WhatsApp notification.
func (s *QuoteService) WithNotifier(n Notifier) *QuoteService {
	s.notifier = n
	return s
}

// Submit handles one request. Dry runs return before anything is read or sent.
// The customer email goes first; if it fails outright the admin email is not
// attempted. A rejected customer email still lets the admin email go out, and
// neither send is undone when the other fails.
func (s *QuoteService) Submit(ctx context.Context, req *entities.QuoteRequest) (*QuoteResult, error) {
	log := logger.From(ctx).Named("quote")

	if req == nil {
		req = &entities.QuoteRequest{}
	}
	if req.DryRun.Value {
		metrics.QuoteSubmissionsTotal.WithLabelValues(outcomeDryRun).Inc()
		return &QuoteResult{DryRun: true}, nil
	}
	if req.Form == nil {
		metrics.QuoteSubmissionsTotal.WithLabelValues(outcomeInvalid).Inc()
		return nil, &apperrors.ValidationError{Message: msgMissingForm}
	}

	clienteTpl, adminTpl, err := s.templates.Resolve(ctx, req.HTMLCliente, req.HTMLAdmin)
	if err != nil {
		metrics.QuoteSubmissionsTotal.WithLabelValues(outcomeTemplate).Inc()
		log.Error("template retrieval failed", zap.Error(err))
		return nil, err
	}

	quote := s.deriver.Build(req.Form)
	log = log.With(zap.Int("order_id", quote.OrderID))
	result := &QuoteResult{OrderID: quote.OrderID}

	customer := Message{
		FromName:  s.cfg.FromName,
		FromEmail: s.cfg.FromEmail,
		To:        req.Form.Datos.Email,
		Subject:   customerSubject,
		HTML:      Render(clienteTpl, quote.Tokens),
	}
	result.Customer, err = s.send(ctx, "cliente", customer)
	if err != nil {
		log.Error("customer email failed", zap.Error(err))
		return result, err
	}

	admin := Message{
		FromName:  s.cfg.FromName,
		FromEmail: s.cfg.FromEmail,
		To:        s.cfg.AdminEmail,
		Subject:   fmt.Sprintf(adminSubjectFmt, req.Form.Datos.Nombre),
		HTML:      Render(adminTpl, quote.Tokens),
	}
	result.Admin, err = s.send(ctx, "admin", admin)
	if err != nil {
		log.Error("admin email failed", zap.Error(err))
		return result, err
	}

	if !result.Customer.AcceptedAny() || !result.Admin.AcceptedAny() {
		metrics.QuoteSubmissionsTotal.WithLabelValues(outcomeNotAccepted).Inc()
		log.Warn("email not accepted",
			zap.Bool("customer_accepted", result.Customer.AcceptedAny()),
			zap.Bool("admin_accepted", result.Admin.AcceptedAny()))
		return result, apperrors.ErrNotAccepted
	}

	metrics.QuoteSubmissionsTotal.WithLabelValues(outcomeOK).Inc()
	log.Info("quote emails sent",
		zap.String("customer_message_id", result.Customer.MessageID),
		zap.String("admin_message_id", result.Admin.MessageID))

	s.notifyBusiness(ctx, log, quote.WhatsAppText)
	return result, nil
}

func (s *QuoteService) send(ctx context.Context, kind string, msg Message) (SendResult, error) {
	res, err := s.sender.Send(ctx, msg)
	if err != nil {
		metrics.EmailsTotal.WithLabelValues(kind, "error").Inc()
		metrics.QuoteSubmissionsTotal.WithLabelValues(outcomeTransport).Inc()

		var te *apperrors.TransportError
		if errors.As(err, &te) {
			return res, err
		}
		response := res.Response
		if response == "" {
			response = err.Error()
		}
		return res, &apperrors.TransportError{
			Recipient: msg.To,
			Code:      DiagnoseSMTP(err).Code,
			Response:  response,
			Err:       err,
		}
	}
	status := "accepted"
	if !res.AcceptedAny() {
		status = "rejected"
	}
	metrics.EmailsTotal.WithLabelValues(kind, status).Inc()
	return res, nil
}

// notifyBusiness is best effort; it never changes the submission result.
func (s *QuoteService) notifyBusiness(ctx context.Context, log *zap.Logger, text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyBusiness(ctx, text); err != nil {
		log.Warn("business whatsapp notification failed", zap.Error(err))
	}
}
