package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrreynao/widgetamericanrent/internal/config"
	"github.com/jrreynao/widgetamericanrent/internal/logger"
	"github.com/jrreynao/widgetamericanrent/internal/metrics"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// Twilio corta los mensajes de WhatsApp en 1600 caracteres.
const whatsAppMaxBody = 1600

// Notifier sends the quote summary to the business.
type Notifier interface {
	NotifyBusiness(ctx context.Context, body string) error
}

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// WhatsAppNotifier posts the summary to the business WhatsApp via Twilio.
type WhatsAppNotifier struct {
	api  messageCreator
	from string
	to   string
	log  *zap.Logger
}

// NewWhatsAppNotifier returns nil when Twilio is not configured.
func NewWhatsAppNotifier(cfg *config.Config) *WhatsAppNotifier {
	if !cfg.TwilioEnabled() || cfg.BusinessWhatsApp == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   cfg.TwilioAccountSID,
		Password:   cfg.TwilioAuthToken,
		AccountSid: cfg.TwilioAccountSID,
	})
	return newWhatsAppNotifier(client.Api, cfg.TwilioWhatsAppFrom, cfg.BusinessWhatsApp)
}

func newWhatsAppNotifier(api messageCreator, from, to string) *WhatsAppNotifier {
	return &WhatsAppNotifier{
		api:  api,
		from: whatsAppAddress(from),
		to:   whatsAppAddress(to),
		log:  logger.Named("whatsapp"),
	}
}

// whatsAppAddress turns "5491126584086" or "+549..." into "whatsapp:+549...".
func whatsAppAddress(n string) string {
	n = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(n), "whatsapp:"))
	if !strings.HasPrefix(n, "+") {
		n = "+" + n
	}
	return "whatsapp:" + n
}

func (n *WhatsAppNotifier) NotifyBusiness(ctx context.Context, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r := []rune(body); len(r) > whatsAppMaxBody {
		body = string(r[:whatsAppMaxBody-1]) + "…"
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(n.to)
	params.SetFrom(n.from)
	params.SetBody(body)

	resp, err := n.api.CreateMessage(params)
	if err != nil {
		metrics.WhatsAppNotificationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("twilio whatsapp: %w", err)
	}

	metrics.WhatsAppNotificationsTotal.WithLabelValues("ok").Inc()
	if resp != nil && resp.Sid != nil {
		n.log.Info("business notified", zap.String("sid", *resp.Sid))
	}
	return nil
}
