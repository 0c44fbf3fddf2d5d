package api

import (
	"net/http"

	"github.com/jrreynao/widgetamericanrent/internal/config"
	"github.com/jrreynao/widgetamericanrent/internal/service"
)

type DiagHandler struct {
	Cfg           *config.Config
	Sender        service.MailSender
	Jobs          *service.JobService
	CatalogSource string
}

func NewDiagHandler(cfg *config.Config, sender service.MailSender, jobs *service.JobService, catalogSource string) *DiagHandler {
	return &DiagHandler{Cfg: cfg, Sender: sender, Jobs: jobs, CatalogSource: catalogSource}
}

func (h *DiagHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{OK: true, Service: "widgetrent-api"})
}

func (h *DiagHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{OK: true})
}

func (h *DiagHandler) smtpInfo() SMTPInfo {
	info := SMTPInfo{Transport: h.Sender.Name()}
	if h.Cfg.MailTransport != config.TransportSendGrid {
		info.Host = h.Cfg.SMTPHost
		info.Port = h.Cfg.SMTPPort
		info.Secure = h.Cfg.SMTPSecure
	} else {
		info.Secure = true
	}
	return info
}

// SMTPVerify dials and authenticates without sending; the result also feeds
// the env snapshot.
func (h *DiagHandler) SMTPVerify(w http.ResponseWriter, r *http.Request) {
	st := h.Jobs.ProbeSMTP(r.Context())
	if !st.OK {
		writeJSON(w, http.StatusInternalServerError, DiagErrorResponse{Error: st.Error, Code: st.Code})
		return
	}
	writeJSON(w, http.StatusOK, SMTPVerifyResponse{OK: true, SMTP: h.smtpInfo()})
}

// SMTPSendTest mails a plain test message to the admin address. The route is
// wrapped by auth.RequireTestKey.
func (h *DiagHandler) SMTPSendTest(w http.ResponseWriter, r *http.Request) {
	msg := service.Message{
		FromName:  "Test",
		FromEmail: h.Cfg.SMTPEnvelopeFrom(),
		To:        h.Cfg.AdminEmail,
		Subject:   "SMTP test",
		Text:      "Test message from /api/smtp-send-test",
	}

	res, err := h.Sender.Send(r.Context(), msg)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, DiagErrorResponse{
			Error:    err.Error(),
			Code:     service.DiagnoseSMTP(err).Code,
			Response: res.Response,
		})
		return
	}

	writeJSON(w, http.StatusOK, SendTestResponse{
		OK:        res.AcceptedAny(),
		MessageID: res.MessageID,
		Accepted:  nonNil(res.Accepted),
		Rejected:  nonNil(res.Rejected),
		Response:  res.Response,
	})
}

// EnvSnapshot shows the effective configuration with secrets masked.
func (h *DiagHandler) EnvSnapshot(w http.ResponseWriter, r *http.Request) {
	c := h.Cfg

	var pass *string
	if c.SMTPPass != "" {
		m := config.Mask(c.SMTPPass)
		pass = &m
	}

	snap := EnvSnapshot{
		OK: true,
		Mail: map[string]*string{
			"ADMIN_EMAIL":    strOrNil(c.AdminEmail),
			"MAIL_FROM_NAME": strOrNil(c.FromName),
			"MAIL_FROM":      strOrNil(c.FromEmail),
			"MAIL_TRANSPORT": strOrNil(c.MailTransport),
			"FRONTEND_BASE":  strOrNil(c.FrontendBase),
		},
		SMTP: SnapshotSMTP{
			Host:   c.SMTPHost,
			Port:   c.SMTPPort,
			Secure: c.SMTPSecure,
			Name:   c.SMTPName,
			User:   config.Mask(c.SMTPUser),
			Pass:   pass,
		},
		Features: map[string]any{
			"twilio":         c.TwilioEnabled(),
			"sendgrid":       c.MailTransport == config.TransportSendGrid && c.SendGridAPIKey != "",
			"catalog_source": h.CatalogSource,
		},
	}
	if st, ok := h.Jobs.LastProbe(); ok {
		snap.Probe = &st
	}
	writeJSON(w, http.StatusOK, snap)
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
