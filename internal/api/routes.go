package api

import (
	"io/fs"
	"net/http"

	"github.com/jrreynao/widgetamericanrent/internal/auth"
	"github.com/jrreynao/widgetamericanrent/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Quote     *QuoteHandler
	Diag      *DiagHandler
	TestKey   *auth.TestKey
	Templates fs.FS
}

func NewRouter(d RouterDeps) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID)
	r.Use(metrics.Middleware)

	// Submission
	for _, path := range []string{"/send-reserva", "/api/send-reserva", "/backend/send-reserva"} {
		r.HandleFunc(path, d.Quote.SendReserva)
	}

	// Health
	r.HandleFunc("/", d.Diag.Root).Methods(http.MethodGet)
	for _, path := range []string{"/healthz", "/api/healthz", "/backend/healthz"} {
		r.HandleFunc(path, d.Diag.Health).Methods(http.MethodGet)
	}

	// Diagnostics
	r.HandleFunc("/api/smtp-verify", d.Diag.SMTPVerify).Methods(http.MethodGet)
	r.Handle("/api/smtp-send-test", auth.RequireTestKey(d.TestKey)(http.HandlerFunc(d.Diag.SMTPSendTest))).
		Methods(http.MethodPost)
	r.HandleFunc("/api/env-snapshot", d.Diag.EnvSnapshot).Methods(http.MethodGet)

	// Plantillas embebidas
	if d.Templates != nil {
		files := http.FileServer(http.FS(d.Templates))
		for _, prefix := range []string{"/api/email_templates/", "/email_templates/"} {
			r.PathPrefix(prefix).Handler(http.StripPrefix(prefix, files)).Methods(http.MethodGet, http.MethodHead)
		}
	}

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}
