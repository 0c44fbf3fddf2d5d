package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "widgetrent"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Quote pipeline metrics
var (
	QuoteSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_submissions_total",
			Help:      "Quote submissions by outcome (ok, dry_run, invalid, template_error, transport_error, not_accepted)",
		},
		[]string{"outcome"},
	)

	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_total",
			Help:      "Outbound emails by kind (cliente, admin, test) and status",
		},
		[]string{"kind", "status"},
	)

	TemplateFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_fetches_total",
			Help:      "Template resolutions by source (inline, cache, remote, embedded) and status",
		},
		[]string{"source", "status"},
	)

	WhatsAppNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "whatsapp_notifications_total",
			Help:      "Business WhatsApp notifications sent through Twilio",
		},
		[]string{"status"},
	)

	SMTPUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "smtp_up",
			Help:      "1 if the last scheduled SMTP probe succeeded",
		},
	)
)
