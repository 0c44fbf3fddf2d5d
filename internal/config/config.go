package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TransportSMTP     = "smtp"
	TransportSendGrid = "sendgrid"

	defaultAdminEmail    = "admin@americanrentacar.ar"
	defaultFromName      = "American Rent a Car"
	defaultSMTPHost      = "mail.americanrentacar.ar"
	defaultSMTPName      = "americanrentacar.ar"
	defaultBusinessWA    = "5491126584086"
	defaultAgencyAddress = "Av. de los Lagos 7008, B1670 Rincón de Milberg"
	defaultAgencyMapURL  = "https://g.co/kgs/gj5UX3Z"
)

var nonDigits = regexp.MustCompile(`[^0-9]`)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Mail
	AdminEmail    string
	FromName      string
	FromEmail     string
	MailTransport string

	// SMTP
	SMTPHost               string
	SMTPPort               int
	SMTPUser               string
	SMTPPass               string
	SMTPSecure             bool
	SMTPName               string
	SMTPTimeout            time.Duration
	SMTPInsecureSkipVerify bool
	SMTPTestKey            string

	SendGridAPIKey string

	// Templates
	FrontendBase     string
	TemplateCacheTTL time.Duration

	// Negocio
	BusinessWhatsApp string
	AgencyAddress    string
	AgencyMapURL     string

	// Twilio (opcional)
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string

	// Catalog sources, in priority order: file, database, embedded.
	CatalogPath string
	DatabaseURL string

	CORSAllowedOrigins []string

	SMTPProbeSchedule    string
	TemplateWarmSchedule string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() *Config {
	cfg := &Config{
		Port:     getEnv("PORT", "3000"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AdminEmail:    getEnv("ADMIN_EMAIL", defaultAdminEmail),
		FromName:      getEnv("MAIL_FROM_NAME", defaultFromName),
		MailTransport: strings.ToLower(getEnv("MAIL_TRANSPORT", TransportSMTP)),

		SMTPHost:               getEnv("SMTP_HOST", defaultSMTPHost),
		SMTPPort:               getEnvInt("SMTP_PORT", 465),
		SMTPUser:               getEnv("SMTP_USER", ""),
		SMTPPass:               getEnv("SMTP_PASS", ""),
		SMTPName:               getEnv("SMTP_NAME", defaultSMTPName),
		SMTPTimeout:            getEnvDuration("SMTP_TIMEOUT", 20*time.Second),
		SMTPInsecureSkipVerify: getEnvBool("SMTP_INSECURE_SKIP_VERIFY", true),
		SMTPTestKey:            getEnv("SMTP_TEST_KEY", ""),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		FrontendBase:     strings.TrimSuffix(getEnv("FRONTEND_BASE", ""), "/"),
		TemplateCacheTTL: getEnvDuration("TEMPLATE_CACHE_TTL", 5*time.Minute),

		AgencyAddress: getEnv("AGENCY_ADDRESS", defaultAgencyAddress),
		AgencyMapURL:  getEnv("AGENCY_MAP_URL", defaultAgencyMapURL),

		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppFrom: getEnv("TWILIO_WHATSAPP_FROM", ""),

		CatalogPath: getEnv("CATALOG_PATH", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		SMTPProbeSchedule:    getEnv("SMTP_PROBE_SCHEDULE", "@every 15m"),
		TemplateWarmSchedule: getEnv("TEMPLATE_WARM_SCHEDULE", "@every 10m"),
	}

	// SMTP_SECURE explícito gana; si no, SSL implícito sólo en 465.
	if v, ok := os.LookupEnv("SMTP_SECURE"); ok && v != "" {
		cfg.SMTPSecure = parseTruthy(v)
	} else {
		cfg.SMTPSecure = cfg.SMTPPort == 465
	}

	// MAIL_FROM, si no el admin.
	cfg.FromEmail = getEnv("MAIL_FROM", "")
	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.AdminEmail
	}

	wa := getEnv("WA_BUSINESS", "")
	if wa == "" {
		wa = getEnv("BUSINESS_WHATSAPP", defaultBusinessWA)
	}
	cfg.BusinessWhatsApp = nonDigits.ReplaceAllString(wa, "")

	if origins := getEnv("CORS_ALLOWED_ORIGINS", "*"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, trimmed)
			}
		}
	}

	return cfg
}

func (c *Config) Validate() error {
	switch c.MailTransport {
	case TransportSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when MAIL_TRANSPORT is 'smtp'")
		}
	case TransportSendGrid:
		if c.SendGridAPIKey == "" {
			return fmt.Errorf("SENDGRID_API_KEY is required when MAIL_TRANSPORT is 'sendgrid'")
		}
	default:
		return fmt.Errorf("MAIL_TRANSPORT must be either 'smtp' or 'sendgrid', got: %s", c.MailTransport)
	}

	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTP_PORT out of range: %d", c.SMTPPort)
	}
	if c.TemplateCacheTTL < 0 {
		return fmt.Errorf("TEMPLATE_CACHE_TTL must not be negative")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// TwilioEnabled reports whether business WhatsApp notifications can be sent.
func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioWhatsAppFrom != ""
}

// SMTPEnvelopeFrom is the envelope sender: the authenticated user when set.
func (c *Config) SMTPEnvelopeFrom() string {
	if c.SMTPUser != "" {
		return c.SMTPUser
	}
	return c.FromEmail
}

// Mask hides all but the first and last character of a secret.
func Mask(v string) string {
	if len(v) > 3 {
		return v[:1] + "***" + v[len(v)-1:]
	}
	return "***"
}

func parseTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
