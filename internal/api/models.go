package api

import "github.com/jrreynao/widgetamericanrent/internal/service"

// Health
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service,omitempty"`
}

// SMTP diagnostics
type SMTPInfo struct {
	Transport string `json:"transport"`
	Host      string `json:"host,omitempty"`
	Port      int    `json:"port,omitempty"`
	Secure    bool   `json:"secure"`
}

type SMTPVerifyResponse struct {
	OK   bool     `json:"ok"`
	SMTP SMTPInfo `json:"smtp"`
}

type DiagErrorResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Response string `json:"response,omitempty"`
}

type SendTestResponse struct {
	OK        bool     `json:"ok"`
	MessageID string   `json:"messageId"`
	Accepted  []string `json:"accepted"`
	Rejected  []string `json:"rejected"`
	Response  string   `json:"response"`
}

// Env snapshot
type EnvSnapshot struct {
	OK       bool                 `json:"ok"`
	Mail     map[string]*string   `json:"mail"`
	SMTP     SnapshotSMTP         `json:"smtp"`
	Features map[string]any       `json:"features"`
	Probe    *service.ProbeStatus `json:"probe,omitempty"`
}

type SnapshotSMTP struct {
	Host   string  `json:"host"`
	Port   int     `json:"port"`
	Secure bool    `json:"secure"`
	Name   string  `json:"name"`
	User   string  `json:"user"`
	Pass   *string `json:"pass"`
}
