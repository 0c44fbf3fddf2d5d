package entities

import (
	"bytes"
	"encoding/json"
)

// QuoteRequest is the body accepted by the send-reserva endpoint.
type QuoteRequest struct {
	Form        *BookingForm `json:"form"`
	HTMLCliente string       `json:"htmlCliente,omitempty"`
	HTMLAdmin   string       `json:"htmlAdmin,omitempty"`
	DryRun      FlexBool     `json:"dryRun,omitempty"`
}

// UnmarshalJSON leaves Form nil unless "form" is an object. Mistyped inline
// templates are ignored.
func (q *QuoteRequest) UnmarshalJSON(data []byte) error {
	*q = QuoteRequest{}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if form := bytes.TrimSpace(raw["form"]); len(form) > 0 && form[0] == '{' {
		q.Form = &BookingForm{}
		if err := json.Unmarshal(form, q.Form); err != nil {
			return err
		}
	}
	_ = json.Unmarshal(raw["htmlCliente"], &q.HTMLCliente)
	_ = json.Unmarshal(raw["htmlAdmin"], &q.HTMLAdmin)
	if dry, ok := raw["dryRun"]; ok {
		_ = q.DryRun.UnmarshalJSON(dry)
	}
	return nil
}

type QuoteResponse struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Method string `json:"method,omitempty"`
}

type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Response string `json:"response,omitempty"`
}
