package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// Helper for common errors
var (
	ErrForbidden = func(msg string) *HTTPError { return NewHTTPError(http.StatusForbidden, msg) }
)

// ErrNotAccepted means the transport answered without error but at least one
// of the two emails was not accepted.
var ErrNotAccepted = stderrors.New("No se pudo enviar uno o ambos correos")

// ValidationError is a client mistake in the submitted payload.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TemplateRetrievalError means an email template could not be fetched. Nothing
// has been sent when it is returned.
type TemplateRetrievalError struct {
	URL    string
	Status int
	Err    error
}

func (e *TemplateRetrievalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("No se pudo obtener la plantilla: %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("No se pudo obtener la plantilla: %s (status %d)", e.URL, e.Status)
}

func (e *TemplateRetrievalError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failed or non-accepted send. Code is the diagnostic
// class (auth, tls, dial, timeout, rejected, ...) and Response the raw server reply.
type TransportError struct {
	Recipient string
	Code      string
	Response  string
	Err       error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("transport did not accept message for %s", e.Recipient)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusCode maps an error from the quote pipeline to an HTTP status.
func StatusCode(err error) int {
	var httpErr *HTTPError
	var validationErr *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.As(err, &httpErr):
		return httpErr.Code
	case stderrors.As(err, &validationErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
