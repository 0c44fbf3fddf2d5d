package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jrreynao/widgetamericanrent/internal/entities"
	apperrors "github.com/jrreynao/widgetamericanrent/internal/errors"
	"github.com/jrreynao/widgetamericanrent/internal/logger"
	"github.com/jrreynao/widgetamericanrent/internal/service"

	"go.uber.org/zap"
)

// Las plantillas inline pueden ser grandes.
const maxQuoteBody = 2 << 20

var errUsePost = apperrors.NewHTTPError(http.StatusMethodNotAllowed, "Use POST")

type QuoteHandler struct {
	Service *service.QuoteService
}

func NewQuoteHandler(svc *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{Service: svc}
}

// SendReserva handles POST /send-reserva and its /api and /backend aliases.
func (h *QuoteHandler) SendReserva(w http.ResponseWriter, r *http.Request) {
	dryRunQuery := isTruthy(r.URL.Query().Get("dryRun"))

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
		if dryRunQuery {
			writeJSON(w, http.StatusOK, entities.QuoteResponse{OK: true, Mode: "dry-run", Method: http.MethodGet})
			return
		}
		writeQuoteError(w, r, errUsePost)
		return
	case http.MethodPost:
	default:
		writeQuoteError(w, r, errUsePost)
		return
	}

	var req entities.QuoteRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxQuoteBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		// Un body ilegible sólo importa si no es un dry run.
		if !dryRunQuery {
			writeQuoteError(w, r, apperrors.NewHTTPError(http.StatusBadRequest, "JSON inválido"))
			return
		}
	}
	if dryRunQuery {
		req.DryRun = entities.FlexBool{Set: true, Value: true}
	}

	res, err := h.Service.Submit(r.Context(), &req)
	if err != nil {
		writeQuoteError(w, r, err)
		return
	}
	if res.DryRun {
		writeJSON(w, http.StatusOK, entities.QuoteResponse{OK: true, Mode: "dry-run"})
		return
	}
	writeJSON(w, http.StatusOK, entities.QuoteResponse{OK: true})
}

func writeQuoteError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.StatusCode(err)

	var te *apperrors.TransportError
	switch {
	case errors.As(err, &te):
		writeJSON(w, status, entities.ErrorResponse{Error: te.Error(), Code: te.Code, Response: te.Response})
	default:
		writeJSON(w, status, entities.ErrorResponse{Error: err.Error()})
	}

	if status >= http.StatusInternalServerError {
		logger.From(r.Context()).Error("send-reserva failed", zap.Int("status", status), zap.Error(err))
	}
}
