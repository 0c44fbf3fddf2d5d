package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jrreynao/widgetamericanrent/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// RequestID propagates or assigns X-Request-ID and attaches a request logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		l := logger.L().With(zap.String("request_id", id))
		next.ServeHTTP(w, r.WithContext(logger.ToContext(r.Context(), l)))
	})
}

// AccessLog writes one zap line per request through gorilla's logging handler.
func AccessLog(next http.Handler) http.Handler {
	log := logger.Named("http")
	return handlers.CustomLoggingHandler(io.Discard, next, func(_ io.Writer, p handlers.LogFormatterParams) {
		log.Info("request",
			zap.String("method", p.Request.Method),
			zap.String("path", p.URL.Path),
			zap.Int("status", p.StatusCode),
			zap.Int("size", p.Size),
			zap.Duration("duration", time.Since(p.TimeStamp)),
			zap.String("request_id", p.Request.Header.Get(requestIDHeader)),
		)
	})
}

type recoveryLogger struct{ l *zap.Logger }

func (r recoveryLogger) Println(v ...interface{}) {
	r.l.Error("panic recovered", zap.String("panic", fmt.Sprint(v...)))
}

// Recovery turns panics into 500s and logs them.
func Recovery(next http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{l: logger.Named("recovery")}),
		handlers.PrintRecoveryStack(false),
	)(next)
}

// CORS allows the widget to call the API from any configured origin.
func CORS(origins []string) func(http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)
}
