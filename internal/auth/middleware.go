package auth

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/jrreynao/widgetamericanrent/internal/errors"

	"golang.org/x/crypto/bcrypt"
)

const maxKeyBody = 64 << 10

// TestKey guards the diagnostic test-send route. The configured value may be
// the plain key or a bcrypt hash of it.
type TestKey struct {
	configured string
}

func NewTestKey(configured string) *TestKey {
	return &TestKey{configured: strings.TrimSpace(configured)}
}

// Enabled reports whether a key is configured at all.
func (k *TestKey) Enabled() bool { return k.configured != "" }

// Matches compares a presented key in constant time. An unset key matches nothing.
func (k *TestKey) Matches(presented string) bool {
	if !k.Enabled() || presented == "" {
		return false
	}
	if strings.HasPrefix(k.configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(k.configured), []byte(presented)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(k.configured), []byte(presented)) == 1
}

// KeyFromRequest reads ?key= first, then a JSON body field "key". The body is
// restored so the handler can read it again.
func KeyFromRequest(r *http.Request) string {
	if key := r.URL.Query().Get("key"); key != "" {
		return key
	}
	if r.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxKeyBody))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Key string `json:"key"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return body.Key
}

// RequireTestKey answers 403 {"ok":false,"error":"forbidden"} unless the
// request carries the configured key.
func RequireTestKey(key *TestKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !key.Matches(KeyFromRequest(r)) {
				err := apperrors.ErrForbidden("forbidden")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(apperrors.StatusCode(err))
				_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": err.Error()})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
