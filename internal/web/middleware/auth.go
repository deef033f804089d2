package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vincentarsontaneli/data-processor-app/internal/config"
)

// APIKeyAuth returns middleware that validates the caller's API key against
// the configured keys. The key is read from X-API-Key, or from an
// "Authorization: Bearer" header.
// If RequireAPIKey is false, all requests pass through.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := requestAPIKey(r)
			if apiKey == "" {
				slog.Warn("auth: missing API key", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				denied(w, http.StatusUnauthorized, "missing API key", "AUTH_MISSING_KEY")
				return
			}

			if !isValidAPIKey(apiKey, cfg.APIKeys) {
				slog.Warn("auth: invalid API key", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				denied(w, http.StatusForbidden, "invalid API key", "AUTH_INVALID_KEY")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requestAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func denied(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `","code":"` + code + `"}`))
}

// isValidAPIKey checks the key against every configured key in constant time.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}
