package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const bearerPrefix = "Bearer "

// AdminGate authorizes admin requests against a static shared secret
type AdminGate struct {
	secret []byte
}

// NewAdminGate creates a gate for secret. An empty secret authorizes nobody.
func NewAdminGate(secret string) *AdminGate {
	return &AdminGate{secret: []byte(secret)}
}

// Check reports whether r carries "Authorization: Bearer <secret>"
func (g *AdminGate) Check(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return false
	}
	return g.CheckToken(strings.TrimPrefix(header, bearerPrefix))
}

// CheckToken compares a bare token with the secret
func (g *AdminGate) CheckToken(token string) bool {
	if len(g.secret) == 0 || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), g.secret) == 1
}

// Require creates a middleware that rejects requests without the admin secret
func (g *AdminGate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Check(r) {
			log.Debug().Str("path", r.URL.Path).Str("method", r.Method).Msg("Admin authorization failed")
			respondError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
