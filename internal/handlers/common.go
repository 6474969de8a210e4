package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/blackpiratelive/gallery-app/internal/middleware"
	"github.com/blackpiratelive/gallery-app/internal/services"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is returned by writes that have nothing else to report
type SuccessResponse struct {
	Success bool `json:"success"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondJSON sends v as a JSON body
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondServiceError maps service errors onto status codes and client-facing messages
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, verr.Message, http.StatusBadRequest)
	case errors.Is(err, services.ErrNotFound):
		respondError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, services.ErrUnauthorized):
		respondError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, services.ErrInvalidCredential):
		respondError(w, "Invalid password", http.StatusUnauthorized)
	case errors.Is(err, services.ErrNotProtected):
		respondError(w, "Album not protected or not found", http.StatusNotFound)
	case errors.Is(err, services.ErrIntegrity):
		log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
		respondError(w, "Missing object key", http.StatusInternalServerError)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
		respondError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// requestViewer describes the caller of r: admin by Bearer secret, or unlocked per album by cookie
func requestViewer(r *http.Request, gate *middleware.AdminGate, unlock *services.UnlockService) services.Viewer {
	return services.Viewer{
		Admin: gate.Check(r),
		Unlocked: func(albumID string) bool {
			return unlock.Unlocked(r, albumID)
		},
	}
}

// decodeJSON reads a JSON request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v)
}

const maxJSONBody = 1 << 20

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
