package handlers

import (
	"net/http"

	"github.com/blackpiratelive/gallery-app/internal/middleware"
	"github.com/blackpiratelive/gallery-app/internal/services"
)

// PresignHandler hands out short-lived image URLs
type PresignHandler struct {
	presign *services.PresignService
	unlock  *services.UnlockService
	gate    *middleware.AdminGate
}

// NewPresignHandler creates a new presign handler
func NewPresignHandler(presign *services.PresignService, unlock *services.UnlockService, gate *middleware.AdminGate) *PresignHandler {
	return &PresignHandler{
		presign: presign,
		unlock:  unlock,
		gate:    gate,
	}
}

// Presign handles GET /api/presign?imageId=&type=thumb|full
func (h *PresignHandler) Presign(w http.ResponseWriter, r *http.Request) {
	imageID := r.URL.Query().Get("imageId")
	if imageID == "" {
		respondError(w, "imageId required", http.StatusBadRequest)
		return
	}

	variant := r.URL.Query().Get("type")
	if variant == "" {
		variant = services.VariantThumb
	}

	viewer := requestViewer(r, h.gate, h.unlock)
	grant, err := h.presign.PresignImage(r.Context(), services.PresignRequest{
		ImageID:  imageID,
		Variant:  variant,
		Admin:    viewer.Admin,
		Unlocked: viewer.Unlocked,
	})
	if err != nil {
		respondServiceError(w, r, err, "Failed to presign image")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, grant)
}
