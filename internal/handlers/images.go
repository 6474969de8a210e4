package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/blackpiratelive/gallery-app/internal/middleware"
	"github.com/blackpiratelive/gallery-app/internal/models"
	"github.com/blackpiratelive/gallery-app/internal/services"

	"github.com/rs/zerolog/log"
)

// ImageHandler handles image-related HTTP requests
type ImageHandler struct {
	images *services.ImageService
	unlock *services.UnlockService
	gate   *middleware.AdminGate
}

// NewImageHandler creates a new image handler
func NewImageHandler(images *services.ImageService, unlock *services.UnlockService, gate *middleware.AdminGate) *ImageHandler {
	return &ImageHandler{
		images: images,
		unlock: unlock,
		gate:   gate,
	}
}

// CreateImageResponse is returned after metadata is stored
type CreateImageResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

// List handles GET /api/images. Private images only carry their storage locators for
// admins and for visitors who unlocked their album.
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	viewer := requestViewer(r, h.gate, h.unlock)

	if id := query.Get("id"); id != "" {
		img, err := h.images.Get(ctx, id, viewer)
		if errors.Is(err, services.ErrNotFound) {
			respondJSON(w, http.StatusOK, nil)
			return
		}
		if err != nil {
			respondServiceError(w, r, err, "Failed to get image")
			return
		}
		respondJSON(w, http.StatusOK, img)
		return
	}

	q := services.ImageQuery{
		AlbumID: query.Get("album"),
		Type:    query.Get("type"),
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			q.Limit = limit
		}
	}

	images, err := h.images.List(ctx, q, viewer)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list images")
		return
	}
	respondJSON(w, http.StatusOK, images)
}

// Create handles POST /api/metadata
func (h *ImageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.ImageInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	img, err := h.images.Create(r.Context(), in)
	if err != nil {
		respondServiceError(w, r, err, "Failed to save metadata")
		return
	}

	log.Info().Str("image_id", img.ID).Str("title", img.Title).Msg("Image metadata saved")
	respondJSON(w, http.StatusOK, CreateImageResponse{ID: img.ID, Success: true})
}

// Update handles PUT /api/metadata
func (h *ImageHandler) Update(w http.ResponseWriter, r *http.Request) {
	var u models.ImageUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.images.Update(r.Context(), &u); err != nil {
		respondServiceError(w, r, err, "Failed to update metadata")
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// Delete handles DELETE /api/images?id=
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := h.images.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err, "Failed to delete image")
		return
	}

	log.Info().Str("image_id", id).Msg("Image deleted")
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// Tags handles GET /api/tags. Failures degrade to an empty tag cloud.
func (h *ImageHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.images.TagCounts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to count tags")
		tags = []models.TagCount{}
	}
	respondJSON(w, http.StatusOK, tags)
}
