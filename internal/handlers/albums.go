package handlers

import (
	"errors"
	"net/http"

	"github.com/blackpiratelive/gallery-app/internal/services"

	"github.com/rs/zerolog/log"
)

// AlbumHandler handles album-related HTTP requests
type AlbumHandler struct {
	albums *services.AlbumService
	unlock *services.UnlockService
}

// NewAlbumHandler creates a new album handler
func NewAlbumHandler(albums *services.AlbumService, unlock *services.UnlockService) *AlbumHandler {
	return &AlbumHandler{
		albums: albums,
		unlock: unlock,
	}
}

// CreateAlbumRequest represents the request body for creating an album
type CreateAlbumRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// AlbumPasswordRequest carries an album id and a password, used to protect and to unlock
type AlbumPasswordRequest struct {
	AlbumID  string `json:"albumId"`
	Password string `json:"password"`
}

// List handles GET /api/albums. With ?id= it returns that album or null.
func (h *AlbumHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if id := r.URL.Query().Get("id"); id != "" {
		album, err := h.albums.Get(ctx, id)
		if errors.Is(err, services.ErrNotFound) {
			respondJSON(w, http.StatusOK, nil)
			return
		}
		if err != nil {
			respondServiceError(w, r, err, "Failed to get album")
			return
		}
		respondJSON(w, http.StatusOK, album)
		return
	}

	albums, err := h.albums.List(ctx)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list albums")
		return
	}
	respondJSON(w, http.StatusOK, albums)
}

// Create handles POST /api/albums
func (h *AlbumHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAlbumRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	album, err := h.albums.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create album")
		return
	}

	log.Info().Str("album_id", album.ID).Str("name", album.Name).Msg("Album created")

	respondJSON(w, http.StatusOK, map[string]any{
		"id":          album.ID,
		"name":        album.Name,
		"description": album.Description,
	})
}

// Delete handles DELETE /api/albums?id=
func (h *AlbumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := h.albums.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err, "Failed to delete album")
		return
	}

	log.Info().Str("album_id", id).Msg("Album deleted")
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// SetPassword handles POST /api/albums/password. An empty password removes protection.
func (h *AlbumHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req AlbumPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.albums.SetPassword(r.Context(), req.AlbumID, req.Password); err != nil {
		respondServiceError(w, r, err, "Failed to set album password")
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// Unlock handles POST /api/albums/unlock and sets the album's unlock cookie
func (h *AlbumHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req AlbumPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.AlbumID == "" || req.Password == "" {
		respondError(w, "Missing albumId or password", http.StatusBadRequest)
		return
	}

	cookie, err := h.unlock.Unlock(r.Context(), req.AlbumID, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredential) {
			log.Warn().Str("album_id", req.AlbumID).Msg("Album unlock rejected")
		}
		respondServiceError(w, r, err, "Failed to unlock album")
		return
	}

	http.SetCookie(w, cookie)
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
