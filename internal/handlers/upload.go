package handlers

import (
	"net/http"

	"github.com/blackpiratelive/gallery-app/internal/services"

	"github.com/rs/zerolog/log"
)

const maxThumbnailUpload = 32 << 20

// UploadHandler issues upload URLs for originals and accepts thumbnails
type UploadHandler struct {
	uploads *services.UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploads *services.UploadService) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
	}
}

// UploadURL handles GET /api/upload-url?type=r2&filename=
func (h *UploadHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("type") != "r2" {
		respondError(w, "Invalid type", http.StatusBadRequest)
		return
	}

	filename := r.URL.Query().Get("filename")
	target, err := h.uploads.PresignUpload(r.Context(), filename)
	if err != nil {
		respondServiceError(w, r, err, "Failed to generate upload URL")
		return
	}

	log.Info().Str("filename", filename).Msg("Upload URL generated")
	respondJSON(w, http.StatusOK, target)
}

// UploadBlob handles POST /api/upload-url?type=blob with a multipart "file" field
func (h *UploadHandler) UploadBlob(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("type") != "blob" {
		respondError(w, "Invalid type", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxThumbnailUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "file required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	blob, err := h.uploads.StoreThumbnail(r.Context(), header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to store thumbnail")
		return
	}

	log.Info().Str("key", blob.Key).Int64("size", header.Size).Msg("Thumbnail stored")
	respondJSON(w, http.StatusOK, blob)
}
