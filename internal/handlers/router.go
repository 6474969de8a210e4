package handlers

import (
	"net/http"

	"github.com/blackpiratelive/gallery-app/internal/middleware"
	"github.com/blackpiratelive/gallery-app/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Dependencies are the services the HTTP layer is wired to
type Dependencies struct {
	Albums         *services.AlbumService
	Images         *services.ImageService
	Unlock         *services.UnlockService
	Presign        *services.PresignService
	Uploads        *services.UploadService
	Events         *services.EventHub
	Gate           *middleware.AdminGate
	AllowedOrigins []string
}

// NewRouter builds the HTTP routes of the gallery API
func NewRouter(deps Dependencies) http.Handler {
	albumHandler := NewAlbumHandler(deps.Albums, deps.Unlock)
	imageHandler := NewImageHandler(deps.Images, deps.Unlock, deps.Gate)
	presignHandler := NewPresignHandler(deps.Presign, deps.Unlock, deps.Gate)
	uploadHandler := NewUploadHandler(deps.Uploads)
	eventsHandler := NewEventsHandler(deps.Events, deps.Gate)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chiMiddleware.Recoverer)
	// go-chi/cors treats an empty origin list as any origin
	if len(deps.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", Health)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/albums", albumHandler.List)
		r.Post("/albums/unlock", albumHandler.Unlock)
		r.Get("/images", imageHandler.List)
		r.Get("/tags", imageHandler.Tags)
		r.Get("/presign", presignHandler.Presign)
		r.Get("/events", eventsHandler.Stream)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Gate.Require)
			r.Post("/albums", albumHandler.Create)
			r.Delete("/albums", albumHandler.Delete)
			r.Post("/albums/password", albumHandler.SetPassword)
			r.Post("/metadata", imageHandler.Create)
			r.Put("/metadata", imageHandler.Update)
			r.Delete("/images", imageHandler.Delete)
			r.Get("/upload-url", uploadHandler.UploadURL)
			r.Post("/upload-url", uploadHandler.UploadBlob)
		})
	})

	return r
}
