package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blackpiratelive/gallery-app/internal/config"
	"github.com/blackpiratelive/gallery-app/internal/database"
	"github.com/blackpiratelive/gallery-app/internal/handlers"
	"github.com/blackpiratelive/gallery-app/internal/middleware"
	"github.com/blackpiratelive/gallery-app/internal/repository"
	"github.com/blackpiratelive/gallery-app/internal/services"
	"github.com/blackpiratelive/gallery-app/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	SetupLogger(cfg.Log.Level)

	ctx := context.Background()

	// Connect to database
	db, err := database.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(cfg.Database.URL()); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// Initialize storage
	originals, err := storage.NewR2Store(ctx, cfg.R2)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create R2 store")
	}
	thumbs, err := storage.NewThumbnailStore(ctx, cfg.Thumbs)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create thumbnail store")
	}

	// Initialize repositories
	albumRepo := repository.NewAlbumRepository(db)
	imageRepo := repository.NewImageRepository(db)

	// Initialize services
	hub := services.NewEventHub()
	albumService := services.NewAlbumService(albumRepo, hub)
	imageService := services.NewImageService(imageRepo, thumbs, hub)
	unlockService := services.NewUnlockService(albumRepo, cfg.Auth.SessionSecret)
	presignService := services.NewPresignService(imageRepo, originals, thumbs)
	uploadService := services.NewUploadService(originals, thumbs)

	// Setup router
	r := handlers.NewRouter(handlers.Dependencies{
		Albums:         albumService,
		Images:         imageService,
		Unlock:         unlockService,
		Presign:        presignService,
		Uploads:        uploadService,
		Events:         hub,
		Gate:           middleware.NewAdminGate(cfg.Auth.AdminPassword),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Thumbnail uploads can be large on slow links
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Hijacked websocket connections are not closed by Shutdown
	hub.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// SetupLogger configures zerolog logger
func SetupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
