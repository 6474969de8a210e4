package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/adampresley/configinator"
	"github.com/blackpiratelive/gallery-app/cmd"
	"github.com/blackpiratelive/gallery-app/internal/media"
	"github.com/blackpiratelive/gallery-app/internal/uploader"
	"github.com/rs/zerolog/log"
)

// Config is read from flags, then the environment, then the defaults
type Config struct {
	ServerURL   string `flag:"server" env:"GALLERY_URL" default:"http://localhost:8080" description:"Base URL of the gallery API"`
	Token       string `flag:"token" env:"ADMIN_PASSWORD" default:"" description:"Admin secret sent as a Bearer token"`
	AlbumID     string `flag:"album" env:"GALLERY_ALBUM" default:"" description:"Album id to file the photos under"`
	Description string `flag:"description" env:"GALLERY_DESCRIPTION" default:"" description:"Description applied to every photo"`
	Tags        string `flag:"tags" env:"GALLERY_TAGS" default:"" description:"Comma separated tags applied to every photo"`
	Featured    bool   `flag:"featured" env:"GALLERY_FEATURED" default:"false" description:"Mark every photo as featured"`
	MaxEdge     int    `flag:"maxedge" env:"THUMB_MAX_EDGE" default:"800" description:"Longest edge of generated thumbnails in pixels"`
	Quality     int    `flag:"quality" env:"THUMB_QUALITY" default:"85" description:"JPEG quality of generated thumbnails"`
	Files       string `flag:"files" env:"GALLERY_FILES" default:"" description:"Comma separated photo paths; positional arguments are used when empty"`
	LogLevel    string `flag:"loglevel" env:"LOG_LEVEL" default:"info" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'"`
}

func main() {
	config := Config{}
	configinator.Behold(&config)
	cmd.SetupLogger(config.LogLevel)

	files := splitList(config.Files)
	if len(files) == 0 {
		files = flag.Args()
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: gallery-upload [flags] photo.jpg [photo.jpg ...]")
		os.Exit(2)
	}
	if strings.TrimSpace(config.Token) == "" {
		log.Fatal().Msg("Admin token is required (-token or ADMIN_PASSWORD)")
	}
	if config.MaxEdge <= 0 {
		log.Fatal().Int("maxedge", config.MaxEdge).Msg("Thumbnail edge must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := uploader.NewClient(config.ServerURL, config.Token, nil)
	orchestrator := uploader.NewOrchestrator(client, uploader.Options{
		AlbumID:     config.AlbumID,
		Description: config.Description,
		Tags:        config.Tags,
		Featured:    config.Featured,
		Thumbnail: media.ThumbnailOptions{
			MaxEdge: uint(config.MaxEdge),
			Quality: config.Quality,
		},
	})

	failed := 0
	for _, res := range orchestrator.UploadFiles(ctx, files) {
		if res.Err != nil {
			failed++
			fmt.Printf("FAIL  %s (%s): %v\n", res.File, res.Step, res.Err)
			continue
		}
		fmt.Printf("OK    %s -> %s\n", res.File, res.ImageID)
	}

	log.Info().Int("uploaded", len(files)-failed).Int("failed", failed).Msg("Upload finished")
	if failed > 0 {
		os.Exit(1)
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
