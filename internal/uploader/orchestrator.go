package uploader

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/blackpiratelive/gallery-app/internal/media"
	"github.com/blackpiratelive/gallery-app/internal/models"
	"github.com/rs/zerolog/log"
)

// Step names the stage an upload reached
type Step string

// Upload stages, in execution order
const (
	StepRead           Step = "read"
	StepThumbnail      Step = "thumbnail"
	StepUploadURL      Step = "upload_url"
	StepUploadOriginal Step = "upload_original"
	StepUploadThumb    Step = "upload_thumbnail"
	StepMetadata       Step = "metadata"
	StepDone           Step = "done"
)

// API is the server surface the orchestrator drives
type API interface {
	UploadURL(ctx context.Context, key string) (*UploadTarget, error)
	PutObject(ctx context.Context, presignedURL string, data []byte, contentType string) error
	UploadThumbnail(ctx context.Context, name string, data []byte) (*StoredThumbnail, error)
	CreateImage(ctx context.Context, in models.ImageInput) (string, error)
}

// Options are applied to every uploaded file
type Options struct {
	AlbumID     string
	Description string
	Tags        string
	Featured    bool
	Thumbnail   media.ThumbnailOptions
}

// Result is the outcome of one file. Step is where it stopped; StepDone on success.
type Result struct {
	File    string
	ImageID string
	Step    Step
	Err     error
}

// Orchestrator uploads local photos one at a time: thumbnail, original, thumbnail upload, metadata
type Orchestrator struct {
	api      API
	opts     Options
	now      func() time.Time
	readFile func(string) ([]byte, error)
}

// NewOrchestrator creates an orchestrator driving api
func NewOrchestrator(api API, opts Options) *Orchestrator {
	return &Orchestrator{
		api:      api,
		opts:     opts,
		now:      time.Now,
		readFile: os.ReadFile,
	}
}

// UploadFiles processes files sequentially and returns one result per file, in order.
// A failed file does not stop the ones after it.
func (o *Orchestrator) UploadFiles(ctx context.Context, files []string) []Result {
	results := make([]Result, len(files))
	pool := pond.NewPool(1, pond.WithContext(ctx))

	tasks := make([]pond.Task, len(files))
	for i, file := range files {
		tasks[i] = pool.Submit(func() {
			results[i] = o.Upload(ctx, file)
		})
	}

	for i, task := range tasks {
		if err := task.Wait(); err != nil {
			results[i] = Result{File: files[i], Step: StepRead, Err: err}
		}
	}
	pool.StopAndWait()

	return results
}

// Upload runs every step for one file, stopping at the first failure
func (o *Orchestrator) Upload(ctx context.Context, file string) Result {
	res := Result{File: file}
	logger := log.With().Str("file", file).Logger()

	fail := func(step Step, err error) Result {
		res.Step, res.Err = step, err
		logger.Error().Err(err).Str("step", string(step)).Msg("Upload failed")
		return res
	}

	data, err := o.readFile(file)
	if err != nil {
		return fail(StepRead, fmt.Errorf("failed to read file: %w", err))
	}

	thumb, err := media.Thumbnail(data, o.opts.Thumbnail)
	if err != nil {
		return fail(StepThumbnail, err)
	}
	exifJSON, err := media.ExifJSON(data)
	if err != nil {
		logger.Warn().Err(err).Msg("Ignoring unreadable EXIF")
		exifJSON = nil
	}

	base := filepath.Base(file)
	objectKey := ObjectKey(o.now(), base)

	target, err := o.api.UploadURL(ctx, objectKey)
	if err != nil {
		return fail(StepUploadURL, err)
	}
	logger.Debug().Str("key", objectKey).Msg("Got upload URL")

	if err := o.api.PutObject(ctx, target.URL, data, contentType(base)); err != nil {
		return fail(StepUploadOriginal, err)
	}

	stored, err := o.api.UploadThumbnail(ctx, ThumbnailName(base), thumb)
	if err != nil {
		return fail(StepUploadThumb, err)
	}

	in := models.ImageInput{
		Title:        media.TitleFromFilename(base),
		Description:  optional(o.opts.Description),
		FullURL:      target.PublicURL,
		ThumbnailURL: stored.URL,
		ObjectKey:    objectKey,
		ThumbKey:     stored.Key,
		AlbumID:      optional(o.opts.AlbumID),
		Featured:     o.opts.Featured,
		Tags:         o.opts.Tags,
		ExifData:     exifJSON,
	}
	id, err := o.api.CreateImage(ctx, in)
	if err != nil {
		return fail(StepMetadata, err)
	}

	res.ImageID, res.Step = id, StepDone
	logger.Info().Str("image_id", id).Str("key", objectKey).Msg("Upload complete")
	return res
}

// ObjectKey is the originals bucket key for a file uploaded at t
func ObjectKey(t time.Time, base string) string {
	return fmt.Sprintf("%d-%s", t.UnixMilli(), base)
}

// ThumbnailName is the file name the thumbnail of base is uploaded under
func ThumbnailName(base string) string {
	return "thumb_" + strings.TrimSuffix(base, filepath.Ext(base)) + ".jpg"
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
