package services

import (
	"context"
	"sort"

	"github.com/blackpiratelive/gallery-app/internal/models"
	"github.com/rs/zerolog/log"
)

// DefaultListLimit is used when a featured or recent listing has no usable limit
const DefaultListLimit = 50

// Listing types accepted by List
const (
	ListFeatured = "featured"
	ListRecent   = "recent"
)

// ImageQuery selects which images List returns
type ImageQuery struct {
	AlbumID string
	Type    string
	Limit   int
}

// ImageService handles image-related business logic
type ImageService struct {
	images ImageStore
	thumbs BlobStore
	events EventPublisher
}

// NewImageService creates a new image service. thumbs may be nil when thumbnails are not
// managed by this process.
func NewImageService(images ImageStore, thumbs BlobStore, events EventPublisher) *ImageService {
	return &ImageService{
		images: images,
		thumbs: thumbs,
		events: publisherOrNoop(events),
	}
}

// Get returns one image with its resolved privacy. Locators of private images are
// redacted unless viewer may reach them.
func (s *ImageService) Get(ctx context.Context, id string, viewer Viewer) (*models.ImageView, error) {
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return present(img, viewer), nil
}

// List returns images for an album, the featured or recent feed, or everything, newest first.
// Locators of private images are redacted unless viewer may reach them.
func (s *ImageService) List(ctx context.Context, q ImageQuery, viewer Viewer) ([]*models.ImageView, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var (
		images []*models.ImageView
		err    error
	)
	switch {
	case q.AlbumID != "":
		images, err = s.images.ListByAlbum(ctx, q.AlbumID)
	case q.Type == ListFeatured:
		images, err = s.images.ListFeatured(ctx, limit)
	case q.Type == ListRecent:
		images, err = s.images.ListRecent(ctx, limit)
	default:
		images, err = s.images.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	for _, img := range images {
		present(img, viewer)
	}
	return images, nil
}

// Create validates and stores the metadata of an uploaded image
func (s *ImageService) Create(ctx context.Context, in models.ImageInput) (*models.Image, error) {
	img, err := models.NewImage(in)
	if err != nil {
		return nil, translate(err)
	}

	if err := s.images.Create(ctx, img); err != nil {
		return nil, err
	}

	s.events.Publish(Event{Type: EventImageCreated, ID: img.ID, AlbumID: derefString(img.AlbumID)})
	return img, nil
}

// Update overwrites the editable metadata of an image
func (s *ImageService) Update(ctx context.Context, u *models.ImageUpdate) error {
	if err := u.Normalize(); err != nil {
		return translate(err)
	}

	if err := s.images.Update(ctx, u); err != nil {
		return translate(err)
	}

	s.events.Publish(Event{Type: EventImageUpdated, ID: u.ID, AlbumID: derefString(u.AlbumID)})
	return nil
}

// Delete removes an image row and, best effort, its thumbnail object
func (s *ImageService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return invalid("id required")
	}

	thumbKey, err := s.images.Delete(ctx, id)
	if err != nil {
		return translate(err)
	}

	if s.thumbs != nil && thumbKey != "" {
		if err := s.thumbs.Delete(ctx, thumbKey); err != nil {
			log.Warn().Err(err).Str("image_id", id).Str("key", thumbKey).Msg("Failed to remove thumbnail")
		}
	}

	s.events.Publish(Event{Type: EventImageDeleted, ID: id})
	return nil
}

// TagCounts counts how many images carry each tag, most used first
func (s *ImageService) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	rows, err := s.images.Tags(ctx)
	if err != nil {
		return nil, err
	}
	return CountTags(rows), nil
}

// CountTags aggregates comma separated tag strings, sorted by count then name
func CountTags(rows []string) []models.TagCount {
	counts := make(map[string]int)
	for _, row := range rows {
		for _, tag := range models.ParseTags(row) {
			counts[tag]++
		}
	}

	out := make([]models.TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, models.TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func present(img *models.ImageView, viewer Viewer) *models.ImageView {
	img.Private = IsImagePrivate(img.OverridePublic, img.IsPrivate, img.AlbumProtected)
	if !viewer.CanView(img.Private, img.AlbumProtected, img.AlbumID) {
		img.Redact()
	}
	return img
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
