package services

import (
	"context"
	"io"
	"time"

	"github.com/blackpiratelive/gallery-app/internal/models"
)

// AlbumStore is the persistence the album services need
type AlbumStore interface {
	Create(ctx context.Context, album *models.Album) error
	GetByID(ctx context.Context, id string) (*models.Album, error)
	List(ctx context.Context) ([]*models.Album, error)
	Delete(ctx context.Context, id string) error
	SetPassword(ctx context.Context, id string, hash *string) error
}

// ImageStore is the persistence the image services need
type ImageStore interface {
	Create(ctx context.Context, img *models.Image) error
	GetByID(ctx context.Context, id string) (*models.ImageView, error)
	ListAll(ctx context.Context) ([]*models.ImageView, error)
	ListByAlbum(ctx context.Context, albumID string) ([]*models.ImageView, error)
	ListFeatured(ctx context.Context, limit int) ([]*models.ImageView, error)
	ListRecent(ctx context.Context, limit int) ([]*models.ImageView, error)
	Update(ctx context.Context, u *models.ImageUpdate) error
	Delete(ctx context.Context, id string) (string, error)
	GetForPresign(ctx context.Context, id string) (*models.PresignRow, error)
	Tags(ctx context.Context) ([]string, error)
}

// URLSigner mints time-limited read URLs for stored objects
type URLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// UploadSigner mints time-limited upload URLs in the originals bucket
type UploadSigner interface {
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)
	PublicURL(key string) string
}

// BlobStore receives thumbnail bytes directly
type BlobStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// EventPublisher announces catalogue changes
type EventPublisher interface {
	Publish(evt Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
