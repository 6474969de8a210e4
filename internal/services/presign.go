package services

import (
	"context"
	"fmt"
	"time"

	"github.com/blackpiratelive/gallery-app/internal/models"
)

// PresignTTL is the lifetime of a presigned image URL
const PresignTTL = 60 * time.Second

// Image variants a client can ask for
const (
	VariantThumb = "thumb"
	VariantFull  = "full"
)

// PresignLoader loads the rows the presign path needs
type PresignLoader interface {
	GetForPresign(ctx context.Context, id string) (*models.PresignRow, error)
}

// PresignRequest describes who asks for which variant of an image
type PresignRequest struct {
	ImageID string
	Variant string
	Admin   bool
	// Unlocked reports whether the caller holds a valid unlock cookie for an album
	Unlocked func(albumID string) bool
}

// PresignedGrant is a signed URL plus its lifetime in seconds
type PresignedGrant struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
}

// PresignService issues short-lived read URLs after checking access
type PresignService struct {
	images    PresignLoader
	originals URLSigner
	thumbs    URLSigner
}

// NewPresignService creates a new presign service. Full-resolution keys are signed by
// originals, thumbnail keys by thumbs.
func NewPresignService(images PresignLoader, originals, thumbs URLSigner) *PresignService {
	return &PresignService{
		images:    images,
		originals: originals,
		thumbs:    thumbs,
	}
}

// PresignImage resolves the image's privacy, enforces access and signs the requested variant
func (s *PresignService) PresignImage(ctx context.Context, req PresignRequest) (*PresignedGrant, error) {
	row, err := s.images.GetForPresign(ctx, req.ImageID)
	if err != nil {
		return nil, translate(err)
	}

	albumProtected := row.AlbumPasswordHash != ""
	private := IsImagePrivate(row.OverridePublic, row.IsPrivate, albumProtected)
	viewer := Viewer{Admin: req.Admin, Unlocked: req.Unlocked}
	if !viewer.CanView(private, albumProtected, row.AlbumID) {
		return nil, ErrUnauthorized
	}

	key, signer := row.ThumbKey, s.thumbs
	if req.Variant == VariantFull {
		key, signer = row.ObjectKey, s.originals
	}
	if key == "" {
		return nil, ErrIntegrity
	}

	url, err := signer.PresignGet(ctx, key, PresignTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to presign %s: %w", req.ImageID, err)
	}

	return &PresignedGrant{
		URL:       url,
		ExpiresIn: int(PresignTTL / time.Second),
	}, nil
}

// RefreshAfter returns when a client should ask for a new URL, about 92% into ttl
func RefreshAfter(ttl time.Duration) time.Duration {
	return ttl * 11 / 12
}
