package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadURLTTL is the lifetime of a presigned upload URL
const UploadURLTTL = time.Hour

// UploadTarget is where a client PUTs an original and where it will be served from
type UploadTarget struct {
	URL       string `json:"url"`
	PublicURL string `json:"publicUrl"`
}

// StoredBlob is a thumbnail that has been written to the blob store
type StoredBlob struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// UploadService hands out upload capabilities and stores thumbnails
type UploadService struct {
	originals UploadSigner
	thumbs    BlobStore
	newID     func() string
}

// NewUploadService creates a new upload service
func NewUploadService(originals UploadSigner, thumbs BlobStore) *UploadService {
	return &UploadService{
		originals: originals,
		thumbs:    thumbs,
		newID:     func() string { return uuid.New().String() },
	}
}

// PresignUpload returns a presigned PUT for filename in the originals bucket
func (s *UploadService) PresignUpload(ctx context.Context, filename string) (*UploadTarget, error) {
	key, err := cleanKey(filename)
	if err != nil {
		return nil, err
	}

	url, err := s.originals.PresignPut(ctx, key, UploadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return &UploadTarget{
		URL:       url,
		PublicURL: s.originals.PublicURL(key),
	}, nil
}

// StoreThumbnail writes a thumbnail to the blob store under a unique key
func (s *UploadService) StoreThumbnail(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (*StoredBlob, error) {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return nil, invalid("file name required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("thumbs/%s/%s", s.newID(), name)
	if err := s.thumbs.Upload(ctx, key, r, size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store thumbnail: %w", err)
	}

	return &StoredBlob{URL: s.thumbs.PublicURL(key), Key: key}, nil
}

// cleanKey rejects keys that are empty or try to climb out of the bucket root
func cleanKey(filename string) (string, error) {
	key := strings.TrimLeft(strings.TrimSpace(filename), "/")
	if key == "" {
		return "", invalid("filename required")
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", invalid("invalid filename")
		}
	}
	return key, nil
}
