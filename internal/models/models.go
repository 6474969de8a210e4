package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidRecord is returned when a record is missing a required field
var ErrInvalidRecord = errors.New("invalid record")

// Album represents a collection of images, optionally protected by a password
type Album struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	CoverImageID *string   `json:"cover_image_id"`
	PasswordHash *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Protected reports whether the album has a password set
func (a *Album) Protected() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// NewAlbum validates the input and returns an album with a fresh ID
func NewAlbum(name string, description *string) (*Album, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fieldError("name")
	}
	return &Album{
		ID:          uuid.New().String(),
		Name:        name,
		Description: emptyToNil(description),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Image represents a photo and where its bytes live
type Image struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description"`
	FullURL        string    `json:"full_url,omitempty"`
	ThumbnailURL   string    `json:"thumbnail_url,omitempty"`
	ObjectKey      string    `json:"object_key,omitempty"`
	ThumbKey       string    `json:"thumb_key,omitempty"`
	AlbumID        *string   `json:"album_id"`
	Featured       bool      `json:"featured"`
	Tags           string    `json:"tags"`
	ExifData       *string   `json:"exif_data"`
	IsPrivate      bool      `json:"is_private"`
	OverridePublic bool      `json:"override_public"`
	CreatedAt      time.Time `json:"created_at"`
}

// ImageInput carries the metadata submitted for a new image
type ImageInput struct {
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	FullURL        string  `json:"full_url"`
	ThumbnailURL   string  `json:"thumbnail_url"`
	ObjectKey      string  `json:"object_key"`
	ThumbKey       string  `json:"thumb_key"`
	AlbumID        *string `json:"album_id"`
	Featured       bool    `json:"featured"`
	Tags           string  `json:"tags"`
	ExifData       *string `json:"exif_data"`
	IsPrivate      bool    `json:"is_private"`
	OverridePublic bool    `json:"override_public"`
}

// NewImage validates the input and returns an image with a fresh ID
func NewImage(in ImageInput) (*Image, error) {
	if strings.TrimSpace(in.Title) == "" || in.FullURL == "" || in.ThumbnailURL == "" {
		return nil, fieldError("title, full_url, thumbnail_url")
	}
	return &Image{
		ID:             uuid.New().String(),
		Title:          strings.TrimSpace(in.Title),
		Description:    emptyToNil(in.Description),
		FullURL:        in.FullURL,
		ThumbnailURL:   in.ThumbnailURL,
		ObjectKey:      in.ObjectKey,
		ThumbKey:       in.ThumbKey,
		AlbumID:        emptyToNil(in.AlbumID),
		Featured:       in.Featured,
		Tags:           in.Tags,
		ExifData:       emptyToNil(in.ExifData),
		IsPrivate:      in.IsPrivate,
		OverridePublic: in.OverridePublic,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// ImageUpdate carries the editable fields of an image.
// Nil privacy flags leave the stored values untouched.
type ImageUpdate struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	AlbumID        *string `json:"album_id"`
	Featured       bool    `json:"featured"`
	Tags           string  `json:"tags"`
	IsPrivate      *bool   `json:"is_private,omitempty"`
	OverridePublic *bool   `json:"override_public,omitempty"`
}

// Normalize trims the update and validates the fields an UPDATE needs
func (u *ImageUpdate) Normalize() error {
	if u.ID == "" {
		return fieldError("id")
	}
	if strings.TrimSpace(u.Title) == "" {
		return fieldError("title")
	}
	u.Title = strings.TrimSpace(u.Title)
	u.Description = emptyToNil(u.Description)
	u.AlbumID = emptyToNil(u.AlbumID)
	return nil
}

// PresignRow is an image joined with its album's password hash
type PresignRow struct {
	ImageID           string
	AlbumID           *string
	ObjectKey         string
	ThumbKey          string
	IsPrivate         bool
	OverridePublic    bool
	AlbumPasswordHash string
}

// ImageView is an image as served to clients, with its resolved privacy
type ImageView struct {
	*Image
	AlbumProtected bool `json:"-"`
	Private        bool `json:"private"`
}

// Redact drops the storage locators of the image, leaving the stored record untouched
func (v *ImageView) Redact() {
	img := *v.Image
	img.FullURL, img.ThumbnailURL, img.ObjectKey, img.ThumbKey = "", "", "", ""
	v.Image = &img
}

// AlbumView is an album as served to clients
type AlbumView struct {
	*Album
	Protected bool `json:"protected"`
}

// TagCount is one entry of the tag cloud
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ExifData holds the camera settings shown next to a photo
type ExifData struct {
	Make             string  `json:"Make,omitempty"`
	Model            string  `json:"Model,omitempty"`
	DateTimeOriginal string  `json:"DateTimeOriginal,omitempty"`
	FocalLength      float64 `json:"FocalLength,omitempty"`
	FNumber          float64 `json:"FNumber,omitempty"`
	ISO              int     `json:"ISO,omitempty"`
	ExposureTime     string  `json:"ExposureTime,omitempty"`
}

// Empty reports whether no field was extracted
func (e ExifData) Empty() bool {
	return e == ExifData{}
}

// ParseTags splits a comma separated tag string, dropping blanks
func ParseTags(tags string) []string {
	var out []string
	for _, tag := range strings.Split(tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func fieldError(fields string) error {
	return &FieldError{Fields: fields}
}

// FieldError names the required fields that were missing
type FieldError struct {
	Fields string
}

func (e *FieldError) Error() string {
	return "Missing required fields: " + e.Fields
}

// Unwrap lets callers match on ErrInvalidRecord
func (e *FieldError) Unwrap() error {
	return ErrInvalidRecord
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
