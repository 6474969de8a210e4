package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/blackpiratelive/gallery-app/internal/models"
	"github.com/jackc/pgx/v5"
)

// ImageRepository handles database operations for images
type ImageRepository struct {
	db DB
}

// NewImageRepository creates a new image repository
func NewImageRepository(db DB) *ImageRepository {
	return &ImageRepository{db: db}
}

const imageSelect = `
	SELECT i.id, i.title, i.description, i.full_url, i.thumbnail_url, i.object_key, i.thumb_key,
	       i.album_id, i.featured, i.tags, i.exif_data, i.is_private, i.override_public, i.created_at,
	       COALESCE(a.password_hash, '') <> '' AS album_protected
	FROM images i
	LEFT JOIN albums a ON a.id = i.album_id
`

// Create inserts a new image
func (r *ImageRepository) Create(ctx context.Context, img *models.Image) error {
	query := `
		INSERT INTO images (id, title, description, full_url, thumbnail_url, object_key, thumb_key,
		                    album_id, featured, tags, exif_data, is_private, override_public, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.Exec(ctx, query,
		img.ID, img.Title, img.Description, img.FullURL, img.ThumbnailURL, img.ObjectKey, img.ThumbKey,
		img.AlbumID, boolToInt(img.Featured), img.Tags, img.ExifData,
		boolToInt(img.IsPrivate), boolToInt(img.OverridePublic), img.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

// GetByID retrieves an image by ID
func (r *ImageRepository) GetByID(ctx context.Context, id string) (*models.ImageView, error) {
	img, err := scanImage(r.db.QueryRow(ctx, imageSelect+` WHERE i.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("image %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return img, nil
}

// ListAll returns every image, newest first
func (r *ImageRepository) ListAll(ctx context.Context) ([]*models.ImageView, error) {
	return r.list(ctx, imageSelect+` ORDER BY i.created_at DESC`)
}

// ListByAlbum returns the images of one album, newest first
func (r *ImageRepository) ListByAlbum(ctx context.Context, albumID string) ([]*models.ImageView, error) {
	return r.list(ctx, imageSelect+` WHERE i.album_id = $1 ORDER BY i.created_at DESC`, albumID)
}

// ListFeatured returns up to limit featured images, newest first
func (r *ImageRepository) ListFeatured(ctx context.Context, limit int) ([]*models.ImageView, error) {
	return r.list(ctx, imageSelect+` WHERE i.featured = 1 ORDER BY i.created_at DESC LIMIT $1`, limit)
}

// ListRecent returns up to limit images, newest first
func (r *ImageRepository) ListRecent(ctx context.Context, limit int) ([]*models.ImageView, error) {
	return r.list(ctx, imageSelect+` ORDER BY i.created_at DESC LIMIT $1`, limit)
}

// Update overwrites the editable fields of an image
func (r *ImageRepository) Update(ctx context.Context, u *models.ImageUpdate) error {
	query := `
		UPDATE images
		SET title = $1, description = $2, album_id = $3, featured = $4, tags = $5,
		    is_private = COALESCE($6, is_private), override_public = COALESCE($7, override_public)
		WHERE id = $8
	`
	result, err := r.db.Exec(ctx, query,
		u.Title, u.Description, u.AlbumID, boolToInt(u.Featured), u.Tags,
		optionalFlag(u.IsPrivate), optionalFlag(u.OverridePublic), u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("image %s: %w", u.ID, ErrNotFound)
	}
	return nil
}

// Delete removes an image and returns the thumbnail key it referenced
func (r *ImageRepository) Delete(ctx context.Context, id string) (string, error) {
	var thumbKey string
	err := r.db.QueryRow(ctx, `DELETE FROM images WHERE id = $1 RETURNING thumb_key`, id).Scan(&thumbKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("image %s: %w", id, ErrNotFound)
		}
		return "", fmt.Errorf("failed to delete image: %w", err)
	}
	return thumbKey, nil
}

// GetForPresign loads what the presign path needs: storage keys, privacy flags
// and the owning album's password hash
func (r *ImageRepository) GetForPresign(ctx context.Context, id string) (*models.PresignRow, error) {
	query := `
		SELECT i.id, i.album_id, i.object_key, i.thumb_key, i.is_private, i.override_public,
		       COALESCE(a.password_hash, '')
		FROM images i
		LEFT JOIN albums a ON a.id = i.album_id
		WHERE i.id = $1
	`
	var (
		row                       models.PresignRow
		isPrivate, overridePublic int16
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&row.ImageID, &row.AlbumID, &row.ObjectKey, &row.ThumbKey,
		&isPrivate, &overridePublic, &row.AlbumPasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("image %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load image for presign: %w", err)
	}
	row.IsPrivate = intToBool(isPrivate)
	row.OverridePublic = intToBool(overridePublic)
	return &row, nil
}

// Tags returns the raw tag string of every tagged image
func (r *ImageRepository) Tags(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT tags FROM images WHERE tags <> ''`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan tags: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}

func (r *ImageRepository) list(ctx context.Context, query string, args ...any) ([]*models.ImageView, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	images := []*models.ImageView{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}
	return images, nil
}

func scanImage(row pgx.Row) (*models.ImageView, error) {
	var (
		img                                 models.Image
		featured, isPrivate, overridePublic int16
		albumProtected                      bool
	)
	err := row.Scan(
		&img.ID, &img.Title, &img.Description, &img.FullURL, &img.ThumbnailURL,
		&img.ObjectKey, &img.ThumbKey, &img.AlbumID, &featured, &img.Tags, &img.ExifData,
		&isPrivate, &overridePublic, &img.CreatedAt, &albumProtected,
	)
	if err != nil {
		return nil, err
	}
	img.Featured = intToBool(featured)
	img.IsPrivate = intToBool(isPrivate)
	img.OverridePublic = intToBool(overridePublic)
	return &models.ImageView{Image: &img, AlbumProtected: albumProtected}, nil
}

func optionalFlag(b *bool) *int16 {
	if b == nil {
		return nil
	}
	v := boolToInt(*b)
	return &v
}
