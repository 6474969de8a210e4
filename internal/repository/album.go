package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/blackpiratelive/gallery-app/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("not found")

// DB is the part of *pgxpool.Pool the repositories use
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AlbumRepository handles database operations for albums
type AlbumRepository struct {
	db DB
}

// NewAlbumRepository creates a new album repository
func NewAlbumRepository(db DB) *AlbumRepository {
	return &AlbumRepository{db: db}
}

const albumColumns = `id, name, description, cover_image_id, password_hash, created_at`

// Create inserts a new album
func (r *AlbumRepository) Create(ctx context.Context, album *models.Album) error {
	query := `
		INSERT INTO albums (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, album.ID, album.Name, album.Description, album.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create album: %w", err)
	}
	return nil
}

// GetByID retrieves an album by ID
func (r *AlbumRepository) GetByID(ctx context.Context, id string) (*models.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums WHERE id = $1`

	album, err := scanAlbum(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("album %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	return album, nil
}

// List returns every album, newest first
func (r *AlbumRepository) List(ctx context.Context) ([]*models.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	defer rows.Close()

	albums := []*models.Album{}
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		albums = append(albums, album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating albums: %w", err)
	}
	return albums, nil
}

// Delete removes an album. Its images stay, detached by the foreign key.
func (r *AlbumRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM albums WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete album: %w", err)
	}
	return nil
}

// SetPassword stores the album password hash (nil clears it) and marks the album's
// non-overridden images private or public to match, in one transaction.
func (r *AlbumRepository) SetPassword(ctx context.Context, id string, hash *string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `UPDATE albums SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("failed to update album password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("album %s: %w", id, ErrNotFound)
	}

	_, err = tx.Exec(ctx,
		`UPDATE images SET is_private = $1 WHERE album_id = $2 AND override_public = 0`,
		boolToInt(hash != nil), id,
	)
	if err != nil {
		return fmt.Errorf("failed to cascade image privacy: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit album password: %w", err)
	}
	return nil
}

func scanAlbum(row pgx.Row) (*models.Album, error) {
	var album models.Album
	err := row.Scan(
		&album.ID, &album.Name, &album.Description, &album.CoverImageID,
		&album.PasswordHash, &album.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &album, nil
}

func boolToInt(b bool) int16 {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int16) bool {
	return i != 0
}
