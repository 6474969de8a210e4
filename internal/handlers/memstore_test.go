package handlers

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/blackpiratelive/gallery-app/internal/models"
	"github.com/blackpiratelive/gallery-app/internal/repository"
)

// memDB keeps albums and images in memory with the same semantics as the SQL repositories
type memDB struct {
	mu      sync.Mutex
	albums  map[string]*models.Album
	images  map[string]*models.Image
	tagsErr error
}

func newMemDB() *memDB {
	return &memDB{albums: map[string]*models.Album{}, images: map[string]*models.Image{}}
}

type memAlbums struct{ db *memDB }

func (s memAlbums) Create(ctx context.Context, a *models.Album) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.albums[a.ID] = a
	return nil
}

func (s memAlbums) GetByID(ctx context.Context, id string) (*models.Album, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.albums[id]
	if !ok {
		return nil, fmt.Errorf("album %s: %w", id, repository.ErrNotFound)
	}
	copied := *a
	return &copied, nil
}

func (s memAlbums) List(ctx context.Context) ([]*models.Album, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]*models.Album, 0, len(s.db.albums))
	for _, a := range s.db.albums {
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s memAlbums) Delete(ctx context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.albums, id)
	for _, img := range s.db.images {
		if img.AlbumID != nil && *img.AlbumID == id {
			img.AlbumID = nil
		}
	}
	return nil
}

func (s memAlbums) SetPassword(ctx context.Context, id string, hash *string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.albums[id]
	if !ok {
		return fmt.Errorf("album %s: %w", id, repository.ErrNotFound)
	}
	a.PasswordHash = hash
	for _, img := range s.db.images {
		if img.AlbumID != nil && *img.AlbumID == id && !img.OverridePublic {
			img.IsPrivate = hash != nil
		}
	}
	return nil
}

type memImages struct{ db *memDB }

// view must be called with the lock held
func (s memImages) view(img *models.Image) *models.ImageView {
	copied := *img
	v := &models.ImageView{Image: &copied}
	if img.AlbumID != nil {
		if a, ok := s.db.albums[*img.AlbumID]; ok {
			v.AlbumProtected = a.Protected()
		}
	}
	return v
}

func (s memImages) Create(ctx context.Context, img *models.Image) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.images[img.ID] = img
	return nil
}

func (s memImages) GetByID(ctx context.Context, id string) (*models.ImageView, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	img, ok := s.db.images[id]
	if !ok {
		return nil, fmt.Errorf("image %s: %w", id, repository.ErrNotFound)
	}
	return s.view(img), nil
}

func (s memImages) filter(keep func(*models.Image) bool, limit int) []*models.ImageView {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []*models.ImageView{}
	for _, img := range s.db.images {
		if keep(img) {
			out = append(out, s.view(img))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s memImages) ListAll(ctx context.Context) ([]*models.ImageView, error) {
	return s.filter(func(*models.Image) bool { return true }, 0), nil
}

func (s memImages) ListByAlbum(ctx context.Context, albumID string) ([]*models.ImageView, error) {
	return s.filter(func(img *models.Image) bool { return img.AlbumID != nil && *img.AlbumID == albumID }, 0), nil
}

func (s memImages) ListFeatured(ctx context.Context, limit int) ([]*models.ImageView, error) {
	return s.filter(func(img *models.Image) bool { return img.Featured }, limit), nil
}

func (s memImages) ListRecent(ctx context.Context, limit int) ([]*models.ImageView, error) {
	return s.filter(func(*models.Image) bool { return true }, limit), nil
}

func (s memImages) Update(ctx context.Context, u *models.ImageUpdate) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	img, ok := s.db.images[u.ID]
	if !ok {
		return fmt.Errorf("image %s: %w", u.ID, repository.ErrNotFound)
	}
	img.Title, img.Description, img.AlbumID = u.Title, u.Description, u.AlbumID
	img.Featured, img.Tags = u.Featured, u.Tags
	if u.IsPrivate != nil {
		img.IsPrivate = *u.IsPrivate
	}
	if u.OverridePublic != nil {
		img.OverridePublic = *u.OverridePublic
	}
	return nil
}

func (s memImages) Delete(ctx context.Context, id string) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	img, ok := s.db.images[id]
	if !ok {
		return "", fmt.Errorf("image %s: %w", id, repository.ErrNotFound)
	}
	delete(s.db.images, id)
	return img.ThumbKey, nil
}

func (s memImages) GetForPresign(ctx context.Context, id string) (*models.PresignRow, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	img, ok := s.db.images[id]
	if !ok {
		return nil, fmt.Errorf("image %s: %w", id, repository.ErrNotFound)
	}
	row := &models.PresignRow{
		ImageID:        img.ID,
		AlbumID:        img.AlbumID,
		ObjectKey:      img.ObjectKey,
		ThumbKey:       img.ThumbKey,
		IsPrivate:      img.IsPrivate,
		OverridePublic: img.OverridePublic,
	}
	if img.AlbumID != nil {
		if a, ok := s.db.albums[*img.AlbumID]; ok && a.PasswordHash != nil {
			row.AlbumPasswordHash = *a.PasswordHash
		}
	}
	return row, nil
}

func (s memImages) Tags(ctx context.Context) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.tagsErr != nil {
		return nil, s.db.tagsErr
	}
	out := []string{}
	for _, img := range s.db.images {
		out = append(out, img.Tags)
	}
	return out, nil
}

// stubSigner signs by prefixing keys, so tests can tell which backend signed a URL
type stubSigner struct {
	prefix string
}

func (s stubSigner) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("%s%s?ttl=%d", s.prefix, key, int(ttl/time.Second)), nil
}

func (s stubSigner) PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return s.PresignGet(ctx, key, ttl)
}

func (s stubSigner) PublicURL(key string) string {
	return "https://cdn.example/" + key
}

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (b *memBlobs) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *memBlobs) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *memBlobs) PublicURL(key string) string {
	return "https://thumbs.example/" + key
}
