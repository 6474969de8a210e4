package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/blackpiratelive/gallery-app/internal/models"
	"github.com/blackpiratelive/gallery-app/internal/repository"
)

var (
	hashOnce   sync.Once
	secretHash string
)

// hashOfSecret returns a cost-12 hash of "secret", computed once per test binary
func hashOfSecret(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		h, err := HashPassword("secret")
		if err != nil {
			t.Fatalf("HashPassword: %v", err)
		}
		secretHash = h
	})
	return secretHash
}

func strPtr(s string) *string { return &s }

type fakeAlbumStore struct {
	albums map[string]*models.Album
	err    error
}

func newFakeAlbumStore(albums ...*models.Album) *fakeAlbumStore {
	s := &fakeAlbumStore{albums: map[string]*models.Album{}}
	for _, a := range albums {
		s.albums[a.ID] = a
	}
	return s
}

func (s *fakeAlbumStore) Create(ctx context.Context, a *models.Album) error {
	if s.err != nil {
		return s.err
	}
	s.albums[a.ID] = a
	return nil
}

func (s *fakeAlbumStore) GetByID(ctx context.Context, id string) (*models.Album, error) {
	if s.err != nil {
		return nil, s.err
	}
	a, ok := s.albums[id]
	if !ok {
		return nil, fmt.Errorf("album %s: %w", id, repository.ErrNotFound)
	}
	return a, nil
}

func (s *fakeAlbumStore) List(ctx context.Context) ([]*models.Album, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*models.Album, 0, len(s.albums))
	for _, a := range s.albums {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeAlbumStore) Delete(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	delete(s.albums, id)
	return nil
}

func (s *fakeAlbumStore) SetPassword(ctx context.Context, id string, hash *string) error {
	if s.err != nil {
		return s.err
	}
	a, ok := s.albums[id]
	if !ok {
		return fmt.Errorf("album %s: %w", id, repository.ErrNotFound)
	}
	a.PasswordHash = hash
	return nil
}

type fakeImageStore struct {
	images    map[string]*models.Image
	presign   map[string]*models.PresignRow
	tags      []string
	err       error
	lastLimit int
	lastCall  string
	updated   *models.ImageUpdate
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{
		images:  map[string]*models.Image{},
		presign: map[string]*models.PresignRow{},
	}
}

func (s *fakeImageStore) Create(ctx context.Context, img *models.Image) error {
	if s.err != nil {
		return s.err
	}
	s.images[img.ID] = img
	return nil
}

func (s *fakeImageStore) GetByID(ctx context.Context, id string) (*models.ImageView, error) {
	if s.err != nil {
		return nil, s.err
	}
	img, ok := s.images[id]
	if !ok {
		return nil, fmt.Errorf("image %s: %w", id, repository.ErrNotFound)
	}
	return &models.ImageView{Image: img}, nil
}

func (s *fakeImageStore) list(call string) ([]*models.ImageView, error) {
	s.lastCall = call
	if s.err != nil {
		return nil, s.err
	}
	out := []*models.ImageView{}
	for _, img := range s.images {
		out = append(out, &models.ImageView{Image: img})
	}
	return out, nil
}

func (s *fakeImageStore) ListAll(ctx context.Context) ([]*models.ImageView, error) {
	return s.list("all")
}

func (s *fakeImageStore) ListByAlbum(ctx context.Context, albumID string) ([]*models.ImageView, error) {
	return s.list("album:" + albumID)
}

func (s *fakeImageStore) ListFeatured(ctx context.Context, limit int) ([]*models.ImageView, error) {
	s.lastLimit = limit
	return s.list("featured")
}

func (s *fakeImageStore) ListRecent(ctx context.Context, limit int) ([]*models.ImageView, error) {
	s.lastLimit = limit
	return s.list("recent")
}

func (s *fakeImageStore) Update(ctx context.Context, u *models.ImageUpdate) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.images[u.ID]; !ok {
		return fmt.Errorf("image %s: %w", u.ID, repository.ErrNotFound)
	}
	s.updated = u
	return nil
}

func (s *fakeImageStore) Delete(ctx context.Context, id string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	img, ok := s.images[id]
	if !ok {
		return "", fmt.Errorf("image %s: %w", id, repository.ErrNotFound)
	}
	delete(s.images, id)
	return img.ThumbKey, nil
}

func (s *fakeImageStore) GetForPresign(ctx context.Context, id string) (*models.PresignRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	row, ok := s.presign[id]
	if !ok {
		return nil, fmt.Errorf("image %s: %w", id, repository.ErrNotFound)
	}
	return row, nil
}

func (s *fakeImageStore) Tags(ctx context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tags, nil
}

type fakeSigner struct {
	prefix  string
	err     error
	lastKey string
	lastTTL time.Duration
}

func (s *fakeSigner) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	s.lastKey, s.lastTTL = key, ttl
	if s.err != nil {
		return "", s.err
	}
	return s.prefix + key, nil
}

func (s *fakeSigner) PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return s.PresignGet(ctx, key, ttl)
}

func (s *fakeSigner) PublicURL(key string) string {
	return "https://public/" + key
}

type fakeBlobStore struct {
	objects map[string][]byte
	types   map[string]string
	err     error
	deleted []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeBlobStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if s.err != nil {
		return s.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = b
	s.types[key] = contentType
	return nil
}

func (s *fakeBlobStore) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	if s.err != nil {
		return s.err
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeBlobStore) PublicURL(key string) string {
	return "https://thumbs/" + key
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(evt Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var errDBDown = errors.New("db down")
