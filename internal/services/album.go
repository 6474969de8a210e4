package services

import (
	"context"

	"github.com/blackpiratelive/gallery-app/internal/models"
	"github.com/rs/zerolog/log"
)

// AlbumService handles album-related business logic
type AlbumService struct {
	albums AlbumStore
	events EventPublisher
}

// NewAlbumService creates a new album service
func NewAlbumService(albums AlbumStore, events EventPublisher) *AlbumService {
	return &AlbumService{
		albums: albums,
		events: publisherOrNoop(events),
	}
}

// List returns every album, newest first
func (s *AlbumService) List(ctx context.Context) ([]*models.AlbumView, error) {
	albums, err := s.albums.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*models.AlbumView, 0, len(albums))
	for _, a := range albums {
		views = append(views, albumView(a))
	}
	return views, nil
}

// Get returns one album
func (s *AlbumService) Get(ctx context.Context, id string) (*models.AlbumView, error) {
	album, err := s.albums.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return albumView(album), nil
}

// Create validates and stores a new album
func (s *AlbumService) Create(ctx context.Context, name string, description *string) (*models.Album, error) {
	album, err := models.NewAlbum(name, description)
	if err != nil {
		return nil, translate(err)
	}

	if err := s.albums.Create(ctx, album); err != nil {
		return nil, err
	}

	s.events.Publish(Event{Type: EventAlbumCreated, ID: album.ID})
	return album, nil
}

// Delete removes an album; its images are kept without an album
func (s *AlbumService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return invalid("id required")
	}
	if err := s.albums.Delete(ctx, id); err != nil {
		return err
	}

	s.events.Publish(Event{Type: EventAlbumDeleted, ID: id})
	return nil
}

// SetPassword protects an album with password, or clears protection when password is empty.
// Images of the album that are not overridden public follow the new protection state.
func (s *AlbumService) SetPassword(ctx context.Context, albumID, password string) error {
	if albumID == "" {
		return invalid("albumId required")
	}

	var hash *string
	if password != "" {
		h, err := HashPassword(password)
		if err != nil {
			return err
		}
		hash = &h
	}

	if err := s.albums.SetPassword(ctx, albumID, hash); err != nil {
		return translate(err)
	}

	protected := hash != nil
	log.Info().Str("album_id", albumID).Bool("protected", protected).Msg("Album protection changed")
	s.events.Publish(Event{Type: EventAlbumProtectionChanged, ID: albumID, Protected: &protected})
	return nil
}

func albumView(a *models.Album) *models.AlbumView {
	return &models.AlbumView{Album: a, Protected: a.Protected()}
}
