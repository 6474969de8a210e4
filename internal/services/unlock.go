package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/blackpiratelive/gallery-app/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// UnlockTTL is how long an album stays unlocked for a visitor
const UnlockTTL = 12 * time.Hour

const unlockGrant = "ok"

// AlbumReader loads albums by id
type AlbumReader interface {
	GetByID(ctx context.Context, id string) (*models.Album, error)
}

type unlockClaims struct {
	Unlock string `json:"unlock"`
	jwt.RegisteredClaims
}

// UnlockService verifies album passwords and issues signed unlock cookies
type UnlockService struct {
	albums AlbumReader
	secret []byte
	now    func() time.Time
}

// NewUnlockService creates a new unlock service signing cookies with secret
func NewUnlockService(albums AlbumReader, secret string) *UnlockService {
	return &UnlockService{
		albums: albums,
		secret: []byte(secret),
		now:    time.Now,
	}
}

// CookieName returns the cookie that carries the unlock grant for an album
func CookieName(albumID string) string {
	return "album_" + albumID
}

// Unlock checks password against the album's hash and returns the cookie to set.
// The cookie value is an HS256 JWT carrying unlock "ok" for the album subject, not a bare "ok".
func (s *UnlockService) Unlock(ctx context.Context, albumID, password string) (*http.Cookie, error) {
	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		if errors.Is(translate(err), ErrNotFound) {
			return nil, ErrNotProtected
		}
		return nil, fmt.Errorf("failed to load album: %w", err)
	}
	if !album.Protected() {
		return nil, ErrNotProtected
	}

	if !VerifyPassword(password, *album.PasswordHash) {
		return nil, ErrInvalidCredential
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, unlockClaims{
		Unlock: unlockGrant,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   albumID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(UnlockTTL)),
		},
	})
	value, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign unlock cookie: %w", err)
	}

	return &http.Cookie{
		Name:     CookieName(albumID),
		Value:    value,
		Path:     "/",
		MaxAge:   int(UnlockTTL / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Unlocked reports whether r carries a valid, unexpired unlock cookie for albumID
func (s *UnlockService) Unlocked(r *http.Request, albumID string) bool {
	if albumID == "" {
		return false
	}
	cookie, err := r.Cookie(CookieName(albumID))
	if err != nil {
		return false
	}

	var claims unlockClaims
	token, err := jwt.ParseWithClaims(cookie.Value, &claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(albumID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return false
	}
	return claims.Unlock == unlockGrant
}
