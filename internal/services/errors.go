package services

import (
	"errors"
	"fmt"

	"github.com/blackpiratelive/gallery-app/internal/models"
	"github.com/blackpiratelive/gallery-app/internal/repository"
)

var (
	// ErrNotFound is returned when the referenced album or image does not exist
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when neither admin credentials nor an unlock cookie grant access
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredential is returned for a wrong album password
	ErrInvalidCredential = errors.New("invalid password")
	// ErrNotProtected is returned when unlocking an album that has no password
	ErrNotProtected = errors.New("album not protected or not found")
	// ErrIntegrity is returned when a row lacks a storage key it should have
	ErrIntegrity = errors.New("missing object key")
	// ErrValidation is returned for malformed input
	ErrValidation = errors.New("validation failed")
)

// ValidationError carries a client-facing message and matches ErrValidation
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap lets callers match on ErrValidation
func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// translate maps lower layer errors onto the service taxonomy
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, models.ErrInvalidRecord):
		return &ValidationError{Message: err.Error()}
	default:
		return err
	}
}
