package storage

import (
	"context"
	"errors"

	"parkinglot/models"
)

// ErrNotConfigured is returned when an upload is attempted without image hosting credentials.
var ErrNotConfigured = errors.New("image storage is not configured")

// ImageStore hosts vehicle photos.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, folder, name string) (models.ImageRef, error)
	Delete(ctx context.Context, publicID string) error
}
