package database

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned by repositories when no document matches.
var ErrNotFound = errors.New("document not found")

// NotFound maps the driver's no-documents error to ErrNotFound and passes anything else through.
func NotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
