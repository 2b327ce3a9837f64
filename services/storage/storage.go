package storage

import (
	"bytes"
	"context"
	"fmt"

	"parkinglot/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore implements ImageStore on Cloudinary.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore creates a store from account credentials.
func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, ErrNotConfigured
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryStore{cld: cld}, nil
}

// Upload stores data under folder/name and returns its secure URL and public ID.
func (s *CloudinaryStore) Upload(ctx context.Context, data []byte, folder, name string) (models.ImageRef, error) {
	params := uploader.UploadParams{
		Folder:   folder,
		PublicID: name,
	}
	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), params)
	if err != nil {
		return models.ImageRef{}, fmt.Errorf("CloudinaryStore: failed to upload image: %w", err)
	}
	if result.PublicID == "" {
		return models.ImageRef{}, fmt.Errorf("CloudinaryStore: no public ID returned: %s", result.Error.Message)
	}
	return models.ImageRef{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

// Delete removes an image by public ID.
func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("CloudinaryStore: failed to delete image: %w", err)
	}
	return nil
}
