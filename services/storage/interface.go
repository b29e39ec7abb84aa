package storage

import (
	"context"
	"io"
)

// UploadResult identifies a stored media asset.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// StorageService defines the interface for media storage operations.
type StorageService interface {
	// Upload stores the content of r under folder.
	Upload(ctx context.Context, r io.Reader, folder string) (*UploadResult, error)
	// DeleteByURL removes the asset that a delivery URL points to.
	DeleteByURL(ctx context.Context, url string) error
}
