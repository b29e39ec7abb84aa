package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage implements StorageService on Cloudinary.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage creates a Cloudinary-backed StorageService.
func NewCloudinaryStorage(cloudName, apiKey, apiSecret string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryStorage{cld: cld}, nil
}

// Upload uploads the content of r into folder and returns its secure URL.
func (s *CloudinaryStorage) Upload(ctx context.Context, r io.Reader, folder string) (*UploadResult, error) {
	result, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: folder})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload file: %s", result.Error.Message)
	}
	if result.PublicID == "" {
		return nil, fmt.Errorf("no public ID returned")
	}
	return &UploadResult{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

// DeleteByURL destroys the asset behind a Cloudinary delivery URL.
func (s *CloudinaryStorage) DeleteByURL(ctx context.Context, url string) error {
	publicID := PublicIDFromURL(url)
	if publicID == "" {
		return fmt.Errorf("not a cloudinary URL: %s", url)
	}
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

var versionSegment = regexp.MustCompile(`^v\d+/`)

// PublicIDFromURL extracts the public ID (folder path without extension) from
// a delivery URL such as https://res.cloudinary.com/demo/image/upload/v17/listings/logo.png.
func PublicIDFromURL(url string) string {
	i := strings.Index(url, "/upload/")
	if i < 0 {
		return ""
	}
	rest := url[i+len("/upload/"):]
	if q := strings.IndexAny(rest, "?#"); q >= 0 {
		rest = rest[:q]
	}
	rest = versionSegment.ReplaceAllString(rest, "")
	return strings.TrimSuffix(rest, path.Ext(rest))
}
