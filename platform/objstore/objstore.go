// Package objstore provides object storage for rack snapshot images.
// This is part of the platform layer and contains no business logic.
package objstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"shelfsense_backend/platform/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PresignedURLTTL is the default expiration time for presigned URLs.
const PresignedURLTTL = 15 * time.Minute

// allowedContentTypes limits snapshot uploads to image formats the
// perception pipeline produces.
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// PresignedURL is a time-limited URL for direct object access.
type PresignedURL struct {
	URL       string
	FileKey   string
	ExpiresAt time.Time
}

// Service stores and retrieves rack snapshot images in a MinIO bucket.
type Service struct {
	client      *minio.Client
	bucket      string
	maxFileSize int64
}

// New creates a snapshot storage service from configuration.
func New(cfg config.StorageConfig) (*Service, error) {
	if !cfg.IsStorageEnabled() {
		return nil, fmt.Errorf("object storage is not configured")
	}

	client, err := minio.New(cfg.GetStorageEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetStorageAccessKey(), cfg.GetStorageSecretKey(), ""),
		Secure: cfg.GetStorageUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &Service{
		client:      client,
		bucket:      cfg.GetStorageBucket(),
		maxFileSize: cfg.GetStorageMaxFileSize(),
	}, nil
}

// EnsureBucket creates the snapshot bucket if it does not exist.
func (s *Service) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// UploadSnapshot stores a snapshot image and returns its object key.
// A short random suffix prevents overwrites when a shelf is captured twice
// in the same second.
func (s *Service) UploadSnapshot(ctx context.Context, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	if !allowedContentTypes[contentType] {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
	if size > s.maxFileSize {
		return "", fmt.Errorf("file size %d exceeds limit %d", size, s.maxFileSize)
	}

	ext := path.Ext(fileName)
	baseName := strings.TrimSuffix(fileName, ext)
	uniqueName := fmt.Sprintf("%s_%s%s", baseName, uuid.New().String()[:8], ext)
	fileKey := filepath.ToSlash(filepath.Join("snapshots", time.Now().UTC().Format("2006-01-02"), uniqueName))

	_, err := s.client.PutObject(ctx, s.bucket, fileKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot %s: %w", fileKey, err)
	}
	return fileKey, nil
}

// SnapshotURL returns a presigned download URL for a stored snapshot.
func (s *Service) SnapshotURL(ctx context.Context, fileKey string) (*PresignedURL, error) {
	expiresAt := time.Now().Add(PresignedURLTTL)

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, fileKey, PresignedURLTTL, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("presign snapshot %s: %w", fileKey, err)
	}

	return &PresignedURL{
		URL:       presigned.String(),
		FileKey:   fileKey,
		ExpiresAt: expiresAt,
	}, nil
}

// DeleteSnapshot removes a stored snapshot.
func (s *Service) DeleteSnapshot(ctx context.Context, fileKey string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, fileKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", fileKey, err)
	}
	return nil
}
