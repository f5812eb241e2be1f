package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"dhammasound/config"
	"dhammasound/logger"
)

// Storage uploads media files to a MinIO bucket and hands back public URLs.
type Storage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// New connects to MinIO and makes sure the bucket exists.
func New(cfg *config.Config) (*Storage, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		logger.Info("bucket created", logger.String("bucket", cfg.MinioBucket))
	}

	return &Storage{
		client:    client,
		bucket:    cfg.MinioBucket,
		publicURL: strings.TrimRight(cfg.MinioPublicURL, "/"),
	}, nil
}

// UploadLocalFile pushes a local file into the bucket under the given
// folder and returns its public URL. The local temp file is removed
// afterwards; a failed removal is logged but not surfaced.
func (s *Storage) UploadLocalFile(ctx context.Context, localPath, folder string) (string, error) {
	objectName := folder + "/" + filepath.Base(localPath)

	contentType := contentTypeFor(localPath)
	_, err := s.client.FPutObject(ctx, s.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}

	if err := os.Remove(localPath); err != nil {
		logger.Warn("failed to remove temp file",
			logger.String("path", localPath),
			logger.ErrorField(err))
	}

	return s.publicURL + "/" + s.bucket + "/" + objectName, nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wave"
	default:
		return "application/octet-stream"
	}
}
