package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"wardrobe-be/internal/config"
)

var (
	ErrNotFound      = errors.New("file not found")
	ErrInvalidKey    = errors.New("invalid storage key")
	ErrInvalidImage  = errors.New("please upload an image (accepted formats: jpg, jpeg, png)")
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Disk stores uploaded files. Keys are slash separated and relative
// ("<ownerID>/imgs/<name>"); Path maps a key to the value persisted on
// entities and Key maps it back.
type Disk interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Path(key string) string
	Key(path string) (string, bool)
}

// New builds the disk selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (Disk, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocalDisk(cfg.StorageDir)
	case "s3":
		return NewS3Disk(ctx, S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Key:      cfg.S3Key,
			Secret:   cfg.S3Secret,
			Endpoint: cfg.S3Endpoint,
			BaseURL:  cfg.S3URL,
		})
	default:
		return nil, fmt.Errorf("%w: %q (supported: local, s3)", ErrUnknownDriver, cfg.StorageDriver)
	}
}
