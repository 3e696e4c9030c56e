package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	imageExt      = regexp.MustCompile(`(?i)\.(jpg|jpeg|png)$`)
	unsafeNameSeq = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ImageKey returns "<ownerID>/imgs/<unix-ms>-<name>" for an accepted image file name.
func ImageKey(ownerID uuid.UUID, filename string, now time.Time) (string, error) {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if !imageExt.MatchString(name) {
		return "", ErrInvalidImage
	}
	name = unsafeNameSeq.ReplaceAllString(name, "_")

	return fmt.Sprintf("%s/imgs/%d-%s", ownerID, now.UnixMilli(), name), nil
}

// SaveImage validates and stores an uploaded image, returning the path to persist.
func SaveImage(ctx context.Context, disk Disk, ownerID uuid.UUID, up *Upload) (string, error) {
	key, err := ImageKey(ownerID, up.Filename, time.Now())
	if err != nil {
		return "", err
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = ContentType(key)
	}

	if err := disk.Put(ctx, key, up.Body, contentType); err != nil {
		return "", err
	}
	return disk.Path(key), nil
}

// RemoveByPath deletes the file behind a persisted path. Paths the disk does
// not own are ignored.
func RemoveByPath(ctx context.Context, disk Disk, p string) error {
	key, ok := disk.Key(p)
	if !ok {
		return nil
	}
	return disk.Delete(ctx, key)
}

// ContentType guesses the MIME type from the file extension.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
