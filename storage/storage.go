// Package storage is the object store behind the image and avatar buckets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"game-hub/config"

	"github.com/gosimple/slug"
)

var ErrInvalidKey = errors.New("invalid object key")

// Store uploads, addresses and removes objects inside named buckets.
type Store interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
	PublicURL(bucket, key string) string
	Remove(ctx context.Context, bucket string, keys ...string) error
}

// New builds the store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case "s3", "r2":
		return NewR2(ctx, R2Options{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessSecret,
			Bucket:          cfg.R2Bucket,
			CDNBaseURL:      cfg.CDNBaseURL,
			Endpoint:        cfg.S3Endpoint,
		})
	case "local", "":
		return NewDisk(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

// KeyFromURL maps a public URL produced by s back to its key.
// ok is false for URLs that point elsewhere.
func KeyFromURL(s Store, bucket, url string) (string, bool) {
	prefix := s.PublicURL(bucket, "")
	key, ok := strings.CutPrefix(url, prefix)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// ObjectKey builds "<owner>_<unix millis>_<slug>.<ext>" for an uploaded file name.
func ObjectKey(owner, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	base := slug.Make(strings.TrimSuffix(path.Base(filename), path.Ext(filename)))
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s_%d_%s%s", owner, now.UnixMilli(), base, ext)
}

// cleanKey rejects keys that would escape the bucket.
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned != key || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}
