package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes objects under root/<bucket>/<key>, served statically at baseURL.
type DiskStore struct {
	root    string
	baseURL string
}

func NewDisk(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to ensure upload dir: %w", err)
	}
	return &DiskStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root is the directory to mount as static files.
func (s *DiskStore) Root() string {
	return s.root
}

func (s *DiskStore) path(bucket, key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, bucket, filepath.FromSlash(key)), nil
}

func (s *DiskStore) Upload(ctx context.Context, bucket, key string, body io.Reader, _ string) error {
	dest, err := s.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return err
	}

	dst, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, body); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return ctx.Err()
}

func (s *DiskStore) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, bucket, key)
}

// Remove ignores keys that are already gone.
func (s *DiskStore) Remove(_ context.Context, bucket string, keys ...string) error {
	for _, k := range keys {
		p, err := s.path(bucket, k)
		if err != nil {
			return err
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
