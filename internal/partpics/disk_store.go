package partpics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/url"
	"os"
	"path/filepath"

	"github.com/abduss/fieldservice/internal/media"
)

// PublicPrefix is the route prefix pictures are served from.
const PublicPrefix = "/parts-media/"

// DiskStore keeps pictures in a single flat directory.
type DiskStore struct {
	dir string
}

// NewDiskStore prepares dir, creating it when absent.
func NewDiskStore(dir string) (*DiskStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve parts media root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create parts media root: %w", err)
	}
	return &DiskStore{dir: abs}, nil
}

func (d *DiskStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	return media.WriteAtomic(d.dir, name, r)
}

func (d *DiskStore) Get(ctx context.Context, name string) (Object, error) {
	f, err := os.Open(filepath.Join(d.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Object{}, ErrNotFound
		}
		return Object{}, fmt.Errorf("open part picture: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return Object{}, fmt.Errorf("stat part picture: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return Object{}, ErrNotFound
	}
	return Object{
		Body:        f,
		Size:        info.Size(),
		ContentType: contentTypeOf(name),
	}, nil
}

func (d *DiskStore) Remove(ctx context.Context, name string) error {
	if err := os.Remove(filepath.Join(d.dir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("remove part picture: %w", err)
	}
	return nil
}

// URL reports the public route of a stored picture.
func (d *DiskStore) URL(ctx context.Context, name string) (string, error) {
	info, err := os.Stat(filepath.Join(d.dir, name))
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return PublicPrefix + url.PathEscape(name), nil
}

func contentTypeOf(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
