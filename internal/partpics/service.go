// Package partpics stores the flat catalog of part pictures referenced by
// catalog parts through their part_pic field.
package partpics

import (
	"context"
	"fmt"
	"io"

	"github.com/abduss/fieldservice/internal/media"
	"github.com/abduss/fieldservice/internal/metrics"
	"go.uber.org/zap"
)

// Object is an opened picture.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// Picture describes a stored picture and where clients can fetch it.
type Picture struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type blobStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, name string) (Object, error)
	Remove(ctx context.Context, name string) error
	URL(ctx context.Context, name string) (string, error)
}

// Service validates picture names and delegates to the configured backend.
type Service struct {
	store blobStore
	log   *zap.Logger
}

// NewService constructs a part picture service.
func NewService(store blobStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

// Upload stores a picture under name, replacing any previous one.
func (s *Service) Upload(ctx context.Context, name string, r io.Reader, size int64, contentType string) (Picture, error) {
	if err := checkName(name); err != nil {
		return Picture{}, err
	}
	if err := s.store.Put(ctx, name, r, size, contentType); err != nil {
		return Picture{}, fmt.Errorf("store part picture %s: %w", name, err)
	}
	metrics.ObserveStoredFile("part_picture")

	url, err := s.store.URL(ctx, name)
	if err != nil {
		return Picture{}, err
	}
	s.log.Info("part picture stored", zap.String("name", name))
	return Picture{Name: name, URL: url}, nil
}

// Open returns the picture content. Callers close Body.
func (s *Service) Open(ctx context.Context, name string) (Object, error) {
	if err := checkName(name); err != nil {
		return Object{}, err
	}
	return s.store.Get(ctx, name)
}

// Remove deletes a picture.
func (s *Service) Remove(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, name); err != nil {
		return err
	}
	s.log.Info("part picture removed", zap.String("name", name))
	return nil
}

// Locate returns the fetch URL of a stored picture.
func (s *Service) Locate(ctx context.Context, name string) (Picture, error) {
	if err := checkName(name); err != nil {
		return Picture{}, err
	}
	url, err := s.store.URL(ctx, name)
	if err != nil {
		return Picture{}, err
	}
	return Picture{Name: name, URL: url}, nil
}

func checkName(name string) error {
	if err := media.ValidateName(name); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if media.KindOf(name) != media.KindImage {
		return fmt.Errorf("%w: %q is not an image", ErrInvalidName, name)
	}
	return nil
}
