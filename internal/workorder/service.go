package workorder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/abduss/fieldservice/internal/media"
	"github.com/abduss/fieldservice/internal/metrics"
	"github.com/abduss/fieldservice/internal/notify"
	"github.com/abduss/fieldservice/internal/thumbnail"
	"go.uber.org/zap"
)

type mediaStore interface {
	EnsureFolder(folder string) error
	FolderExists(folder string) (bool, error)
	FileExists(folder, filename string) (bool, error)
	Path(folder, filename string) (string, error)
	WriteFile(folder, filename string, r io.Reader) error
	ReadFile(folder, filename string) ([]byte, error)
	ListFiles(folder string) ([]string, error)
	ListFolders() ([]string, error)
	DeleteFile(folder, filename string) error
	DeleteFolder(folder string) error
}

// Thumbnailer extracts a still frame next to a stored video.
type Thumbnailer interface {
	Generate(ctx context.Context, videoPath string) (string, error)
}

// Service manages work order folders: the metadata document, the primary
// document and attached media.
type Service struct {
	store    mediaStore
	thumbs   Thumbnailer
	notifier notify.Notifier
	baseURL  string
	log      *zap.Logger
	now      func() time.Time
	pending  sync.WaitGroup
}

// NewService constructs a work order service. thumbs and notifier may be nil,
// in which case thumbnails are skipped and no notification is sent.
func NewService(store mediaStore, thumbs Thumbnailer, notifier notify.Notifier, publicBaseURL string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		thumbs:   thumbs,
		notifier: notifier,
		baseURL:  publicBaseURL,
		log:      log,
		now:      time.Now,
	}
}

// Create stores the metadata document and the primary document of a new
// work order. The two writes are independent; a failure in one does not
// undo the other.
func (s *Service) Create(ctx context.Context, folder string, metadata []byte, document io.Reader) (string, error) {
	if err := media.ValidateName(folder); err != nil {
		return "", translateMediaError(err)
	}
	if !json.Valid(metadata) {
		return "", invalid("metadata is not valid JSON")
	}
	if document == nil {
		return "", invalid("primary document is required")
	}

	if err := s.store.EnsureFolder(folder); err != nil {
		return "", translateMediaError(err)
	}

	var errs []error
	if err := s.store.WriteFile(folder, media.MetadataName(folder), bytes.NewReader(metadata)); err != nil {
		errs = append(errs, fmt.Errorf("write metadata: %w", err))
	}
	if err := s.store.WriteFile(folder, media.DocumentName(folder), document); err != nil {
		errs = append(errs, fmt.Errorf("write document: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		s.log.Error("create work order incomplete", zap.String("folder", folder), zap.Error(err))
		return "", err
	}

	s.log.Info("work order created", zap.String("folder", folder))
	return folder, nil
}

// Read returns the stored metadata document. A document that does not parse
// as JSON yields ErrCorruptMetadata.
func (s *Service) Read(ctx context.Context, folder string) (Record, error) {
	data, err := s.store.ReadFile(folder, media.MetadataName(folder))
	if err != nil {
		return Record{}, translateMediaError(err)
	}
	if !json.Valid(data) {
		return Record{}, fmt.Errorf("%w: %s", ErrCorruptMetadata, media.MetadataName(folder))
	}
	return Record{Folder: folder, Metadata: data}, nil
}

// Replace overwrites the metadata document wholesale. Content that is not
// valid JSON is still written and later reads fail with ErrCorruptMetadata.
func (s *Service) Replace(ctx context.Context, folder string, metadata []byte) error {
	exists, err := s.store.FolderExists(folder)
	if err != nil {
		return translateMediaError(err)
	}
	if !exists {
		return ErrNotFound
	}
	if !json.Valid(metadata) {
		s.log.Warn("replacing metadata with invalid JSON", zap.String("folder", folder))
	}
	if err := s.store.WriteFile(folder, media.MetadataName(folder), bytes.NewReader(metadata)); err != nil {
		return translateMediaError(err)
	}
	return nil
}

// Delete removes the work order folder and all of its files.
func (s *Service) Delete(ctx context.Context, folder string) error {
	if err := s.store.DeleteFolder(folder); err != nil {
		return translateMediaError(err)
	}
	s.log.Info("work order deleted", zap.String("folder", folder))
	return nil
}

// List returns every folder under the media root.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.store.ListFolders()
}

// AddMedia stores files in the folder, creating it when absent. Each video
// is thumbnailed right after it is written; thumbnail failures are recorded
// in the result and never fail the call.
func (s *Service) AddMedia(ctx context.Context, folder string, files []Upload) (UploadResult, error) {
	result := UploadResult{Files: []string{}}
	if err := media.ValidateName(folder); err != nil {
		return result, translateMediaError(err)
	}
	if len(files) == 0 {
		return result, invalid("at least one file is required")
	}
	for _, f := range files {
		if err := s.checkUploadName(folder, f.Filename); err != nil {
			return result, err
		}
	}

	if err := s.store.EnsureFolder(folder); err != nil {
		return result, translateMediaError(err)
	}

	var errs []error
	for _, f := range files {
		if err := s.store.WriteFile(folder, f.Filename, f.Body); err != nil {
			errs = append(errs, fmt.Errorf("store %s: %w", f.Filename, err))
			continue
		}
		result.Files = append(result.Files, f.Filename)
		metrics.ObserveStoredFile(string(media.KindOf(f.Filename)))

		if media.IsVideo(f.Filename) {
			s.dropThumbnail(folder, f.Filename)
			result.Thumbnails = append(result.Thumbnails, s.thumbnail(ctx, folder, f.Filename))
		}
	}

	if len(result.Files) > 0 {
		s.dispatchNotification(ctx, folder)
	}
	return result, errors.Join(errs...)
}

func (s *Service) checkUploadName(folder, filename string) error {
	if err := media.ValidateName(filename); err != nil {
		return fmt.Errorf("%w: file %q", ErrInvalidInput, filename)
	}
	if filename == media.MetadataName(folder) {
		return invalid("the metadata document cannot be uploaded as media")
	}
	if media.IsThumbnail(filename) {
		return invalid(fmt.Sprintf("%q uses the reserved thumbnail name pattern", filename))
	}
	return nil
}

// dropThumbnail removes the thumbnail left by an earlier upload of video.
func (s *Service) dropThumbnail(folder, video string) {
	err := s.store.DeleteFile(folder, media.ThumbnailName(video))
	if err != nil && !errors.Is(err, media.ErrNotFound) {
		s.log.Warn("remove stale thumbnail", zap.String("folder", folder), zap.String("video", video), zap.Error(err))
	}
}

func (s *Service) thumbnail(ctx context.Context, folder, video string) thumbnail.Result {
	res := thumbnail.Result{Video: video, Status: thumbnail.StatusSkipped}
	log := s.log.With(zap.String("folder", folder), zap.String("video", video))

	if s.thumbs == nil {
		log.Debug("thumbnail skipped: generator disabled")
		metrics.ObserveThumbnail(string(res.Status))
		return res
	}

	path, err := s.store.Path(folder, video)
	if err != nil {
		res.Status = thumbnail.StatusFailed
		res.Error = err.Error()
	} else if _, err := s.thumbs.Generate(ctx, path); err != nil {
		res.Status = thumbnail.StatusFailed
		res.Error = err.Error()
	} else {
		res.Status = thumbnail.StatusSucceeded
		res.Thumbnail = media.ThumbnailName(video)
	}

	if res.Status == thumbnail.StatusFailed {
		log.Warn("thumbnail generation failed", zap.String("error", res.Error))
	} else {
		log.Debug("thumbnail generated", zap.String("thumbnail", res.Thumbnail))
	}
	metrics.ObserveThumbnail(string(res.Status))
	return res
}

// RegenerateThumbnails thumbnails the videos of a folder. Unless force is
// set, videos that already have a thumbnail are left alone.
func (s *Service) RegenerateThumbnails(ctx context.Context, folder string, force bool) ([]thumbnail.Result, error) {
	files, err := s.store.ListFiles(folder)
	if err != nil {
		return nil, translateMediaError(err)
	}
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f] = true
	}

	results := []thumbnail.Result{}
	for _, f := range files {
		if !media.IsVideo(f) {
			continue
		}
		if !force && present[media.ThumbnailName(f)] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, s.thumbnail(ctx, folder, f))
	}
	return results, nil
}

// RemoveMedia deletes a file together with its companion: a video takes its
// thumbnail along, a thumbnail takes every video sharing its base name.
// It returns the names actually removed.
func (s *Service) RemoveMedia(ctx context.Context, folder, filename string) ([]string, error) {
	if filename == media.MetadataName(folder) {
		return nil, invalid("the metadata document cannot be removed as media")
	}
	if err := s.store.DeleteFile(folder, filename); err != nil {
		return nil, translateMediaError(err)
	}
	removed := []string{filename}

	switch {
	case media.IsVideo(filename):
		thumb := media.ThumbnailName(filename)
		err := s.store.DeleteFile(folder, thumb)
		switch {
		case err == nil:
			removed = append(removed, thumb)
		case !errors.Is(err, media.ErrNotFound):
			return removed, fmt.Errorf("remove thumbnail %s: %w", thumb, err)
		}
	case media.IsThumbnail(filename):
		base := media.ThumbnailBase(filename)
		files, err := s.store.ListFiles(folder)
		if err != nil {
			return removed, translateMediaError(err)
		}
		for _, f := range files {
			if !media.MatchesVideoOf(f, base) {
				continue
			}
			if err := s.store.DeleteFile(folder, f); err != nil && !errors.Is(err, media.ErrNotFound) {
				return removed, fmt.Errorf("remove video %s: %w", f, err)
			}
			removed = append(removed, f)
		}
	}

	s.log.Info("media removed", zap.String("folder", folder), zap.Strings("files", removed))
	return removed, nil
}

// ListMedia returns the image and video files of a folder, thumbnails included.
func (s *Service) ListMedia(ctx context.Context, folder string) ([]string, error) {
	files, err := s.store.ListFiles(folder)
	if err != nil {
		return nil, translateMediaError(err)
	}
	metadataName := media.MetadataName(folder)
	out := make([]string, 0, len(files))
	for _, f := range files {
		if f == metadataName || !media.IsVisual(f) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// Gallery lists images and videos for the album view. Thumbnails are attached
// to their video instead of being listed on their own.
func (s *Service) Gallery(ctx context.Context, folder string) ([]GalleryItem, error) {
	files, err := s.ListMedia(ctx, folder)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f] = true
	}

	items := make([]GalleryItem, 0, len(files))
	for _, f := range files {
		kind := media.KindOf(f)
		if kind == media.KindThumbnail {
			continue
		}
		item := GalleryItem{Name: f, Kind: string(kind), URL: MediaURL(folder, f)}
		if kind == media.KindVideo {
			if thumb := media.ThumbnailName(f); present[thumb] {
				item.ThumbnailURL = MediaURL(folder, thumb)
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// MediaPath resolves the on-disk path of a stored file for serving.
func (s *Service) MediaPath(folder, filename string) (string, error) {
	ok, err := s.store.FileExists(folder, filename)
	if err != nil {
		return "", translateMediaError(err)
	}
	if !ok {
		return "", ErrNotFound
	}
	path, err := s.store.Path(folder, filename)
	return path, translateMediaError(err)
}

// Wait blocks until dispatched notifications have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// MediaURL is the public path of a stored file.
func MediaURL(folder, filename string) string {
	return "/media/" + url.PathEscape(folder) + "/" + url.PathEscape(filename)
}
