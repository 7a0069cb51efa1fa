package media

import (
	"path/filepath"
	"strings"
)

// Kind classifies a stored file by its name.
type Kind string

const (
	KindImage     Kind = "image"
	KindVideo     Kind = "video"
	KindDocument  Kind = "document"
	KindThumbnail Kind = "thumbnail"
	KindOther     Kind = "other"
)

const (
	thumbnailSuffix = "_thumb.jpg"
	metadataExt     = ".json"
	documentExt     = ".pdf"
	stagingPrefix   = ".staging-"
	maxNameLength   = 255
)

var (
	imageExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".heic": true,
	}
	// VideoExtensions lists the recognised video extensions in lookup order.
	VideoExtensions = []string{".mp4", ".mov", ".webm"}
)

// KindOf infers the media kind from a filename. The thumbnail pattern is
// checked before the image extensions since thumbnails are JPEGs.
func KindOf(filename string) Kind {
	lower := strings.ToLower(filename)
	if IsThumbnail(filename) {
		return KindThumbnail
	}
	ext := filepath.Ext(lower)
	switch {
	case imageExtensions[ext]:
		return KindImage
	case isVideoExt(ext):
		return KindVideo
	case ext == documentExt:
		return KindDocument
	default:
		return KindOther
	}
}

// IsVideo reports whether filename carries a video extension.
func IsVideo(filename string) bool {
	return KindOf(filename) == KindVideo
}

// IsThumbnail reports whether filename follows the derived thumbnail pattern.
func IsThumbnail(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, thumbnailSuffix) && len(lower) > len(thumbnailSuffix)
}

// IsVisual reports whether filename is an image, video or thumbnail.
func IsVisual(filename string) bool {
	switch KindOf(filename) {
	case KindImage, KindVideo, KindThumbnail:
		return true
	}
	return false
}

// BaseName strips the extension from filename.
func BaseName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// ThumbnailName returns the companion thumbnail name for a video.
func ThumbnailName(video string) string {
	return BaseName(video) + thumbnailSuffix
}

// ThumbnailBase returns the video base name a thumbnail belongs to.
func ThumbnailBase(thumb string) string {
	return thumb[:len(thumb)-len(thumbnailSuffix)]
}

// MatchesVideoOf reports whether filename is a video whose base name equals base.
func MatchesVideoOf(filename, base string) bool {
	return IsVideo(filename) && BaseName(filename) == base
}

// MetadataName returns the reserved metadata document name for a folder.
func MetadataName(folder string) string {
	return folder + metadataExt
}

// DocumentName returns the fixed primary document name for a folder.
func DocumentName(folder string) string {
	return folder + documentExt
}

func isVideoExt(ext string) bool {
	for _, v := range VideoExtensions {
		if v == ext {
			return true
		}
	}
	return false
}

// StagingName is the hidden name used while name is being produced in place.
// Listings skip it.
func StagingName(name string) string {
	return stagingPrefix + name
}

func isStaging(name string) bool {
	return strings.HasPrefix(name, stagingPrefix)
}

// ValidateName checks a single folder or file name component.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return ErrInvalidName
	case len(name) > maxNameLength:
		return ErrInvalidName
	case strings.ContainsAny(name, "/\\\x00"):
		return ErrInvalidName
	case isStaging(name):
		return ErrInvalidName
	}
	return nil
}
