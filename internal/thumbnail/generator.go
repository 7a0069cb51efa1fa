// Package thumbnail extracts still frames from stored videos with ffmpeg.
package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/abduss/fieldservice/internal/media"
)

const (
	// DefaultBinary is the ffmpeg executable looked up on PATH.
	DefaultBinary = "ffmpeg"
	// DefaultTimeout bounds a single ffmpeg invocation.
	DefaultTimeout = 30 * time.Second

	frameOffset  = "1"
	frameQuality = "2"
)

// ErrToolFailure wraps every ffmpeg failure, including timeouts.
var ErrToolFailure = errors.New("thumbnail tool failure")

// Status is the recorded outcome of a thumbnail attempt.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Result describes what happened to one video during ingestion.
type Result struct {
	Video     string `json:"video"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Status    Status `json:"status"`
	Error     string `json:"error,omitempty"`
}

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Generator runs ffmpeg with a bounded timeout.
type Generator struct {
	binary  string
	timeout time.Duration
	run     commandRunner
}

// NewGenerator builds a generator. Empty values fall back to defaults.
func NewGenerator(binary string, timeout time.Duration) *Generator {
	if binary == "" {
		binary = DefaultBinary
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Generator{
		binary:  binary,
		timeout: timeout,
		run:     runCommand,
	}
}

// Available reports whether the ffmpeg binary can be resolved.
func (g *Generator) Available() bool {
	_, err := exec.LookPath(g.binary)
	return err == nil
}

// OutputPath returns where the thumbnail for videoPath is written.
func OutputPath(videoPath string) string {
	dir, name := filepath.Split(videoPath)
	return filepath.Join(dir, media.ThumbnailName(name))
}

// Generate writes <base>_thumb.jpg beside videoPath from the frame at one
// second. ffmpeg renders into a staging file that replaces the thumbnail only
// on success, so a failed run leaves any existing thumbnail in place.
func (g *Generator) Generate(ctx context.Context, videoPath string) (string, error) {
	out := OutputPath(videoPath)
	staging := filepath.Join(filepath.Dir(out), media.StagingName(filepath.Base(out)))
	defer func() { _ = os.Remove(staging) }()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", frameOffset,
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", frameQuality,
		staging,
	}

	output, err := g.run(ctx, g.binary, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: ffmpeg %s after %s: %v", ErrToolFailure, filepath.Base(videoPath), g.timeout, ctxErr)
		}
		return "", fmt.Errorf("%w: ffmpeg %s: %v: %s", ErrToolFailure, filepath.Base(videoPath), err, strings.TrimSpace(string(output)))
	}
	// ffmpeg exits cleanly without output when the video is shorter than the offset.
	if info, err := os.Stat(staging); err != nil || info.Size() == 0 {
		return "", fmt.Errorf("%w: no frame extracted from %s", ErrToolFailure, filepath.Base(videoPath))
	}
	if err := os.Rename(staging, out); err != nil {
		return "", fmt.Errorf("commit thumbnail %s: %w", filepath.Base(out), err)
	}
	return out, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}
