package thumbnail

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not really a video"), 0o644))
	return path
}

func TestGenerateInvokesFFmpegWithFixedOffset(t *testing.T) {
	video := writeVideo(t)
	gen := NewGenerator("ffmpeg-test", time.Second)

	var gotName string
	var gotArgs []string
	gen.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return nil, os.WriteFile(args[len(args)-1], []byte("jpeg"), 0o644)
	}

	out, err := gen.Generate(context.Background(), video)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(video), "clip_thumb.jpg"), out)
	assert.Equal(t, "ffmpeg-test", gotName)
	assert.Equal(t, []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", "1",
		"-i", video,
		"-frames:v", "1",
		"-q:v", "2",
		filepath.Join(filepath.Dir(video), ".staging-clip_thumb.jpg"),
	}, gotArgs)
	assert.FileExists(t, out)
	assert.NoFileExists(t, gotArgs[len(gotArgs)-1])
}

func TestGenerateWrapsToolFailure(t *testing.T) {
	video := writeVideo(t)
	gen := NewGenerator("", 0)
	gen.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("moov atom not found"), errors.New("exit status 1")
	}

	_, err := gen.Generate(context.Background(), video)
	require.ErrorIs(t, err, ErrToolFailure)
	assert.Contains(t, err.Error(), "moov atom not found")
}

func TestGenerateEnforcesTimeout(t *testing.T) {
	video := writeVideo(t)
	gen := NewGenerator("ffmpeg", 20*time.Millisecond)
	gen.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	start := time.Now()
	_, err := gen.Generate(context.Background(), video)
	require.ErrorIs(t, err, ErrToolFailure)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestGenerateWithoutFrameFails(t *testing.T) {
	video := writeVideo(t)

	gen := NewGenerator("ffmpeg", time.Second)
	gen.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, nil
	}

	_, err := gen.Generate(context.Background(), video)
	require.ErrorIs(t, err, ErrToolFailure)
	assert.NoFileExists(t, OutputPath(video))
}

func TestGenerateFailureKeepsExistingThumbnail(t *testing.T) {
	video := writeVideo(t)
	out := OutputPath(video)
	require.NoError(t, os.WriteFile(out, []byte("good-jpeg"), 0o644))

	gen := NewGenerator("ffmpeg", time.Second)
	var staging string
	gen.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		staging = args[len(args)-1]
		_ = os.WriteFile(staging, []byte("partial"), 0o644)
		return []byte("decode error"), errors.New("exit status 1")
	}

	_, err := gen.Generate(context.Background(), video)
	require.ErrorIs(t, err, ErrToolFailure)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "good-jpeg", string(data))
	assert.NoFileExists(t, staging)
}

func TestGenerateOverwritesExistingThumbnail(t *testing.T) {
	video := writeVideo(t)
	out := OutputPath(video)
	require.NoError(t, os.WriteFile(out, []byte("old"), 0o644))

	gen := NewGenerator("ffmpeg", time.Second)
	gen.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, os.WriteFile(args[len(args)-1], []byte("new"), 0o644)
	}

	_, err := gen.Generate(context.Background(), video)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestAvailableMissingBinary(t *testing.T) {
	gen := NewGenerator("definitely-not-an-installed-binary-xyz", time.Second)
	assert.False(t, gen.Available())
}
