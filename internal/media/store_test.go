package media

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "media"))
	require.NoError(t, err)
	return store
}

func TestNewStoreCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "media")
	store, err := NewStore(root)
	require.NoError(t, err)

	info, err := os.Stat(store.Root())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewStoreRejectsEmptyRoot(t *testing.T) {
	_, err := NewStore("  ")
	require.Error(t, err)
}

func TestEnsureFolderIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.EnsureFolder("WO-1"))
	require.NoError(t, store.EnsureFolder("WO-1"))

	exists, err := store.FolderExists("WO-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestWriteThenReadIsByteExact(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureFolder("WO-1"))

	payload := []byte{0x00, 0xff, 0x10, '\n', 'x'}
	require.NoError(t, store.WriteFile("WO-1", "photo.jpg", bytes.NewReader(payload)))

	got, err := store.ReadFile("WO-1", "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestPaddedNamesRoundTrip(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureFolder(" WO-1"))
	require.NoError(t, store.WriteFile(" WO-1", "IMG 0042.jpg ", strings.NewReader("photo")))

	files, err := store.ListFiles(" WO-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"IMG 0042.jpg "}, files)

	ok, err := store.FileExists("WO-1", "IMG 0042.jpg ")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteOverwritesExistingFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureFolder("WO-1"))

	require.NoError(t, store.WriteFile("WO-1", "notes.pdf", strings.NewReader("first version")))
	require.NoError(t, store.WriteFile("WO-1", "notes.pdf", strings.NewReader("v2")))

	got, err := store.ReadFile("WO-1", "notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

func TestWriteIntoMissingFolderFails(t *testing.T) {
	store := newTestStore(t)

	err := store.WriteFile("missing", "a.jpg", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotFound)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestFailedWriteLeavesNoPartialFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureFolder("WO-1"))
	require.NoError(t, store.WriteFile("WO-1", "clip.mp4", strings.NewReader("original")))

	err := store.WriteFile("WO-1", "clip.mp4", failingReader{})
	require.Error(t, err)

	got, err := store.ReadFile("WO-1", "clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))

	entries, err := os.ReadDir(filepath.Join(store.Root(), "WO-1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "staging file should be cleaned up")
}

func TestListFilesSortedAndSkipsDirectories(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureFolder("WO-1"))
	require.NoError(t, store.WriteFile("WO-1", "b.jpg", strings.NewReader("b")))
	require.NoError(t, store.WriteFile("WO-1", "a.png", strings.NewReader("a")))
	require.NoError(t, os.Mkdir(filepath.Join(store.Root(), "WO-1", "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "WO-1", stagingPrefix+"123"), []byte("tmp"), 0o644))

	files, err := store.ListFiles("WO-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.jpg"}, files)
}

func TestListFilesMissingFolder(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ListFiles("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadMissingFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureFolder("WO-1"))

	_, err := store.ReadFile("WO-1", "absent.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureFolder("WO-1"))
	require.NoError(t, store.WriteFile("WO-1", "a.jpg", strings.NewReader("a")))

	require.NoError(t, store.DeleteFile("WO-1", "a.jpg"))
	assert.ErrorIs(t, store.DeleteFile("WO-1", "a.jpg"), ErrNotFound)
	assert.ErrorIs(t, store.DeleteFile("missing", "a.jpg"), ErrNotFound)
}

func TestDeleteFolderRemovesContents(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureFolder("WO-1"))
	require.NoError(t, store.WriteFile("WO-1", "a.jpg", strings.NewReader("a")))

	require.NoError(t, store.DeleteFolder("WO-1"))

	_, err := os.Stat(filepath.Join(store.Root(), "WO-1"))
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, store.DeleteFolder("WO-1"), ErrNotFound)
}

func TestListFoldersOnlyDirectories(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureFolder("b"))
	require.NoError(t, store.EnsureFolder("a"))
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "stray.txt"), []byte("x"), 0o644))

	folders, err := store.ListFolders()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, folders)
}

func TestPathTraversalIsRejected(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureFolder("WO-1"))

	cases := []struct {
		folder   string
		filename string
	}{
		{"..", "a.jpg"},
		{"../etc", "passwd"},
		{"WO-1", "../../escape.jpg"},
		{"WO-1", "sub/inner.jpg"},
		{"WO-1", `..\win.jpg`},
		{"", "a.jpg"},
		{"WO-1", ""},
		{"WO-1", "."},
		{"WO-1", "bad\x00name"},
	}
	for _, tc := range cases {
		_, err := store.Path(tc.folder, tc.filename)
		assert.ErrorIs(t, err, ErrInvalidName, "folder=%q file=%q", tc.folder, tc.filename)

		err = store.WriteFile(tc.folder, tc.filename, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName, "folder=%q file=%q", tc.folder, tc.filename)
	}

	assert.ErrorIs(t, store.DeleteFolder(".."), ErrInvalidName)
}

func TestFileExists(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureFolder("WO-1"))
	require.NoError(t, store.WriteFile("WO-1", "a.jpg", strings.NewReader("a")))

	ok, err := store.FileExists("WO-1", "a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.FileExists("WO-1", "b.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}
