package media

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Store keeps files in per-folder directories under a single root.
type Store struct {
	root string
}

// NewStore prepares a store rooted at root, creating the directory when absent.
func NewStore(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("media root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media root: %w", err)
	}
	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute root directory.
func (s *Store) Root() string {
	return s.root
}

// EnsureFolder creates the folder if it does not exist yet.
func (s *Store) EnsureFolder(folder string) error {
	dir, err := s.folderPath(folder)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create folder %q: %w", folder, err)
	}
	return nil
}

// FolderExists reports whether the folder is present as a directory.
func (s *Store) FolderExists(folder string) (bool, error) {
	dir, err := s.folderPath(folder)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat folder %q: %w", folder, err)
	}
	return info.IsDir(), nil
}

// FileExists reports whether the file is present in the folder.
func (s *Store) FileExists(folder, filename string) (bool, error) {
	path, err := s.Path(folder, filename)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat file %q: %w", filename, err)
	}
	return info.Mode().IsRegular(), nil
}

// Path resolves the absolute path of a file after validating both names.
func (s *Store) Path(folder, filename string) (string, error) {
	dir, err := s.folderPath(folder)
	if err != nil {
		return "", err
	}
	if err := ValidateName(filename); err != nil {
		return "", err
	}
	return within(dir, filename)
}

// WriteFile stores the full stream under folder/filename, replacing any
// existing file only once every byte has been persisted.
func (s *Store) WriteFile(folder, filename string, r io.Reader) error {
	dir, err := s.folderPath(folder)
	if err != nil {
		return err
	}
	if err := ValidateName(filename); err != nil {
		return err
	}
	if err := WriteAtomic(dir, filename, r); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ReadFile returns the content of folder/filename.
func (s *Store) ReadFile(folder, filename string) ([]byte, error) {
	path, err := s.Path(folder, filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s/%s: %w", folder, filename, err)
	}
	return data, nil
}

// ListFiles returns the sorted regular file names in a folder.
func (s *Store) ListFiles(folder string) ([]string, error) {
	dir, err := s.folderPath(folder)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("list folder %q: %w", folder, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || isStaging(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

// ListFolders returns the sorted directory names directly under the root.
func (s *Store) ListFolders() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list media root: %w", err)
	}
	folders := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, entry.Name())
		}
	}
	sort.Strings(folders)
	return folders, nil
}

// DeleteFile removes folder/filename.
func (s *Store) DeleteFile(folder, filename string) error {
	path, err := s.Path(folder, filename)
	if err != nil {
		return err
	}
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("stat %s/%s: %w", folder, filename, err)
	}
	if info.IsDir() {
		return ErrNotFound
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("remove %s/%s: %w", folder, filename, err)
	}
	return nil
}

// DeleteFolder removes the folder and everything inside it.
func (s *Store) DeleteFolder(folder string) error {
	exists, err := s.FolderExists(folder)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	dir, err := s.folderPath(folder)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove folder %q: %w", folder, err)
	}
	return nil
}

func (s *Store) folderPath(folder string) (string, error) {
	if err := ValidateName(folder); err != nil {
		return "", err
	}
	return within(s.root, folder)
}

// within joins name onto dir and rejects results that leave dir.
func within(dir, name string) (string, error) {
	joined := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, joined)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidName
	}
	return joined, nil
}

// WriteAtomic copies r into a staging file inside dir, syncs it and renames
// it over dir/name.
func WriteAtomic(dir, name string, r io.Reader) error {
	tmp, err := os.CreateTemp(dir, stagingPrefix+"*")
	if err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	committed = true
	return nil
}
