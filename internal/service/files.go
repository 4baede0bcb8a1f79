package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// MaxUploadFiles caps how many files a single upload request may carry.
const MaxUploadFiles = 5

// FileStore writes uploaded files under a fixed directory. Stored paths are
// the on-disk relative paths, named by upload timestamp plus original name.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Store writes src to disk and returns the stored relative path.
func (s *FileStore) Store(src io.Reader, originalName string) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(originalName))
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path, nil
}

// Remove unlinks a stored file. A file already gone is not an error; the
// metadata list is the source of truth.
func (s *FileStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}
