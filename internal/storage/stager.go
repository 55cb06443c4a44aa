package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyUpload is returned when there are no bytes to stage
var ErrEmptyUpload = errors.New("empty upload")

// Stager writes uploaded audio to uniquely named temporary files
type Stager struct {
	dir string
}

// NewStager stages files under dir. An empty dir uses the OS temp directory.
func NewStager(dir string) *Stager {
	return &Stager{dir: dir}
}

// Stage writes data to a new temp file carrying the extension of fileName
// and returns its path. The file is synced, closed and its size checked
// before Stage returns, so the path is ready for a reader. A partially
// written file is removed on failure.
func (s *Stager) Stage(data []byte, fileName string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyUpload
	}

	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create upload directory: %w", err)
		}
	}

	f, err := os.CreateTemp(s.dir, "upload-*"+tempSuffix(fileName))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()

	if err := writeAndFlush(f, data); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to stat staged file: %w", err)
	}
	if info.Size() != int64(len(data)) {
		_ = os.Remove(path)
		return "", fmt.Errorf("staged file size mismatch: wrote %d bytes, found %d", len(data), info.Size())
	}

	return path, nil
}

// Remove deletes a staged file
func (s *Stager) Remove(path string) error {
	return os.Remove(path)
}

func writeAndFlush(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	return nil
}

// tempSuffix keeps the original extension so remote services can infer the format
func tempSuffix(fileName string) string {
	ext := filepath.Ext(filepath.Base(fileName))
	if strings.ContainsAny(ext, `*/\`) {
		return ""
	}
	return ext
}
