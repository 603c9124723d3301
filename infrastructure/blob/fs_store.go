package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"agent-hub/domain/repository"
)

// FSStore keeps blobs under a single root directory. Paths are relative
// keys like "videos/ugc_abc123.mp4".
type FSStore struct {
	root string
}

func NewFSStore(root string) (repository.IBlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}
	return &FSStore{root: root}, nil
}

// resolve joins the key under the root and rejects traversal outside it.
func (s *FSStore) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.Join(s.root, filepath.FromSlash(path)))
	if clean != s.root && !strings.HasPrefix(clean, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes storage root", path)
	}
	return clean, nil
}

func (s *FSStore) Put(path string, data []byte) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", path, err)
	}
	return nil
}

func (s *FSStore) Exists(path string) bool {
	full, err := s.resolve(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && !info.IsDir()
}

func (s *FSStore) Open(path string) (io.ReadSeekCloser, int64, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open blob %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func (s *FSStore) Delete(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", path, err)
	}
	return nil
}
