package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var ErrNotRegular = errors.New("not a regular file or directory")

// Storage reads traffic logs from the local filesystem.
type Storage struct {
	root string
}

// NewLocalStorage returns a Storage resolving relative paths against root.
// An empty root resolves against the working directory.
func NewLocalStorage(root string) *Storage {
	return &Storage{root: root}
}

func (s *Storage) resolve(path string) string {
	if s.root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.root, path)
}

// List expands path into the files it names. A regular file lists as itself;
// a directory lists its regular, non-hidden entries in lexical order.
func (s *Storage) List(_ context.Context, path string) ([]string, error) {
	full := s.resolve(path)
	info, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if info.Mode().IsRegular() {
		return []string{path}, nil
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read dir %s: %w", path, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// Open opens a file for reading.
func (s *Storage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(s.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	return file, nil
}
