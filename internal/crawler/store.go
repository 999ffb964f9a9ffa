package crawler

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ResourceStore persists downloaded resources.
type ResourceStore interface {
	// Store writes data under name and returns the written path.
	Store(name string, data []byte) (string, error)
}

// DirStore writes resources as flat files into one directory.
// Two URLs sharing a last path segment overwrite each other.
type DirStore struct {
	dir string
}

// NewDirStore returns a store writing into dir. The directory is created
// on the first write.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

// Dir returns the target directory.
func (s *DirStore) Dir() string {
	return s.dir
}

// Store implements ResourceStore.
func (s *DirStore) Store(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create resource directory: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write resource: %w", err)
	}
	return path, nil
}

// ResourceName returns the file name for a resource URL: its last escaped
// path segment. It reports false when there is no usable segment (no path,
// a trailing slash, "." or "..").
func ResourceName(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	p := u.EscapedPath()
	name := p[strings.LastIndex(p, "/")+1:]
	switch name {
	case "", ".", "..":
		return "", false
	}
	return name, true
}
