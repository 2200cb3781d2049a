package opuspdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/OPUS4/opus4-pdf/internal/fileutil"
)

// FileCache stores merged cover files as {dir}/{documentId}-{fileName}.
type FileCache struct {
	dir string
}

// NewFileCache creates a FileCache rooted at dir.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Path returns the cache path for a document file.
func (c *FileCache) Path(docID int, fileName string) (string, error) {
	base := filepath.Base(fileName)
	if err := fileutil.ValidateName(base); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCacheWrite, err)
	}
	return filepath.Join(c.dir, strconv.Itoa(docID)+"-"+base), nil
}

// Valid reports whether path holds a cached file at least as recent as
// modified. Timestamps are compared at one-second precision.
func (c *FileCache) Valid(path string, modified time.Time) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.ModTime().Unix() >= modified.Unix()
}

// Lookup returns the cache path for a document file and whether it is valid.
func (c *FileCache) Lookup(doc *Document, file File) (string, bool) {
	path, err := c.Path(doc.ID, file.PathName)
	if err != nil {
		return "", false
	}
	return path, c.Valid(path, doc.ServerDateModified)
}

// Ensure creates the cache directory.
func (c *FileCache) Ensure() error {
	if c.dir == "" {
		return fmt.Errorf("%w: no cache directory configured", ErrCacheWrite)
	}
	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheWrite, err)
	}
	return nil
}

// Clear removes the cached files of a document.
func (c *FileCache) Clear(docID int) (int, error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, strconv.Itoa(docID)+"-*"))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, m := range matches {
		if err := os.Remove(m); err == nil {
			removed++
		}
	}
	return removed, nil
}
