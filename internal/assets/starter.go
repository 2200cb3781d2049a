package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
)

//go:embed starter
var starter embed.FS

// StarterTemplate is the name of the embedded default cover template.
const StarterTemplate = "default-cover.md"

// StarterFiles lists the embedded starter files, relative to the templates directory.
func StarterFiles() []string {
	var files []string
	_ = fs.WalkDir(starter, "starter", func(p string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		rel, _ := filepath.Rel("starter", filepath.FromSlash(p))
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(files)
	return files
}

// ReadStarter returns the content of an embedded starter file.
func ReadStarter(name string) ([]byte, error) {
	data, err := starter.ReadFile(path.Join("starter", name))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return data, nil
}

// Install writes the embedded starter files into dir, creating it if needed.
// Existing files are kept unless overwrite is set. Returns the files written.
func Install(dir string, overwrite bool) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	var written []string
	for _, name := range StarterFiles() {
		dest := filepath.Join(dir, filepath.FromSlash(name))
		if !overwrite {
			if _, err := os.Stat(dest); err == nil {
				continue
			}
		}

		data, err := ReadStarter(name)
		if err != nil {
			return written, err
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
			return written, fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil { // #nosec G306 -- templates are not secret
			return written, fmt.Errorf("writing %s: %w", dest, err)
		}
		written = append(written, name)
	}
	return written, nil
}
