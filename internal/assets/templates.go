package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// TemplateExt is the extension of cover templates.
const TemplateExt = ".md"

// TemplateDir gives access to the cover templates below a base directory.
type TemplateDir struct {
	basePath string
}

// NewTemplateDir creates a TemplateDir for the given base path.
// Returns ErrInvalidBasePath if the path is not a valid, readable directory.
func NewTemplateDir(basePath string) (*TemplateDir, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	// Resolve symlinks in base path so containment checks compare real paths.
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}

	return &TemplateDir{basePath: absPath}, nil
}

// Path returns the absolute base directory.
func (d *TemplateDir) Path() string {
	return d.basePath
}

// Resolve returns the absolute path of the named template.
// The name is relative to the base directory and may contain subdirectories.
func (d *TemplateDir) Resolve(name string) (string, error) {
	if name == "" || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTemplateName, name)
	}

	filePath := filepath.Join(d.basePath, filepath.FromSlash(name))
	realPath, err := d.verifyPathContainment(filePath)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(realPath)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return realPath, nil
}

// Exists reports whether Resolve would succeed.
func (d *TemplateDir) Exists(name string) bool {
	_, err := d.Resolve(name)
	return err == nil
}

// Read returns the content of the named template.
func (d *TemplateDir) Read(name string) (string, error) {
	path, err := d.Resolve(name)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(path) // #nosec G304 -- path validated above
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(content), nil
}

// List returns the names of all templates, sorted, using forward slashes.
func (d *TemplateDir) List() ([]string, error) {
	var names []string
	err := filepath.WalkDir(d.basePath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), TemplateExt) {
			return nil
		}
		rel, err := filepath.Rel(d.basePath, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	sort.Strings(names)
	return names, nil
}

// verifyPathContainment ensures the resolved file path is within basePath
// and returns it with symlinks resolved.
func (d *TemplateDir) verifyPathContainment(filePath string) (string, error) {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}

	// A missing file keeps its lexical path; the existence check comes later.
	if realPath, err := filepath.EvalSymlinks(absFilePath); err == nil {
		absFilePath = realPath
	}

	// Separator suffix prevents prefix attacks (/base/path vs /base/pathevil).
	if !strings.HasPrefix(absFilePath, d.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path escapes base directory", ErrPathTraversal)
	}
	return absFilePath, nil
}
