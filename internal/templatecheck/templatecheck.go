// Package templatecheck lints cover templates before they are used: the
// YAML front matter must parse and every local image the body references
// must exist.
package templatecheck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/OPUS4/opus4-pdf/internal/fileutil"
	"github.com/OPUS4/opus4-pdf/internal/yamlutil"
)

// Sentinel errors.
var (
	ErrReadTemplate = errors.New("cannot read template")
	ErrFrontMatter  = errors.New("invalid front matter")
)

// imagesBasePath is the variable the converter sets to the template directory.
const imagesBasePath = "$images-basepath$"

// ImageStatus classifies an image reference.
type ImageStatus string

const (
	StatusFound   ImageStatus = "found"
	StatusMissing ImageStatus = "missing"
	StatusRemote  ImageStatus = "remote"
	StatusDynamic ImageStatus = "dynamic" // Depends on document metadata
)

// Image is an image reference found in a template.
type Image struct {
	Destination string      `json:"destination"`
	Path        string      `json:"path,omitempty"`
	Status      ImageStatus `json:"status"`
}

// Report is the result of checking one template.
type Report struct {
	Template  string   `json:"template"`
	Images    []Image  `json:"images"`
	Variables []string `json:"variables"`
}

// Missing returns the images that do not exist on disk.
func (r *Report) Missing() []Image {
	var missing []Image
	for _, img := range r.Images {
		if img.Status == StatusMissing {
			missing = append(missing, img)
		}
	}
	return missing
}

// OK reports whether every local image was found.
func (r *Report) OK() bool {
	return len(r.Missing()) == 0
}

var (
	variablePattern    = regexp.MustCompile(`\$([a-z][a-z0-9-]*)\$`)
	conditionalPattern = regexp.MustCompile(`\$(?:if|for)\(([a-z][a-z0-9.-]*)\)\$`)
)

// pandoc template keywords that look like variables.
var keywords = map[string]bool{
	"else": true, "endif": true, "endfor": true, "sep": true, "it": true, "body": true,
}

// Checker parses templates with goldmark.
type Checker struct {
	md goldmark.Markdown
}

// New creates a Checker.
func New() *Checker {
	return &Checker{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// Check lints the template at path.
func (c *Checker) Check(ctx context.Context, path string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := os.ReadFile(path) // #nosec G304 -- template path chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadTemplate, err)
	}

	front, body := splitFrontMatter(src)
	if len(bytes.TrimSpace(front)) > 0 {
		var meta map[string]any
		if err := yamlutil.Unmarshal(front, &meta); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFrontMatter, path, err)
		}
	}

	report := &Report{
		Template:  path,
		Images:    c.images(body, filepath.Dir(path)),
		Variables: variables(src),
	}
	return report, nil
}

func (c *Checker) images(body []byte, templateDir string) []Image {
	doc := c.md.Parser().Parse(text.NewReader(body))

	var images []Image
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if img, ok := n.(*ast.Image); ok && entering {
			images = append(images, classify(string(img.Destination), templateDir))
		}
		return ast.WalkContinue, nil
	})
	return images
}

func classify(dest, templateDir string) Image {
	img := Image{Destination: dest}

	switch {
	case fileutil.IsURL(dest):
		img.Status = StatusRemote
		return img
	case strings.HasPrefix(dest, imagesBasePath):
		dest = strings.TrimPrefix(dest, imagesBasePath)
	}
	if strings.Contains(dest, "$") {
		img.Status = StatusDynamic
		return img
	}

	if filepath.IsAbs(dest) {
		img.Path = dest
	} else {
		img.Path = filepath.Join(templateDir, filepath.FromSlash(dest))
	}
	img.Status = StatusMissing
	if fileutil.FileExists(img.Path) {
		img.Status = StatusFound
	}
	return img
}

// splitFrontMatter separates a leading "---" YAML block from the body.
func splitFrontMatter(src []byte) (front, body []byte) {
	normalized := bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return nil, src
	}
	rest := normalized[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end < 0 {
		if bytes.HasSuffix(rest, []byte("\n---")) {
			return rest[:len(rest)-len("\n---")], nil
		}
		return nil, src
	}
	return rest[:end], rest[end+len("\n---\n"):]
}

// variables returns the sorted pandoc template variables used in src.
func variables(src []byte) []string {
	seen := make(map[string]bool)
	for _, pattern := range []*regexp.Regexp{variablePattern, conditionalPattern} {
		for _, m := range pattern.FindAllSubmatch(src, -1) {
			name := string(m[1])
			if !keywords[name] {
				seen[name] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
