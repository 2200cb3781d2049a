package opuspdf

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/OPUS4/opus4-pdf/internal/fileutil"
)

// Suffixes of the intermediate files produced for one cover.
const (
	metaSuffix     = "-meta.json"
	cslSuffix      = "-csl.json"
	markdownSuffix = ".md"
	htmlSuffix     = ".html"
	pdfSuffix      = ".pdf"
)

// tempName returns name, or {docId}-{uuid} when name is empty.
func tempName(doc *Document, name string) string {
	if name != "" {
		return name
	}
	return strconv.Itoa(doc.ID) + "-" + uuid.NewString()
}

// writeTempFile writes data to dir/name after checking that dir accepts files.
func writeTempFile(dir, name string, data []byte) (string, error) {
	if err := fileutil.CheckWritableDir(dir); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTempDirNotWritable, err)
	}
	if err := fileutil.ValidateName(name); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMetadataWrite, err)
	}
	path := filepath.Join(dir, name)
	if err := fileutil.WriteFileAtomic(path, bytes.NewReader(data), 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMetadataWrite, err)
	}
	return path, nil
}

// intermediateFiles lists the paths of every temp artifact except the PDF.
func intermediateFiles(dir, name string) []string {
	return []string{
		filepath.Join(dir, name+metaSuffix),
		filepath.Join(dir, name+cslSuffix),
		filepath.Join(dir, name+markdownSuffix),
		filepath.Join(dir, name+htmlSuffix),
	}
}
