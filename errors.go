package opuspdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrInvalidDocument = errors.New("invalid document")

	// Template resolution errors.
	ErrNoTemplate          = errors.New("no cover template configured")
	ErrTemplateNotFound    = errors.New("cover template not found")
	ErrCollectionNotFound  = errors.New("collection not found")
	ErrUnsupportedTemplate = errors.New("unsupported template format")

	// Metadata errors.
	ErrTempDirNotWritable = errors.New("temp directory is not writable")
	ErrMetadataWrite      = errors.New("failed to write metadata file")

	// Conversion errors.
	ErrConversion        = errors.New("cover conversion failed")
	ErrUnsupportedEngine = errors.New("unsupported PDF engine")
	ErrBrowserConnect    = errors.New("failed to connect to browser")
	ErrPageLoad          = errors.New("failed to load page")
	ErrPDFGeneration     = errors.New("PDF generation failed")

	// Merge and cache errors.
	ErrMerge      = errors.New("PDF merge failed")
	ErrCacheWrite = errors.New("failed to write cache file")
)
