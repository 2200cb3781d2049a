package main

import (
	"errors"
	"os"

	opuspdf "github.com/OPUS4/opus4-pdf"
	"github.com/OPUS4/opus4-pdf/internal/assets"
	"github.com/OPUS4/opus4-pdf/internal/catalog"
	"github.com/OPUS4/opus4-pdf/internal/config"
	"github.com/OPUS4/opus4-pdf/internal/pdfinfo"
	"github.com/OPUS4/opus4-pdf/internal/templatecheck"
)

// Exit codes for the opuspdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // Command completed
	ExitGeneral   = 1 // General/unexpected error
	ExitUsage     = 2 // Invalid flags, config, or input data
	ExitIO        = 3 // File or document not found, directory not writable
	ExitToolchain = 4 // pandoc, xelatex, or browser failures
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Toolchain errors (exit 4)
	if errors.Is(err, opuspdf.ErrConversion) ||
		errors.Is(err, opuspdf.ErrBrowserConnect) ||
		errors.Is(err, opuspdf.ErrPageLoad) ||
		errors.Is(err, opuspdf.ErrPDFGeneration) ||
		errors.Is(err, opuspdf.ErrMerge) {
		return ExitToolchain
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, ErrNoCatalog) ||
		errors.Is(err, ErrNoWorkspace) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrConfigInvalid) ||
		errors.Is(err, config.ErrInvalidCollection) ||
		errors.Is(err, opuspdf.ErrInvalidDocument) ||
		errors.Is(err, opuspdf.ErrNoTemplate) ||
		errors.Is(err, opuspdf.ErrTemplateNotFound) ||
		errors.Is(err, opuspdf.ErrUnsupportedTemplate) ||
		errors.Is(err, opuspdf.ErrUnsupportedEngine) ||
		errors.Is(err, assets.ErrTemplateNotFound) ||
		errors.Is(err, assets.ErrInvalidTemplateName) ||
		errors.Is(err, assets.ErrPathTraversal) ||
		errors.Is(err, catalog.ErrInvalidRecord) ||
		errors.Is(err, templatecheck.ErrFrontMatter) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, catalog.ErrNotFound) ||
		errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, opuspdf.ErrTempDirNotWritable) ||
		errors.Is(err, opuspdf.ErrMetadataWrite) ||
		errors.Is(err, opuspdf.ErrCacheWrite) ||
		errors.Is(err, assets.ErrAssetRead) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, templatecheck.ErrReadTemplate) ||
		errors.Is(err, pdfinfo.ErrUnreadable) {
		return ExitIO
	}

	return ExitGeneral
}
