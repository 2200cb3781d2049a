package main

import (
	"context"
	"errors"
	"os/exec"

	opuspdf "github.com/OPUS4/opus4-pdf"
	"github.com/OPUS4/opus4-pdf/internal/assets"
	"github.com/OPUS4/opus4-pdf/internal/config"
	"github.com/OPUS4/opus4-pdf/internal/hints"
)

// CLI errors.
var (
	ErrUsage         = errors.New("invalid usage")
	ErrNoCatalog     = errors.New("no catalog configured")
	ErrNoWorkspace   = errors.New("no workspace configured")
	ErrFileNotFound  = errors.New("file not found for document")
	ErrWriteOutput   = errors.New("failed to write output")
	ErrTemplateCheck = errors.New("template check failed")

	// errHelpShown reports that -h printed usage; the command succeeds.
	errHelpShown = errors.New("help shown")
)

// hintFor returns an actionable hint for err, "" when none applies.
func hintFor(err error) string {
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return hints.ForPandocNotFound()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, opuspdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, opuspdf.ErrConversion):
		var convErr *engineError
		if errors.As(err, &convErr) {
			return hints.ForPDFEngine(convErr.engine)
		}
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, opuspdf.ErrNoTemplate),
		errors.Is(err, opuspdf.ErrTemplateNotFound),
		errors.Is(err, assets.ErrTemplateNotFound):
		var tplErr *templatesError
		if errors.As(err, &tplErr) {
			return hints.ForTemplateNotFound(tplErr.available)
		}
		return hints.ForTemplateNotFound(nil)
	case errors.Is(err, ErrNoWorkspace):
		return hints.ForWritableDir("")
	case errors.Is(err, opuspdf.ErrTempDirNotWritable),
		errors.Is(err, opuspdf.ErrCacheWrite):
		var dirErr *dirError
		if errors.As(err, &dirErr) {
			return hints.ForWritableDir(dirErr.dir)
		}
		return hints.ForWritableDir("")
	}
	return ""
}

// engineError attaches the configured engine to a conversion failure.
type engineError struct {
	engine string
	err    error
}

func (e *engineError) Error() string { return e.err.Error() }
func (e *engineError) Unwrap() error { return e.err }

// templatesError attaches the installed template names to a resolution failure.
type templatesError struct {
	available []string
	err       error
}

func (e *templatesError) Error() string { return e.err.Error() }
func (e *templatesError) Unwrap() error { return e.err }

// dirError attaches the workspace directory to a write failure.
type dirError struct {
	dir string
	err error
}

func (e *dirError) Error() string { return e.err.Error() }
func (e *dirError) Unwrap() error { return e.err }
