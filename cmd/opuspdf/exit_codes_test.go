package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	opuspdf "github.com/OPUS4/opus4-pdf"
	"github.com/OPUS4/opus4-pdf/internal/assets"
	"github.com/OPUS4/opus4-pdf/internal/catalog"
	"github.com/OPUS4/opus4-pdf/internal/config"
	"github.com/OPUS4/opus4-pdf/internal/pdfinfo"
	"github.com/OPUS4/opus4-pdf/internal/templatecheck"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "generic", err: errors.New("boom"), want: ExitGeneral},
		{name: "template check", err: ErrTemplateCheck, want: ExitGeneral},
		{name: "cancelled", err: context.Canceled, want: ExitGeneral},

		{name: "usage", err: ErrUsage, want: ExitUsage},
		{name: "shell", err: ErrUnsupportedShell, want: ExitUsage},
		{name: "no catalog", err: ErrNoCatalog, want: ExitUsage},
		{name: "no workspace", err: ErrNoWorkspace, want: ExitUsage},
		{name: "config not found", err: config.ErrConfigNotFound, want: ExitUsage},
		{name: "config invalid", err: config.ErrConfigInvalid, want: ExitUsage},
		{name: "invalid document", err: opuspdf.ErrInvalidDocument, want: ExitUsage},
		{name: "no template", err: opuspdf.ErrNoTemplate, want: ExitUsage},
		{name: "unsupported engine", err: opuspdf.ErrUnsupportedEngine, want: ExitUsage},
		{name: "invalid template name", err: assets.ErrInvalidTemplateName, want: ExitUsage},
		{name: "invalid record", err: catalog.ErrInvalidRecord, want: ExitUsage},
		{name: "front matter", err: templatecheck.ErrFrontMatter, want: ExitUsage},

		{name: "not exist", err: os.ErrNotExist, want: ExitIO},
		{name: "not in catalog", err: catalog.ErrNotFound, want: ExitIO},
		{name: "file not found", err: ErrFileNotFound, want: ExitIO},
		{name: "write output", err: ErrWriteOutput, want: ExitIO},
		{name: "temp dir", err: opuspdf.ErrTempDirNotWritable, want: ExitIO},
		{name: "cache write", err: opuspdf.ErrCacheWrite, want: ExitIO},
		{name: "unreadable pdf", err: pdfinfo.ErrUnreadable, want: ExitIO},

		{name: "conversion", err: opuspdf.ErrConversion, want: ExitToolchain},
		{name: "browser", err: opuspdf.ErrBrowserConnect, want: ExitToolchain},
		{name: "merge", err: opuspdf.ErrMerge, want: ExitToolchain},

		{name: "wrapped usage", err: fmt.Errorf("parsing: %w", ErrUsage), want: ExitUsage},
		{name: "wrapped engine error", err: &engineError{engine: "xelatex", err: fmt.Errorf("%w: exit 1", opuspdf.ErrConversion)}, want: ExitToolchain},
		{name: "conversion beats not exist", err: errors.Join(opuspdf.ErrConversion, os.ErrNotExist), want: ExitToolchain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
