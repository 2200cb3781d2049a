package opuspdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/OPUS4/opus4-pdf/internal/fileutil"
)

// Merger concatenates PDF files.
type Merger interface {
	// Merge writes the pages of inputs, in order, to dest.
	Merge(ctx context.Context, dest string, inputs ...string) error
}

var disablePdfcpuConfig sync.Once

// PdfcpuMerger implements Merger with pdfcpu. The merged file is written
// atomically, so dest is either complete or untouched.
type PdfcpuMerger struct{}

// NewPdfcpuMerger creates a PdfcpuMerger. pdfcpu's user configuration
// directory is never created.
func NewPdfcpuMerger() *PdfcpuMerger {
	disablePdfcpuConfig.Do(api.DisableConfigDir)
	return &PdfcpuMerger{}
}

// Merge implements Merger.
func (m *PdfcpuMerger) Merge(ctx context.Context, dest string, inputs ...string) (err error) {
	if len(inputs) < 2 {
		return fmt.Errorf("%w: need at least two inputs, got %d", ErrMerge, len(inputs))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	readers := make([]io.ReadSeeker, 0, len(inputs))
	for _, path := range inputs {
		data, err := os.ReadFile(path) // #nosec G304 -- paths come from the cover pipeline
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMerge, err)
		}
		readers = append(readers, bytes.NewReader(data))
	}

	// pdfcpu panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMerge, r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, conf); err != nil {
		return fmt.Errorf("%w: %v", ErrMerge, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := fileutil.WriteFileAtomic(dest, &out, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheWrite, err)
	}
	return nil
}
