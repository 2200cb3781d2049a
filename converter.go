package opuspdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/OPUS4/opus4-pdf/internal/fileutil"
)

// Compile-time interface implementation checks.
var (
	_ PDFGenerator = (*DocumentConverter)(nil)
	_ HTMLPrinter  = (*RodPrinter)(nil)
	_ Merger       = (*PdfcpuMerger)(nil)
)

// ConverterEnv holds the collaborators shared by every DocumentConverter.
type ConverterEnv struct {
	TempDir  string
	LogosDir string
	Pandoc   *Pandoc
	Metadata *MetadataMapper
	Citation *CitationMapper
	Printer  HTMLPrinter // Required by the chromium engine only
	KeepTemp bool
	Logger   zerolog.Logger
}

// DocumentConverter renders a cover in two pandoc stages: the template is
// filled with the document metadata into markdown, which is then turned
// into a PDF by the configured engine.
type DocumentConverter struct {
	templatePath string
	engine       PDFEngine
	env          ConverterEnv
}

// NewDocumentConverter creates a converter for one template.
func NewDocumentConverter(templatePath string, engine PDFEngine, env ConverterEnv) *DocumentConverter {
	if env.Pandoc == nil {
		env.Pandoc = NewPandoc(DefaultPandoc, DefaultStageTimeout)
	}
	if env.Metadata == nil {
		env.Metadata = NewMetadataMapper(env.TempDir, MetadataSettings{LogosDir: env.LogosDir}, env.Logger)
	}
	if env.Citation == nil {
		env.Citation = NewCitationMapper(env.TempDir)
	}
	return &DocumentConverter{templatePath: templatePath, engine: engine, env: env}
}

// TemplatePath returns the template the converter renders.
func (c *DocumentConverter) TemplatePath() string { return c.templatePath }

// Engine returns the PDF engine used in the second stage.
func (c *DocumentConverter) Engine() PDFEngine { return c.engine }

// GenerateFile renders the cover for doc and returns the path of
// {temp}/{tempFilename}.pdf. An empty tempFilename defaults to
// {docId}-{uuid}. Preconditions are checked before any process starts.
// Intermediate files are removed unless KeepTemp is set.
func (c *DocumentConverter) GenerateFile(ctx context.Context, doc *Document, tempFilename string) (pdfPath string, err error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}
	if !fileutil.FileExists(c.templatePath) {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, c.templatePath)
	}
	if err := fileutil.CheckWritableDir(c.env.TempDir); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTempDirNotWritable, err)
	}

	name := tempName(doc, tempFilename)
	if err := fileutil.ValidateName(name); err != nil {
		return "", fmt.Errorf("%w: temp name: %v", ErrMetadataWrite, err)
	}
	pdfPath = filepath.Join(c.env.TempDir, name+pdfSuffix)

	log := c.env.Logger.With().Int("doc_id", doc.ID).Str("template", c.templatePath).Str("engine", string(c.engine)).Logger()

	if !c.env.KeepTemp {
		defer func() {
			fileutil.RemoveAll(intermediateFiles(c.env.TempDir, name)...)
			if err != nil {
				fileutil.RemoveAll(pdfPath)
			}
		}()
	}

	metaPath, err := c.env.Metadata.GenerateFile(doc, name)
	if err != nil {
		return "", err
	}
	cslPath, err := c.env.Citation.GenerateFile(doc, name)
	if err != nil {
		return "", err
	}

	templateDir := filepath.Dir(c.templatePath) + string(filepath.Separator)
	markdownPath := filepath.Join(c.env.TempDir, name+markdownSuffix)

	log.Debug().Str("stage", "markdown").Msg("rendering template")
	if err := c.env.Pandoc.Run(ctx, "markdown", c.markdownArgs(templateDir, metaPath, cslPath, markdownPath)...); err != nil {
		return "", err
	}

	log.Debug().Str("stage", "pdf").Msg("rendering PDF")
	switch c.engine {
	case EngineXeLaTeX:
		err = c.env.Pandoc.Run(ctx, "pdf", c.xelatexArgs(templateDir, markdownPath, cslPath, pdfPath)...)
	case EngineChromium:
		err = c.renderChromium(ctx, name, templateDir, markdownPath, cslPath, pdfPath)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedEngine, c.engine)
	}
	if err != nil {
		return "", err
	}

	if !fileutil.FileExists(pdfPath) {
		return "", fmt.Errorf("%w: pdf: no output at %s", ErrConversion, pdfPath)
	}
	return pdfPath, nil
}

// Generate renders the cover for doc and returns the PDF bytes.
func (c *DocumentConverter) Generate(ctx context.Context, doc *Document) ([]byte, error) {
	path, err := c.GenerateFile(ctx, doc, "")
	if err != nil {
		return nil, err
	}
	if !c.env.KeepTemp {
		defer fileutil.RemoveAll(path)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path produced above
	if err != nil {
		return nil, fmt.Errorf("%w: reading cover: %v", ErrConversion, err)
	}
	return data, nil
}

// markdownArgs builds the first stage: the template serves both as input
// and as pandoc template, so its body is filled with the metadata.
func (c *DocumentConverter) markdownArgs(templateDir, metaPath, cslPath, outPath string) []string {
	args := []string{
		c.templatePath,
		"--wrap", "preserve",
		"--metadata-file", metaPath,
		"--bibliography", cslPath,
		"--template", c.templatePath,
		"--variable", "images-basepath:" + templateDir,
	}
	if c.env.LogosDir != "" {
		args = append(args, "--variable", "licence-logo-basepath:"+filepath.Clean(c.env.LogosDir)+string(filepath.Separator))
	}
	return append(args, "--output", outPath)
}

// xelatexArgs builds the second stage for the xelatex engine.
func (c *DocumentConverter) xelatexArgs(templateDir, markdownPath, cslPath, pdfPath string) []string {
	return []string{
		markdownPath,
		"--resource-path", templateDir,
		"--bibliography", cslPath,
		"--citeproc",
		"--pdf-engine", string(EngineXeLaTeX),
		"--output", pdfPath,
	}
}

// htmlArgs builds the second stage for the chromium engine, a self-contained
// HTML5 page that the browser prints.
func (c *DocumentConverter) htmlArgs(templateDir, markdownPath, cslPath, htmlPath string) []string {
	return []string{
		markdownPath,
		"--resource-path", templateDir,
		"--bibliography", cslPath,
		"--citeproc",
		"--to", "html5",
		"--standalone",
		"--embed-resources",
		"--output", htmlPath,
	}
}

func (c *DocumentConverter) renderChromium(ctx context.Context, name, templateDir, markdownPath, cslPath, pdfPath string) error {
	if c.env.Printer == nil {
		return fmt.Errorf("%w: %s requires a browser", ErrUnsupportedEngine, EngineChromium)
	}

	htmlPath := filepath.Join(c.env.TempDir, name+htmlSuffix)
	if err := c.env.Pandoc.Run(ctx, "html", c.htmlArgs(templateDir, markdownPath, cslPath, htmlPath)...); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.env.Pandoc.stageTimeout())
	defer cancel()

	data, err := c.env.Printer.PrintFile(ctx, htmlPath)
	if err != nil {
		return fmt.Errorf("%w: print: %w", ErrConversion, err)
	}
	if err := fileutil.WriteFileAtomic(pdfPath, bytes.NewReader(data), 0o644); err != nil {
		return fmt.Errorf("%w: writing PDF: %v", ErrConversion, err)
	}
	return nil
}
