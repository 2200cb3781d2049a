package opuspdf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/OPUS4/opus4-pdf/internal/assets"
	"github.com/OPUS4/opus4-pdf/internal/fileutil"
	"github.com/OPUS4/opus4-pdf/internal/pdfinfo"
)

// CoverGenerator prepends generated cover pages to document files and
// caches the result.
type CoverGenerator struct {
	settings Settings
	engine   PDFEngine
	resolver *TemplateResolver
	registry *Registry
	env      ConverterEnv
	cache    *FileCache
	merger   Merger
	printer  HTMLPrinter
	runner   CommandRunner

	logger     zerolog.Logger
	registerer prometheus.Registerer
	metrics    *metrics

	group singleflight.Group
}

// NewCoverGenerator creates a CoverGenerator. A missing templates directory
// is logged, not fatal: only absolute template paths resolve then.
func NewCoverGenerator(settings Settings, opts ...Option) (*CoverGenerator, error) {
	engine, err := ParseEngine(string(settings.Engine))
	if err != nil {
		return nil, err
	}

	g := &CoverGenerator{
		settings: settings,
		engine:   engine,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.registry == nil {
		g.registry = NewRegistry()
	}
	if g.merger == nil {
		g.merger = NewPdfcpuMerger()
	}
	if g.printer == nil && engine == EngineChromium {
		g.printer = NewRodPrinter(PrinterOptions{})
	}
	g.metrics = newMetrics(g.registerer)

	var templates *assets.TemplateDir
	if settings.TemplatesDir != "" {
		templates, err = assets.NewTemplateDir(settings.TemplatesDir)
		if err != nil {
			g.logger.Warn().Err(err).Str("dir", settings.TemplatesDir).Msg("templates directory unavailable")
			templates = nil
		}
	}
	g.resolver = NewTemplateResolver(templates, ResolverSettings{
		Default:             settings.DefaultTemplate,
		CollectionTemplates: settings.CollectionTemplates,
		Lookup:              settings.Collections,
	}, g.logger)

	pandoc := NewPandoc(settings.Pandoc, settings.Timeout)
	if g.runner != nil {
		pandoc.Runner = g.runner
	}

	g.env = ConverterEnv{
		TempDir:  settings.TempDir,
		LogosDir: settings.LogosDir,
		Pandoc:   pandoc,
		Metadata: NewMetadataMapper(settings.TempDir, MetadataSettings{
			Config:     settings.Config,
			ConfigKeys: settings.ConfigKeys,
			LogosDir:   settings.LogosDir,
		}, g.logger),
		Citation: NewCitationMapper(settings.TempDir),
		Printer:  g.printer,
		KeepTemp: settings.KeepTemp,
		Logger:   g.logger,
	}
	g.cache = NewFileCache(settings.FilecacheDir)

	return g, nil
}

// ClearCache removes the cached covered files of a document and returns
// how many were deleted.
func (g *CoverGenerator) ClearCache(docID int) (int, error) {
	return g.cache.Clear(docID)
}

// Engine returns the configured PDF engine.
func (g *CoverGenerator) Engine() PDFEngine { return g.engine }

// Close releases the browser of the chromium engine, if one was started.
func (g *CoverGenerator) Close() error {
	if g.printer != nil {
		return g.printer.Close()
	}
	return nil
}

// ProcessDocument renders the cover of doc on its own and returns the path
// of {temp}/{docId}.pdf. templatePath overrides template resolution when it
// names an existing template.
func (g *CoverGenerator) ProcessDocument(ctx context.Context, doc *Document, templatePath string) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}

	gen, err := g.generatorFor(ctx, doc, templatePath)
	if err != nil {
		return "", err
	}
	return g.render(ctx, gen, doc, strconv.Itoa(doc.ID))
}

// GenerateCover renders the cover of doc and returns the PDF bytes.
func (g *CoverGenerator) GenerateCover(ctx context.Context, doc *Document, templatePath string) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	gen, err := g.generatorFor(ctx, doc, templatePath)
	if err != nil {
		return nil, err
	}
	return gen.Generate(ctx, doc)
}

// ProcessFile returns the path of the file to deliver for file: the cached
// copy with a cover page when it is valid or can be produced, the original
// path otherwise. It never fails and never returns "".
func (g *CoverGenerator) ProcessFile(ctx context.Context, doc *Document, file File) string {
	if err := doc.Validate(); err != nil {
		g.logger.Error().Err(err).Str("file", file.Path).Msg("cannot cover file")
		return file.Path
	}
	log := g.logger.With().Int("doc_id", doc.ID).Str("file", file.Path).Logger()

	if !fileutil.HasExt(file.PathName, pdfSuffix) {
		g.metrics.outcome(OutcomeFallbackNotPDF)
		log.Debug().Msg("not a PDF file, delivering original")
		return file.Path
	}

	cachePath, err := g.cache.Path(doc.ID, file.PathName)
	if err != nil {
		g.metrics.outcome(OutcomeFallbackCache)
		log.Error().Err(err).Msg("invalid cache path")
		return file.Path
	}
	if g.cache.Valid(cachePath, doc.ServerDateModified) {
		g.metrics.outcome(OutcomeCacheHit)
		return cachePath
	}
	if !fileutil.FileExists(file.Path) {
		g.metrics.outcome(OutcomeFallbackMissing)
		log.Error().Msg("original file missing")
		return file.Path
	}

	v, err, _ := g.group.Do(cachePath, func() (any, error) {
		return g.produce(ctx, log, doc, file, cachePath)
	})
	if err != nil {
		g.metrics.outcome(fallbackOutcome(err))
		log.Error().Err(err).Msg("cover generation failed, delivering original")
		return file.Path
	}
	return v.(string)
}

// produce runs once per cache key at a time. The cache is checked again
// since a concurrent call may have filled it meanwhile.
func (g *CoverGenerator) produce(ctx context.Context, log zerolog.Logger, doc *Document, file File, cachePath string) (string, error) {
	if g.cache.Valid(cachePath, doc.ServerDateModified) {
		g.metrics.outcome(OutcomeCacheHit)
		return cachePath, nil
	}
	if err := g.cache.Ensure(); err != nil {
		return "", err
	}

	gen, err := g.generatorFor(ctx, doc, "")
	if err != nil {
		return "", err
	}
	cover, err := g.render(ctx, gen, doc, coverName(doc, file))
	if err != nil {
		return "", err
	}
	if !g.settings.KeepTemp {
		defer fileutil.RemoveAll(cover)
	}

	if err := g.merger.Merge(ctx, cachePath, cover, file.Path); err != nil {
		// The merge itself succeeded when only persisting it failed.
		if errors.Is(err, ErrCacheWrite) {
			return "", err
		}
		g.metrics.mergeFailures.Inc()
		return "", mergeError{err}
	}
	g.metrics.outcome(OutcomeGenerated)

	if e := log.Debug(); e.Enabled() {
		pages, err := pdfinfo.PageCount(cachePath)
		if err != nil {
			e.Err(err)
		}
		e.Int("pages", pages).Str("cache", cachePath).Msg("cover merged")
	}
	return cachePath, nil
}

// coverName is the temp name of the cover rendered for file: the document
// id and the file name without extension. Unique per cache key.
func coverName(doc *Document, file File) string {
	base := filepath.Base(file.PathName)
	return strconv.Itoa(doc.ID) + "-" + strings.TrimSuffix(base, filepath.Ext(base))
}

// generatorFor resolves the template for doc and builds its generator.
func (g *CoverGenerator) generatorFor(ctx context.Context, doc *Document, templatePath string) (PDFGenerator, error) {
	tpl, err := g.resolver.Resolve(ctx, doc, templatePath)
	if err != nil {
		return nil, err
	}
	gen, err := g.registry.Create(tpl, g.engine, g.env)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", tpl, err)
	}
	return gen, nil
}

func (g *CoverGenerator) render(ctx context.Context, gen PDFGenerator, doc *Document, name string) (string, error) {
	start := time.Now()
	path, err := gen.GenerateFile(ctx, doc, name)
	result := "ok"
	if err != nil {
		result = "error"
	}
	g.metrics.renderDuration.WithLabelValues(string(g.engine), result).Observe(time.Since(start).Seconds())
	return path, err
}

// mergeError marks failures of the merge step for outcome accounting.
type mergeError struct{ err error }

func (e mergeError) Error() string { return e.err.Error() }
func (e mergeError) Unwrap() error { return e.err }

func fallbackOutcome(err error) string {
	var me mergeError
	switch {
	case errors.As(err, &me):
		return OutcomeFallbackMerge
	case errors.Is(err, ErrNoTemplate):
		return OutcomeFallbackNoTemplate
	case errors.Is(err, ErrCacheWrite):
		return OutcomeFallbackCache
	default:
		return OutcomeFallbackRender
	}
}
