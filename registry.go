package opuspdf

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/OPUS4/opus4-pdf/internal/fileutil"
)

// TemplateFormat identifies the markup a cover template is written in.
type TemplateFormat string

// Supported template formats.
const (
	TemplateFormatMarkdown TemplateFormat = "markdown"
)

// PDFEngine identifies the program producing the final cover PDF.
type PDFEngine string

// Supported PDF engines.
const (
	EngineXeLaTeX  PDFEngine = "xelatex"
	EngineChromium PDFEngine = "chromium"
)

// ParseEngine validates an engine name. An empty name selects xelatex.
func ParseEngine(name string) (PDFEngine, error) {
	switch PDFEngine(strings.ToLower(strings.TrimSpace(name))) {
	case "", EngineXeLaTeX:
		return EngineXeLaTeX, nil
	case EngineChromium:
		return EngineChromium, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedEngine, name)
}

// TemplateFormatOf derives the template format from the file extension.
func TemplateFormatOf(templatePath string) (TemplateFormat, error) {
	if fileutil.HasExt(templatePath, ".md") {
		return TemplateFormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedTemplate, templatePath)
}

// PDFGenerator renders the cover of a document with a template bound at
// construction.
type PDFGenerator interface {
	// GenerateFile renders the cover to {temp}/{tempFilename}.pdf and returns its path.
	GenerateFile(ctx context.Context, doc *Document, tempFilename string) (string, error)
	// Generate renders the cover and returns the PDF bytes.
	Generate(ctx context.Context, doc *Document) ([]byte, error)
}

// GeneratorKey selects a generator implementation.
type GeneratorKey struct {
	Format TemplateFormat
	Engine PDFEngine
}

func (k GeneratorKey) String() string {
	return string(k.Format) + "/" + string(k.Engine)
}

// GeneratorFactory builds a generator for one template.
type GeneratorFactory func(templatePath string, env ConverterEnv) (PDFGenerator, error)

// Registry maps (template format, PDF engine) pairs to generator factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[GeneratorKey]GeneratorFactory
}

// NewRegistry returns a registry holding the markdown generators for the
// xelatex and chromium engines.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[GeneratorKey]GeneratorFactory)}
	r.Register(GeneratorKey{Format: TemplateFormatMarkdown, Engine: EngineXeLaTeX}, newMarkdownGenerator(EngineXeLaTeX))
	r.Register(GeneratorKey{Format: TemplateFormatMarkdown, Engine: EngineChromium}, newMarkdownGenerator(EngineChromium))
	return r
}

// Register adds or replaces the factory for key.
func (r *Registry) Register(key GeneratorKey, factory GeneratorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[key] = factory
}

// Keys returns the registered keys in a stable order.
func (r *Registry) Keys() []GeneratorKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]GeneratorKey, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Create returns a generator for templatePath rendered with engine.
func (r *Registry) Create(templatePath string, engine PDFEngine, env ConverterEnv) (PDFGenerator, error) {
	format, err := TemplateFormatOf(templatePath)
	if err != nil {
		return nil, err
	}
	key := GeneratorKey{Format: format, Engine: engine}

	r.mu.RLock()
	factory, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no generator for %s", ErrUnsupportedEngine, key)
	}
	return factory(templatePath, env)
}

func newMarkdownGenerator(engine PDFEngine) GeneratorFactory {
	return func(templatePath string, env ConverterEnv) (PDFGenerator, error) {
		if engine == EngineChromium && env.Printer == nil {
			return nil, fmt.Errorf("%w: %s requires a browser", ErrUnsupportedEngine, engine)
		}
		return NewDocumentConverter(templatePath, engine, env), nil
	}
}
