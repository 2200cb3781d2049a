package opuspdf

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Settings configures a CoverGenerator.
type Settings struct {
	TemplatesDir        string           // Directory holding cover templates
	DefaultTemplate     string           // Template used when nothing more specific matches
	CollectionTemplates map[int]string   // Template per collection id
	Collections         CollectionLookup // Parent lookups for template inheritance
	FilecacheDir        string           // Where merged files are cached
	TempDir             string           // Where intermediate files are written
	LogosDir            string           // Licence logo images
	Engine              PDFEngine        // Second stage engine, xelatex when empty
	Pandoc              string           // Pandoc executable, "pandoc" when empty
	Timeout             time.Duration    // Per-stage deadline, DefaultStageTimeout when zero
	KeepTemp            bool             // Keep intermediate files
	Config              ConfigValues     // Source of config-* template variables
	ConfigKeys          []string         // Keys exported as config-* variables
}

// Option configures a CoverGenerator.
type Option func(*CoverGenerator)

// WithLogger sets the logger. Defaults to zerolog.Nop().
func WithLogger(logger zerolog.Logger) Option {
	return func(g *CoverGenerator) {
		g.logger = logger
	}
}

// WithRegisterer registers the generator's Prometheus collectors on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(g *CoverGenerator) {
		g.registerer = reg
	}
}

// WithMerger replaces the pdfcpu merger.
func WithMerger(m Merger) Option {
	if m == nil {
		panic("opuspdf: WithMerger requires a non-nil Merger")
	}
	return func(g *CoverGenerator) {
		g.merger = m
	}
}

// WithRegistry replaces the default generator registry.
func WithRegistry(r *Registry) Option {
	if r == nil {
		panic("opuspdf: WithRegistry requires a non-nil Registry")
	}
	return func(g *CoverGenerator) {
		g.registry = r
	}
}

// WithCommandRunner replaces the runner used to invoke pandoc.
func WithCommandRunner(r CommandRunner) Option {
	if r == nil {
		panic("opuspdf: WithCommandRunner requires a non-nil CommandRunner")
	}
	return func(g *CoverGenerator) {
		g.runner = r
	}
}

// WithPrinter sets the HTML printer used by the chromium engine. Without it
// a RodPrinter is created on demand.
func WithPrinter(p HTMLPrinter) Option {
	return func(g *CoverGenerator) {
		g.printer = p
	}
}
