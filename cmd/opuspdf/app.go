package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	opuspdf "github.com/OPUS4/opus4-pdf"
	"github.com/OPUS4/opus4-pdf/internal/assets"
	"github.com/OPUS4/opus4-pdf/internal/catalog"
	"github.com/OPUS4/opus4-pdf/internal/config"
	"github.com/OPUS4/opus4-pdf/internal/logger"
)

// loadConfig resolves the configuration: the --config flag, then
// OPUS_PDF_CONFIG, then defaults. Environment values fill the gaps.
func loadConfig(common commonFlags, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		if cfg, err = config.LoadConfig(name); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	applyEnvConfig(envCfg, cfg)

	switch {
	case common.verbose:
		cfg.Log.Level = "debug"
	case common.quiet:
		cfg.Log.Level = "error"
	}
	return cfg, nil
}

// app bundles what a cover command needs.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	catalog *catalog.Catalog
	service CoverService
}

// openApp validates cfg, opens the catalog and builds the cover service.
func openApp(cfg *config.Config, env *Environment, opts ...opuspdf.Option) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workspace == "" {
		return nil, ErrNoWorkspace
	}
	if err := cfg.EnsureWorkspace(); err != nil {
		return nil, &dirError{dir: cfg.Workspace, err: fmt.Errorf("%w: %w", opuspdf.ErrTempDirNotWritable, err)}
	}

	a := &app{
		cfg: cfg,
		log: logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Output: env.Stderr}),
	}

	cat, err := openCatalog(cfg)
	if err != nil {
		return nil, err
	}
	a.catalog = cat

	settings, err := coverSettings(cfg, cat)
	if err != nil {
		_ = cat.Close()
		return nil, err
	}

	opts = append([]opuspdf.Option{opuspdf.WithLogger(a.log)}, opts...)
	a.service, err = env.NewService(settings, opts...)
	if err != nil {
		_ = cat.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the service and the catalog.
func (a *app) Close() error {
	return errors.Join(a.service.Close(), a.catalog.Close())
}

// openCatalog opens the configured catalog database.
func openCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog == "" {
		return nil, ErrNoCatalog
	}
	return catalog.Open(cfg.Catalog, cfg.FilesDir())
}

// coverSettings maps the configuration onto generator settings.
func coverSettings(cfg *config.Config, collections opuspdf.CollectionLookup) (opuspdf.Settings, error) {
	engine, err := opuspdf.ParseEngine(cfg.PDF.Covers.Engine)
	if err != nil {
		return opuspdf.Settings{}, err
	}
	templates, err := cfg.CollectionTemplates()
	if err != nil {
		return opuspdf.Settings{}, err
	}

	return opuspdf.Settings{
		TemplatesDir:        cfg.TemplatesDir(),
		DefaultTemplate:     cfg.PDF.Covers.Default,
		CollectionTemplates: templates,
		Collections:         collections,
		FilecacheDir:        cfg.FilecacheDir(),
		TempDir:             cfg.TempDir(),
		LogosDir:            cfg.LogosDir(),
		Engine:              engine,
		Pandoc:              cfg.PDF.Covers.Pandoc,
		Timeout:             cfg.Timeout(),
		KeepTemp:            cfg.PDF.Covers.KeepTemp,
		Config:              cfg,
		ConfigKeys:          cfg.PDF.Covers.ConfigKeys,
	}, nil
}

// availableTemplates lists the installed templates for hints, nil on error.
func availableTemplates(cfg *config.Config) []string {
	dir, err := assets.NewTemplateDir(cfg.TemplatesDir())
	if err != nil {
		return nil
	}
	names, _ := dir.List()
	return names
}

// annotate adds hint context to generation errors.
func annotate(cfg *config.Config, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, opuspdf.ErrNoTemplate),
		errors.Is(err, opuspdf.ErrTemplateNotFound):
		return &templatesError{available: availableTemplates(cfg), err: err}
	case errors.Is(err, opuspdf.ErrConversion):
		return &engineError{engine: cfg.PDF.Covers.Engine, err: err}
	case errors.Is(err, opuspdf.ErrTempDirNotWritable),
		errors.Is(err, opuspdf.ErrCacheWrite):
		return &dirError{dir: cfg.Workspace, err: err}
	}
	return err
}
