package main

import (
	"context"
	"fmt"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/OPUS4/opus4-pdf/internal/fileutil"
)

// generateFlags holds flags for the generate command.
type generateFlags struct {
	common   commonFlags
	cover    coverFlags
	output   string
	template string
}

func generateFlagSet(f *generateFlags, env *Environment) *flag.FlagSet {
	fs := newFlagSet("generate", printGenerateUsage, env)
	fs.StringVarP(&f.output, "output", "o", "", "output file (default {id}.pdf)")
	fs.StringVarP(&f.template, "template", "t", "", "template name or path")
	addCommonFlags(fs, &f.common)
	addCoverFlags(fs, &f.cover)
	return fs
}

// runGenerate renders the cover of one document and copies it to the
// output path.
func runGenerate(ctx context.Context, args []string, env *Environment) error {
	f := &generateFlags{}
	fs := generateFlagSet(f, env)
	if err := parseArgs(fs, args); err != nil {
		return err
	}

	id, err := parseDocID(fs.Args())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(f.common, env)
	if err != nil {
		return err
	}
	f.cover.apply(cfg)

	a, err := openApp(cfg, env)
	if err != nil {
		return err
	}
	defer a.Close()

	doc, err := a.catalog.Document(ctx, id)
	if err != nil {
		return err
	}

	// A template file given relative to the working directory wins over
	// a template name.
	templatePath := f.template
	if templatePath != "" && !filepath.IsAbs(templatePath) && fileutil.FileExists(templatePath) {
		if abs, err := filepath.Abs(templatePath); err == nil {
			templatePath = abs
		}
	}

	cover, err := a.service.ProcessDocument(ctx, doc, templatePath)
	if err != nil {
		return annotate(cfg, err)
	}

	dest, err := outputPath(f.output, fmt.Sprintf("%d.pdf", id), env)
	if err != nil {
		return err
	}
	if err := fileutil.CopyFile(cover, dest, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if !cfg.PDF.Covers.KeepTemp {
		fileutil.RemoveAll(cover)
	}

	a.log.Debug().Int("doc", id).Str("cover", dest).Msg("cover written")
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Generated cover for document with ID %d at %s\n", id, dest)
	}
	return nil
}

// outputPath resolves a relative output name against the working directory.
func outputPath(name, fallback string, env *Environment) (string, error) {
	if name == "" {
		name = fallback
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	wd, err := env.Getwd()
	if err != nil {
		return "", fmt.Errorf("%w: working directory: %v", ErrWriteOutput, err)
	}
	return filepath.Join(wd, name), nil
}
