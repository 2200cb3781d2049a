package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/OPUS4/opus4-pdf/internal/assets"
	"github.com/OPUS4/opus4-pdf/internal/config"
	"github.com/OPUS4/opus4-pdf/internal/templatecheck"
)

// runTemplates dispatches the templates subcommands.
func runTemplates(ctx context.Context, args []string, env *Environment) error {
	if len(args) == 0 {
		printTemplatesUsage(env.Stderr)
		return fmt.Errorf("%w: templates needs a subcommand", ErrUsage)
	}

	switch args[0] {
	case "list":
		return runTemplatesList(args[1:], env)
	case "check":
		return runTemplatesCheck(ctx, args[1:], env)
	case "init":
		return runTemplatesInit(args[1:], env)
	case "-h", "--help", "help":
		printTemplatesUsage(env.Stdout)
		return nil
	default:
		printTemplatesUsage(env.Stderr)
		return fmt.Errorf("%w: unknown templates subcommand %q", ErrUsage, args[0])
	}
}

// templatesFlags holds flags shared by the templates subcommands.
type templatesFlags struct {
	common     commonFlags
	jsonOutput bool
	force      bool
}

func templatesFlagSet(name string, f *templatesFlags, env *Environment) *flag.FlagSet {
	fs := newFlagSet(name, printTemplatesUsage, env)
	fs.BoolVar(&f.jsonOutput, "json", false, "print check reports as JSON")
	fs.BoolVar(&f.force, "force", false, "overwrite existing files on init")
	addCommonFlags(fs, &f.common)
	return fs
}

// templatesDir loads the config and opens its templates directory.
func templatesDir(common commonFlags, env *Environment) (*config.Config, *assets.TemplateDir, error) {
	cfg, err := loadConfig(common, env)
	if err != nil {
		return nil, nil, err
	}
	if cfg.TemplatesDir() == "" {
		return nil, nil, ErrNoWorkspace
	}
	dir, err := assets.NewTemplateDir(cfg.TemplatesDir())
	if err != nil {
		return nil, nil, err
	}
	return cfg, dir, nil
}

// runTemplatesList prints installed templates and where each is assigned.
func runTemplatesList(args []string, env *Environment) error {
	f := &templatesFlags{}
	fs := templatesFlagSet("templates list", f, env)
	if err := parseArgs(fs, args); err != nil {
		return err
	}

	cfg, dir, err := templatesDir(f.common, env)
	if err != nil {
		return err
	}
	names, err := dir.List()
	if err != nil {
		return err
	}
	collections, err := cfg.CollectionTemplates()
	if err != nil {
		return err
	}

	usage := make(map[string][]string)
	usage[cfg.PDF.Covers.Default] = append(usage[cfg.PDF.Covers.Default], "default")
	for _, id := range config.SortedCollectionIDs(collections) {
		name := collections[id]
		usage[name] = append(usage[name], fmt.Sprintf("collection %d", id))
	}

	for _, name := range names {
		if uses := usage[name]; len(uses) > 0 {
			fmt.Fprintf(env.Stdout, "%s (%s)\n", name, strings.Join(uses, ", "))
		} else {
			fmt.Fprintln(env.Stdout, name)
		}
	}
	return nil
}

// runTemplatesCheck lints the named templates, or all installed ones.
func runTemplatesCheck(ctx context.Context, args []string, env *Environment) error {
	f := &templatesFlags{}
	fs := templatesFlagSet("templates check", f, env)
	if err := parseArgs(fs, args); err != nil {
		return err
	}

	_, dir, err := templatesDir(f.common, env)
	if err != nil {
		return err
	}
	names := fs.Args()
	if len(names) == 0 {
		if names, err = dir.List(); err != nil {
			return err
		}
	}

	checker := templatecheck.New()
	reports := make([]*templatecheck.Report, 0, len(names))
	failed := 0
	for _, name := range names {
		path, err := dir.Resolve(name)
		if err != nil {
			return err
		}
		report, err := checker.Check(ctx, path)
		if err != nil {
			return err
		}
		if !report.OK() {
			failed++
		}
		reports = append(reports, report)
	}

	if f.jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			printReport(env.Stdout, dir.Path(), r)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d templates reference missing images", ErrTemplateCheck, failed, len(reports))
	}
	return nil
}

func printReport(w io.Writer, base string, r *templatecheck.Report) {
	name := r.Template
	if rel, err := filepath.Rel(base, r.Template); err == nil {
		name = filepath.ToSlash(rel)
	}
	if r.OK() {
		fmt.Fprintf(w, "[OK] %s\n", name)
	} else {
		fmt.Fprintf(w, "[ERROR] %s\n", name)
		for _, img := range r.Missing() {
			fmt.Fprintf(w, "  missing image: %s\n", img.Destination)
		}
	}
	if len(r.Variables) > 0 {
		fmt.Fprintf(w, "  variables: %s\n", strings.Join(r.Variables, ", "))
	}
}

// runTemplatesInit installs the starter templates.
func runTemplatesInit(args []string, env *Environment) error {
	f := &templatesFlags{}
	fs := templatesFlagSet("templates init", f, env)
	if err := parseArgs(fs, args); err != nil {
		return err
	}

	cfg, err := loadConfig(f.common, env)
	if err != nil {
		return err
	}
	target := cfg.TemplatesDir()
	if fs.NArg() > 0 {
		target = fs.Arg(0)
	}
	if target == "" {
		return ErrNoWorkspace
	}

	installed, err := assets.Install(target, f.force)
	if err != nil {
		return err
	}
	if !f.common.quiet {
		for _, name := range installed {
			fmt.Fprintf(env.Stdout, "installed %s\n", filepath.Join(target, filepath.FromSlash(name)))
		}
		if len(installed) == 0 {
			fmt.Fprintf(env.Stdout, "templates already present in %s (use --force to overwrite)\n", target)
		}
	}
	return nil
}
