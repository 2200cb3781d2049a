package main

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"
)

func importFlagSet(common *commonFlags, env *Environment) *flag.FlagSet {
	fs := newFlagSet("import", printImportUsage, env)
	addCommonFlags(fs, common)
	return fs
}

// runImport loads a JSONL export into the catalog.
func runImport(ctx context.Context, args []string, env *Environment) error {
	var common commonFlags
	fs := importFlagSet(&common, env)
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: expected one import file, got %d arguments", ErrUsage, fs.NArg())
	}

	cfg, err := loadConfig(common, env)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	stats, err := cat.ImportFile(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if !common.quiet {
		fmt.Fprintf(env.Stdout, "Imported %d documents and %d collections into %s\n",
			stats.Documents, stats.Collections, cfg.Catalog)
	}
	return nil
}
