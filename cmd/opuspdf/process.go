package main

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	opuspdf "github.com/OPUS4/opus4-pdf"
)

// processFlags holds flags for the process command.
type processFlags struct {
	common  commonFlags
	cover   coverFlags
	file    string
	refresh bool
}

func processFlagSet(f *processFlags, env *Environment) *flag.FlagSet {
	fs := newFlagSet("process", printProcessUsage, env)
	fs.StringVarP(&f.file, "file", "f", "", "only process the file with this name")
	fs.BoolVar(&f.refresh, "refresh", false, "drop cached covers of the document first")
	addCommonFlags(fs, &f.common)
	addCoverFlags(fs, &f.cover)
	return fs
}

// runProcess prints, for each file of a document, the path to deliver:
// the cached copy with cover, or the original on fallback.
func runProcess(ctx context.Context, args []string, env *Environment) error {
	f := &processFlags{}
	fs := processFlagSet(f, env)
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
	files, err := a.catalog.Files(ctx, id)
	if err != nil {
		return err
	}
	files, err = selectFiles(files, f.file, id)
	if err != nil {
		return err
	}

	if f.refresh {
		removed, err := a.service.ClearCache(id)
		if err != nil {
			return fmt.Errorf("%w: clearing cache: %v", opuspdf.ErrCacheWrite, err)
		}
		a.log.Debug().Int("doc_id", id).Int("removed", removed).Msg("cache cleared")
	}

	for _, file := range files {
		fmt.Fprintln(env.Stdout, a.service.ProcessFile(ctx, doc, file))
	}
	return nil
}

// selectFiles keeps the file named name, or all files when name is empty.
func selectFiles(files []opuspdf.File, name string, docID int) ([]opuspdf.File, error) {
	if name == "" {
		return files, nil
	}
	for _, f := range files {
		if f.PathName == name {
			return []opuspdf.File{f}, nil
		}
	}
	return nil, fmt.Errorf("%w: %d/%s", ErrFileNotFound, docID, name)
}
