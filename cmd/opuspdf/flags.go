package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/OPUS4/opus4-pdf/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// coverFlags holds flags that override the pdf.covers settings.
type coverFlags struct {
	engine   string
	timeout  time.Duration
	keepTemp bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log debug details")
}

// addCoverFlags adds cover generation flags to a FlagSet.
func addCoverFlags(fs *flag.FlagSet, f *coverFlags) {
	fs.StringVar(&f.engine, "engine", "", "PDF engine: xelatex, chromium")
	fs.DurationVar(&f.timeout, "timeout", 0, "per-stage deadline (e.g., 90s, 2m)")
	fs.BoolVar(&f.keepTemp, "keep-temp", false, "keep intermediate files")
}

// apply writes explicitly set cover flags over cfg.
func (f coverFlags) apply(cfg *config.Config) {
	if f.engine != "" {
		cfg.PDF.Covers.Engine = f.engine
	}
	if f.timeout > 0 {
		cfg.PDF.Covers.Timeout = f.timeout.String()
	}
	if f.keepTemp {
		cfg.PDF.Covers.KeepTemp = true
	}
}

// newFlagSet creates a FlagSet that prints usage to env.Stderr.
func newFlagSet(name string, usage func(io.Writer), env *Environment) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { usage(env.Stderr) }
	return fs
}

// parseArgs parses args, mapping -h to errHelpShown and other failures to ErrUsage.
func parseArgs(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelpShown
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// parseDocID reads the single document id argument.
func parseDocID(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected one document id, got %d arguments", ErrUsage, len(args))
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid document id %q", ErrUsage, args[0])
	}
	return id, nil
}
