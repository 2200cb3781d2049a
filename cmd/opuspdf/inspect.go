package main

import (
	"encoding/json"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/OPUS4/opus4-pdf/internal/pdfinfo"
)

// inspectResult is the JSON form of an inspected file.
type inspectResult struct {
	Path          string `json:"path"`
	Pages         int    `json:"pages"`
	FirstPageText string `json:"first_page_text,omitempty"`
}

// inspectFlags holds flags for the inspect command.
type inspectFlags struct {
	jsonOutput bool
	showText   bool
}

func inspectFlagSet(f *inspectFlags, env *Environment) *flag.FlagSet {
	fs := newFlagSet("inspect", printInspectUsage, env)
	fs.BoolVar(&f.jsonOutput, "json", false, "print results as JSON")
	fs.BoolVar(&f.showText, "text", false, "include the text of the first page")
	return fs
}

// runInspect prints page counts of PDF files, e.g. to verify that a
// cached copy starts with its cover.
func runInspect(args []string, env *Environment) error {
	f := &inspectFlags{}
	fs := inspectFlagSet(f, env)
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: expected at least one PDF file", ErrUsage)
	}

	results := make([]inspectResult, 0, fs.NArg())
	for _, path := range fs.Args() {
		info, err := pdfinfo.Inspect(path)
		if err != nil {
			return err
		}
		r := inspectResult{Path: path, Pages: info.Pages}
		if f.showText {
			r.FirstPageText = info.FirstPageText
		}
		results = append(results, r)
	}

	if f.jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		fmt.Fprintf(env.Stdout, "%s: %d pages\n", r.Path, r.Pages)
		if r.FirstPageText != "" {
			fmt.Fprintf(env.Stdout, "  %s\n", r.FirstPageText)
		}
	}
	return nil
}
