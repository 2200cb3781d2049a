// Package opuspdf prepends generated cover pages to the PDF files of an
// OPUS 4 repository.
//
// # Quick Start
//
// Create a generator, then ask it for the file to deliver:
//
//	gen, err := opuspdf.NewCoverGenerator(opuspdf.Settings{
//	    TemplatesDir:    "/var/opus/application/configs/covers",
//	    DefaultTemplate: "default-cover.md",
//	    FilecacheDir:    "/var/opus/workspace/filecache",
//	    TempDir:         "/var/opus/workspace/tmp",
//	}, opuspdf.WithLogger(log))
//	if err != nil {
//	    log.Fatal().Err(err).Msg("cover generator")
//	}
//	defer gen.Close()
//
//	path := gen.ProcessFile(ctx, doc, file)
//
// ProcessFile never fails: when no cover can be produced it logs the cause
// and returns the path of the original file.
//
// # Cover Pipeline
//
//  1. Template resolution: requested template, collection templates
//     (inherited from parent collections), then the default template
//  2. Metadata files: template variables (-meta.json) and a CSL JSON
//     bibliography record (-csl.json)
//  3. Pandoc stage A: the template is filled into markdown
//  4. Pandoc stage B: markdown to PDF with xelatex, or to HTML printed
//     by headless Chromium (go-rod)
//  5. Merge: the cover is prepended to the original with pdfcpu and the
//     result stored in the file cache as {documentId}-{fileName}
//
// A cached file is reused while it is at least as recent as the
// document's modification time. Concurrent requests for the same file
// share one generation.
//
// # Configuration
//
// Behavior that applies to every cover comes from Settings. Collaborators
// are replaced with functional options:
//
//	gen, err := opuspdf.NewCoverGenerator(settings,
//	    opuspdf.WithLogger(log),
//	    opuspdf.WithRegisterer(prometheus.DefaultRegisterer),
//	    opuspdf.WithCommandRunner(runner),
//	)
//
// # Errors
//
// Failures wrap sentinel errors that can be checked with errors.Is:
//
//	if errors.Is(err, opuspdf.ErrNoTemplate) {
//	    // nothing configured for this document
//	}
package opuspdf
