package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	opuspdf "github.com/OPUS4/opus4-pdf"
)

// Warm results per document.
const (
	warmOK     = "ok"
	warmFailed = "failed"
)

// warmFlags holds flags for the warm command.
type warmFlags struct {
	common      commonFlags
	cover       coverFlags
	collection  int
	workers     int
	rate        float64
	metricsFile string
}

// warmStats counts documents and their files by result.
type warmStats struct {
	documents atomic.Int64
	covered   atomic.Int64
	original  atomic.Int64
	failed    atomic.Int64
}

func warmFlagSet(f *warmFlags, env *Environment) *flag.FlagSet {
	fs := newFlagSet("warm", printWarmUsage, env)
	fs.IntVar(&f.collection, "collection", 0, "only documents in this collection or below")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.Float64Var(&f.rate, "rate", 0, "maximum documents per second (0 = unlimited)")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	addCommonFlags(fs, &f.common)
	addCoverFlags(fs, &f.cover)
	return fs
}

// runWarm fills the file cache for every document of the catalog, or of
// one collection subtree.
func runWarm(ctx context.Context, args []string, env *Environment) error {
	f := &warmFlags{}
	fs := warmFlagSet(f, env)
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: warm takes no arguments", ErrUsage)
	}
	if f.rate < 0 {
		return fmt.Errorf("%w: --rate must not be negative", ErrUsage)
	}

	cfg, err := loadConfig(f.common, env)
	if err != nil {
		return err
	}
	f.cover.apply(cfg)

	reg := prometheus.NewRegistry()
	documents := promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "opuspdf_warm_documents_total",
		Help: "Documents visited by warm runs, by result.",
	}, []string{"result"})

	a, err := openApp(cfg, env, opuspdf.WithRegisterer(reg))
	if err != nil {
		return err
	}
	defer a.Close()

	ids, err := a.catalog.DocumentIDs(ctx, f.collection)
	if err != nil {
		return err
	}

	workers := resolveWorkers(f.workers)
	a.log.Info().Int("documents", len(ids)).Int("workers", workers).Int("collection", f.collection).Msg("warming file cache")

	var limiter *rate.Limiter
	if f.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(f.rate), 1)
	}

	start := env.Now()
	stats := &warmStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, id := range ids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					return fmt.Errorf("rate limiter: %w", err)
				}
			}
			return warmDocument(gctx, a, id, stats, documents)
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	if f.metricsFile != "" {
		if werr := prometheus.WriteToTextfile(f.metricsFile, reg); werr != nil {
			err = errors.Join(err, fmt.Errorf("%w: metrics: %v", ErrWriteOutput, werr))
		}
	}

	elapsed := env.Now().Sub(start)
	a.log.Info().Dur("elapsed", elapsed).Int64("covered", stats.covered.Load()).Msg("warm finished")
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Warmed %d documents: %d files covered, %d delivered as original, %d documents failed\n",
			stats.documents.Load(), stats.covered.Load(), stats.original.Load(), stats.failed.Load())
	}
	return err
}

// warmDocument processes every file of one document. Only cancellation is
// returned; other failures are logged and counted so the run continues.
func warmDocument(ctx context.Context, a *app, id int, stats *warmStats, documents *prometheus.CounterVec) error {
	doc, err := a.catalog.Document(ctx, id)
	if err == nil {
		var docFiles []opuspdf.File
		docFiles, err = a.catalog.Files(ctx, id)
		if err == nil {
			for _, file := range docFiles {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if a.service.ProcessFile(ctx, doc, file) != file.Path {
					stats.covered.Add(1)
				} else {
					stats.original.Add(1)
				}
			}
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		stats.failed.Add(1)
		documents.WithLabelValues(warmFailed).Inc()
		a.log.Error().Err(err).Int("doc_id", id).Msg("cannot load document")
		return nil
	}
	stats.documents.Add(1)
	documents.WithLabelValues(warmOK).Inc()
	return nil
}

// resolveWorkers determines the worker count.
// Priority: explicit flag > OPUS_PDF_WORKERS > GOMAXPROCS-based calculation.
func resolveWorkers(flagWorkers int) int {
	if flagWorkers > 0 {
		return flagWorkers
	}
	if env := loadEnvConfig().Workers; env > 0 {
		return env
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers.
	n := runtime.GOMAXPROCS(0) / 2
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}
