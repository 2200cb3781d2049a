package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/OPUS4/opus4-pdf/internal/config"
)

// envConfig holds configuration from OPUS_PDF_* environment variables.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string        // OPUS_PDF_CONFIG: config file name or path
	Workspace  string        // OPUS_PDF_WORKSPACE: workspace directory
	Catalog    string        // OPUS_PDF_CATALOG: catalog database path
	Timeout    time.Duration // OPUS_PDF_TIMEOUT: per-stage deadline

	// Tier 2 - Toolchain
	Templates string // OPUS_PDF_TEMPLATES: templates directory
	Engine    string // OPUS_PDF_ENGINE: xelatex or chromium
	Pandoc    string // OPUS_PDF_PANDOC: pandoc executable

	// Tier 3 - Extended
	LogLevel string // OPUS_PDF_LOG_LEVEL: debug, info, warn, error
	Workers  int    // OPUS_PDF_WORKERS: warm workers
}

// knownEnvVars lists valid OPUS_PDF_* environment variables.
var knownEnvVars = map[string]bool{
	"OPUS_PDF_CONFIG":    true,
	"OPUS_PDF_WORKSPACE": true,
	"OPUS_PDF_CATALOG":   true,
	"OPUS_PDF_TIMEOUT":   true,
	"OPUS_PDF_TEMPLATES": true,
	"OPUS_PDF_ENGINE":    true,
	"OPUS_PDF_PANDOC":    true,
	"OPUS_PDF_LOG_LEVEL": true,
	"OPUS_PDF_WORKERS":   true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed durations and counts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("OPUS_PDF_CONFIG"),
		Workspace:  os.Getenv("OPUS_PDF_WORKSPACE"),
		Catalog:    os.Getenv("OPUS_PDF_CATALOG"),
		Templates:  os.Getenv("OPUS_PDF_TEMPLATES"),
		Engine:     os.Getenv("OPUS_PDF_ENGINE"),
		Pandoc:     os.Getenv("OPUS_PDF_PANDOC"),
		LogLevel:   os.Getenv("OPUS_PDF_LOG_LEVEL"),
	}

	if timeout := os.Getenv("OPUS_PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := os.Getenv("OPUS_PDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars prints warnings for unrecognized OPUS_PDF_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "OPUS_PDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig fills config values that are empty or still at their
// default. Precedence: CLI flags > config file > env vars > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Workspace != "" && cfg.Workspace == "" {
		cfg.Workspace = env.Workspace
	}
	if env.Catalog != "" && cfg.Catalog == "" {
		cfg.Catalog = env.Catalog
	}
	if env.Timeout > 0 && cfg.PDF.Covers.Timeout == "" {
		cfg.PDF.Covers.Timeout = env.Timeout.String()
	}
	if env.Templates != "" && cfg.PDF.Covers.Path == "" {
		cfg.PDF.Covers.Path = env.Templates
	}
	if env.Engine != "" && cfg.PDF.Covers.Engine == config.EngineXeLaTeX {
		cfg.PDF.Covers.Engine = env.Engine
	}
	if env.Pandoc != "" && cfg.PDF.Covers.Pandoc == config.DefaultPandoc {
		cfg.PDF.Covers.Pandoc = env.Pandoc
	}
	if env.LogLevel != "" && cfg.Log.Level == config.DefaultLogLevel {
		cfg.Log.Level = env.LogLevel
	}
}
