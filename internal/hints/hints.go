// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/OPUS4/opus4-pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForPandocNotFound returns hints for a missing pandoc executable.
func ForPandocNotFound() string {
	return format("install pandoc (https://pandoc.org/installing.html) or set pdf.covers.pandoc / OPUS_PDF_PANDOC")
}

// ForPDFEngine returns hints for a failing PDF engine.
func ForPDFEngine(engine string) string {
	switch engine {
	case "xelatex":
		return format("install a TeX distribution providing xelatex (TeX Live, MiKTeX) or use --engine chromium")
	case "chromium":
		return ForBrowserConnect()
	}
	return ""
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use a custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the per-stage deadline.
func ForTimeout() string {
	return format("raise pdf.covers.timeout or use --timeout")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/opus4-pdf/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml or set OPUS_PDF_CONFIG"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/opus4-pdf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForTemplateNotFound lists the templates that do exist.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return format("run 'opuspdf templates init' to install the starter template")
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForWritableDir returns hints for unwritable workspace directories.
func ForWritableDir(dir string) string {
	if dir == "" {
		return format("set workspace in the config file or OPUS_PDF_WORKSPACE")
	}
	return format("check that " + dir + " exists and is writable by the current user")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
