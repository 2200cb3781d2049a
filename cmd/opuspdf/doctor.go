package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"github.com/OPUS4/opus4-pdf/internal/config"
	"github.com/OPUS4/opus4-pdf/internal/fileutil"
	"github.com/OPUS4/opus4-pdf/internal/hints"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string        `json:"status"`
	Engine    string        `json:"engine"`
	Tools     []toolInfo    `json:"tools"`
	Workspace workspaceInfo `json:"workspace"`
	Env       envInfo       `json:"environment"`
	Warnings  []string      `json:"warnings,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}

// toolInfo holds the detection result of one external program.
type toolInfo struct {
	Name     string `json:"name"`
	Found    bool   `json:"found"`
	Path     string `json:"path,omitempty"`
	Required bool   `json:"required"`
}

// workspaceInfo holds workspace check results.
type workspaceInfo struct {
	Path            string `json:"path"`
	Writable        bool   `json:"writable"`
	Templates       string `json:"templates"`
	DefaultTemplate bool   `json:"default_template"`
	Catalog         string `json:"catalog"`
	CatalogExists   bool   `json:"catalog_exists"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common     commonFlags
	jsonOutput bool
}

func doctorFlagSet(f *doctorFlags, env *Environment) *flag.FlagSet {
	fs := newFlagSet("doctor", printDoctorUsage, env)
	fs.BoolVar(&f.jsonOutput, "json", false, "print results as JSON")
	addCommonFlags(fs, &f.common)
	return fs
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	f := &doctorFlags{}
	fs := doctorFlagSet(f, env)
	if err := parseArgs(fs, args); err != nil {
		if errors.Is(err, errHelpShown) {
			return ExitSuccess
		}
		printError(env.Stderr, err)
		return ExitUsage
	}

	cfg, err := loadConfig(f.common, env)
	var configErr error
	if err != nil {
		configErr = err
		cfg = config.DefaultConfig()
	}

	result := runDoctor(cfg, env)
	if configErr != nil {
		result.Errors = append([]string{configErr.Error()}, result.Errors...)
		result.Status = statusErrors
	}

	if f.jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(cfg *config.Config, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Engine: cfg.PDF.Covers.Engine,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkTools(cfg, env, result)
	checkWorkspace(cfg, result)
	checkEnvironment(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkTools locates pandoc and the engines. The configured engine is
// required; the other one is reported for information.
func checkTools(cfg *config.Config, env *Environment, result *doctorResult) {
	engine := cfg.PDF.Covers.Engine

	pandoc := toolInfo{Name: "pandoc", Required: true}
	if path, err := env.LookPath(cfg.PDF.Covers.Pandoc); err == nil {
		pandoc.Found, pandoc.Path = true, path
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("pandoc not found (%s)", cfg.PDF.Covers.Pandoc))
	}

	xelatex := toolInfo{Name: config.EngineXeLaTeX, Required: engine == config.EngineXeLaTeX}
	if path, err := env.LookPath(config.EngineXeLaTeX); err == nil {
		xelatex.Found, xelatex.Path = true, path
	} else if xelatex.Required {
		result.Errors = append(result.Errors, "xelatex not found, install a TeX distribution or use the chromium engine")
	}

	browser := toolInfo{Name: config.EngineChromium, Required: engine == config.EngineChromium}
	path := result.Env.BrowserBin
	found := path != "" && fileutil.FileExists(path)
	if path == "" {
		path, found = env.BrowserPath()
	}
	if found {
		browser.Found, browser.Path = true, path
	} else if browser.Required {
		result.Errors = append(result.Errors, "Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
	}

	result.Tools = []toolInfo{pandoc, xelatex, browser}
}

// checkWorkspace verifies the directories and files generation relies on.
func checkWorkspace(cfg *config.Config, result *doctorResult) {
	ws := &result.Workspace
	ws.Path = cfg.Workspace
	ws.Templates = cfg.TemplatesDir()
	ws.Catalog = cfg.Catalog

	if cfg.Workspace == "" {
		result.Errors = append(result.Errors, "no workspace configured (set workspace or OPUS_PDF_WORKSPACE)")
	} else if err := fileutil.CheckWritableDir(cfg.Workspace); err != nil {
		result.Errors = append(result.Errors, err.Error())
	} else {
		ws.Writable = true
	}

	switch {
	case ws.Templates == "":
	case !fileutil.DirExists(ws.Templates):
		result.Errors = append(result.Errors, fmt.Sprintf("templates directory %s does not exist (run 'opuspdf templates init')", ws.Templates))
	default:
		ws.DefaultTemplate = fileutil.FileExists(filepath.Join(ws.Templates, cfg.PDF.Covers.Default))
		if !ws.DefaultTemplate {
			result.Warnings = append(result.Warnings, fmt.Sprintf("default template %s not found in %s", cfg.PDF.Covers.Default, ws.Templates))
		}
	}

	if cfg.Catalog == "" {
		result.Warnings = append(result.Warnings, "no catalog configured (set catalog or OPUS_PDF_CATALOG)")
	} else if ws.CatalogExists = fileutil.FileExists(cfg.Catalog); !ws.CatalogExists {
		result.Warnings = append(result.Warnings, fmt.Sprintf("catalog %s does not exist yet (run 'opuspdf import')", cfg.Catalog))
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Engine == config.EngineChromium &&
		(result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer reports whether we run in a container and which signal said so.
func isContainer() (bool, string) {
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	ok := color.GreenString("[OK]")
	warn := color.YellowString("[WARN]")
	fail := color.RedString("[ERROR]")

	fmt.Fprintln(w, "opuspdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Tools (engine: %s)\n", r.Engine)
	for _, t := range r.Tools {
		switch {
		case t.Found:
			fmt.Fprintf(w, "  %s %s: %s\n", ok, t.Name, t.Path)
		case t.Required:
			fmt.Fprintf(w, "  %s %s: not found\n", fail, t.Name)
		default:
			fmt.Fprintf(w, "  %s %s: not found (not needed)\n", warn, t.Name)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Workspace")
	if r.Workspace.Writable {
		fmt.Fprintf(w, "  %s %s: writable\n", ok, r.Workspace.Path)
	} else {
		fmt.Fprintf(w, "  %s workspace: not writable\n", fail)
	}
	if r.Workspace.DefaultTemplate {
		fmt.Fprintf(w, "  %s templates: %s\n", ok, r.Workspace.Templates)
	}
	if r.Workspace.CatalogExists {
		fmt.Fprintf(w, "  %s catalog: %s\n", ok, r.Workspace.Catalog)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  %s Platform: %s/%s\n", ok, r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  %s Container: detected (%s)\n", ok, r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintf(w, "  %s CI: detected\n", ok)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, msg := range r.Warnings {
			fmt.Fprintf(w, "  %s %s\n", warn, msg)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, msg := range r.Errors {
			fmt.Fprintf(w, "  %s %s\n", fail, msg)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to generate covers")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
