package main

// Notes:
// - generate: the fake service writes a stub cover into {workspace}/tmp; we
//   check the copy, the message and the settings derived from the config.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	opuspdf "github.com/OPUS4/opus4-pdf"
)

// ---------------------------------------------------------------------------
// TestGenerate - Single document covers
// ---------------------------------------------------------------------------

func TestGenerate(t *testing.T) {
	t.Parallel()

	fx := newCLIFixture(t)
	if code := fx.run("generate", "146"); code != ExitSuccess {
		t.Fatalf("generate = %d, stderr: %s", code, fx.stderr.String())
	}

	dest := filepath.Join(fx.dir, "146.pdf")
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("cover not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("cover content = %q", data)
	}

	want := fmt.Sprintf("Generated cover for document with ID 146 at %s\n", dest)
	if fx.stdout.String() != want {
		t.Errorf("stdout = %q, want %q", fx.stdout.String(), want)
	}
	if _, err := os.Stat(filepath.Join(fx.workspace, "tmp", "146.pdf")); !os.IsNotExist(err) {
		t.Error("temporary cover not removed")
	}
	if !fx.service.closed {
		t.Error("service not closed")
	}
}

func TestGenerate_Settings(t *testing.T) {
	t.Parallel()

	fx := newCLIFixture(t)
	if code := fx.run("generate", "146", "--engine", "chromium", "--timeout", "45s", "--keep-temp"); code != ExitSuccess {
		t.Fatalf("generate = %d, stderr: %s", code, fx.stderr.String())
	}

	s := fx.settings
	if s.TemplatesDir != fx.templates || s.DefaultTemplate != "default-cover.md" {
		t.Errorf("templates = %q/%q", s.TemplatesDir, s.DefaultTemplate)
	}
	if s.CollectionTemplates[16] != "default-cover.md" {
		t.Errorf("CollectionTemplates = %v", s.CollectionTemplates)
	}
	if s.Collections == nil {
		t.Error("Collections lookup not set")
	}
	if s.FilecacheDir != filepath.Join(fx.workspace, "filecache") || s.TempDir != filepath.Join(fx.workspace, "tmp") {
		t.Errorf("dirs = %q/%q", s.FilecacheDir, s.TempDir)
	}
	if s.Engine != opuspdf.EngineChromium || s.Timeout.String() != "45s" || !s.KeepTemp {
		t.Errorf("engine/timeout/keep = %q/%v/%v", s.Engine, s.Timeout, s.KeepTemp)
	}
	if s.Config == nil || s.Config.Value("name") != "Test Repository" {
		t.Error("config values not passed")
	}
	if _, err := os.Stat(filepath.Join(fx.workspace, "tmp", "146.pdf")); err != nil {
		t.Errorf("--keep-temp removed the temporary cover: %v", err)
	}
}

func TestGenerate_OutputAndTemplate(t *testing.T) {
	t.Parallel()

	fx := newCLIFixture(t)
	dest := filepath.Join(t.TempDir(), "cover.pdf")
	if code := fx.run("generate", "-o", dest, "-t", "special.md", "146"); code != ExitSuccess {
		t.Fatalf("generate = %d, stderr: %s", code, fx.stderr.String())
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("cover not written to -o path: %v", err)
	}
	if len(fx.service.templates) != 1 || fx.service.templates[0] != "special.md" {
		t.Errorf("templates passed = %v, want [special.md]", fx.service.templates)
	}
}

func TestGenerate_Quiet(t *testing.T) {
	t.Parallel()

	fx := newCLIFixture(t)
	if code := fx.run("generate", "-q", "146"); code != ExitSuccess {
		t.Fatalf("generate = %d, stderr: %s", code, fx.stderr.String())
	}
	if fx.stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing with -q", fx.stdout.String())
	}
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		serviceErr error
		wantCode   int
		wantStderr string
	}{
		{name: "missing id", args: []string{"generate"}, wantCode: ExitUsage},
		{name: "invalid id", args: []string{"generate", "abc"}, wantCode: ExitUsage},
		{name: "zero id", args: []string{"generate", "0"}, wantCode: ExitUsage},
		{name: "two ids", args: []string{"generate", "146", "147"}, wantCode: ExitUsage},
		{name: "unknown document", args: []string{"generate", "999"}, wantCode: ExitIO, wantStderr: "not found in catalog"},
		{name: "unknown engine", args: []string{"generate", "146", "--engine", "wkhtmltopdf"}, wantCode: ExitUsage},
		{
			name:       "no template",
			args:       []string{"generate", "146"},
			serviceErr: fmt.Errorf("%w for document 146", opuspdf.ErrNoTemplate),
			wantCode:   ExitUsage,
			wantStderr: "hint: available: default-cover.md",
		},
		{
			name:       "conversion failure",
			args:       []string{"generate", "146"},
			serviceErr: fmt.Errorf("%w: pdf: exit status 43", opuspdf.ErrConversion),
			wantCode:   ExitToolchain,
			wantStderr: "xelatex",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fx := newCLIFixture(t)
			fx.service.err = tt.serviceErr

			if code := fx.run(tt.args...); code != tt.wantCode {
				t.Errorf("run(%v) = %d, want %d (stderr: %s)", tt.args, code, tt.wantCode, fx.stderr.String())
			}
			if tt.wantStderr != "" && !strings.Contains(fx.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want substring %q", fx.stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestGenerate_NoWorkspace(t *testing.T) {
	t.Parallel()

	fx := newCLIFixture(t)
	if err := os.WriteFile(fx.config, []byte("catalog: "+fx.catalog+"\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if code := fx.run("generate", "146"); code != ExitUsage {
		t.Errorf("generate without workspace = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(fx.stderr.String(), "OPUS_PDF_WORKSPACE") {
		t.Errorf("stderr = %q, want workspace hint", fx.stderr.String())
	}
}
