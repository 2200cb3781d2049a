package main

// Notes:
// - warm: documents come from the fixture catalog; the fake service answers
//   ProcessFile without rendering, so counts reflect dispatch only.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestWarm - Cache warming over the catalog
// ---------------------------------------------------------------------------

func TestWarm(t *testing.T) {
	t.Parallel()

	fx := newCLIFixture(t)
	metrics := filepath.Join(t.TempDir(), "warm.prom")
	if code := fx.run("warm", "-w", "2", "--rate", "1000", "--metrics-file", metrics); code != ExitSuccess {
		t.Fatalf("warm = %d, stderr: %s", code, fx.stderr.String())
	}

	files := append([]string(nil), fx.service.files...)
	sort.Strings(files)
	if strings.Join(files, ",") != "article.pdf,data.csv" {
		t.Errorf("processed files = %v", files)
	}

	want := "Warmed 3 documents: 1 files covered, 1 delivered as original, 0 documents failed\n"
	if fx.stdout.String() != want {
		t.Errorf("stdout = %q, want %q", fx.stdout.String(), want)
	}

	data, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	if !strings.Contains(string(data), `opuspdf_warm_documents_total{result="ok"} 3`) {
		t.Errorf("metrics = %s", data)
	}
}

func TestWarm_Collection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		collection string
		wantFiles  int
		wantDocs   string
	}{
		{name: "parent collection", collection: "2", wantFiles: 2, wantDocs: "Warmed 1 documents"},
		{name: "series", collection: "30", wantFiles: 0, wantDocs: "Warmed 1 documents"},
		{name: "unknown", collection: "999", wantFiles: 0, wantDocs: "Warmed 0 documents"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fx := newCLIFixture(t)
			if code := fx.run("warm", "--collection", tt.collection); code != ExitSuccess {
				t.Fatalf("warm = %d, stderr: %s", code, fx.stderr.String())
			}
			if len(fx.service.files) != tt.wantFiles {
				t.Errorf("processed files = %v, want %d", fx.service.files, tt.wantFiles)
			}
			if !strings.HasPrefix(fx.stdout.String(), tt.wantDocs) {
				t.Errorf("stdout = %q, want prefix %q", fx.stdout.String(), tt.wantDocs)
			}
		})
	}
}

func TestWarm_Usage(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{
		{"warm", "extra"},
		{"warm", "--rate", "-1"},
	} {
		fx := newCLIFixture(t)
		if code := fx.run(args...); code != ExitUsage {
			t.Errorf("run(%v) = %d, want %d", args, code, ExitUsage)
		}
	}
}

// ---------------------------------------------------------------------------
// TestResolveWorkers - Worker count
// ---------------------------------------------------------------------------

func TestResolveWorkers(t *testing.T) {
	if got := resolveWorkers(3); got != 3 {
		t.Errorf("resolveWorkers(3) = %d, want 3", got)
	}

	t.Setenv("OPUS_PDF_WORKERS", "5")
	if got := resolveWorkers(0); got != 5 {
		t.Errorf("resolveWorkers(0) with OPUS_PDF_WORKERS=5 = %d, want 5", got)
	}

	t.Setenv("OPUS_PDF_WORKERS", "")
	if got := resolveWorkers(0); got < 1 || got > 8 {
		t.Errorf("resolveWorkers(0) = %d, want 1..8", got)
	}
}
