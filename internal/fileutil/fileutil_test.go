package fileutil_test

// Notes:
// - CheckWritableDir on a read-only directory is not tested: running as root
//   bypasses permission bits, so the outcome depends on the CI user.
// - WriteFileAtomic Close/Chmod error branches need disk failures to trigger.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OPUS4/opus4-pdf/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestValidateName - Bare file name validation
// ---------------------------------------------------------------------------

func TestValidateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "plain name", input: "42-article.pdf", wantErr: nil},
		{name: "empty", input: "", wantErr: fileutil.ErrNameEmpty},
		{name: "forward slash", input: "../etc/passwd", wantErr: fileutil.ErrNamePathTraversal},
		{name: "backslash", input: "..\\win", wantErr: fileutil.ErrNamePathTraversal},
		{name: "null byte", input: "a\x00b", wantErr: fileutil.ErrNamePathTraversal},
		{name: "dot dot", input: "..", wantErr: fileutil.ErrNamePathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fileutil.ValidateName(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateName(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFileExists / TestDirExists - Existence checks
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "cover.md")
	if err := os.WriteFile(file, []byte("# Cover"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "existing file", path: file, want: true},
		{name: "directory", path: dir, want: false},
		{name: "missing", path: filepath.Join(dir, "missing.md"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := fileutil.FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestDirExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if !fileutil.DirExists(dir) {
		t.Errorf("DirExists(%q) = false, want true", dir)
	}
	if fileutil.DirExists(filepath.Join(dir, "nope")) {
		t.Error("DirExists(missing) = true, want false")
	}
}

// ---------------------------------------------------------------------------
// TestCheckWritableDir - Probe file creation
// ---------------------------------------------------------------------------

func TestCheckWritableDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := fileutil.CheckWritableDir(dir); err != nil {
		t.Fatalf("CheckWritableDir(%q) unexpected error: %v", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("probe file left behind: %d entries", len(entries))
	}

	err = fileutil.CheckWritableDir(filepath.Join(dir, "missing"))
	if !errors.Is(err, fileutil.ErrNotWritableDir) {
		t.Errorf("CheckWritableDir(missing) = %v, want ErrNotWritableDir", err)
	}
}

// ---------------------------------------------------------------------------
// TestIsFilePath / TestIsURL - String classification
// ---------------------------------------------------------------------------

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{input: "local", want: false},
		{input: "./local.yaml", want: true},
		{input: "/etc/opus/pdf.yaml", want: true},
		{input: "C:\\opus\\pdf.yaml", want: true},
		{input: "my-config", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := fileutil.IsFilePath(tt.input); got != tt.want {
				t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{input: "https://creativecommons.org/l/by/4.0/88x31.png", want: true},
		{input: "http://example.com", want: true},
		{input: "ftp://example.com", want: false},
		{input: "/local/path", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := fileutil.IsURL(tt.input); got != tt.want {
				t.Errorf("IsURL(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestTrimExt / TestHasExt - Extension helpers
// ---------------------------------------------------------------------------

func TestTrimExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "/var/cache/42-article.pdf", want: "42-article"},
		{input: "article", want: "article"},
		{input: "archive.tar.gz", want: "archive.tar"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := fileutil.TrimExt(tt.input); got != tt.want {
				t.Errorf("TrimExt(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHasExt(t *testing.T) {
	t.Parallel()

	if !fileutil.HasExt("paper.PDF", ".pdf") {
		t.Error("HasExt(paper.PDF, .pdf) = false, want true")
	}
	if fileutil.HasExt("paper.docx", ".pdf") {
		t.Error("HasExt(paper.docx, .pdf) = true, want false")
	}
}

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - Temp file plus rename
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := filepath.Join(dir, "42-article.pdf")

	if err := fileutil.WriteFileAtomic(dest, strings.NewReader("first"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic() unexpected error: %v", err)
	}
	if err := fileutil.WriteFileAtomic(dest, strings.NewReader("second"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic() overwrite unexpected error: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1 (no temp leftovers)", len(entries))
	}
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "missing", "out.pdf")
	if err := fileutil.WriteFileAtomic(dest, strings.NewReader("x"), 0o644); err == nil {
		t.Error("WriteFileAtomic() into missing dir: expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// TestCopyFile / TestRemoveAll
// ---------------------------------------------------------------------------

func TestCopyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	dest := filepath.Join(dir, "dest.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.7"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := fileutil.CopyFile(src, dest, 0o644); err != nil {
		t.Fatalf("CopyFile() unexpected error: %v", err)
	}
	got, _ := os.ReadFile(dest)
	if string(got) != "%PDF-1.7" {
		t.Errorf("copied content = %q", got)
	}

	if err := fileutil.CopyFile(filepath.Join(dir, "missing"), dest, 0o644); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("CopyFile(missing) = %v, want os.ErrNotExist", err)
	}
}

func TestRemoveAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.json")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	fileutil.RemoveAll(a, "", b, filepath.Join(dir, "missing"))

	if fileutil.FileExists(a) || fileutil.FileExists(b) {
		t.Error("RemoveAll() left files behind")
	}
}
