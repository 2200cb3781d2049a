package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	opuspdf "github.com/OPUS4/opus4-pdf"
	"github.com/OPUS4/opus4-pdf/internal/assets"
	"github.com/OPUS4/opus4-pdf/internal/catalog"
	"github.com/OPUS4/opus4-pdf/internal/fileutil"
)

const fixtureJSONL = `{"kind":"collection","collection":{"id":2,"name":"Faculty of Arts"}}
{"kind":"collection","collection":{"id":16,"parentId":2,"name":"Psychoeconomics"}}
{"kind":"collection","collection":{"id":30,"name":"Series"}}
{"kind":"document","document":{"id":146,"type":"article","title":"Nemo enim ipsam","collections":[16],"modified":"2024-03-01T12:00:00Z","files":[{"name":"article.pdf"},{"name":"data.csv"}]}}
{"kind":"document","document":{"id":147,"type":"bookpart","title":"Quis autem","collections":[30],"modified":"2023-01-01T00:00:00Z"}}
{"kind":"document","document":{"id":150,"type":"report","title":"Unfiled","modified":"2023-01-01T00:00:00Z"}}
`

// fakeService records calls instead of running pandoc.
type fakeService struct {
	mu        sync.Mutex
	err       error
	templates []string
	files     []string
	closed    bool
	cleared   []int
	tempDir   string
	cacheDir  string
}

func (s *fakeService) ProcessDocument(_ context.Context, doc *opuspdf.Document, templatePath string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = append(s.templates, templatePath)
	if s.err != nil {
		return "", s.err
	}
	path := filepath.Join(s.tempDir, fmt.Sprintf("%d.pdf", doc.ID))
	if err := os.WriteFile(path, []byte("%PDF-1.4 cover"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *fakeService) ProcessFile(_ context.Context, doc *opuspdf.Document, file opuspdf.File) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, file.PathName)
	if !fileutil.HasExt(file.PathName, ".pdf") {
		return file.Path
	}
	return filepath.Join(s.cacheDir, fmt.Sprintf("%d-%s", doc.ID, file.PathName))
}

func (s *fakeService) ClearCache(docID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared = append(s.cleared, docID)
	return 0, nil
}

func (s *fakeService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// cliFixture is a workspace with config, templates and an imported catalog.
type cliFixture struct {
	dir       string
	config    string
	workspace string
	templates string
	catalog   string
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	service   *fakeService
	settings  opuspdf.Settings
	env       *Environment
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()

	dir := t.TempDir()
	fx := &cliFixture{
		dir:       dir,
		config:    filepath.Join(dir, "opus.yaml"),
		workspace: filepath.Join(dir, "workspace"),
		templates: filepath.Join(dir, "covers"),
		catalog:   filepath.Join(dir, "catalog.db"),
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
	}
	fx.service = &fakeService{
		tempDir:  filepath.Join(fx.workspace, "tmp"),
		cacheDir: filepath.Join(fx.workspace, "filecache"),
	}

	if err := os.MkdirAll(fx.workspace, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := assets.Install(fx.templates, false); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg := fmt.Sprintf(`name: Test Repository
workspace: %s
catalog: %s
pdf:
  covers:
    path: %s
collection:
  16:
    cover: default-cover.md
`, fx.workspace, fx.catalog, fx.templates)
	if err := os.WriteFile(fx.config, []byte(cfg), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cat, err := catalog.Open(fx.catalog, filepath.Join(fx.workspace, "files"))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := cat.Import(context.Background(), strings.NewReader(fixtureJSONL)); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := cat.Close(); err != nil {
		t.Fatalf("setup: %v", err)
	}

	fx.env = &Environment{
		Now:    time.Now,
		Stdout: fx.stdout,
		Stderr: fx.stderr,
		Getwd:  func() (string, error) { return dir, nil },
		NewService: func(settings opuspdf.Settings, _ ...opuspdf.Option) (CoverService, error) {
			fx.settings = settings
			return fx.service, nil
		},
		LookPath:    func(string) (string, error) { return "", exec.ErrNotFound },
		BrowserPath: func() (string, bool) { return "", false },
	}
	return fx
}

// run executes the CLI with the fixture config appended.
func (fx *cliFixture) run(args ...string) int {
	return run(context.Background(), append(args, "--config", fx.config), fx.env)
}
