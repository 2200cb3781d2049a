package opuspdf

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/OPUS4/opus4-pdf/internal/testpdf"
)

// mockRunner records pandoc invocations and writes a plausible file to the
// --output path of each successful call.
type mockRunner struct {
	mu     sync.Mutex
	calls  [][]string
	failOn int // 1-based call index that fails, 0 for none
	stderr string
	err    error
	block  bool // wait for ctx cancellation instead of returning
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]string{name}, args...))
	n := len(m.calls)
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return "", "signal: killed", ctx.Err()
	}
	if m.failOn == n {
		return "", m.stderr, m.err
	}

	out := argAfter(args, "--output")
	if out == "" {
		return "", "", nil
	}
	var content []byte
	switch filepath.Ext(out) {
	case ".pdf":
		content = testpdf.Minimal("Cover", 1)
	case ".html":
		content = []byte("<!DOCTYPE html><html><body><h1>Cover</h1></body></html>")
	default:
		content = []byte("# Cover\n")
	}
	if err := os.WriteFile(out, content, 0o644); err != nil {
		return "", err.Error(), err
	}
	return "", "", nil
}

func (m *mockRunner) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.calls...)
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

// mockMerger records merges and writes a PDF to dest unless err is set.
type mockMerger struct {
	mu     sync.Mutex
	calls  [][]string
	err    error
	writes bool
}

func (m *mockMerger) Merge(_ context.Context, dest string, inputs ...string) error {
	m.mu.Lock()
	m.calls = append(m.calls, append([]string{dest}, inputs...))
	m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	if m.writes {
		return os.WriteFile(dest, testpdf.Minimal("Merged", 1+len(inputs)), 0o644)
	}
	return nil
}

func (m *mockMerger) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockPrinter returns a fixed PDF for any HTML file.
type mockPrinter struct {
	mu      sync.Mutex
	printed []string
	err     error
	closed  bool
}

func (p *mockPrinter) PrintFile(_ context.Context, htmlPath string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printed = append(p.printed, htmlPath)
	if p.err != nil {
		return nil, p.err
	}
	return testpdf.Minimal("Printed", 1), nil
}

func (p *mockPrinter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
