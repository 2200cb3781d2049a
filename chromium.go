package opuspdf

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// HTMLPrinter prints a local HTML file to PDF.
type HTMLPrinter interface {
	PrintFile(ctx context.Context, htmlPath string) ([]byte, error)
	Close() error
}

// A4 page dimensions in inches.
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
	marginInches      = 0.6
)

// PrinterOptions configures the headless browser.
type PrinterOptions struct {
	Bin       string // Browser executable; empty lets rod find or download one
	NoSandbox bool   // Required in most containers
}

// RodPrinter implements HTMLPrinter with headless Chromium driven by go-rod.
// The browser starts on first use and is shared by concurrent prints.
type RodPrinter struct {
	opts    PrinterOptions
	mu      sync.Mutex
	browser *rod.Browser
	launch  *launcher.Launcher
}

// NewRodPrinter creates a RodPrinter. No browser is started until PrintFile.
func NewRodPrinter(opts PrinterOptions) *RodPrinter {
	return &RodPrinter{opts: opts}
}

// ensureBrowser lazily launches and connects to the browser.
func (p *RodPrinter) ensureBrowser() (*rod.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.browser != nil {
		return p.browser, nil
	}

	l := launcher.New().Headless(true)
	if p.opts.Bin != "" {
		l = l.Bin(p.opts.Bin)
	}
	if p.opts.NoSandbox {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	p.browser = browser
	p.launch = l
	return browser, nil
}

// PrintFile opens htmlPath in a new tab and prints it to an A4 PDF.
func (p *RodPrinter) PrintFile(ctx context.Context, htmlPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := p.ensureBrowser()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	target := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: target})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer func() { _ = page.Close() }()

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

// Close shuts the browser down and kills its process tree.
func (p *RodPrinter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.browser == nil {
		return nil
	}
	err := p.browser.Close()
	p.browser = nil
	if p.launch != nil {
		done := make(chan struct{})
		go func() {
			p.launch.Kill()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
		p.launch = nil
	}
	return err
}

func floatPtr(v float64) *float64 {
	return &v
}
