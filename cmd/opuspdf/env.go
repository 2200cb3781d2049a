package main

import (
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/go-rod/rod/lib/launcher"

	opuspdf "github.com/OPUS4/opus4-pdf"
)

// CoverService is the part of opuspdf.CoverGenerator the commands use.
type CoverService interface {
	ProcessDocument(ctx context.Context, doc *opuspdf.Document, templatePath string) (string, error)
	ProcessFile(ctx context.Context, doc *opuspdf.Document, file opuspdf.File) string
	ClearCache(docID int) (int, error)
	Close() error
}

var _ CoverService = (*opuspdf.CoverGenerator)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Getwd  func() (string, error)

	// NewService builds the cover service from resolved settings.
	NewService func(settings opuspdf.Settings, opts ...opuspdf.Option) (CoverService, error)

	// LookPath and BrowserPath locate external tools for doctor.
	LookPath    func(file string) (string, error)
	BrowserPath func() (string, bool)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getwd:  os.Getwd,
		NewService: func(settings opuspdf.Settings, opts ...opuspdf.Option) (CoverService, error) {
			return opuspdf.NewCoverGenerator(settings, opts...)
		},
		LookPath:    exec.LookPath,
		BrowserPath: launcher.LookPath,
	}
}
