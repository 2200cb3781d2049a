package main

// Notes:
// - run: we test dispatch, exit codes and output streams through a fake
//   CoverService; pandoc and the PDF engines are never invoked here.
// - The catalog is a real SQLite file under t.TempDir().
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRun - Command dispatch
// ---------------------------------------------------------------------------

func TestRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "no arguments", args: nil, wantCode: ExitUsage, wantStderr: "Usage: opuspdf"},
		{name: "unknown command", args: []string{"render"}, wantCode: ExitUsage, wantStderr: "unknown command: render"},
		{name: "version", args: []string{"version"}, wantCode: ExitSuccess, wantStdout: "opuspdf " + Version},
		{name: "version flag", args: []string{"--version"}, wantCode: ExitSuccess, wantStdout: "opuspdf " + Version},
		{name: "help", args: []string{"help"}, wantCode: ExitSuccess, wantStdout: "Commands:"},
		{name: "help generate", args: []string{"help", "generate"}, wantCode: ExitSuccess, wantStdout: "Usage: opuspdf generate"},
		{name: "help unknown", args: []string{"help", "render"}, wantCode: ExitSuccess, wantStderr: "Unknown command: render"},
		{name: "command help flag", args: []string{"generate", "--help"}, wantCode: ExitSuccess, wantStderr: "Usage: opuspdf generate"},
		{name: "unknown flag", args: []string{"generate", "--bogus", "146"}, wantCode: ExitUsage, wantStderr: "invalid usage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			env := DefaultEnv()
			env.Stdout, env.Stderr = &stdout, &stderr

			if code := run(context.Background(), tt.args, env); code != tt.wantCode {
				t.Errorf("run(%v) = %d, want %d (stderr: %s)", tt.args, code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want substring %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want substring %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHasVerboseFlag - maxprocs logging switch
// ---------------------------------------------------------------------------

func TestHasVerboseFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{args: []string{"warm", "-v"}, want: true},
		{args: []string{"warm", "--verbose"}, want: true},
		{args: []string{"warm", "-q"}, want: false},
		{args: nil, want: false},
	}

	for _, tt := range tests {
		if got := hasVerboseFlag(tt.args); got != tt.want {
			t.Errorf("hasVerboseFlag(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
