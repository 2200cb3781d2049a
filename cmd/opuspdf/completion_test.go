package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shell Shell
		want  []string
	}{
		{shell: ShellBash, want: []string{"_opuspdf()", "complete -F _opuspdf opuspdf", "generate", "--engine", "xelatex chromium"}},
		{shell: ShellZsh, want: []string{"#compdef opuspdf", "compdef _opuspdf opuspdf", "warm", "--metrics-file"}},
		{shell: ShellFish, want: []string{"complete -c opuspdf", "doctor", "templates"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.shell), func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("GenerateCompletion() unexpected error: %v", err)
			}
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("%s completion missing %q", tt.shell, want)
				}
			}
		})
	}
}

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := GenerateCompletion(&buf, Shell("tcsh")); !errors.Is(err, ErrUnsupportedShell) {
		t.Errorf("GenerateCompletion(tcsh) error = %v, want ErrUnsupportedShell", err)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestRunCompletion(t *testing.T) {
	t.Parallel()

	fx := newCLIFixture(t)
	if code := run(t.Context(), []string{"completion"}, fx.env); code != ExitSuccess {
		t.Errorf("completion = %d, want %d", code, ExitSuccess)
	}
	if !strings.Contains(fx.stdout.String(), "Usage: opuspdf completion <shell>") {
		t.Errorf("usage not printed: %q", fx.stdout.String())
	}
	if code := run(t.Context(), []string{"completion", "tcsh"}, fx.env); code != ExitUsage {
		t.Errorf("completion tcsh = %d, want %d", code, ExitUsage)
	}
}
