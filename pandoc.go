package opuspdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/OPUS4/opus4-pdf/internal/process"
)

// DefaultPandoc is the pandoc executable looked up in PATH.
const DefaultPandoc = "pandoc"

// DefaultStageTimeout bounds each external conversion stage.
const DefaultStageTimeout = 2 * time.Minute

// waitDelay is how long Wait keeps output pipes open after the process
// group was killed.
const waitDelay = 5 * time.Second

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. Cancelling ctx kills
// the whole process group, including engines pandoc spawned.
type ExecRunner struct{}

var _ CommandRunner = (*ExecRunner)(nil)

// Run starts the command and waits for it to finish.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- executable comes from configuration
	process.Configure(cmd)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Pandoc invokes the pandoc CLI, one bounded run per conversion stage.
type Pandoc struct {
	Path    string
	Runner  CommandRunner
	Timeout time.Duration
}

// NewPandoc creates a Pandoc using the given executable and a real command runner.
func NewPandoc(path string, timeout time.Duration) *Pandoc {
	if path == "" {
		path = DefaultPandoc
	}
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}
	return &Pandoc{Path: path, Runner: &ExecRunner{}, Timeout: timeout}
}

// Run executes one stage. Failures wrap ErrConversion together with the
// underlying cause (exec.ErrNotFound, context.DeadlineExceeded, exit status)
// and pandoc's stderr.
func (p *Pandoc) Run(ctx context.Context, stage string, args ...string) error {
	timeout := p.stageTimeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, stderr, err := p.Runner.Run(ctx, p.Path, args...)
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s: timed out after %s: %w", ErrConversion, stage, timeout, ctxErr)
		}
		return fmt.Errorf("%w: %s: %w", ErrConversion, stage, ctxErr)
	}

	msg := strings.TrimSpace(stderr)
	if msg == "" {
		return fmt.Errorf("%w: %s: %w", ErrConversion, stage, err)
	}
	return fmt.Errorf("%w: %s: %w: %s", ErrConversion, stage, err, msg)
}

func (p *Pandoc) stageTimeout() time.Duration {
	if p.Timeout <= 0 {
		return DefaultStageTimeout
	}
	return p.Timeout
}
