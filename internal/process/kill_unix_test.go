//go:build !windows

package process

import (
	"context"
	"os/exec"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestConfigure_CancelKillsGroup - Deadline stops a long-running child
// ---------------------------------------------------------------------------

func TestConfigure_CancelKillsGroup(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", "sleep 30 & sleep 30")
	Configure(cmd)

	start := time.Now()
	err := cmd.Run()
	if err == nil {
		t.Fatal("Run() error = nil, want error after deadline")
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("Run() took %v, want prompt termination", elapsed)
	}
	if ctx.Err() == nil {
		t.Error("context should have expired")
	}
}
