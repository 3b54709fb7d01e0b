// Package executil runs the helper binaries some platform backends shell out
// to (xdotool on X11).
package executil

import (
	"context"
	"fmt"
	"os/exec"
)

// Executor runs external commands.
type Executor interface {
	// Run executes a command and returns its combined output.
	Run(ctx context.Context, cmd string, args ...string) ([]byte, error)
	// LookPath reports whether cmd is available.
	LookPath(cmd string) bool
}

// RealExecutor calls actual commands.
type RealExecutor struct{}

// Run executes a command and returns its combined output.
func (e *RealExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, cmd, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("exec %s: %w", cmd, err)
	}
	return out, nil
}

// LookPath reports whether cmd resolves on $PATH.
func (e *RealExecutor) LookPath(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}
