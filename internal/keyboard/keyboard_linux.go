//go:build linux

package keyboard

import "go.klb.dev/clipkeep/internal/executil"

// NewSystem returns the xdotool backend.
func NewSystem() Backend { return &XDoTool{Exec: &executil.RealExecutor{}} }
