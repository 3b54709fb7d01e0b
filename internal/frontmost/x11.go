package frontmost

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.klb.dev/clipkeep/internal/executil"
)

const lookupTimeout = 500 * time.Millisecond

// X11 identifies the focused window by its WM_CLASS class name, which plays
// the role of a bundle identifier on X11 desktops.
type X11 struct {
	Exec executil.Executor
}

func (x *X11) FrontmostApp() string {
	if !x.Exec.LookPath("xdotool") {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	out, err := x.Exec.Run(ctx, "xdotool", "getactivewindow", "getwindowclassname")
	if err != nil {
		slog.Debug("frontmost app lookup failed", "err", err)
		return ""
	}
	return strings.TrimSpace(string(out))
}
