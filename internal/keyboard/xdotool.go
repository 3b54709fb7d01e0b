package keyboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.klb.dev/clipkeep/internal/executil"
)

const postTimeout = time.Second

// XDoTool posts key events on X11 through the xdotool binary. Key codes are
// the characters themselves; xdotool resolves them against the layout.
type XDoTool struct {
	Exec executil.Executor
}

func (x *XDoTool) HasPermission() bool { return x.Exec.LookPath("xdotool") }

func (x *XDoTool) RequestPermission() {
	slog.Warn("install xdotool to enable paste")
}

func (x *XDoTool) KeyCode(key rune) (KeyCode, bool) {
	if key < 0x20 || key > 0x7E {
		return 0, false
	}
	return KeyCode(key), true
}

func (x *XDoTool) CommandSwitchesToQWERTY() bool { return false }

func (x *XDoTool) SuppressLocalInput() {}

func (x *XDoTool) PostKey(code KeyCode, mods Modifiers, down bool) error {
	action := "keyup"
	if down {
		action = "keydown"
	}
	ctx, cancel := context.WithTimeout(context.Background(), postTimeout)
	defer cancel()
	if _, err := x.Exec.Run(ctx, "xdotool", action, chord(code, mods)); err != nil {
		return fmt.Errorf("xdotool %s: %w", action, err)
	}
	return nil
}

func chord(code KeyCode, mods Modifiers) string {
	var parts []string
	if mods.Has(Command) {
		parts = append(parts, "super")
	}
	if mods.Has(Control) {
		parts = append(parts, "ctrl")
	}
	if mods.Has(Option) {
		parts = append(parts, "alt")
	}
	if mods.Has(Shift) {
		parts = append(parts, "shift")
	}
	return strings.Join(append(parts, string(rune(code))), "+")
}
