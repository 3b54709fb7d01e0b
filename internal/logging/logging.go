// Package logging configures slog for clipkeep. Interactive runs get compact
// colored lines from tinter; the long-running daemon, whose stderr usually
// goes to launchd or the systemd journal, writes JSON.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Format selects the log output format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a string to a Format, returning FormatAuto for unknown values.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "text", "tint", "human":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// ParseLevel converts a string to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// New builds a logger writing to w. FormatAuto picks the colored handler
// when w is a terminal and JSON otherwise, which is what a service manager
// collects from the daemon. At debug level every record carries its source
// location.
func New(w io.Writer, format Format, level slog.Level) *slog.Logger {
	tty := IsTTY(w)
	debug := level <= slog.LevelDebug

	var h slog.Handler
	if format == FormatText || (format == FormatAuto && tty) {
		h = tinter.NewHandler(w, &tinter.Options{
			Level:      level,
			AddSource:  debug,
			TimeFormat: "15:04:05.000",
			NoColor:    !tty,
		})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			AddSource:   debug,
			ReplaceAttr: shortSource,
		})
	}
	return slog.New(h)
}

// shortSource trims source paths to package/file.go.
func shortSource(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.SourceKey {
		return a
	}
	if src, ok := a.Value.Any().(*slog.Source); ok {
		src.File = filepath.Base(filepath.Dir(src.File)) + "/" + filepath.Base(src.File)
	}
	return a
}

// Setup installs the global logger on stderr. Call once after flag/viper
// parsing. Records carry the pid so daemon restarts are easy to tell apart
// in a shared journal.
func Setup(format Format, level slog.Level) {
	slog.SetDefault(New(os.Stderr, format, level).With("pid", os.Getpid()))
}
