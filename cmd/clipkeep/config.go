package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipkeep/internal/ignore"
	"go.klb.dev/clipkeep/internal/keyboard"
	"go.klb.dev/clipkeep/internal/logging"
	"go.klb.dev/clipkeep/internal/pasteboard"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and CLIPKEEP_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → CLIPKEEP_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("clipkeep")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/clipkeep/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "clipkeep"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("CLIPKEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) {
	interactive := v.GetBool("no-background") || logging.IsTTY(os.Stderr)
	resolveLogging(interactive, v.GetString("log-format"), v.GetString("log-level"))
}

// addDaemonFlags declares every key the daemon reads.
func addDaemonFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Duration("poll-interval", 500*time.Millisecond, "how often to check the clipboard for changes")
	f.StringSlice("enabled-types", pasteboard.Strings(pasteboard.SupportedTypes), "clipboard types to record")
	f.StringSlice("ignored-types", pasteboard.Strings(ignore.DefaultIgnoredTypes), "clipboard types that stop a copy from being recorded")
	f.StringSlice("ignored-apps", nil, "application ids (or doublestar patterns) whose copies are not recorded")
	f.Bool("ignore-all-apps-except-listed", false, "treat --ignored-apps as an allow list")
	f.StringArray("ignore-regexp", nil, "skip clipboard items whose text matches this pattern (repeatable)")
	f.String("paste-key", "v", "key pressed to paste")
	f.StringSlice("paste-modifiers", []string{defaultPasteModifier()}, "modifiers held while pressing --paste-key")
	f.Bool("strip-formatting", false, "copy only plain text back from history by default")
	f.Int("history-size", 200, "number of unpinned items to keep")
	f.Bool("clear-on-exit", false, "remove unpinned history when the daemon stops")
	f.String("db", defaultDBPath(), "history database path")
	f.String("history-key", "", "passphrase sealing stored contents (empty = stored in the clear)")
}

func defaultPasteModifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "clipkeep", "history.db")
}

// ignoreConfig builds the ignore snapshot from the current settings.
func ignoreConfig(v *viper.Viper) ignore.Config {
	return ignore.Config{
		EnabledTypes:          pasteboard.ParseTypes(v.GetStringSlice("enabled-types")),
		UserIgnoredTypes:      pasteboard.ParseTypes(v.GetStringSlice("ignored-types")),
		IgnoredApps:           v.GetStringSlice("ignored-apps"),
		IgnoreAllExceptListed: v.GetBool("ignore-all-apps-except-listed"),
		Regexps:               v.GetStringSlice("ignore-regexp"),
	}
}

// pasteShortcut parses the paste key and modifiers.
func pasteShortcut(v *viper.Viper) (rune, keyboard.Modifiers, error) {
	key := []rune(v.GetString("paste-key"))
	if len(key) != 1 {
		return 0, 0, fmt.Errorf("paste-key must be a single character, got %q", v.GetString("paste-key"))
	}
	mods, err := keyboard.ParseModifiers(v.GetStringSlice("paste-modifiers"))
	if err != nil {
		return 0, 0, fmt.Errorf("paste-modifiers: %w", err)
	}
	return key[0], mods, nil
}
