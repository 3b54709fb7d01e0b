package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipkeep/internal/control"
	"go.klb.dev/clipkeep/internal/crypto"
	"go.klb.dev/clipkeep/internal/frontmost"
	"go.klb.dev/clipkeep/internal/history"
	"go.klb.dev/clipkeep/internal/ipc"
	"go.klb.dev/clipkeep/internal/keyboard"
	"go.klb.dev/clipkeep/internal/monitor"
	"go.klb.dev/clipkeep/internal/pasteboard"
	"go.klb.dev/clipkeep/internal/store/sqlite"
	"go.klb.dev/clipkeep/internal/writeback"
)

func newDaemonCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Watch the clipboard and record history",
		Long: `Starts the clipboard monitor and the control socket used by the other
commands.

Config file search order:
  /etc/clipkeep/clipkeep.toml
  $HOME/.config/clipkeep/clipkeep.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → CLIPKEEP_* env vars → flags

Edits to the config file take effect without a restart for the ignore rules
and the poll interval.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runDaemon(cmd.Context(), v) },
	}

	addDaemonFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(ctx context.Context, v *viper.Viper) error {
	setupLogging(v)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if ipc.IsRunning() {
		return fmt.Errorf("a clipkeep daemon is already listening on %s", ipc.SocketPath())
	}

	key, mods, err := pasteShortcut(v)
	if err != nil {
		return err
	}

	var sealKey *crypto.Key
	if pass := v.GetString("history-key"); pass != "" {
		if sealKey, err = crypto.DeriveKey(pass); err != nil {
			return err
		}
	}

	db, err := sqlite.NewDB(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer db.Close()
	repo := sqlite.NewHistoryRepo(db, sealKey)

	clip := pasteboard.New()
	defer clip.Close()

	builder := history.NewBuilder(repo)
	mon := monitor.New(clip, frontmost.New(), builder, ignoreConfig(v))
	svc := control.NewService(repo, writeback.New(mon), keyboard.New(keyboard.NewSystem(), key, mods), mon)

	live := &reloader{v: v, mon: mon, svc: svc}
	live.apply()
	builder.Observers.Subscribe(trimObserver(repo, live.historySize))

	if v.ConfigFileUsed() != "" {
		v.OnConfigChange(func(e fsnotify.Event) {
			live.apply()
			slog.Info("config reloaded", "file", e.Name)
		})
		v.WatchConfig()
	}

	slog.Info("clipkeep daemon starting",
		"version", Version,
		"backend", clip.Name(),
		"db", db.Path(),
		"history_size", live.historySize(),
		"sealed", sealKey != nil,
	)

	ln, err := ipc.Listen()
	if err != nil {
		return fmt.Errorf("listen %s: %w", ipc.SocketPath(), err)
	}

	errc := make(chan error, 1)
	go func() { errc <- control.Serve(ctx, ln, svc) }()

	mon.Run(ctx)

	if err := <-errc; err != nil {
		slog.Error("control socket stopped", "err", err)
	}

	if v.GetBool("clear-on-exit") {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		n, err := repo.ClearUnpinned(sctx)
		if err != nil {
			return fmt.Errorf("clear history on exit: %w", err)
		}
		slog.Info("history cleared on exit", "removed", n)
	}
	slog.Info("clipkeep daemon stopped")
	return nil
}

// reloader pushes the settings that can change at runtime into the running
// components. Once the daemon is up viper is only read from apply, which runs
// on viper's watcher goroutine; everything else gets copies.
type reloader struct {
	v    *viper.Viper
	mon  *monitor.Monitor
	svc  *control.Service
	size atomic.Int64
}

func (r *reloader) apply() {
	r.mon.SetConfig(ignoreConfig(r.v))
	r.mon.SetInterval(r.v.GetDuration("poll-interval"))
	r.svc.SetStripFormatting(r.v.GetBool("strip-formatting"))
	r.size.Store(int64(r.v.GetInt("history-size")))
}

func (r *reloader) historySize() int { return int(r.size.Load()) }

type trimmer interface {
	Trim(ctx context.Context, keep int) (int64, error)
}

// trimObserver keeps the store at the configured size after every insert.
func trimObserver(t trimmer, size func() int) history.Observer {
	return history.ObserverFunc(func(ctx context.Context, _ history.Item) {
		keep := size()
		if keep <= 0 {
			return
		}
		n, err := t.Trim(ctx, keep)
		if err != nil {
			slog.Warn("trim history failed", "err", err)
			return
		}
		if n > 0 {
			slog.Debug("history trimmed", "removed", n, "keep", keep)
		}
	})
}
