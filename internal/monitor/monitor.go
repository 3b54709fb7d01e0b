// Package monitor polls the system clipboard and records every change that
// passes the ignore rules.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.klb.dev/clipkeep/internal/content"
	"go.klb.dev/clipkeep/internal/history"
	"go.klb.dev/clipkeep/internal/ignore"
	"go.klb.dev/clipkeep/internal/pasteboard"
)

// DefaultInterval is how often the clipboard change counter is checked.
const DefaultInterval = 500 * time.Millisecond

// AppSource reports the identifier of the application in front. It returns
// "" when that cannot be determined.
type AppSource interface {
	FrontmostApp() string
}

// Monitor owns the clipboard change counter and the suppression flags. All
// clipboard access from the daemon goes through it so polling and write-back
// never interleave.
type Monitor struct {
	pb      pasteboard.Pasteboard
	apps    AppSource
	builder *history.Builder

	mu             sync.Mutex
	changeCount    int
	ignoreEvents   bool
	ignoreOnlyNext bool
	cfg            ignore.Config
	interval       time.Duration

	reset chan struct{}
}

// New returns a Monitor that treats the current clipboard as already seen.
func New(pb pasteboard.Pasteboard, apps AppSource, builder *history.Builder, cfg ignore.Config) *Monitor {
	return &Monitor{
		pb:          pb,
		apps:        apps,
		builder:     builder,
		changeCount: pb.ChangeCount(),
		cfg:         cfg,
		interval:    DefaultInterval,
		reset:       make(chan struct{}, 1),
	}
}

// Run checks the clipboard on every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.Interval())
	defer ticker.Stop()

	slog.Info("clipboard monitor started", "backend", m.pb.Name(), "interval", m.Interval())
	for {
		select {
		case <-ctx.Done():
			slog.Info("clipboard monitor stopped")
			return
		case <-ticker.C:
			m.Tick(ctx)
		case <-m.reset:
			d := m.Interval()
			ticker.Reset(d)
			slog.Debug("poll interval changed", "interval", d)
		}
	}
}

// Interval returns the current poll interval.
func (m *Monitor) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

// SetInterval changes the poll interval. A running loop restarts its
// schedule from now. Non-positive values are ignored.
func (m *Monitor) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	changed := m.interval != d
	m.interval = d
	m.mu.Unlock()

	if changed {
		select {
		case m.reset <- struct{}{}:
		default:
		}
	}
}

// Config returns the ignore settings in effect.
func (m *Monitor) Config() ignore.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// SetConfig replaces the ignore settings from the next check on.
func (m *Monitor) SetConfig(cfg ignore.Config) {
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
}

// SetIgnoreEvents pauses (true) or resumes (false) recording. Resuming also
// cancels a pending IgnoreNext.
func (m *Monitor) SetIgnoreEvents(on bool) {
	m.mu.Lock()
	m.ignoreEvents = on
	if !on {
		m.ignoreOnlyNext = false
	}
	m.mu.Unlock()
}

// IgnoreNext skips the next clipboard change only.
func (m *Monitor) IgnoreNext() {
	m.mu.Lock()
	m.ignoreEvents = true
	m.ignoreOnlyNext = true
	m.mu.Unlock()
}

// Paused reports whether changes are currently being skipped.
func (m *Monitor) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ignoreEvents
}

// Tick runs one change check.
func (m *Monitor) Tick(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkLocked(ctx)
}

// Exclusive runs fn with sole access to the clipboard, then checks for a
// change straight away so the write is accounted for before the next tick.
//
// With suppress the change fn makes is not recorded. The one-shot skip is
// armed under the same lock and dropped again when fn left the change
// counter where it was, so it can never swallow a later copy. While paused
// suppress has no effect.
func (m *Monitor) Exclusive(ctx context.Context, suppress bool, fn func(pasteboard.Pasteboard) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	armed := suppress && !m.ignoreEvents
	if armed {
		m.ignoreEvents = true
		m.ignoreOnlyNext = true
	}
	err := fn(m.pb)
	m.checkLocked(ctx)
	if armed && m.ignoreOnlyNext {
		m.ignoreEvents = false
		m.ignoreOnlyNext = false
		slog.Debug("clipboard write left no change to skip", "change_count", m.changeCount)
	}
	return err
}

// checkLocked must be called with m.mu held. Observers run inside it and
// must not call back into the Monitor.
func (m *Monitor) checkLocked(ctx context.Context) {
	cc := m.pb.ChangeCount()
	if cc == m.changeCount {
		return
	}
	m.changeCount = cc

	if m.ignoreEvents {
		if m.ignoreOnlyNext {
			m.ignoreEvents = false
			m.ignoreOnlyNext = false
		}
		slog.Debug("clipboard change ignored", "change_count", cc)
		return
	}

	if m.cfg.IgnoresTypes(m.pb.Types()) {
		slog.Debug("clipboard change ignored by type", "change_count", cc)
		return
	}

	var app string
	if m.apps != nil {
		app = m.apps.FrontmostApp()
	}
	if m.cfg.IgnoresApp(app) {
		slog.Debug("clipboard change ignored by application", "app", app)
		return
	}

	entries := content.Merge(m.pb.Items(), m.cfg)
	if len(entries) == 0 {
		return
	}
	LogContents("clipboard changed", app, entries)

	if _, err := m.builder.Build(ctx, entries, app); err != nil {
		slog.Error("record clipboard change failed", "err", err)
	}
}
