/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package cadlock

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mirkobrombin/cadlock/pkg/logger"
)

// WindowInfo describes one top level window of the watched process.
type WindowInfo struct {
	Handle uintptr
	Title  string
}

// WindowEnumerator is the window system capability the monitor runs
// on. Platform implementations live in the monitor platform files,
// tests supply fakes.
type WindowEnumerator interface {
	// Windows returns the top level windows owned by the pid.
	Windows(pid int) ([]WindowInfo, error)

	// ForegroundPid returns the pid owning the foreground window.
	ForegroundPid() (int, error)

	// CloseWindow asks a window to close politely, the way the window
	// manager would.
	CloseWindow(handle uintptr) error
}

// KeyEvent is one keystroke seen by the global input hook.
type KeyEvent struct {
	VirtualKey uint32
	Ctrl       bool
}

// InputHook intercepts keystrokes system wide. The installed predicate
// decides per event whether the keystroke is swallowed or passed on.
type InputHook interface {
	Install(shouldBlock func(KeyEvent) bool) error
	Release() error
}

// Clipboard empties the system clipboard.
type Clipboard interface {
	Clear() error
}

// forbiddenTitleWords marks viewer windows that can copy the drawing
// out: save, export and plot dialogs. Matching is a case insensitive
// substring test over the window title, including the localized
// variants reported from the field.
var forbiddenTitleWords = []string{
	"save as",
	"export",
	"print",
	"plot",
	"另存新檔",
	"匯出",
	"列印",
	"出圖",
}

// Monitor lifecycle states.
const (
	monitorIdle = iota
	monitorWatching
	monitorStopped
)

// stopGrace bounds how long Stop waits for the watch loop to exit.
const stopGrace = 2 * time.Second

// MonitorConfig configures one Monitor.
type MonitorConfig struct {
	// Pid is the viewer process being watched.
	Pid int

	// Meltdown hard-kills the viewer when a forbidden window shows up.
	// Without it the monitor only closes the window politely.
	Meltdown bool

	// Interval is the polling interval. The watcher has to win the race
	// against a human clicking through a dialog, so it stays in the
	// single digit millisecond range by default.
	Interval time.Duration

	// Kill terminates the viewer. Supplied by the session so the kill
	// goes through the same handle the session waits on.
	Kill func() error

	// Enumerator, Input and Clipboard default to the platform
	// implementations when nil.
	Enumerator WindowEnumerator
	Input      InputHook
	Clipboard  Clipboard
}

// Monitor watches a viewer process for attempts to copy the protected
// drawing out: forbidden dialog titles, Ctrl+S and Ctrl+P, and
// clipboard content. It runs a single watch goroutine between Start
// and Stop.
type Monitor struct {
	cfg MonitorConfig

	mu    sync.Mutex
	state int
	stop  chan struct{}
	done  chan struct{}
}

// NewMonitor creates a monitor for the given configuration, filling in
// platform defaults for the capabilities left nil.
func NewMonitor(cfg MonitorConfig) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Millisecond
	}
	if cfg.Enumerator == nil {
		cfg.Enumerator = newPlatformEnumerator()
	}
	if cfg.Input == nil {
		cfg.Input = newPlatformInputHook()
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = newPlatformClipboard()
	}
	return &Monitor{cfg: cfg}
}

// Start moves the monitor to watching and spawns the watch loop. A
// monitor that is already watching cannot be started again; a stopped
// one can, its previous loop is guaranteed gone because Stop joins it.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == monitorWatching {
		return errors.New("monitor is already watching")
	}

	// A failed hook is not fatal: window titles and the clipboard are
	// still covered.
	if err := m.cfg.Input.Install(m.shouldBlockKey); err != nil {
		logger.Warnf("monitor: global input intercept unavailable: %s", err)
	}

	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	m.state = monitorWatching
	go m.watch(m.stop, m.done)
	return nil
}

// Stop asks the watch loop to exit and joins it within a bounded grace
// period. It is idempotent and safe on an idle monitor.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.state != monitorWatching {
		m.mu.Unlock()
		return
	}
	close(m.stop)
	done := m.done
	m.state = monitorStopped
	m.mu.Unlock()

	select {
	case <-done:
	case <-time.After(stopGrace):
		logger.Warnf("monitor: watch loop did not stop within %s", stopGrace)
	}

	if err := m.cfg.Input.Release(); err != nil {
		logger.Debugf("monitor: input hook release: %s", err)
	}
}

// watch is the poll loop. The stop channel is only ever polled, never
// blocked on, so a wedged capability cannot keep the loop from seeing
// the shutdown request on its next round.
func (m *Monitor) watch(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

// tick runs one scan. Capability failures are logged and skipped, the
// monitor keeps watching in a degraded state rather than giving up.
func (m *Monitor) tick() {
	if err := m.cfg.Clipboard.Clear(); err != nil {
		logger.Debugf("monitor: clipboard: %s", err)
	}

	wins, err := m.cfg.Enumerator.Windows(m.cfg.Pid)
	if err != nil {
		logger.Debugf("monitor: window enumeration: %s", err)
		return
	}

	for _, w := range wins {
		word := matchForbiddenTitle(w.Title)
		if word == "" {
			continue
		}

		logger.Warnf("monitor: forbidden window %q matched %q", w.Title, word)

		// The polite close is always attempted first so the viewer gets
		// a chance to drop the dialog on its own.
		if closeErr := m.cfg.Enumerator.CloseWindow(w.Handle); closeErr != nil {
			logger.Debugf("monitor: close window: %s", closeErr)
		}

		if m.cfg.Meltdown && m.cfg.Kill != nil {
			if killErr := m.cfg.Kill(); killErr != nil {
				logger.Warnf("monitor: viewer kill failed: %s", killErr)
			}
		}
		return
	}
}

// matchForbiddenTitle returns the forbidden word the title contains,
// or an empty string.
func matchForbiddenTitle(title string) string {
	lower := strings.ToLower(title)
	for _, word := range forbiddenTitleWords {
		if strings.Contains(lower, word) {
			return word
		}
	}
	return ""
}

// shouldBlockKey is the input hook predicate: swallow Ctrl+S and
// Ctrl+P, but only while the watched viewer owns the foreground
// window, so the rest of the desktop keeps its shortcuts.
func (m *Monitor) shouldBlockKey(ev KeyEvent) bool {
	if !ev.Ctrl {
		return false
	}
	if ev.VirtualKey != 'S' && ev.VirtualKey != 'P' {
		return false
	}
	pid, err := m.cfg.Enumerator.ForegroundPid()
	if err != nil {
		return false
	}
	return pid == m.cfg.Pid
}
