package cadlock

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnumerator struct {
	mu      sync.Mutex
	windows []WindowInfo
	fg      int
	fgErr   error
	enumErr error
	closed  []uintptr
}

func newFakeEnumerator() *fakeEnumerator {
	return &fakeEnumerator{}
}

func (e *fakeEnumerator) Windows(pid int) ([]WindowInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.enumErr != nil {
		return nil, e.enumErr
	}
	return append([]WindowInfo(nil), e.windows...), nil
}

func (e *fakeEnumerator) ForegroundPid() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fg, e.fgErr
}

func (e *fakeEnumerator) CloseWindow(handle uintptr) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = append(e.closed, handle)
	return nil
}

func (e *fakeEnumerator) setWindows(windows ...WindowInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.windows = windows
}

func (e *fakeEnumerator) setForeground(pid int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fg = pid
}

func (e *fakeEnumerator) setEnumErr(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enumErr = err
}

func (e *fakeEnumerator) closedHandles() []uintptr {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]uintptr(nil), e.closed...)
}

type fakeInputHook struct {
	mu         sync.Mutex
	installErr error
	predicate  func(KeyEvent) bool
	released   bool
}

func (h *fakeInputHook) Install(shouldBlock func(KeyEvent) bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.installErr != nil {
		return h.installErr
	}
	h.predicate = shouldBlock
	return nil
}

func (h *fakeInputHook) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released = true
	return nil
}

func (h *fakeInputHook) installedPredicate() func(KeyEvent) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.predicate
}

func (h *fakeInputHook) wasReleased() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

type fakeClipboard struct {
	mu       sync.Mutex
	count    int
	clearErr error
}

func (c *fakeClipboard) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return c.clearErr
}

func (c *fakeClipboard) clears() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

type killCounter struct {
	mu    sync.Mutex
	count int
}

func (k *killCounter) kill() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.count++
	return nil
}

func (k *killCounter) kills() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.count
}

func testMonitor(t *testing.T, meltdown bool) (*Monitor, *fakeEnumerator, *fakeInputHook, *fakeClipboard, *killCounter) {
	t.Helper()

	enum := newFakeEnumerator()
	hook := &fakeInputHook{}
	clip := &fakeClipboard{}
	killer := &killCounter{}

	monitor := NewMonitor(MonitorConfig{
		Pid:        1234,
		Meltdown:   meltdown,
		Interval:   time.Millisecond,
		Kill:       killer.kill,
		Enumerator: enum,
		Input:      hook,
		Clipboard:  clip,
	})
	t.Cleanup(monitor.Stop)
	return monitor, enum, hook, clip, killer
}

func TestMonitorKillsViewerOnSaveDialog(t *testing.T) {
	monitor, enum, _, _, killer := testMonitor(t, true)
	require.NoError(t, monitor.Start())

	// an innocent title does nothing
	enum.setWindows(WindowInfo{Handle: 1, Title: "Drawing1.dwg"})
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, killer.kills())

	// the save dialog shows up
	enum.setWindows(
		WindowInfo{Handle: 1, Title: "Drawing1.dwg"},
		WindowInfo{Handle: 7, Title: "Drawing1.dwg - Save As"},
	)

	require.Eventually(t, func() bool { return killer.kills() > 0 }, time.Second, time.Millisecond)

	// the polite close is attempted on the offending window as well
	assert.Contains(t, enum.closedHandles(), uintptr(7))
}

func TestMonitorClosesPolitelyWithoutMeltdown(t *testing.T) {
	monitor, enum, _, _, killer := testMonitor(t, false)
	require.NoError(t, monitor.Start())

	enum.setWindows(WindowInfo{Handle: 9, Title: "Export Data"})

	require.Eventually(t, func() bool {
		return len(enum.closedHandles()) > 0
	}, time.Second, time.Millisecond)
	assert.Contains(t, enum.closedHandles(), uintptr(9))

	// without the meltdown flag the viewer is never killed
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, killer.kills())
}

func TestMonitorSurvivesEnumeratorFailures(t *testing.T) {
	monitor, enum, _, clip, killer := testMonitor(t, true)
	enum.setEnumErr(errors.New("enumeration broke"))
	require.NoError(t, monitor.Start())

	// the loop keeps ticking through the failures
	require.Eventually(t, func() bool { return clip.clears() > 5 }, time.Second, time.Millisecond)
	assert.Zero(t, killer.kills())

	// and recovers once enumeration works again
	enum.setEnumErr(nil)
	enum.setWindows(WindowInfo{Handle: 3, Title: "Plot - Drawing1"})
	require.Eventually(t, func() bool { return killer.kills() > 0 }, time.Second, time.Millisecond)
}

func TestMonitorHookFailureIsNotFatal(t *testing.T) {
	enum := newFakeEnumerator()
	killer := &killCounter{}
	monitor := NewMonitor(MonitorConfig{
		Pid:        1234,
		Meltdown:   true,
		Interval:   time.Millisecond,
		Kill:       killer.kill,
		Enumerator: enum,
		Input:      &fakeInputHook{installErr: errors.New("no hook for you")},
		Clipboard:  &fakeClipboard{},
	})
	t.Cleanup(monitor.Stop)

	require.NoError(t, monitor.Start())

	enum.setWindows(WindowInfo{Handle: 2, Title: "Save As"})
	require.Eventually(t, func() bool { return killer.kills() > 0 }, time.Second, time.Millisecond)
}

func TestMonitorStartWhileWatchingFails(t *testing.T) {
	monitor, _, _, _, _ := testMonitor(t, true)
	require.NoError(t, monitor.Start())
	assert.Error(t, monitor.Start())
}

func TestMonitorStopIsIdempotent(t *testing.T) {
	monitor, _, hook, clip, _ := testMonitor(t, true)

	// stopping an idle monitor is a no-op
	monitor.Stop()

	require.NoError(t, monitor.Start())
	require.Eventually(t, func() bool { return clip.clears() > 0 }, time.Second, time.Millisecond)

	monitor.Stop()
	assert.True(t, hook.wasReleased())
	monitor.Stop()

	// the loop is joined, ticking has stopped
	settled := clip.clears()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, settled, clip.clears())
}

func TestMonitorRestartsAfterStop(t *testing.T) {
	monitor, enum, _, _, killer := testMonitor(t, true)

	require.NoError(t, monitor.Start())
	monitor.Stop()

	require.NoError(t, monitor.Start())
	enum.setWindows(WindowInfo{Handle: 4, Title: "另存新檔"})
	require.Eventually(t, func() bool { return killer.kills() > 0 }, time.Second, time.Millisecond)
}

func TestMatchForbiddenTitle(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Drawing1.dwg - Save As", "save as"},
		{"SAVE AS", "save as"},
		{"Export Data", "export"},
		{"Print Preview", "print"},
		{"Plot - Drawing1", "plot"},
		{"另存新檔", "另存新檔"},
		{"匯出 DWF", "匯出"},
		{"列印", "列印"},
		{"出圖 - Drawing1", "出圖"},
		{"Drawing1.dwg", ""},
		{"AutoCAD 2024", ""},
		{"", ""},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, matchForbiddenTitle(c.title), "title %q", c.title)
	}
}

func TestShouldBlockKeyOnlyInForeground(t *testing.T) {
	monitor, enum, _, _, _ := testMonitor(t, true)
	enum.setForeground(1234)

	assert.True(t, monitor.shouldBlockKey(KeyEvent{VirtualKey: 'S', Ctrl: true}))
	assert.True(t, monitor.shouldBlockKey(KeyEvent{VirtualKey: 'P', Ctrl: true}))
	assert.False(t, monitor.shouldBlockKey(KeyEvent{VirtualKey: 'S', Ctrl: false}))
	assert.False(t, monitor.shouldBlockKey(KeyEvent{VirtualKey: 'A', Ctrl: true}))

	// another application owns the screen, shortcuts pass through
	enum.setForeground(999)
	assert.False(t, monitor.shouldBlockKey(KeyEvent{VirtualKey: 'S', Ctrl: true}))
}

func TestMonitorInstallsKeyPredicate(t *testing.T) {
	monitor, enum, hook, _, _ := testMonitor(t, true)
	enum.setForeground(1234)

	require.NoError(t, monitor.Start())

	predicate := hook.installedPredicate()
	require.NotNil(t, predicate)
	assert.True(t, predicate(KeyEvent{VirtualKey: 'P', Ctrl: true}))
}
