package cadlock

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirkobrombin/cadlock/pkg/codec"
)

// fakeProcess is a viewer that exits when told to.
type fakeProcess struct {
	pid     int
	waitErr error

	mu     sync.Mutex
	killed bool

	exited chan struct{}
	once   sync.Once
}

func newFakeProcess(pid int) *fakeProcess {
	return &fakeProcess{pid: pid, exited: make(chan struct{})}
}

func (p *fakeProcess) Pid() int { return p.pid }

func (p *fakeProcess) Wait() error {
	<-p.exited
	return p.waitErr
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	p.exit()
	return nil
}

func (p *fakeProcess) exit() {
	p.once.Do(func() { close(p.exited) })
}

func (p *fakeProcess) wasKilled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

// fakeLauncher hands out fakeProcesses and records what it launched.
type fakeLauncher struct {
	mu        sync.Mutex
	launched  []string
	launchErr error

	// onLaunch runs synchronously inside Launch, the session tests use
	// it to observe the temporary file while it exists.
	onLaunch func(path string, proc *fakeProcess)
}

func (l *fakeLauncher) Launch(path string) (ViewerProcess, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.launchErr != nil {
		return nil, l.launchErr
	}

	proc := newFakeProcess(4242 + len(l.launched))
	l.launched = append(l.launched, path)
	if l.onLaunch != nil {
		l.onLaunch(path, proc)
	}
	return proc, nil
}

func (l *fakeLauncher) launchCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.launched)
}

func listSessionFiles(t *testing.T, dir string) []string {
	t.Helper()

	files, err := filepath.Glob(filepath.Join(dir, "cad-*"))
	require.NoError(t, err)
	return files
}

func TestRunSessionWritesAndWipesTheDrawing(t *testing.T) {
	tmpDir := t.TempDir()
	payload := []byte("decrypted drawing bytes")

	var seenPayload []byte
	launcher := &fakeLauncher{
		onLaunch: func(path string, proc *fakeProcess) {
			content, readErr := os.ReadFile(path)
			require.NoError(t, readErr)
			seenPayload = content
			assert.Equal(t, ".dwg", filepath.Ext(path))
			proc.exit()
		},
	}

	session, err := runSession(sessionConfig{
		BuildId:    "test-build",
		Payload:    payload,
		TmpDir:     tmpDir,
		PayloadExt: ".dwg",
		Launcher:   launcher,
	})
	require.NoError(t, err)

	// the viewer saw the plaintext drawing
	assert.Equal(t, payload, seenPayload)
	assert.Equal(t, 1, launcher.launchCount())
	assert.NotZero(t, session.Pid)

	// and nothing is left behind
	assert.Empty(t, listSessionFiles(t, tmpDir))
	_, statErr := os.Stat(session.PayloadPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunSessionCleansUpWhenLaunchFails(t *testing.T) {
	tmpDir := t.TempDir()
	launcher := &fakeLauncher{launchErr: errors.New("no viewer registered")}

	_, err := runSession(sessionConfig{
		BuildId:    "test-build",
		Payload:    []byte("drawing"),
		TmpDir:     tmpDir,
		PayloadExt: ".dwg",
		Launcher:   launcher,
	})
	require.ErrorIs(t, err, ErrLaunchFailed)

	assert.Empty(t, listSessionFiles(t, tmpDir))
}

func TestRunSessionSurvivesViewerFailure(t *testing.T) {
	tmpDir := t.TempDir()
	launcher := &fakeLauncher{
		onLaunch: func(path string, proc *fakeProcess) {
			proc.waitErr = errors.New("exit status 3")
			proc.exit()
		},
	}

	_, err := runSession(sessionConfig{
		BuildId:    "test-build",
		Payload:    []byte("drawing"),
		TmpDir:     tmpDir,
		PayloadExt: ".dwg",
		Launcher:   launcher,
	})
	assert.NoError(t, err)
	assert.Empty(t, listSessionFiles(t, tmpDir))
}

func TestRunSessionStartsMonitorForMeltdownBuilds(t *testing.T) {
	tmpDir := t.TempDir()

	enum := newFakeEnumerator()
	clip := &fakeClipboard{}

	launcher := &fakeLauncher{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := runSession(sessionConfig{
			BuildId:    "test-build",
			Payload:    []byte("drawing"),
			Flags:      codec.FlagMeltdown,
			TmpDir:     tmpDir,
			PayloadExt: ".dwg",
			Interval:   time.Millisecond,
			Launcher:   launcher,
			Enumerator: enum,
			Input:      &fakeInputHook{},
			Clipboard:  clip,
		})
		assert.NoError(t, err)
	}()

	// the viewer shows a save dialog, the monitor has to end the session
	require.Eventually(t, func() bool { return launcher.launchCount() == 1 }, time.Second, time.Millisecond)
	enum.setWindows(WindowInfo{Handle: 7, Title: "Drawing1.dwg - Save As"})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end after the forbidden window appeared")
	}

	assert.Empty(t, listSessionFiles(t, tmpDir))
	assert.Greater(t, clip.clears(), 0)
}
