//go:build !windows

package cadlock

import "errors"

// There is no portable window enumeration, global keyboard hook or
// clipboard control. Off Windows the monitor runs with inert
// capabilities and the session logs the degradation once.

var errMonitorUnsupported = errors.New("viewer monitoring is only supported on Windows")

type noopEnumerator struct{}

func newPlatformEnumerator() WindowEnumerator {
	return noopEnumerator{}
}

func (noopEnumerator) Windows(pid int) ([]WindowInfo, error) {
	return nil, nil
}

func (noopEnumerator) ForegroundPid() (int, error) {
	return 0, errMonitorUnsupported
}

func (noopEnumerator) CloseWindow(handle uintptr) error {
	return errMonitorUnsupported
}

type noopInputHook struct{}

func newPlatformInputHook() InputHook {
	return noopInputHook{}
}

func (noopInputHook) Install(shouldBlock func(KeyEvent) bool) error {
	return errMonitorUnsupported
}

func (noopInputHook) Release() error {
	return nil
}

type noopClipboard struct{}

func newPlatformClipboard() Clipboard {
	return noopClipboard{}
}

func (noopClipboard) Clear() error {
	return nil
}
