//go:build windows

package cadlock

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	moduser32 = windows.NewLazySystemDLL("user32.dll")

	procEnumWindows              = moduser32.NewProc("EnumWindows")
	procGetWindowTextW           = moduser32.NewProc("GetWindowTextW")
	procGetWindowThreadProcessId = moduser32.NewProc("GetWindowThreadProcessId")
	procGetForegroundWindow      = moduser32.NewProc("GetForegroundWindow")
	procPostMessageW             = moduser32.NewProc("PostMessageW")
	procPostThreadMessageW       = moduser32.NewProc("PostThreadMessageW")
	procGetMessageW              = moduser32.NewProc("GetMessageW")
	procSetWindowsHookExW        = moduser32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx      = moduser32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx           = moduser32.NewProc("CallNextHookEx")
	procGetKeyState              = moduser32.NewProc("GetKeyState")
	procOpenClipboard            = moduser32.NewProc("OpenClipboard")
	procEmptyClipboard           = moduser32.NewProc("EmptyClipboard")
	procCloseClipboard           = moduser32.NewProc("CloseClipboard")
)

const (
	wmClose      = 0x0010
	wmQuit       = 0x0012
	wmKeyDown    = 0x0100
	wmSysKeyDown = 0x0104

	whKeyboardLL = 13
	vkControl    = 0x11

	windowTitleMax = 512
)

// winEnumerator walks the desktop window list via user32.
type winEnumerator struct{}

func newPlatformEnumerator() WindowEnumerator {
	return winEnumerator{}
}

type enumContext struct {
	pid  int
	wins []WindowInfo
}

// enumWindowsCallback is created once. EnumWindows calls it
// synchronously, so passing the context through lParam is safe.
var enumWindowsCallback = syscall.NewCallback(func(hwnd uintptr, lparam uintptr) uintptr {
	ctx := (*enumContext)(unsafe.Pointer(lparam))

	var winPid uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&winPid)))
	if int(winPid) != ctx.pid {
		return 1
	}

	buf := make([]uint16, windowTitleMax)
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	ctx.wins = append(ctx.wins, WindowInfo{
		Handle: hwnd,
		Title:  syscall.UTF16ToString(buf[:n]),
	})
	return 1
})

func (winEnumerator) Windows(pid int) (wins []WindowInfo, err error) {
	ctx := enumContext{pid: pid}
	ret, _, callErr := procEnumWindows.Call(enumWindowsCallback, uintptr(unsafe.Pointer(&ctx)))
	if ret == 0 {
		err = fmt.Errorf("EnumWindows: %s", callErr)
		return
	}

	wins = ctx.wins
	return
}

func (winEnumerator) ForegroundPid() (pid int, err error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		err = errors.New("ForegroundPid: no foreground window")
		return
	}

	var winPid uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&winPid)))
	pid = int(winPid)
	return
}

func (winEnumerator) CloseWindow(handle uintptr) (err error) {
	ret, _, callErr := procPostMessageW.Call(handle, wmClose, 0, 0)
	if ret == 0 {
		err = fmt.Errorf("CloseWindow: %s", callErr)
	}
	return
}

// winClipboard empties the clipboard on every call. OpenClipboard can
// fail while another application holds it, the caller treats that as
// transient.
type winClipboard struct{}

func newPlatformClipboard() Clipboard {
	return winClipboard{}
}

func (winClipboard) Clear() (err error) {
	ret, _, callErr := procOpenClipboard.Call(0)
	if ret == 0 {
		err = fmt.Errorf("OpenClipboard: %s", callErr)
		return
	}
	defer procCloseClipboard.Call()

	ret, _, callErr = procEmptyClipboard.Call()
	if ret == 0 {
		err = fmt.Errorf("EmptyClipboard: %s", callErr)
	}
	return
}

// kbdllHookStruct mirrors KBDLLHOOKSTRUCT.
type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type winMsg struct {
	Hwnd    windows.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// The low level keyboard hook callback carries no context pointer, so
// the predicate is shared through package state. Only one hook can be
// installed per process.
var (
	hookMu        sync.Mutex
	hookInstalled bool
	hookPredicate func(KeyEvent) bool
)

var keyboardHookCallback = syscall.NewCallback(func(code int32, wparam, lparam uintptr) uintptr {
	if code >= 0 && (wparam == wmKeyDown || wparam == wmSysKeyDown) {
		kb := (*kbdllHookStruct)(unsafe.Pointer(lparam))

		hookMu.Lock()
		pred := hookPredicate
		hookMu.Unlock()

		if pred != nil {
			state, _, _ := procGetKeyState.Call(vkControl)
			ctrl := state&0x8000 != 0
			if pred(KeyEvent{VirtualKey: kb.VkCode, Ctrl: ctrl}) {
				// Non zero return swallows the keystroke.
				return 1
			}
		}
	}

	ret, _, _ := procCallNextHookEx.Call(0, uintptr(code), wparam, lparam)
	return ret
})

// winInputHook installs a WH_KEYBOARD_LL hook. Low level hooks are
// delivered through the message queue of the installing thread, so the
// hook lives on a locked OS thread running its own message pump.
type winInputHook struct {
	mu       sync.Mutex
	threadId uint32
}

func newPlatformInputHook() InputHook {
	return &winInputHook{}
}

func (h *winInputHook) Install(shouldBlock func(KeyEvent) bool) error {
	hookMu.Lock()
	if hookInstalled {
		hookMu.Unlock()
		return errors.New("Install: keyboard hook already installed")
	}
	hookInstalled = true
	hookPredicate = shouldBlock
	hookMu.Unlock()

	startErr := make(chan error, 1)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		hhk, _, callErr := procSetWindowsHookExW.Call(whKeyboardLL, keyboardHookCallback, 0, 0)
		if hhk == 0 {
			hookMu.Lock()
			hookInstalled = false
			hookPredicate = nil
			hookMu.Unlock()
			startErr <- fmt.Errorf("SetWindowsHookEx: %s", callErr)
			return
		}

		h.mu.Lock()
		h.threadId = windows.GetCurrentThreadId()
		h.mu.Unlock()
		startErr <- nil

		var msg winMsg
		for {
			ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
			if int32(ret) <= 0 {
				break
			}
		}

		procUnhookWindowsHookEx.Call(hhk)
		hookMu.Lock()
		hookInstalled = false
		hookPredicate = nil
		hookMu.Unlock()
	}()

	return <-startErr
}

func (h *winInputHook) Release() (err error) {
	h.mu.Lock()
	threadId := h.threadId
	h.threadId = 0
	h.mu.Unlock()

	if threadId == 0 {
		return
	}

	ret, _, callErr := procPostThreadMessageW.Call(uintptr(threadId), wmQuit, 0, 0)
	if ret == 0 {
		err = fmt.Errorf("Release: %s", callErr)
	}
	return
}
