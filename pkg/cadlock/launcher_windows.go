//go:build windows

package cadlock

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/mirkobrombin/cadlock/pkg/logger"
)

var (
	modshell32          = windows.NewLazySystemDLL("shell32.dll")
	procShellExecuteExW = modshell32.NewProc("ShellExecuteExW")
)

const (
	seeMaskNoCloseProcess = 0x00000040
	swShowNormal          = 1
)

// shellExecuteInfo mirrors SHELLEXECUTEINFOW.
type shellExecuteInfo struct {
	CbSize         uint32
	FMask          uint32
	Hwnd           windows.Handle
	LpVerb         *uint16
	LpFile         *uint16
	LpParameters   *uint16
	LpDirectory    *uint16
	NShow          int32
	HInstApp       windows.Handle
	LpIDList       uintptr
	LpClass        *uint16
	HkeyClass      windows.Handle
	DwHotKey       uint32
	HIconOrMonitor windows.Handle
	HProcess       windows.Handle
}

// shellProcess is a viewer launched through the shell association. A
// zero handle means the file was handed to an already running viewer
// instance and there is nothing to wait on.
type shellProcess struct {
	pid    int
	handle windows.Handle
}

func (p *shellProcess) Pid() int {
	return p.pid
}

func (p *shellProcess) Wait() (err error) {
	if p.handle == 0 {
		return
	}
	defer windows.CloseHandle(p.handle)

	_, err = windows.WaitForSingleObject(p.handle, windows.INFINITE)
	if err != nil {
		err = fmt.Errorf("Wait: %s", err)
	}
	return
}

func (p *shellProcess) Kill() (err error) {
	if p.handle == 0 {
		return
	}

	err = windows.TerminateProcess(p.handle, 1)
	if err != nil {
		err = fmt.Errorf("Kill: %s", err)
	}
	return
}

// shellLauncher opens drawings through the file association, asking
// the shell to keep the process handle open so the session can
// supervise the viewer.
type shellLauncher struct {
	viewerCommand string
}

func newPlatformLauncher(viewerCommand string) ViewerLauncher {
	return &shellLauncher{viewerCommand: viewerCommand}
}

func (l *shellLauncher) Launch(path string) (proc ViewerProcess, err error) {
	if l.viewerCommand != "" {
		proc, err = launchCommand(l.viewerCommand, path)
		return
	}

	verb, err := windows.UTF16PtrFromString("open")
	if err != nil {
		return
	}
	file, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return
	}

	info := shellExecuteInfo{
		FMask:  seeMaskNoCloseProcess,
		LpVerb: verb,
		LpFile: file,
		NShow:  swShowNormal,
	}
	info.CbSize = uint32(unsafe.Sizeof(info))

	ret, _, callErr := procShellExecuteExW.Call(uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		err = fmt.Errorf("ShellExecuteEx: %s", callErr)
		return
	}

	sp := &shellProcess{handle: info.HProcess}
	if sp.handle != 0 {
		pid, pidErr := windows.GetProcessId(sp.handle)
		if pidErr == nil {
			sp.pid = int(pid)
		}
	} else {
		logger.Warnf("the viewer reused a running instance, the session cannot supervise it")
	}

	proc = sp
	return
}
