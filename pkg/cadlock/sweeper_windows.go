//go:build windows

package cadlock

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// detachSweeper detaches the sweeper from the console and the process
// group, so it survives this process and never flashes a window.
func detachSweeper(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.DETACHED_PROCESS | windows.CREATE_NEW_PROCESS_GROUP,
	}
}
