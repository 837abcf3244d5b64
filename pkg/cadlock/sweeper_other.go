//go:build !windows

package cadlock

import (
	"os/exec"
	"syscall"
)

// detachSweeper puts the sweeper in its own session so it survives
// this process.
func detachSweeper(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
}
