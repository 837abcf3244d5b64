package tools

import (
	"time"

	"github.com/shirou/gopsutil/process"
)

// PidAlive reports whether a process with the given pid exists.
func PidAlive(pid int) bool {
	pidExists, _ := process.PidExists(int32(pid))
	return pidExists
}

// WaitForPidExit polls until the pid is gone or the timeout elapses.
// A timeout of zero waits forever. It reports whether the process
// actually went away.
func WaitForPidExit(pid int, timeout time.Duration, interval time.Duration) bool {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	deadline := time.Now().Add(timeout)
	for PidAlive(pid) {
		if timeout > 0 && time.Now().After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
	return true
}

// ProcessName returns the executable name of the given pid, or an empty
// string when it cannot be determined.
func ProcessName(pid int) string {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	name, err := proc.Name()
	if err != nil {
		return ""
	}
	return name
}

// KillProcess force-kills the given pid. Killing an already dead
// process is not an error.
func KillProcess(pid int) error {
	if !PidAlive(pid) {
		return nil
	}
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil
	}
	return proc.Kill()
}
