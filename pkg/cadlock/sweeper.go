/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package cadlock

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mirkobrombin/cadlock/pkg/logger"
	"github.com/mirkobrombin/cadlock/pkg/tools"
)

const (
	// sweepAttempts and sweepRetryDelay bound the delete retry loop. The
	// container image can stay locked for a moment after the dying
	// process exits, Windows keeps the mapping until the loader is done.
	sweepAttempts   = 20
	sweepRetryDelay = 250 * time.Millisecond

	// sweepWaitTimeout bounds how long a sweeper waits for the parent
	// to exit before sweeping anyway.
	sweepWaitTimeout = 30 * time.Second
)

// scheduleSelfDestruct re-executes the running binary as a detached
// sweeper process that waits for this process to exit and then deletes
// the container. The current process cannot delete its own image while
// it is still running, so the deletion is handed to a child that
// outlives it.
//
// Scheduling failures are logged and swallowed, the caller reports
// the launch refusal either way.
func (c *Locker) scheduleSelfDestruct(path string) {
	binary, err := getLockerBinary()
	if err != nil {
		logger.Warnf("self destruct not scheduled: %s", err)
		return
	}

	cmd := exec.Command(binary, "sweep",
		"--target", path,
		"--wait-pid", strconv.Itoa(os.Getpid()),
		"--wipe")
	detachSweeper(cmd)

	err = cmd.Start()
	if err != nil {
		logger.Warnf("self destruct not scheduled: %s", err)
		return
	}

	fmt.Println("Container scheduled for deletion:", path)
	cmd.Process.Release()
}

// Sweep waits for the given pid to exit and then removes the target
// file, retrying while the file is still busy. A zero waitPid sweeps
// immediately. With wipe enabled the target is zero filled before
// removal.
func Sweep(target string, waitPid int, wipe bool) (err error) {
	target = tools.ResolvePath(target)

	if waitPid > 0 {
		if !tools.WaitForPidExit(waitPid, sweepWaitTimeout, 0) {
			logger.Warnf("process %d still alive after %s, sweeping anyway", waitPid, sweepWaitTimeout)
		}
	}

	for attempt := 0; attempt < sweepAttempts; attempt++ {
		if wipe {
			err = tools.WipeFile(target)
		} else {
			err = os.Remove(target)
		}
		if err == nil || os.IsNotExist(err) {
			return nil
		}
		time.Sleep(sweepRetryDelay)
	}

	err = fmt.Errorf("Sweep: %s not removed after %d attempts: %s", target, sweepAttempts, err)
	return
}

// getLockerBinary returns the path to the cadlock binary.
func getLockerBinary() (lockerBinary string, err error) {
	lockerBinary, err = os.Executable()
	if err == nil {
		return
	}

	// fall back to the invocation path
	lockerBinary = os.Args[0]
	if !filepath.IsAbs(lockerBinary) {
		lockerBinaryExe, findErr := exec.LookPath(os.Args[0])
		if findErr != nil {
			return "", fmt.Errorf("cadlock binary not found: %v, %v", err, findErr)
		}
		lockerBinary = lockerBinaryExe
	}
	return lockerBinary, nil
}
