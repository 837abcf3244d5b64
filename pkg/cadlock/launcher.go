/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package cadlock

import (
	"os/exec"
)

// ViewerProcess is the handle a launcher hands back for the spawned
// viewer. The session waits on it and the monitor kills through it.
type ViewerProcess interface {
	Pid() int

	// Wait blocks until the viewer exits. A viewer that was launched
	// into an already running instance may return immediately.
	Wait() error

	// Kill terminates the viewer without asking.
	Kill() error
}

// ViewerLauncher spawns the platform handler for an extracted drawing.
// Platform implementations live in the launcher platform files, tests
// supply fakes.
type ViewerLauncher interface {
	Launch(path string) (ViewerProcess, error)
}

// execProcess wraps a viewer started through os/exec, used when the
// user configured an explicit viewer command.
type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}

// launchCommand starts an explicit viewer command with the drawing
// path appended.
func launchCommand(command string, path string) (proc ViewerProcess, err error) {
	cmd := exec.Command(command, path)
	err = cmd.Start()
	if err != nil {
		return
	}

	proc = &execProcess{cmd: cmd}
	return
}
