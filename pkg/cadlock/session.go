/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package cadlock

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mirkobrombin/cadlock/pkg/codec"
	"github.com/mirkobrombin/cadlock/pkg/logger"
	"github.com/mirkobrombin/cadlock/pkg/tools"
	"github.com/mirkobrombin/cadlock/pkg/types"
)

// sessionConfig carries everything one viewing needs. The capability
// fields default to the platform implementations when nil, tests
// supply fakes.
type sessionConfig struct {
	BuildId       string
	ContainerPath string
	Payload       []byte
	Flags         uint32

	TmpDir     string
	PayloadExt string
	Interval   time.Duration

	Launcher   ViewerLauncher
	Enumerator WindowEnumerator
	Input      InputHook
	Clipboard  Clipboard
}

// StartSession runs one viewing of the given decrypted drawing: write
// it to a private temporary file, hand it to the viewer, supervise the
// viewer until it exits and clean up.
//
// Note: in cadlock, the session's lifecycle is the viewer process
// lifecycle. The drawing only exists on disk between spawn and exit,
// there is no detached mode and nothing to re-attach to, so a crash of
// this process is the only way to leave the temporary file behind. An
// audit run with repair enabled picks those up.
func (c *Locker) StartSession(buildId string, containerPath string, payload []byte, flags uint32) (err error) {
	launcher := c.launcher
	if launcher == nil {
		launcher = newPlatformLauncher(c.Options.ViewerCommand)
	}

	cfg := sessionConfig{
		BuildId:       buildId,
		ContainerPath: containerPath,
		Payload:       payload,
		Flags:         flags,
		TmpDir:        c.TmpDir(),
		PayloadExt:    c.Options.PayloadExt,
		Interval:      time.Duration(c.Options.MonitorIntervalMs) * time.Millisecond,
		Launcher:      launcher,
	}

	_, err = runSession(cfg)
	return
}

// runSession is the session state machine. Cleanup runs on every path:
// whether the viewer exited, was killed by the monitor, or never
// spawned at all, the monitor is stopped and joined and the temporary
// file is wiped before control returns.
func runSession(cfg sessionConfig) (session types.Session, err error) {
	tmp, err := os.CreateTemp(cfg.TmpDir, "cad-*"+cfg.PayloadExt)
	if err != nil {
		err = fmt.Errorf("runSession: %w", err)
		return
	}

	session = types.Session{
		Id:            uuid.New().String(),
		BuildId:       cfg.BuildId,
		ContainerPath: cfg.ContainerPath,
		PayloadPath:   tmp.Name(),
	}

	var monitor *Monitor
	defer func() {
		if monitor != nil {
			monitor.Stop()
		}
		if wipeErr := tools.WipeFile(session.PayloadPath); wipeErr != nil && !os.IsNotExist(wipeErr) {
			logger.Warnf("session %s: temporary drawing not removed: %s", session.Id, wipeErr)
		}
	}()

	_, err = tmp.Write(cfg.Payload)
	if err != nil {
		tmp.Close()
		err = fmt.Errorf("runSession: %w", err)
		return
	}
	err = tmp.Close()
	if err != nil {
		err = fmt.Errorf("runSession: %w", err)
		return
	}

	proc, err := cfg.Launcher.Launch(session.PayloadPath)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrLaunchFailed, err)
		return
	}

	session.Pid = proc.Pid()
	session.StartedAt = time.Now()
	fmt.Println("Viewer started (PID:", session.Pid, ")")

	if cfg.Flags&codec.FlagMeltdown != 0 {
		monitor = NewMonitor(MonitorConfig{
			Pid:        session.Pid,
			Meltdown:   true,
			Interval:   cfg.Interval,
			Kill:       proc.Kill,
			Enumerator: cfg.Enumerator,
			Input:      cfg.Input,
			Clipboard:  cfg.Clipboard,
		})
		err = monitor.Start()
		if err != nil {
			// The drawing is already on screen, better to keep the
			// session than to kill it over a broken watchdog.
			logger.Warnf("session %s: monitor not started: %s", session.Id, err)
			monitor = nil
			err = nil
		}
	}

	// Block until the viewer is gone. A non zero viewer exit, including
	// the one caused by a meltdown kill, is not a session failure.
	waitErr := proc.Wait()
	if waitErr != nil {
		logger.Debugf("session %s: viewer exit: %s", session.Id, waitErr)
	}

	return
}
