/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package types

import "time"

// Session is the struct that represents one viewing of a protected
// drawing, from extraction to cleanup.
type Session struct {
	// Id is the unique identifier of the session. It is not persisted,
	// it only correlates log lines of a single viewing.
	Id string

	// BuildId is the identity of the container being viewed, in
	// lowercase hex form.
	BuildId string

	// ContainerPath is the path of the container file the session was
	// opened from.
	ContainerPath string

	// PayloadPath is the path of the extracted plaintext drawing. It
	// exists only for the lifetime of the session.
	PayloadPath string

	// Pid is the pid of the spawned viewer process.
	Pid int

	// StartedAt is the time the viewer was spawned.
	StartedAt time.Time
}
