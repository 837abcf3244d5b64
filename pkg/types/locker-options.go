/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package types

// LockerOptions is the struct that represents the options for the Locker
// struct.
type LockerOptions struct {
	// StorePath is the path to the directory where the build registry and
	// the launch ledger (a single sqlite database) will be stored.
	StorePath string `json:"store_path"`

	// LogsPath is the path to the directory where log files will be
	// written.
	LogsPath string `json:"logs_path"`

	// TmpPath is the path to the directory where payloads are extracted
	// for viewing.
	//
	// Note: when empty, the system temporary directory is used, which is
	// what the average deployment wants.
	TmpPath string `json:"tmp_path"`

	// PayloadExt is the file extension given to extracted drawings so the
	// OS resolves the right viewer. The container format does not record
	// the original extension.
	PayloadExt string `json:"payload_ext"`

	// ViewerCommand is an optional explicit viewer executable. When empty
	// the OS file association is used.
	ViewerCommand string `json:"viewer_command"`

	// StubPath is an optional explicit stub template for builds. When
	// empty the running executable is used as the template.
	StubPath string `json:"stub_path"`

	// MonitorIntervalMs is the tamper monitor polling interval in
	// milliseconds.
	MonitorIntervalMs int `json:"monitor_interval_ms"`

	// Verbose enables debug logging.
	Verbose bool `json:"verbose"`
}
