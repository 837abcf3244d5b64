package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// log is the shared logger. Commands talk to the user via the Printf
// and Println helpers so output stays uniform; packages use the leveled
// helpers for anything the user did not ask to see.
var log = logrus.New()

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
}

// Setup attaches a log file under logsDir in addition to stderr and
// raises verbosity when verbose is set. It is best effort: a failure to
// open the file leaves stderr logging in place.
func Setup(logsDir string, verbose bool) {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if logsDir == "" {
		return
	}
	f, err := os.OpenFile(filepath.Join(logsDir, "cadlock.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		log.Debugf("Setup: cannot open log file: %s", err)
		return
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
}

// Printf logs a user-facing message at info level.
func Printf(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Println logs a user-facing message at info level.
func Println(args ...interface{}) {
	log.Infoln(args...)
}

// Debugf logs a developer message, visible only in verbose mode.
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Warnf logs a non-fatal problem the user should know about.
func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Errorf logs a failure that is being reported but not returned.
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}
