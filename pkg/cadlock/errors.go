package cadlock

import "errors"

// Error classes returned by the open flow. Callers branch on them with
// errors.Is; the concrete cause is carried in the wrapped message.
var (
	// ErrInvalidContainer covers every way a file can fail to be a
	// container: missing magic, unsupported format version, truncation,
	// or a payload size that does not fit in the file.
	ErrInvalidContainer = errors.New("invalid container")

	// ErrLaunchLimitReached is returned when the launch budget embedded
	// in the container is exhausted for this user.
	ErrLaunchLimitReached = errors.New("launch limit reached")

	// ErrLaunchFailed is returned when no viewer could be spawned for
	// the extracted drawing.
	ErrLaunchFailed = errors.New("viewer launch failed")

	// ErrLedgerDegraded marks launch ledger failures. It is logged and
	// swallowed by the open flow, which fails open and treats the
	// launch as the first one.
	ErrLedgerDegraded = errors.New("launch ledger degraded")
)
