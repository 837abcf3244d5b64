package types

import "time"

// Build is the struct that represents a protected container produced by
// the builder, as recorded in the store.
type Build struct {
	// Id is the unique identifier of the build, it is expected to be
	// unique across all the builds in the store. It is the lowercase hex
	// form of the 16 byte identity embedded in the container footer.
	Id string

	// SourcePath is the path of the drawing the container was built from.
	SourcePath string

	// OutputPath is the path the container was written to.
	OutputPath string

	// Suffix is the name suffix the output was built with.
	Suffix string

	// PayloadSize is the size in bytes of the plaintext drawing.
	PayloadSize uint64

	// MaxLaunches is the launch budget embedded in the container.
	// Zero means unlimited.
	MaxLaunches uint32

	// SecurityFlags is the raw security flag bitset embedded in the
	// container.
	SecurityFlags uint32

	// Timestamp is the timestamp of the build creation in the store.
	Timestamp time.Time
}

// LaunchesLeft returns the remaining launch budget given the current
// ledger count, or -1 when the build is unlimited.
func (b Build) LaunchesLeft(count uint32) int {
	if b.MaxLaunches == 0 {
		return -1
	}
	if count >= b.MaxLaunches {
		return 0
	}
	return int(b.MaxLaunches - count)
}
